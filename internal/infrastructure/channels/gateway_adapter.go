package channels

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/estate/backend/internal/domain/notification"
)

// maxResponseSize caps how much of a gateway error body is read (64KB)
const maxResponseSize = 64 * 1024

var (
	// ErrGatewayRejected indicates the gateway returned a non-success status
	ErrGatewayRejected = errors.New("channel gateway rejected the message")

	// ErrGatewayUnavailable indicates the gateway could not be reached
	ErrGatewayUnavailable = errors.New("channel gateway unavailable")
)

// gatewayMessage is the wire format the delivery gateway accepts. The
// gateway resolves the recipient address (email, phone, messenger handle)
// from the actor id; this service never stores contact details.
type gatewayMessage struct {
	NotificationID string `json:"notification_id"`
	RecipientID    string `json:"recipient_id"`
	Type           string `json:"type"`
	Priority       string `json:"priority"`
	Title          string `json:"title"`
	Body           string `json:"body"`
}

// gatewayClient posts messages to one endpoint of the delivery gateway
type gatewayClient struct {
	config     GatewayConfig
	endpoint   string
	httpClient *http.Client
}

func newGatewayClient(config GatewayConfig, endpoint string) (*gatewayClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &gatewayClient{
		config:   config,
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

func (c *gatewayClient) send(ctx context.Context, payload notification.Payload) error {
	msg := gatewayMessage{
		NotificationID: payload.NotificationID.String(),
		RecipientID:    payload.TargetActorID.String(),
		Type:           string(payload.Type),
		Priority:       string(payload.Priority),
		Title:          payload.Title,
		Body:           payload.Body,
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal gateway message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	return fmt.Errorf("%w: status %d: %s", ErrGatewayRejected, resp.StatusCode, string(detail))
}

// ---------------------------------------------------------------------------
// Email
// ---------------------------------------------------------------------------

// EmailAdapter delivers through the transactional email gateway
type EmailAdapter struct {
	client *gatewayClient
}

// NewEmailAdapter creates a new email adapter
func NewEmailAdapter(config GatewayConfig) (*EmailAdapter, error) {
	client, err := newGatewayClient(config, "/v1/email/messages")
	if err != nil {
		return nil, err
	}
	return &EmailAdapter{client: client}, nil
}

// Channel returns the channel this adapter handles
func (a *EmailAdapter) Channel() notification.Channel {
	return notification.ChannelEmail
}

// Send posts the message to the email gateway
func (a *EmailAdapter) Send(ctx context.Context, payload notification.Payload) error {
	return a.client.send(ctx, payload)
}

// ---------------------------------------------------------------------------
// SMS
// ---------------------------------------------------------------------------

// SMSAdapter delivers through the SMS gateway
type SMSAdapter struct {
	client *gatewayClient
}

// NewSMSAdapter creates a new SMS adapter
func NewSMSAdapter(config GatewayConfig) (*SMSAdapter, error) {
	client, err := newGatewayClient(config, "/v1/sms/messages")
	if err != nil {
		return nil, err
	}
	return &SMSAdapter{client: client}, nil
}

// Channel returns the channel this adapter handles
func (a *SMSAdapter) Channel() notification.Channel {
	return notification.ChannelSMS
}

// Send posts the message to the SMS gateway
func (a *SMSAdapter) Send(ctx context.Context, payload notification.Payload) error {
	return a.client.send(ctx, payload)
}

// ---------------------------------------------------------------------------
// Messenger
// ---------------------------------------------------------------------------

// MessengerAdapter delivers through the chat messenger gateway
type MessengerAdapter struct {
	client *gatewayClient
}

// NewMessengerAdapter creates a new messenger adapter
func NewMessengerAdapter(config GatewayConfig) (*MessengerAdapter, error) {
	client, err := newGatewayClient(config, "/v1/messenger/messages")
	if err != nil {
		return nil, err
	}
	return &MessengerAdapter{client: client}, nil
}

// Channel returns the channel this adapter handles
func (a *MessengerAdapter) Channel() notification.Channel {
	return notification.ChannelMessenger
}

// Send posts the message to the messenger gateway
func (a *MessengerAdapter) Send(ctx context.Context, payload notification.Payload) error {
	return a.client.send(ctx, payload)
}

var (
	_ notification.ChannelAdapter = (*EmailAdapter)(nil)
	_ notification.ChannelAdapter = (*SMSAdapter)(nil)
	_ notification.ChannelAdapter = (*MessengerAdapter)(nil)
)
