package channels

import (
	"errors"
	"fmt"
	"net/url"
)

var (
	// ErrGatewayConfigMissingBaseURL indicates the gateway URL was not set
	ErrGatewayConfigMissingBaseURL = errors.New("channel gateway: base URL is required")

	// ErrGatewayConfigMissingAPIKey indicates the gateway credential was not set
	ErrGatewayConfigMissingAPIKey = errors.New("channel gateway: API key is required")

	// ErrGatewayConfigInvalidBaseURL indicates the gateway URL could not be parsed
	ErrGatewayConfigInvalidBaseURL = errors.New("channel gateway: invalid base URL")
)

// GatewayConfig holds the connection settings shared by the outbound
// channel gateways (email, SMS, messenger)
type GatewayConfig struct {
	BaseURL        string
	APIKey         string
	TimeoutSeconds int
}

// Validate checks required fields and applies defaults
func (c *GatewayConfig) Validate() error {
	if c.BaseURL == "" {
		return ErrGatewayConfigMissingBaseURL
	}
	if _, err := url.Parse(c.BaseURL); err != nil {
		return fmt.Errorf("%w: %v", ErrGatewayConfigInvalidBaseURL, err)
	}
	if c.APIKey == "" {
		return ErrGatewayConfigMissingAPIKey
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 10
	}
	return nil
}
