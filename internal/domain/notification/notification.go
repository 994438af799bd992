package notification

import (
	"time"

	"github.com/estate/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Channel identifies an independent delivery channel
type Channel string

const (
	ChannelInApp     Channel = "IN_APP"
	ChannelEmail     Channel = "EMAIL"
	ChannelSMS       Channel = "SMS"
	ChannelMessenger Channel = "MESSENGER"
)

// IsValid checks if the channel is a known Channel
func (c Channel) IsValid() bool {
	switch c {
	case ChannelInApp, ChannelEmail, ChannelSMS, ChannelMessenger:
		return true
	}
	return false
}

// String returns the string representation of Channel
func (c Channel) String() string {
	return string(c)
}

// DeliveryStatus tracks one channel delivery
type DeliveryStatus string

const (
	DeliveryStatusPending   DeliveryStatus = "PENDING"
	DeliveryStatusSent      DeliveryStatus = "SENT"
	DeliveryStatusDelivered DeliveryStatus = "DELIVERED"
	DeliveryStatusRead      DeliveryStatus = "READ"
	DeliveryStatusFailed    DeliveryStatus = "FAILED"
	DeliveryStatusCancelled DeliveryStatus = "CANCELLED"
)

// IsValid checks if the status is a valid DeliveryStatus
func (s DeliveryStatus) IsValid() bool {
	switch s {
	case DeliveryStatusPending, DeliveryStatusSent, DeliveryStatusDelivered,
		DeliveryStatusRead, DeliveryStatusFailed, DeliveryStatusCancelled:
		return true
	}
	return false
}

// IsTerminal returns true when the delivery needs no further work
func (s DeliveryStatus) IsTerminal() bool {
	switch s {
	case DeliveryStatusRead, DeliveryStatusFailed, DeliveryStatusCancelled:
		return true
	}
	return false
}

// Succeeded returns true when the channel reached the target
func (s DeliveryStatus) Succeeded() bool {
	switch s {
	case DeliveryStatusSent, DeliveryStatusDelivered, DeliveryStatusRead:
		return true
	}
	return false
}

// NotificationType classifies the message
type NotificationType string

const (
	TypeLeaseActivated    NotificationType = "LEASE_ACTIVATED"
	TypeLeaseTerminated   NotificationType = "LEASE_TERMINATED"
	TypeLeaseExpired      NotificationType = "LEASE_EXPIRED"
	TypeLeaseExpiringSoon NotificationType = "LEASE_EXPIRING_SOON"
	TypeRentOverdue       NotificationType = "RENT_OVERDUE"
	TypeRentDueSoon       NotificationType = "RENT_DUE_SOON"
	TypeVerificationDone  NotificationType = "VERIFICATION_DONE"
	TypePropertyListed    NotificationType = "PROPERTY_LISTED"
)

// Priority orders notifications for channel adapters that support it
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityNormal Priority = "NORMAL"
	PriorityHigh   Priority = "HIGH"
)

// ChannelDelivery is one channel's attempt record for a notification. The
// (NotificationID, Channel) pair is unique; re-dispatching never creates a
// second row for the same channel.
type ChannelDelivery struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	NotificationID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_notification_channel"`
	Channel        Channel   `gorm:"uniqueIndex:idx_notification_channel"`
	Status         DeliveryStatus
	Attempts       int
	LastError      string
	NextRetryAt    *time.Time
	SentAt         *time.Time
	DeliveredAt    *time.Time
	ReadAt         *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// RetryDue reports whether the delivery should be attempted now
func (d *ChannelDelivery) RetryDue(now time.Time) bool {
	if d.Status != DeliveryStatusPending {
		return false
	}
	return d.NextRetryAt == nil || !now.Before(*d.NextRetryAt)
}

// Notification is a logical message to one actor, fanned out into
// independent channel deliveries. It is the aggregate root; deliveries
// cannot outlive it.
type Notification struct {
	shared.BaseAggregateRoot
	TargetActorID uuid.UUID
	Type          NotificationType
	Priority      Priority
	Title         string
	Body          string
	ReferenceID   *uuid.UUID        // aggregate the message is about, if any
	Deliveries    []ChannelDelivery `gorm:"foreignKey:NotificationID"`
}

// NewNotification creates a logical notification with no deliveries yet
func NewNotification(target uuid.UUID, nType NotificationType, priority Priority, title, body string) (*Notification, error) {
	if target == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TARGET", "Target actor ID cannot be empty")
	}
	if title == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Notification title cannot be empty")
	}

	n := &Notification{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TargetActorID:     target,
		Type:              nType,
		Priority:          priority,
		Title:             title,
		Body:              body,
		Deliveries:        make([]ChannelDelivery, 0),
	}

	n.AddDomainEvent(NewNotificationCreatedEvent(n))

	return n, nil
}

// WithReference attaches the aggregate the message is about
func (n *Notification) WithReference(id uuid.UUID) *Notification {
	n.ReferenceID = &id
	return n
}

// EnsureDelivery returns the delivery record for a channel, creating a
// pending one if absent. The bool reports whether a record was created.
// This is the dedup point: a repeated dispatch finds the existing row.
func (n *Notification) EnsureDelivery(channel Channel) (*ChannelDelivery, bool) {
	for i := range n.Deliveries {
		if n.Deliveries[i].Channel == channel {
			return &n.Deliveries[i], false
		}
	}

	now := time.Now()
	n.Deliveries = append(n.Deliveries, ChannelDelivery{
		ID:             uuid.New(),
		NotificationID: n.ID,
		Channel:        channel,
		Status:         DeliveryStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	return &n.Deliveries[len(n.Deliveries)-1], true
}

// Delivery returns the delivery record for a channel, or nil
func (n *Notification) Delivery(channel Channel) *ChannelDelivery {
	for i := range n.Deliveries {
		if n.Deliveries[i].Channel == channel {
			return &n.Deliveries[i]
		}
	}
	return nil
}

// MarkSent records a successful adapter handoff for a channel
func (n *Notification) MarkSent(channel Channel) error {
	d := n.Delivery(channel)
	if d == nil {
		return shared.ErrNotFound
	}
	if d.Status.IsTerminal() {
		return shared.ErrInvalidState
	}

	now := time.Now()
	d.Status = DeliveryStatusSent
	d.Attempts++
	d.LastError = ""
	d.NextRetryAt = nil
	d.SentAt = &now
	d.UpdatedAt = now

	n.AddDomainEvent(NewChannelSentEvent(n, channel))

	return nil
}

// MarkDelivered records a channel-confirmed delivery receipt
func (n *Notification) MarkDelivered(channel Channel) error {
	d := n.Delivery(channel)
	if d == nil {
		return shared.ErrNotFound
	}
	if d.Status != DeliveryStatusSent {
		return shared.ErrInvalidState
	}

	now := time.Now()
	d.Status = DeliveryStatusDelivered
	d.DeliveredAt = &now
	d.UpdatedAt = now

	return nil
}

// MarkRead records the target actor reading the message on a channel
func (n *Notification) MarkRead(channel Channel) error {
	d := n.Delivery(channel)
	if d == nil {
		return shared.ErrNotFound
	}
	switch d.Status {
	case DeliveryStatusSent, DeliveryStatusDelivered:
	default:
		return shared.ErrInvalidState
	}

	now := time.Now()
	d.Status = DeliveryStatusRead
	d.ReadAt = &now
	d.UpdatedAt = now

	return nil
}

// MarkFailed records a failed attempt for a channel. Until maxAttempts is
// reached the delivery stays pending with an exponential-backoff retry time
// (backoffBase doubled per prior attempt); at maxAttempts it goes terminal
// without affecting the other channels.
func (n *Notification) MarkFailed(channel Channel, cause string, maxAttempts int, backoffBase time.Duration) error {
	d := n.Delivery(channel)
	if d == nil {
		return shared.ErrNotFound
	}
	if d.Status.IsTerminal() {
		return shared.ErrInvalidState
	}

	now := time.Now()
	d.Attempts++
	d.LastError = cause
	d.UpdatedAt = now

	if d.Attempts >= maxAttempts {
		d.Status = DeliveryStatusFailed
		d.NextRetryAt = nil
		n.AddDomainEvent(NewChannelFailedEvent(n, channel, cause))
		return nil
	}

	retryAt := now.Add(backoffBase << (d.Attempts - 1))
	d.Status = DeliveryStatusPending
	d.NextRetryAt = &retryAt

	return nil
}

// Cancel marks every non-terminal delivery cancelled. Used when the parent
// entity reached a state that makes the message moot.
func (n *Notification) Cancel() int {
	now := time.Now()
	cancelled := 0
	for i := range n.Deliveries {
		d := &n.Deliveries[i]
		if d.Status.IsTerminal() || d.Status.Succeeded() {
			continue
		}
		d.Status = DeliveryStatusCancelled
		d.NextRetryAt = nil
		d.UpdatedAt = now
		cancelled++
	}
	if cancelled > 0 {
		n.AddDomainEvent(NewNotificationCancelledEvent(n))
	}
	return cancelled
}

// IsDelivered is true once at least one channel succeeded
func (n *Notification) IsDelivered() bool {
	for i := range n.Deliveries {
		if n.Deliveries[i].Status.Succeeded() {
			return true
		}
	}
	return false
}

// IsFailed is true only when every attempted channel exhausted its retries
func (n *Notification) IsFailed() bool {
	if len(n.Deliveries) == 0 {
		return false
	}
	for i := range n.Deliveries {
		if n.Deliveries[i].Status != DeliveryStatusFailed {
			return false
		}
	}
	return true
}

// HasPendingRetries reports whether any channel still awaits an attempt
func (n *Notification) HasPendingRetries() bool {
	for i := range n.Deliveries {
		if n.Deliveries[i].Status == DeliveryStatusPending {
			return true
		}
	}
	return false
}
