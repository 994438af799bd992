package leasing

import (
	"time"

	"github.com/estate/backend/internal/domain/leasing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateLeaseRequest carries the terms for a new draft lease
type CreateLeaseRequest struct {
	PropertyID        uuid.UUID       `json:"property_id" validate:"required"`
	TenantID          uuid.UUID       `json:"tenant_id" validate:"required"`
	OwnerID           uuid.UUID       `json:"owner_id" validate:"required"`
	AgentID           *uuid.UUID      `json:"agent_id,omitempty"`
	StartDate         time.Time       `json:"start_date" validate:"required"`
	EndDate           time.Time       `json:"end_date" validate:"required"`
	MonthlyRent       decimal.Decimal `json:"monthly_rent" validate:"required"`
	Deposit           decimal.Decimal `json:"deposit"`
	MaintenanceCharge decimal.Decimal `json:"maintenance_charge"`
}

// RenewLeaseRequest carries the successor terms for a renewal
type RenewLeaseRequest struct {
	NewEndDate  time.Time       `json:"new_end_date" validate:"required"`
	MonthlyRent decimal.Decimal `json:"monthly_rent" validate:"required"`
}

// UpdateTermsRequest changes the end date and monetary terms of an active lease
type UpdateTermsRequest struct {
	EndDate           time.Time       `json:"end_date" validate:"required"`
	MonthlyRent       decimal.Decimal `json:"monthly_rent" validate:"required"`
	MaintenanceCharge decimal.Decimal `json:"maintenance_charge"`
}

// RecordPaymentRequest applies a payment to one rent period
type RecordPaymentRequest struct {
	Sequence int             `json:"sequence" validate:"required"`
	Amount   decimal.Decimal `json:"amount" validate:"required"`
}

// PeriodResponse is the API shape of one rent payment period
type PeriodResponse struct {
	ID          uuid.UUID       `json:"id"`
	Sequence    int             `json:"sequence"`
	PeriodStart time.Time       `json:"period_start"`
	PeriodEnd   time.Time       `json:"period_end"`
	DueDate     time.Time       `json:"due_date"`
	AmountDue   decimal.Decimal `json:"amount_due"`
	AmountPaid  decimal.Decimal `json:"amount_paid"`
	Status      string          `json:"status"`
}

// LeaseResponse is the API shape of a lease
type LeaseResponse struct {
	ID                uuid.UUID        `json:"id"`
	PropertyID        uuid.UUID        `json:"property_id"`
	TenantID          uuid.UUID        `json:"tenant_id"`
	OwnerID           uuid.UUID        `json:"owner_id"`
	AgentID           *uuid.UUID       `json:"agent_id,omitempty"`
	PredecessorID     *uuid.UUID       `json:"predecessor_id,omitempty"`
	Status            string           `json:"status"`
	ApprovalStatus    string           `json:"approval_status"`
	StartDate         time.Time        `json:"start_date"`
	EndDate           time.Time        `json:"end_date"`
	MonthlyRent       decimal.Decimal  `json:"monthly_rent"`
	Deposit           decimal.Decimal  `json:"deposit"`
	MaintenanceCharge decimal.Decimal  `json:"maintenance_charge"`
	Periods           []PeriodResponse `json:"periods,omitempty"`
	Version           int              `json:"version"`
}

// ToPeriodResponse converts a domain period to its API shape
func ToPeriodResponse(p *leasing.RentPaymentPeriod) PeriodResponse {
	return PeriodResponse{
		ID:          p.ID,
		Sequence:    p.Sequence,
		PeriodStart: p.PeriodStart,
		PeriodEnd:   p.PeriodEnd,
		DueDate:     p.DueDate,
		AmountDue:   p.AmountDue,
		AmountPaid:  p.AmountPaid,
		Status:      string(p.Status),
	}
}

// ToLeaseResponse converts a domain lease to its API shape
func ToLeaseResponse(l *leasing.Lease) LeaseResponse {
	periods := make([]PeriodResponse, 0, len(l.Periods))
	for i := range l.Periods {
		periods = append(periods, ToPeriodResponse(&l.Periods[i]))
	}

	return LeaseResponse{
		ID:                l.ID,
		PropertyID:        l.PropertyID,
		TenantID:          l.TenantID,
		OwnerID:           l.OwnerID,
		AgentID:           l.AgentID,
		PredecessorID:     l.PredecessorID,
		Status:            l.Status.String(),
		ApprovalStatus:    string(l.ApprovalStatus),
		StartDate:         l.StartDate,
		EndDate:           l.EndDate,
		MonthlyRent:       l.MonthlyRent,
		Deposit:           l.Deposit,
		MaintenanceCharge: l.MaintenanceCharge,
		Periods:           periods,
		Version:           l.Version,
	}
}
