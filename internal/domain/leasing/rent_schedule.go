package leasing

import (
	"fmt"
	"sort"
	"time"

	"github.com/estate/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PeriodStatus represents the settlement status of a rent payment period
type PeriodStatus string

const (
	PeriodStatusPending PeriodStatus = "PENDING"
	PeriodStatusPartial PeriodStatus = "PARTIAL"
	PeriodStatusPaid    PeriodStatus = "PAID"
	PeriodStatusOverdue PeriodStatus = "OVERDUE"
	PeriodStatusWaived  PeriodStatus = "WAIVED"
)

// IsValid checks if the status is a valid PeriodStatus
func (s PeriodStatus) IsValid() bool {
	switch s {
	case PeriodStatusPending, PeriodStatusPartial, PeriodStatusPaid,
		PeriodStatusOverdue, PeriodStatusWaived:
		return true
	}
	return false
}

// RentPaymentPeriod is one calendar month of rent due under a lease. The
// ordered sequence of periods for a lease tiles [start date, end date] with
// no gaps or overlaps; both boundary dates are inclusive.
type RentPaymentPeriod struct {
	ID          uuid.UUID
	LeaseID     uuid.UUID
	Sequence    int
	PeriodStart time.Time
	PeriodEnd   time.Time
	DueDate     time.Time
	AmountDue   decimal.Decimal
	AmountPaid  decimal.Decimal
	Status      PeriodStatus
	PaidAt      *time.Time
	WaivedAt    *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsSettled returns true if money moved or the period was waived. Settled
// periods are immutable under schedule regeneration.
func (p *RentPaymentPeriod) IsSettled() bool {
	switch p.Status {
	case PeriodStatusPaid, PeriodStatusPartial, PeriodStatusWaived:
		return true
	}
	return false
}

// Outstanding returns the unpaid remainder of the period
func (p *RentPaymentPeriod) Outstanding() decimal.Decimal {
	return p.AmountDue.Sub(p.AmountPaid)
}

// RecordPayment applies a payment against this period. Due-amount
// bookkeeping only; settlement happens outside the engine.
func (p *RentPaymentPeriod) RecordPayment(amount decimal.Decimal) error {
	switch p.Status {
	case PeriodStatusPaid:
		return shared.NewDomainError("PERIOD_SETTLED", "Period is already fully paid")
	case PeriodStatusWaived:
		return shared.NewDomainError("PERIOD_SETTLED", "Period was waived")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if amount.GreaterThan(p.Outstanding()) {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment exceeds outstanding amount")
	}

	now := time.Now()
	p.AmountPaid = p.AmountPaid.Add(amount)
	if p.AmountPaid.GreaterThanOrEqual(p.AmountDue) {
		p.Status = PeriodStatusPaid
		p.PaidAt = &now
	} else {
		p.Status = PeriodStatusPartial
	}
	p.UpdatedAt = now

	return nil
}

// Waive forgives the remainder of the period
func (p *RentPaymentPeriod) Waive() error {
	switch p.Status {
	case PeriodStatusPaid:
		return shared.NewDomainError("PERIOD_SETTLED", "Period is already fully paid")
	case PeriodStatusWaived:
		return shared.NewDomainError("PERIOD_SETTLED", "Period was already waived")
	}

	now := time.Now()
	p.Status = PeriodStatusWaived
	p.WaivedAt = &now
	p.UpdatedAt = now

	return nil
}

// MarkOverdue flips a pending period whose due date has passed. Returns true
// if the status changed. Overdue detection is driven by the periodic sweep,
// never evaluated lazily on read.
func (p *RentPaymentPeriod) MarkOverdue(now time.Time) bool {
	if p.Status != PeriodStatusPending {
		return false
	}
	if !DateOnly(now).After(DateOnly(p.DueDate)) {
		return false
	}
	p.Status = PeriodStatusOverdue
	p.UpdatedAt = now
	return true
}

// ScheduleInconsistencyError reports a regeneration that would orphan or
// contradict a settled period. Fatal; requires manual reconciliation.
type ScheduleInconsistencyError struct {
	LeaseID uuid.UUID
	Detail  string
}

// Error implements the error interface
func (e *ScheduleInconsistencyError) Error() string {
	return fmt.Sprintf("lease %s: schedule inconsistency: %s", e.LeaseID, e.Detail)
}

// GenerateSchedule derives the full rent period sequence for a lease.
//
// Starting at the lease start date, one period per calendar month: a period
// ends one day before the next month's same day. The final period absorbs
// any sub-month remainder up to the lease end date instead of producing a
// stub period shorter than a month.
//
// Generation is a pure function of the lease terms: two calls with unchanged
// terms yield identical boundaries and amounts.
func GenerateSchedule(lease *Lease) []RentPaymentPeriod {
	return buildPeriods(lease, lease.StartDate, 1)
}

// buildPeriods tiles [from, lease.EndDate] with monthly periods, numbering
// them from firstSeq.
func buildPeriods(lease *Lease, from time.Time, firstSeq int) []RentPaymentPeriod {
	amount := lease.MonthlyCharge()
	periods := make([]RentPaymentPeriod, 0)

	cursor := DateOnly(from)
	end := DateOnly(lease.EndDate)
	seq := firstSeq
	for !cursor.After(end) {
		next := cursor.AddDate(0, 1, 0)
		// Final period when less than a full month would remain after it
		last := next.AddDate(0, 1, 0).After(end.AddDate(0, 0, 1))

		periodEnd := next.AddDate(0, 0, -1)
		if last || periodEnd.After(end) {
			periodEnd = end
		}

		now := time.Now()
		periods = append(periods, RentPaymentPeriod{
			ID:          uuid.New(),
			LeaseID:     lease.ID,
			Sequence:    seq,
			PeriodStart: cursor,
			PeriodEnd:   periodEnd,
			DueDate:     cursor,
			AmountDue:   amount,
			AmountPaid:  decimal.Zero,
			Status:      PeriodStatusPending,
			CreatedAt:   now,
			UpdatedAt:   now,
		})

		if last {
			break
		}
		cursor = next
		seq++
	}

	return periods
}

// RegenerateSchedule rebuilds the unsettled part of the schedule after the
// lease's end date or monetary terms changed. Settled periods are preserved
// byte for byte; everything after them is discarded and regenerated from the
// current terms.
//
// Regeneration fails with ScheduleInconsistency when a settled period no
// longer fits the lease interval, or when an unsettled period precedes a
// settled one (regenerating it would tear a hole next to immutable history).
func RegenerateSchedule(lease *Lease) ([]RentPaymentPeriod, error) {
	existing := make([]RentPaymentPeriod, len(lease.Periods))
	copy(existing, lease.Periods)
	sort.Slice(existing, func(i, j int) bool {
		return existing[i].PeriodStart.Before(existing[j].PeriodStart)
	})

	settled := make([]RentPaymentPeriod, 0, len(existing))
	sawUnsettled := false
	for _, p := range existing {
		if p.IsSettled() {
			if sawUnsettled {
				return nil, &ScheduleInconsistencyError{
					LeaseID: lease.ID,
					Detail:  "settled period follows an unsettled one",
				}
			}
			if p.PeriodStart.After(DateOnly(lease.EndDate)) {
				return nil, &ScheduleInconsistencyError{
					LeaseID: lease.ID,
					Detail: fmt.Sprintf("settled period %d starts %s, after the lease end date",
						p.Sequence, p.PeriodStart.Format("2006-01-02")),
				}
			}
			settled = append(settled, p)
		} else {
			sawUnsettled = true
		}
	}

	resumeFrom := DateOnly(lease.StartDate)
	nextSeq := 1
	if n := len(settled); n > 0 {
		lastSettled := settled[n-1]
		resumeFrom = lastSettled.PeriodEnd.AddDate(0, 0, 1)
		nextSeq = lastSettled.Sequence + 1
	}

	result := settled
	if !resumeFrom.After(DateOnly(lease.EndDate)) {
		result = append(result, buildPeriods(lease, resumeFrom, nextSeq)...)
	}

	return result, nil
}

// ValidateTiling checks that the period sequence exactly tiles the lease
// interval. Used by tests and the reconciliation sweep.
func ValidateTiling(lease *Lease, periods []RentPaymentPeriod) error {
	if len(periods) == 0 {
		return fmt.Errorf("no periods")
	}

	sorted := make([]RentPaymentPeriod, len(periods))
	copy(sorted, periods)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].PeriodStart.Before(sorted[j].PeriodStart)
	})

	if !sorted[0].PeriodStart.Equal(DateOnly(lease.StartDate)) {
		return fmt.Errorf("first period starts %s, lease starts %s",
			sorted[0].PeriodStart.Format("2006-01-02"), lease.StartDate.Format("2006-01-02"))
	}
	last := sorted[len(sorted)-1]
	if !last.PeriodEnd.Equal(DateOnly(lease.EndDate)) {
		return fmt.Errorf("last period ends %s, lease ends %s",
			last.PeriodEnd.Format("2006-01-02"), lease.EndDate.Format("2006-01-02"))
	}
	for i := 1; i < len(sorted); i++ {
		expected := sorted[i-1].PeriodEnd.AddDate(0, 0, 1)
		if !sorted[i].PeriodStart.Equal(expected) {
			return fmt.Errorf("gap or overlap between period %d and %d",
				sorted[i-1].Sequence, sorted[i].Sequence)
		}
	}

	return nil
}
