package leasing

import (
	"context"

	"github.com/estate/backend/internal/application/validation"
	"github.com/estate/backend/internal/domain/identity"
	"github.com/estate/backend/internal/domain/leasing"
	"github.com/estate/backend/internal/domain/listing"
	"github.com/estate/backend/internal/domain/shared"
	"github.com/estate/backend/internal/domain/shared/statemachine"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PropertyCacheInvalidator evicts a property's cached projections. Lease
// transitions that cascade a property status change must drop the stale entry
// before returning, same as the listing write paths do.
type PropertyCacheInvalidator interface {
	Invalidate(ctx context.Context, id uuid.UUID)
}

// LeaseService handles lease lifecycle operations. Transitions that cascade a
// property status change run inside a transaction scope so both aggregates
// commit together; everything else goes through the lease repository alone.
type LeaseService struct {
	leaseRepo      leasing.LeaseRepository
	propertyRepo   listing.PropertyRepository
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
	propertyCache  PropertyCacheInvalidator
	logger         *zap.Logger
}

// NewLeaseService creates a new LeaseService
func NewLeaseService(
	leaseRepo leasing.LeaseRepository,
	propertyRepo listing.PropertyRepository,
	txScope TransactionScope,
	logger *zap.Logger,
) *LeaseService {
	return &LeaseService{
		leaseRepo:    leaseRepo,
		propertyRepo: propertyRepo,
		txScope:      txScope,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *LeaseService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetPropertyCache sets the cache to invalidate on property cascades
func (s *LeaseService) SetPropertyCache(cache PropertyCacheInvalidator) {
	s.propertyCache = cache
}

func (s *LeaseService) invalidateProperty(ctx context.Context, propertyID uuid.UUID) {
	if s.propertyCache != nil {
		s.propertyCache.Invalidate(ctx, propertyID)
	}
}

// Create creates a new draft lease for a listed property
func (s *LeaseService) Create(ctx context.Context, actor identity.Actor, req CreateLeaseRequest) (*LeaseResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	property, err := s.propertyRepo.FindByID(ctx, req.PropertyID)
	if err != nil {
		return nil, err
	}
	if !property.IsListed() {
		return nil, shared.NewDomainError("PROPERTY_NOT_LISTED", "Leases can only be drafted for listed properties")
	}

	lease, err := leasing.NewLease(leasing.LeaseTerms{
		PropertyID:        req.PropertyID,
		TenantID:          req.TenantID,
		OwnerID:           req.OwnerID,
		AgentID:           req.AgentID,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		MonthlyRent:       req.MonthlyRent,
		Deposit:           req.Deposit,
		MaintenanceCharge: req.MaintenanceCharge,
	})
	if err != nil {
		return nil, err
	}

	if err := s.leaseRepo.Save(ctx, lease); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, lease)

	s.logger.Info("lease drafted",
		zap.String("lease_id", lease.ID.String()),
		zap.String("property_id", lease.PropertyID.String()),
	)

	response := ToLeaseResponse(lease)
	return &response, nil
}

// SubmitForApproval moves a draft lease into the approval workflow
func (s *LeaseService) SubmitForApproval(ctx context.Context, actor identity.Actor, leaseID uuid.UUID) error {
	return s.mutate(ctx, leaseID, func(lease *leasing.Lease) error {
		return lease.SubmitForApproval(actor)
	})
}

// ApproveByOwner records the owner's approval
func (s *LeaseService) ApproveByOwner(ctx context.Context, actor identity.Actor, leaseID uuid.UUID) error {
	return s.mutate(ctx, leaseID, func(lease *leasing.Lease) error {
		return lease.ApproveByOwner(actor)
	})
}

// ApproveByTenant records the tenant's approval
func (s *LeaseService) ApproveByTenant(ctx context.Context, actor identity.Actor, leaseID uuid.UUID) error {
	return s.mutate(ctx, leaseID, func(lease *leasing.Lease) error {
		return lease.ApproveByTenant(actor)
	})
}

// RejectApproval rejects the lease during approval
func (s *LeaseService) RejectApproval(ctx context.Context, actor identity.Actor, leaseID uuid.UUID) error {
	return s.mutate(ctx, leaseID, func(lease *leasing.Lease) error {
		return lease.RejectApproval(actor)
	})
}

// Activate brings a fully approved lease into force. Within one transaction
// it enforces the single-active-lease rule and cascades the property to
// rented; the loser of a concurrent activation gets a conflict error from the
// property version check.
func (s *LeaseService) Activate(ctx context.Context, actor identity.Actor, leaseID uuid.UUID) error {
	var lease *leasing.Lease
	var property *listing.Property

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		lease, err = repos.LeaseRepo().FindByID(ctx, leaseID)
		if err != nil {
			return err
		}

		active, err := repos.LeaseRepo().CountActiveByProperty(ctx, lease.PropertyID)
		if err != nil {
			return err
		}
		if active > 0 {
			return &statemachine.GuardViolationError{
				EntityKind: "Lease",
				EntityID:   lease.ID,
				From:       statemachine.State(lease.Status),
				To:         statemachine.State(leasing.LeaseStatusActive),
				Rule:       "single_active_lease",
				Detail:     "property already has an active lease",
			}
		}

		property, err = repos.PropertyRepo().FindByID(ctx, lease.PropertyID)
		if err != nil {
			return err
		}

		if err := lease.Activate(actor); err != nil {
			return err
		}
		// cascaded transition, runs on engine authority
		if err := property.MarkRented(identity.SystemActor(), lease.ID); err != nil {
			return err
		}

		if err := repos.LeaseRepo().SaveWithLock(ctx, lease); err != nil {
			return err
		}
		return repos.PropertyRepo().SaveWithLock(ctx, property)
	})
	if err != nil {
		return err
	}

	s.invalidateProperty(ctx, property.ID)
	s.publishEvents(ctx, lease)
	s.publishEvents(ctx, property)

	s.logger.Info("lease activated",
		zap.String("lease_id", lease.ID.String()),
		zap.String("property_id", property.ID.String()),
	)

	return nil
}

// Terminate ends a lease. When the lease was active, the property flips back
// to listed and available in the same commit.
func (s *LeaseService) Terminate(ctx context.Context, actor identity.Actor, leaseID uuid.UUID, reason string) error {
	var lease *leasing.Lease
	var property *listing.Property

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		lease, err = repos.LeaseRepo().FindByID(ctx, leaseID)
		if err != nil {
			return err
		}

		wasActive := lease.IsActive()
		if err := lease.Terminate(actor, reason); err != nil {
			return err
		}

		if wasActive {
			property, err = repos.PropertyRepo().FindByID(ctx, lease.PropertyID)
			if err != nil {
				return err
			}
			if err := property.Release(identity.SystemActor(), lease.ID); err != nil {
				return err
			}
			if err := repos.PropertyRepo().SaveWithLock(ctx, property); err != nil {
				return err
			}
		}

		return repos.LeaseRepo().SaveWithLock(ctx, lease)
	})
	if err != nil {
		return err
	}

	s.publishEvents(ctx, lease)
	if property != nil {
		s.invalidateProperty(ctx, property.ID)
		s.publishEvents(ctx, property)
	}

	s.logger.Info("lease terminated",
		zap.String("lease_id", lease.ID.String()),
		zap.String("reason", reason),
	)

	return nil
}

// Renew closes the lease as renewed and persists a draft successor in the
// same transaction. The property is released back to listed in that commit so
// the successor can activate through the normal path once approved.
func (s *LeaseService) Renew(ctx context.Context, actor identity.Actor, leaseID uuid.UUID, req RenewLeaseRequest) (*LeaseResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	var lease, successor *leasing.Lease
	var property *listing.Property

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		lease, err = repos.LeaseRepo().FindByID(ctx, leaseID)
		if err != nil {
			return err
		}

		successor, err = lease.Renew(actor, req.NewEndDate, req.MonthlyRent)
		if err != nil {
			return err
		}

		property, err = repos.PropertyRepo().FindByID(ctx, lease.PropertyID)
		if err != nil {
			return err
		}
		if err := property.Release(identity.SystemActor(), lease.ID); err != nil {
			return err
		}

		if err := repos.LeaseRepo().SaveWithLock(ctx, lease); err != nil {
			return err
		}
		if err := repos.PropertyRepo().SaveWithLock(ctx, property); err != nil {
			return err
		}
		return repos.LeaseRepo().Save(ctx, successor)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateProperty(ctx, property.ID)
	s.publishEvents(ctx, lease)
	s.publishEvents(ctx, property)
	s.publishEvents(ctx, successor)

	s.logger.Info("lease renewed",
		zap.String("lease_id", lease.ID.String()),
		zap.String("successor_id", successor.ID.String()),
	)

	response := ToLeaseResponse(successor)
	return &response, nil
}

// UpdateTerms changes the end date and monetary terms of an active lease.
// Schedule regeneration happens after commit, driven by the terms-changed
// event.
func (s *LeaseService) UpdateTerms(ctx context.Context, actor identity.Actor, leaseID uuid.UUID, req UpdateTermsRequest) error {
	if err := validation.Struct(req); err != nil {
		return err
	}
	return s.mutate(ctx, leaseID, func(lease *leasing.Lease) error {
		return lease.UpdateTerms(actor, req.EndDate, req.MonthlyRent, req.MaintenanceCharge)
	})
}

// RecordPayment applies a payment against one rent period
func (s *LeaseService) RecordPayment(ctx context.Context, actor identity.Actor, leaseID uuid.UUID, req RecordPaymentRequest) error {
	if !actor.Has(identity.CapPaymentRecord) {
		return shared.ErrUnauthorized
	}
	if err := validation.Struct(req); err != nil {
		return err
	}
	return s.mutate(ctx, leaseID, func(lease *leasing.Lease) error {
		period := findPeriod(lease, req.Sequence)
		if period == nil {
			return shared.ErrNotFound
		}
		return period.RecordPayment(req.Amount)
	})
}

// WaivePeriod forgives the remainder of one rent period
func (s *LeaseService) WaivePeriod(ctx context.Context, actor identity.Actor, leaseID uuid.UUID, sequence int) error {
	if !actor.Has(identity.CapPeriodWaive) {
		return shared.ErrUnauthorized
	}
	return s.mutate(ctx, leaseID, func(lease *leasing.Lease) error {
		period := findPeriod(lease, sequence)
		if period == nil {
			return shared.ErrNotFound
		}
		return period.Waive()
	})
}

// GetByID retrieves a lease with its schedule
func (s *LeaseService) GetByID(ctx context.Context, leaseID uuid.UUID) (*LeaseResponse, error) {
	lease, err := s.leaseRepo.FindByID(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	response := ToLeaseResponse(lease)
	return &response, nil
}

// ListByProperty retrieves the lease history of a property
func (s *LeaseService) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]LeaseResponse, error) {
	leases, err := s.leaseRepo.FindByProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	responses := make([]LeaseResponse, 0, len(leases))
	for _, l := range leases {
		responses = append(responses, ToLeaseResponse(l))
	}
	return responses, nil
}

// mutate loads a lease, applies fn, and saves with optimistic locking
func (s *LeaseService) mutate(ctx context.Context, leaseID uuid.UUID, fn func(*leasing.Lease) error) error {
	lease, err := s.leaseRepo.FindByID(ctx, leaseID)
	if err != nil {
		return err
	}

	if err := fn(lease); err != nil {
		return err
	}

	if err := s.leaseRepo.SaveWithLock(ctx, lease); err != nil {
		return err
	}

	s.publishEvents(ctx, lease)

	return nil
}

func findPeriod(lease *leasing.Lease, sequence int) *leasing.RentPaymentPeriod {
	for i := range lease.Periods {
		if lease.Periods[i].Sequence == sequence {
			return &lease.Periods[i]
		}
	}
	return nil
}

type eventCarrier interface {
	GetDomainEvents() []shared.DomainEvent
	ClearDomainEvents()
}

// publishEvents publishes and clears the aggregate's domain events. Event
// handling is asynchronous; publish failures are logged, never propagated.
func (s *LeaseService) publishEvents(ctx context.Context, aggregate eventCarrier) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range aggregate.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish domain event",
				zap.String("event_type", event.EventType()),
				zap.Error(err),
			)
		}
	}
	aggregate.ClearDomainEvents()
}
