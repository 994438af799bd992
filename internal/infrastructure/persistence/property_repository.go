package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/estate/backend/internal/domain/listing"
	"github.com/estate/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPropertyRepository implements PropertyRepository using GORM
type GormPropertyRepository struct {
	db *gorm.DB
}

// NewGormPropertyRepository creates a new GormPropertyRepository
func NewGormPropertyRepository(db *gorm.DB) *GormPropertyRepository {
	return &GormPropertyRepository{db: db}
}

// FindByID finds a property by its ID
func (r *GormPropertyRepository) FindByID(ctx context.Context, id uuid.UUID) (*listing.Property, error) {
	var property listing.Property
	if err := r.db.WithContext(ctx).First(&property, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &property, nil
}

// FindByOwner finds all properties owned by the given actor, newest first
func (r *GormPropertyRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*listing.Property, error) {
	var properties []*listing.Property
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&properties).Error; err != nil {
		return nil, err
	}
	return properties, nil
}

// FindByStatus finds all properties in the given lifecycle status
func (r *GormPropertyRepository) FindByStatus(ctx context.Context, status listing.PropertyStatus) ([]*listing.Property, error) {
	var properties []*listing.Property
	if err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at DESC").
		Find(&properties).Error; err != nil {
		return nil, err
	}
	return properties, nil
}

// FindActiveListings returns properties in the listing pool
func (r *GormPropertyRepository) FindActiveListings(ctx context.Context) ([]*listing.Property, error) {
	var properties []*listing.Property
	if err := r.db.WithContext(ctx).
		Where("status = ? AND available = ?", listing.PropertyStatusActive, true).
		Order("listed_at DESC").
		Find(&properties).Error; err != nil {
		return nil, err
	}
	return properties, nil
}

// Save creates or updates a property
func (r *GormPropertyRepository) Save(ctx context.Context, property *listing.Property) error {
	return r.db.WithContext(ctx).Save(property).Error
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormPropertyRepository) SaveWithLock(ctx context.Context, property *listing.Property) error {
	loadedVersion := property.Version
	property.Version++
	property.UpdatedAt = time.Now()

	result := r.db.WithContext(ctx).
		Model(&listing.Property{}).
		Where("id = ? AND version = ?", property.ID, loadedVersion).
		Updates(map[string]interface{}{
			"owner_id":            property.OwnerID,
			"title":               property.Title,
			"address":             property.Address,
			"city":                property.City,
			"status":              property.Status,
			"available":           property.Available,
			"verification_status": property.VerificationStatus,
			"listed_at":           property.ListedAt,
			"rented_at":           property.RentedAt,
			"sold_at":             property.SoldAt,
			"version":             property.Version,
			"updated_at":          property.UpdatedAt,
		})

	if result.Error != nil {
		property.Version = loadedVersion
		return result.Error
	}
	if result.RowsAffected == 0 {
		property.Version = loadedVersion
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Delete archives a property
func (r *GormPropertyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&listing.Property{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count returns the total number of properties
func (r *GormPropertyRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&listing.Property{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormPropertyRepository implements PropertyRepository
var _ listing.PropertyRepository = (*GormPropertyRepository)(nil)
