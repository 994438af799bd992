package listing

import (
	"time"

	"github.com/estate/backend/internal/domain/listing"
	"github.com/google/uuid"
)

// CreatePropertyRequest carries the details of a new property draft
type CreatePropertyRequest struct {
	OwnerID uuid.UUID `json:"owner_id" validate:"required"`
	Title   string    `json:"title" validate:"required"`
	Address string    `json:"address" validate:"required"`
	City    string    `json:"city" validate:"required"`
}

// PropertyResponse is the API shape of a property
type PropertyResponse struct {
	ID                 uuid.UUID  `json:"id"`
	OwnerID            uuid.UUID  `json:"owner_id"`
	Title              string     `json:"title"`
	Address            string     `json:"address"`
	City               string     `json:"city"`
	Status             string     `json:"status"`
	Available          bool       `json:"available"`
	VerificationStatus string     `json:"verification_status"`
	ListedAt           *time.Time `json:"listed_at,omitempty"`
	Version            int        `json:"version"`
}

// ToPropertyResponse converts a domain property to its API shape
func ToPropertyResponse(p *listing.Property) PropertyResponse {
	return PropertyResponse{
		ID:                 p.ID,
		OwnerID:            p.OwnerID,
		Title:              p.Title,
		Address:            p.Address,
		City:               p.City,
		Status:             p.Status.String(),
		Available:          p.Available,
		VerificationStatus: string(p.VerificationStatus),
		ListedAt:           p.ListedAt,
		Version:            p.Version,
	}
}
