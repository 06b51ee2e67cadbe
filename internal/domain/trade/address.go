package trade

import (
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Defaults applied to omitted shipping fields
const (
	DefaultState      = "Unknown"
	DefaultPostalCode = "00000"
	DefaultCountry    = "Vietnam"
)

// Address is a shipping address owned by a user
type Address struct {
	shared.BaseEntity
	UserID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Street     string    `gorm:"type:varchar(255);not null"`
	City       string    `gorm:"type:varchar(100);not null"`
	State      string    `gorm:"type:varchar(100);not null"`
	PostalCode string    `gorm:"type:varchar(20);not null"`
	Country    string    `gorm:"type:varchar(100);not null"`
	IsDefault  bool      `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (Address) TableName() string {
	return "addresses"
}

// ShippingInput is the customer-supplied shipping address
type ShippingInput struct {
	Street     string
	City       string
	State      string
	PostalCode string
	Country    string
}

// NewShippingAddress creates a non-default address, filling omitted optional fields
func NewShippingAddress(userID uuid.UUID, in ShippingInput) (*Address, error) {
	street := strings.TrimSpace(in.Street)
	city := strings.TrimSpace(in.City)
	if street == "" || city == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Street and city are required")
	}
	return &Address{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		Street:     street,
		City:       city,
		State:      orDefault(in.State, DefaultState),
		PostalCode: orDefault(in.PostalCode, DefaultPostalCode),
		Country:    orDefault(in.Country, DefaultCountry),
	}, nil
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}
