package domain

import (
	"strings"
	"time"
)

// Valid service frequencies
const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)

var validFrequencies = map[string]bool{
	FrequencyDaily:   true,
	FrequencyWeekly:  true,
	FrequencyMonthly: true,
}

// Valid service categories
const (
	CategoryGrocery  = "grocery"
	CategoryUtility  = "utility"
	CategoryBeverage = "beverage"
	CategoryOther    = "other"
)

var validCategories = map[string]bool{
	CategoryGrocery:  true,
	CategoryUtility:  true,
	CategoryBeverage: true,
	CategoryOther:    true,
}

// Service is a recurring deliverable in the catalog (milk, water, gas...).
type Service struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Frequencies []string  `json:"frequencies"`
	Unit        string    `json:"unit"`
	Category    string    `json:"category"`
	MaxQuantity int       `json:"max_quantity"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreateServiceRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Price       float64  `json:"price"`
	Frequencies []string `json:"frequencies"`
	Unit        string   `json:"unit,omitempty"`
	Category    string   `json:"category,omitempty"`
	MaxQuantity int      `json:"max_quantity,omitempty"`
}

type UpdateServiceRequest struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Frequencies []string `json:"frequencies,omitempty"`
	Unit        *string  `json:"unit,omitempty"`
	Category    *string  `json:"category,omitempty"`
	MaxQuantity *int     `json:"max_quantity,omitempty"`
}

func validateFrequencies(frequencies []string) error {
	if len(frequencies) == 0 {
		return NewValidationError("frequencies", "at least one frequency is required")
	}
	for _, f := range frequencies {
		if !validFrequencies[f] {
			return NewValidationError("frequencies", "must be daily, weekly or monthly")
		}
	}
	return nil
}

func (r *CreateServiceRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
	if r.Unit == "" {
		r.Unit = "per item"
	}
	if r.Category == "" {
		r.Category = CategoryOther
	}
	if r.MaxQuantity == 0 {
		r.MaxQuantity = 5
	}
}

func (r *CreateServiceRequest) Validate() error {
	if len(r.Name) < 2 || len(r.Name) > 100 {
		return NewValidationError("name", "must be between 2 and 100 characters")
	}
	if len(r.Description) > 255 {
		return NewValidationError("description", "must be at most 255 characters")
	}
	if r.Price < 0 {
		return NewValidationError("price", "must not be negative")
	}
	if !validCategories[r.Category] {
		return NewValidationError("category", "must be grocery, utility, beverage or other")
	}
	if r.MaxQuantity < 1 {
		return NewValidationError("max_quantity", "must be at least 1")
	}
	return validateFrequencies(r.Frequencies)
}

func (r *UpdateServiceRequest) Normalize() {
	if r.Name != nil {
		*r.Name = strings.TrimSpace(*r.Name)
	}
	if r.Description != nil {
		*r.Description = strings.TrimSpace(*r.Description)
	}
}

func (r *UpdateServiceRequest) Validate() error {
	if r.Name != nil && (len(*r.Name) < 2 || len(*r.Name) > 100) {
		return NewValidationError("name", "must be between 2 and 100 characters")
	}
	if r.Description != nil && len(*r.Description) > 255 {
		return NewValidationError("description", "must be at most 255 characters")
	}
	if r.Price != nil && *r.Price < 0 {
		return NewValidationError("price", "must not be negative")
	}
	if r.Category != nil && !validCategories[*r.Category] {
		return NewValidationError("category", "must be grocery, utility, beverage or other")
	}
	if r.MaxQuantity != nil && *r.MaxQuantity < 1 {
		return NewValidationError("max_quantity", "must be at least 1")
	}
	if r.Frequencies != nil {
		return validateFrequencies(r.Frequencies)
	}
	return nil
}

// DefaultServices seeds the catalog for a fresh install.
func DefaultServices() []CreateServiceRequest {
	return []CreateServiceRequest{
		{Name: "Milk Delivery", Price: 30, Frequencies: []string{FrequencyDaily}, Description: "Fresh milk every day", Category: CategoryBeverage, Unit: "per litre", MaxQuantity: 5},
		{Name: "Water Can", Price: 50, Frequencies: []string{FrequencyDaily, FrequencyWeekly}, Description: "20L water cans delivered", Category: CategoryBeverage, Unit: "per can", MaxQuantity: 5},
		{Name: "Gas Cylinder", Price: 900, Frequencies: []string{FrequencyMonthly}, Description: "LPG cylinder home delivery", Category: CategoryUtility, Unit: "per cylinder", MaxQuantity: 2},
	}
}
