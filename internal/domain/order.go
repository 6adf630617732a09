package domain

import "strings"

// OrderIDMaxLength bounds accepted order identifiers.
const OrderIDMaxLength = 64

// Order is a processed customer order.
type Order struct {
	ID       string
	Category string
	Price    float64
	Status   string
}

// Order statuses.
const (
	OrderStatusProcessed = "processed"
	OrderStatusCreated   = "created"
)

// ValidateOrderID checks that an order identifier is usable.
func ValidateOrderID(id string) error {
	id = strings.TrimSpace(id)

	if id == "" {
		return NewValidationError("orderId", "must not be empty")
	}

	if len(id) > OrderIDMaxLength {
		return NewValidationError("orderId", "exceeds maximum length")
	}

	return nil
}

// ValidateCategory checks that a product category is usable.
func ValidateCategory(category string) error {
	if strings.TrimSpace(category) == "" {
		return NewValidationError("category", "must not be empty")
	}

	return nil
}
