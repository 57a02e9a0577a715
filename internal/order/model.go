package order

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/vasiliy-maslov/marketfresh/internal/product"
)

type Status string

const (
	StatusPendingPayment Status = "pending_payment"
	StatusPaid           Status = "paid"
	StatusCancelled      Status = "cancelled"
)

func (s Status) String() string {
	return string(s)
}

// Customer is copied onto the order at checkout.
type Customer struct {
	Name            string
	Email           string
	Phone           *string
	DeliveryAddress string
}

type Order struct {
	ID         uuid.UUID
	CartID     uuid.UUID
	Status     Status
	TotalCents int64
	Customer   Customer
	Items      []Item
	CreatedAt  time.Time
}

type Item struct {
	ProductID      uuid.UUID
	Quantity       int
	UnitPriceCents int64 // frozen at checkout
	LineTotalCents int64
	Product        ItemProduct
}

// ItemProduct describes the ordered product as the catalog shows it now.
type ItemProduct struct {
	ID            uuid.UUID
	Type          product.Type
	Name          string
	Unit          string
	Origin        string
	FreshnessDate time.Time
	FreshnessDays int
}

type CreateInput struct {
	CartID   uuid.UUID
	Customer Customer
}
