package cart

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/vasiliy-maslov/marketfresh/internal/product"
)

type Status string

const (
	StatusOpen       Status = "open"
	StatusCheckedOut Status = "checked_out"
	StatusCancelled  Status = "cancelled"
)

func (s Status) String() string {
	return string(s)
}

type Cart struct {
	ID         uuid.UUID
	Status     Status
	CreatedAt  time.Time
	Items      []Item
	TotalCents int64
}

type Item struct {
	ProductID      uuid.UUID
	Quantity       int
	Product        ItemProduct
	LineTotalCents int64
}

// ItemProduct is the live catalog view of a cart line, read at query time.
type ItemProduct struct {
	ID            uuid.UUID
	Type          product.Type
	Name          string
	PriceCents    int64
	Unit          string
	Origin        string
	FreshnessDate time.Time
	FreshnessDays int
	StockQty      int
}

// Price fills line totals, freshness ages and the cart total from the live product data.
func (c *Cart) Price(now time.Time) {
	var total int64
	for i := range c.Items {
		it := &c.Items[i]
		it.Product.FreshnessDays = product.FreshnessDays(it.Product.FreshnessDate, now)
		it.LineTotalCents = it.Product.PriceCents * int64(it.Quantity)
		total += it.LineTotalCents
	}
	c.TotalCents = total
}

// HasMeat reports whether any line holds a meat product.
func (c *Cart) HasMeat() bool {
	for _, it := range c.Items {
		if it.Product.Type == product.TypeMeat {
			return true
		}
	}
	return false
}
