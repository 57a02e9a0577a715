package product

import (
	"time"

	"github.com/gofrs/uuid"
)

type Type string

const (
	TypeVeg  Type = "veg"
	TypeMeat Type = "meat"
)

func (t Type) String() string {
	return string(t)
}

func (t Type) Valid() bool {
	return t == TypeVeg || t == TypeMeat
}

// ColdChainSpec is the storage constraint a meat product must be kept within.
type ColdChainSpec struct {
	Required        bool
	StorageMinC     float64
	StorageMaxC     float64
	MaxHoursOutside int
}

type Product struct {
	ID            uuid.UUID
	Type          Type
	Name          string
	Description   string
	PriceCents    int64
	Unit          string
	Origin        string
	FreshnessDate time.Time // calendar date, UTC midnight
	FreshnessDays int       // derived at read time
	StockQty      int
	IsActive      bool
	CreatedAt     time.Time
	ColdChain     *ColdChainSpec // meat only, nil when no spec is recorded
}

// Filter narrows ListProducts. The zero value lists every active product.
type Filter struct {
	Type Type
}

const day = 24 * time.Hour

// FreshnessDays returns floor((now - freshnessDate) / 24h). The result is not clamped,
// so a date in the future yields a negative age.
func FreshnessDays(freshnessDate, now time.Time) int {
	date := time.Date(freshnessDate.Year(), freshnessDate.Month(), freshnessDate.Day(), 0, 0, 0, 0, time.UTC)
	elapsed := now.Sub(date)

	days := elapsed / day
	if elapsed < 0 && elapsed%day != 0 {
		days--
	}
	return int(days)
}
