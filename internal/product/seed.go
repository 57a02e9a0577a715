package product

import (
	"time"

	"github.com/gofrs/uuid"
)

var meatColdChain = ColdChainSpec{
	Required:        true,
	StorageMinC:     0,
	StorageMaxC:     4,
	MaxHoursOutside: 2,
}

// DemoCatalog returns the storefront's starter products with freshness dates relative to now.
func DemoCatalog(now time.Time) []Product {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	twoDaysAgo := today.AddDate(0, 0, -2)
	fiveDaysAgo := today.AddDate(0, 0, -5)

	steakSpec := meatColdChain
	chickenSpec := meatColdChain

	catalog := []Product{
		{
			Type:          TypeVeg,
			Name:          "Carottes",
			Description:   "Carottes locales, croquantes.",
			PriceCents:    250,
			Unit:          "kg",
			Origin:        "Ferme des Prés - 32",
			FreshnessDate: twoDaysAgo,
			StockQty:      25,
		},
		{
			Type:          TypeVeg,
			Name:          "Tomates",
			Description:   "Tomates de saison.",
			PriceCents:    390,
			Unit:          "kg",
			Origin:        "Domaine du Soleil - 34",
			FreshnessDate: fiveDaysAgo,
			StockQty:      18,
		},
		{
			Type:          TypeMeat,
			Name:          "Steak haché",
			Description:   "Bœuf - 2 x 125g",
			PriceCents:    650,
			Unit:          "pack",
			Origin:        "Élevage du Bocage - 49",
			FreshnessDate: today,
			StockQty:      40,
			ColdChain:     &steakSpec,
		},
		{
			Type:          TypeMeat,
			Name:          "Escalopes de poulet",
			Description:   "Poulet - 500g",
			PriceCents:    890,
			Unit:          "barquette",
			Origin:        "Ferme des Volailles - 85",
			FreshnessDate: twoDaysAgo,
			StockQty:      22,
			ColdChain:     &chickenSpec,
		},
	}

	for i := range catalog {
		catalog[i].ID = uuid.Must(uuid.NewV4())
		catalog[i].IsActive = true
		catalog[i].CreatedAt = now
	}

	return catalog
}
