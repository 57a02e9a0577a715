package http

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/vasiliy-maslov/marketfresh/internal/cart"
	"github.com/vasiliy-maslov/marketfresh/internal/coldchain"
	"github.com/vasiliy-maslov/marketfresh/internal/order"
	"github.com/vasiliy-maslov/marketfresh/internal/payment"
	"github.com/vasiliy-maslov/marketfresh/internal/product"
)

const dateLayout = "2006-01-02"

type ColdChainResponse struct {
	Required        bool    `json:"required"`
	StorageMinC     float64 `json:"storageMinC"`
	StorageMaxC     float64 `json:"storageMaxC"`
	MaxHoursOutside int     `json:"maxHoursOutside"`
}

type ProductResponse struct {
	ID            uuid.UUID          `json:"id"`
	Type          string             `json:"type"`
	Name          string             `json:"name"`
	Description   string             `json:"description"`
	PriceCents    int64              `json:"priceCents"`
	Unit          string             `json:"unit"`
	Origin        string             `json:"origin"`
	FreshnessDate string             `json:"freshnessDate"`
	FreshnessDays int                `json:"freshnessDays"`
	StockQty      int                `json:"stockQty"`
	IsActive      bool               `json:"isActive"`
	ColdChain     *ColdChainResponse `json:"coldChain,omitempty"`
}

type CartItemProductResponse struct {
	ID            uuid.UUID `json:"id"`
	Type          string    `json:"type"`
	Name          string    `json:"name"`
	PriceCents    int64     `json:"priceCents"`
	Unit          string    `json:"unit"`
	Origin        string    `json:"origin"`
	FreshnessDate string    `json:"freshnessDate"`
	FreshnessDays int       `json:"freshnessDays"`
}

type CartItemResponse struct {
	ProductID      uuid.UUID               `json:"productId"`
	Quantity       int                     `json:"quantity"`
	Product        CartItemProductResponse `json:"product"`
	LineTotalCents int64                   `json:"lineTotalCents"`
}

type CartResponse struct {
	ID         uuid.UUID          `json:"id"`
	Status     string             `json:"status"`
	CreatedAt  time.Time          `json:"createdAt"`
	Items      []CartItemResponse `json:"items"`
	TotalCents int64              `json:"totalCents"`
}

type CustomerResponse struct {
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Phone           *string `json:"phone"`
	DeliveryAddress string  `json:"deliveryAddress"`
}

type OrderItemProductResponse struct {
	ID            uuid.UUID `json:"id"`
	Type          string    `json:"type"`
	Name          string    `json:"name"`
	Unit          string    `json:"unit"`
	Origin        string    `json:"origin"`
	FreshnessDate string    `json:"freshnessDate"`
	FreshnessDays int       `json:"freshnessDays"`
}

type OrderItemResponse struct {
	ProductID      uuid.UUID                `json:"productId"`
	Quantity       int                      `json:"quantity"`
	UnitPriceCents int64                    `json:"unitPriceCents"`
	Product        OrderItemProductResponse `json:"product"`
	LineTotalCents int64                    `json:"lineTotalCents"`
}

type OrderResponse struct {
	ID         uuid.UUID           `json:"id"`
	CartID     uuid.UUID           `json:"cartId"`
	Status     string              `json:"status"`
	TotalCents int64               `json:"totalCents"`
	Customer   CustomerResponse    `json:"customer"`
	Items      []OrderItemResponse `json:"items"`
	CreatedAt  time.Time           `json:"createdAt"`
}

type PaymentIntentResponse struct {
	Provider        string    `json:"provider"`
	PaymentIntentID uuid.UUID `json:"paymentIntentId"`
	ClientSecret    string    `json:"clientSecret"`
}

type RequirementsResponse struct {
	StorageMinC     float64 `json:"storageMinC"`
	StorageMaxC     float64 `json:"storageMaxC"`
	MaxHoursOutside int     `json:"maxHoursOutside"`
	Note            string  `json:"note"`
	Conflicting     bool    `json:"conflicting"`
}

type ColdChainSummaryResponse struct {
	HasMeat      bool                  `json:"hasMeat"`
	Requirements *RequirementsResponse `json:"requirements"`
}

type ProductsEnvelope struct {
	Products []ProductResponse `json:"products"`
}

type ProductEnvelope struct {
	Product ProductResponse `json:"product"`
}

type CartCreatedEnvelope struct {
	CartID uuid.UUID `json:"cartId"`
}

type CartEnvelope struct {
	Cart CartResponse `json:"cart"`
}

type OrderEnvelope struct {
	Order OrderResponse `json:"order"`
}

func toProductResponse(p *product.Product) ProductResponse {
	resp := ProductResponse{
		ID:            p.ID,
		Type:          p.Type.String(),
		Name:          p.Name,
		Description:   p.Description,
		PriceCents:    p.PriceCents,
		Unit:          p.Unit,
		Origin:        p.Origin,
		FreshnessDate: p.FreshnessDate.Format(dateLayout),
		FreshnessDays: p.FreshnessDays,
		StockQty:      p.StockQty,
		IsActive:      p.IsActive,
	}
	if p.ColdChain != nil {
		resp.ColdChain = &ColdChainResponse{
			Required:        p.ColdChain.Required,
			StorageMinC:     p.ColdChain.StorageMinC,
			StorageMaxC:     p.ColdChain.StorageMaxC,
			MaxHoursOutside: p.ColdChain.MaxHoursOutside,
		}
	}
	return resp
}

func toCartResponse(c *cart.Cart) CartResponse {
	items := make([]CartItemResponse, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, CartItemResponse{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Product: CartItemProductResponse{
				ID:            it.Product.ID,
				Type:          it.Product.Type.String(),
				Name:          it.Product.Name,
				PriceCents:    it.Product.PriceCents,
				Unit:          it.Product.Unit,
				Origin:        it.Product.Origin,
				FreshnessDate: it.Product.FreshnessDate.Format(dateLayout),
				FreshnessDays: it.Product.FreshnessDays,
			},
			LineTotalCents: it.LineTotalCents,
		})
	}

	return CartResponse{
		ID:         c.ID,
		Status:     c.Status.String(),
		CreatedAt:  c.CreatedAt,
		Items:      items,
		TotalCents: c.TotalCents,
	}
}

func toOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemResponse{
			ProductID:      it.ProductID,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
			Product: OrderItemProductResponse{
				ID:            it.Product.ID,
				Type:          it.Product.Type.String(),
				Name:          it.Product.Name,
				Unit:          it.Product.Unit,
				Origin:        it.Product.Origin,
				FreshnessDate: it.Product.FreshnessDate.Format(dateLayout),
				FreshnessDays: it.Product.FreshnessDays,
			},
			LineTotalCents: it.LineTotalCents,
		})
	}

	return OrderResponse{
		ID:         o.ID,
		CartID:     o.CartID,
		Status:     o.Status.String(),
		TotalCents: o.TotalCents,
		Customer: CustomerResponse{
			Name:            o.Customer.Name,
			Email:           o.Customer.Email,
			Phone:           o.Customer.Phone,
			DeliveryAddress: o.Customer.DeliveryAddress,
		},
		Items:     items,
		CreatedAt: o.CreatedAt,
	}
}

func toPaymentIntentResponse(i *payment.Intent) PaymentIntentResponse {
	return PaymentIntentResponse{
		Provider:        i.Provider,
		PaymentIntentID: i.ID,
		ClientSecret:    i.ClientSecret(),
	}
}

func toColdChainSummaryResponse(s *coldchain.Summary) ColdChainSummaryResponse {
	resp := ColdChainSummaryResponse{HasMeat: s.HasMeat}
	if s.Requirements != nil {
		resp.Requirements = &RequirementsResponse{
			StorageMinC:     s.Requirements.StorageMinC,
			StorageMaxC:     s.Requirements.StorageMaxC,
			MaxHoursOutside: s.Requirements.MaxHoursOutside,
			Note:            s.Requirements.Note,
			Conflicting:     s.Requirements.Conflicting,
		}
	}
	return resp
}
