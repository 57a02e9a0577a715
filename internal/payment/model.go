package payment

import (
	"time"

	"github.com/gofrs/uuid"
)

type Status string

const (
	StatusRequiresConfirmation Status = "requires_confirmation"
	StatusSucceeded            Status = "succeeded"
	StatusFailed               Status = "failed"
)

func (s Status) String() string {
	return string(s)
}

type Intent struct {
	ID        uuid.UUID
	Provider  string
	OrderID   uuid.UUID
	Status    Status
	CreatedAt time.Time
}

// ClientSecret is the opaque token a storefront would hand to the payment provider.
func (i *Intent) ClientSecret() string {
	return "mock_" + i.ID.String()
}
