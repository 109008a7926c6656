package billing

import (
	"time"

	"github.com/bhavya681/akobot-billing/internal/domain/enums"
)

// Attempt tracks one purchase from intent to settlement. Status is the single
// source of truth for "is a purchase for this package in flight"; at most one
// non-terminal attempt exists per (user, package) at a time.
type Attempt struct {
	ID             string              `json:"id"`
	UserID         int64               `json:"user_id"`
	PackageID      string              `json:"package_id"`
	Gateway        string              `json:"gateway"`
	Order          *Order              `json:"order,omitempty"`
	Status         enums.AttemptStatus `json:"status"`
	FailureCode    string              `json:"failure_code,omitempty"`
	FailureMessage string              `json:"failure_message,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	SettledAt      *time.Time          `json:"settled_at,omitempty"`
}
