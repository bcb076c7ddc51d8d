package transport

import "github.com/Skotchmaster/marketplace/internal/models"

type CartLine struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

type CheckoutRequest struct {
	Name    string     `json:"name"`
	Address string     `json:"address"`
	Phone   string     `json:"phone"`
	Units   []CartLine `json:"units"`
}

const (
	LineCreated                  = "created"
	LineSkippedInsufficientStock = "skipped_insufficient_stock"
	LineSKUNotFound              = "sku_not_found"
)

// LineOutcome reports what happened to one cart line. OrderID is set only for
// created lines.
type LineOutcome struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
	Status   string `json:"status"`
	OrderID  uint   `json:"order_id,omitempty"`
}

type CheckoutResult struct {
	Orders []models.Order `json:"orders"`
	Lines  []LineOutcome  `json:"lines"`
}

type CheckoutResponse struct {
	Status string         `json:"status"`
	Orders []models.Order `json:"orders,omitempty"`
	Lines  []LineOutcome  `json:"lines,omitempty"`
}

type ValidationErrorResponse struct {
	Errors map[string][]string `json:"errors"`
}
