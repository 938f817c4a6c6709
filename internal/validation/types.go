package validation

// CartLine is one requested quantity in the submitted cart.
type CartLine struct {
	Quantity int `json:"quantity" validate:"required,min=1"` // must be >= 1
}

// CheckoutRequest is the payload for POST /api/checkout.
// All four top-level fields must be present and non-empty; nothing touches
// the database before this passes.
type CheckoutRequest struct {
	Cart     map[string]CartLine `json:"cart" validate:"required,min=1,dive"` // productId -> line
	FullName string              `json:"fullName" validate:"required"`
	Address  interface{}         `json:"address" validate:"required"` // string or structured object
	UserID   string              `json:"userId" validate:"required"`
}

// PaymentIntentRequest is the payload for POST /api/payments/intent.
// Amount is in major currency units.
type PaymentIntentRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}
