package checkout

import (
	"errors"
	"fmt"
)

// ErrTransactionConflict indicates the commit lost against a concurrent
// transaction on the same items and DynamoDB's internal retries gave up.
var ErrTransactionConflict = errors.New("checkout transaction conflicted")

// StockError rejects a checkout because of one specific product: either the
// product does not exist or its stock cannot cover the requested quantity.
// The whole transaction aborts; no partial writes are applied.
type StockError struct {
	ProductID string
	Name      string // empty when the product record is missing
	Available int
	Requested int
	Missing   bool
}

func (e *StockError) Error() string {
	label := e.Name
	if label == "" {
		label = e.ProductID
	}
	if e.Missing {
		return fmt.Sprintf("product %s does not exist", label)
	}
	return fmt.Sprintf("insufficient stock for product %s", label)
}
