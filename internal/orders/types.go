package orders

import "time"

// Order statuses
const (
	StatusPaid      = "paid"      // set by checkout inside the commit transaction
	StatusCompleted = "completed" // set by the payment webhook
)

// OrderItem snapshots one cart line at purchase time. Price is copied, not
// referenced, so later catalog price changes never alter past orders.
type OrderItem struct {
	ProductID string  `dynamodbav:"product_id" json:"productId"`
	Name      string  `dynamodbav:"name" json:"name"`
	Price     float64 `dynamodbav:"price" json:"price"`
	Quantity  int     `dynamodbav:"quantity" json:"quantity"`
}

// Order represents the item stored in the orders DynamoDB table.
// Orders are immutable after creation except for the status transition.
type Order struct {
	OrderID     string      `dynamodbav:"order_id" json:"orderId"` // PK
	UserID      string      `dynamodbav:"user_id" json:"userId"`
	Items       []OrderItem `dynamodbav:"items" json:"items"`
	TotalAmount float64     `dynamodbav:"total_amount" json:"totalAmount"`
	Address     interface{} `dynamodbav:"address" json:"address"` // opaque client shape, string or object
	FullName    string      `dynamodbav:"full_name" json:"fullName"`
	CreatedAt   time.Time   `dynamodbav:"created_at" json:"createdAt"`
	Status      string      `dynamodbav:"status" json:"status"`
}
