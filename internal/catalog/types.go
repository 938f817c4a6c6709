package catalog

// Product is the item stored in the products DynamoDB table.
type Product struct {
	ProductID string  `dynamodbav:"product_id" json:"productId"` // PK
	Name      string  `dynamodbav:"name" json:"name"`
	Price     float64 `dynamodbav:"price" json:"price"` // major currency units, non-negative
	Stock     int     `dynamodbav:"stock" json:"stock"` // non-negative
}
