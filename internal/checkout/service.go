package checkout

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"

	"github.com/NTWKKM/ntwcoffeeroaster/internal/aws"
	"github.com/NTWKKM/ntwcoffeeroaster/internal/catalog"
	"github.com/NTWKKM/ntwcoffeeroaster/internal/orders"
)

// CartLine is one requested purchase quantity for a product.
type CartLine struct {
	Quantity int
}

// Input is a validated checkout request.
type Input struct {
	Cart     map[string]CartLine
	FullName string
	Address  interface{}
	UserID   string
}

// Receipt is returned after a committed checkout.
type Receipt struct {
	OrderID     string
	TotalAmount float64
}

// Service runs the checkout transaction: read every cart product in one
// consistent snapshot, validate stock, then commit all stock decrements and
// the new order as a single TransactWriteItems call. DynamoDB guarantees the
// commit is all-or-nothing, so a failed checkout never leaves a torn state.
//
// Note: there is no idempotency key. Resubmitting an identical request after
// a success creates a second order and decrements stock again.
type Service struct {
	client        aws.DynamoDBAPI
	productsTable string
	ordersTable   string
	nowFunc       func() time.Time
	newID         func() string
}

// NewService creates a checkout Service over the given tables.
func NewService(client aws.DynamoDBAPI, productsTable, ordersTable string) *Service {
	return &Service{
		client:        client,
		productsTable: productsTable,
		ordersTable:   ordersTable,
		nowFunc:       time.Now,
		newID:         uuid.NewString,
	}
}

// PlaceOrder attempts the checkout. On success every product's stock is
// decremented by its requested quantity and exactly one order with status
// paid exists; on any failure nothing is written.
//
// Stock equality is allowed: a line may take stock down to exactly zero.
func (s *Service) PlaceOrder(ctx context.Context, in Input) (*Receipt, error) {
	if len(in.Cart) == 0 {
		return nil, errors.New("cart is empty")
	}

	// Sorted key order keeps the read and write item lists aligned, which is
	// what lets a cancellation reason index name the offending product.
	ids := make([]string, 0, len(in.Cart))
	for id := range in.Cart {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	products, err := s.readProducts(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]orders.OrderItem, 0, len(ids))
	writes := make([]types.TransactWriteItem, 0, len(ids)+1)
	var total float64

	for i, id := range ids {
		qty := in.Cart[id].Quantity
		p := products[i]
		if p == nil {
			return nil, &StockError{ProductID: id, Requested: qty, Missing: true}
		}
		if p.Stock < qty {
			return nil, &StockError{ProductID: id, Name: p.Name, Available: p.Stock, Requested: qty}
		}

		// The condition re-checks stock at commit time. A concurrent checkout
		// that drained stock between our read and this write cancels the whole
		// transaction instead of driving stock negative.
		writes = append(writes, types.TransactWriteItem{
			Update: &types.Update{
				TableName: &s.productsTable,
				Key: map[string]types.AttributeValue{
					"product_id": &types.AttributeValueMemberS{Value: id},
				},
				UpdateExpression:    awsString("SET stock = stock - :q"),
				ConditionExpression: awsString("attribute_exists(product_id) AND stock >= :q"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":q": &types.AttributeValueMemberN{Value: strconv.Itoa(qty)},
				},
			},
		})

		items = append(items, orders.OrderItem{
			ProductID: id,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  qty,
		})
		total += p.Price * float64(qty)
	}

	order := orders.Order{
		OrderID:     s.newID(),
		UserID:      in.UserID,
		Items:       items,
		TotalAmount: total,
		Address:     in.Address,
		FullName:    in.FullName,
		CreatedAt:   s.nowFunc().UTC(),
		Status:      orders.StatusPaid,
	}
	orderMap, err := attributevalue.MarshalMap(order)
	if err != nil {
		return nil, fmt.Errorf("marshal order: %w", err)
	}
	writes = append(writes, types.TransactWriteItem{
		Put: &types.Put{
			TableName:           &s.ordersTable,
			Item:                orderMap,
			ConditionExpression: awsString("attribute_not_exists(order_id)"),
		},
	})

	_, err = s.client.TransactWriteItems(ctx, &dyn.TransactWriteItemsInput{
		TransactItems: writes,
	})
	if err != nil {
		return nil, s.mapCommitError(err, ids, in.Cart)
	}

	return &Receipt{OrderID: order.OrderID, TotalAmount: total}, nil
}

// readProducts fetches all cart products in one TransactGetItems call so the
// stock checks observe a mutually consistent snapshot. Missing products come
// back as nil entries, aligned with ids.
func (s *Service) readProducts(ctx context.Context, ids []string) ([]*catalog.Product, error) {
	gets := make([]types.TransactGetItem, 0, len(ids))
	for _, id := range ids {
		gets = append(gets, types.TransactGetItem{
			Get: &types.Get{
				TableName: &s.productsTable,
				Key: map[string]types.AttributeValue{
					"product_id": &types.AttributeValueMemberS{Value: id},
				},
			},
		})
	}

	out, err := s.client.TransactGetItems(ctx, &dyn.TransactGetItemsInput{
		TransactItems: gets,
	})
	if err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) {
			return nil, fmt.Errorf("%w: %v", ErrTransactionConflict, err)
		}
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("read products (%s): %w", apiErr.ErrorCode(), err)
		}
		return nil, fmt.Errorf("read products: %w", err)
	}

	products := make([]*catalog.Product, len(ids))
	for i, resp := range out.Responses {
		if len(resp.Item) == 0 {
			continue
		}
		var p catalog.Product
		if err := attributevalue.UnmarshalMap(resp.Item, &p); err != nil {
			return nil, fmt.Errorf("unmarshal product %s: %w", ids[i], err)
		}
		products[i] = &p
	}
	return products, nil
}

// mapCommitError translates a TransactWriteItems failure. Cancellation
// reasons are positional: the first len(ids) transact items are the stock
// updates, so a ConditionalCheckFailed there means that product's stock was
// drained by a concurrent checkout after our read.
func (s *Service) mapCommitError(err error, ids []string, cart map[string]CartLine) error {
	var tce *types.TransactionCanceledException
	if !errors.As(err, &tce) {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			return fmt.Errorf("transact write (%s): %w", apiErr.ErrorCode(), err)
		}
		return fmt.Errorf("transact write: %w", err)
	}

	for i, reason := range tce.CancellationReasons {
		if reason.Code == nil {
			continue
		}
		switch *reason.Code {
		case "ConditionalCheckFailed":
			if i < len(ids) {
				return &StockError{ProductID: ids[i], Requested: cart[ids[i]].Quantity}
			}
			return fmt.Errorf("order id collision: %w", err)
		case "TransactionConflict":
			return fmt.Errorf("%w: %v", ErrTransactionConflict, err)
		}
	}
	return fmt.Errorf("transaction canceled: %w", err)
}

func awsString(s string) *string { return &s }
