package orders

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// mockDynamo supports GetItem and the conditional UpdateItem the store uses.
// It stores items per table in a nested map: table -> pkValue -> item map.
type mockDynamo struct {
	mu     sync.Mutex
	tables map[string]map[string]map[string]types.AttributeValue
}

func newMockDynamo() *mockDynamo {
	return &mockDynamo{
		tables: map[string]map[string]map[string]types.AttributeValue{},
	}
}

func (m *mockDynamo) ensureTable(tbl string) {
	if _, ok := m.tables[tbl]; !ok {
		m.tables[tbl] = map[string]map[string]types.AttributeValue{}
	}
}

func (m *mockDynamo) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureTable(*params.TableName)
	pk := params.Key["order_id"].(*types.AttributeValueMemberS).Value
	item, ok := m.tables[*params.TableName][pk]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

func (m *mockDynamo) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureTable(*params.TableName)
	pk := params.Key["order_id"].(*types.AttributeValueMemberS).Value
	item, exists := m.tables[*params.TableName][pk]
	if !exists {
		return nil, &types.ConditionalCheckFailedException{}
	}
	if params.ConditionExpression != nil && *params.ConditionExpression == "#s = :expected" {
		curr, ok := item["status"].(*types.AttributeValueMemberS)
		if !ok {
			return nil, &types.ConditionalCheckFailedException{}
		}
		expected := params.ExpressionAttributeValues[":expected"].(*types.AttributeValueMemberS).Value
		if curr.Value != expected {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}
	if v, ok := params.ExpressionAttributeValues[":new"]; ok {
		item["status"] = v
	}
	if v, ok := params.ExpressionAttributeValues[":ua"]; ok {
		item["updated_at"] = v
	}
	m.tables[*params.TableName][pk] = item
	return &dyn.UpdateItemOutput{Attributes: item}, nil
}

func (m *mockDynamo) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	return nil, errors.New("not supported by mock")
}

func (m *mockDynamo) TransactGetItems(ctx context.Context, params *dyn.TransactGetItemsInput, optFns ...func(*dyn.Options)) (*dyn.TransactGetItemsOutput, error) {
	return nil, errors.New("not supported by mock")
}

func (m *mockDynamo) TransactWriteItems(ctx context.Context, params *dyn.TransactWriteItemsInput, optFns ...func(*dyn.Options)) (*dyn.TransactWriteItemsOutput, error) {
	return nil, errors.New("not supported by mock")
}

func seedOrder(t *testing.T, mock *mockDynamo, tbl string, o Order) {
	t.Helper()
	item, err := attributevalue.MarshalMap(o)
	if err != nil {
		t.Fatalf("marshal order: %v", err)
	}
	mock.ensureTable(tbl)
	mock.tables[tbl][o.OrderID] = item
}

func TestGet_NotFound(t *testing.T) {
	mock := newMockDynamo()
	store := NewStore(mock, "orders")

	o, err := store.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if o != nil {
		t.Fatalf("expected nil order, got %+v", o)
	}
}

func TestMarkCompleted(t *testing.T) {
	mock := newMockDynamo()
	tbl := "orders"
	now := time.Now()
	seedOrder(t, mock, tbl, Order{
		OrderID:     "order-10",
		UserID:      "u10",
		TotalAmount: 200,
		FullName:    "Buyer",
		Address:     "Bangkok",
		CreatedAt:   now,
		Status:      StatusPaid,
	})

	store := NewStore(mock, tbl)

	// success: paid -> completed
	if err := store.MarkCompleted(context.Background(), "order-10"); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	got, err := store.Get(context.Background(), "order-10")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", got.Status)
	}

	// duplicate webhook delivery: already completed
	err = store.MarkCompleted(context.Background(), "order-10")
	if !errors.Is(err, ErrStatusMismatch) {
		t.Fatalf("expected ErrStatusMismatch, got %v", err)
	}
}

func TestMarkCompleted_UnknownOrder(t *testing.T) {
	mock := newMockDynamo()
	store := NewStore(mock, "orders")

	err := store.MarkCompleted(context.Background(), "missing")
	if !errors.Is(err, ErrStatusMismatch) {
		t.Fatalf("expected ErrStatusMismatch for unknown order, got %v", err)
	}
}
