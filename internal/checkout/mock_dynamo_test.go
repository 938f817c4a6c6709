package checkout

import (
	"context"
	"errors"
	"strconv"
	"sync"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// mockDynamo is an in-memory DynamoDB that honors the condition expressions
// the checkout transaction uses. It stores items per table in a nested map:
// table -> pkValue -> item map.
type mockDynamo struct {
	mu     sync.Mutex
	tables map[string]map[string]map[string]types.AttributeValue

	// afterGet, when set, runs after a TransactGetItems returns its snapshot.
	// Tests use it to mutate stock between the read and the commit.
	afterGet func()

	// writeErr, when set, fails every TransactWriteItems with this error
	// before any condition is evaluated or any write applied.
	writeErr error
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

func itemPK(item map[string]types.AttributeValue) (string, error) {
	if v, ok := item["product_id"]; ok {
		return v.(*types.AttributeValueMemberS).Value, nil
	}
	if v, ok := item["order_id"]; ok {
		return v.(*types.AttributeValueMemberS).Value, nil
	}
	return "", errors.New("no primary key in item")
}

func numAttr(item map[string]types.AttributeValue, name string) (int, bool) {
	v, ok := item[name]
	if !ok {
		return 0, false
	}
	n, ok := v.(*types.AttributeValueMemberN)
	if !ok {
		return 0, false
	}
	i, err := strconv.Atoi(n.Value)
	if err != nil {
		return 0, false
	}
	return i, true
}

func (m *mockDynamo) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureTable(*params.TableName)
	pk, err := itemPK(params.Key)
	if err != nil {
		return nil, err
	}
	item, ok := m.tables[*params.TableName][pk]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

func (m *mockDynamo) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureTable(*params.TableName)
	pk, err := itemPK(params.Item)
	if err != nil {
		return nil, err
	}
	m.tables[*params.TableName][pk] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *mockDynamo) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	return nil, errors.New("not supported by mock")
}

func (m *mockDynamo) TransactGetItems(ctx context.Context, params *dyn.TransactGetItemsInput, optFns ...func(*dyn.Options)) (*dyn.TransactGetItemsOutput, error) {
	m.mu.Lock()
	out := &dyn.TransactGetItemsOutput{}
	for _, it := range params.TransactItems {
		g := it.Get
		m.ensureTable(*g.TableName)
		pk, err := itemPK(g.Key)
		if err != nil {
			m.mu.Unlock()
			return nil, err
		}
		// copied so later table mutations cannot leak into the snapshot
		var snapshot map[string]types.AttributeValue
		if item, ok := m.tables[*g.TableName][pk]; ok {
			snapshot = make(map[string]types.AttributeValue, len(item))
			for k, v := range item {
				snapshot[k] = v
			}
		}
		out.Responses = append(out.Responses, types.ItemResponse{Item: snapshot})
	}
	m.mu.Unlock()

	if m.afterGet != nil {
		m.afterGet()
	}
	return out, nil
}

func (m *mockDynamo) TransactWriteItems(ctx context.Context, params *dyn.TransactWriteItemsInput, optFns ...func(*dyn.Options)) (*dyn.TransactWriteItemsOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.writeErr != nil {
		return nil, m.writeErr
	}

	// First pass: evaluate every condition; any failure cancels the whole
	// transaction with positional cancellation reasons, like DynamoDB.
	reasons := make([]types.CancellationReason, len(params.TransactItems))
	failed := false
	for i, it := range params.TransactItems {
		code := "None"
		switch {
		case it.Update != nil:
			u := it.Update
			m.ensureTable(*u.TableName)
			pk, err := itemPK(u.Key)
			if err != nil {
				return nil, err
			}
			item, exists := m.tables[*u.TableName][pk]
			q, _ := numAttr(u.ExpressionAttributeValues, ":q")
			if !exists {
				code = "ConditionalCheckFailed"
			} else if stock, ok := numAttr(item, "stock"); !ok || stock < q {
				code = "ConditionalCheckFailed"
			}
		case it.Put != nil:
			p := it.Put
			m.ensureTable(*p.TableName)
			pk, err := itemPK(p.Item)
			if err != nil {
				return nil, err
			}
			if p.ConditionExpression != nil && *p.ConditionExpression == "attribute_not_exists(order_id)" {
				if _, exists := m.tables[*p.TableName][pk]; exists {
					code = "ConditionalCheckFailed"
				}
			}
		}
		if code != "None" {
			failed = true
		}
		reasons[i] = types.CancellationReason{Code: &code}
	}
	if failed {
		return nil, &types.TransactionCanceledException{CancellationReasons: reasons}
	}

	// Second pass: apply all writes.
	for _, it := range params.TransactItems {
		if u := it.Update; u != nil {
			pk, _ := itemPK(u.Key)
			item := m.tables[*u.TableName][pk]
			q, _ := numAttr(u.ExpressionAttributeValues, ":q")
			stock, _ := numAttr(item, "stock")
			item["stock"] = &types.AttributeValueMemberN{Value: strconv.Itoa(stock - q)}
		}
		if p := it.Put; p != nil {
			pk, _ := itemPK(p.Item)
			m.tables[*p.TableName][pk] = p.Item
		}
	}
	return &dyn.TransactWriteItemsOutput{}, nil
}
