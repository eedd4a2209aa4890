package purchasing

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/counterline/counterline/internal/ledger"
	"github.com/counterline/counterline/internal/shared"
)

type memoryStore struct {
	products  map[uuid.UUID]ledger.ProductStock
	costs     map[uuid.UUID]decimal.Decimal
	movements []ledger.Movement
	orders    map[uuid.UUID]PurchaseOrder
	items     map[uuid.UUID][]PurchaseOrderItem
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		products: map[uuid.UUID]ledger.ProductStock{},
		costs:    map[uuid.UUID]decimal.Decimal{},
		orders:   map[uuid.UUID]PurchaseOrder{},
		items:    map[uuid.UUID][]PurchaseOrderItem{},
	}
}

func (m *memoryStore) clone() *memoryStore {
	out := newMemoryStore()
	for id, p := range m.products {
		out.products[id] = p
	}
	for id, c := range m.costs {
		out.costs[id] = c
	}
	for id, o := range m.orders {
		out.orders[id] = o
	}
	for id, items := range m.items {
		out.items[id] = append([]PurchaseOrderItem{}, items...)
	}
	out.movements = append([]ledger.Movement{}, m.movements...)
	return out
}

// ledger.TxStore

func (m *memoryStore) GetProductStockForUpdate(_ context.Context, productID uuid.UUID) (ledger.ProductStock, error) {
	p, ok := m.products[productID]
	if !ok {
		return ledger.ProductStock{}, fmt.Errorf("%w: product %s", shared.ErrNotFound, productID)
	}
	return p, nil
}

func (m *memoryStore) UpdateProductQuantity(_ context.Context, productID uuid.UUID, quantity int64) error {
	p := m.products[productID]
	p.Quantity = quantity
	m.products[productID] = p
	return nil
}

func (m *memoryStore) InsertMovement(_ context.Context, movement ledger.Movement) error {
	m.movements = append(m.movements, movement)
	return nil
}

// purchasing TxRepository

func (m *memoryStore) InsertOrder(_ context.Context, order PurchaseOrder) error {
	m.orders[order.ID] = order
	return nil
}

func (m *memoryStore) InsertOrderItem(_ context.Context, item PurchaseOrderItem) error {
	m.items[item.OrderID] = append(m.items[item.OrderID], item)
	return nil
}

func (m *memoryStore) GetOrderForUpdate(_ context.Context, id uuid.UUID) (PurchaseOrder, error) {
	order, ok := m.orders[id]
	if !ok {
		return PurchaseOrder{}, fmt.Errorf("%w: purchase order %s", shared.ErrNotFound, id)
	}
	order.Items = append([]PurchaseOrderItem{}, m.items[id]...)
	return order, nil
}

func (m *memoryStore) UpdateOrderStatus(_ context.Context, id uuid.UUID, status OrderStatus, receivedAt *time.Time) error {
	order := m.orders[id]
	order.Status = status
	order.ReceivedAt = receivedAt
	m.orders[id] = order
	return nil
}

func (m *memoryStore) UpdateProductCost(_ context.Context, productID uuid.UUID, cost decimal.Decimal) error {
	m.costs[productID] = cost
	return nil
}

type memoryRepository struct {
	store *memoryStore
}

func (r *memoryRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	snapshot := r.store.clone()
	if err := fn(ctx, r.store); err != nil {
		*r.store = *snapshot
		return err
	}
	return nil
}

func (r *memoryRepository) GetOrder(ctx context.Context, id uuid.UUID) (PurchaseOrder, error) {
	return r.store.GetOrderForUpdate(ctx, id)
}

func (r *memoryRepository) ListOrders(_ context.Context, req ListOrdersRequest) ([]PurchaseOrder, error) {
	out := []PurchaseOrder{}
	for _, o := range r.store.orders {
		if req.Status != nil && o.Status != *req.Status {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func newTestService(store *memoryStore) *Service {
	return NewService(&memoryRepository{store: store}, ledger.NewService(nil))
}

func seedProduct(store *memoryStore, qty int64) uuid.UUID {
	id := uuid.New()
	store.products[id] = ledger.ProductStock{ID: id, SKU: "SKU-" + id.String()[:8], TrackStock: true, Quantity: qty}
	return id
}

func cost(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCreateOrderStartsPending(t *testing.T) {
	store := newMemoryStore()
	productID := seedProduct(store, 0)
	svc := newTestService(store)

	order, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		SupplierID: uuid.New(),
		Items: []OrderItemRequest{
			{ProductID: productID, Quantity: 4, UnitCost: cost("2.50")},
		},
	}, uuid.New())
	require.NoError(t, err)
	require.Equal(t, OrderStatusPending, order.Status)
	require.NotEmpty(t, order.OrderNumber)
	require.True(t, order.TotalAmount.Equal(cost("10.00")), "total %s", order.TotalAmount)
	require.Len(t, order.Items, 1)
	require.Empty(t, store.movements, "ordering must not touch stock")
	require.Equal(t, int64(0), store.products[productID].Quantity)
}

func TestReceiveOrderRestocksAndUpdatesCost(t *testing.T) {
	store := newMemoryStore()
	first := seedProduct(store, 1)
	second := seedProduct(store, 0)
	svc := newTestService(store)
	actor := uuid.New()

	order, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		SupplierID: uuid.New(),
		Items: []OrderItemRequest{
			{ProductID: first, Quantity: 5, UnitCost: cost("2.00")},
			{ProductID: second, Quantity: 3, UnitCost: cost("7.10")},
		},
	}, actor)
	require.NoError(t, err)

	received, err := svc.ReceiveOrder(context.Background(), order.ID, actor)
	require.NoError(t, err)
	require.Equal(t, OrderStatusReceived, received.Status)
	require.NotNil(t, received.ReceivedAt)

	require.Equal(t, int64(6), store.products[first].Quantity)
	require.Equal(t, int64(3), store.products[second].Quantity)
	require.True(t, store.costs[first].Equal(cost("2.00")))
	require.True(t, store.costs[second].Equal(cost("7.10")))

	require.Len(t, store.movements, 2)
	for _, m := range store.movements {
		require.Equal(t, ledger.MovementPurchase, m.Type)
		require.NotNil(t, m.Reference)
		require.Equal(t, order.ID, *m.Reference)
	}
}

func TestReceiveOrderTwiceFails(t *testing.T) {
	store := newMemoryStore()
	productID := seedProduct(store, 0)
	svc := newTestService(store)
	actor := uuid.New()

	order, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		SupplierID: uuid.New(),
		Items: []OrderItemRequest{
			{ProductID: productID, Quantity: 2, UnitCost: cost("1.00")},
		},
	}, actor)
	require.NoError(t, err)

	_, err = svc.ReceiveOrder(context.Background(), order.ID, actor)
	require.NoError(t, err)
	require.Equal(t, int64(2), store.products[productID].Quantity)

	_, err = svc.ReceiveOrder(context.Background(), order.ID, actor)
	require.ErrorIs(t, err, shared.ErrInvalidTransition)
	require.Equal(t, int64(2), store.products[productID].Quantity, "stock must not double")
	require.Len(t, store.movements, 1)
}

func TestCancelOrder(t *testing.T) {
	store := newMemoryStore()
	productID := seedProduct(store, 0)
	svc := newTestService(store)
	actor := uuid.New()

	order, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		SupplierID: uuid.New(),
		Items: []OrderItemRequest{
			{ProductID: productID, Quantity: 2, UnitCost: cost("1.00")},
		},
	}, actor)
	require.NoError(t, err)

	cancelled, err := svc.CancelOrder(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, OrderStatusCancelled, cancelled.Status)
	require.Empty(t, store.movements)

	_, err = svc.ReceiveOrder(context.Background(), order.ID, actor)
	require.ErrorIs(t, err, shared.ErrInvalidTransition)

	_, err = svc.CancelOrder(context.Background(), order.ID)
	require.ErrorIs(t, err, shared.ErrInvalidTransition)
}

func TestCreateOrderValidation(t *testing.T) {
	svc := newTestService(newMemoryStore())

	_, err := svc.CreateOrder(context.Background(), CreateOrderRequest{SupplierID: uuid.New()}, uuid.New())
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.CreateOrder(context.Background(), CreateOrderRequest{
		SupplierID: uuid.New(),
		Items:      []OrderItemRequest{{ProductID: uuid.New(), Quantity: 1, UnitCost: cost("-1")}},
	}, uuid.New())
	require.ErrorIs(t, err, shared.ErrValidation)
}
