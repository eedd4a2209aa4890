package sales

import (
	"context"
	"fmt"
	"io"
	"log/slog"
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
	movements []ledger.Movement
	sales     map[uuid.UUID]Sale
	items     map[uuid.UUID][]SaleItem
	customers map[uuid.UUID]Customer
	returns   []Return
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		products:  map[uuid.UUID]ledger.ProductStock{},
		sales:     map[uuid.UUID]Sale{},
		items:     map[uuid.UUID][]SaleItem{},
		customers: map[uuid.UUID]Customer{},
	}
}

func (m *memoryStore) clone() *memoryStore {
	out := newMemoryStore()
	for id, p := range m.products {
		out.products[id] = p
	}
	for id, s := range m.sales {
		out.sales[id] = s
	}
	for id, items := range m.items {
		out.items[id] = append([]SaleItem{}, items...)
	}
	for id, c := range m.customers {
		out.customers[id] = c
	}
	out.movements = append([]ledger.Movement{}, m.movements...)
	out.returns = append([]Return{}, m.returns...)
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

// sales TxRepository

func (m *memoryStore) InsertSale(_ context.Context, sale Sale) error {
	m.sales[sale.ID] = sale
	return nil
}

func (m *memoryStore) InsertSaleItem(_ context.Context, item SaleItem) error {
	m.items[item.SaleID] = append(m.items[item.SaleID], item)
	return nil
}

func (m *memoryStore) GetSaleForUpdate(_ context.Context, id uuid.UUID) (Sale, error) {
	sale, ok := m.sales[id]
	if !ok {
		return Sale{}, fmt.Errorf("%w: sale %s", shared.ErrNotFound, id)
	}
	sale.Items = append([]SaleItem{}, m.items[id]...)
	return sale, nil
}

func (m *memoryStore) UpdateSaleStatus(_ context.Context, id uuid.UUID, status SaleStatus) error {
	sale := m.sales[id]
	sale.Status = status
	m.sales[id] = sale
	return nil
}

func (m *memoryStore) GetCustomerForUpdate(_ context.Context, id uuid.UUID) (Customer, error) {
	c, ok := m.customers[id]
	if !ok {
		return Customer{}, fmt.Errorf("%w: customer %s", shared.ErrNotFound, id)
	}
	return c, nil
}

func (m *memoryStore) UpdateCustomerAggregates(_ context.Context, id uuid.UUID, spent decimal.Decimal, points int64) error {
	c := m.customers[id]
	c.TotalSpent = c.TotalSpent.Add(spent)
	c.LoyaltyPoints += points
	m.customers[id] = c
	return nil
}

func (m *memoryStore) InsertReturn(_ context.Context, ret Return) error {
	m.returns = append(m.returns, ret)
	return nil
}

func (m *memoryStore) ReturnedQuantity(_ context.Context, saleID, productID uuid.UUID) (int64, error) {
	var qty int64
	for _, r := range m.returns {
		if r.SaleID == saleID && r.ProductID == productID {
			qty += r.Quantity
		}
	}
	return qty, nil
}

func (m *memoryStore) TotalReturnedQuantity(_ context.Context, saleID uuid.UUID) (int64, error) {
	var qty int64
	for _, r := range m.returns {
		if r.SaleID == saleID {
			qty += r.Quantity
		}
	}
	return qty, nil
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

func (r *memoryRepository) GetSale(ctx context.Context, id uuid.UUID) (Sale, error) {
	return r.store.GetSaleForUpdate(ctx, id)
}

func (r *memoryRepository) ListSales(_ context.Context, req ListSalesRequest) ([]Sale, error) {
	out := []Sale{}
	for _, s := range r.store.sales {
		out = append(out, s)
	}
	return out, nil
}

func (r *memoryRepository) InsertCustomer(_ context.Context, c Customer) error {
	r.store.customers[c.ID] = c
	return nil
}

func (r *memoryRepository) GetCustomer(ctx context.Context, id uuid.UUID) (Customer, error) {
	return r.store.GetCustomerForUpdate(ctx, id)
}

func (r *memoryRepository) ListCustomers(_ context.Context) ([]Customer, error) {
	out := []Customer{}
	for _, c := range r.store.customers {
		out = append(out, c)
	}
	return out, nil
}

func newTestService(store *memoryStore, taxRate string) *Service {
	rate, _ := decimal.NewFromString(taxRate)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(&memoryRepository{store: store}, ledger.NewService(nil), rate, logger, nil, nil)
}

func seedProduct(store *memoryStore, qty int64, tracked bool) uuid.UUID {
	id := uuid.New()
	store.products[id] = ledger.ProductStock{ID: id, SKU: "SKU-" + id.String()[:8], TrackStock: tracked, Quantity: qty}
	return id
}

func seedCustomer(store *memoryStore) uuid.UUID {
	id := uuid.New()
	store.customers[id] = Customer{ID: id, Name: "Walk In", TotalSpent: decimal.Zero, CreatedAt: time.Now().UTC()}
	return id
}

func price(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCreateSaleComputesTotalsAndDecrementsStock(t *testing.T) {
	store := newMemoryStore()
	productID := seedProduct(store, 10, true)
	svc := newTestService(store, "0.10")
	actor := uuid.New()

	sale, err := svc.CreateSale(context.Background(), CreateSaleRequest{
		PaymentMethod:  PaymentCash,
		DiscountAmount: price("1.00"),
		Lines: []SaleLineRequest{
			{ProductID: productID, Quantity: 2, UnitPrice: price("5.00")},
		},
	}, actor)
	require.NoError(t, err)

	require.True(t, sale.Subtotal.Equal(price("10.00")), "subtotal %s", sale.Subtotal)
	require.True(t, sale.TaxAmount.Equal(price("1.00")), "tax %s", sale.TaxAmount)
	require.True(t, sale.Total.Equal(price("10.00")), "total %s", sale.Total)
	require.Equal(t, SaleStatusCompleted, sale.Status)
	require.NotEmpty(t, sale.InvoiceNumber)
	require.Len(t, sale.Items, 1)

	require.Equal(t, int64(8), store.products[productID].Quantity)
	require.Len(t, store.movements, 1)
	movement := store.movements[0]
	require.Equal(t, ledger.MovementSale, movement.Type)
	require.Equal(t, int64(-2), movement.Delta)
	require.NotNil(t, movement.Reference)
	require.Equal(t, sale.ID, *movement.Reference)
}

func TestCreateSaleInsufficientStockAbortsEverything(t *testing.T) {
	store := newMemoryStore()
	plenty := seedProduct(store, 10, true)
	scarce := seedProduct(store, 1, true)
	svc := newTestService(store, "0")

	_, err := svc.CreateSale(context.Background(), CreateSaleRequest{
		PaymentMethod: PaymentCard,
		Lines: []SaleLineRequest{
			{ProductID: plenty, Quantity: 2, UnitPrice: price("3.00")},
			{ProductID: scarce, Quantity: 5, UnitPrice: price("4.00")},
		},
	}, uuid.New())
	require.ErrorIs(t, err, shared.ErrInsufficientStock)

	require.Empty(t, store.sales)
	require.Empty(t, store.movements)
	require.Equal(t, int64(10), store.products[plenty].Quantity)
	require.Equal(t, int64(1), store.products[scarce].Quantity)
}

func TestCreateSaleUnknownProductAborts(t *testing.T) {
	store := newMemoryStore()
	known := seedProduct(store, 10, true)
	svc := newTestService(store, "0")

	_, err := svc.CreateSale(context.Background(), CreateSaleRequest{
		PaymentMethod: PaymentCash,
		Lines: []SaleLineRequest{
			{ProductID: known, Quantity: 1, UnitPrice: price("2.00")},
			{ProductID: uuid.New(), Quantity: 1, UnitPrice: price("2.00")},
		},
	}, uuid.New())
	require.ErrorIs(t, err, shared.ErrNotFound)
	require.Empty(t, store.sales)
	require.Equal(t, int64(10), store.products[known].Quantity)
}

func TestCreateSaleUntrackedProductSkipsLedger(t *testing.T) {
	store := newMemoryStore()
	productID := seedProduct(store, 0, false)
	svc := newTestService(store, "0")

	sale, err := svc.CreateSale(context.Background(), CreateSaleRequest{
		PaymentMethod: PaymentCash,
		Lines: []SaleLineRequest{
			{ProductID: productID, Quantity: 3, UnitPrice: price("1.50")},
		},
	}, uuid.New())
	require.NoError(t, err)
	require.Len(t, sale.Items, 1)
	require.Empty(t, store.movements)
	require.Equal(t, int64(0), store.products[productID].Quantity)
}

func TestCreateSaleDiscountExceedsValue(t *testing.T) {
	store := newMemoryStore()
	productID := seedProduct(store, 10, true)
	svc := newTestService(store, "0")

	_, err := svc.CreateSale(context.Background(), CreateSaleRequest{
		PaymentMethod:  PaymentCash,
		DiscountAmount: price("100.00"),
		Lines: []SaleLineRequest{
			{ProductID: productID, Quantity: 1, UnitPrice: price("5.00")},
		},
	}, uuid.New())
	require.ErrorIs(t, err, shared.ErrValidation)
	require.Empty(t, store.sales)
}

func TestCreateSaleBumpsCustomerAggregates(t *testing.T) {
	store := newMemoryStore()
	productID := seedProduct(store, 10, true)
	customerID := seedCustomer(store)
	svc := newTestService(store, "0")

	sale, err := svc.CreateSale(context.Background(), CreateSaleRequest{
		CustomerID:    &customerID,
		PaymentMethod: PaymentTransfer,
		Lines: []SaleLineRequest{
			{ProductID: productID, Quantity: 3, UnitPrice: price("4.25")},
		},
	}, uuid.New())
	require.NoError(t, err)
	require.True(t, sale.Total.Equal(price("12.75")))

	customer := store.customers[customerID]
	require.True(t, customer.TotalSpent.Equal(price("12.75")), "spent %s", customer.TotalSpent)
	require.Equal(t, int64(12), customer.LoyaltyPoints)
}

func TestCreateReturnRestocksAndFlipsStatus(t *testing.T) {
	store := newMemoryStore()
	productID := seedProduct(store, 10, true)
	svc := newTestService(store, "0")
	actor := uuid.New()

	sale, err := svc.CreateSale(context.Background(), CreateSaleRequest{
		PaymentMethod: PaymentCash,
		Lines: []SaleLineRequest{
			{ProductID: productID, Quantity: 2, UnitPrice: price("5.00")},
		},
	}, actor)
	require.NoError(t, err)
	require.Equal(t, int64(8), store.products[productID].Quantity)

	_, err = svc.CreateReturn(context.Background(), CreateReturnRequest{
		SaleID:       sale.ID,
		ProductID:    productID,
		Quantity:     1,
		Reason:       "wrong size",
		RefundAmount: price("5.00"),
	}, actor)
	require.NoError(t, err)
	require.Equal(t, int64(9), store.products[productID].Quantity)
	require.Equal(t, SaleStatusPartialRefund, store.sales[sale.ID].Status)

	_, err = svc.CreateReturn(context.Background(), CreateReturnRequest{
		SaleID:       sale.ID,
		ProductID:    productID,
		Quantity:     1,
		Reason:       "wrong size",
		RefundAmount: price("5.00"),
	}, actor)
	require.NoError(t, err)
	require.Equal(t, int64(10), store.products[productID].Quantity)
	require.Equal(t, SaleStatusRefunded, store.sales[sale.ID].Status)

	returnMovements := 0
	for _, m := range store.movements {
		if m.Type == ledger.MovementReturn {
			returnMovements++
			require.Equal(t, int64(1), m.Delta)
		}
	}
	require.Equal(t, 2, returnMovements)
}

func TestCreateReturnCappedAtSoldQuantity(t *testing.T) {
	store := newMemoryStore()
	productID := seedProduct(store, 10, true)
	svc := newTestService(store, "0")
	actor := uuid.New()

	sale, err := svc.CreateSale(context.Background(), CreateSaleRequest{
		PaymentMethod: PaymentCash,
		Lines: []SaleLineRequest{
			{ProductID: productID, Quantity: 2, UnitPrice: price("5.00")},
		},
	}, actor)
	require.NoError(t, err)

	_, err = svc.CreateReturn(context.Background(), CreateReturnRequest{
		SaleID:    sale.ID,
		ProductID: productID,
		Quantity:  3,
		Reason:    "changed mind",
	}, actor)
	require.ErrorIs(t, err, shared.ErrValidation)
	require.Equal(t, int64(8), store.products[productID].Quantity)
	require.Equal(t, SaleStatusCompleted, store.sales[sale.ID].Status)
	require.Empty(t, store.returns)
}

func TestCreateReturnProductNotInSale(t *testing.T) {
	store := newMemoryStore()
	sold := seedProduct(store, 10, true)
	other := seedProduct(store, 10, true)
	svc := newTestService(store, "0")
	actor := uuid.New()

	sale, err := svc.CreateSale(context.Background(), CreateSaleRequest{
		PaymentMethod: PaymentCash,
		Lines: []SaleLineRequest{
			{ProductID: sold, Quantity: 1, UnitPrice: price("5.00")},
		},
	}, actor)
	require.NoError(t, err)

	_, err = svc.CreateReturn(context.Background(), CreateReturnRequest{
		SaleID:    sale.ID,
		ProductID: other,
		Quantity:  1,
		Reason:    "mixup",
	}, actor)
	require.ErrorIs(t, err, shared.ErrValidation)
}
