package ledger

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/counterline/counterline/internal/shared"
)

type memoryStore struct {
	products  map[uuid.UUID]ProductStock
	movements []Movement
}

func newMemoryStore() *memoryStore {
	return &memoryStore{products: map[uuid.UUID]ProductStock{}}
}

func (m *memoryStore) GetProductStockForUpdate(_ context.Context, productID uuid.UUID) (ProductStock, error) {
	p, ok := m.products[productID]
	if !ok {
		return ProductStock{}, fmt.Errorf("%w: product %s", shared.ErrNotFound, productID)
	}
	return p, nil
}

func (m *memoryStore) UpdateProductQuantity(_ context.Context, productID uuid.UUID, quantity int64) error {
	p := m.products[productID]
	p.Quantity = quantity
	m.products[productID] = p
	return nil
}

func (m *memoryStore) InsertMovement(_ context.Context, movement Movement) error {
	m.movements = append(m.movements, movement)
	return nil
}

func (m *memoryStore) clone() *memoryStore {
	out := newMemoryStore()
	for id, p := range m.products {
		out.products[id] = p
	}
	out.movements = append([]Movement{}, m.movements...)
	return out
}

type memoryRepository struct {
	store *memoryStore
}

func (r *memoryRepository) WithTx(ctx context.Context, fn func(context.Context, TxStore) error) error {
	snapshot := r.store.clone()
	if err := fn(ctx, r.store); err != nil {
		*r.store = *snapshot
		return err
	}
	return nil
}

func (r *memoryRepository) ListMovements(_ context.Context, productID uuid.UUID, limit int) ([]Movement, error) {
	if limit <= 0 {
		limit = 100
	}
	out := []Movement{}
	for _, m := range r.store.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func newTestService(store *memoryStore) *Service {
	return NewService(&memoryRepository{store: store})
}

func seedProduct(store *memoryStore, qty int64, tracked bool) uuid.UUID {
	id := uuid.New()
	store.products[id] = ProductStock{ID: id, SKU: "SKU-" + id.String()[:8], TrackStock: tracked, Quantity: qty}
	return id
}

func TestApplyRecordsMovementAndQuantity(t *testing.T) {
	store := newMemoryStore()
	productID := seedProduct(store, 10, true)
	svc := newTestService(store)
	actor := uuid.New()

	movement, err := svc.Apply(context.Background(), ApplyInput{
		ProductID: productID,
		Delta:     -4,
		Type:      MovementAdjustment,
		Reason:    "damaged in storage",
		ActorID:   actor,
	})
	require.NoError(t, err)
	require.Equal(t, int64(-4), movement.Delta)
	require.Equal(t, actor, movement.UserID)
	require.Equal(t, int64(6), store.products[productID].Quantity)
	require.Len(t, store.movements, 1)
}

func TestApplyInsufficientStockChangesNothing(t *testing.T) {
	store := newMemoryStore()
	productID := seedProduct(store, 3, true)
	svc := newTestService(store)

	_, err := svc.Apply(context.Background(), ApplyInput{
		ProductID: productID,
		Delta:     -5,
		Type:      MovementSale,
		ActorID:   uuid.New(),
	})
	require.ErrorIs(t, err, shared.ErrInsufficientStock)
	require.Equal(t, int64(3), store.products[productID].Quantity)
	require.Empty(t, store.movements)
}

func TestApplyUntrackedProductMayGoNegative(t *testing.T) {
	store := newMemoryStore()
	productID := seedProduct(store, 1, false)
	svc := newTestService(store)

	_, err := svc.Apply(context.Background(), ApplyInput{
		ProductID: productID,
		Delta:     -5,
		Type:      MovementAdjustment,
		Reason:    "stocktake correction",
		ActorID:   uuid.New(),
	})
	require.NoError(t, err)
	require.Equal(t, int64(-4), store.products[productID].Quantity)
}

func TestApplyValidation(t *testing.T) {
	store := newMemoryStore()
	productID := seedProduct(store, 10, true)
	svc := newTestService(store)
	actor := uuid.New()

	cases := []struct {
		name  string
		input ApplyInput
	}{
		{"zero delta", ApplyInput{ProductID: productID, Delta: 0, Type: MovementAdjustment, ActorID: actor}},
		{"unknown type", ApplyInput{ProductID: productID, Delta: 1, Type: "teleport", ActorID: actor}},
		{"missing actor", ApplyInput{ProductID: productID, Delta: 1, Type: MovementAdjustment}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Apply(context.Background(), tc.input)
			require.ErrorIs(t, err, shared.ErrValidation)
		})
	}
	require.Empty(t, store.movements)
}

func TestApplyUnknownProduct(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(store)

	_, err := svc.Apply(context.Background(), ApplyInput{
		ProductID: uuid.New(),
		Delta:     1,
		Type:      MovementAdjustment,
		ActorID:   uuid.New(),
	})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestListMovementsRequiresProduct(t *testing.T) {
	svc := newTestService(newMemoryStore())
	_, err := svc.ListMovements(context.Background(), uuid.Nil, 10)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestListMovementsFiltersByProduct(t *testing.T) {
	store := newMemoryStore()
	first := seedProduct(store, 10, true)
	second := seedProduct(store, 10, true)
	svc := newTestService(store)
	actor := uuid.New()

	for _, id := range []uuid.UUID{first, second, first} {
		_, err := svc.Apply(context.Background(), ApplyInput{
			ProductID: id, Delta: 1, Type: MovementAdjustment, Reason: "recount", ActorID: actor,
		})
		require.NoError(t, err)
	}

	movements, err := svc.ListMovements(context.Background(), first, 0)
	require.NoError(t, err)
	require.Len(t, movements, 2)
	for _, m := range movements {
		require.Equal(t, first, m.ProductID)
	}
}
