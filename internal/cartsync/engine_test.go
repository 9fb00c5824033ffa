package cartsync

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Diwwy20/pp-food-client/internal/domain"
)

type updateCall struct {
	itemID   int64
	quantity int
}

type mockAPI struct {
	m           sync.Mutex
	cart        *domain.Cart
	updateCalls []updateCall
	getCalls    int
	addCalls    int
	removeCalls int
	updateErr   error
	addErr      error
	removeErr   error
	blockUpdate chan struct{} // when set, UpdateItem waits for a signal
}

func (m *mockAPI) Get(context.Context) (*domain.Cart, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.getCalls++
	return m.cart.Clone(), nil
}

func (m *mockAPI) AddItem(_ context.Context, productID int64, quantity int, selectedOptions []domain.SelectedOption, note string) (*domain.Cart, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.addCalls++
	if m.addErr != nil {
		return nil, m.addErr
	}
	m.cart.Items = append(m.cart.Items, domain.CartItem{
		ID:              int64(1000 + len(m.cart.Items)),
		ProductID:       productID,
		Quantity:        quantity,
		SelectedOptions: selectedOptions,
		Note:            note,
	})
	return m.cart.Clone(), nil
}

func (m *mockAPI) UpdateItem(_ context.Context, itemID int64, quantity int, _ []domain.SelectedOption) (*domain.Cart, error) {
	m.m.Lock()
	block := m.blockUpdate
	m.m.Unlock()
	if block != nil {
		<-block
	}

	m.m.Lock()
	defer m.m.Unlock()
	m.updateCalls = append(m.updateCalls, updateCall{itemID: itemID, quantity: quantity})
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	for i := range m.cart.Items {
		if m.cart.Items[i].ID == itemID {
			m.cart.Items[i].Quantity = quantity
		}
	}
	return m.cart.Clone(), nil
}

func (m *mockAPI) RemoveItem(_ context.Context, itemID int64) (*domain.Cart, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.removeCalls++
	if m.removeErr != nil {
		return nil, m.removeErr
	}
	for i := range m.cart.Items {
		if m.cart.Items[i].ID == itemID {
			m.cart.Items = append(m.cart.Items[:i], m.cart.Items[i+1:]...)
			break
		}
	}
	return m.cart.Clone(), nil
}

func (m *mockAPI) updates() []updateCall {
	m.m.Lock()
	defer m.m.Unlock()
	out := make([]updateCall, len(m.updateCalls))
	copy(out, m.updateCalls)
	return out
}

func testCart() *domain.Cart {
	return &domain.Cart{
		ID:     1,
		UserID: 123,
		Items: []domain.CartItem{
			{ID: 1, ProductID: 10, Quantity: 2, Product: domain.Product{ID: 10, Price: 65}},
			{ID: 2, ProductID: 11, Quantity: 1, Product: domain.Product{ID: 11, Price: 35}},
		},
	}
}

func newTestEngine(t *testing.T, mock *mockAPI, opts ...Option) *Engine {
	opts = append([]Option{WithDebounce(40 * time.Millisecond)}, opts...)
	engine := NewEngine(mock, opts...)
	t.Cleanup(engine.Close)
	require.NoError(t, engine.Refresh(context.Background()))
	return engine
}

func TestApplyLocalQuantity_VisibleBeforeAnyNetworkCall(t *testing.T) {
	mock := &mockAPI{cart: testCart()}
	engine := newTestEngine(t, mock)

	engine.ApplyLocalQuantity(1, 5)

	cart, total := engine.Snapshot()
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.Equal(t, 6, total) // 5 + 1
	assert.Empty(t, mock.updates(), "no authoritative call yet")
}

func TestSetQuantity_BurstCoalescesIntoOneCall(t *testing.T) {
	mock := &mockAPI{cart: testCart()}
	engine := newTestEngine(t, mock)

	// Quantity 2, three rapid +1 clicks: local shows each step at once.
	for _, quantity := range []int{3, 4, 5} {
		engine.SetQuantity(1, quantity)
		cart, _ := engine.Snapshot()
		assert.Equal(t, quantity, cart.Items[0].Quantity)
	}

	require.Eventually(t, func() bool {
		return len(mock.updates()) == 1
	}, time.Second, 5*time.Millisecond, "exactly one authoritative call")

	calls := mock.updates()
	assert.Equal(t, updateCall{itemID: 1, quantity: 5}, calls[0])

	// Settles on server truth.
	require.Eventually(t, func() bool {
		cart, _ := engine.Snapshot()
		return cart.Items[0].Quantity == 5
	}, time.Second, 5*time.Millisecond)

	// No trailing extra calls sneak out.
	time.Sleep(100 * time.Millisecond)
	assert.Len(t, mock.updates(), 1)
}

func TestScheduleUpdate_ReArmReplacesPendingValue(t *testing.T) {
	mock := &mockAPI{cart: testCart()}
	engine := newTestEngine(t, mock)

	engine.ScheduleUpdate(1, 3)
	engine.ScheduleUpdate(1, 9)

	require.Eventually(t, func() bool {
		return len(mock.updates()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, updateCall{itemID: 1, quantity: 9}, mock.updates()[0])
}

func TestSetQuantity_IndependentLinesDebounceSeparately(t *testing.T) {
	mock := &mockAPI{cart: testCart()}
	engine := newTestEngine(t, mock)

	engine.SetQuantity(1, 4)
	engine.SetQuantity(2, 7)

	require.Eventually(t, func() bool {
		return len(mock.updates()) == 2
	}, time.Second, 5*time.Millisecond)

	got := map[int64]int{}
	for _, call := range mock.updates() {
		got[call.itemID] = call.quantity
	}
	assert.Equal(t, map[int64]int{1: 4, 2: 7}, got)
}

func TestUpdateFailure_RefetchesAndNotifiesOnce(t *testing.T) {
	mock := &mockAPI{
		cart:      testCart(),
		updateErr: fmt.Errorf("boom: internal server error"),
	}

	var errorsSeen []string
	var errorsMu sync.Mutex
	engine := newTestEngine(t, mock, WithErrorHook(func(err error) {
		errorsMu.Lock()
		defer errorsMu.Unlock()
		errorsSeen = append(errorsSeen, err.Error())
	}))
	baselineGets := 1 // Refresh in newTestEngine

	engine.SetQuantity(1, 9)
	cart, _ := engine.Snapshot()
	assert.Equal(t, 9, cart.Items[0].Quantity, "optimistic value visible")

	// Failure discards the optimistic edit and restores ground truth.
	require.Eventually(t, func() bool {
		cart, _ := engine.Snapshot()
		return cart.Items[0].Quantity == 2
	}, time.Second, 5*time.Millisecond)

	mock.m.Lock()
	gets := mock.getCalls
	mock.m.Unlock()
	assert.Equal(t, baselineGets+1, gets, "exactly one reconciliation fetch")

	errorsMu.Lock()
	defer errorsMu.Unlock()
	require.Len(t, errorsSeen, 1, "error surfaced once")
	assert.True(t, strings.Contains(errorsSeen[0], "boom"))
}

func TestEditDuringInFlight_WaitsAndKeepsNewerEdit(t *testing.T) {
	block := make(chan struct{})
	mock := &mockAPI{cart: testCart(), blockUpdate: block}
	engine := newTestEngine(t, mock)

	engine.SetQuantity(1, 5)

	// Wait until the first authoritative call is in flight (blocked).
	require.Eventually(t, func() bool {
		engine.mu.Lock()
		defer engine.mu.Unlock()
		return engine.inFlight[1]
	}, time.Second, 5*time.Millisecond)

	// A newer edit while in flight: applied locally, queued for later.
	engine.SetQuantity(1, 7)
	cart, _ := engine.Snapshot()
	assert.Equal(t, 7, cart.Items[0].Quantity)

	// Unblock; all subsequent calls proceed without blocking.
	mock.m.Lock()
	mock.blockUpdate = nil
	mock.m.Unlock()
	close(block)

	// The stale response (quantity 5) must not clobber the newer edit.
	require.Eventually(t, func() bool {
		return len(mock.updates()) == 2
	}, time.Second, 5*time.Millisecond)

	calls := mock.updates()
	assert.Equal(t, updateCall{itemID: 1, quantity: 5}, calls[0])
	assert.Equal(t, updateCall{itemID: 1, quantity: 7}, calls[1])

	require.Eventually(t, func() bool {
		cart, _ := engine.Snapshot()
		return cart.Items[0].Quantity == 7
	}, time.Second, 5*time.Millisecond)
}

func TestAddItem_ImmediateAdoptsServerCart(t *testing.T) {
	mock := &mockAPI{cart: testCart()}
	engine := newTestEngine(t, mock)

	err := engine.AddItem(context.Background(), 12, 2, []domain.SelectedOption{
		{OptionID: 1, ChoiceID: 9101, Price: 10},
	}, "less sugar")
	require.NoError(t, err)

	cart, total := engine.Snapshot()
	assert.Len(t, cart.Items, 3)
	assert.Equal(t, 5, total)

	mock.m.Lock()
	defer mock.m.Unlock()
	assert.Equal(t, 1, mock.addCalls)
}

func TestAddItem_FailureLeavesLocalStateUntouched(t *testing.T) {
	mock := &mockAPI{cart: testCart(), addErr: fmt.Errorf("product not found")}
	engine := newTestEngine(t, mock)

	before, beforeTotal := engine.Snapshot()
	err := engine.AddItem(context.Background(), 99, 1, nil, "")
	require.ErrorContains(t, err, "product not found")

	after, afterTotal := engine.Snapshot()
	assert.Equal(t, before, after)
	assert.Equal(t, beforeTotal, afterTotal)
}

func TestAddItem_RejectsOverlongNoteBeforeNetwork(t *testing.T) {
	mock := &mockAPI{cart: testCart()}
	engine := newTestEngine(t, mock)

	err := engine.AddItem(context.Background(), 10, 1, nil, strings.Repeat("x", 101))
	require.ErrorIs(t, err, domain.ErrNoteTooLong)

	mock.m.Lock()
	defer mock.m.Unlock()
	assert.Equal(t, 0, mock.addCalls, "validation blocks the call")
}

func TestRemoveItem_ImmediateAdoptsServerCart(t *testing.T) {
	mock := &mockAPI{cart: testCart()}
	engine := newTestEngine(t, mock)

	require.NoError(t, engine.RemoveItem(context.Background(), 1))

	cart, total := engine.Snapshot()
	assert.Len(t, cart.Items, 1)
	assert.Equal(t, int64(2), cart.Items[0].ID)
	assert.Equal(t, 1, total)
}

func TestUpdateItem_ImmediateBypassesDebounce(t *testing.T) {
	mock := &mockAPI{cart: testCart()}
	engine := newTestEngine(t, mock)

	require.NoError(t, engine.UpdateItem(context.Background(), 2, 6, nil))

	assert.Len(t, mock.updates(), 1, "no debounce delay")
	cart, _ := engine.Snapshot()
	assert.Equal(t, 6, cart.Items[1].Quantity)
}

func TestAdoption_Idempotent(t *testing.T) {
	mock := &mockAPI{cart: testCart()}
	engine := newTestEngine(t, mock)

	require.NoError(t, engine.UpdateItem(context.Background(), 1, 4, nil))
	first, firstTotal := engine.Snapshot()

	// Replaying the same successful update yields the same local state.
	require.NoError(t, engine.UpdateItem(context.Background(), 1, 4, nil))
	second, secondTotal := engine.Snapshot()

	assert.Equal(t, first, second)
	assert.Equal(t, firstTotal, secondTotal)
}

func TestReset_DropsProjection(t *testing.T) {
	mock := &mockAPI{cart: testCart()}
	engine := newTestEngine(t, mock)

	engine.Reset()
	cart, total := engine.Snapshot()
	assert.Nil(t, cart)
	assert.Zero(t, total)
}

func TestClose_StopsPendingTimers(t *testing.T) {
	mock := &mockAPI{cart: testCart()}
	engine := NewEngine(mock, WithDebounce(40*time.Millisecond))
	require.NoError(t, engine.Refresh(context.Background()))

	engine.ScheduleUpdate(1, 9)
	engine.Close()

	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, mock.updates(), "closed engine issues no calls")
}
