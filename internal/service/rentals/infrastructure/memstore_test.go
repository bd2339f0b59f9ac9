package infrastructure

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"vinylshop/internal/service/rentals/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *MemStore {
	t.Helper()
	store, err := NewMemStore([]domain.Customer{
		{ID: 1, Name: "Alice Johnson", FavoriteGenre: "Jazz", MembershipTier: "gold", MaxRentals: 2},
		{ID: 2, Name: "Bruno Costa", FavoriteGenre: "Rock", MembershipTier: "silver", MaxRentals: 3},
	}, nil)
	require.NoError(t, err)
	return store
}

func createReq(customerID int) domain.CreateRental {
	return domain.CreateRental{
		CustomerID:  customerID,
		RecordID:    1,
		RecordTitle: "Kind of Blue",
		DailyPrice:  5.0,
		RentalDays:  3,
	}
}

func TestCreateRentalQuota(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.CreateRental(ctx, createReq(1), testNow)
	require.NoError(t, err)
	_, err = store.CreateRental(ctx, createReq(1), testNow)
	require.NoError(t, err)

	_, err = store.CreateRental(ctx, createReq(1), testNow)
	assert.ErrorIs(t, err, domain.ErrRentalLimitReached)

	c, err := store.GetCustomer(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, c.ActiveRentals)
}

func TestCreateRentalUnknownCustomer(t *testing.T) {
	store := newTestStore(t)
	_, err := store.CreateRental(context.Background(), createReq(99), testNow)
	assert.ErrorIs(t, err, domain.ErrCustomerNotFound)
}

func TestCreateRentalSagaReplay(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	req := createReq(1)
	req.SagaID = "saga-1"

	first, err := store.CreateRental(ctx, req, testNow)
	require.NoError(t, err)
	replay, err := store.CreateRental(ctx, req, testNow)
	require.NoError(t, err)
	assert.Equal(t, first.ID, replay.ID, "replayed saga must return the original rental")

	c, err := store.GetCustomer(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, c.ActiveRentals)
	assert.Len(t, store.ListRentals(ctx), 1)
}

func TestReturnReleasesQuotaSlot(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	r1, err := store.CreateRental(ctx, createReq(1), testNow)
	require.NoError(t, err)
	_, err = store.CreateRental(ctx, createReq(1), testNow)
	require.NoError(t, err)

	returned, err := store.ReturnRental(ctx, r1.ID, testNow)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReturned, returned.Status)

	_, err = store.CreateRental(ctx, createReq(1), testNow)
	assert.NoError(t, err, "a returned rental frees its quota slot")
}

func TestReturnRentalErrors(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.ReturnRental(ctx, 99, testNow)
	assert.ErrorIs(t, err, domain.ErrRentalNotFound)

	r, err := store.CreateRental(ctx, createReq(1), testNow)
	require.NoError(t, err)
	_, err = store.ReturnRental(ctx, r.ID, testNow)
	require.NoError(t, err)
	_, err = store.ReturnRental(ctx, r.ID, testNow)
	assert.ErrorIs(t, err, domain.ErrRentalAlreadyReturned)
}

func TestCancelRental(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	r, err := store.CreateRental(ctx, createReq(1), testNow)
	require.NoError(t, err)

	_, err = store.CancelRental(ctx, r.ID)
	require.NoError(t, err)

	_, err = store.GetRental(ctx, r.ID)
	assert.ErrorIs(t, err, domain.ErrRentalNotFound, "a cancelled rental leaves no trace")

	c, err := store.GetCustomer(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, c.ActiveRentals)
}

func TestCancelReturnedRental(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	r, err := store.CreateRental(ctx, createReq(1), testNow)
	require.NoError(t, err)
	_, err = store.ReturnRental(ctx, r.ID, testNow)
	require.NoError(t, err)

	_, err = store.CancelRental(ctx, r.ID)
	assert.ErrorIs(t, err, domain.ErrRentalNotActive)
}

func TestReopenRental(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	r, err := store.CreateRental(ctx, createReq(1), testNow)
	require.NoError(t, err)

	_, err = store.ReopenRental(ctx, r.ID)
	assert.ErrorIs(t, err, domain.ErrRentalNotReturned)

	_, err = store.ReturnRental(ctx, r.ID, testNow.AddDate(0, 0, 5))
	require.NoError(t, err)

	reopened, err := store.ReopenRental(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, reopened.Status)
	assert.Zero(t, reopened.LateFee)

	c, err := store.GetCustomer(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, c.ActiveRentals, "reopening re-occupies the quota slot")
}

func TestConcurrentCreatesRespectQuota(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	const attempts = 10
	var succeeded atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := createReq(2)
			req.SagaID = fmt.Sprintf("saga-%d", i)
			if _, err := store.CreateRental(ctx, req, testNow); err == nil {
				succeeded.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(3), succeeded.Load(), "exactly max_rentals creates may win")

	rentals := store.ListRentals(ctx)
	require.Len(t, rentals, 3)
	seen := map[int]bool{}
	for _, r := range rentals {
		assert.False(t, seen[r.ID], "rental ids must be unique")
		seen[r.ID] = true
	}
}

func TestActiveRentalsFilter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	r1, err := store.CreateRental(ctx, createReq(1), testNow)
	require.NoError(t, err)
	_, err = store.CreateRental(ctx, createReq(2), testNow)
	require.NoError(t, err)
	_, err = store.ReturnRental(ctx, r1.ID, testNow)
	require.NoError(t, err)

	active := store.ActiveRentals(ctx)
	require.Len(t, active, 1)
	assert.Equal(t, 2, active[0].CustomerID)
	assert.Len(t, store.ListRentals(ctx), 2)
}

func TestRentalsByCustomer(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.CreateRental(ctx, createReq(1), testNow)
	require.NoError(t, err)

	rentals, err := store.RentalsByCustomer(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, rentals, 1)

	rentals, err = store.RentalsByCustomer(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, rentals)

	_, err = store.RentalsByCustomer(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrCustomerNotFound)
}
