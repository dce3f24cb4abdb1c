package sqlite

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/DAN6256/EmailServer/internal/storage"
	"github.com/DAN6256/EmailServer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *SQLite {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "nested", "deliveries.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRecordAndGet(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	created := time.Date(2025, 7, 12, 10, 30, 0, 0, time.UTC)
	id, err := db.RecordDelivery(ctx, types.Delivery{
		Kind:       "tutor-booking-notification",
		Recipient:  "tutor@example.edu",
		Subject:    "New Tutoring Session Booked: Mathematics",
		Transport:  "emailjs",
		Status:     types.DeliverySent,
		ProviderID: "abc",
		CreatedAt:  created,
	})
	require.NoError(t, err)
	assert.Positive(t, id)

	got, err := db.GetDeliveryByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "tutor@example.edu", got.Recipient)
	assert.Equal(t, types.DeliverySent, got.Status)
	assert.Equal(t, "abc", got.ProviderID)
	assert.Empty(t, got.Error)
	assert.True(t, created.Equal(got.CreatedAt))
}

func TestGetDeliveryByIDNotFound(t *testing.T) {
	db := newTestDB(t)
	_, err := db.GetDeliveryByID(context.Background(), 42)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGetDeliveries(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	empty, err := db.GetDeliveries(ctx, 10)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	for _, r := range []string{"a@x.edu", "b@x.edu", "c@x.edu"} {
		_, err := db.RecordDelivery(ctx, types.Delivery{
			Kind: "application-confirmation", Recipient: r, Subject: "s",
			Transport: "smtp", Status: types.DeliveryFailed, Error: "timed out",
		})
		require.NoError(t, err)
	}

	latest, err := db.GetDeliveries(ctx, 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "c@x.edu", latest[0].Recipient)
	assert.Equal(t, "b@x.edu", latest[1].Recipient)
	assert.Equal(t, "timed out", latest[0].Error)

	all, err := db.GetDeliveries(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestConcurrentRecords(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := db.RecordDelivery(ctx, types.Delivery{
				Kind: "student-booking-confirmation", Recipient: "s@x.edu", Subject: "s",
				Transport: "emailjs", Status: types.DeliverySent,
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	all, err := db.GetDeliveries(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestNopLog(t *testing.T) {
	var log storage.DeliveryLog = storage.Nop{}
	id, err := log.RecordDelivery(context.Background(), types.Delivery{})
	assert.NoError(t, err)
	assert.Zero(t, id)

	_, err = log.GetDeliveries(context.Background(), 10)
	assert.ErrorIs(t, err, storage.ErrDisabled)
	_, err = log.GetDeliveryByID(context.Background(), 1)
	assert.ErrorIs(t, err, storage.ErrDisabled)
}
