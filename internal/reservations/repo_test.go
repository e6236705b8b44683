package reservations

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/example/hotel-booking/internal/booking"
	"github.com/example/hotel-booking/internal/db"
	"github.com/example/hotel-booking/internal/hotel"
	"github.com/example/hotel-booking/internal/migrate"
	"github.com/example/hotel-booking/internal/money"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestMapWriteErr(t *testing.T) {
	require.NoError(t, mapWriteErr(nil))
	require.ErrorIs(t, mapWriteErr(&pgconn.PgError{Code: "23P01"}), booking.ErrRoomUnavailable)
	require.ErrorIs(t, mapWriteErr(&pgconn.PgError{Code: "23503"}), booking.ErrNotFound)
	require.ErrorIs(t, mapWriteErr(pgx.ErrNoRows), booking.ErrNotFound)

	other := errors.New("connection reset")
	require.Equal(t, booking.KindInternal, booking.KindOf(mapWriteErr(other)))
}

// openTestDB connects to HOTEL_TEST_DATABASE_URL and resets the schema.
func openTestDB(t *testing.T) *db.DB {
	t.Helper()
	url := os.Getenv("HOTEL_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("HOTEL_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	d, err := db.Open(ctx, url)
	require.NoError(t, err)
	t.Cleanup(d.Close)

	require.NoError(t, migrate.Up(ctx, d))
	require.NoError(t, d.Exec(ctx, `TRUNCATE reservations, rooms, clients RESTART IDENTITY CASCADE`))
	return d
}

type pgFixture struct {
	svc    *booking.Service
	repo   *Repo
	room   hotel.Room
	client hotel.Client
}

func newPGFixture(t *testing.T) *pgFixture {
	t.Helper()
	d := openTestDB(t)
	ctx := context.Background()
	dir := hotel.NewRepo(d)

	room, err := dir.CreateRoom(ctx, hotel.Room{Number: "101", Capacity: 2, NightlyRate: money.FromCents(10000)})
	require.NoError(t, err)
	client, err := dir.CreateClient(ctx, hotel.Client{Name: "Joana Prado", Document: "111.222.333-44", Email: "joana@example.com", Phone: "555-0101"})
	require.NoError(t, err)

	repo := NewRepo(d)
	return &pgFixture{svc: booking.NewService(repo), repo: repo, room: room, client: client}
}

func (f *pgFixture) request(in, out string) booking.NewReservation {
	s, err := booking.ParseStay(in, out)
	if err != nil {
		panic(err)
	}
	return booking.NewReservation{RoomID: f.room.ID, ClientID: f.client.ID, CheckIn: s.CheckIn, CheckOut: s.CheckOut}
}

func TestPostgres_Lifecycle(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()

	d, err := f.svc.Create(ctx, f.request("2024-03-01", "2024-03-04"))
	require.NoError(t, err)
	require.Equal(t, 3, d.Nights)
	require.Equal(t, "300.00", d.TotalPrice.String())
	require.Equal(t, "101", d.Room.Number)

	got, err := f.svc.Get(ctx, d.ID)
	require.NoError(t, err)
	require.True(t, got.CheckIn.Equal(d.CheckIn))
	require.Equal(t, d.TotalPrice, got.TotalPrice)

	_, err = f.svc.Create(ctx, f.request("2024-03-04", "2024-03-06"))
	require.ErrorIs(t, err, booking.ErrRoomUnavailable)

	confirmed := booking.StatusConfirmed
	upd, err := f.svc.Modify(ctx, d.ID, booking.Changes{Status: confirmed})
	require.NoError(t, err)
	require.Equal(t, confirmed, upd.Status)

	_, err = f.svc.Cancel(ctx, d.ID)
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.request("2024-03-04", "2024-03-06"))
	require.NoError(t, err)

	list, err := f.svc.List(ctx, booking.Filter{RoomID: f.room.ID})
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "2024-03-04", booking.FormatDate(list[0].CheckIn))

	require.NoError(t, f.svc.Delete(ctx, d.ID))
	_, err = f.svc.Get(ctx, d.ID)
	require.ErrorIs(t, err, booking.ErrNotFound)
}

func TestPostgres_ConcurrentCreate(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()

	const n = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Create(ctx, f.request("2024-05-10", "2024-05-12"))
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}()
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		require.ErrorIs(t, err, booking.ErrRoomUnavailable)
	}
	require.Equal(t, 1, ok)
}

func TestPostgres_ExclusionConstraint(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.request("2024-06-01", "2024-06-03"))
	require.NoError(t, err)

	// write straight through the store, skipping the engine's scan
	err = f.repo.InTx(ctx, func(tx booking.Tx) error {
		res := &booking.Reservation{
			RoomID: f.room.ID, ClientID: f.client.ID,
			CheckIn: mustDate("2024-06-03"), CheckOut: mustDate("2024-06-05"),
			Nights: 2, TotalPrice: money.FromCents(20000), Status: booking.StatusPending,
		}
		return tx.Insert(ctx, res)
	})
	require.ErrorIs(t, err, booking.ErrRoomUnavailable)

	err = f.repo.InTx(ctx, func(tx booking.Tx) error {
		res := &booking.Reservation{
			RoomID: f.room.ID + 1000, ClientID: f.client.ID,
			CheckIn: mustDate("2024-07-01"), CheckOut: mustDate("2024-07-02"),
			Nights: 1, TotalPrice: money.FromCents(10000), Status: booking.StatusPending,
		}
		return tx.Insert(ctx, res)
	})
	require.ErrorIs(t, err, booking.ErrNotFound, fmt.Sprint(err))
}

func mustDate(s string) time.Time {
	v, err := booking.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return v
}
