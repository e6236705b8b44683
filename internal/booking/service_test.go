package booking_test

import (
	"context"
	"sync"
	"testing"

	"github.com/example/hotel-booking/internal/booking"
	"github.com/example/hotel-booking/internal/booking/memstore"
	"github.com/example/hotel-booking/internal/hotel"
	"github.com/example/hotel-booking/internal/money"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store  *memstore.Store
	svc    *booking.Service
	room   hotel.Room
	suite  hotel.Room
	client hotel.Client
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	st := memstore.New()

	room, err := st.CreateRoom(ctx, hotel.Room{Number: "101", Capacity: 2, NightlyRate: money.FromCents(10000)})
	require.NoError(t, err)
	suite, err := st.CreateRoom(ctx, hotel.Room{Number: "501", Type: hotel.RoomSuite, Capacity: 4, NightlyRate: money.FromCents(25050)})
	require.NoError(t, err)
	client, err := st.CreateClient(ctx, hotel.Client{Name: "Joana Prado", Document: "111.222.333-44", Email: "joana@example.com", Phone: "555-0101"})
	require.NoError(t, err)

	return &fixture{store: st, svc: booking.NewService(st), room: room, suite: suite, client: client}
}

func (f *fixture) book(t *testing.T, roomID int64, in, out string) booking.Details {
	t.Helper()
	s := mustStay(in, out)
	d, err := f.svc.Create(context.Background(), booking.NewReservation{
		RoomID: roomID, ClientID: f.client.ID, CheckIn: s.CheckIn, CheckOut: s.CheckOut,
	})
	require.NoError(t, err)
	return d
}

func mustStay(in, out string) booking.Stay {
	s, err := booking.ParseStay(in, out)
	if err != nil {
		panic(err)
	}
	return s
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	s := mustStay("2024-03-01", "2024-03-04")

	d, err := f.svc.Create(context.Background(), booking.NewReservation{
		RoomID: f.room.ID, ClientID: f.client.ID, CheckIn: s.CheckIn, CheckOut: s.CheckOut, Notes: "late arrival",
	})
	require.NoError(t, err)
	require.NotZero(t, d.ID)
	require.Equal(t, booking.StatusPending, d.Status)
	require.Equal(t, 3, d.Nights)
	require.Equal(t, "300.00", d.TotalPrice.String())
	require.Equal(t, "late arrival", d.Notes)
	require.Equal(t, "101", d.Room.Number)
	require.Equal(t, "Joana Prado", d.Client.Name)

	got, err := f.svc.Get(context.Background(), d.ID)
	require.NoError(t, err)
	require.Equal(t, d.Reservation, got.Reservation)
}

func TestCreate_UnknownRoom(t *testing.T) {
	f := newFixture(t)
	s := mustStay("2024-03-01", "2024-03-04")

	_, err := f.svc.Create(context.Background(), booking.NewReservation{
		RoomID: 999, ClientID: f.client.ID, CheckIn: s.CheckIn, CheckOut: s.CheckOut,
	})
	require.ErrorIs(t, err, booking.ErrNotFound)
	require.ErrorIs(t, err, booking.ErrRoomNotFound)
	require.NotErrorIs(t, err, booking.ErrClientNotFound)
	require.Equal(t, booking.KindNotFound, booking.KindOf(err))

	all, err := f.svc.List(context.Background(), booking.Filter{})
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestCreate_UnknownClient(t *testing.T) {
	f := newFixture(t)
	s := mustStay("2024-03-01", "2024-03-04")
	_, err := f.svc.Create(context.Background(), booking.NewReservation{
		RoomID: f.room.ID, ClientID: 404, CheckIn: s.CheckIn, CheckOut: s.CheckOut,
	})
	require.ErrorIs(t, err, booking.ErrNotFound)
	require.ErrorIs(t, err, booking.ErrClientNotFound)
}

func TestCreate_InvalidRange(t *testing.T) {
	f := newFixture(t)
	s := mustStay("2024-03-01", "2024-03-04")
	_, err := f.svc.Create(context.Background(), booking.NewReservation{
		RoomID: f.room.ID, ClientID: f.client.ID, CheckIn: s.CheckOut, CheckOut: s.CheckIn,
	})
	require.ErrorIs(t, err, booking.ErrInvalidRange)
}

func TestCreate_Overlap(t *testing.T) {
	f := newFixture(t)
	f.book(t, f.room.ID, "2024-01-01", "2024-01-05")

	cases := map[string]booking.Stay{
		"identical":    mustStay("2024-01-01", "2024-01-05"),
		"back-to-back": mustStay("2024-01-05", "2024-01-10"),
		"inside":       mustStay("2024-01-02", "2024-01-03"),
	}
	for name, s := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Create(context.Background(), booking.NewReservation{
				RoomID: f.room.ID, ClientID: f.client.ID, CheckIn: s.CheckIn, CheckOut: s.CheckOut,
			})
			require.ErrorIs(t, err, booking.ErrRoomUnavailable)
			require.Equal(t, booking.KindRoomUnavailable, booking.KindOf(err))
		})
	}

	// other rooms are unaffected
	f.book(t, f.suite.ID, "2024-01-01", "2024-01-05")
}

func TestCreate_AfterCancelFreesRoom(t *testing.T) {
	f := newFixture(t)
	d := f.book(t, f.room.ID, "2024-02-01", "2024-02-03")

	ok, err := f.svc.IsAvailable(context.Background(), f.room.ID, mustStay("2024-02-01", "2024-02-03"), 0)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = f.svc.Cancel(context.Background(), d.ID)
	require.NoError(t, err)

	ok, err = f.svc.IsAvailable(context.Background(), f.room.ID, mustStay("2024-02-01", "2024-02-03"), 0)
	require.NoError(t, err)
	require.True(t, ok)
	f.book(t, f.room.ID, "2024-02-01", "2024-02-03")
}

func TestCreate_ConcurrentSameRange(t *testing.T) {
	f := newFixture(t)
	s := mustStay("2024-06-10", "2024-06-12")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Create(context.Background(), booking.NewReservation{
				RoomID: f.room.ID, ClientID: f.client.ID, CheckIn: s.CheckIn, CheckOut: s.CheckOut,
			})
		}(i)
	}
	wg.Wait()

	var ok, unavailable int
	for _, err := range errs {
		switch booking.KindOf(err) {
		case "":
			ok++
		case booking.KindRoomUnavailable:
			unavailable++
		}
	}
	require.Equal(t, 1, ok)
	require.Equal(t, 1, unavailable)
}

// scanCounter counts availability scans made through the store.
type scanCounter struct {
	booking.Store
	scans int
}

func (c *scanCounter) InTx(ctx context.Context, fn func(tx booking.Tx) error) error {
	return c.Store.InTx(ctx, func(tx booking.Tx) error {
		return fn(&countingTx{Tx: tx, n: &c.scans})
	})
}

type countingTx struct {
	booking.Tx
	n *int
}

func (t *countingTx) ReservationsForRoom(ctx context.Context, roomID int64, window booking.Stay) ([]booking.Reservation, error) {
	*t.n++
	return t.Tx.ReservationsForRoom(ctx, roomID, window)
}

func TestModify_NotesOnlySkipsAvailability(t *testing.T) {
	f := newFixture(t)
	d := f.book(t, f.room.ID, "2024-03-01", "2024-03-04")

	counter := &scanCounter{Store: f.store}
	svc := booking.NewService(counter)

	notes := "extra towels"
	got, err := svc.Modify(context.Background(), d.ID, booking.Changes{Notes: &notes})
	require.NoError(t, err)
	require.Zero(t, counter.scans)
	require.Equal(t, "extra towels", got.Notes)
	require.Equal(t, 3, got.Nights)
	require.Equal(t, "300.00", got.TotalPrice.String())

	// resubmitting the same room and dates is not a change either
	_, err = svc.Modify(context.Background(), d.ID, booking.Changes{RoomID: f.room.ID, CheckIn: d.CheckIn, CheckOut: d.CheckOut})
	require.NoError(t, err)
	require.Zero(t, counter.scans)
}

func TestModify_DatesExcludeSelf(t *testing.T) {
	f := newFixture(t)
	d := f.book(t, f.room.ID, "2024-03-01", "2024-03-04")

	s := mustStay("2024-03-02", "2024-03-06")
	got, err := f.svc.Modify(context.Background(), d.ID, booking.Changes{CheckIn: s.CheckIn, CheckOut: s.CheckOut})
	require.NoError(t, err)
	require.Equal(t, 4, got.Nights)
	require.Equal(t, "400.00", got.TotalPrice.String())
}

func TestModify_ConflictLeavesReservationUntouched(t *testing.T) {
	f := newFixture(t)
	a := f.book(t, f.room.ID, "2024-03-01", "2024-03-04")
	f.book(t, f.room.ID, "2024-03-10", "2024-03-12")

	s := mustStay("2024-03-08", "2024-03-10")
	_, err := f.svc.Modify(context.Background(), a.ID, booking.Changes{CheckIn: s.CheckIn, CheckOut: s.CheckOut})
	require.ErrorIs(t, err, booking.ErrRoomUnavailable)

	got, err := f.svc.Get(context.Background(), a.ID)
	require.NoError(t, err)
	require.Equal(t, a.Reservation, got.Reservation)
}

func TestModify_RoomChangeReprices(t *testing.T) {
	f := newFixture(t)
	d := f.book(t, f.room.ID, "2024-03-01", "2024-03-03")

	got, err := f.svc.Modify(context.Background(), d.ID, booking.Changes{RoomID: f.suite.ID})
	require.NoError(t, err)
	require.Equal(t, f.suite.ID, got.RoomID)
	require.Equal(t, "501.00", got.TotalPrice.String())
	require.Equal(t, "501", got.Room.Number)
}

func TestModify_RateChangeAppliesOnNextModify(t *testing.T) {
	f := newFixture(t)
	d := f.book(t, f.room.ID, "2024-03-01", "2024-03-03")

	room := f.room
	room.NightlyRate = money.FromCents(12000)
	_, err := f.store.UpdateRoom(context.Background(), room)
	require.NoError(t, err)

	got, err := f.svc.Modify(context.Background(), d.ID, booking.Changes{Status: booking.StatusConfirmed})
	require.NoError(t, err)
	require.Equal(t, booking.StatusConfirmed, got.Status)
	require.Equal(t, "240.00", got.TotalPrice.String())
}

func TestModify_Errors(t *testing.T) {
	f := newFixture(t)
	d := f.book(t, f.room.ID, "2024-03-01", "2024-03-03")
	ctx := context.Background()

	_, err := f.svc.Modify(ctx, 999, booking.Changes{})
	require.ErrorIs(t, err, booking.ErrNotFound)

	_, err = f.svc.Modify(ctx, d.ID, booking.Changes{RoomID: 999})
	require.ErrorIs(t, err, booking.ErrNotFound)

	_, err = f.svc.Modify(ctx, d.ID, booking.Changes{CheckOut: d.CheckIn})
	require.ErrorIs(t, err, booking.ErrInvalidRange)

	_, err = f.svc.Modify(ctx, d.ID, booking.Changes{Status: "bogus"})
	require.ErrorIs(t, err, booking.ErrValidation)

	_, err = f.svc.Modify(ctx, d.ID, booking.Changes{Status: booking.StatusFinalized})
	require.ErrorIs(t, err, booking.ErrInvalidTransition)
}

func TestModify_Lifecycle(t *testing.T) {
	f := newFixture(t)
	d := f.book(t, f.room.ID, "2024-03-01", "2024-03-03")
	ctx := context.Background()

	for _, st := range []booking.Status{booking.StatusConfirmed, booking.StatusFinalized} {
		got, err := f.svc.Modify(ctx, d.ID, booking.Changes{Status: st})
		require.NoError(t, err)
		require.Equal(t, st, got.Status)
	}

	_, err := f.svc.Modify(ctx, d.ID, booking.Changes{Status: booking.StatusPending})
	require.ErrorIs(t, err, booking.ErrInvalidTransition)
}

func TestCancel_Idempotent(t *testing.T) {
	f := newFixture(t)
	d := f.book(t, f.room.ID, "2024-04-01", "2024-04-02")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		got, err := f.svc.Cancel(ctx, d.ID)
		require.NoError(t, err)
		require.Equal(t, booking.StatusCancelled, got.Status)
	}

	_, err := f.svc.Cancel(ctx, 999)
	require.ErrorIs(t, err, booking.ErrNotFound)
}

func TestCancel_FinalizedAllowed(t *testing.T) {
	f := newFixture(t)
	d := f.book(t, f.room.ID, "2024-04-01", "2024-04-02")
	ctx := context.Background()
	_, err := f.svc.Modify(ctx, d.ID, booking.Changes{Status: booking.StatusConfirmed})
	require.NoError(t, err)
	_, err = f.svc.Modify(ctx, d.ID, booking.Changes{Status: booking.StatusFinalized})
	require.NoError(t, err)

	got, err := f.svc.Cancel(ctx, d.ID)
	require.NoError(t, err)
	require.Equal(t, booking.StatusCancelled, got.Status)
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	d := f.book(t, f.room.ID, "2024-04-01", "2024-04-05")
	ctx := context.Background()

	require.NoError(t, f.svc.Delete(ctx, d.ID))
	_, err := f.svc.Get(ctx, d.ID)
	require.ErrorIs(t, err, booking.ErrNotFound)
	require.ErrorIs(t, f.svc.Delete(ctx, d.ID), booking.ErrReservationNotFound)

	// the freed range can be booked again
	f.book(t, f.room.ID, "2024-04-01", "2024-04-05")
}

func TestList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.book(t, f.room.ID, "2024-01-01", "2024-01-03")
	b := f.book(t, f.room.ID, "2024-05-01", "2024-05-03")
	c := f.book(t, f.suite.ID, "2024-03-01", "2024-03-03")
	_, err := f.svc.Cancel(ctx, c.ID)
	require.NoError(t, err)

	all, err := f.svc.List(ctx, booking.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, []int64{b.ID, c.ID, a.ID}, []int64{all[0].ID, all[1].ID, all[2].ID})

	cancelled, err := f.svc.List(ctx, booking.Filter{Status: booking.StatusCancelled})
	require.NoError(t, err)
	require.Len(t, cancelled, 1)
	require.Equal(t, c.ID, cancelled[0].ID)

	_, err = f.svc.List(ctx, booking.Filter{Status: "cancelada"})
	require.ErrorIs(t, err, booking.ErrValidation)
}
