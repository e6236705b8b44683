// Package booking is the reservation engine: calendar math, availability,
// pricing and the reservation lifecycle.
package booking

import (
	"context"
	"time"

	"github.com/example/hotel-booking/internal/hotel"
	"github.com/example/hotel-booking/internal/money"
)

type Reservation struct {
	ID       int64
	RoomID   int64
	ClientID int64

	CheckIn  time.Time
	CheckOut time.Time

	// Nights and TotalPrice are derived from the stay and the room rate.
	Nights     int
	TotalPrice money.Amount

	Status Status
	Notes  string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r Reservation) Stay() Stay {
	return Stay{CheckIn: r.CheckIn, CheckOut: r.CheckOut}
}

// reprice sets the stay and recomputes Nights and TotalPrice against rate.
func (r *Reservation) reprice(s Stay, rate money.Amount) {
	r.CheckIn, r.CheckOut = s.CheckIn, s.CheckOut
	r.Nights = s.Nights()
	r.TotalPrice = ComputePrice(r.Nights, rate)
}

type RoomSummary struct {
	ID          int64
	Number      string
	Type        hotel.RoomType
	NightlyRate money.Amount
}

type ClientSummary struct {
	ID       int64
	Name     string
	Email    string
	Document string
}

func SummarizeRoom(r hotel.Room) RoomSummary {
	return RoomSummary{ID: r.ID, Number: r.Number, Type: r.Type, NightlyRate: r.NightlyRate}
}

func SummarizeClient(c hotel.Client) ClientSummary {
	return ClientSummary{ID: c.ID, Name: c.Name, Email: c.Email, Document: c.Document}
}

// Details is a reservation joined with its room and client.
type Details struct {
	Reservation
	Room   RoomSummary
	Client ClientSummary
}

type Filter struct {
	Status   Status
	RoomID   int64
	ClientID int64
}

func (f Filter) Match(r Reservation) bool {
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.RoomID != 0 && r.RoomID != f.RoomID {
		return false
	}
	if f.ClientID != 0 && r.ClientID != f.ClientID {
		return false
	}
	return true
}

// Store persists reservations. Writes go through InTx so the availability
// scan and the write share one transaction.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
	Get(ctx context.Context, id int64) (Details, error)
	// List is ordered by check-in date, latest first.
	List(ctx context.Context, f Filter) ([]Details, error)
}

// Tx is the transactional view used by the lifecycle operations.
type Tx interface {
	// Room loads a room; forUpdate holds a lock on it until the transaction ends.
	Room(ctx context.Context, id int64, forUpdate bool) (hotel.Room, error)
	Client(ctx context.Context, id int64) (hotel.Client, error)
	// Reservation loads and locks a reservation.
	Reservation(ctx context.Context, id int64) (Reservation, error)
	// ReservationsForRoom returns the room's reservations that may conflict
	// with window. It may return a superset.
	ReservationsForRoom(ctx context.Context, roomID int64, window Stay) ([]Reservation, error)
	Insert(ctx context.Context, r *Reservation) error
	Update(ctx context.Context, r *Reservation) error
	Delete(ctx context.Context, id int64) error
}
