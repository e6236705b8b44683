// Package memstore keeps rooms, clients and reservations in memory. It backs
// `server --store=memory` and the engine tests.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/example/hotel-booking/internal/booking"
	"github.com/example/hotel-booking/internal/hotel"
	"github.com/example/hotel-booking/internal/internaltypes"
)

var _ booking.Store = (*Store)(nil)

type Store struct {
	mu sync.Mutex

	rooms        map[int64]hotel.Room
	clients      map[int64]hotel.Client
	reservations map[int64]booking.Reservation
	lastID       int64

	now func() time.Time
}

func New() *Store {
	return &Store{
		rooms:        map[int64]hotel.Room{},
		clients:      map[int64]hotel.Client{},
		reservations: map[int64]booking.Reservation{},
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) nextID() int64 {
	s.lastID++
	return s.lastID
}

type snapshot struct {
	rooms        map[int64]hotel.Room
	clients      map[int64]hotel.Client
	reservations map[int64]booking.Reservation
	lastID       int64
}

func (s *Store) save() snapshot {
	snap := snapshot{
		rooms:        make(map[int64]hotel.Room, len(s.rooms)),
		clients:      make(map[int64]hotel.Client, len(s.clients)),
		reservations: make(map[int64]booking.Reservation, len(s.reservations)),
		lastID:       s.lastID,
	}
	for k, v := range s.rooms {
		snap.rooms[k] = v
	}
	for k, v := range s.clients {
		snap.clients[k] = v
	}
	for k, v := range s.reservations {
		snap.reservations[k] = v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.rooms, s.clients, s.reservations, s.lastID = snap.rooms, snap.clients, snap.reservations, snap.lastID
}

// InTx runs fn holding the store lock. A non-nil error discards every write
// fn made.
func (s *Store) InTx(ctx context.Context, fn func(tx booking.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.save()
	if err := fn(&tx{s: s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id int64) (booking.Details, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reservations[id]
	if !ok {
		return booking.Details{}, internaltypes.ErrNotFound
	}
	return s.details(r), nil
}

func (s *Store) List(ctx context.Context, f booking.Filter) ([]booking.Details, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []booking.Details
	for _, r := range s.reservations {
		if f.Match(r) {
			out = append(out, s.details(r))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CheckIn.Equal(out[j].CheckIn) {
			return out[i].CheckIn.After(out[j].CheckIn)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) details(r booking.Reservation) booking.Details {
	return booking.Details{
		Reservation: r,
		Room:        booking.SummarizeRoom(s.rooms[r.RoomID]),
		Client:      booking.SummarizeClient(s.clients[r.ClientID]),
	}
}

// conflict mirrors the storage-level no-overlap constraint.
func (s *Store) conflict(r booking.Reservation) bool {
	if !r.Status.Active() {
		return false
	}
	for _, o := range s.reservations {
		if o.ID == r.ID || o.RoomID != r.RoomID || !o.Status.Active() {
			continue
		}
		if booking.Conflicts(r.Stay(), o.Stay()) {
			return true
		}
	}
	return false
}

type tx struct{ s *Store }

func (t *tx) Room(ctx context.Context, id int64, forUpdate bool) (hotel.Room, error) {
	r, ok := t.s.rooms[id]
	if !ok {
		return hotel.Room{}, internaltypes.ErrNotFound
	}
	return r, nil
}

func (t *tx) Client(ctx context.Context, id int64) (hotel.Client, error) {
	c, ok := t.s.clients[id]
	if !ok {
		return hotel.Client{}, internaltypes.ErrNotFound
	}
	return c, nil
}

func (t *tx) Reservation(ctx context.Context, id int64) (booking.Reservation, error) {
	r, ok := t.s.reservations[id]
	if !ok {
		return booking.Reservation{}, internaltypes.ErrNotFound
	}
	return r, nil
}

func (t *tx) ReservationsForRoom(ctx context.Context, roomID int64, window booking.Stay) ([]booking.Reservation, error) {
	var out []booking.Reservation
	for _, r := range t.s.reservations {
		if r.RoomID == roomID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (t *tx) Insert(ctx context.Context, r *booking.Reservation) error {
	if _, ok := t.s.rooms[r.RoomID]; !ok {
		return fmt.Errorf("room %d: %w", r.RoomID, internaltypes.ErrNotFound)
	}
	if t.s.conflict(*r) {
		return booking.ErrRoomUnavailable
	}
	now := t.s.now()
	r.ID = t.s.nextID()
	r.CreatedAt, r.UpdatedAt = now, now
	t.s.reservations[r.ID] = *r
	return nil
}

func (t *tx) Update(ctx context.Context, r *booking.Reservation) error {
	if _, ok := t.s.reservations[r.ID]; !ok {
		return internaltypes.ErrNotFound
	}
	if t.s.conflict(*r) {
		return booking.ErrRoomUnavailable
	}
	r.UpdatedAt = t.s.now()
	t.s.reservations[r.ID] = *r
	return nil
}

func (t *tx) Delete(ctx context.Context, id int64) error {
	if _, ok := t.s.reservations[id]; !ok {
		return internaltypes.ErrNotFound
	}
	delete(t.s.reservations, id)
	return nil
}
