package memstore

import (
	"context"
	"fmt"
	"sort"

	"github.com/example/hotel-booking/internal/hotel"
	"github.com/example/hotel-booking/internal/internaltypes"
)

var _ hotel.Directory = (*Store)(nil)

func (s *Store) CreateRoom(ctx context.Context, r hotel.Room) (hotel.Room, error) {
	r = r.WithDefaults()
	if err := r.Validate(); err != nil {
		return hotel.Room{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.roomNumberTaken(r.Number, 0) {
		return hotel.Room{}, fmt.Errorf("%w: room number %q", internaltypes.ErrConflict, r.Number)
	}
	r.ID = s.nextID()
	r.CreatedAt = s.now()
	r.UpdatedAt = r.CreatedAt
	s.rooms[r.ID] = r
	return r, nil
}

func (s *Store) UpdateRoom(ctx context.Context, r hotel.Room) (hotel.Room, error) {
	r = r.WithDefaults()
	if err := r.Validate(); err != nil {
		return hotel.Room{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.rooms[r.ID]
	if !ok {
		return hotel.Room{}, internaltypes.ErrNotFound
	}
	if s.roomNumberTaken(r.Number, r.ID) {
		return hotel.Room{}, fmt.Errorf("%w: room number %q", internaltypes.ErrConflict, r.Number)
	}
	r.CreatedAt = cur.CreatedAt
	r.UpdatedAt = s.now()
	s.rooms[r.ID] = r
	return r, nil
}

func (s *Store) roomNumberTaken(number string, except int64) bool {
	for id, r := range s.rooms {
		if id != except && r.Number == number {
			return true
		}
	}
	return false
}

func (s *Store) GetRoom(ctx context.Context, id int64) (hotel.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	if !ok {
		return hotel.Room{}, internaltypes.ErrNotFound
	}
	return r, nil
}

func (s *Store) ListRooms(ctx context.Context, f hotel.RoomFilter) ([]hotel.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []hotel.Room
	for _, r := range s.rooms {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

// DeleteRoom also drops the room's reservations.
func (s *Store) DeleteRoom(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[id]; !ok {
		return internaltypes.ErrNotFound
	}
	delete(s.rooms, id)
	for rid, r := range s.reservations {
		if r.RoomID == id {
			delete(s.reservations, rid)
		}
	}
	return nil
}

func (s *Store) CreateClient(ctx context.Context, c hotel.Client) (hotel.Client, error) {
	if err := c.Validate(); err != nil {
		return hotel.Client{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.documentTaken(c.Document, 0) {
		return hotel.Client{}, fmt.Errorf("%w: document %q", internaltypes.ErrConflict, c.Document)
	}
	c.ID = s.nextID()
	c.CreatedAt = s.now()
	c.UpdatedAt = c.CreatedAt
	s.clients[c.ID] = c
	return c, nil
}

func (s *Store) UpdateClient(ctx context.Context, c hotel.Client) (hotel.Client, error) {
	if err := c.Validate(); err != nil {
		return hotel.Client{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.clients[c.ID]
	if !ok {
		return hotel.Client{}, internaltypes.ErrNotFound
	}
	if s.documentTaken(c.Document, c.ID) {
		return hotel.Client{}, fmt.Errorf("%w: document %q", internaltypes.ErrConflict, c.Document)
	}
	c.CreatedAt = cur.CreatedAt
	c.UpdatedAt = s.now()
	s.clients[c.ID] = c
	return c, nil
}

func (s *Store) documentTaken(doc string, except int64) bool {
	for id, c := range s.clients {
		if id != except && c.Document == doc {
			return true
		}
	}
	return false
}

func (s *Store) GetClient(ctx context.Context, id int64) (hotel.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[id]
	if !ok {
		return hotel.Client{}, internaltypes.ErrNotFound
	}
	return c, nil
}

func (s *Store) ListClients(ctx context.Context) ([]hotel.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]hotel.Client, 0, len(s.clients))
	for _, c := range s.clients {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// DeleteClient also drops the client's reservations.
func (s *Store) DeleteClient(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[id]; !ok {
		return internaltypes.ErrNotFound
	}
	delete(s.clients, id)
	for rid, r := range s.reservations {
		if r.ClientID == id {
			delete(s.reservations, rid)
		}
	}
	return nil
}
