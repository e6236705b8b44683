package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/example/hotel-booking/internal/hotel"
	"github.com/example/hotel-booking/internal/internaltypes"
)

type Service struct {
	store Store
}

func NewService(s Store) *Service { return &Service{store: s} }

type NewReservation struct {
	RoomID   int64
	ClientID int64
	CheckIn  time.Time
	CheckOut time.Time
	Notes    string
}

// Changes is the input to Modify. Zero values keep the stored field.
type Changes struct {
	RoomID   int64
	ClientID int64
	CheckIn  time.Time
	CheckOut time.Time
	Status   Status
	Notes    *string
}

// IsAvailable reports whether roomID is free for stay, ignoring excludeID.
func (s *Service) IsAvailable(ctx context.Context, roomID int64, stay Stay, excludeID int64) (bool, error) {
	var ok bool
	err := s.store.InTx(ctx, func(tx Tx) error {
		existing, err := tx.ReservationsForRoom(ctx, roomID, stay)
		if err != nil {
			return err
		}
		ok = IsAvailable(stay, existing, excludeID)
		return nil
	})
	return ok, err
}

func checkAvailable(ctx context.Context, tx Tx, roomID int64, stay Stay, excludeID int64) error {
	existing, err := tx.ReservationsForRoom(ctx, roomID, stay)
	if err != nil {
		return err
	}
	if ids := conflicting(stay, existing, excludeID); len(ids) > 0 {
		return fmt.Errorf("%w: room %d %s overlaps reservation %d", ErrRoomUnavailable, roomID, stay, ids[0])
	}
	return nil
}

// Create books a room for a client. The room row stays locked from the
// availability scan until the insert commits.
func (s *Service) Create(ctx context.Context, req NewReservation) (Details, error) {
	var out Details
	err := s.store.InTx(ctx, func(tx Tx) error {
		client, err := tx.Client(ctx, req.ClientID)
		if err != nil {
			return internaltypes.Lookup(ErrClientNotFound, req.ClientID, err)
		}
		room, err := tx.Room(ctx, req.RoomID, true)
		if err != nil {
			return internaltypes.Lookup(ErrRoomNotFound, req.RoomID, err)
		}
		stay, err := NewStay(req.CheckIn, req.CheckOut)
		if err != nil {
			return err
		}
		if err := checkAvailable(ctx, tx, room.ID, stay, 0); err != nil {
			return err
		}

		r := Reservation{
			RoomID:   room.ID,
			ClientID: client.ID,
			Status:   StatusPending,
			Notes:    req.Notes,
		}
		r.reprice(stay, room.NightlyRate)
		if err := tx.Insert(ctx, &r); err != nil {
			return err
		}
		out = details(r, room, client)
		return nil
	})
	if err != nil {
		return Details{}, err
	}
	return out, nil
}

// Modify applies changes to an existing reservation. Availability is only
// re-checked when the room or the dates change; price is always recomputed.
func (s *Service) Modify(ctx context.Context, id int64, c Changes) (Details, error) {
	var out Details
	err := s.store.InTx(ctx, func(tx Tx) error {
		cur, err := tx.Reservation(ctx, id)
		if err != nil {
			return internaltypes.Lookup(ErrReservationNotFound, id, err)
		}

		next := cur
		if c.RoomID != 0 {
			next.RoomID = c.RoomID
		}
		if c.ClientID != 0 {
			next.ClientID = c.ClientID
		}
		if c.Notes != nil {
			next.Notes = *c.Notes
		}
		if c.Status != "" {
			if err := checkTransition(cur.Status, c.Status); err != nil {
				return err
			}
			next.Status = c.Status
		}

		checkIn, checkOut := cur.CheckIn, cur.CheckOut
		if !c.CheckIn.IsZero() {
			checkIn = c.CheckIn
		}
		if !c.CheckOut.IsZero() {
			checkOut = c.CheckOut
		}
		stay, err := NewStay(checkIn, checkOut)
		if err != nil {
			return err
		}

		room, err := tx.Room(ctx, next.RoomID, true)
		if err != nil {
			return internaltypes.Lookup(ErrRoomNotFound, next.RoomID, err)
		}
		client, err := tx.Client(ctx, next.ClientID)
		if err != nil {
			return internaltypes.Lookup(ErrClientNotFound, next.ClientID, err)
		}

		if next.RoomID != cur.RoomID || !stay.Equal(cur.Stay()) {
			if err := checkAvailable(ctx, tx, next.RoomID, stay, cur.ID); err != nil {
				return err
			}
		}

		next.reprice(stay, room.NightlyRate)
		if err := tx.Update(ctx, &next); err != nil {
			return err
		}
		out = details(next, room, client)
		return nil
	})
	if err != nil {
		return Details{}, err
	}
	return out, nil
}

// Cancel marks a reservation cancelled. It succeeds whatever the current
// status, including an already cancelled or finalized reservation.
func (s *Service) Cancel(ctx context.Context, id int64) (Details, error) {
	var out Details
	err := s.store.InTx(ctx, func(tx Tx) error {
		r, err := tx.Reservation(ctx, id)
		if err != nil {
			return internaltypes.Lookup(ErrReservationNotFound, id, err)
		}
		r.Status = StatusCancelled
		if err := tx.Update(ctx, &r); err != nil {
			return err
		}
		room, err := tx.Room(ctx, r.RoomID, false)
		if err != nil {
			return internaltypes.Lookup(ErrRoomNotFound, r.RoomID, err)
		}
		client, err := tx.Client(ctx, r.ClientID)
		if err != nil {
			return internaltypes.Lookup(ErrClientNotFound, r.ClientID, err)
		}
		out = details(r, room, client)
		return nil
	})
	if err != nil {
		return Details{}, err
	}
	return out, nil
}

// Delete removes a reservation permanently, whatever its status.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.store.InTx(ctx, func(tx Tx) error {
		if _, err := tx.Reservation(ctx, id); err != nil {
			return internaltypes.Lookup(ErrReservationNotFound, id, err)
		}
		return tx.Delete(ctx, id)
	})
}

func (s *Service) Get(ctx context.Context, id int64) (Details, error) {
	d, err := s.store.Get(ctx, id)
	if err != nil {
		return Details{}, internaltypes.Lookup(ErrReservationNotFound, id, err)
	}
	return d, nil
}

func (s *Service) List(ctx context.Context, f Filter) ([]Details, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, f.Status)
	}
	return s.store.List(ctx, f)
}

func details(r Reservation, room hotel.Room, client hotel.Client) Details {
	return Details{Reservation: r, Room: SummarizeRoom(room), Client: SummarizeClient(client)}
}
