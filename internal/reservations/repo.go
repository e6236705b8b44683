// Package reservations is the Postgres-backed booking.Store.
package reservations

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/hotel-booking/internal/booking"
	"github.com/example/hotel-booking/internal/db"
	"github.com/example/hotel-booking/internal/hotel"
	"github.com/example/hotel-booking/internal/money"
)

var _ booking.Store = (*Repo)(nil)

type Repo struct{ db *db.DB }

func NewRepo(d *db.DB) *Repo { return &Repo{db: d} }

func (r *Repo) InTx(ctx context.Context, fn func(tx booking.Tx) error) error {
	return r.db.InTx(ctx, func(t *db.Tx) error {
		return fn(&tx{q: t})
	})
}

const reservationColumns = `r.id,r.room_id,r.client_id,r.check_in,r.check_out,r.nights,r.total_price_cents,r.status,r.notes,r.created_at,r.updated_at`

const detailsQuery = `
SELECT ` + reservationColumns + `,
       q.number, q.type, q.nightly_rate_cents,
       c.name, c.email, c.document
FROM reservations r
JOIN rooms q ON q.id = r.room_id
JOIN clients c ON c.id = r.client_id`

func scanReservation(row db.Row, extra ...any) (booking.Reservation, error) {
	var res booking.Reservation
	var total int64
	dest := append([]any{
		&res.ID, &res.RoomID, &res.ClientID, &res.CheckIn, &res.CheckOut, &res.Nights, &total,
		&res.Status, &res.Notes, &res.CreatedAt, &res.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return booking.Reservation{}, err
	}
	res.TotalPrice = money.FromCents(total)
	return res, nil
}

func scanDetails(row db.Row) (booking.Details, error) {
	var d booking.Details
	var rate int64
	res, err := scanReservation(row,
		&d.Room.Number, &d.Room.Type, &rate,
		&d.Client.Name, &d.Client.Email, &d.Client.Document)
	if err != nil {
		return booking.Details{}, err
	}
	d.Reservation = res
	d.Room.ID = res.RoomID
	d.Room.NightlyRate = money.FromCents(rate)
	d.Client.ID = res.ClientID
	return d, nil
}

func (r *Repo) Get(ctx context.Context, id int64) (booking.Details, error) {
	d, err := scanDetails(r.db.QueryRow(ctx, detailsQuery+` WHERE r.id=$1`, id))
	if err != nil {
		return booking.Details{}, db.WrapNotFound(err)
	}
	return d, nil
}

func (r *Repo) List(ctx context.Context, f booking.Filter) ([]booking.Details, error) {
	var (
		where []string
		args  []any
	)
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("r.status=$%d", len(args)))
	}
	if f.RoomID != 0 {
		args = append(args, f.RoomID)
		where = append(where, fmt.Sprintf("r.room_id=$%d", len(args)))
	}
	if f.ClientID != 0 {
		args = append(args, f.ClientID)
		where = append(where, fmt.Sprintf("r.client_id=$%d", len(args)))
	}
	q := detailsQuery
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY r.check_in DESC, r.id DESC`

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []booking.Details
	for rows.Next() {
		d, err := scanDetails(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

type tx struct{ q db.Querier }

const roomColumns = `id,number,type,capacity,nightly_rate_cents,status,description,created_at,updated_at`

func (t *tx) Room(ctx context.Context, id int64, forUpdate bool) (hotel.Room, error) {
	q := `SELECT ` + roomColumns + ` FROM rooms WHERE id=$1`
	if forUpdate {
		q += ` FOR UPDATE`
	}
	var room hotel.Room
	var rate int64
	err := t.q.QueryRow(ctx, q, id).Scan(&room.ID, &room.Number, &room.Type, &room.Capacity, &rate,
		&room.Status, &room.Description, &room.CreatedAt, &room.UpdatedAt)
	if err != nil {
		return hotel.Room{}, db.WrapNotFound(err)
	}
	room.NightlyRate = money.FromCents(rate)
	return room, nil
}

func (t *tx) Client(ctx context.Context, id int64) (hotel.Client, error) {
	var c hotel.Client
	err := t.q.QueryRow(ctx, `
SELECT id,name,document,email,phone,address,birth_date,created_at,updated_at
FROM clients WHERE id=$1`, id).
		Scan(&c.ID, &c.Name, &c.Document, &c.Email, &c.Phone, &c.Address, &c.BirthDate, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return hotel.Client{}, db.WrapNotFound(err)
	}
	return c, nil
}

func (t *tx) Reservation(ctx context.Context, id int64) (booking.Reservation, error) {
	res, err := scanReservation(t.q.QueryRow(ctx, `SELECT `+reservationColumns+` FROM reservations r WHERE r.id=$1 FOR UPDATE`, id))
	if err != nil {
		return booking.Reservation{}, db.WrapNotFound(err)
	}
	return res, nil
}

// ReservationsForRoom pre-filters with the inclusive overlap predicate; the
// engine re-applies the exact rule.
func (t *tx) ReservationsForRoom(ctx context.Context, roomID int64, window booking.Stay) ([]booking.Reservation, error) {
	rows, err := t.q.Query(ctx, `
SELECT `+reservationColumns+`
FROM reservations r
WHERE r.room_id=$1
  AND r.status <> 'cancelled'
  AND r.check_in <= $3
  AND r.check_out >= $2`, roomID, window.CheckIn, window.CheckOut)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []booking.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func (t *tx) Insert(ctx context.Context, res *booking.Reservation) error {
	err := t.q.QueryRow(ctx, `
INSERT INTO reservations(room_id,client_id,check_in,check_out,nights,total_price_cents,status,notes)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
RETURNING id, created_at, updated_at`,
		res.RoomID, res.ClientID, res.CheckIn, res.CheckOut, res.Nights, res.TotalPrice.Cents(), res.Status, res.Notes,
	).Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt)
	return mapWriteErr(err)
}

func (t *tx) Update(ctx context.Context, res *booking.Reservation) error {
	err := t.q.QueryRow(ctx, `
UPDATE reservations
SET room_id=$2, client_id=$3, check_in=$4, check_out=$5, nights=$6, total_price_cents=$7, status=$8, notes=$9, updated_at=now()
WHERE id=$1
RETURNING updated_at`,
		res.ID, res.RoomID, res.ClientID, res.CheckIn, res.CheckOut, res.Nights, res.TotalPrice.Cents(), res.Status, res.Notes,
	).Scan(&res.UpdatedAt)
	return mapWriteErr(err)
}

func (t *tx) Delete(ctx context.Context, id int64) error {
	n, err := t.q.ExecRows(ctx, `DELETE FROM reservations WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return db.ErrNotFound
	}
	return nil
}

func mapWriteErr(err error) error {
	switch {
	case err == nil:
		return nil
	case db.IsExclusionViolation(err):
		return fmt.Errorf("%w: %v", booking.ErrRoomUnavailable, err)
	case db.IsForeignKeyViolation(err):
		return fmt.Errorf("%w: %v", booking.ErrNotFound, err)
	}
	return db.WrapNotFound(err)
}
