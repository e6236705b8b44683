package hotel

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/hotel-booking/internal/db"
	"github.com/example/hotel-booking/internal/internaltypes"
	"github.com/example/hotel-booking/internal/money"
)

// Repo is the Postgres-backed Directory.
type Repo struct{ db *db.DB }

func NewRepo(d *db.DB) *Repo { return &Repo{db: d} }

const roomColumns = `id,number,type,capacity,nightly_rate_cents,status,description,created_at,updated_at`

func scanRoom(row db.Row) (Room, error) {
	var r Room
	var rate int64
	err := row.Scan(&r.ID, &r.Number, &r.Type, &r.Capacity, &rate, &r.Status, &r.Description, &r.CreatedAt, &r.UpdatedAt)
	r.NightlyRate = money.FromCents(rate)
	return r, err
}

func (r *Repo) CreateRoom(ctx context.Context, room Room) (Room, error) {
	room = room.WithDefaults()
	if err := room.Validate(); err != nil {
		return Room{}, err
	}
	out, err := scanRoom(r.db.QueryRow(ctx, `
INSERT INTO rooms(number,type,capacity,nightly_rate_cents,status,description)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING `+roomColumns,
		room.Number, room.Type, room.Capacity, room.NightlyRate.Cents(), room.Status, room.Description))
	if err != nil {
		return Room{}, mapWriteErr(err, "room number", room.Number)
	}
	return out, nil
}

func (r *Repo) UpdateRoom(ctx context.Context, room Room) (Room, error) {
	room = room.WithDefaults()
	if err := room.Validate(); err != nil {
		return Room{}, err
	}
	out, err := scanRoom(r.db.QueryRow(ctx, `
UPDATE rooms SET number=$2, type=$3, capacity=$4, nightly_rate_cents=$5, status=$6, description=$7, updated_at=now()
WHERE id=$1
RETURNING `+roomColumns,
		room.ID, room.Number, room.Type, room.Capacity, room.NightlyRate.Cents(), room.Status, room.Description))
	if err != nil {
		return Room{}, mapWriteErr(err, "room number", room.Number)
	}
	return out, nil
}

func (r *Repo) GetRoom(ctx context.Context, id int64) (Room, error) {
	room, err := scanRoom(r.db.QueryRow(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id=$1`, id))
	if err != nil {
		return Room{}, db.WrapNotFound(err)
	}
	return room, nil
}

func (r *Repo) ListRooms(ctx context.Context, f RoomFilter) ([]Room, error) {
	var (
		where []string
		args  []any
	)
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("status=$%d", len(args)))
	}
	if f.Type != "" {
		args = append(args, f.Type)
		where = append(where, fmt.Sprintf("type=$%d", len(args)))
	}
	q := `SELECT ` + roomColumns + ` FROM rooms`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY number ASC`

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, room)
	}
	return out, rows.Err()
}

func (r *Repo) DeleteRoom(ctx context.Context, id int64) error {
	n, err := r.db.ExecRows(ctx, `DELETE FROM rooms WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return db.ErrNotFound
	}
	return nil
}

const clientColumns = `id,name,document,email,phone,address,birth_date,created_at,updated_at`

func scanClient(row db.Row) (Client, error) {
	var c Client
	err := row.Scan(&c.ID, &c.Name, &c.Document, &c.Email, &c.Phone, &c.Address, &c.BirthDate, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *Repo) CreateClient(ctx context.Context, c Client) (Client, error) {
	if err := c.Validate(); err != nil {
		return Client{}, err
	}
	out, err := scanClient(r.db.QueryRow(ctx, `
INSERT INTO clients(name,document,email,phone,address,birth_date)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING `+clientColumns,
		c.Name, c.Document, c.Email, c.Phone, c.Address, c.BirthDate))
	if err != nil {
		return Client{}, mapWriteErr(err, "document", c.Document)
	}
	return out, nil
}

func (r *Repo) UpdateClient(ctx context.Context, c Client) (Client, error) {
	if err := c.Validate(); err != nil {
		return Client{}, err
	}
	out, err := scanClient(r.db.QueryRow(ctx, `
UPDATE clients SET name=$2, document=$3, email=$4, phone=$5, address=$6, birth_date=$7, updated_at=now()
WHERE id=$1
RETURNING `+clientColumns,
		c.ID, c.Name, c.Document, c.Email, c.Phone, c.Address, c.BirthDate))
	if err != nil {
		return Client{}, mapWriteErr(err, "document", c.Document)
	}
	return out, nil
}

func (r *Repo) GetClient(ctx context.Context, id int64) (Client, error) {
	c, err := scanClient(r.db.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id=$1`, id))
	if err != nil {
		return Client{}, db.WrapNotFound(err)
	}
	return c, nil
}

func (r *Repo) ListClients(ctx context.Context) ([]Client, error) {
	rows, err := r.db.Query(ctx, `SELECT `+clientColumns+` FROM clients ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) DeleteClient(ctx context.Context, id int64) error {
	n, err := r.db.ExecRows(ctx, `DELETE FROM clients WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return db.ErrNotFound
	}
	return nil
}

func mapWriteErr(err error, field, value string) error {
	if db.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %s %q", internaltypes.ErrConflict, field, value)
	}
	return db.WrapNotFound(err)
}
