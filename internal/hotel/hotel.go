// Package hotel holds the rooms and clients that reservations refer to.
package hotel

import (
	"context"
	"time"

	"github.com/example/hotel-booking/internal/internaltypes"
	"github.com/example/hotel-booking/internal/money"
	"github.com/example/hotel-booking/internal/validate"
)

type RoomType string

const (
	RoomSingle RoomType = "single"
	RoomDouble RoomType = "double"
	RoomDeluxe RoomType = "deluxe"
	RoomSuite  RoomType = "suite"
)

// RoomStatus is the operational state of a room. It is independent of any
// reservation status.
type RoomStatus string

const (
	RoomAvailable   RoomStatus = "available"
	RoomOccupied    RoomStatus = "occupied"
	RoomMaintenance RoomStatus = "maintenance"
)

type Room struct {
	ID          int64        `json:"id"`
	Number      string       `json:"number" validate:"required,max=10"`
	Type        RoomType     `json:"type" validate:"required,oneof=single double deluxe suite"`
	Capacity    int          `json:"capacity" validate:"min=1,max=10"`
	NightlyRate money.Amount `json:"nightlyRate" validate:"gt=0"`
	Status      RoomStatus   `json:"status" validate:"required,oneof=available occupied maintenance"`
	Description string       `json:"description,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (r Room) Validate() error {
	return validate.Struct(r)
}

// WithDefaults fills the fields a new room may omit.
func (r Room) WithDefaults() Room {
	if r.Type == "" {
		r.Type = RoomSingle
	}
	if r.Status == "" {
		r.Status = RoomAvailable
	}
	return r
}

type Client struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name" validate:"required,min=3,max=100"`
	Document  string     `json:"document" validate:"required,max=20"`
	Email     string     `json:"email" validate:"required,email,max=100"`
	Phone     string     `json:"phone" validate:"required,max=20"`
	Address   string     `json:"address,omitempty" validate:"max=200"`
	BirthDate *time.Time `json:"birthDate,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c Client) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.BirthDate != nil && c.BirthDate.After(time.Now()) {
		return internaltypes.Invalid("birthDate", "cannot be in the future")
	}
	return nil
}

type RoomFilter struct {
	Status RoomStatus
	Type   RoomType
}

func (f RoomFilter) Match(r Room) bool {
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.Type != "" && r.Type != f.Type {
		return false
	}
	return true
}

// Directory is the room and client store.
type Directory interface {
	CreateRoom(ctx context.Context, r Room) (Room, error)
	UpdateRoom(ctx context.Context, r Room) (Room, error)
	GetRoom(ctx context.Context, id int64) (Room, error)
	ListRooms(ctx context.Context, f RoomFilter) ([]Room, error)
	DeleteRoom(ctx context.Context, id int64) error

	CreateClient(ctx context.Context, c Client) (Client, error)
	UpdateClient(ctx context.Context, c Client) (Client, error)
	GetClient(ctx context.Context, id int64) (Client, error)
	ListClients(ctx context.Context) ([]Client, error)
	DeleteClient(ctx context.Context, id int64) error
}
