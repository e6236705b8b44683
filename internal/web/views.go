package web

import (
	"time"

	"github.com/example/hotel-booking/internal/booking"
	"github.com/example/hotel-booking/internal/hotel"
	"github.com/example/hotel-booking/internal/money"
)

type reservationView struct {
	ID         int64          `json:"id"`
	RoomID     int64          `json:"roomId"`
	ClientID   int64          `json:"clientId"`
	CheckIn    string         `json:"checkIn"`
	CheckOut   string         `json:"checkOut"`
	Nights     int            `json:"nights"`
	TotalPrice money.Amount   `json:"totalPrice"`
	Status     booking.Status `json:"status"`
	Notes      string         `json:"notes"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`

	Room   roomSummaryView   `json:"room"`
	Client clientSummaryView `json:"client"`
}

type roomSummaryView struct {
	ID          int64          `json:"id"`
	Number      string         `json:"number"`
	Type        hotel.RoomType `json:"type"`
	NightlyRate money.Amount   `json:"nightlyRate"`
}

type clientSummaryView struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Document string `json:"document"`
}

func viewReservation(d booking.Details) reservationView {
	return reservationView{
		ID:         d.ID,
		RoomID:     d.RoomID,
		ClientID:   d.ClientID,
		CheckIn:    booking.FormatDate(d.CheckIn),
		CheckOut:   booking.FormatDate(d.CheckOut),
		Nights:     d.Nights,
		TotalPrice: d.TotalPrice,
		Status:     d.Status,
		Notes:      d.Notes,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
		Room: roomSummaryView{
			ID: d.Room.ID, Number: d.Room.Number, Type: d.Room.Type, NightlyRate: d.Room.NightlyRate,
		},
		Client: clientSummaryView{
			ID: d.Client.ID, Name: d.Client.Name, Email: d.Client.Email, Document: d.Client.Document,
		},
	}
}

func viewReservations(ds []booking.Details) []reservationView {
	out := make([]reservationView, 0, len(ds))
	for _, d := range ds {
		out = append(out, viewReservation(d))
	}
	return out
}

type clientView struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Document  string    `json:"document"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address,omitempty"`
	BirthDate string    `json:"birthDate,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func viewClient(c hotel.Client) clientView {
	v := clientView{
		ID: c.ID, Name: c.Name, Document: c.Document, Email: c.Email, Phone: c.Phone, Address: c.Address,
		CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt,
	}
	if c.BirthDate != nil {
		v.BirthDate = booking.FormatDate(*c.BirthDate)
	}
	return v
}

func viewClients(cs []hotel.Client) []clientView {
	out := make([]clientView, 0, len(cs))
	for _, c := range cs {
		out = append(out, viewClient(c))
	}
	return out
}
