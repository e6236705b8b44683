package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/hotel-booking/internal/auth"
	"github.com/example/hotel-booking/internal/booking"
	"github.com/example/hotel-booking/internal/hotel"
	"github.com/example/hotel-booking/internal/internaltypes"
	"github.com/example/hotel-booking/internal/validate"
)

type envelope struct {
	Success bool                       `json:"success"`
	Message string                     `json:"message,omitempty"`
	Data    any                        `json:"data,omitempty"`
	Total   *int                       `json:"total,omitempty"`
	Errors  []internaltypes.FieldError `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func ok(w http.ResponseWriter, code int, msg string, data any) {
	writeJSON(w, code, envelope{Success: true, Message: msg, Data: data})
}

func okList(w http.ResponseWriter, data any, n int) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data, Total: &n})
}

// apiError maps engine and store errors to a status code and message.
func (s *Server) apiError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *internaltypes.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, envelope{Message: "Validation failed", Errors: verr.Fields})
		return
	case errors.Is(err, internaltypes.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, envelope{Message: "Authentication required"})
		return
	case errors.Is(err, internaltypes.ErrConflict):
		writeJSON(w, http.StatusConflict, envelope{Message: err.Error()})
		return
	}

	switch booking.KindOf(err) {
	case booking.KindNotFound:
		writeJSON(w, http.StatusNotFound, envelope{Message: notFoundMessage(err)})
	case booking.KindInvalidRange:
		writeJSON(w, http.StatusBadRequest, envelope{Message: err.Error()})
	case booking.KindRoomUnavailable:
		writeJSON(w, http.StatusConflict, envelope{Message: "Room not available for the selected period"})
	case booking.KindInvalidTransition:
		writeJSON(w, http.StatusBadRequest, envelope{Message: err.Error()})
	case booking.KindValidationFailed:
		writeJSON(w, http.StatusUnprocessableEntity, envelope{Message: err.Error()})
	default:
		s.Log.Error("request failed", "request_id", requestIDFrom(r.Context()), "path", r.URL.Path, "err", err)
		writeJSON(w, http.StatusInternalServerError, envelope{Message: "Internal error"})
	}
}

func notFoundMessage(err error) string {
	var nf *internaltypes.NotFoundError
	if errors.As(err, &nf) {
		return strings.ToUpper(nf.Entity[:1]) + nf.Entity[1:] + " not found"
	}
	return "Not found"
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return internaltypes.Invalid("body", "malformed JSON: "+err.Error())
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, internaltypes.Invalid("id", "must be a positive integer")
	}
	return id, nil
}

// queryID parses an optional id filter; empty means no filter.
func queryID(v, field string) (int64, error) {
	if v == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, internaltypes.Invalid(field, "must be a positive integer")
	}
	return id, nil
}

func optionalDate(field, s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, nil
	}
	d, err := booking.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", field, err)
	}
	return d, nil
}

type loginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (s *Server) apiLogin(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if err := decode(w, r, &in); err != nil {
		s.apiError(w, r, err)
		return
	}
	if err := validate.Struct(in); err != nil {
		s.apiError(w, r, err)
		return
	}
	uid, err := s.Users.Authenticate(r.Context(), strings.TrimSpace(in.Username), in.Password)
	if err != nil {
		if auth.IsInvalidCredentials(err) {
			writeJSON(w, http.StatusUnauthorized, envelope{Message: "Invalid username or password"})
			return
		}
		s.apiError(w, r, err)
		return
	}
	tok, exp, err := s.Tokens.Issue(uid, in.Username)
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	ok(w, http.StatusOK, "Login successful", map[string]any{"token": tok, "expiresAt": exp})
}

// reservations

type reservationInput struct {
	RoomID   int64  `json:"roomId" validate:"required,gt=0"`
	ClientID int64  `json:"clientId" validate:"required,gt=0"`
	CheckIn  string `json:"checkIn" validate:"required"`
	CheckOut string `json:"checkOut" validate:"required"`
	Notes    string `json:"notes" validate:"max=2000"`
}

type reservationUpdate struct {
	RoomID   int64   `json:"roomId" validate:"omitempty,gt=0"`
	ClientID int64   `json:"clientId" validate:"omitempty,gt=0"`
	CheckIn  string  `json:"checkIn"`
	CheckOut string  `json:"checkOut"`
	Status   string  `json:"status" validate:"omitempty,oneof=pending confirmed cancelled finalized"`
	Notes    *string `json:"notes" validate:"omitempty,max=2000"`
}

func (s *Server) apiListReservations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := booking.Filter{Status: booking.Status(q.Get("status"))}
	var err error
	if f.RoomID, err = queryID(q.Get("roomId"), "roomId"); err != nil {
		s.apiError(w, r, err)
		return
	}
	if f.ClientID, err = queryID(q.Get("clientId"), "clientId"); err != nil {
		s.apiError(w, r, err)
		return
	}
	ds, err := s.Bookings.List(r.Context(), f)
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	okList(w, viewReservations(ds), len(ds))
}

func (s *Server) apiGetReservation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	d, err := s.Bookings.Get(r.Context(), id)
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	ok(w, http.StatusOK, "", viewReservation(d))
}

func (s *Server) apiCreateReservation(w http.ResponseWriter, r *http.Request) {
	var in reservationInput
	if err := decode(w, r, &in); err != nil {
		s.apiError(w, r, err)
		return
	}
	if err := validate.Struct(in); err != nil {
		s.apiError(w, r, err)
		return
	}
	checkIn, err := optionalDate("checkIn", in.CheckIn)
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	checkOut, err := optionalDate("checkOut", in.CheckOut)
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	d, err := s.Bookings.Create(r.Context(), booking.NewReservation{
		RoomID:   in.RoomID,
		ClientID: in.ClientID,
		CheckIn:  checkIn,
		CheckOut: checkOut,
		Notes:    strings.TrimSpace(in.Notes),
	})
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	ok(w, http.StatusCreated, "Reservation created", viewReservation(d))
}

func (s *Server) apiUpdateReservation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	var in reservationUpdate
	if err := decode(w, r, &in); err != nil {
		s.apiError(w, r, err)
		return
	}
	if err := validate.Struct(in); err != nil {
		s.apiError(w, r, err)
		return
	}
	c := booking.Changes{
		RoomID:   in.RoomID,
		ClientID: in.ClientID,
		Status:   booking.Status(in.Status),
		Notes:    in.Notes,
	}
	if c.CheckIn, err = optionalDate("checkIn", in.CheckIn); err != nil {
		s.apiError(w, r, err)
		return
	}
	if c.CheckOut, err = optionalDate("checkOut", in.CheckOut); err != nil {
		s.apiError(w, r, err)
		return
	}
	d, err := s.Bookings.Modify(r.Context(), id, c)
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	ok(w, http.StatusOK, "Reservation updated", viewReservation(d))
}

func (s *Server) apiCancelReservation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	d, err := s.Bookings.Cancel(r.Context(), id)
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	ok(w, http.StatusOK, "Reservation cancelled", viewReservation(d))
}

func (s *Server) apiDeleteReservation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	if err := s.Bookings.Delete(r.Context(), id); err != nil {
		s.apiError(w, r, err)
		return
	}
	ok(w, http.StatusOK, "Reservation deleted", nil)
}

// rooms

func (s *Server) apiListRooms(w http.ResponseWriter, r *http.Request) {
	f := hotel.RoomFilter{
		Status: hotel.RoomStatus(r.URL.Query().Get("status")),
		Type:   hotel.RoomType(r.URL.Query().Get("type")),
	}
	rooms, err := s.Hotel.ListRooms(r.Context(), f)
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	if rooms == nil {
		rooms = []hotel.Room{}
	}
	okList(w, rooms, len(rooms))
}

func (s *Server) apiGetRoom(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	room, err := s.Hotel.GetRoom(r.Context(), id)
	if err != nil {
		s.apiError(w, r, internaltypes.Lookup(internaltypes.ErrRoomNotFound, id, err))
		return
	}
	ok(w, http.StatusOK, "", room)
}

func (s *Server) apiSaveRoom(w http.ResponseWriter, r *http.Request) {
	var room hotel.Room
	if err := decode(w, r, &room); err != nil {
		s.apiError(w, r, err)
		return
	}
	if r.Method == http.MethodPost {
		room.ID = 0
		out, err := s.Hotel.CreateRoom(r.Context(), room)
		if err != nil {
			s.apiError(w, r, err)
			return
		}
		ok(w, http.StatusCreated, "Room created", out)
		return
	}
	id, err := pathID(r)
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	room.ID = id
	out, err := s.Hotel.UpdateRoom(r.Context(), room)
	if err != nil {
		s.apiError(w, r, internaltypes.Lookup(internaltypes.ErrRoomNotFound, id, err))
		return
	}
	ok(w, http.StatusOK, "Room updated", out)
}

func (s *Server) apiDeleteRoom(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	if err := s.Hotel.DeleteRoom(r.Context(), id); err != nil {
		s.apiError(w, r, internaltypes.Lookup(internaltypes.ErrRoomNotFound, id, err))
		return
	}
	ok(w, http.StatusOK, "Room deleted", nil)
}

// clients

type clientInput struct {
	Name      string `json:"name"`
	Document  string `json:"document"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	BirthDate string `json:"birthDate"`
}

func (in clientInput) client() (hotel.Client, error) {
	c := hotel.Client{
		Name:     strings.TrimSpace(in.Name),
		Document: strings.TrimSpace(in.Document),
		Email:    strings.TrimSpace(in.Email),
		Phone:    strings.TrimSpace(in.Phone),
		Address:  strings.TrimSpace(in.Address),
	}
	if in.BirthDate != "" {
		d, err := booking.ParseDate(in.BirthDate)
		if err != nil {
			return hotel.Client{}, internaltypes.Invalid("birthDate", "must be a YYYY-MM-DD date")
		}
		c.BirthDate = &d
	}
	return c, nil
}

func (s *Server) apiListClients(w http.ResponseWriter, r *http.Request) {
	cs, err := s.Hotel.ListClients(r.Context())
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	okList(w, viewClients(cs), len(cs))
}

func (s *Server) apiGetClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	c, err := s.Hotel.GetClient(r.Context(), id)
	if err != nil {
		s.apiError(w, r, internaltypes.Lookup(internaltypes.ErrClientNotFound, id, err))
		return
	}
	ok(w, http.StatusOK, "", viewClient(c))
}

func (s *Server) apiSaveClient(w http.ResponseWriter, r *http.Request) {
	var in clientInput
	if err := decode(w, r, &in); err != nil {
		s.apiError(w, r, err)
		return
	}
	c, err := in.client()
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	if r.Method == http.MethodPost {
		out, err := s.Hotel.CreateClient(r.Context(), c)
		if err != nil {
			s.apiError(w, r, err)
			return
		}
		ok(w, http.StatusCreated, "Client created", viewClient(out))
		return
	}
	id, err := pathID(r)
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	c.ID = id
	out, err := s.Hotel.UpdateClient(r.Context(), c)
	if err != nil {
		s.apiError(w, r, internaltypes.Lookup(internaltypes.ErrClientNotFound, id, err))
		return
	}
	ok(w, http.StatusOK, "Client updated", viewClient(out))
}

func (s *Server) apiDeleteClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	if err := s.Hotel.DeleteClient(r.Context(), id); err != nil {
		s.apiError(w, r, internaltypes.Lookup(internaltypes.ErrClientNotFound, id, err))
		return
	}
	ok(w, http.StatusOK, "Client deleted", nil)
}

// stats

type stats struct {
	Rooms        map[string]int `json:"rooms"`
	Reservations map[string]int `json:"reservations"`
	Clients      int            `json:"clients"`
}

func (s *Server) collectStats(r *http.Request) (stats, error) {
	st := stats{
		Rooms:        map[string]int{"total": 0},
		Reservations: map[string]int{"total": 0},
	}
	rooms, err := s.Hotel.ListRooms(r.Context(), hotel.RoomFilter{})
	if err != nil {
		return stats{}, err
	}
	for _, room := range rooms {
		st.Rooms["total"]++
		st.Rooms[string(room.Status)]++
	}
	rs, err := s.Bookings.List(r.Context(), booking.Filter{})
	if err != nil {
		return stats{}, err
	}
	for _, d := range rs {
		st.Reservations["total"]++
		st.Reservations[string(d.Status)]++
	}
	cs, err := s.Hotel.ListClients(r.Context())
	if err != nil {
		return stats{}, err
	}
	st.Clients = len(cs)
	return st, nil
}

func (s *Server) apiStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.collectStats(r)
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	ok(w, http.StatusOK, "", st)
}
