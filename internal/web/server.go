package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/hotel-booking/internal/auth"
	"github.com/example/hotel-booking/internal/booking"
	"github.com/example/hotel-booking/internal/hotel"
	"github.com/example/hotel-booking/internal/internaltypes"
)

//go:embed templates/*.html static/*
var fs embed.FS

type Server struct {
	Bookings *booking.Service
	Hotel    hotel.Directory
	Users    auth.Users
	Sessions *auth.Sessions
	Tokens   *auth.Tokens
	Log      *slog.Logger

	BaseURL string
}

type tmplData struct {
	Title string
	User  int64

	Flash        string
	Status       string
	Statuses     []booking.Status
	Reservations []reservationView
	Rooms        []hotel.Room
	Clients      []hotel.Client
	Form         reservationForm
}

type reservationForm struct {
	RoomID   int64
	ClientID int64
	CheckIn  string
	CheckOut string
	Notes    string
}

func (s *Server) Routes() http.Handler {
	if s.Log == nil {
		s.Log = slog.Default()
	}
	mux := http.NewServeMux()

	mux.Handle("GET /static/", http.FileServer(http.FS(fs)))

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	mux.HandleFunc("/login", s.handleLogin)
	mux.HandleFunc("/logout", s.handleLogout)

	ui := s.Sessions.RequireAuth
	mux.Handle("GET /{$}", ui(http.HandlerFunc(s.handleHome)))
	mux.Handle("GET /reservations/new", ui(http.HandlerFunc(s.handleReservationNew)))
	mux.Handle("POST /reservations/create", ui(http.HandlerFunc(s.handleReservationCreate)))
	mux.Handle("POST /reservations/{id}/cancel", ui(http.HandlerFunc(s.handleReservationCancel)))

	mux.HandleFunc("POST /api/auth/login", s.apiLogin)

	api := func(h http.HandlerFunc) http.Handler {
		return s.Tokens.RequireBearer(h, func(w http.ResponseWriter, err error) {
			writeJSON(w, http.StatusUnauthorized, envelope{Message: "Authentication required"})
		})
	}
	mux.Handle("GET /api/reservations", api(s.apiListReservations))
	mux.Handle("POST /api/reservations", api(s.apiCreateReservation))
	mux.Handle("GET /api/reservations/{id}", api(s.apiGetReservation))
	mux.Handle("PUT /api/reservations/{id}", api(s.apiUpdateReservation))
	mux.Handle("PATCH /api/reservations/{id}/cancel", api(s.apiCancelReservation))
	mux.Handle("DELETE /api/reservations/{id}", api(s.apiDeleteReservation))

	mux.Handle("GET /api/rooms", api(s.apiListRooms))
	mux.Handle("POST /api/rooms", api(s.apiSaveRoom))
	mux.Handle("GET /api/rooms/{id}", api(s.apiGetRoom))
	mux.Handle("PUT /api/rooms/{id}", api(s.apiSaveRoom))
	mux.Handle("DELETE /api/rooms/{id}", api(s.apiDeleteRoom))

	mux.Handle("GET /api/clients", api(s.apiListClients))
	mux.Handle("POST /api/clients", api(s.apiSaveClient))
	mux.Handle("GET /api/clients/{id}", api(s.apiGetClient))
	mux.Handle("PUT /api/clients/{id}", api(s.apiSaveClient))
	mux.Handle("DELETE /api/clients/{id}", api(s.apiDeleteClient))

	mux.Handle("GET /api/stats", api(s.apiStats))

	return withRequestLog(s.Log, mux)
}

var allStatuses = []booking.Status{booking.StatusPending, booking.StatusConfirmed, booking.StatusFinalized, booking.StatusCancelled}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	status := r.URL.Query().Get("status")
	data := tmplData{Title: "Reservations", User: uid, Status: status, Statuses: allStatuses}

	ds, err := s.Bookings.List(r.Context(), booking.Filter{Status: booking.Status(status)})
	if errors.Is(err, booking.ErrValidation) {
		data.Flash = "Unknown status " + strconv.Quote(status)
		data.Status = ""
		ds, err = s.Bookings.List(r.Context(), booking.Filter{})
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	data.Reservations = viewReservations(ds)
	s.render(w, "templates/reservations.html", data)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.render(w, "templates/login.html", tmplData{Title: "Login"})
		return
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		username := strings.TrimSpace(r.FormValue("username"))
		password := r.FormValue("password")
		id, err := s.Users.Authenticate(r.Context(), username, password)
		if err != nil {
			if !auth.IsInvalidCredentials(err) {
				s.Log.Error("login failed", "request_id", requestIDFrom(r.Context()), "err", err)
			}
			s.render(w, "templates/login.html", tmplData{Title: "Login", Flash: "Invalid username/password"})
			return
		}
		if err := s.Sessions.SetSession(w, r, id); err != nil {
			s.serverError(w, r, err)
			return
		}
		http.Redirect(w, r, "/", http.StatusFound)
		return
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.Sessions.ClearSession(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (s *Server) formData(r *http.Request, form reservationForm, flash string) (tmplData, error) {
	uid, _ := auth.UserIDFromContext(r.Context())
	rooms, err := s.Hotel.ListRooms(r.Context(), hotel.RoomFilter{})
	if err != nil {
		return tmplData{}, err
	}
	clients, err := s.Hotel.ListClients(r.Context())
	if err != nil {
		return tmplData{}, err
	}
	return tmplData{
		Title:   "New Reservation",
		User:    uid,
		Flash:   flash,
		Rooms:   rooms,
		Clients: clients,
		Form:    form,
	}, nil
}

func (s *Server) handleReservationNew(w http.ResponseWriter, r *http.Request) {
	today := booking.DateOf(time.Now())
	data, err := s.formData(r, reservationForm{
		CheckIn:  booking.FormatDate(today.AddDate(0, 0, 1)),
		CheckOut: booking.FormatDate(today.AddDate(0, 0, 2)),
	}, "")
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.render(w, "templates/reservation_form.html", data)
}

func (s *Server) handleReservationCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	roomID, _ := strconv.ParseInt(r.FormValue("room_id"), 10, 64)
	clientID, _ := strconv.ParseInt(r.FormValue("client_id"), 10, 64)
	form := reservationForm{
		RoomID:   roomID,
		ClientID: clientID,
		CheckIn:  strings.TrimSpace(r.FormValue("check_in")),
		CheckOut: strings.TrimSpace(r.FormValue("check_out")),
		Notes:    strings.TrimSpace(r.FormValue("notes")),
	}

	fail := func(msg string) {
		data, err := s.formData(r, form, msg)
		if err != nil {
			s.serverError(w, r, err)
			return
		}
		s.render(w, "templates/reservation_form.html", data)
	}

	stay, err := booking.ParseStay(form.CheckIn, form.CheckOut)
	if err != nil {
		fail(err.Error())
		return
	}
	_, err = s.Bookings.Create(r.Context(), booking.NewReservation{
		RoomID:   form.RoomID,
		ClientID: form.ClientID,
		CheckIn:  stay.CheckIn,
		CheckOut: stay.CheckOut,
		Notes:    form.Notes,
	})
	if err != nil {
		switch booking.KindOf(err) {
		case booking.KindRoomUnavailable:
			fail("Room not available for the selected period")
		case booking.KindNotFound:
			fail("Pick a room and a client")
		case booking.KindInvalidRange, booking.KindValidationFailed:
			fail(err.Error())
		default:
			s.Log.Error("create reservation", "request_id", requestIDFrom(r.Context()), "err", err)
			fail("Failed to create reservation")
		}
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleReservationCancel(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if _, err := s.Bookings.Cancel(r.Context(), id); err != nil {
		if errors.Is(err, internaltypes.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		s.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.Log.Error("request failed", "request_id", requestIDFrom(r.Context()), "path", r.URL.Path, "err", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

var funcs = template.FuncMap{
	"title": func(s booking.Status) string {
		if s == "" {
			return ""
		}
		return strings.ToUpper(string(s[:1])) + string(s[1:])
	},
}

func (s *Server) render(w http.ResponseWriter, name string, data tmplData) {
	t, err := template.New("").Funcs(funcs).ParseFS(fs,
		"templates/base.html",
		name,
	)
	if err != nil {
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.ExecuteTemplate(w, "base", data); err != nil {
		http.Error(w, "render error: "+err.Error(), http.StatusInternalServerError)
	}
}

func Start(ctx context.Context, log *slog.Logger, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	log.Info("listening", "addr", addr)
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
