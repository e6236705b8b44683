package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/hotel-booking/internal/auth"
	"github.com/example/hotel-booking/internal/booking"
	"github.com/example/hotel-booking/internal/booking/memstore"
	"github.com/example/hotel-booking/internal/config"
	"github.com/example/hotel-booking/internal/db"
	"github.com/example/hotel-booking/internal/hotel"
	"github.com/example/hotel-booking/internal/migrate"
	"github.com/example/hotel-booking/internal/reservations"
	"github.com/example/hotel-booking/internal/web"
	"github.com/spf13/cobra"
)

func newServerCmd() *cobra.Command {
	var (
		migrateUp     bool
		storeKind     string
		adminUser     string
		adminPassword string
	)

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Run the JSON API and the admin UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			log := cfg.NewLogger()
			slog.SetDefault(log)

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			ws := &web.Server{
				Sessions: auth.NewSessions(cfg.CookieHashKey, cfg.CookieBlockKey),
				Tokens:   auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL),
				Log:      log,
				BaseURL:  cfg.BaseURL,
			}

			switch storeKind {
			case "memory":
				st := memstore.New()
				users := auth.NewMemUsers()
				if adminPassword != "" {
					if _, err := users.CreateUser(ctx, adminUser, adminPassword); err != nil {
						return err
					}
				} else {
					log.Warn("memory store has no users; pass --admin-password to sign in")
				}
				ws.Bookings, ws.Hotel, ws.Users = booking.NewService(st), st, users

			case "postgres":
				d, err := db.Open(ctx, cfg.DatabaseURL)
				if err != nil {
					return err
				}
				defer d.Close()

				if err := d.Ping(ctx); err != nil {
					return fmt.Errorf("db ping: %w", err)
				}

				if migrateUp {
					if err := migrate.Up(ctx, d); err != nil {
						return err
					}
				} else if pending, err := migrate.Pending(ctx, d); err == nil && len(pending) > 0 {
					log.Warn("database has pending migrations", "files", pending)
				}

				ws.Bookings = booking.NewService(reservations.NewRepo(d))
				ws.Hotel = hotel.NewRepo(d)
				ws.Users = auth.NewUserStore(d)

			default:
				return fmt.Errorf("invalid --store %q (want postgres or memory)", storeKind)
			}

			log.Info("starting hoteld", "version", Version, "store", storeKind)
			return web.Start(ctx, log, cfg.ListenAddr, ws.Routes())
		},
	}

	cmd.Flags().BoolVar(&migrateUp, "migrate", true, "run database migrations on startup")
	cmd.Flags().StringVar(&storeKind, "store", "postgres", "storage backend: postgres or memory")
	cmd.Flags().StringVar(&adminUser, "admin-username", "admin", "user created at startup with --store=memory")
	cmd.Flags().StringVar(&adminPassword, "admin-password", "", "password for --admin-username with --store=memory")

	cmd.Flags().Lookup("migrate").NoOptDefVal = "true"
	return cmd
}
