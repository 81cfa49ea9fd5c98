package server

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"

	"github.com/cbitosc/HTF25-Team-416-sub000/config"
	"github.com/cbitosc/HTF25-Team-416-sub000/internal/handlers"
	"github.com/cbitosc/HTF25-Team-416-sub000/internal/helpers"
	"github.com/cbitosc/HTF25-Team-416-sub000/internal/logging"
	"github.com/cbitosc/HTF25-Team-416-sub000/internal/mailer"
	"github.com/cbitosc/HTF25-Team-416-sub000/internal/meetings"
	"github.com/cbitosc/HTF25-Team-416-sub000/internal/payments"
	"github.com/cbitosc/HTF25-Team-416-sub000/internal/reminders"
	"github.com/cbitosc/HTF25-Team-416-sub000/internal/services"
	"github.com/cbitosc/HTF25-Team-416-sub000/internal/store"
	"github.com/cbitosc/HTF25-Team-416-sub000/internal/ticket"
	"github.com/cbitosc/HTF25-Team-416-sub000/internal/upstream"
)

// App is the assembled service graph behind the HTTP API.
type App struct {
	Handler    *handlers.Handler
	Dispatcher *mailer.Dispatcher
	Scheduler  *reminders.Scheduler
	Store      store.Store
	JWTSecret  string
}

// Build wires services on top of st. The mail sender and outbound clients
// come from cfg.
func Build(cfg *config.Config, st store.Store, sender mailer.Sender) (*App, error) {
	provider, err := payments.New(cfg.Payments.Provider, cfg.Payments.StripeSecretKey, cfg.Payments.XenditSecretKey)
	if err != nil {
		return nil, fmt.Errorf("configuring payments: %w", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	zoom := meetings.NewZoomClient(meetings.Config{
		BaseURL:   cfg.Zoom.BaseURL,
		APIKey:    cfg.Zoom.APIKey,
		APISecret: cfg.Zoom.APISecret,
		TokenTTL:  cfg.Zoom.TokenTTL,
	}, &http.Client{Timeout: cfg.Zoom.Timeout})

	dispatcher := mailer.NewDispatcher(sender, cfg.Mail.Timeout)
	issuer := ticket.NewIssuer(cfg.TicketSecret())

	uploads := helpers.DefaultImageUploadConfig
	uploads.UploadBasePath = cfg.Server.UploadDir

	h := &handlers.Handler{
		Accounts:  services.NewAccounts(st, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Events:    services.NewEvents(st),
		Registrar: services.NewRegistrar(st, issuer, dispatcher),
		Exporter:  services.NewExporter(st),
		Checkout: services.NewCheckout(st, provider, upstream.NewGuard("payments", cfg.Payments.Timeout), services.CheckoutConfig{
			Currency:   cfg.Payments.Currency,
			SuccessURL: cfg.Payments.SuccessURL,
			CancelURL:  cfg.Payments.CancelURL,
		}),
		Meetings: services.NewMeetings(st, zoom, upstream.NewGuard("zoom", cfg.Zoom.Timeout)),
		Uploads:  uploads,
		Health:   st,
	}

	app := &App{
		Handler:    h,
		Dispatcher: dispatcher,
		Store:      st,
		JWTSecret:  cfg.Auth.JWTSecret,
	}
	if cfg.Reminders.Enabled {
		app.Scheduler = reminders.NewScheduler(st, sender, reminders.Config{
			Location:    loc,
			Concurrency: cfg.Reminders.Concurrency,
			SendTimeout: cfg.Mail.Timeout,
		})
	}
	return app, nil
}

// Start runs the API and the reminder scheduler under one supervisor until
// SIGINT or SIGTERM.
func Start(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := config.OpenStore(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			logging.Warn().Err(err).Msg("Closing store")
		}
	}()

	sender := mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		User:     cfg.Mail.User,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
		FromName: cfg.Mail.FromName,
		UseTLS:   cfg.Mail.UseTLS,
	})

	app, err := Build(cfg, st, sender)
	if err != nil {
		return err
	}
	defer app.Dispatcher.Wait()

	router := NewRouter(app, cfg.Server.UploadDir)
	httpServer := &http.Server{
		Addr:    ":" + strconv.Itoa(cfg.Server.Port),
		Handler: router,
	}

	handler := &sutureslog.Handler{Logger: logging.NewSlogLogger()}
	root := suture.New("eventhub", suture.Spec{
		EventHook: handler.MustHook(),
		Timeout:   cfg.Server.ShutdownTimeout,
	})
	root.Add(NewHTTPServerService(httpServer, cfg.Server.ShutdownTimeout))
	if app.Scheduler != nil {
		root.Add(app.Scheduler)
	}

	logging.Info().Int("port", cfg.Server.Port).Str("driver", cfg.Database.Driver).Msg("Starting server")
	err = root.Serve(ctx)
	if err != nil && ctx.Err() != nil {
		logging.Info().Msg("Server stopped")
		return nil
	}
	return err
}
