package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/linesmerrill/pickup-notify-api/api"
	"github.com/linesmerrill/pickup-notify-api/api/scheduler"
	"github.com/linesmerrill/pickup-notify-api/config"
	"github.com/linesmerrill/pickup-notify-api/databases"
	"github.com/linesmerrill/pickup-notify-api/email"
	"github.com/linesmerrill/pickup-notify-api/logging"
	"github.com/linesmerrill/pickup-notify-api/notifications"
	"github.com/linesmerrill/pickup-notify-api/push"
)

// RequestTimeout bounds every /api/v1 request
const RequestTimeout = 30 * time.Second

// App stores the router and the wired notification core, so it can be reused
type App struct {
	Router *mux.Router
	Config config.Config
	Auth   api.Auth

	Tokens    TokenRegistrar
	Lister    NotificationLister
	Reminders ReminderTrigger
	Mailer    Mailer
	Events    Events
	Hub       *NotificationHub

	Scheduler *scheduler.ReminderScheduler

	client   databases.ClientHelper
	dbHelper databases.DatabaseHelper
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	r := mux.NewRouter()
	r.Use(api.LoggingMiddleware)

	// healthchex
	r.HandleFunc("/health", api.HealthCheckHandler)

	if a.Hub != nil {
		r.Handle("/ws/notifications", api.TokenFromQuery(a.Auth.Middleware(http.HandlerFunc(a.Hub.HandleNotificationsWebSocket)))).Methods("GET")
	}

	apiCreate := r.PathPrefix("/api/v1").Subrouter()
	apiCreate.Use(api.TimeoutMiddleware(RequestTimeout))

	auth := a.Auth.Middleware
	admin := func(h http.HandlerFunc) http.Handler { return auth(api.RequireAdmin(h)) }

	pt := PushToken{Registry: a.Tokens}
	n := Notification{Lister: a.Lister}
	rm := Reminder{Scheduler: a.Reminders}
	e := Email{Mailer: a.Mailer}

	apiCreate.Handle("/push-tokens", auth(http.HandlerFunc(pt.RegisterPushTokenHandler))).Methods("POST")
	apiCreate.Handle("/push-tokens/{user_id}", auth(http.HandlerFunc(pt.DeletePushTokenHandler))).Methods("DELETE")
	apiCreate.Handle("/users/{user_id}/notifications", auth(http.HandlerFunc(n.GetUserNotificationsHandler))).Methods("GET")

	// admin routes run jobs longer than RequestTimeout and bound themselves
	adminRoutes := r.PathPrefix("/api/v1/admin").Subrouter()
	adminRoutes.Handle("/reminders/trigger", admin(rm.TriggerReminderHandler)).Methods("POST")
	adminRoutes.Handle("/email", admin(e.SendEmailHandler)).Methods("POST")
	adminRoutes.Handle("/events/pickup-accepted", admin(a.Events.PickupAcceptedHandler)).Methods("POST")
	adminRoutes.Handle("/events/account-signup", admin(a.Events.AccountSignupHandler)).Methods("POST")

	return r
}

// Initialize is invoked by main to connect with the database, wire the notification
// core and create a router
func (a *App) Initialize(ctx context.Context) error {
	client, err := databases.NewClient(&a.Config)
	if err != nil {
		zap.S().With(err).Error("failed to create new client")
		return err
	}
	if err := client.Connect(ctx); err != nil {
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	a.client = client
	a.dbHelper = databases.NewDatabase(&a.Config, client)
	zap.S().Info("pickup-notify-api has connected to the database")

	tokenDB := databases.NewPushTokenDatabase(a.dbHelper)
	if err := tokenDB.EnsureIndexes(ctx); err != nil {
		// an existing duplicate must not keep the service down
		zap.S().Errorw("failed to ensure push token indexes", "error", err)
	}

	gateway, err := newGateway(ctx, a.Config.Push)
	if err != nil {
		return err
	}

	a.Auth = api.Auth{Secret: []byte(a.Config.JWTSecret)}
	a.Hub = NewNotificationHub()

	registry := notifications.NewRegistry(tokenDB)
	dispatcher := notifications.NewDispatcher(
		registry,
		databases.NewNotificationDatabase(a.dbHelper),
		gateway,
		notifications.NewPolicy(a.Config.Notify.DisabledTypes),
		a.Hub,
	)
	chain := email.NewChainFromConfig(a.Config.Email, logging.New(a.Config.Environment).Named("email"))

	var lockDB databases.SchedulerLockDatabase
	if a.Config.Reminder.UseLock {
		lockDB = databases.NewSchedulerLockDatabase(a.dbHelper)
	}
	var reminderMailer scheduler.Mailer
	if a.Config.Reminder.EmailEnabled {
		reminderMailer = chain
	}
	pickupDB := databases.NewPickupDatabase(a.dbHelper)
	a.Scheduler = scheduler.NewScheduler(
		pickupDB,
		dispatcher,
		lockDB,
		reminderMailer,
		a.Config.Reminder.Hour,
		a.Config.Reminder.Location(),
	)

	a.Tokens = registry
	a.Lister = dispatcher
	a.Reminders = a.Scheduler
	a.Mailer = chain
	a.Events = Events{PickupDB: pickupDB, Notifier: dispatcher}

	a.Router = a.New()
	return nil
}

// Shutdown stops the reminder timer and closes the database connection
func (a *App) Shutdown(ctx context.Context) error {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	if a.client != nil {
		return a.client.Disconnect(ctx)
	}
	return nil
}

func newGateway(ctx context.Context, conf config.PushConfig) (push.Gateway, error) {
	switch conf.Gateway {
	case "", "expo":
		return push.NewExpoGateway(conf.ExpoURL, conf.ExpoAccessToken), nil
	case "fcm":
		g, err := push.NewFCMGateway(ctx, conf.FCMProjectID, conf.FCMClientEmail, conf.FCMPrivateKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create fcm gateway: %w", err)
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unknown push gateway %q", conf.Gateway)
	}
}
