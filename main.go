package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-pos/broker"
	"github.com/yeremiapane/restaurant-pos/catalog"
	"github.com/yeremiapane/restaurant-pos/config"
	"github.com/yeremiapane/restaurant-pos/database"
	"github.com/yeremiapane/restaurant-pos/events"
	"github.com/yeremiapane/restaurant-pos/kds"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/router"
	"github.com/yeremiapane/restaurant-pos/services"
	"github.com/yeremiapane/restaurant-pos/utils"
)

const shutdownTimeout = 10 * time.Second

// application is the wired terminal: POS core, kitchen transports, monitors
// and the HTTP router.
type application struct {
	POS            *services.POSService
	Hub            *kds.Hub
	PaymentMonitor *services.PaymentMonitor
	QueueMonitor   *services.QueueMonitor
	Router         *gin.Engine

	closers []func() error
}

func setup(cfg *config.Config) (*application, error) {
	app := &application{}

	cat := catalog.Default()
	if cfg.MenuFile != "" {
		loaded, err := catalog.LoadFile(cfg.MenuFile)
		if err != nil {
			return nil, err
		}
		cat = loaded
		utils.InfoLogger.Infof("Loaded %d menu items from %s", len(cat.Menu), cfg.MenuFile)
	}
	staff := append([]models.Staff{{
		Name:    cfg.StaffName,
		Role:    models.RoleManager,
		PINHash: cfg.StaffPINHash,
	}}, cat.Staff...)

	opts := services.Options{
		Menu:             cat.Menu,
		MaxTableNumber:   cfg.MaxTableNumber,
		DeliveryChannels: cfg.DeliveryChannels,
		BusyThreshold:    cfg.BusyThreshold,
		CardSuccessRate:  cfg.CardSuccessRate,
	}

	var archive *database.Archive
	if cfg.ArchiveEnabled() {
		var err error
		archive, err = database.Open(cfg.ArchiveDriver, cfg.ArchiveDSN)
		if err != nil {
			return nil, err
		}
		ledger := services.NewArchivingLog[models.PaymentResult]("ledger",
			services.NewMemoryLog[models.PaymentResult](), archive.Transactions(), services.DefaultArchiveQueueSize)
		history := services.NewArchivingLog[*models.Order]("order history",
			services.NewMemoryLog[*models.Order](), archive.Orders(), services.DefaultArchiveQueueSize)
		// closed in reverse: both writers drain before the connection goes
		app.closers = append(app.closers, archive.Close, ledger.Close, history.Close)
		opts.Ledger = ledger
		opts.History = history
		utils.InfoLogger.Infof("Archiving to %s", cfg.ArchiveDriver)
	}

	app.Hub = kds.NewHub()
	broadcasters := services.MultiBroadcaster{app.Hub}
	if cfg.KitchenAMQPURL != "" {
		publisher, err := broker.Dial(cfg.KitchenAMQPURL, broker.DefaultQueueSize)
		if err != nil {
			// displays still work over websocket
			utils.ErrorLogger.Warnf("Kitchen broker unavailable: %v", err)
		} else {
			broadcasters = append(broadcasters, publisher)
			app.closers = append(app.closers, publisher.Close)
			utils.InfoLogger.Infof("Publishing kitchen tickets to exchange %s", broker.Exchange)
		}
	}
	opts.Broadcaster = broadcasters

	bus := events.NewEventManager()
	app.POS = services.NewPOSService(bus, opts)
	app.Hub.Attach(bus)

	app.PaymentMonitor = services.NewPaymentMonitor()
	app.PaymentMonitor.Attach(bus)

	app.QueueMonitor = services.NewQueueMonitor(app.POS, app.Hub, cfg.QueueRefreshInterval)

	app.Router = router.SetupRouter(router.Dependencies{
		POS:                app.POS,
		Hub:                app.Hub,
		PaymentMonitor:     app.PaymentMonitor,
		Archive:            archive,
		Staff:              staff,
		CORSOrigin:         cfg.CORSOrigin,
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		RateLimitBurst:     cfg.RateLimitBurst,
	})
	return app, nil
}

// Close stops monitors and closes transports in reverse order of opening.
func (app *application) Close() {
	app.PaymentMonitor.Detach()
	app.Hub.Close()
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](); err != nil {
			utils.ErrorLogger.Errorf("Shutdown: %v", err)
		}
	}
}

func main() {
	utils.InitLogger()

	cfg, err := config.Load()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to load config: %v", err)
	}
	utils.SetLogLevel(cfg.LogLevel)
	utils.SetJWTSecret(cfg.JWTSecret)
	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	app, err := setup(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to start: %v", err)
	}
	defer app.Close()

	app.QueueMonitor.Start()
	defer app.QueueMonitor.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: app.Router,
	}
	go func() {
		utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Fatal(err)
		}
	}()

	<-ctx.Done()
	utils.InfoLogger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.ErrorLogger.Errorf("HTTP shutdown: %v", err)
	}
}
