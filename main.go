package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Raqibreyaz/EcommerceBackend/config"
	"github.com/Raqibreyaz/EcommerceBackend/database"
	"github.com/Raqibreyaz/EcommerceBackend/events"
	"github.com/Raqibreyaz/EcommerceBackend/media"
	"github.com/Raqibreyaz/EcommerceBackend/payment"
	"github.com/Raqibreyaz/EcommerceBackend/routes"
	"github.com/Raqibreyaz/EcommerceBackend/services/cart"
	"github.com/Raqibreyaz/EcommerceBackend/services/catalog"
	"github.com/Raqibreyaz/EcommerceBackend/services/order"
	"github.com/Raqibreyaz/EcommerceBackend/services/returns"
	"github.com/Raqibreyaz/EcommerceBackend/services/review"
	"github.com/Raqibreyaz/EcommerceBackend/services/wishlist"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

func main() {
	app := &cli.App{
		Name:   "ecommerce-api",
		Usage:  "e-commerce backend",
		Action: serve,
		Commands: []*cli.Command{
			{Name: "serve", Usage: "run the HTTP API", Action: serve},
			{Name: "migrate", Usage: "create or update the database schema", Action: migrate},
		},
	}
	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("exiting")
	}
}

func migrate(*cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "load config")
	}
	log := cfg.Logger()

	db, err := database.Open(cfg.DSN(), log)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}
	log.Info("schema migrated")
	return nil
}

func serve(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "load config")
	}
	log := cfg.Logger()
	log.Info("starting application")

	db, err := database.Open(cfg.DSN(), log)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	store, err := media.NewLocalStore(cfg.UploadsDir, cfg.UploadsPublicPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	hub := events.NewHub(log)
	var publisher events.Publisher = hub
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		relay := events.NewRedisRelay(rdb, cfg.OrderEventsChannel, hub, log)
		publisher = relay
		g.Go(func() error { return relay.Run(ctx) })
	}

	variants := catalog.NewStore(db)
	carts := cart.New(db, variants, log)
	ledger := order.New(db, variants, carts, publisher, log, order.WithCancelWindow(cfg.CancelWindow))

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	// Allow large file uploads (1 GB)
	r.MaxMultipartMemory = 1 << 30

	// CORS settings
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Serve uploaded images
	r.Static(cfg.UploadsPublicPath, cfg.UploadsDir)

	routes.SetupRoutes(r, routes.Deps{
		DB:        db,
		Log:       log,
		JWTSecret: cfg.JWTSecret,
		Media:     store,
		Hub:       hub,
		Gateway:   payment.NewGateway(cfg.PaymentAPIURL, cfg.PaymentKeyID, cfg.PaymentKeySecret, cfg.PaymentCurrency),
		Catalog:   catalog.NewManager(db, store, log),
		Carts:     carts,
		Orders:    ledger,
		Returns:   returns.New(db, variants, ledger, store, publisher, log),
		Wishlist:  wishlist.New(db, variants, log),
		Reviews:   review.New(db, log),
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}

	g.Go(func() error {
		log.WithField("port", cfg.Port).Info("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "http server")
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	// Back up uploaded images daily at a fixed hour
	backup := &media.Backup{
		SrcDir:    cfg.UploadsDir,
		BackupDir: cfg.BackupDir,
		Retention: cfg.BackupRetention,
		Hour:      cfg.BackupHour,
		Log:       log,
	}
	g.Go(func() error { return backup.Run(ctx) })

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("server stopped")
	return nil
}
