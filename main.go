package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/MangKong-coder/rest-api/handler"
	"github.com/MangKong-coder/rest-api/notify"
	"github.com/MangKong-coder/rest-api/storage"
	"github.com/MangKong-coder/rest-api/store"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"golang.org/x/crypto/acme/autocert"
)

const DEV_ENV = "dev"
const PRO_ENV = "pro"

// Any origin may call the API.
var corsConfig = middleware.CORSConfig{
	AllowOrigins: []string{"*"},
	AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
	AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
}

func main() {
	e := echo.New()
	e.HideBanner = true

	cfg, err := loadConfig()
	if err != nil {
		e.Logger.Fatal(err)
	}
	e.Logger.SetLevel(logLevel(cfg.LogLevel))

	e.Logger.Info("Running database schema migrations...")
	db, err := store.Open(cfg.DBDriver, cfg.DBURL)
	if err != nil {
		e.Logger.Fatal(err)
	}
	defer db.Close()

	images, err := setupImages(cfg)
	if err != nil {
		e.Logger.Fatal(err)
	}

	hub := notify.NewHub()
	hub.Start()
	defer hub.Close()

	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(corsConfig))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.HTTPErrorHandler = handler.ErrorHandler

	h := newHandler(cfg, db, images, hub)
	h.Register(e)
	e.GET("/socket", hub.Handler)

	go serve(e, cfg)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Error(err)
	}
}

func newHandler(cfg Config, db *sql.DB, images storage.ImageStore, hub *notify.Hub) *handler.Handler {
	s := store.New(db)
	return &handler.Handler{
		Users:        s,
		Posts:        s,
		Images:       images,
		Notifier:     hub,
		JWTSecret:    cfg.JWTSecret,
		TokenTTL:     cfg.TokenTTL,
		EnableSignup: cfg.EnableSignup,
		Environment:  cfg.Environment,
	}
}

func serve(e *echo.Echo, cfg Config) {
	var err error
	if cfg.Address != "" {
		err = e.Start(cfg.Address)
	} else {
		// Cache certificates to avoid issues with rate limits (https://letsencrypt.org/docs/rate-limits)
		e.AutoTLSManager.Cache = autocert.DirCache("/var/www/.cache")
		if cfg.WhitelistHost != "" {
			e.AutoTLSManager.HostPolicy = autocert.HostWhitelist(cfg.WhitelistHost)
		}
		e.Pre(middleware.HTTPSRedirect())
		err = e.StartAutoTLS(":443")
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		e.Logger.Fatal(err)
	}
}

func setupImages(cfg Config) (storage.ImageStore, error) {
	switch cfg.Storage {
	case "minio":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return storage.NewMinIO(ctx, storage.MinIOConfig{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccess,
			SecretKey: cfg.MinIOSecret,
			Bucket:    cfg.MinIOBucket,
		})
	case "local", "":
		return storage.NewLocal(cfg.ImageDir)
	default:
		return nil, errors.New("unknown STORAGE " + cfg.Storage)
	}
}

func logLevel(name string) log.Lvl {
	switch strings.ToLower(name) {
	case "debug":
		return log.DEBUG
	case "warn":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}
