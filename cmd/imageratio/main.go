package main

import (
	"context"
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
	_ "go.uber.org/automaxprocs"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/time/rate"

	"imageratio/config"
	"imageratio/db"
	"imageratio/httpserver"
	"imageratio/storage"
)

func isSudoKey(key string) func(string) bool {
	keyB := []byte(key)
	return func(s string) bool {
		return subtle.ConstantTimeCompare(keyB, []byte(s)) == 1
	}
}

func newLogger(debug bool) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	return logger
}

func main() {
	// Load the config.
	conf := config.NewConfig()

	logger := newLogger(conf.Debug)
	defer func() { _ = logger.Sync() }()

	// Get the key comparer.
	comparer := isSudoKey(conf.SudoKey)
	conf.SudoKey = ""

	s := &httpserver.Server{
		Config:           conf,
		SudoKeyValidator: comparer,
		Logger:           logger,
	}

	// Connect to the database if profiles are configured.
	if conf.PostgresConnectionString != "" {
		conn := db.NewDB(conf.PostgresConnectionString)
		defer conn.Close()
		if err := conn.Migrate(context.Background()); err != nil {
			logger.Fatal("Error migrating database", zap.Error(err))
		}
		s.DB = conn
		s.Profiles = cache.New(time.Minute, 5*time.Minute)
	}
	conf.PostgresConnectionString = ""

	// Initialise the S3 client if a bucket is configured.
	if conf.S3Enabled() {
		s.Objects = storage.NewS3Fetcher(conf)
	}
	conf.AccessKeyID = ""
	conf.SecretAccessKey = ""

	if conf.RateLimit > 0 {
		s.Limiter = rate.NewLimiter(rate.Limit(conf.RateLimit), int(conf.RateLimit)+1)
	}

	logger.Info("Listening",
		zap.String("host", conf.HTTPHost),
		zap.Bool("profiles", s.DB != nil),
		zap.Bool("objects", s.Objects != nil))

	// Create the HTTP server and listen.
	err := http.ListenAndServe(conf.HTTPHost, h2c.NewHandler(s, &http2.Server{}))
	if err != nil {
		logger.Fatal("Error serving", zap.Error(err))
	}
}
