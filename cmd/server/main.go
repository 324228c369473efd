package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-auth-frontdoor/authority/httpclient"
	"github.com/jrsteele09/go-auth-frontdoor/frontdoor"
	"github.com/jrsteele09/go-auth-frontdoor/internal/config"
	apperrors "github.com/jrsteele09/go-auth-frontdoor/internal/errors"
	"github.com/jrsteele09/go-auth-frontdoor/internal/telemetry"
	"github.com/jrsteele09/go-auth-frontdoor/server"
	"github.com/jrsteele09/go-auth-frontdoor/sessions"
	"github.com/jrsteele09/go-auth-frontdoor/sessions/memory"
	"github.com/jrsteele09/go-auth-frontdoor/sessions/redisrepo"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const serviceName = "go-auth-frontdoor"

func main() {
	for {
		if err := run(); err != nil {
			log.Error().Err(err).Msg("Error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.New()
	if err != nil {
		// Configuration errors are not retried
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	setupLogging(c.GetEnv())
	displayAppname(c.GetAppName())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := telemetry.Setup(ctx, c, serviceName)
	if err != nil {
		return apperrors.Wrapf(err, "telemetry.Setup")
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Err(err).Msg("Failed to flush traces")
		}
	}()

	repo, closeRepo, err := newSessionRepo(ctx, c)
	if err != nil {
		return err
	}
	defer closeRepo()

	client, err := httpclient.New(c.GetAuthorityBaseURL(), c.GetProjectID(), c.GetSecret(), httpclient.WithTimeout(c.GetAuthorityTimeout()))
	if err != nil {
		return apperrors.Wrapf(err, "httpclient.New")
	}

	controller, err := frontdoor.NewController(client, repo, frontdoor.WithLogger(log.Logger.With().Str("component", "frontdoor").Logger()))
	if err != nil {
		return apperrors.Wrapf(err, "frontdoor.NewController")
	}

	handler, err := server.New(c, controller)
	if err != nil {
		return apperrors.Wrapf(err, "server.New")
	}

	server := &http.Server{Addr: c.GetPort(), Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	serverErr := make(chan error, 1)
	go func() { serverErr <- listenAndServe(server) }()

	if err := waitForStopSignal(serverErr); err != nil {
		return err
	}
	returnError = shutdown(server)
	return returnError
}

// newSessionRepo uses Redis when an address is configured and memory otherwise
func newSessionRepo(ctx context.Context, c config.Config) (sessions.Repo, func(), error) {
	timeout := c.GetSessionInactivityTimeout()

	if c.GetRedisAddr() == "" {
		repo := memory.NewInMemorySessionRepo(timeout)
		repo.StartCleanup(ctx, timeout)
		log.Info().Dur("inactivity_timeout", timeout).Msg("Using in-memory session store")
		return repo, func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     c.GetRedisAddr(),
		Password: c.GetRedisPassword(),
		DB:       c.GetRedisDB(),
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, apperrors.Wrapf(err, "redis ping %s", c.GetRedisAddr())
	}
	log.Info().Str("addr", c.GetRedisAddr()).Dur("inactivity_timeout", timeout).Msg("Using redis session store")

	closeRepo := func() {
		if err := rdb.Close(); err != nil {
			log.Err(err).Msg("Failed to close redis client")
		}
	}
	return redisrepo.New(rdb, c.GetRedisKeyPrefix(), timeout), closeRepo, nil
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return apperrors.Wrapf(err, "server.ListenAndServe")
	}
	return nil
}

func waitForStopSignal(serverErr <-chan error) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case <-stop:
		return nil
	case err := <-serverErr:
		return err
	}
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return apperrors.Wrapf(err, "server.Shutdown")
	}
	return nil
}

func setupLogging(env string) {
	zerolog.TimeFieldFormat = time.RFC3339
	if env == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Warn().Msg("Running with ENV=DEV: FOR DEVELOPMENT PURPOSES ONLY")
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
