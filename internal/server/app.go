// Package server wires the blog API together: it opens the database, runs
// migrations, builds the services and runs the HTTP and gRPC servers until
// the process is signalled.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/mindbloging/mindbloging/internal/logging"
	"github.com/mindbloging/mindbloging/internal/server/auth"
	"github.com/mindbloging/mindbloging/internal/server/config"
	"github.com/mindbloging/mindbloging/internal/server/repositories/repomanager"
	"github.com/mindbloging/mindbloging/internal/server/rest"
	"github.com/mindbloging/mindbloging/internal/server/services"
	"golang.org/x/crypto/bcrypt"

	gs "github.com/mindbloging/mindbloging/internal/server/grpc"
)

const googleHTTPTimeout = 10 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	http   *rest.Server
	grpc   *gs.GRPCServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSON(os.Stdout, c.LogLevel)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	google, err := auth.NewGoogleVerifier(ctx, c.GoogleClientID, &http.Client{Timeout: googleHTTPTimeout})
	if err != nil {
		db.Close()
		return nil, err
	}
	if c.GoogleClientID == "" {
		logger.Warn(ctx, config.GoogleClientIDEnv+" is not set, Google sign-in is disabled")
	}

	tokens := auth.NewTokenService([]byte(c.SecretKey), c.TokenValidityDuration)
	hasher := auth.NewBcryptHasher(bcrypt.DefaultCost)

	deps := rest.Deps{
		Tokens:    tokens,
		Users:     services.NewUserService(db, rm, tokens, hasher, google, logger),
		Posts:     services.NewPostService(db, rm, logger),
		Comments:  services.NewCommentService(db, rm, logger),
		Bookmarks: services.NewBookmarkService(db, rm, logger),
		Dashboard: services.NewDashboardService(db, rm, logger),
		Media:     services.NewMediaService(c, logger),
	}

	return &App{
		config: c,
		logger: logger,
		db:     db,
		http:   rest.NewServer(c, deps, logger),
		grpc:   gs.NewGRPCServer(c.EndpointAddrGRPC, logger, db),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

type runner interface {
	Run(ctx context.Context) error
}

// start runs r and cancels the whole app when it fails.
func (app *App) start(ctx context.Context, cancelFunc context.CancelFunc, name string, r runner) {
	if err := r.Run(ctx); err != nil {
		app.logger.Error(ctx, "server failed", "server", name, "error", err)
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.start(ctx, cancelFunc, "http", app.http)
	}()
	go func() {
		defer wg.Done()
		app.start(ctx, cancelFunc, "grpc", app.grpc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(context.Background(), "db close failed", "error", err)
	}

	app.logger.Info(context.Background(), "App stopped")
}
