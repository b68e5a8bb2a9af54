package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/dktlearn/internal/buildinfo"
	"github.com/dmitrijs2005/dktlearn/internal/client/cli"
	"github.com/dmitrijs2005/dktlearn/internal/client/client"
	"github.com/dmitrijs2005/dktlearn/internal/client/config"
	"github.com/dmitrijs2005/dktlearn/internal/client/services"
	"github.com/dmitrijs2005/dktlearn/internal/client/session"
	"github.com/dmitrijs2005/dktlearn/internal/client/storage"
	"github.com/dmitrijs2005/dktlearn/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("%v", err)
	}

}

func run(ctx context.Context) error {
	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		return err
	}

	logger, err := logging.NewTextLogger(os.Stderr, cfg.LogLevel)
	if err != nil {
		return err
	}

	db, err := storage.Open(ctx, cfg.SessionDB)
	if err != nil {
		return err
	}
	defer db.Close()

	store := session.NewStore(db)

	var app *cli.App
	httpClient, err := client.NewHTTPClient(cfg.BaseURL, store,
		client.WithTimeout(cfg.RequestTimeout),
		client.WithLogger(logger),
		client.WithRateLimit(cfg.RateLimit, cfg.RateBurst),
		client.WithSessionExpiredHook(func(ctx context.Context) {
			if app != nil {
				app.SessionExpired(ctx)
			}
		}),
	)
	if err != nil {
		return err
	}

	app = cli.NewApp(cli.Deps{
		Auth: services.NewAuthService(httpClient, store,
			services.WithSessionTTL(cfg.SessionTTL),
			services.WithAuthLogger(logger)),
		Community: services.NewCommunityService(httpClient),
		Users:     services.NewUserService(httpClient),
		Logger:    logger,
	})

	return app.Run(ctx)
}
