package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/jaliph/qrrapido/config"
	"github.com/jaliph/qrrapido/controller"
	"github.com/jaliph/qrrapido/database"
	"github.com/jaliph/qrrapido/qr"
	"github.com/jaliph/qrrapido/server"
	"github.com/jaliph/qrrapido/store"
	"github.com/jaliph/qrrapido/utils"
)

var serveArgs struct {
	config string
	addr   string
}

func newServeCmd() *ffcli.Command {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	fs.StringVar(&serveArgs.config, "config", config.DefaultPath, "path to the ini config file")
	fs.StringVar(&serveArgs.addr, "addr", "", "listen address, overrides [api] port")
	return &ffcli.Command{
		Name:       "serve",
		ShortUsage: "qrrapido serve [-config config.ini] [-addr :8080]",
		ShortHelp:  "Serve the generator page and JSON API",
		FlagSet:    fs,
		Options:    []ff.Option{ff.WithEnvVarPrefix("QRRAPIDO")},
		Exec:       runServe,
	}
}

func runServe(ctx context.Context, args []string) error {
	cfg, err := config.LoadConfig(serveArgs.config)
	if err != nil {
		return err
	}
	if serveArgs.addr != "" {
		cfg.APIPort = serveArgs.addr
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	utils.Init(cfg.LogLevel)

	// Initialize GORM database for the MSSQL mirror
	var gormDB *database.GormDB
	if cfg.MSSQLServer != "" {
		gormDB, err = database.NewGormDB(cfg.MSSQLServer, cfg.MSSQLDatabase, cfg.MSSQLUsername, cfg.MSSQLPassword)
		if err != nil {
			return fmt.Errorf("failed to initialize GORM database: %w", err)
		}
		defer gormDB.Close()
	}

	// Initialize SQLite database for the local history
	var history database.History
	if cfg.HistoryPath != "" {
		db, err := database.NewDatabase(cfg.HistoryPath, gormDB)
		if err != nil {
			return fmt.Errorf("failed to initialize SQLite database: %w", err)
		}
		defer db.Close()
		history = db
	} else if gormDB != nil {
		history = gormDB
	}

	size, _ := controller.ParseSize(cfg.DefaultSize)
	sessions := store.NewSessionStore(func() *controller.Controller {
		return controller.New(qr.NewRenderer(),
			controller.WithSize(size),
			controller.WithColors(cfg.ColorDark, cfg.ColorLight),
			controller.WithNotifier(controller.NotifierFunc(func(message string) {
				utils.L().Debug("Generation rejected", "alert", message)
			})),
		)
	}, time.Duration(cfg.SessionExpiryMinutes)*time.Minute)
	defer sessions.CloseAll()

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()
	sessions.StartCleanup(ctx, time.Duration(cfg.SessionCleanupMinutes)*time.Minute)

	srv, err := server.NewServer(sessions, history, server.Options{
		Addr:          cfg.APIPort,
		CSRFKey:       []byte(cfg.CSRFKey),
		SecureCookies: cfg.SecureCookies,
	})
	if err != nil {
		return err
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()

	utils.L().Info("QRRapido server started",
		"addr", cfg.APIPort,
		"history", cfg.HistoryPath != "" || gormDB != nil,
		"mssql", gormDB != nil,
	)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	utils.L().Info("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}
