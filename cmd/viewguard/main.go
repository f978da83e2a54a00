package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/viewguard/viewguard/config"
	"github.com/viewguard/viewguard/internal/adminapi"
	"github.com/viewguard/viewguard/internal/app"
	"github.com/viewguard/viewguard/internal/mailer"
	"github.com/viewguard/viewguard/internal/publicapi"
	"github.com/viewguard/viewguard/internal/webserver"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	showHelp    bool
	showVersion bool
	confFile    string
	initDb      bool
)

func init() {
	flag.BoolVar(&showHelp, "h", false, "show help")
	flag.BoolVar(&showVersion, "v", false, "print version and exit")
	flag.StringVar(&confFile, "c", "viewguard.yml", "config file path")
	flag.BoolVar(&initDb, "initdb", false, "drop and recreate all tables, then exit")
}

func main() {
	flag.Parse()
	if showHelp {
		flag.Usage()
		return
	}
	if showVersion {
		fmt.Printf("viewguard %s (built %s)\n", version, buildTime)
		return
	}

	_ = godotenv.Load()

	cfg := config.LoadConfig(confFile)
	a := app.NewApplication(cfg)
	a.Init(cfg)
	defer a.Release()

	if initDb {
		a.InitDb()
		zap.S().Info("database initialized")
		return
	}

	ws := webserver.Init(cfg, a.DB())
	adminapi.Init()
	publicapi.Init(cfg)
	defer publicapi.Release()

	mail, err := mailer.New(cfg.Smtp)
	if err != nil {
		zap.S().Errorf("mailer disabled: %v", err)
	} else {
		defer mail.Close()
	}

	g, ctx := errgroup.WithContext(context.Background())
	g.Go(ws.Start)
	g.Go(func() error {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		select {
		case s := <-sig:
			zap.S().Infof("received %s, shutting down", s)
		case <-ctx.Done():
			return ctx.Err()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return ws.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil && err != context.Canceled {
		zap.S().Error(err)
	}
}
