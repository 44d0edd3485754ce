package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"grc-center/internal/database"
	"grc-center/internal/handlers"
	"grc-center/internal/server"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func runServe() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.cfg.RequireSessionSecret(); err != nil {
		return err
	}
	if err := database.Migrate(a.db); err != nil {
		return err
	}

	svc, err := a.service(ctx)
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	h := handlers.New(svc, handlers.NewIntegrations(a.cfg), a.log)
	router := server.NewRouter(h, server.Options{SessionSecret: a.cfg.SessionSecret, Logger: a.log})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", a.cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("starting server", "addr", httpServer.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		a.log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
