package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"brilliora/config"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  runServe,
	}

	cmd.Flags().String("env-file", "", "Path to a .env file (defaults to ./.env)")
	cmd.Flags().Bool("in-memory", false, "Use in-memory stores instead of MongoDB")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	envFile, _ := cmd.Flags().GetString("env-file")
	inMemory, _ := cmd.Flags().GetBool("in-memory")

	cfg, logger, err := loadConfig(envFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, inMemory, logger)
	if err != nil {
		return err
	}
	productCache, closeCache := openCache(ctx, cfg, logger)

	creds := config.EnvCredentials()
	if !creds.Credentials().Configured() {
		logger.Warn("razorpay keys not set, payments run in mock mode")
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      newHandler(cfg, st, productCache, creds, newRegistry(), logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server running", "addr", "http://localhost:"+cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err = <-errCh:
		logger.Error("server error", "error", err)
	case <-ctx.Done():
		logger.Info("shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if serr := srv.Shutdown(shutdownCtx); serr != nil {
		logger.Error("server forced to shutdown", "error", serr)
	}
	if cerr := closeCache(); cerr != nil {
		logger.Warn("closing redis", "error", cerr)
	}
	if cerr := st.close(shutdownCtx); cerr != nil {
		logger.Warn("closing store", "error", cerr)
	}

	logger.Info("server exited")
	return err
}
