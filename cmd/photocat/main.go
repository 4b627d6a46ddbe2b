package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abduss/photocat/internal/auth"
	"github.com/abduss/photocat/internal/cli"
	"github.com/abduss/photocat/internal/config"
	"github.com/abduss/photocat/internal/logger"
	"github.com/abduss/photocat/internal/server"
)

func main() {
	os.Exit(run())
}

func run() int {
	_ = godotenv.Load()

	logg, err := logger.Init()
	if err != nil {
		fmt.Fprintln(os.Stderr, "init logger:", err)
		return 1
	}
	defer logg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(logg).ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}

func newRootCmd(logg *zap.Logger) *cobra.Command {
	var cfg config.Config

	root := &cobra.Command{
		Use:           "photocat",
		Short:         "Catalog photos in a blob store with searchable metadata",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := logger.SetLevel(loaded.Log.Level); err != nil {
				return fmt.Errorf("log level: %w", err)
			}
			cfg = loaded
			return nil
		},
	}

	menu := &cobra.Command{
		Use:   "menu",
		Short: "Run the interactive operator menu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), cfg, logg)
			if err != nil {
				return err
			}
			defer a.Close()

			return cli.NewMenu(a.coordinator.Handlers(), cmd.InOrStdin(), cmd.OutOrStdout(), logg).Run(cmd.Context())
		},
	}
	root.RunE = menu.RunE

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the operator HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), cfg, logg)
			if err != nil {
				return err
			}
			defer a.Close()

			return serveHTTP(cmd.Context(), cfg, logg, server.NewRouter(a.serverDependencies()))
		},
	}

	ingestCmd := &cobra.Command{
		Use:   "ingest [description-file]",
		Short: "Upsert every entry of a description file into the metadata table",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), cfg, logg)
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.pipeline.RunFile(cmd.Context(), descriptionPath(args, cfg))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "run %s: %d written, %d failed\n", report.RunID, len(report.Succeeded()), len(report.Failed()))
			for _, o := range report.Failed() {
				fmt.Fprintf(out, "  %s: %v\n", o.ID(), o.Err)
			}
			return nil
		},
	}

	token := &cobra.Command{
		Use:   "token <operator>",
		Short: "Issue a bearer token for the HTTP API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			issued, err := auth.NewService(cfg.Auth).Issue(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), issued.Value)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", issued.ExpiresAt.Format(time.RFC3339))
			return nil
		},
	}

	root.AddCommand(menu, serve, ingestCmd, token)
	return root
}

func serveHTTP(ctx context.Context, cfg config.Config, logg *zap.Logger, handler http.Handler) error {
	if strings.TrimSpace(cfg.Auth.TokenSecret) == "" {
		logg.Warn("PHOTOCAT_API_SECRET is empty; the API is unauthenticated")
	}

	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info("photocat API listening", zap.String("address", cfg.Server.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logg.Info("shutting down gracefully")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logg.Error("shutdown error", zap.Error(err))
		return err
	}
	return nil
}
