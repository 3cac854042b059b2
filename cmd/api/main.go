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

	"github.com/go-email-otp/internal/config"
	"github.com/go-email-otp/internal/infrastructure/memory"
	"github.com/go-email-otp/internal/infrastructure/smtp"
	"github.com/go-email-otp/internal/metrics"
	"github.com/go-email-otp/internal/pkg/logger"
	transporthttp "github.com/go-email-otp/internal/transport/http"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	var cfg *config.Config

	root := &cobra.Command{
		Use:           "otp-mailer",
		Short:         "Email one-time code service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			envErr := godotenv.Load()
			cfg = config.Load()
			env := "dev"
			if cfg.IsProduction() {
				env = "prod"
			}
			logger.Init(logger.Config{Env: env, Level: cfg.LogLevel, ServiceName: "otp"})
			if envErr != nil {
				logger.L().Info("no .env file found, reading from environment")
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cfg)
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cfg)
		},
	}

	checkCmd := &cobra.Command{
		Use:   "smtp-check",
		Short: "Connect and authenticate against the configured SMTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.SMTPTimeout+5*time.Second)
			defer cancel()
			if err := smtp.NewMailer(cfg).Check(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "smtp ok (host=%s, port=%d, security=%s)\n",
				cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPSecurity)
			return nil
		},
	}

	root.AddCommand(serveCmd, checkCmd)

	err := root.Execute()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func serve(cfg *config.Config) error {
	log := logger.L()

	if err := metrics.Register(nil); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	mailer := smtp.NewMailer(cfg)
	if cfg.SMTPUsername == "" || cfg.SMTPPassword == "" {
		log.Warn("SMTP_USER/SMTP_PASS not set; code requests will fail until configured")
	}

	deps := &transporthttp.Deps{
		Store:  memory.NewCodeStore(cfg.OTPRetention),
		Mailer: mailer,
	}
	router := transporthttp.NewRouter(cfg, deps)

	// WriteTimeout leaves room for a full SMTP timeout inside a request.
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.SMTPTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-quit:
	}

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}
