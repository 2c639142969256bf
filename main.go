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
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/joshbakergf/lead-manager-sub001/pkg/api"
	"github.com/joshbakergf/lead-manager-sub001/pkg/clients/fieldroutes"
	"github.com/joshbakergf/lead-manager-sub001/pkg/clients/payrix"
	"github.com/joshbakergf/lead-manager-sub001/pkg/config"
	"github.com/joshbakergf/lead-manager-sub001/pkg/logging"
	"github.com/joshbakergf/lead-manager-sub001/pkg/mapping"
	"github.com/joshbakergf/lead-manager-sub001/pkg/services"
	"github.com/joshbakergf/lead-manager-sub001/pkg/store"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "lead-manager",
		Short:        "Lead submission backend for the CRM and payment processor",
		SilenceUsage: true,
	}
	serve := newServeCmd()
	root.AddCommand(serve, newVersionCmd())
	// running without a subcommand starts the server
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

func newServeCmd() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), port)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides PORT)")
	return cmd
}

func serve(ctx context.Context, portOverride string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file loaded, using process environment")
	}

	// Initialize configuration
	cfg := config.LoadConfig()
	if portOverride != "" {
		cfg.Port = portOverride
	}

	flush, err := logging.Setup(cfg.IsProduction())
	if err != nil {
		return fmt.Errorf("error initializing logger: %w", err)
	}
	defer flush()
	log := zap.L()

	rules, err := mapping.LoadRules(cfg.FieldRulesFile)
	if err != nil {
		log.Error("Error loading field rules", zap.Error(err))
		return err
	}

	ledger, err := openLedger(cfg)
	if err != nil {
		log.Error("Error opening submission ledger", zap.Error(err))
		return err
	}
	defer ledger.Close()

	// Initialize API clients
	crmClient := fieldroutes.NewClient(cfg.FieldRoutesBaseURL, cfg.FieldRoutesAuthKey, cfg.FieldRoutesAuthToken, cfg.HTTPTimeout)
	payrixClient := payrix.NewClient(cfg.PayrixBaseURL, cfg.PayrixAuthHeader, cfg.PayrixAPIKey, cfg.HTTPTimeout)

	// Initialize services
	submissionService := services.NewLeadSubmissionService(
		crmClient,
		payrixClient,
		ledger,
		rules,
		cfg,
	)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	handlers := api.NewHandlers(submissionService, ledger)
	router := api.NewRouter(handlers, crmClient, payrixClient, cfg.CORSAllowedOrigins)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("port", cfg.Port), zap.String("env", cfg.AppEnv))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("Error starting server", zap.Error(err))
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openLedger(cfg *config.Config) (store.Ledger, error) {
	if cfg.SubmissionDBPath == "" {
		zap.L().Warn("SUBMISSION_DB_PATH not set, submissions are kept in memory only")
		return store.NewMemoryLedger(), nil
	}
	return store.NewSQLiteLedger(cfg.SubmissionDBPath)
}
