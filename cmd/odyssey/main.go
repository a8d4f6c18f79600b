package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"

	"github.com/odyssey-erp/regional-dashboard/cmd/odyssey/cli"
	"github.com/odyssey-erp/regional-dashboard/internal/app"
	"github.com/odyssey-erp/regional-dashboard/internal/observability"
	"github.com/odyssey-erp/regional-dashboard/internal/platform/db"
	"github.com/odyssey-erp/regional-dashboard/internal/salesreport"
	"github.com/odyssey-erp/regional-dashboard/internal/salesreport/export"
	salesreporthttp "github.com/odyssey-erp/regional-dashboard/internal/salesreport/http"
	"github.com/odyssey-erp/regional-dashboard/report"
)

// exitError carries a process exit code out of a cobra command.
type exitError struct{ code int }

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	root := &cobra.Command{
		Use:           "odyssey",
		Short:         "Regional sales dashboard reports",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	serveCmd := newServeCmd()
	root.RunE = serveCmd.RunE
	root.AddCommand(serveCmd, newReportCmd(), newSeedCmd())

	if err := root.Execute(); err != nil {
		var exit exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		slog.Default().Error("odyssey", slog.Any("error", err))
		os.Exit(1)
	}
}

func loadRuntime(logOut io.Writer) (*app.Config, *slog.Logger, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, app.NewLoggerTo(cfg, logOut), nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadRuntime(os.Stdout)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, logger)
		},
	}
}

func serve(parent context.Context, cfg *app.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer dbpool.Close()

	metrics := observability.NewMetrics()

	service := salesreport.NewService(salesreport.NewRepository(dbpool), salesreport.Options{
		DefaultCompany: cfg.DefaultCompany,
		Logger:         logger,
		Observer:       metrics,
	})

	reportClient := report.NewClient(cfg.GotenbergURL)
	reportHandler := report.NewHandler(reportClient, logger)
	pdfExporter := &export.PDFExporter{Renderer: reportClient}

	router := app.NewRouter(app.RouterParams{
		Logger:        logger,
		Config:        cfg,
		SalesReport:   salesreporthttp.NewHandler(logger, service, pdfExporter),
		ReportHandler: reportHandler,
		Metrics:       metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
	return nil
}

func newReportCmd() *cobra.Command {
	var (
		opts        cli.ReportOptions
		fixturePath string
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Run the sales target achievement report once",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadRuntime(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()

			var source salesreport.DataSource
			if fixturePath != "" {
				f, err := os.Open(fixturePath)
				if err != nil {
					return fmt.Errorf("open fixture: %w", err)
				}
				defer f.Close()
				mem, err := salesreport.LoadFixture(f)
				if err != nil {
					return err
				}
				source = mem
			} else {
				dbpool, err := db.New(ctx, cfg.PGDSN)
				if err != nil {
					return fmt.Errorf("connect postgres: %w", err)
				}
				defer dbpool.Close()
				source = salesreport.NewRepository(dbpool)
			}

			reportCLI, err := cli.NewReportCLI(salesreport.NewService(source, salesreport.Options{
				DefaultCompany: cfg.DefaultCompany,
				Logger:         logger,
			}))
			if err != nil {
				return err
			}
			opts.Stdout = cmd.OutOrStdout()
			opts.Stderr = cmd.ErrOrStderr()
			if code := reportCLI.ReportCommand(ctx, opts); code != 0 {
				return exitError{code: code}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.FromDate, "from-date", "", "First posting date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.ToDate, "to-date", "", "Last posting date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.FiscalYear, "fiscal-year", "", "Fiscal year of the sales targets")
	cmd.Flags().StringVar(&opts.Company, "company", "", "Company; defaults to DEFAULT_COMPANY")
	cmd.Flags().StringVar(&opts.Format, "format", cli.FormatTable, "Output format: table, json or csv")
	cmd.Flags().StringVar(&fixturePath, "fixture", "", "Read data from a JSON fixture instead of Postgres")
	return cmd
}

func newSeedCmd() *cobra.Command {
	var schemaOnly bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the report tables and load demo data",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadRuntime(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			var data *salesreport.MemorySource
			if !schemaOnly {
				if data, err = salesreport.DemoFixture(); err != nil {
					return err
				}
			}

			dbpool, err := db.New(ctx, cfg.PGDSN)
			if err != nil {
				return fmt.Errorf("connect postgres: %w", err)
			}
			defer dbpool.Close()

			if err := db.WithTx(ctx, dbpool, func(tx pgx.Tx) error {
				return salesreport.Seed(ctx, tx, data)
			}); err != nil {
				return err
			}
			logger.Info("seed complete", slog.Bool("schema_only", schemaOnly))
			return nil
		},
	}
	cmd.Flags().BoolVar(&schemaOnly, "schema-only", false, "Create tables without demo data")
	return cmd
}
