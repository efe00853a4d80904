/*
main.go - Application entry point

PURPOSE:
  Loads the sales CSV once and either serves the dashboard API or prints
  a one-shot report for a selection.

COMMANDS:
  serve    Start the HTTP API (graceful shutdown on SIGINT/SIGTERM)
  report   Apply a chain/capacity/pick and print table, membership and
           monthly totals

CONFIGURATION:
  Defaults < --config YAML file < flags / SALES_* environment variables.
  See config/config.go.

EXAMPLES:
  # Serve the dashboard API
  ./server --data=datos_pivoteados_fecha.csv serve --addr=:8080

  # Headless report
  ./server --data=ventas.csv report --chain="Chain A" --select="1: Aspirin"

SEE ALSO:
  - api/server.go: Router configuration
  - ingest/csv.go: CSV loading
  - sales/reconcile.go: Filter reconciler
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/rfp/sales-analysis/api"
	"github.com/rfp/sales-analysis/config"
	"github.com/rfp/sales-analysis/ingest"
	"github.com/rfp/sales-analysis/sales"
	"github.com/rfp/sales-analysis/store/sqlite"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:    "sales-analysis",
		Usage:   "Sales dashboard API over a pivoted sales CSV",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "YAML config file",
				EnvVars: []string{"SALES_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "data",
				Usage:   "Sales CSV file",
				EnvVars: []string{"SALES_DATA"},
			},
			&cli.StringFlag{
				Name:    "delimiter",
				Usage:   "CSV field delimiter",
				EnvVars: []string{"SALES_DELIMITER"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"SALES_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log format (json, console)",
				EnvVars: []string{"SALES_LOG_FORMAT"},
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			reportCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the dashboard API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Usage:   "HTTP listen address",
				EnvVars: []string{"SALES_ADDR"},
			},
			&cli.StringFlag{
				Name:    "db",
				Usage:   "SQLite session database (\":memory:\" keeps sessions in-process)",
				EnvVars: []string{"SALES_DB"},
			},
			&cli.StringFlag{
				Name:    "brand-image",
				Usage:   "Image served at /brand",
				EnvVars: []string{"SALES_BRAND_IMAGE"},
			},
			&cli.StringSliceFlag{
				Name:    "allowed-origin",
				Usage:   "CORS allowed origin (repeatable)",
				EnvVars: []string{"SALES_ALLOWED_ORIGINS"},
			},
		},
		Action: runServe,
	}
}

func reportCommand() *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Print the filtered table, chain membership and monthly totals",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "chain", Usage: "Chain (default: first in file)"},
			&cli.StringFlag{Name: "capacity", Usage: "Capacity (default: first in file)"},
			&cli.StringFlag{Name: "select", Usage: "Picker entry: \"<sku>: <description>\" or a description"},
			&cli.StringSliceFlag{Name: "columns", Usage: "Visible columns (repeatable)"},
		},
		Action: runReport,
	}
}

// loadConfig applies the precedence chain and configures the global logger.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return cfg, err
		}
	}

	overrideString(c, "data", &cfg.Data.Path)
	overrideString(c, "delimiter", &cfg.Data.Delimiter)
	overrideString(c, "log-level", &cfg.Log.Level)
	overrideString(c, "log-format", &cfg.Log.Format)
	overrideString(c, "addr", &cfg.Server.Addr)
	overrideString(c, "db", &cfg.Server.DBPath)
	overrideString(c, "brand-image", &cfg.Data.BrandImage)
	if c.IsSet("allowed-origin") {
		cfg.Server.AllowedOrigins = c.StringSlice("allowed-origin")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = cfg.Logger()
	return cfg, nil
}

func overrideString(c *cli.Context, flag string, dst *string) {
	if c.IsSet(flag) {
		*dst = c.String(flag)
	}
}

func loadDataset(cfg config.Config) (*sales.Reconciler, error) {
	loader, err := ingest.NewLoader(ingest.Options{
		Delimiter: cfg.DelimiterRune(),
		Logger:    log.Logger,
	})
	if err != nil {
		return nil, err
	}
	ds, _, err := loader.LoadFile(cfg.Data.Path)
	if err != nil {
		return nil, err
	}
	return sales.NewReconciler(ds), nil
}

// =============================================================================
// SERVE
// =============================================================================

func runServe(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	rc, err := loadDataset(cfg)
	if err != nil {
		return err
	}

	store, err := sqlite.New(cfg.Server.DBPath)
	if err != nil {
		return fmt.Errorf("initialize session store: %w", err)
	}
	defer store.Close()

	handler := api.NewHandler(rc, store, log.Logger)
	handler.BrandImage = cfg.Data.BrandImage

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api.NewRouter(handler, cfg.Server.AllowedOrigins),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", cfg.Server.Addr).
			Str("data", cfg.Data.Path).
			Str("version", version).
			Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}

// =============================================================================
// REPORT
// =============================================================================

func runReport(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	rc, err := loadDataset(cfg)
	if err != nil {
		return err
	}

	st := rc.DefaultState()
	if chain := c.String("chain"); chain != "" {
		if err := rc.SelectChain(st, chain); err != nil {
			return err
		}
	}
	if capacity := c.String("capacity"); capacity != "" {
		if err := rc.SelectCapacity(st, capacity); err != nil {
			return err
		}
	}
	if cols := c.StringSlice("columns"); len(cols) > 0 {
		if err := rc.SelectColumns(st, cols); err != nil {
			return err
		}
	}
	if token := c.String("select"); token != "" {
		if err := rc.ApplyToken(st, token); err != nil {
			return err
		}
	}

	v, err := rc.View(st)
	if err != nil {
		return err
	}
	return writeReport(c.App.Writer, v)
}

func writeReport(out io.Writer, v sales.View) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "Filtered data: %s\n\n", v.Summary())
	if v.ShowMembership {
		fmt.Fprintf(tw, "SKU %s found in chains: %s\n", *v.State.SKU, strings.Join(v.SKUChains, ", "))
		fmt.Fprintf(tw, "Description %q found in chains: %s\n\n", *v.State.Description, strings.Join(v.DescriptionChains, ", "))
	}

	if v.Empty {
		fmt.Fprintln(tw, v.Message)
	} else {
		header := make([]string, len(v.Table.Columns))
		for i, col := range v.Table.Columns {
			header[i] = string(col)
		}
		fmt.Fprintln(tw, strings.Join(header, "\t"))
		for _, row := range v.Table.Rows {
			fmt.Fprintln(tw, strings.Join(row, "\t"))
		}
	}

	for _, kind := range sales.SeriesKinds {
		series, ok := v.Series[kind]
		if !ok {
			continue
		}
		fmt.Fprintf(tw, "\nMonthly sales (%s)\n", kind)
		for _, t := range series {
			fmt.Fprintf(tw, "%s\t%s\n", t.Month, t.Sales)
		}
	}
	return tw.Flush()
}
