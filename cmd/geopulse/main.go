package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/geopulse/geopulse/internal/config"
	"github.com/geopulse/geopulse/internal/logging"
	"github.com/geopulse/geopulse/internal/models"
	"github.com/geopulse/geopulse/internal/server"
	"github.com/geopulse/geopulse/internal/storage/memory"
	pgstore "github.com/geopulse/geopulse/internal/storage/postgres"
	redisstore "github.com/geopulse/geopulse/internal/storage/redis"
	"github.com/geopulse/geopulse/pkg/analyzer"
	"github.com/geopulse/geopulse/pkg/cache"
	"github.com/geopulse/geopulse/pkg/collab"
	"github.com/geopulse/geopulse/pkg/metrics"
	"github.com/geopulse/geopulse/pkg/report"
	"github.com/geopulse/geopulse/pkg/reporter"
	"github.com/geopulse/geopulse/pkg/scoring"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "geopulse",
	Short: "GeoPulse - SEO and GEO website analysis",
	Long: `GeoPulse analyzes websites for traditional search engine optimization
and generative engine optimization (visibility in AI chat and search systems),
and produces scored, shareable reports.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [URL]",
	Short: "Analyze a website and print the scored result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")

		cfg, log, err := bootstrap(cmd)
		if err != nil {
			return err
		}

		a := buildAnalyzer(cfg, log)
		analysis, err := a.Analyze(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		rend, err := reporter.New()
		if err != nil {
			return err
		}
		out, err := rend.Render(analysis, format)
		if err != nil {
			return err
		}
		return emit(out, output)
	},
}

var reportCmd = &cobra.Command{
	Use:   "report [URL]",
	Short: "Analyze a website and create a shareable report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		clientName, _ := cmd.Flags().GetString("client")
		password, _ := cmd.Flags().GetString("password")
		expiresInDays, _ := cmd.Flags().GetInt("expires-in-days")

		cfg, log, err := bootstrap(cmd)
		if err != nil {
			return err
		}

		a := buildAnalyzer(cfg, log)
		analysis, err := a.Analyze(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		store, cleanup, err := buildStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		reports := report.NewService(store, cfg.Reports, log)
		rep, err := reports.Create(cmd.Context(), analysis, report.CreateOptions{
			ClientName:    clientName,
			Password:      password,
			ExpiresInDays: expiresInDays,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Report created: %s\n", rep.ID)
		fmt.Printf("Share URL: %s\n", reports.ShareURL(rep.ID))
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the analysis and report API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; real deployments set the environment directly.
		if err := godotenv.Load(); err != nil {
			godotenv.Load(".env.development")
		}

		cfg, log, err := bootstrap(cmd)
		if err != nil {
			return err
		}

		a := buildAnalyzer(cfg, log)

		store, cleanup, err := buildStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		reports := report.NewService(store, cfg.Reports, log)
		rend, err := reporter.New()
		if err != nil {
			return err
		}

		srv := server.New(cfg.Server, a, reports, rend, log)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return srv.Run(ctx)
	},
}

// bootstrap loads configuration and builds the logger.
func bootstrap(cmd *cobra.Command) (*config.Config, zerolog.Logger, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	if err := cfg.Validate(); err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, logging.New(cfg.Logging), nil
}

func buildAnalyzer(cfg *config.Config, log zerolog.Logger) *analyzer.Analyzer {
	serp := collab.NewSERPClient(cfg.APIs.Serper.Endpoint, cfg.APIs.Serper.APIKey, log)
	pagespeed := collab.NewPageSpeedClient(cfg.APIs.PageSpeed.Endpoint, cfg.APIs.PageSpeed.APIKey, log)
	pages := collab.NewPageFetcher(log)

	gen := metrics.NewGenerator(serp, pagespeed, pages, log)
	calc := scoring.NewCalculator(cfg.Scoring)
	analysisCache := cache.New[*models.CombinedAnalysis](
		cache.WithTTL[*models.CombinedAnalysis](cfg.Cache.TTL),
		cache.WithCapacity[*models.CombinedAnalysis](cfg.Cache.Capacity),
	)
	return analyzer.New(gen, calc, analysisCache, log)
}

// buildStore selects the report store backend from configuration.
func buildStore(ctx context.Context, cfg *config.Config) (report.Store, func(), error) {
	switch cfg.Storage.Type {
	case "redis":
		client, err := redisstore.Connect(ctx, cfg.Storage.Redis)
		if err != nil {
			return nil, nil, err
		}
		return redisstore.NewStore(client, cfg.Reports.ViewLogCap), func() { client.Close() }, nil
	case "postgres":
		pool, err := pgstore.Connect(ctx, cfg.Storage.Postgres.DSN)
		if err != nil {
			return nil, nil, err
		}
		store := pgstore.NewStore(pool, cfg.Reports.ViewLogCap)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, pool.Close, nil
	default:
		return memory.NewStore(cfg.Reports.ViewLogCap), func() {}, nil
	}
}

func emit(content, output string) error {
	if output == "" {
		fmt.Println(content)
		return nil
	}
	if err := os.WriteFile(output, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	fmt.Printf("Saved to %s\n", output)
	return nil
}

func init() {
	analyzeCmd.Flags().String("format", "json", "Output format (json, html, markdown)")
	analyzeCmd.Flags().String("output", "", "Output file")

	reportCmd.Flags().String("client", "", "Client name shown on the report")
	reportCmd.Flags().String("password", "", "Password protecting the report")
	reportCmd.Flags().Int("expires-in-days", 0, "Days until the report expires (0 = never)")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(serveCmd)

	rootCmd.PersistentFlags().String("config", "", "Config file path")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
