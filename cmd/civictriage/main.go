package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rajasatyajit/CivicTriage/config"
	"github.com/rajasatyajit/CivicTriage/internal/classifier"
	"github.com/rajasatyajit/CivicTriage/internal/cluster"
	"github.com/rajasatyajit/CivicTriage/internal/intake"
	"github.com/rajasatyajit/CivicTriage/internal/logger"
	"github.com/rajasatyajit/CivicTriage/internal/models"
	"github.com/rajasatyajit/CivicTriage/internal/scoring"
)

// Version information (set by build)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "civictriage",
	Short: "Priority scoring and triage for citizen-reported civic issues",
	Long: `civictriage scores civic issue reports (potholes, garbage, leaks) from
location, repetition, detected size and reported urgency, and serves the
ranked queue over HTTP.`,
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	// Without a subcommand the service starts, as the container entrypoint expects
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(rankCmd)
	rootCmd.Version = Version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig loads configuration and initializes the logger
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	return cfg, nil
}

// newService wires the scoring engine and intake service over st. geo may
// be nil to classify by coordinates and client-supplied geocodes only.
func newService(cfg *config.Config, st intake.Store, points cluster.PointSource, geo scoring.Geocoder) (*intake.Service, error) {
	vocab := classifier.DefaultVocabulary()
	if path := cfg.Scoring.VocabularyFile; path != "" {
		v, err := classifier.LoadVocabulary(path)
		if err != nil {
			return nil, err
		}
		vocab = v
		logger.Info("Loaded location vocabulary", "path", path, "tiers", len(v.Tiers))
	}

	categories, err := models.NewCategorySet(cfg.Scoring.Categories, cfg.Scoring.FallbackCategory)
	if err != nil {
		return nil, err
	}

	engine := scoring.NewEngine(
		classifier.New(vocab, cfg.Scoring.MajorRoadRadiusM),
		cluster.New(points, cfg.Scoring.ClusterRadiusMeters),
		geo,
		cfg.Scoring.SignalTimeout,
	)

	return intake.New(st, engine, categories, cfg.Intake), nil
}
