package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rajasatyajit/CivicTriage/internal/geocoder"
	"github.com/rajasatyajit/CivicTriage/internal/intake"
	"github.com/rajasatyajit/CivicTriage/internal/models"
	"github.com/rajasatyajit/CivicTriage/internal/scoring"
	"github.com/rajasatyajit/CivicTriage/internal/store"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score one submission offline",
	Long: `Scores a submission JSON file against an in-memory store, optionally
seeded with existing reports for the repetition signal. Nothing is persisted.`,
	RunE: runScore,
}

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Print reports ordered by priority",
	RunE:  runRank,
}

func init() {
	scoreCmd.Flags().StringP("file", "f", "", "submission JSON file (required)")
	scoreCmd.Flags().String("reports", "", "JSON array of existing reports to seed the store with")
	scoreCmd.Flags().Bool("geocode", false, "reverse geocode through the configured geocoder")
	_ = scoreCmd.MarkFlagRequired("file")

	rankCmd.Flags().StringP("file", "f", "", "JSON array of reports (required)")
	_ = rankCmd.MarkFlagRequired("file")
}

func runScore(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	file, _ := cmd.Flags().GetString("file")
	seedFile, _ := cmd.Flags().GetString("reports")
	useGeocoder, _ := cmd.Flags().GetBool("geocode")

	var req intake.SubmitRequest
	if err := readJSON(file, &req); err != nil {
		return err
	}

	st := store.NewInMemoryStore()
	if seedFile != "" {
		var seed []models.Report
		if err := readJSON(seedFile, &seed); err != nil {
			return err
		}
		for _, r := range seed {
			if err := st.InsertReport(cmd.Context(), r); err != nil {
				return fmt.Errorf("seed report %s: %w", r.ID, err)
			}
		}
	}

	var geo scoring.Geocoder
	if useGeocoder && cfg.Geocoder.Enabled {
		geo = geocoder.New(cfg.Geocoder, nil)
	}

	svc, err := newService(cfg, st, st, geo)
	if err != nil {
		return err
	}

	result, err := svc.Preview(cmd.Context(), req)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]interface{}{
		"category": svc.ResolveCategory(req),
		"score":    result,
	})
}

func runRank(cmd *cobra.Command, _ []string) error {
	file, _ := cmd.Flags().GetString("file")

	var reports []models.Report
	if err := readJSON(file, &reports); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tSCORE\tCATEGORY\tID\tTITLE")
	for i, r := range scoring.RankReports(reports) {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\n", i+1, r.PriorityScore, r.Category, r.ID, r.Title())
	}
	return tw.Flush()
}

func readJSON(path string, dst interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
