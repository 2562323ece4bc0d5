package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pugetworks/healthmap-cli/internal/geo"
	"github.com/pugetworks/healthmap-cli/internal/inspection"
	"github.com/pugetworks/healthmap-cli/internal/pipeline"
	"github.com/pugetworks/healthmap-cli/internal/store"
)

var (
	runQueryFile string
	runFixture   string
	runOutput    string
	runStrict    bool
)

var runCmd = &cobra.Command{
	Use:   "run [average|highscore|most] [count] [reverse]",
	Short: "Build the ranked inspection map",
	Long:  "Fetches the results page, extracts up to count records, geocodes them, ranks by the sort key, and writes a GeoJSON FeatureCollection.",
	Args:  cobra.MaximumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		key, limit, reverse, err := parseRunArgs(args)
		if err != nil {
			return err
		}

		q, err := loadQuery(runQueryFile)
		if err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		if st != nil {
			defer st.Close()
		}

		p := pipeline.New(
			buildSource(runFixture),
			geo.NewEnricher(buildGeocoder(st)),
			pipeline.Options{Concurrency: cfg.Geocode.Concurrency, Strict: runStrict},
		)

		started := time.Now()
		result, err := p.Run(ctx, q, key, limit, reverse)
		if err != nil {
			return err
		}

		outPath := runOutput
		if outPath == "" {
			outPath = cfg.Output.Path
		}
		out, err := os.Create(outPath)
		if err != nil {
			return eris.Wrapf(err, "create output %s", outPath)
		}
		if err := geo.WriteCollection(out, result.Collection); err != nil {
			out.Close()
			return err
		}
		if err := out.Close(); err != nil {
			return eris.Wrapf(err, "close output %s", outPath)
		}

		if st != nil {
			if _, err := st.RecordRun(ctx, store.Run{
				SortKey:    string(key),
				Limit:      limit,
				Features:   len(result.Collection.Features),
				Skipped:    result.Skipped,
				StartedAt:  started,
				FinishedAt: time.Now(),
			}); err != nil {
				zap.L().Warn("record run failed", zap.Error(err))
			}
		}

		fmt.Printf("wrote %d features to %s (records=%d dropped=%d skipped=%d)\n",
			len(result.Collection.Features), outPath,
			result.Records, result.Dropped, result.Skipped,
		)
		return nil
	},
}

// parseRunArgs interprets the positional arguments: sort key (default
// average), record count (default 10, must be non-negative), and the
// literal "reverse" to flip the sort. Any other third argument leaves the
// sort ascending.
func parseRunArgs(args []string) (geo.SortKey, int, bool, error) {
	key := geo.SortAverage
	if len(args) > 0 {
		k, err := geo.ParseSortKey(args[0])
		if err != nil {
			return "", 0, false, err
		}
		key = k
	}

	limit := inspection.DefaultRecordLimit
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 0 {
			return "", 0, false, eris.Errorf("count must be a non-negative integer, got %q", args[1])
		}
		limit = n
	}

	reverse := len(args) > 2 && args[2] == "reverse"
	return key, limit, reverse, nil
}

func init() {
	runCmd.Flags().StringVar(&runQueryFile, "query-file", "", "YAML file with Results.aspx search parameters")
	runCmd.Flags().StringVar(&runFixture, "fixture", "", "read the results page from a saved file instead of fetching")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "output path (default from config)")
	runCmd.Flags().BoolVar(&runStrict, "strict", false, "abort on the first geocode failure instead of skipping the record")
	rootCmd.AddCommand(runCmd)
}
