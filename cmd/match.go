package main

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cliplens/match-cli/internal/model"
	"github.com/cliplens/match-cli/internal/pipeline"
	"github.com/cliplens/match-cli/internal/store"
)

var (
	matchName         string
	matchCategory     string
	matchSubcategory  string
	matchObservations string
	matchRefImage     string
	matchNoStore      bool
	matchNoTiebreak   bool
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match one detected product against shopping listings",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		observations, err := loadObservations(matchObservations)
		if err != nil {
			return err
		}

		matcher, tracker, err := initMatcher()
		if err != nil {
			return err
		}

		var st store.Store
		if !matchNoStore {
			st, err = initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
			if err := st.Migrate(ctx); err != nil {
				return eris.Wrap(err, "migrate store")
			}
		}

		item := pipeline.Item{
			Name:           matchName,
			Category:       matchCategory,
			Subcategory:    matchSubcategory,
			ReferenceImage: matchRefImage,
		}
		opts := rankOptions()
		if matchNoTiebreak {
			opts.DisableTiebreak = true
		}

		result, err := runMatch(ctx, matcher, st, item, observations, opts)
		tracker.Log(matchName)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

// runMatch executes one ranking run, recording lifecycle status in the store
// when one is provided.
func runMatch(ctx context.Context, matcher *pipeline.Matcher, st store.Store, item pipeline.Item, observations []model.ExtractionRecord, opts pipeline.Options) (*model.MatchingOutput, error) {
	var runID string
	if st != nil {
		run, err := st.CreateRun(ctx, item.Name)
		if err != nil {
			return nil, eris.Wrap(err, "create run")
		}
		runID = run.ID
		if err := st.UpdateRunStatus(ctx, runID, model.RunStatusSearching); err != nil {
			zap.L().Warn("update run status failed", zap.String("run", runID), zap.Error(err))
		}
	}

	result, err := matcher.Rank(ctx, item, observations, opts)
	if err != nil {
		if st != nil && runID != "" {
			if ferr := st.FailRun(ctx, runID, err.Error()); ferr != nil {
				zap.L().Warn("mark run failed", zap.String("run", runID), zap.Error(ferr))
			}
		}
		return nil, eris.Wrap(err, "match run")
	}

	if st != nil && runID != "" {
		if err := st.SaveResult(ctx, runID, result); err != nil {
			return nil, eris.Wrap(err, "save result")
		}
		zap.L().Info("run saved", zap.String("run", runID), zap.String("product", item.Name))
	}
	return result, nil
}

// loadObservations reads frame extraction records from a JSON file, or stdin
// when path is "-".
func loadObservations(path string) ([]model.ExtractionRecord, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "read observations %s", path)
	}

	var records []model.ExtractionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, eris.Wrapf(err, "parse observations %s", path)
	}
	if len(records) == 0 {
		return nil, eris.New("observations file is empty")
	}
	return records, nil
}

func init() {
	matchCmd.Flags().StringVar(&matchName, "name", "", "product name detected in the video (required)")
	matchCmd.Flags().StringVar(&matchCategory, "category", "", "product category hint (e.g. fashion, footwear)")
	matchCmd.Flags().StringVar(&matchSubcategory, "subcategory", "", "product subcategory hint (e.g. tops, sneakers)")
	matchCmd.Flags().StringVar(&matchObservations, "observations", "", "path to JSON file of frame extraction records (required, - for stdin)")
	matchCmd.Flags().StringVar(&matchRefImage, "reference-image", "", "URL of a representative frame for visual tiebreaks")
	matchCmd.Flags().BoolVar(&matchNoStore, "no-store", false, "skip persisting the run")
	matchCmd.Flags().BoolVar(&matchNoTiebreak, "no-tiebreak", false, "skip the visual tiebreak pass")
	_ = matchCmd.MarkFlagRequired("name")
	_ = matchCmd.MarkFlagRequired("observations")
	rootCmd.AddCommand(matchCmd)
}
