package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cliplens/match-cli/internal/model"
	"github.com/cliplens/match-cli/internal/pipeline"
	"github.com/cliplens/match-cli/internal/store"
)

var (
	batchFile  string
	batchLimit int
)

// batchItem is one entry in a batch input file.
type batchItem struct {
	Name           string                   `json:"name"`
	Category       string                   `json:"category,omitempty"`
	Subcategory    string                   `json:"subcategory,omitempty"`
	ReferenceImage string                   `json:"reference_image,omitempty"`
	Observations   []model.ExtractionRecord `json:"observations"`
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Match a batch of detected products from a JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		items, err := loadBatch(batchFile)
		if err != nil {
			return err
		}
		if batchLimit > 0 && len(items) > batchLimit {
			items = items[:batchLimit]
		}

		matcher, tracker, err := initMatcher()
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		err = processBatch(ctx, matcher, st, items, cfg.Batch.MaxConcurrentItems)
		tracker.Log(fmt.Sprintf("batch of %d", len(items)))
		return err
	},
}

// processBatch matches items concurrently. Individual item failures are
// recorded against their runs and do not abort the batch.
func processBatch(ctx context.Context, matcher *pipeline.Matcher, st store.Store, items []batchItem, concurrency int) error {
	if concurrency <= 0 {
		concurrency = 3
	}

	var succeeded, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, it := range items {
		g.Go(func() error {
			item := pipeline.Item{
				Name:           it.Name,
				Category:       it.Category,
				Subcategory:    it.Subcategory,
				ReferenceImage: it.ReferenceImage,
			}
			if _, err := runMatch(gctx, matcher, st, item, it.Observations, rankOptions()); err != nil {
				failed.Add(1)
				zap.L().Error("batch item failed",
					zap.String("product", it.Name),
					zap.Error(err))
				return nil
			}
			succeeded.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "batch interrupted")
	}

	zap.L().Info("batch complete",
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int64("failed", failed.Load()))

	if failed.Load() > 0 {
		return eris.Errorf("batch finished with %d failed items", failed.Load())
	}
	return nil
}

func loadBatch(path string) ([]batchItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read batch file %s", path)
	}

	var items []batchItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, eris.Wrapf(err, "parse batch file %s", path)
	}
	if len(items) == 0 {
		return nil, eris.New("batch file is empty")
	}
	for i, it := range items {
		if it.Name == "" {
			return nil, eris.Errorf("batch item %d has no name", i)
		}
		if len(it.Observations) == 0 {
			return nil, eris.Errorf("batch item %q has no observations", it.Name)
		}
	}
	return items, nil
}

func init() {
	batchCmd.Flags().StringVar(&batchFile, "file", "", "path to JSON batch file (required)")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max number of items to process (0 = all)")
	_ = batchCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(batchCmd)
}
