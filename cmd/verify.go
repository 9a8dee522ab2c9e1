package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cliplens/match-cli/internal/model"
	"github.com/cliplens/match-cli/internal/verify"
)

var (
	verifyTier   string
	verifyBy     string
	verifyReason string
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Confirm or dispute a stored match",
	Long:  "Transitions a candidate's verification tier on a completed run: creator or brand confirmation raises confidence, a dispute marks the match contested.",
}

var verifyConfirmCmd = &cobra.Command{
	Use:   "confirm <run-id> <candidate-id>",
	Short: "Confirm a match as creator or brand verified",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return transitionMatch(cmd.Context(), args[0], args[1], func(m model.MatchResult) (model.MatchResult, error) {
			return verify.Confirm(m, model.VerificationTier(verifyTier), verifyBy)
		})
	},
}

var verifyDisputeCmd = &cobra.Command{
	Use:   "dispute <run-id> <candidate-id>",
	Short: "Dispute a match",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return transitionMatch(cmd.Context(), args[0], args[1], func(m model.MatchResult) (model.MatchResult, error) {
			return verify.Dispute(m, verifyReason, verifyBy)
		})
	},
}

// transitionMatch loads a run, applies fn to the named candidate's match, and
// persists the updated result.
func transitionMatch(ctx context.Context, runID, candidateID string, fn func(model.MatchResult) (model.MatchResult, error)) error {
	st, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck
	if err := st.Migrate(ctx); err != nil {
		return err
	}

	run, err := st.GetRun(ctx, runID)
	if err != nil {
		return eris.Wrap(err, "load run")
	}
	if run.Result == nil {
		return eris.Errorf("run %s has no result to verify", runID)
	}

	idx := -1
	for i, c := range run.Result.Candidates {
		if c.Candidate.ID == candidateID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return eris.Errorf("candidate %s not found in run %s", candidateID, runID)
	}

	updated, err := fn(run.Result.Candidates[idx])
	if err != nil {
		return err
	}
	run.Result.Candidates[idx] = updated
	if run.Result.TopMatch != nil && run.Result.TopMatch.Candidate.ID == candidateID {
		run.Result.TopMatch = &run.Result.Candidates[idx]
	}

	if err := st.SaveResult(ctx, runID, run.Result); err != nil {
		return eris.Wrap(err, "save result")
	}

	zap.L().Info("verification updated",
		zap.String("run", runID),
		zap.String("candidate", candidateID),
		zap.String("tier", string(updated.Verification.Tier)))

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(updated.Verification)
}

func init() {
	verifyConfirmCmd.Flags().StringVar(&verifyTier, "tier", string(model.TierCreatorConfirmed), "verification tier (creator_confirmed or brand_verified)")
	verifyConfirmCmd.Flags().StringVar(&verifyBy, "by", "", "who is confirming (required)")
	_ = verifyConfirmCmd.MarkFlagRequired("by")

	verifyDisputeCmd.Flags().StringVar(&verifyReason, "reason", "", "why the match is wrong (required)")
	verifyDisputeCmd.Flags().StringVar(&verifyBy, "by", "", "who is disputing")
	_ = verifyDisputeCmd.MarkFlagRequired("reason")

	verifyCmd.AddCommand(verifyConfirmCmd)
	verifyCmd.AddCommand(verifyDisputeCmd)
	rootCmd.AddCommand(verifyCmd)
}
