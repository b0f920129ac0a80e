package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yoj3289/WeNectProject/internal/logger"
)

var (
	recalculateProjectId int64
	recalculateAll       bool
)

func recalculateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recalculate",
		Short: "Rebuild project current_amount and donor_count from completed donations",
		Long: `Rebuild the cached project aggregates from the donation ledger.

Examples:
  server recalculate --project-id 42
  server recalculate --all`,
		RunE: runRecalculate,
	}
	cmd.Flags().Int64Var(&recalculateProjectId, "project-id", 0, "project to recalculate")
	cmd.Flags().BoolVar(&recalculateAll, "all", false, "recalculate every project")
	return cmd
}

func runRecalculate(cmd *cobra.Command, _ []string) error {
	if recalculateProjectId <= 0 && !recalculateAll {
		return errors.New("either --project-id or --all is required")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx := cmd.Context()
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	ids := []int64{recalculateProjectId}
	if recalculateAll {
		if ids, err = a.aggregate.ProjectIds(ctx); err != nil {
			return err
		}
	}

	failed := 0
	for _, id := range ids {
		snapshot, err := a.donations.RecalculateProjectAggregate(ctx, id)
		if err != nil {
			logger.Error("Recalculate project %d failed: %v", id, err)
			failed++
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "project %d: current_amount=%s donor_count=%d\n",
			snapshot.ProjectId, snapshot.CurrentAmount.String(), snapshot.DonorCount)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d projects failed", failed, len(ids))
	}
	return nil
}
