package main

import (
	"fmt"

	"github.com/spf13/cobra"

	service "github.com/okian/kickhub/internal/app"
	"github.com/okian/kickhub/internal/domain/analytics"
	"github.com/okian/kickhub/internal/domain/filter"
	"github.com/okian/kickhub/internal/domain/types"
	"github.com/okian/kickhub/internal/report"
)

func newCompareCmd(o *options) *cobra.Command {
	var stadium, comparison, game, stats, kick string
	cmd := &cobra.Command{
		Use:   "compare <player> [<player>...]",
		Short: "Compare archived players side by side",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := service.ComparisonRequest{Stadium: stadium, Players: args}
			var err error
			if req.Comparison, err = optional(comparison, filter.ParseComparisonMode); err != nil {
				return err
			}
			if req.Game, err = optional(game, filter.ParseGameMode); err != nil {
				return err
			}
			if req.Stats, err = optional(stats, analytics.ParseStatsMode); err != nil {
				return err
			}
			if req.Kick, err = optional(kick, filter.ParseKickMode); err != nil {
				return err
			}

			svc, store, err := o.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			view, err := svc.Compare(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("compare: %w", err)
			}
			return report.Tables(cmd.OutOrStdout(), []types.Table{
				report.ComparisonTable(view),
				report.TeammateTable(view),
			})
		},
	}
	cmd.Flags().StringVar(&stadium, "stadium", "", "stadium to compare on (required for any data)")
	cmd.Flags().StringVar(&comparison, "comparison", "", "comparison mode, e.g. \"All-Time\" or \"Common Matches\"")
	cmd.Flags().StringVar(&game, "game", "", "game mode, e.g. \"Entire Match\" or \"While Winning\"")
	cmd.Flags().StringVar(&stats, "stats", "", "stats mode, e.g. \"Shots/Saves\" or \"Passing\"")
	cmd.Flags().StringVar(&kick, "kick", "", "kick mode shown on the field")
	return cmd
}

func optional[M any](label string, parse func(string) (M, error)) (*M, error) {
	if label == "" {
		return nil, nil
	}
	m, err := parse(label)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
