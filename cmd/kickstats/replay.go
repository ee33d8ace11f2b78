package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/kickhub/internal/domain/live"
	"github.com/okian/kickhub/internal/domain/tables"
	"github.com/okian/kickhub/internal/report"
)

func newReplayCmd(o *options) *cobra.Command {
	var maxNameChars int
	cmd := &cobra.Command{
		Use:   "replay <events.jsonl>",
		Short: "Fold a match feed and print its live tables",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := readEvents(cmd, args[0])
			if err != nil {
				return err
			}
			stadiums, err := o.stadiums()
			if err != nil {
				return err
			}

			r := live.NewReducer(live.WithStadiums(stadiums), live.WithLegacyZeroSwallow(o.legacyZero))
			state := live.NewMatchState()
			for i := range events {
				state = r.Step(state, events[i])
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d events, score %d-%d", state.EventCount, state.Score.Red, state.Score.Blue)
			if state.StadiumName != "" {
				fmt.Fprintf(out, " on %s", state.StadiumName)
			}
			if state.IsFinal {
				fmt.Fprint(out, " (final)")
			}
			fmt.Fprint(out, "\n\n")
			return report.Tables(out, tables.Live(state, tables.WithMaxNameChars(maxNameChars)))
		},
	}
	cmd.Flags().IntVar(&maxNameChars, "max-name-chars", 20, "truncate player names to this many characters")
	return cmd
}
