package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/okian/kickhub/internal/adapters/repository"
	"github.com/okian/kickhub/internal/domain/model"
)

func newImportCmd(o *options) *cobra.Command {
	var matchID string
	cmd := &cobra.Command{
		Use:   "import <events.jsonl>",
		Short: "Archive a finished match for comparisons",
		Long: "Archive a finished match: every kick is saved with the match id, stadium, " +
			"score and clock it was taken at, together with the final score.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := readEvents(cmd, args[0])
			if err != nil {
				return err
			}
			if matchID == "" {
				matchID = announcedMatch(events)
			}

			svc, store, err := o.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := svc.ArchiveMatch(cmd.Context(), matchID, events)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "archived %d kicks of match %s\n", n, matchID)
			return nil
		},
	}
	cmd.Flags().StringVar(&matchID, "match", "", "match id (default: taken from the feed's \"Match ID:\" line)")
	return cmd
}

// announcedMatch returns the id from the last "Match ID:" chat line, if any.
func announcedMatch(events []model.Event) string {
	prefix := strings.TrimSuffix(repository.MatchIDMessage, "%s")
	for i := len(events) - 1; i >= 0; i-- {
		if id, ok := strings.CutPrefix(events[i].Message, prefix); ok {
			return strings.TrimSpace(id)
		}
	}
	return ""
}
