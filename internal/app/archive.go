package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/kickhub/internal/domain/live"
	"github.com/okian/kickhub/internal/domain/model"
	"github.com/okian/kickhub/pkg/logger"
)

// ErrEmptyMatch is returned when a match to archive holds no kicks.
var ErrEmptyMatch = errors.New("match has no kicks")

// ArchiveMatch folds a finished match and saves its kicks to the historical
// store, each stamped with the match id, the stadium, the score and clock
// when it was taken, and a shared recency mark. The final score is saved
// alongside. Archiving the same match again replaces every kick it held
// before.
func (s *Service) ArchiveMatch(ctx context.Context, matchID string, events []model.Event) (int, error) {
	if matchID == "" {
		return 0, fmt.Errorf("%w: empty match id", ErrEmptyMatch)
	}

	r := live.NewReducer(live.WithStadiums(s.stadiums), live.WithLegacyZeroSwallow(s.legacyZero))
	state := live.NewMatchState()
	saved := time.Now().UnixNano()

	kicks := make([]model.Record, 0, len(events))
	for i := range events {
		before := state.Score
		state = r.Step(state, events[i])

		e := events[i]
		if !e.Type.IsKick() || (e.FromName == "" && e.ToName == "") {
			continue
		}
		e.MatchID = matchID
		e.Saved = saved
		e.Stadium = state.StadiumName
		e.ScoreRed = model.Int(before.Red)
		e.ScoreBlue = model.Int(before.Blue)
		e.Time = model.Float(state.Time)
		e.TimeLimit = model.Float(state.TimeLimit)
		kicks = append(kicks, model.Record{Key: fmt.Sprintf("%s-%06d", matchID, i), Event: e})
	}
	if len(kicks) == 0 {
		return 0, fmt.Errorf("%w: %s", ErrEmptyMatch, matchID)
	}

	if err := s.store.ReplaceMatch(ctx, matchID, kicks); err != nil {
		return 0, fmt.Errorf("archive %s kicks: %w", matchID, err)
	}
	final := model.FinalScore{Red: state.Score.Red, Blue: state.Score.Blue}
	if err := s.store.SaveFinalScore(ctx, matchID, final); err != nil {
		return 0, fmt.Errorf("archive %s final score: %w", matchID, err)
	}

	s.logger.Info(ctx, "match archived",
		logger.String("match", matchID),
		logger.Int("kicks", len(kicks)),
		logger.String("stadium", state.StadiumName),
	)
	return len(kicks), nil
}
