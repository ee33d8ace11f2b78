package live

import (
	"github.com/okian/kickhub/internal/domain/format"
	"github.com/okian/kickhub/internal/domain/model"
)

// ViolationKind classifies a data integrity signal raised while folding.
type ViolationKind string

const (
	// ViolationNegativeCounter: a correction found no save to undo.
	ViolationNegativeCounter ViolationKind = "negative_counter"
	// ViolationScoreRegression: an event carried a lower score than the running one.
	ViolationScoreRegression ViolationKind = "score_regression"
	// ViolationClockRegression: possession would have been credited negative time.
	ViolationClockRegression ViolationKind = "clock_regression"
	// ViolationUnknownTeam: a shot named no valid shooting team and was drawn
	// as a blue shot.
	ViolationUnknownTeam ViolationKind = "unknown_team"
)

// Violation describes one integrity signal. Folding always continues.
type Violation struct {
	Kind   ViolationKind
	Team   model.Team
	Player string
	Field  string
}

// Reducer folds events into a MatchState. It holds no per-match state, so one
// Reducer may serve many streams as long as each MatchState has one writer.
type Reducer struct {
	stadiums    StadiumLookup
	legacyZero  bool
	onViolation func(Violation)
}

// NewReducer creates a reducer. Legacy zero swallowing is on by default.
func NewReducer(opts ...Option) *Reducer {
	r := &Reducer{
		legacyZero:  true,
		onViolation: func(Violation) {},
	}

	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Step applies one event to s and returns it. A nil state starts a new match.
// Step never fails: fields that cannot be resolved skip their own effect.
func (r *Reducer) Step(s *MatchState, e model.Event) *MatchState { //nolint:gocritic // events are values on the wire
	if s == nil {
		s = NewMatchState()
	}
	// Geometry is looked up before a start event can change the stadium.
	stadium, hasStadium := r.stadium(s.StadiumName)

	s.EventCount++
	from := s.player(e.FromTeam, e.FromName)
	to := s.player(e.ToTeam, e.ToName)

	r.updateClock(s, e)
	r.applyEffects(e, from, to)
	if hasStadium {
		r.annotate(s, e, stadium)
	}
	r.updatePossession(s, e, from, to)

	switch e.Type {
	case model.KindStart:
		s.StadiumName = e.Stadium
	case model.KindVictory:
		s.IsFinal = true
	}
	return s
}

func (r *Reducer) stadium(name string) (model.Stadium, bool) {
	if name == "" || r.stadiums == nil {
		return model.Stadium{}, false
	}
	return r.stadiums.Lookup(name)
}

// presentInt reports whether an optional field should overwrite running state.
func (r *Reducer) presentInt(v *int) bool {
	return v != nil && (!r.legacyZero || *v != 0)
}

func (r *Reducer) presentFloat(v *float64) bool {
	return v != nil && (!r.legacyZero || *v != 0)
}

func (r *Reducer) updateClock(s *MatchState, e model.Event) { //nolint:gocritic // events are values on the wire
	if r.presentInt(e.ScoreRed) {
		r.raiseScore(&s.Score.Red, *e.ScoreRed, model.TeamRed)
	}
	if r.presentInt(e.ScoreBlue) {
		r.raiseScore(&s.Score.Blue, *e.ScoreBlue, model.TeamBlue)
	}
	if r.presentInt(e.ScoreLimit) {
		s.ScoreLimit = *e.ScoreLimit
	}
	if r.presentFloat(e.TimeLimit) {
		s.TimeLimit = *e.TimeLimit
	}
	if r.presentFloat(e.Time) {
		s.Time = *e.Time
	}
	s.IsOvertime = s.Time > s.TimeLimit
}

// raiseScore keeps the running score non-decreasing.
func (r *Reducer) raiseScore(cur *int, next int, team model.Team) {
	if next < *cur {
		r.onViolation(Violation{Kind: ViolationScoreRegression, Team: team, Field: "score"})
		return
	}
	*cur = next
}

func (r *Reducer) applyEffects(e model.Event, from, to *PlayerStats) { //nolint:gocritic // events are values on the wire
	switch e.Type {
	case model.KindPass:
		if from != nil && to != nil && from.Name != to.Name {
			from.PassesAttempted++
			from.PassesCompleted++
			to.PassesReceived++
		}
	case model.KindSteal:
		if from != nil {
			from.PassesAttempted++
			from.StealsGiven++
		}
		if to != nil {
			to.StealsTaken++
		}
	case model.KindGoal:
		if from != nil {
			from.ShotsTaken++
			from.GoalsScored++
		}
	case model.KindError:
		if from != nil {
			from.GoalsScored++
		}
		if e.Correction && to != nil {
			// Undo the save credited just before; the own goal that follows
			// counts the shot again.
			to.ShotsFaced--
			to.SavesMade--
			to.ErrorsAllowed++
			if to.ShotsFaced < 0 || to.SavesMade < 0 {
				r.onViolation(Violation{Kind: ViolationNegativeCounter, Team: to.Team, Player: to.Name, Field: "savesMade"})
			}
		}
	case model.KindOwnGoal:
		if from != nil {
			from.ShotsFaced++
			from.OwnGoals++
		}
	case model.KindSave:
		if from != nil {
			from.ShotsTaken++
		}
		if to != nil {
			to.ShotsFaced++
			to.SavesMade++
		}
	case model.KindStart, model.KindVictory:
	}
}

// annotate records shots for the field view. A shot without a valid team is
// drawn from the blue side, the same side its colour falls back to.
func (r *Reducer) annotate(s *MatchState, e model.Event, stadium model.Stadium) { //nolint:gocritic // events are values on the wire
	kick := model.Kick{Color: format.TeamColor(e.FromTeam), Event: e}
	side := e.FromTeam
	switch e.Type {
	case model.KindGoal, model.KindError, model.KindOwnGoal:
		if !side.Valid() {
			r.onViolation(Violation{Kind: ViolationUnknownTeam, Player: e.FromName, Field: "fromTeam"})
			side = model.TeamBlue
		}
	}
	switch e.Type {
	case model.KindGoal, model.KindError:
		gp, ok := stadium.Goal(side.Opponent())
		if !ok {
			return
		}
		kick.ToX, kick.ToY = gp.Mid.X, gp.Mid.Y
	case model.KindOwnGoal:
		gp, ok := stadium.Goal(side)
		if !ok {
			return
		}
		kick.ToX, kick.ToY = gp.Mid.X, gp.Mid.Y
	case model.KindSave:
	default:
		return
	}
	s.RecentKicks = append(s.RecentKicks, kick)
}

// updatePossession credits held-ball time to the acting player and hands the
// ball to the recipient.
func (r *Reducer) updatePossession(s *MatchState, e model.Event, from, to *PlayerStats) { //nolint:gocritic // events are values on the wire
	if from == nil {
		return
	}
	if s.Possessor == "" {
		s.Possessor = from.Name
	}

	// The clock update already ran, so a swallowed or missing time leaves
	// the running clock in place.
	at := s.Time
	elapsed := at - s.PossessionGainedAt
	if elapsed < 0 {
		r.onViolation(Violation{Kind: ViolationClockRegression, Team: from.Team, Player: from.Name, Field: "timePossessed"})
		elapsed = 0
	}
	from.TimePossessed += elapsed

	switch {
	case to == nil:
		s.Possessor = ""
	case to.Name != from.Name:
		s.Possessor = to.Name
	}
	s.PossessionGainedAt = at
}
