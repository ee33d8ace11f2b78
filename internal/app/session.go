package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/kickhub/internal/adapters/mq/queue"
	"github.com/okian/kickhub/internal/adapters/mq/worker"
	"github.com/okian/kickhub/internal/adapters/transport"
	"github.com/okian/kickhub/internal/domain/dedupe"
	"github.com/okian/kickhub/internal/domain/live"
	"github.com/okian/kickhub/internal/domain/model"
	"github.com/okian/kickhub/internal/domain/tables"
	"github.com/okian/kickhub/internal/domain/types"
	"github.com/okian/kickhub/pkg/logger"
	"github.com/okian/kickhub/pkg/metrics"
)

const sessionShutdownTimeout = 5 * time.Second

// Problems a live view reports instead of a field diagram.
const (
	ProblemNoStream         = "No stream name/ID provided."
	ProblemNoStadium        = "No stadium provided from match livestream."
	ProblemUnknownStadium   = "Stadium map data not available for: %s"
	ProblemMatchNotInStream = "The match ID %s was not found in the live stream for %s."
)

// SessionRequest selects the live match to follow. StreamID wins over
// MatchID; with neither, the stream's latest child is followed.
type SessionRequest struct {
	Stream   string `json:"stream"`
	StreamID string `json:"streamId,omitempty"`
	MatchID  string `json:"matchId,omitempty"`
}

// Session follows one live stream child: transport records are deduped,
// queued and folded by a dedicated worker.
type Session struct {
	ID        string
	Stream    string
	StreamID  string
	StartedAt time.Time

	queue   *queue.FIFO
	worker  *worker.LiveWorker
	deduper dedupe.Deduper
	sub     transport.Subscription
	cancel  context.CancelFunc
	logger  logger.Logger

	mu       sync.Mutex
	watchers map[int]func(*live.MatchState)
	nextID   int
}

// SessionView is a read-only picture of a session.
type SessionView struct {
	ID        string           `json:"id"`
	Stream    string           `json:"stream"`
	StreamID  string           `json:"streamId"`
	StartedAt time.Time        `json:"startedAt"`
	Queued    int              `json:"queued"`
	Problem   string           `json:"problem,omitempty"`
	State     *live.MatchState `json:"state"`
}

// StartSession resolves the stream child, subscribes to it and starts folding.
func (s *Service) StartSession(ctx context.Context, req SessionRequest) (SessionView, error) {
	runCtx, err := s.running()
	if err != nil {
		return SessionView{}, err
	}
	if req.Stream == "" {
		return SessionView{}, ErrNoStream
	}
	streamID, err := s.resolveStreamID(ctx, req)
	if err != nil {
		return SessionView{}, err
	}

	id := uuid.NewString()
	lg := s.logger.Named("session").With(
		logger.String("session", id),
		logger.String("stream", req.Stream),
		logger.String("streamId", streamID),
	)
	sess := &Session{
		ID:        id,
		Stream:    req.Stream,
		StreamID:  streamID,
		StartedAt: time.Now().UTC(),
		queue:     queue.NewFIFO(id),
		deduper:   dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize)),
		logger:    lg,
		watchers:  make(map[int]func(*live.MatchState)),
	}
	reducer := live.NewReducer(
		live.WithStadiums(s.stadiums),
		live.WithLegacyZeroSwallow(s.legacyZero),
		live.WithViolationHook(func(v live.Violation) {
			metrics.RecordIntegrityViolation(string(v.Kind))
			lg.Warn(runCtx, "integrity signal",
				logger.String("kind", string(v.Kind)),
				logger.String("team", string(v.Team)),
				logger.String("player", v.Player),
				logger.String("field", v.Field),
			)
		}),
	)
	sess.worker = worker.NewLiveWorker(sess.queue, reducer,
		worker.WithName("live-worker"),
		worker.WithLogger(lg.Named("live-worker")),
		worker.WithTickInterval(s.tick),
		worker.WithOnUpdate(sess.publish),
	)

	sub, err := s.log.Subscribe(ctx, req.Stream, streamID, s.listener(runCtx, sess))
	if err != nil {
		_ = sess.queue.Close()
		return SessionView{}, fmt.Errorf("subscribe %s/%s: %w", req.Stream, streamID, err)
	}
	sess.sub = sub

	var workerCtx context.Context
	workerCtx, sess.cancel = context.WithCancel(runCtx)
	go sess.worker.Run(workerCtx)

	s.mu.Lock()
	s.sessions[id] = sess
	metrics.UpdateActiveSessions(len(s.sessions))
	s.mu.Unlock()

	lg.Info(ctx, "live session started")
	return s.view(sess), nil
}

func (s *Service) resolveStreamID(ctx context.Context, req SessionRequest) (string, error) {
	switch {
	case req.StreamID != "":
		return req.StreamID, nil
	case req.MatchID != "":
		id, err := s.FindStream(ctx, req.Stream, req.MatchID)
		if err != nil {
			return "", fmt.Errorf("%s: %w", fmt.Sprintf(ProblemMatchNotInStream, req.MatchID, req.Stream), err)
		}
		return id, nil
	}
	id, err := s.log.Latest(ctx, req.Stream)
	if err != nil {
		return "", fmt.Errorf("latest match of %s: %w", req.Stream, err)
	}
	return id, nil
}

// listener dedupes redeliveries, archives chat lines and queues the record.
func (s *Service) listener(ctx context.Context, sess *Session) transport.Listener {
	return func(r model.Record) {
		key := dedupe.Key(sess.Stream, sess.StreamID, r.Key)
		if sess.deduper.SeenAndRecord(ctx, key) {
			metrics.RecordEventDuplicate()
			sess.logger.Debug(ctx, "duplicate record skipped", logger.String("key", r.Key))
			return
		}
		if r.Event.Message != "" {
			if err := s.store.SaveMessage(ctx, sess.Stream, sess.StreamID, r.Event.Message); err != nil {
				metrics.RecordErrorByComponent("session", "archive_message")
				sess.logger.Error(ctx, "archiving message failed", logger.Error(err))
			}
		}
		if err := sess.queue.Push(ctx, r); err != nil {
			sess.deduper.Unrecord(ctx, key)
			sess.logger.Warn(ctx, "record not queued", logger.String("key", r.Key), logger.Error(err))
		}
	}
}

// StopSession detaches the listener and stops the session's worker.
func (s *Service) StopSession(ctx context.Context, id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
		metrics.UpdateActiveSessions(len(s.sessions))
	}
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%s: %w", id, ErrSessionNotFound)
	}
	sess.stop(ctx)
	return nil
}

func (sess *Session) stop(ctx context.Context) {
	if sess.sub != nil {
		sess.sub.Detach()
	}
	_ = sess.queue.Close()

	shutdownCtx, cancel := context.WithTimeout(ctx, sessionShutdownTimeout)
	defer cancel()
	if err := sess.worker.Shutdown(shutdownCtx); err != nil {
		sess.logger.Warn(ctx, "worker did not stop in time", logger.Error(err))
	}
	sess.cancel()
	sess.logger.Info(ctx, "live session stopped", logger.Int64("folded", sess.worker.Processed()))
}

func (s *Service) session(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrSessionNotFound)
	}
	return sess, nil
}

// Session returns the current view of a live session.
func (s *Service) Session(id string) (SessionView, error) {
	sess, err := s.session(id)
	if err != nil {
		return SessionView{}, err
	}
	return s.view(sess), nil
}

// Sessions lists running sessions ordered by start time.
func (s *Service) Sessions() []SessionView {
	s.mu.RLock()
	all := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		all = append(all, sess)
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].StartedAt.Before(all[j].StartedAt) })
	out := make([]SessionView, len(all))
	for i, sess := range all {
		out[i] = s.view(sess)
	}
	return out
}

// SessionTables returns the six live tables of a session.
func (s *Service) SessionTables(id string) ([]types.Table, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	return s.RenderTables(sess.worker.Snapshot()), nil
}

// RenderTables builds the six live tables of a snapshot.
func (s *Service) RenderTables(state *live.MatchState) []types.Table {
	return tables.Live(state, tables.WithMaxNameChars(s.maxNameChars))
}

// WatchSession calls fn with every new snapshot of a session until the
// returned cancel function is called.
func (s *Service) WatchSession(id string, fn func(*live.MatchState)) (func(), error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	return sess.watch(fn), nil
}

func (s *Service) view(sess *Session) SessionView {
	snap := sess.worker.Snapshot()
	return SessionView{
		ID:        sess.ID,
		Stream:    sess.Stream,
		StreamID:  sess.StreamID,
		StartedAt: sess.StartedAt,
		Queued:    sess.queue.Len(),
		Problem:   s.Problem(snap),
		State:     snap,
	}
}

// Problem explains why a live field view cannot be drawn, or returns "".
func (s *Service) Problem(state *live.MatchState) string {
	if state == nil || state.StadiumName == "" {
		return ProblemNoStadium
	}
	if _, ok := s.stadiums.Lookup(state.StadiumName); !ok {
		return fmt.Sprintf(ProblemUnknownStadium, state.StadiumName)
	}
	return ""
}

// ProblemFor maps a StartSession error to the message a live view shows.
func ProblemFor(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoStream):
		return ProblemNoStream
	}
	return err.Error()
}

func (sess *Session) watch(fn func(*live.MatchState)) func() {
	sess.mu.Lock()
	id := sess.nextID
	sess.nextID++
	sess.watchers[id] = fn
	sess.mu.Unlock()

	return func() {
		sess.mu.Lock()
		delete(sess.watchers, id)
		sess.mu.Unlock()
	}
}

func (sess *Session) publish(snap *live.MatchState) {
	sess.mu.Lock()
	fns := make([]func(*live.MatchState), 0, len(sess.watchers))
	for _, fn := range sess.watchers {
		fns = append(fns, fn)
	}
	sess.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
