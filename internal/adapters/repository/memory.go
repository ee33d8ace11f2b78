package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/okian/kickhub/internal/domain/model"
)

// MemoryStore keeps the archive in process.
type MemoryStore struct {
	mu       sync.RWMutex
	kicks    map[string]model.Event
	byPlayer map[string]*model.KickResult
	finals   map[string]model.FinalScore
	children map[string][]string
	messages map[string]map[string]struct{}
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		kicks:    make(map[string]model.Event),
		byPlayer: make(map[string]*model.KickResult),
		finals:   make(map[string]model.FinalScore),
		children: make(map[string][]string),
		messages: make(map[string]map[string]struct{}),
	}
}

func (s *MemoryStore) player(name string) *model.KickResult {
	kr, ok := s.byPlayer[name]
	if !ok {
		empty := model.EmptyKickResult(name)
		kr = &empty
		s.byPlayer[name] = kr
	}
	return kr
}

func (s *MemoryStore) PlayerKicks(_ context.Context, name string) (model.KickResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	kr, ok := s.byPlayer[name]
	if !ok {
		return model.KickResult{}, fmt.Errorf("%s: %w", name, ErrPlayerNotFound)
	}
	out := model.EmptyKickResult(name)
	for id, e := range kr.From {
		out.From[id] = e
	}
	for id, e := range kr.To {
		out.To[id] = e
	}
	return out, nil
}

func (s *MemoryStore) FinalScores(_ context.Context, matchIDs []string) (map[string]model.FinalScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]model.FinalScore, len(matchIDs))
	for _, id := range matchIDs {
		if f, ok := s.finals[id]; ok {
			out[id] = f
		}
	}
	return out, nil
}

func (s *MemoryStore) Players(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.byPlayer))
	for name := range s.byPlayer {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *MemoryStore) SaveKicks(_ context.Context, kicks []model.Record) error {
	for _, r := range kicks {
		if err := validateKick(r); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.save(kicks)
	return nil
}

func (s *MemoryStore) ReplaceMatch(_ context.Context, matchID string, kicks []model.Record) error {
	for _, r := range kicks {
		if err := validateKick(r); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.kicks {
		if e.MatchID == matchID {
			s.unindex(id, e)
			delete(s.kicks, id)
		}
	}
	s.save(kicks)
	return nil
}

func (s *MemoryStore) save(kicks []model.Record) {
	for _, r := range kicks {
		if old, ok := s.kicks[r.Key]; ok {
			s.unindex(r.Key, old)
		}
		s.kicks[r.Key] = r.Event
		if r.Event.FromName != "" {
			s.player(r.Event.FromName).From[r.Key] = r.Event
		}
		if r.Event.ToName != "" {
			s.player(r.Event.ToName).To[r.Key] = r.Event
		}
	}
}

// unindex drops kick id from both players' histories. A player left with
// no kicks leaves the archive.
func (s *MemoryStore) unindex(id string, e model.Event) { //nolint:gocritic // events are values on the wire
	for _, name := range []string{e.FromName, e.ToName} {
		kr, ok := s.byPlayer[name]
		if !ok {
			continue
		}
		delete(kr.From, id)
		delete(kr.To, id)
		if len(kr.From) == 0 && len(kr.To) == 0 {
			delete(s.byPlayer, name)
		}
	}
}

func (s *MemoryStore) SaveFinalScore(_ context.Context, matchID string, score model.FinalScore) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finals[matchID] = score
	return nil
}

func (s *MemoryStore) SaveMessage(_ context.Context, stream, child, msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := stream + "/" + child
	set, ok := s.messages[key]
	if !ok {
		set = make(map[string]struct{})
		s.messages[key] = set
		s.children[stream] = append(s.children[stream], child)
	}
	set[msg] = struct{}{}
	return nil
}

func (s *MemoryStore) Children(_ context.Context, stream string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.children[stream]...), nil
}

func (s *MemoryStore) HasMessage(_ context.Context, stream, child, msg string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.messages[stream+"/"+child][msg]
	return ok, nil
}

func (s *MemoryStore) Close() error { return nil }
