// Package repository defines the historical store: archived kicks indexed by
// player, final scores by match, and the messages posted in each live stream.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/kickhub/internal/domain/model"
	"github.com/okian/kickhub/pkg/metrics"
)

// MatchIDMessage is the chat line a room posts when a match is archived.
const MatchIDMessage = "Match ID: %s"

// Index enumerates a live stream's children and the messages posted in them.
type Index interface {
	// Children returns the child ids of stream in creation order.
	Children(ctx context.Context, stream string) ([]string, error)

	// HasMessage reports whether msg was posted in stream/child.
	HasMessage(ctx context.Context, stream, child, msg string) (bool, error)
}

// Store provides read/write access to the historical archive.
type Store interface {
	Index

	// PlayerKicks returns every archived kick a player made or received.
	// Returns ErrPlayerNotFound if the player never appears in the archive.
	PlayerKicks(ctx context.Context, name string) (model.KickResult, error)

	// FinalScores returns the final score of each known match among ids.
	FinalScores(ctx context.Context, matchIDs []string) (map[string]model.FinalScore, error)

	// Players returns every player name in the archive, sorted.
	Players(ctx context.Context) ([]string, error)

	// SaveKicks archives kicks keyed by their record key. Saving an existing
	// key replaces it.
	SaveKicks(ctx context.Context, kicks []model.Record) error

	// ReplaceMatch atomically drops every archived kick of matchID and saves
	// kicks in their place.
	ReplaceMatch(ctx context.Context, matchID string, kicks []model.Record) error

	SaveFinalScore(ctx context.Context, matchID string, score model.FinalScore) error

	// SaveMessage records a message posted in stream/child.
	SaveMessage(ctx context.Context, stream, child, msg string) error

	Close() error
}

// FindStreamForMatch scans stream's children for the one announcing matchID
// and returns its id. The scan stops at the first hit.
func FindStreamForMatch(ctx context.Context, idx Index, stream, matchID string) (string, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency("find_stream", float64(time.Since(start).Microseconds())/1000)
	}()

	children, err := idx.Children(ctx, stream)
	if err != nil {
		return "", fmt.Errorf("list children of %s: %w", stream, err)
	}
	msg := fmt.Sprintf(MatchIDMessage, matchID)
	for _, child := range children {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		ok, err := idx.HasMessage(ctx, stream, child, msg)
		if err != nil {
			return "", fmt.Errorf("scan %s/%s: %w", stream, child, err)
		}
		if ok {
			return child, nil
		}
	}
	return "", fmt.Errorf("match %s in %s: %w", matchID, stream, ErrNotFound)
}

func validateKick(r model.Record) error { //nolint:gocritic // records are values on the wire
	switch {
	case r.Key == "":
		return fmt.Errorf("%w: empty id", ErrInvalidKick)
	case r.Event.FromName == "" && r.Event.ToName == "":
		return fmt.Errorf("%w: %s has no players", ErrInvalidKick, r.Key)
	}
	return nil
}
