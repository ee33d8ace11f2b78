package service

import (
	"time"

	"github.com/okian/kickhub/internal/adapters/repository"
	"github.com/okian/kickhub/internal/adapters/transport"
	"github.com/okian/kickhub/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLog sets the live transport.
func WithLog(l transport.Log) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithStore sets the historical store.
func WithStore(st repository.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.store = st
		}
	}
}

// WithStadiums sets the stadium geometry provider.
func WithStadiums(p StadiumProvider) Option {
	return func(s *Service) {
		if p != nil {
			s.stadiums = p
		}
	}
}

// WithTickInterval sets how often each session folds one record.
func WithTickInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.tick = d
		}
	}
}

// WithDedupeSize bounds each session's redelivery window.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLegacyZeroSwallow makes live sessions treat zero scores and times as absent.
func WithLegacyZeroSwallow(enabled bool) Option {
	return func(s *Service) {
		s.legacyZero = enabled
	}
}

// WithTiesAsWins counts tied matches as wins in comparison records.
func WithTiesAsWins(enabled bool) Option {
	return func(s *Service) {
		s.tiesAsWins = enabled
	}
}

// WithTopTeammates sets how many teammates comparison cards rank.
func WithTopTeammates(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.topTeammates = n
		}
	}
}

// WithMaxNameChars sets the display name limit of live tables.
func WithMaxNameChars(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxNameChars = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
