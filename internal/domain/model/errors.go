package model

import "errors"

// Sentinel kinds for model parsing errors.
var (
	ErrUnknownKind = errors.New("unknown event kind")
	ErrUnknownTeam = errors.New("unknown team")
)
