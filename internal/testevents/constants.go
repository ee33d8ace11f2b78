package testevents

import "time"

// HTTP status code constants.
const (
	StatusOK        = 200
	StatusCreated   = 201
	StatusAccepted  = 202
	StatusNoContent = 204
)

// Runner configuration constants.
const (
	PollInterval         = 50 * time.Millisecond
	PercentageMultiplier = 100
)

// Field bounds used for kick coordinates.
const (
	fieldHalfWidth  = 370.0
	fieldHalfHeight = 170.0
)
