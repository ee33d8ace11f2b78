package model

// Record is one child of a live stream: the log key it was stored under and
// the event it carries. Keys sort in append order.
type Record struct {
	Key   string `json:"key"`
	Event Event  `json:"event"`
}
