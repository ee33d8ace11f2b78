package model

// Point is a position on the field.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Goalpost describes a team's goal by its centre point.
type Goalpost struct {
	Mid Point `json:"mid"`
}

// Stadium is the field geometry of a named map.
type Stadium struct {
	Name      string            `json:"stadium"`
	Goalposts map[Team]Goalpost `json:"goalposts"`
}

// Goal returns the goal defended by team t.
func (s *Stadium) Goal(t Team) (Goalpost, bool) {
	if s == nil || s.Goalposts == nil {
		return Goalpost{}, false
	}
	gp, ok := s.Goalposts[t]
	return gp, ok
}

// HasGoalposts reports whether both goals are known.
func (s *Stadium) HasGoalposts() bool {
	_, red := s.Goal(TeamRed)
	_, blue := s.Goal(TeamBlue)
	return red && blue
}

// Kick is a display record: an event plus the colour it is drawn in and the
// player it belongs to.
type Kick struct {
	Color    string `json:"color"`
	Username string `json:"username,omitempty"`
	Event
}
