// Package stadium loads stadium geometry from YAML.
//
//	stadiums:
//	  - name: Classic
//	    goalposts:
//	      red:  {mid: {x: -370, y: 0}}
//	      blue: {mid: {x: 370, y: 0}}
package stadium

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/okian/kickhub/internal/domain/model"
	"gopkg.in/yaml.v3"
)

// ErrInvalidStadium is returned for a stadium entry that cannot be used.
var ErrInvalidStadium = errors.New("invalid stadium")

type pointDoc struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type goalpostDoc struct {
	Mid pointDoc `yaml:"mid"`
}

type stadiumDoc struct {
	Name      string                 `yaml:"name"`
	Goalposts map[string]goalpostDoc `yaml:"goalposts"`
}

type fileDoc struct {
	Stadiums []stadiumDoc `yaml:"stadiums"`
}

// Provider serves stadiums by name. The zero value knows no stadiums.
type Provider struct {
	byName map[string]model.Stadium
}

// NewProvider builds a provider from already decoded stadiums.
func NewProvider(stadiums ...model.Stadium) *Provider {
	p := &Provider{byName: make(map[string]model.Stadium, len(stadiums))}
	for _, s := range stadiums {
		p.byName[s.Name] = s
	}
	return p
}

// Load reads a YAML stadium file.
func Load(path string) (*Provider, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open stadiums: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses YAML stadium geometry from r.
func Decode(r io.Reader) (*Provider, error) {
	var doc fileDoc
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode stadiums: %w", err)
	}

	stadiums := make([]model.Stadium, 0, len(doc.Stadiums))
	for i, d := range doc.Stadiums {
		if d.Name == "" {
			return nil, fmt.Errorf("%w: entry %d has no name", ErrInvalidStadium, i)
		}
		s := model.Stadium{Name: d.Name, Goalposts: make(map[model.Team]model.Goalpost, len(d.Goalposts))}
		for team, gp := range d.Goalposts {
			t, err := model.ParseTeam(team)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %w", ErrInvalidStadium, d.Name, err)
			}
			s.Goalposts[t] = model.Goalpost{Mid: model.Point{X: gp.Mid.X, Y: gp.Mid.Y}}
		}
		stadiums = append(stadiums, s)
	}
	return NewProvider(stadiums...), nil
}

// Lookup returns the stadium called name.
func (p *Provider) Lookup(name string) (model.Stadium, bool) {
	if p == nil {
		return model.Stadium{}, false
	}
	s, ok := p.byName[name]
	return s, ok
}

// Names returns every known stadium name, sorted.
func (p *Provider) Names() []string {
	if p == nil {
		return nil
	}
	names := make([]string, 0, len(p.byName))
	for name := range p.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
