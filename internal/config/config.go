package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/tensegrity/internal/sim"
	"github.com/san-kum/tensegrity/internal/structure"
	"github.com/san-kum/tensegrity/internal/vec"
)

const (
	DefaultDt       = 0.001
	DefaultSteps    = 5000
	DefaultGravity  = 9.81
	DefaultMass     = 1.0
	DefaultMaxForce = 1000.0
)

// Config describes one simulation run: stepping parameters plus either a
// named preset structure or an inline node/member definition.
type Config struct {
	Structure      string  `yaml:"structure"`
	Dt             float64 `yaml:"dt"`
	Steps          int     `yaml:"steps"`
	Gravity        float64 `yaml:"gravity"`
	DriftTolerance float64 `yaml:"drift_tolerance"`
	DriftWindow    int     `yaml:"drift_window"`
	Parallel       bool    `yaml:"parallel"`

	// Perturbation is a velocity kick applied to every free node
	// before the run.
	Perturbation []float64 `yaml:"perturbation,omitempty"`

	Nodes   []NodeConfig   `yaml:"nodes,omitempty"`
	Members []MemberConfig `yaml:"members,omitempty"`
}

type NodeConfig struct {
	Position []float64 `yaml:"position"`
	Mass     float64   `yaml:"mass"`
	Fixed    bool      `yaml:"fixed"`
}

type MemberConfig struct {
	Kind       string  `yaml:"kind"`
	Nodes      [2]int  `yaml:"nodes"`
	RestLength float64 `yaml:"rest_length"` // 0 means as built
	Stiffness  float64 `yaml:"stiffness"`
	Damping    float64 `yaml:"damping"`
	MaxForce   float64 `yaml:"max_force"`
}

func DefaultConfig() *Config {
	return &Config{
		Structure:   "prism",
		Dt:          DefaultDt,
		Steps:       DefaultSteps,
		Gravity:     DefaultGravity,
		DriftWindow: 10,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// SimConfig maps the run parameters onto the driver configuration.
func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		Dt:             c.Dt,
		MaxSteps:       c.Steps,
		ValidateState:  true,
		DriftTolerance: c.DriftTolerance,
		DriftWindow:    c.DriftWindow,
		Parallel:       c.Parallel,
	}
}

// Build constructs the structure this config describes: the inline
// definition when present, otherwise the named preset builder. The
// perturbation kick, if any, is applied before return.
func (c *Config) Build() (*structure.Structure, error) {
	var st *structure.Structure
	var err error

	if len(c.Nodes) > 0 {
		st, err = c.buildInline()
	} else {
		st, err = buildPreset(c.Structure)
	}
	if err != nil {
		return nil, err
	}

	if kick, ok := toVec(c.Perturbation); ok {
		structure.Perturb(st, kick)
	} else if c.Perturbation != nil {
		return nil, fmt.Errorf("config: perturbation needs 3 components, got %d", len(c.Perturbation))
	}

	if err := st.Validate(); err != nil {
		return nil, err
	}
	return st, nil
}

func (c *Config) buildInline() (*structure.Structure, error) {
	st := structure.New(vec.Vec3{Z: -c.Gravity})

	for i, nc := range c.Nodes {
		pos, ok := toVec(nc.Position)
		if !ok {
			return nil, fmt.Errorf("config: node %d: position needs 3 components", i)
		}
		mass := nc.Mass
		if mass == 0 {
			mass = DefaultMass
		}
		st.AddNode(pos, mass, nc.Fixed)
	}

	for i, mc := range c.Members {
		a, b := mc.Nodes[0], mc.Nodes[1]
		if a < 0 || a >= len(st.Nodes) || b < 0 || b >= len(st.Nodes) {
			return nil, fmt.Errorf("config: member %d: node index out of range", i)
		}
		maxForce := mc.MaxForce
		if maxForce == 0 {
			maxForce = DefaultMaxForce
		}

		var m *structure.Member
		switch mc.Kind {
		case "cable":
			m = st.AddCable(st.Nodes[a], st.Nodes[b], mc.RestLength, mc.Stiffness, maxForce)
		case "strut":
			m = st.AddStrut(st.Nodes[a], st.Nodes[b], mc.RestLength, mc.Stiffness, maxForce)
		default:
			return nil, fmt.Errorf("config: member %d: unknown kind %q", i, mc.Kind)
		}
		m.Damping = mc.Damping
	}

	return st, nil
}

func toVec(v []float64) (vec.Vec3, bool) {
	if len(v) != 3 {
		return vec.Vec3{}, false
	}
	return vec.Vec3{X: v[0], Y: v[1], Z: v[2]}, true
}
