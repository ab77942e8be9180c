package config

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/san-kum/tensegrity/internal/structure"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Structure != "prism" {
		t.Errorf("expected structure prism, got %s", cfg.Structure)
	}
	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Steps <= 0 {
		t.Error("steps should be positive")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("pendulum")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Structure != "pendulum" {
		t.Errorf("expected pendulum structure, got %s", cfg.Structure)
	}

	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets()
	if len(presets) == 0 {
		t.Fatal("expected presets")
	}
	for i := 1; i < len(presets); i++ {
		if presets[i-1] >= presets[i] {
			t.Errorf("presets not sorted: %v", presets)
		}
	}
}

func TestBuild_Preset(t *testing.T) {
	for _, name := range ListPresets() {
		cfg := GetPreset(name)
		st, err := cfg.Build()
		if err != nil {
			t.Errorf("preset %s failed to build: %v", name, err)
			continue
		}
		if len(st.Nodes) == 0 {
			t.Errorf("preset %s built an empty structure", name)
		}
	}
}

func TestBuild_UnknownStructure(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Structure = "dome"
	if _, err := cfg.Build(); err == nil {
		t.Error("expected error for unknown structure")
	}
}

func TestBuild_Inline(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Nodes = []NodeConfig{
		{Position: []float64{0, 0, 0}, Fixed: true},
		{Position: []float64{0, 0, -1}, Mass: 1.0},
	}
	cfg.Members = []MemberConfig{
		{Kind: "cable", Nodes: [2]int{0, 1}, RestLength: 0.5, Stiffness: 2000, MaxForce: 1500},
	}

	st, err := cfg.Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if len(st.Nodes) != 2 || len(st.Members) != 1 {
		t.Fatalf("unexpected shape: %d nodes, %d members", len(st.Nodes), len(st.Members))
	}
	if !st.Nodes[0].Fixed || st.Nodes[1].Fixed {
		t.Error("fixed flags lost")
	}
	// Defaulted mass.
	if st.Nodes[0].Mass != DefaultMass {
		t.Errorf("anchor mass = %g, want default %g", st.Nodes[0].Mass, DefaultMass)
	}
	if st.Members[0].Kind != structure.Cable {
		t.Errorf("member kind = %v, want cable", st.Members[0].Kind)
	}
	if math.Abs(st.Gravity.Z+DefaultGravity) > 1e-12 {
		t.Errorf("gravity = %v", st.Gravity)
	}
}

func TestBuild_InlineErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad position", func(c *Config) {
			c.Nodes = []NodeConfig{{Position: []float64{1, 2}}}
		}},
		{"bad member kind", func(c *Config) {
			c.Nodes = []NodeConfig{
				{Position: []float64{0, 0, 0}},
				{Position: []float64{1, 0, 0}},
			}
			c.Members = []MemberConfig{{Kind: "rope", Nodes: [2]int{0, 1}, Stiffness: 1}}
		}},
		{"node index out of range", func(c *Config) {
			c.Nodes = []NodeConfig{{Position: []float64{0, 0, 0}}}
			c.Members = []MemberConfig{{Kind: "cable", Nodes: [2]int{0, 9}, Stiffness: 1}}
		}},
		{"bad perturbation", func(c *Config) {
			c.Structure = "prism"
			c.Perturbation = []float64{1}
		}},
		{"invalid structure", func(c *Config) {
			c.Nodes = []NodeConfig{
				{Position: []float64{0, 0, 0}},
				{Position: []float64{1, 0, 0}},
			}
			// Zero stiffness fails structure validation.
			c.Members = []MemberConfig{{Kind: "cable", Nodes: [2]int{0, 1}}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if _, err := cfg.Build(); err == nil {
				t.Error("expected build error, got nil")
			}
		})
	}
}

func TestLoadSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")

	cfg := GetPreset("prism")
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Structure != cfg.Structure || loaded.Dt != cfg.Dt || loaded.Steps != cfg.Steps {
		t.Errorf("round trip changed config: %+v vs %+v", loaded, cfg)
	}
	if len(loaded.Perturbation) != 3 {
		t.Errorf("perturbation lost: %v", loaded.Perturbation)
	}
}

func TestSimConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Dt = 0.01
	cfg.Steps = 42
	cfg.DriftTolerance = 0.02

	sc := cfg.SimConfig()
	if sc.Dt != 0.01 || sc.MaxSteps != 42 || sc.DriftTolerance != 0.02 {
		t.Errorf("mapping lost values: %+v", sc)
	}
	if !sc.ValidateState {
		t.Error("state validation should default on")
	}
}
