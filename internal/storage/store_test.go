package storage

import (
	"context"
	"testing"

	"github.com/san-kum/tensegrity/internal/sim"
	"github.com/san-kum/tensegrity/internal/structure"
	"github.com/san-kum/tensegrity/internal/vec"
)

func runSmall(t *testing.T) (*structure.Structure, *sim.Result) {
	t.Helper()

	st := structure.SpringPair(1.0, 100)
	structure.Perturb(st, vec.Vec3{X: 0.1})

	drv := sim.New(st, nil)
	cfg := sim.DefaultConfig()
	cfg.Dt = 0.001
	cfg.MaxSteps = 50

	result, err := drv.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	return st, result
}

func TestStore_SaveAndLoad(t *testing.T) {
	st, result := runSmall(t)

	store := New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	metrics := map[string]float64{"max_drift": result.MaxDrift}
	runID, err := store.Save("spring", 0.001, "verlet", st, result, metrics)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	meta, err := store.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Structure != "spring" || meta.Integrator != "verlet" {
		t.Errorf("metadata mismatch: %+v", meta)
	}
	if meta.Nodes != len(st.Nodes) || meta.Members != len(st.Members) {
		t.Errorf("counts mismatch: %+v", meta)
	}
	if meta.Steps != result.StepsTaken {
		t.Errorf("steps = %d, want %d", meta.Steps, result.StepsTaken)
	}
	if _, ok := meta.Metrics["max_drift"]; !ok {
		t.Error("metrics not persisted")
	}
}

func TestStore_List(t *testing.T) {
	st, result := runSmall(t)

	store := New(t.TempDir())
	if _, err := store.Save("spring", 0.001, "verlet", st, result, nil); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runs, err := store.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
}

func TestStore_ListEmpty(t *testing.T) {
	store := New(t.TempDir() + "/missing")
	runs, err := store.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestStore_LoadTrajectory(t *testing.T) {
	st, result := runSmall(t)

	store := New(t.TempDir())
	runID, err := store.Save("spring", 0.001, "verlet", st, result, nil)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	rows, times, err := store.LoadTrajectory(runID)
	if err != nil {
		t.Fatalf("load trajectory failed: %v", err)
	}
	if len(rows) != len(result.Snapshots) {
		t.Fatalf("expected %d rows, got %d", len(result.Snapshots), len(rows))
	}
	// Six columns per node.
	if len(rows[0]) != 6*len(st.Nodes) {
		t.Errorf("expected %d columns, got %d", 6*len(st.Nodes), len(rows[0]))
	}
	if times[0] != result.Snapshots[0].Time {
		t.Errorf("time mismatch: %g vs %g", times[0], result.Snapshots[0].Time)
	}
}

func TestStore_LoadEnergy(t *testing.T) {
	st, result := runSmall(t)

	store := New(t.TempDir())
	runID, err := store.Save("spring", 0.001, "verlet", st, result, nil)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	rows, _, err := store.LoadEnergy(runID)
	if err != nil {
		t.Fatalf("load energy failed: %v", err)
	}
	if len(rows) != len(result.Snapshots) {
		t.Fatalf("expected %d rows, got %d", len(result.Snapshots), len(rows))
	}
	if len(rows[0]) != 5 {
		t.Errorf("expected 5 columns, got %d", len(rows[0]))
	}
}

func TestStore_LoadMissingRun(t *testing.T) {
	store := New(t.TempDir())
	if _, err := store.Load("nope"); err == nil {
		t.Error("expected error for missing run")
	}
}
