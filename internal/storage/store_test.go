package storage

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/san-kum/rgflow/internal/flow"
	"github.com/san-kum/rgflow/internal/stability"
)

func testTrajectory() *flow.Trajectory {
	return &flow.Trajectory{
		Samples: []flow.Sample{
			{Mu: 1, Point: flow.Coupling{0.5, 0.5, 0.5}},
			{Mu: 2.718281828459045, Point: flow.Coupling{0.123456789012345, -0.25, 0.75}},
			{Mu: 10, Point: flow.Coupling{1, 1.0000000000000002, 0}},
		},
		Truncated: true,
		Reason:    flow.StopDiverged,
		Steps:     2,
		Rejected:  1,
	}
}

func TestSaveLoadTrajectory(t *testing.T) {
	store := New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	traj := testTrajectory()
	runID, err := store.Save("test", RunMetadata{MuStart: 1, MuEnd: 10, Tol: 1e-8}, traj, nil)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := store.LoadTrajectory(runID)
	if err != nil {
		t.Fatalf("LoadTrajectory: %v", err)
	}

	// Shortest-roundtrip float formatting keeps samples bit-exact.
	if diff := cmp.Diff(traj, loaded); diff != "" {
		t.Errorf("trajectory roundtrip mismatch (-saved +loaded):\n%s", diff)
	}
}

func TestSaveLoadFixedPoints(t *testing.T) {
	store := New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	reports := []stability.Report{
		{
			Point:       flow.FixedPoint{Point: flow.Coupling{0, 0, 0}, Residual: 1e-12, Seed: flow.Coupling{0.5, 0, 0}},
			Eigenvalues: [3]complex128{-1, 1, 1},
			Label:       stability.Saddle,
		},
	}

	runID, err := store.Save("critical", RunMetadata{}, nil, reports)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	records, err := store.LoadFixedPoints(runID)
	if err != nil {
		t.Fatalf("LoadFixedPoints: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}

	rec := records[0]
	if rec.Label != string(stability.Saddle) {
		t.Errorf("label = %q, want saddle", rec.Label)
	}
	if rec.Eigenvalues != [3][2]float64{{-1, 0}, {1, 0}, {1, 0}} {
		t.Errorf("eigenvalues mangled: %v", rec.Eigenvalues)
	}
	if rec.Seed != (flow.Coupling{0.5, 0, 0}) {
		t.Errorf("seed mangled: %v", rec.Seed)
	}
}

func TestListAndLoad(t *testing.T) {
	store := New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	runID, err := store.Save("run", RunMetadata{MuStart: 1, MuEnd: 100}, testTrajectory(), nil)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	runs, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != runID {
		t.Fatalf("List = %+v, want single run %s", runs, runID)
	}
	if !runs[0].Truncated || runs[0].Reason != flow.StopDiverged {
		t.Error("trajectory outcome not recorded in metadata")
	}

	meta, err := store.Load(runID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if meta.MuEnd != 100 {
		t.Errorf("MuEnd = %v, want 100", meta.MuEnd)
	}
}

func TestListEmpty(t *testing.T) {
	store := New(t.TempDir() + "/missing")
	runs, err := store.List()
	if err != nil {
		t.Fatalf("List on missing dir: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("want no runs, got %d", len(runs))
	}
}
