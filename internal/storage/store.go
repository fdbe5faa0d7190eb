// Package storage persists flow runs under a data directory, one
// directory per run: metadata.json, trajectory.csv and, when a search
// was part of the run, fixedpoints.json. Persistence is strictly a CLI
// concern; the core packages never touch the filesystem.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/rgflow/internal/flow"
	"github.com/san-kum/rgflow/internal/stability"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string      `json:"id"`
	Timestamp   time.Time   `json:"timestamp"`
	Params      flow.Params `json:"params"`
	MuStart     float64     `json:"mu_start"`
	MuEnd       float64     `json:"mu_end"`
	Tol         float64     `json:"tol"`
	Truncated   bool        `json:"truncated"`
	Reason      string      `json:"reason"`
	Steps       int         `json:"steps"`
	Rejected    int         `json:"rejected"`
	FixedPoints int         `json:"fixed_points"`
}

// PointRecord is the serialized form of a stability report. Complex
// eigenvalues are stored as [re, im] pairs.
type PointRecord struct {
	Point       flow.Coupling `json:"point"`
	Residual    float64       `json:"residual"`
	Seed        flow.Coupling `json:"seed"`
	Eigenvalues [3][2]float64 `json:"eigenvalues"`
	Label       string        `json:"label"`
}

func recordOf(r stability.Report) PointRecord {
	rec := PointRecord{
		Point:    r.Point.Point,
		Residual: r.Point.Residual,
		Seed:     r.Point.Seed,
		Label:    string(r.Label),
	}
	for i, e := range r.Eigenvalues {
		rec.Eigenvalues[i] = [2]float64{real(e), imag(e)}
	}
	return rec
}

// Save writes one run. traj and reports may each be nil when the run
// only did the other half of the work.
func (s *Store) Save(name string, meta RunMetadata, traj *flow.Trajectory, reports []stability.Report) (string, error) {
	runID := fmt.Sprintf("%s_%d", name, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = time.Now()
	if traj != nil {
		meta.Truncated = traj.Truncated
		meta.Reason = traj.Reason
		meta.Steps = traj.Steps
		meta.Rejected = traj.Rejected
	}
	meta.FixedPoints = len(reports)

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if traj != nil {
		if err := s.writeTrajectory(runDir, traj); err != nil {
			return "", err
		}
	}

	if reports != nil {
		records := make([]PointRecord, len(reports))
		for i, r := range reports {
			records[i] = recordOf(r)
		}
		data, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return "", err
		}
		if err := os.WriteFile(filepath.Join(runDir, "fixedpoints.json"), data, 0644); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func (s *Store) writeTrajectory(runDir string, traj *flow.Trajectory) error {
	csvFile, err := os.Create(filepath.Join(runDir, "trajectory.csv"))
	if err != nil {
		return err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	header := []string{"mu", flow.Names[0], flow.Names[1], flow.Names[2]}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, sample := range traj.Samples {
		row := make([]string, 0, 4)
		row = append(row, strconv.FormatFloat(sample.Mu, 'g', -1, 64))
		for _, v := range sample.Point {
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}

		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (s *Store) LoadTrajectory(runID string) (*flow.Trajectory, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "trajectory.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	traj := &flow.Trajectory{
		Samples:   make([]flow.Sample, 0, len(records)),
		Truncated: meta.Truncated,
		Reason:    meta.Reason,
		Steps:     meta.Steps,
		Rejected:  meta.Rejected,
	}

	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) != 4 {
			continue
		}

		mu, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}

		var point flow.Coupling
		ok := true
		for j := 0; j < 3; j++ {
			v, err := strconv.ParseFloat(record[j+1], 64)
			if err != nil {
				ok = false
				break
			}
			point[j] = v
		}
		if !ok {
			continue
		}

		traj.Samples = append(traj.Samples, flow.Sample{Mu: mu, Point: point})
	}

	return traj, nil
}

func (s *Store) LoadFixedPoints(runID string) ([]PointRecord, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "fixedpoints.json"))
	if err != nil {
		return nil, err
	}

	var records []PointRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}

	return records, nil
}
