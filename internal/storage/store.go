package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/tensegrity/internal/sim"
	"github.com/san-kum/tensegrity/internal/structure"
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
	ID         string             `json:"id"`
	Structure  string             `json:"structure"`
	Timestamp  time.Time          `json:"timestamp"`
	Dt         float64            `json:"dt"`
	Steps      int                `json:"steps"`
	Nodes      int                `json:"nodes"`
	Members    int                `json:"members"`
	Integrator string             `json:"integrator"`
	Metrics    map[string]float64 `json:"metrics"`
}

func (s *Store) Save(name string, dt float64, integrator string, st *structure.Structure, result *sim.Result, metrics map[string]float64) (string, error) {
	runID := fmt.Sprintf("%s_%d", name, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Structure:  name,
		Timestamp:  time.Now(),
		Dt:         dt,
		Steps:      result.StepsTaken,
		Nodes:      len(st.Nodes),
		Members:    len(st.Members),
		Integrator: integrator,
		Metrics:    metrics,
	}

	metaPath := filepath.Join(runDir, "metadata.json")
	metaFile, err := os.Create(metaPath)
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := writeTrajectory(runDir, result); err != nil {
		return "", err
	}
	if err := writeEnergy(runDir, result); err != nil {
		return "", err
	}

	return runID, nil
}

func writeTrajectory(runDir string, result *sim.Result) error {
	csvFile, err := os.Create(filepath.Join(runDir, "trajectory.csv"))
	if err != nil {
		return err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if len(result.Snapshots) == 0 {
		return nil
	}

	header := []string{"time"}
	for i := range result.Snapshots[0].Positions {
		header = append(header,
			fmt.Sprintf("px%d", i), fmt.Sprintf("py%d", i), fmt.Sprintf("pz%d", i),
			fmt.Sprintf("vx%d", i), fmt.Sprintf("vy%d", i), fmt.Sprintf("vz%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, snap := range result.Snapshots {
		row := []string{strconv.FormatFloat(snap.Time, 'f', 6, 64)}
		for i, p := range snap.Positions {
			v := snap.Velocities[i]
			row = append(row,
				strconv.FormatFloat(p.X, 'f', 6, 64),
				strconv.FormatFloat(p.Y, 'f', 6, 64),
				strconv.FormatFloat(p.Z, 'f', 6, 64),
				strconv.FormatFloat(v.X, 'f', 6, 64),
				strconv.FormatFloat(v.Y, 'f', 6, 64),
				strconv.FormatFloat(v.Z, 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return nil
}

func writeEnergy(runDir string, result *sim.Result) error {
	csvFile, err := os.Create(filepath.Join(runDir, "energy.csv"))
	if err != nil {
		return err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if err := w.Write([]string{"time", "kinetic", "gravitational", "elastic", "total", "drift"}); err != nil {
		return err
	}

	for _, snap := range result.Snapshots {
		row := []string{
			strconv.FormatFloat(snap.Time, 'f', 6, 64),
			strconv.FormatFloat(snap.Energy.Kinetic, 'e', 9, 64),
			strconv.FormatFloat(snap.Energy.Gravitational, 'e', 9, 64),
			strconv.FormatFloat(snap.Energy.Elastic, 'e', 9, 64),
			strconv.FormatFloat(snap.Energy.Total(), 'e', 9, 64),
			strconv.FormatFloat(snap.Drift, 'e', 9, 64),
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

		metaPath := filepath.Join(s.baseDir, entry.Name(), "metadata.json")
		data, err := os.ReadFile(metaPath)
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
	metaPath := filepath.Join(s.baseDir, runID, "metadata.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadTrajectory returns per-node position and velocity rows with their times.
func (s *Store) LoadTrajectory(runID string) ([][]float64, []float64, error) {
	return s.loadCSV(runID, "trajectory.csv")
}

// LoadEnergy returns kinetic, gravitational, elastic, total and drift
// rows with their times.
func (s *Store) LoadEnergy(runID string) ([][]float64, []float64, error) {
	return s.loadCSV(runID, "energy.csv")
}

func (s *Store) loadCSV(runID, name string) ([][]float64, []float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, name))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	if len(records) < 2 {
		return [][]float64{}, []float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	rows := make([][]float64, 0, len(records)-1)

	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) == 0 {
			continue
		}

		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}
		times = append(times, t)

		row := make([]float64, 0, len(record)-1)
		for j := 1; j < len(record); j++ {
			val, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				continue
			}
			row = append(row, val)
		}
		rows = append(rows, row)
	}

	return rows, times, nil
}
