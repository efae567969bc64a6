package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Runs archives simulation outputs on disk for later listing, plotting,
// and export: one directory per run with metadata.json and series.csv.
type Runs struct {
	baseDir string
}

func NewRuns(baseDir string) *Runs {
	return &Runs{baseDir: baseDir}
}

func (r *Runs) Init() error {
	return os.MkdirAll(r.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Domain    string             `json:"domain"`
	Timestamp time.Time          `json:"timestamp"`
	Params    map[string]float64 `json:"params"`
	Columns   []string           `json:"columns"`
	Rows      int                `json:"rows"`
}

// Save archives one run. Columns name the series columns; rows are
// row-major values matching them.
func (r *Runs) Save(domain string, params map[string]float64, columns []string, rows [][]float64) (string, error) {
	runID := fmt.Sprintf("%s_%d", domain, time.Now().Unix())
	runDir := filepath.Join(r.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Domain:    domain,
		Timestamp: time.Now(),
		Params:    params,
		Columns:   columns,
		Rows:      len(rows),
	}

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

	csvFile, err := os.Create(filepath.Join(runDir, "series.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if err := w.Write(columns); err != nil {
		return "", err
	}
	for _, row := range rows {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = strconv.FormatFloat(v, 'f', 6, 64)
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func (r *Runs) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(r.baseDir)
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
		data, err := os.ReadFile(filepath.Join(r.baseDir, entry.Name(), "metadata.json"))
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

func (r *Runs) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(r.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadSeries reads the archived series back as column names plus rows.
func (r *Runs) LoadSeries(runID string) ([]string, [][]float64, error) {
	file, err := os.Open(filepath.Join(r.baseDir, runID, "series.csv"))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	cr := csv.NewReader(file)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, [][]float64{}, nil
	}

	columns := records[0]
	rows := make([][]float64, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make([]float64, 0, len(record))
		for _, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				continue
			}
			row = append(row, v)
		}
		rows = append(rows, row)
	}
	return columns, rows, nil
}
