// SPDX-License-Identifier: MIT

package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

var (
	assignmentHeader = []string{"GEOID", "district"}
	statsHeader      = []string{"step", "cut_edges", "min_pop", "max_pop", "pop_range"}
)

// CSV writes run_<id>.csv (final assignment) and stats_<id>.csv (per-step
// statistics) into a directory, plus districts_<id>.csv (district,
// population, w_mean_<attr>) when the run carries weighted means. Distinct runs write distinct files, so
// concurrent writes need no locking.
type CSV struct {
	dir string
}

// NewCSV creates dir if needed and returns a CSV sink writing into it.
func NewCSV(dir string) (*CSV, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("sink: create %s: %w", dir, err)
	}

	return &CSV{dir: dir}, nil
}

// AssignmentPath returns the assignment file of run.
func (c *CSV) AssignmentPath(run int) string {
	return filepath.Join(c.dir, fmt.Sprintf("run_%d.csv", run))
}

// StatsPath returns the statistics file of run.
func (c *CSV) StatsPath(run int) string {
	return filepath.Join(c.dir, fmt.Sprintf("stats_%d.csv", run))
}

// DistrictsPath returns the per-district file of run.
func (c *CSV) DistrictsPath(run int) string {
	return filepath.Join(c.dir, fmt.Sprintf("districts_%d.csv", run))
}

// Write implements Sink.
func (c *CSV) Write(_ context.Context, r Result) error {
	rows, err := r.Rows()
	if err != nil {
		return err
	}
	records := make([][]string, 0, len(rows)+1)
	records = append(records, assignmentHeader)
	for _, row := range rows {
		records = append(records, []string{row[0], row[1]})
	}
	if err := writeAll(c.AssignmentPath(r.RunID), records); err != nil {
		return err
	}

	records = make([][]string, 0, len(r.Steps)+1)
	records = append(records, statsHeader)
	for _, s := range r.Steps {
		records = append(records, []string{
			strconv.Itoa(s.Step),
			strconv.Itoa(s.CutEdges),
			strconv.FormatInt(s.MinPop, 10),
			strconv.FormatInt(s.MaxPop, 10),
			strconv.FormatInt(s.PopRange, 10),
		})
	}

	if err := writeAll(c.StatsPath(r.RunID), records); err != nil {
		return err
	}

	districts, err := r.Districts()
	if err != nil || districts == nil {
		return err
	}
	records = make([][]string, 0, len(districts)+1)
	records = append(records, []string{"district", "population", "w_mean_" + r.WeightedAttr})
	for _, d := range districts {
		records = append(records, []string{d[0], d[1], d[2]})
	}

	return writeAll(c.DistrictsPath(r.RunID), records)
}

// Close implements Sink.
func (c *CSV) Close() error { return nil }

func writeAll(path string, records [][]string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("sink: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("sink: close %s: %w", path, cerr)
		}
	}()
	if err := csv.NewWriter(f).WriteAll(records); err != nil {
		return fmt.Errorf("sink: write %s: %w", path, err)
	}

	return nil
}
