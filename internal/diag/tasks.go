package diag

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ScratchFile is the file written into the working directory by each run.
const ScratchFile = "ci_job_output.txt"

// maxListed is how many directory entries a report names.
const maxListed = 5

type Tasks struct {
	ScratchFile string   `json:"scratch_file" yaml:"scratch_file"`
	Sum         int      `json:"sum" yaml:"sum"`
	EntryCount  int      `json:"entry_count" yaml:"entry_count"`
	Entries     []string `json:"entries" yaml:"entries"`
}

func runTasks(dir, runID string, now func() time.Time) (Tasks, error) {
	var t Tasks

	path, err := writeScratchFile(dir, runID, now())
	if err != nil {
		return t, err
	}
	t.ScratchFile = path

	t.Sum = Sum(1, 100)

	count, names, err := listDir(dir, maxListed)
	if err != nil {
		return t, err
	}
	t.EntryCount = count
	t.Entries = names
	return t, nil
}

func writeScratchFile(dir, runID string, at time.Time) (string, error) {
	path := filepath.Join(dir, ScratchFile)
	var b strings.Builder
	fmt.Fprintf(&b, "CI job executed at %s\n", at.Format(time.RFC3339))
	fmt.Fprintf(&b, "Run ID: %s\n", runID)
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("write scratch file: %w", err)
	}
	return path, nil
}

// Sum returns from + (from+1) + ... + to, or 0 when to < from.
func Sum(from, to int) int {
	total := 0
	for i := from; i <= to; i++ {
		total += i
	}
	return total
}

// listDir returns the number of entries in dir and the first limit names in sorted order.
func listDir(dir string, limit int) (int, []string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, nil, fmt.Errorf("list directory: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	if len(names) > limit {
		names = names[:limit]
	}
	return len(entries), names, nil
}
