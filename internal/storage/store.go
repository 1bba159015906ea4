package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/pairenergy/internal/atoms"
	"github.com/san-kum/pairenergy/internal/energy"
)

const (
	metadataFile = "metadata.json"
	sitesFile    = "sites.csv"
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
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	System    string        `json:"system"`
	Frame     int           `json:"frame"`
	Species   []string      `json:"species,omitempty"`
	Report    energy.Report `json:"report"`
}

// Site is one row of sites.csv.
type Site struct {
	Index     int     `json:"index"`
	Species   string  `json:"species"`
	Component int     `json:"component"`
	Energy    float64 `json:"energy"`
}

func runID(system string, frame int, now time.Time) string {
	base := strings.TrimSuffix(filepath.Base(system), filepath.Ext(system))
	if base == "" || base == "." {
		base = "run"
	}
	return fmt.Sprintf("%s_f%d_%d", base, frame, now.UnixNano())
}

// Save writes the report and, when sites is non-nil, one CSV row per
// particle. sites must have sys.Len() entries.
func (s *Store) Save(system string, frame int, sys atoms.System, report *energy.Report, sites []float64) (string, error) {
	if sites != nil && len(sites) != sys.Len() {
		return "", fmt.Errorf("storage: %d site energies for %d particles", len(sites), sys.Len())
	}

	now := time.Now()
	id := runID(system, frame, now)
	runDir := filepath.Join(s.baseDir, id)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        id,
		Timestamp: now,
		System:    system,
		Frame:     frame,
		Species:   distinctSpecies(sys),
		Report:    *report,
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if sites == nil {
		return id, nil
	}

	csvFile, err := os.Create(filepath.Join(runDir, sitesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write([]string{"index", "species", "component", "energy"}); err != nil {
		return "", err
	}

	comp := 0
	offsets, err := atoms.Offsets(systemCounts(report, sys.Len()))
	if err != nil {
		return "", err
	}
	for i, e := range sites {
		for comp+1 < len(offsets)-1 && i >= offsets[comp+1] {
			comp++
		}
		row := []string{
			strconv.Itoa(i),
			sys.Species(i),
			strconv.Itoa(comp),
			strconv.FormatFloat(e, 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	w.Flush()
	return id, w.Error()
}

// systemCounts drops the surface entry from the report's counts.
func systemCounts(r *energy.Report, n int) []int {
	counts := r.Counts
	if r.Surface && len(counts) > 0 {
		counts = counts[:len(counts)-1]
	}
	if len(counts) == 0 {
		return []int{n}
	}
	return counts
}

func distinctSpecies(sys atoms.System) []string {
	seen := make(map[string]bool)
	var out []string
	for i := 0; i < sys.Len(); i++ {
		sp := sys.Species(i)
		if !seen[sp] {
			seen[sp] = true
			out = append(out, sp)
		}
	}
	return out
}

// List returns every readable run, oldest first.
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

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}

		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(id string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, id, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadSites reads sites.csv. A run saved without sites yields an empty slice.
func (s *Store) LoadSites(id string) ([]Site, error) {
	file, err := os.Open(filepath.Join(s.baseDir, id, sitesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return []Site{}, nil
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = 4

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) < 2 {
		return []Site{}, nil
	}

	sites := make([]Site, 0, len(records)-1)
	for line, record := range records[1:] {
		var site Site
		var errs [3]error
		site.Index, errs[0] = strconv.Atoi(record[0])
		site.Species = record[1]
		site.Component, errs[1] = strconv.Atoi(record[2])
		site.Energy, errs[2] = strconv.ParseFloat(record[3], 64)
		for _, err := range errs {
			if err != nil {
				return nil, fmt.Errorf("storage: %s line %d: %w", sitesFile, line+2, err)
			}
		}
		sites = append(sites, site)
	}

	return sites, nil
}
