package storage

import (
	"encoding/json"
	"io"
)

type ExportData struct {
	RunMetadata
	Sites []Site `json:"sites"`
}

// ExportJSON writes a run and its sites as one indented JSON document.
func (s *Store) ExportJSON(w io.Writer, id string) error {
	meta, err := s.Load(id)
	if err != nil {
		return err
	}
	sites, err := s.LoadSites(id)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(ExportData{RunMetadata: *meta, Sites: sites})
}
