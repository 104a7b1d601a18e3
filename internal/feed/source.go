package feed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Orientation is the editorial political leaning of a news source.
type Orientation string

const (
	OrientationLeft        Orientation = "left"
	OrientationCenterLeft  Orientation = "center-left"
	OrientationCenter      Orientation = "center"
	OrientationCenterRight Orientation = "center-right"
	OrientationRight       Orientation = "right"
	OrientationState       Orientation = "state"
)

// Valid reports whether o is one of the known orientations.
func (o Orientation) Valid() bool {
	switch o {
	case OrientationLeft, OrientationCenterLeft, OrientationCenter,
		OrientationCenterRight, OrientationRight, OrientationState:
		return true
	}
	return false
}

// FactCheckRecord grades a source's historical fact-checking performance.
type FactCheckRecord string

const (
	FactCheckExcellent  FactCheckRecord = "excellent"
	FactCheckGood       FactCheckRecord = "good"
	FactCheckMixed      FactCheckRecord = "mixed"
	FactCheckPoor       FactCheckRecord = "poor"
	FactCheckUnreliable FactCheckRecord = "unreliable"
)

// Valid reports whether r is one of the known fact-check grades.
func (r FactCheckRecord) Valid() bool {
	switch r {
	case FactCheckExcellent, FactCheckGood, FactCheckMixed, FactCheckPoor, FactCheckUnreliable:
		return true
	}
	return false
}

// Source describes one configured news outlet. Reference data: looked up per
// feed during ingestion, never mutated.
type Source struct {
	Name            string          `yaml:"name"`
	URL             string          `yaml:"url"`
	RSSURL          string          `yaml:"rss_url"`
	Country         string          `yaml:"country"`
	Orientation     Orientation     `yaml:"orientation"`
	Language        string          `yaml:"language"`
	Trustworthiness int             `yaml:"trustworthiness"`
	FactCheck       FactCheckRecord `yaml:"fact_check_record"`
}

// Validate checks the enumerated and bounded fields of a source entry.
func (s *Source) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("source has no name")
	}
	if s.RSSURL == "" {
		return fmt.Errorf("source %q has no rss_url", s.Name)
	}
	if s.Country == "" {
		return fmt.Errorf("source %q has no country", s.Name)
	}
	if !s.Orientation.Valid() {
		return fmt.Errorf("source %q has unknown orientation %q", s.Name, s.Orientation)
	}
	if !s.FactCheck.Valid() {
		return fmt.Errorf("source %q has unknown fact_check_record %q", s.Name, s.FactCheck)
	}
	if s.Trustworthiness < 0 || s.Trustworthiness > 100 {
		return fmt.Errorf("source %q trustworthiness %d out of range 0-100", s.Name, s.Trustworthiness)
	}
	return nil
}

// SourcesConfig is the YAML source catalog structure:
//
// sources:
//   - name: AP News
//     rss_url: https://...
//     country: US
//     orientation: center
type SourcesConfig struct {
	Sources []Source `yaml:"sources"`
}

// LoadSources reads the source catalog from a YAML file and validates every
// entry. A single malformed entry fails the whole load; this is the
// "malformed configuration" case that is allowed to abort ingestion.
func LoadSources(path string) ([]Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg SourcesConfig
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing sources config %s: %w", path, err)
	}
	for i := range cfg.Sources {
		if err := cfg.Sources[i].Validate(); err != nil {
			return nil, fmt.Errorf("sources config %s: %w", path, err)
		}
	}
	return cfg.Sources, nil
}
