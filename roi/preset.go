package roi

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Preset is a named, persisted ROI layout. Frame dimensions are recorded so a
// preset drawn against one video can be sanity-checked against another.
type Preset struct {
	PresetName  string    `json:"preset_name"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
	FrameWidth  int       `json:"frame_width"`
	FrameHeight int       `json:"frame_height"`
	ROIs        []ROI     `json:"rois"`
}

// Collection rebuilds an ordered Collection from the preset, preserving the
// stored order and therefore the overlap priority.
func (p Preset) Collection() (*Collection, error) {
	c := NewCollection()
	for _, r := range p.ROIs {
		if err := c.Add(r); err != nil {
			return nil, errors.Wrapf(err, "preset %q", p.PresetName)
		}
	}
	return c, nil
}

// Store persists presets as one JSON file per preset under Dir.
type Store struct {
	Dir string
}

// List returns the names of all stored presets.
func (s Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading preset directory")
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	return names, nil
}

// Load reads one preset by name.
func (s Store) Load(name string) (Preset, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		return Preset{}, errors.Wrapf(err, "loading preset %q", name)
	}
	var p Preset
	if err := json.Unmarshal(data, &p); err != nil {
		return Preset{}, errors.Wrapf(err, "parsing preset %q", name)
	}
	return p, nil
}

// Save writes the preset, creating the store directory if needed.
func (s Store) Save(p Preset) error {
	if p.PresetName == "" {
		return errors.New("preset needs a name")
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return errors.Wrap(err, "creating preset directory")
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "encoding preset %q", p.PresetName)
	}
	if err := os.WriteFile(s.path(p.PresetName), data, 0o644); err != nil {
		return errors.Wrapf(err, "writing preset %q", p.PresetName)
	}
	return nil
}

// Delete removes a stored preset.
func (s Store) Delete(name string) error {
	if err := os.Remove(s.path(name)); err != nil {
		return errors.Wrapf(err, "deleting preset %q", name)
	}
	return nil
}

func (s Store) path(name string) string {
	return filepath.Join(s.Dir, name+".json")
}
