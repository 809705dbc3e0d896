package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

var ErrRicNotFound = errors.New("config: ric not found")

// RicConfig is one [[ric]] entry of the RIC configuration file.
type RicConfig struct {
	Name              string   `toml:"name"`
	BaseURL           string   `toml:"base_url"`
	ManagedElementIDs []string `toml:"managed_element_ids"`
}

type ricFile struct {
	Rics []RicConfig `toml:"ric"`
}

// LoadRics reads and validates the RIC configuration file at path.
func LoadRics(path string) ([]RicConfig, error) {
	var raw ricFile
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	rics := make([]RicConfig, 0, len(raw.Rics))
	for _, r := range raw.Rics {
		rics = append(rics, normalize(r))
	}
	if err := ValidateRics(rics); err != nil {
		return nil, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return rics, nil
}

func normalize(r RicConfig) RicConfig {
	r.Name = strings.TrimSpace(r.Name)
	r.BaseURL = strings.TrimRight(strings.TrimSpace(r.BaseURL), "/")
	ids := make([]string, 0, len(r.ManagedElementIDs))
	for _, id := range r.ManagedElementIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	r.ManagedElementIDs = ids
	return r
}

func ValidateRics(rics []RicConfig) error {
	names := make(map[string]struct{}, len(rics))
	for i, r := range rics {
		if err := ValidateRicEntry(r); err != nil {
			return fmt.Errorf("ric[%d] invalid: %w", i, err)
		}
		if _, dup := names[r.Name]; dup {
			return fmt.Errorf("ric[%d] invalid: duplicate name %q", i, r.Name)
		}
		names[r.Name] = struct{}{}
	}
	return nil
}

func ValidateRicEntry(r RicConfig) error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(r.BaseURL) == "" {
		return fmt.Errorf("base_url is required")
	}
	u, err := url.Parse(r.BaseURL)
	if err != nil {
		return fmt.Errorf("base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url must be http or https, got %q", r.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("base_url has no host: %q", r.BaseURL)
	}
	return nil
}

// FindRic returns the entry called name.
func FindRic(rics []RicConfig, name string) (RicConfig, error) {
	for _, r := range rics {
		if r.Name == name {
			return r, nil
		}
	}
	return RicConfig{}, fmt.Errorf("%w: %q", ErrRicNotFound, name)
}

// RicForManagedElement returns the entry managing element id.
func RicForManagedElement(rics []RicConfig, id string) (RicConfig, error) {
	for _, r := range rics {
		for _, me := range r.ManagedElementIDs {
			if me == id {
				return r, nil
			}
		}
	}
	return RicConfig{}, fmt.Errorf("%w: no ric manages element %q", ErrRicNotFound, id)
}

// Change is the difference between two RIC configurations.
type Change struct {
	Added   []RicConfig
	Updated []RicConfig
	Removed []RicConfig
}

func (c Change) Empty() bool {
	return len(c.Added) == 0 && len(c.Updated) == 0 && len(c.Removed) == 0
}

// Diff compares RIC configurations by name.
func Diff(prev, next []RicConfig) Change {
	var out Change
	prevByName := make(map[string]RicConfig, len(prev))
	for _, r := range prev {
		prevByName[r.Name] = r
	}
	nextNames := make(map[string]struct{}, len(next))
	for _, r := range next {
		nextNames[r.Name] = struct{}{}
		old, ok := prevByName[r.Name]
		switch {
		case !ok:
			out.Added = append(out.Added, r)
		case !sameRic(old, r):
			out.Updated = append(out.Updated, r)
		}
	}
	for _, r := range prev {
		if _, ok := nextNames[r.Name]; !ok {
			out.Removed = append(out.Removed, r)
		}
	}
	return out
}

func sameRic(a, b RicConfig) bool {
	if a.BaseURL != b.BaseURL || len(a.ManagedElementIDs) != len(b.ManagedElementIDs) {
		return false
	}
	for i := range a.ManagedElementIDs {
		if a.ManagedElementIDs[i] != b.ManagedElementIDs[i] {
			return false
		}
	}
	return true
}

// ResolvePath makes path relative to the directory of the file referencing it.
func ResolvePath(referencingFile, path string) string {
	path = strings.TrimSpace(path)
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(filepath.Dir(referencingFile), path)
}

// Exists reports whether path names an existing file.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
