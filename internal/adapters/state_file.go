package adapters

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"livebundle/internal/types"
)

// StagedBundle is a downloaded bundle waiting for install.
type StagedBundle struct {
	PackageID string `yaml:"package_id"`
	BundleID  string `yaml:"bundle_id"`
}

// InstallerStateFile is the persisted form of the file installer state.
type InstallerStateFile struct {
	Current types.InstalledBundleState `yaml:"current"`
	Staged  *StagedBundle              `yaml:"staged,omitempty"`
}

type StateFileAdapter struct {
	Path string
}

func NewStateFileAdapter(path string) StateFileAdapter {
	return StateFileAdapter{Path: path}
}

// Load reads the state file. A missing file is the state of an application
// running its original bundle.
func (a StateFileAdapter) Load() (InstallerStateFile, error) {
	data, err := os.ReadFile(a.Path)
	if errors.Is(err, os.ErrNotExist) {
		return InstallerStateFile{}, nil
	}
	if err != nil {
		return InstallerStateFile{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read installer state").
			WithCause(err)
	}
	var state InstallerStateFile
	if err := yaml.Unmarshal(data, &state); err != nil {
		return InstallerStateFile{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid installer state format").
			WithCause(err)
	}
	return state, nil
}

// Save writes the state file atomically.
func (a StateFileAdapter) Save(state InstallerStateFile) error {
	if a.Path == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("installer state path is empty")
	}
	data, err := yaml.Marshal(state)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode installer state").
			WithCause(err)
	}
	if err := os.MkdirAll(filepath.Dir(a.Path), 0755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create installer state directory").
			WithCause(err)
	}
	tmp := a.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write installer state").
			WithCause(err)
	}
	if err := os.Rename(tmp, a.Path); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to replace installer state").
			WithCause(err)
	}
	return nil
}
