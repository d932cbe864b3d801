package rules

import (
	"bytes"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/driftforge/runweaver/pkg/errors"
)

// LoadFile reads a rules preset from a TOML file and validates it.
//
// The file format mirrors the Rules struct:
//
//	name = "balanced"
//	min_nodes_per_layer = 2
//	max_nodes_per_layer = 5
//	min_connections_per_node = 1
//	layer_labels = ["The Warrens", "The Starless Gate"]
//
//	[category_weights]
//	combat = 0.45
//	rest = 0.55
func LoadFile(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Rules{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "preset file %s", path)
		}
		return Rules{}, errors.Wrap(errors.ErrCodeInternal, err, "read preset file %s", path)
	}

	var r Rules
	if err := toml.Unmarshal(data, &r); err != nil {
		return Rules{}, errors.Wrap(errors.ErrCodeInvalidPreset, err, "parse preset file %s", path)
	}
	if err := r.Validate(); err != nil {
		return Rules{}, err
	}
	return r, nil
}

// WriteFile writes a rules preset as TOML.
// The value is validated first so the repo never accumulates presets the
// generator would reject.
func WriteFile(r Rules, path string) error {
	if err := r.Validate(); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(r); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode preset %q", r.Name)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write preset file %s", path)
	}
	return nil
}
