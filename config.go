package wad2

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Options configures an import session.
type Options struct {
	// EmitSuffix is the filename suffix identifying companion glow
	// images for loose textures, e.g. "_luma".
	EmitSuffix string `yaml:"emit_suffix"`
	// CutOutLuma blacks fullbright texels out of the color buffer so
	// only the emission buffer carries them.
	CutOutLuma bool `yaml:"cut_out_luma"`
	// RelativeNaming names loose images by their path below BasePath
	// instead of the bare file name.
	RelativeNaming bool   `yaml:"relative_naming"`
	BasePath       string `yaml:"base_path"`
}

// DefaultOptions returns the options an empty config resolves to.
func DefaultOptions() Options {
	return Options{EmitSuffix: "_luma"}
}

// LoadOptions reads a YAML options file. Unset fields keep their
// defaults.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()
	data, err := os.ReadFile(path)
	if err != nil {
		return opts, err
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, err
	}
	if opts.EmitSuffix == "" {
		opts.EmitSuffix = "_luma"
	}
	return opts, nil
}
