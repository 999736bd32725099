package wad2

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if opts.EmitSuffix != "_luma" {
		t.Fatalf("default emit suffix = %q, want %q", opts.EmitSuffix, "_luma")
	}
	if opts.CutOutLuma || opts.RelativeNaming {
		t.Fatalf("boolean options default on: %+v", opts)
	}
}

func TestLoadOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wadtex.yaml")
	data := "emit_suffix: _glow\ncut_out_luma: true\nbase_path: /quake/textures\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	opts, err := LoadOptions(path)
	if err != nil {
		t.Fatalf("LoadOptions failed: %v", err)
	}
	if opts.EmitSuffix != "_glow" || !opts.CutOutLuma || opts.BasePath != "/quake/textures" {
		t.Fatalf("loaded options = %+v", opts)
	}
	if opts.RelativeNaming {
		t.Fatalf("unset field did not keep its default")
	}
}

func TestLoadOptionsEmptySuffix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wadtex.yaml")
	if err := os.WriteFile(path, []byte("emit_suffix: \"\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	opts, err := LoadOptions(path)
	if err != nil {
		t.Fatalf("LoadOptions failed: %v", err)
	}
	if opts.EmitSuffix != "_luma" {
		t.Fatalf("empty suffix not restored to default: %q", opts.EmitSuffix)
	}
}
