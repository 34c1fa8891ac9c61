package descriptor

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/pluginrelease/pkg/errors"
	"github.com/matzehuels/pluginrelease/pkg/module"
)

const yamlModules = `modules:
  - namespace: org.example
    name: app
    version: 1.0.0
    release_line: 0.9.3
    dir: modules/app
    dependencies:
      - {namespace: org.example, name: core, version: 1.0.0}
  - namespace: org.example
    name: core
    version: 1.0.0
`

func TestRead(t *testing.T) {
	jsonModules := `{"modules": [
	  {"namespace": "org.example", "name": "app", "version": "1.0.0", "release_line": "0.9.3",
	   "dir": "modules/app",
	   "dependencies": [{"namespace": "org.example", "name": "core", "version": "1.0.0"}]},
	  {"namespace": "org.example", "name": "core", "version": "1.0.0"}
	]}`

	tests := []struct {
		name   string
		data   string
		format Format
	}{
		{"json", jsonModules, JSON},
		{"yaml", yamlModules, YAML},
	}

	core := module.Identity{Namespace: "org.example", Name: "core", Version: "1.0.0"}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mods, err := Read(strings.NewReader(tt.data), tt.format)
			if err != nil {
				t.Fatalf("Read() error: %v", err)
			}
			if len(mods) != 2 {
				t.Fatalf("Read() = %d modules, want 2", len(mods))
			}
			if mods[0].Identity.Name != "app" || mods[0].ReleaseLine != "0.9.3" {
				t.Errorf("first module = %+v", mods[0])
			}
			if !slices.Equal(mods[0].Dependencies, []module.Identity{core}) {
				t.Errorf("Dependencies = %v", mods[0].Dependencies)
			}
			if mods[1].Identity != core {
				t.Errorf("second module = %v", mods[1].Identity)
			}
		})
	}
}

func TestReadInvalid(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format Format
		code   errors.Code
	}{
		{"bad json", `{"modules": [`, JSON, errors.ErrCodeInvalidInput},
		{"bad yaml", "modules: [", YAML, errors.ErrCodeInvalidInput},
		{"missing version", `{"modules": [{"namespace": "g", "name": "a"}]}`, JSON, errors.ErrCodeInvalidInput},
		{"unsafe name", `{"modules": [{"namespace": "g", "name": "../a", "version": "1"}]}`, JSON, errors.ErrCodeInvalidInput},
		{"bad dependency", `{"modules": [{"namespace": "g", "name": "a", "version": "1", "dependencies": [{"name": "b"}]}]}`, JSON, errors.ErrCodeInvalidInput},
		{"unknown format", `{}`, Format("toml"), errors.ErrCodeUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.data), tt.format)
			if !errors.Is(err, tt.code) {
				t.Errorf("Read() = %v, want code %v", err, tt.code)
			}
		})
	}
}

func TestReadEmptyYAML(t *testing.T) {
	mods, err := Read(strings.NewReader(""), YAML)
	if err != nil || len(mods) != 0 {
		t.Errorf("Read(empty) = %v, %v", mods, err)
	}
}

func TestFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "modules.yaml")
	if err := os.WriteFile(src, []byte(yamlModules), 0o644); err != nil {
		t.Fatal(err)
	}

	mods, err := ReadFile(src)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if mods[0].Dir != filepath.Join(dir, "modules", "app") {
		t.Errorf("Dir = %q, want it resolved against the file", mods[0].Dir)
	}

	for _, name := range []string{"out.json", "out.yml"} {
		out := filepath.Join(dir, name)
		if err := WriteFile(out, mods); err != nil {
			t.Fatalf("WriteFile(%s) error: %v", name, err)
		}
		again, err := ReadFile(out)
		if err != nil {
			t.Fatalf("ReadFile(%s) error: %v", name, err)
		}
		if len(again) != len(mods) || again[0].Identity != mods[0].Identity || !slices.Equal(again[0].Dependencies, mods[0].Dependencies) {
			t.Errorf("%s: round trip mismatch: %+v", name, again)
		}
	}
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"modules.json", JSON, false},
		{"modules.YAML", YAML, false},
		{"modules.yml", YAML, false},
		{"modules.toml", "", true},
	}
	for _, tt := range tests {
		got, err := FormatOf(tt.path)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("FormatOf(%q) = %q, %v", tt.path, got, err)
		}
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	mods := []module.Module{{Identity: module.Identity{Namespace: "g", Name: "a", Version: "1"}}}
	if err := Write(&buf, mods, JSON); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"name": "a"`) || strings.Contains(buf.String(), "dependencies") {
		t.Errorf("Write() = %s", buf.String())
	}
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("ReadFile() = %v, want FILE_NOT_FOUND", err)
	}
}
