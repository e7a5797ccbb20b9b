package sheet

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func equalRows(a, b [][]string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				return false
			}
		}
	}
	return true
}

func TestRead(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		input  string
		want   [][]string
	}{
		{
			name:   "csv ragged",
			format: CSV,
			input:  "Essays,Labs\nEssay,Lab 1\n,Lab 2,extra\n",
			want:   [][]string{{"Essays", "Labs"}, {"Essay", "Lab 1"}, {"", "Lab 2", "extra"}},
		},
		{
			name:   "csv quoted",
			format: CSV,
			input:  "\"Smith, Ada\",u1\n",
			want:   [][]string{{"Smith, Ada", "u1"}},
		},
		{
			name:   "csv byte-order mark",
			format: CSV,
			input:  "\ufeffEssays,Labs\nEssay,Lab\n",
			want:   [][]string{{"Essays", "Labs"}, {"Essay", "Lab"}},
		},
		{
			name:   "csv short input",
			format: CSV,
			input:  "A",
			want:   [][]string{{"A"}},
		},
		{
			name:   "yaml",
			format: YAML,
			input:  "- [Essays, Labs]\n- [Essay, \"Lab 1\"]\n- [\"\", \"2\"]\n",
			want:   [][]string{{"Essays", "Labs"}, {"Essay", "Lab 1"}, {"", "2"}},
		},
		{
			name:   "yaml empty",
			format: YAML,
			input:  "",
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(strings.NewReader(tt.input), tt.format)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !equalRows(got, tt.want) {
				t.Errorf("Read() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReadYAMLInvalid(t *testing.T) {
	if _, err := Read(strings.NewReader("essays: labs\n"), YAML); err == nil {
		t.Error("Read() expected error for a mapping")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "roster.csv")
	if err := os.WriteFile(path, []byte("Name,User\nAda,u1\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	rows, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if want := [][]string{{"Name", "User"}, {"Ada", "u1"}}; !equalRows(rows, want) {
		t.Errorf("Load() = %q, want %q", rows, want)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load("roster.xlsx"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Load(xlsx) error = %v, want %v", err, ErrUnsupportedFormat)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load(missing) error = %v, want %v", err, os.ErrNotExist)
	}
}
