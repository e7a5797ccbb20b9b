package drive

import (
	"context"
	"errors"
	"testing"
)

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{"skip", PolicySkip, false},
		{"Keep", PolicySkip, false},
		{"replace", PolicyReplace, false},
		{" overwrite ", PolicyReplace, false},
		{"error", PolicyError, false},
		{"ask", PolicySkip, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePolicy(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePolicy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParsePolicy(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestCheckCollision(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*Memory, *Container) {
		t.Helper()
		m := NewMemory()
		c, _ := m.CreateContainer(ctx, "", "Out")
		_, _ = m.CreateFile(ctx, c.ID, "Essays.pdf", MIMEPDF, []byte("old"))
		_, _ = m.CreateFile(ctx, c.ID, "Essays.pdf", MIMEPDF, []byte("older"))
		_, _ = m.CreateFile(ctx, c.ID, "Essays.pdf.bak", MIMEPDF, nil)
		return m, c
	}

	t.Run("no collision", func(t *testing.T) {
		m, c := setup(t)
		col, err := CheckCollision(ctx, m, c.ID, "Labs.pdf", PolicyError)
		if err != nil {
			t.Fatalf("CheckCollision() error = %v", err)
		}
		if col.Skip || len(col.Existing) != 0 {
			t.Errorf("unexpected collision: %+v", col)
		}
	})

	t.Run("skip", func(t *testing.T) {
		m, c := setup(t)
		col, err := CheckCollision(ctx, m, c.ID, "Essays.pdf", PolicySkip)
		if err != nil {
			t.Fatalf("CheckCollision() error = %v", err)
		}
		if !col.Skip || len(col.Existing) != 2 {
			t.Errorf("collision = %+v, want skip with 2 existing", col)
		}
		if err := col.Resolve(ctx, m); err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		files, _ := m.ListFiles(ctx, c.ID)
		if len(files) != 3 {
			t.Errorf("skip policy modified destination: %d files", len(files))
		}
	})

	t.Run("replace", func(t *testing.T) {
		m, c := setup(t)
		col, err := CheckCollision(ctx, m, c.ID, "Essays.pdf", PolicyReplace)
		if err != nil {
			t.Fatalf("CheckCollision() error = %v", err)
		}
		if col.Skip {
			t.Error("replace policy should not skip")
		}
		if err := col.Resolve(ctx, m); err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		files, _ := m.ListFiles(ctx, c.ID)
		if len(files) != 1 || files[0].Name != "Essays.pdf.bak" {
			t.Errorf("after replace files = %+v", files)
		}
	})

	t.Run("error", func(t *testing.T) {
		m, c := setup(t)
		if _, err := CheckCollision(ctx, m, c.ID, "Essays.pdf", PolicyError); !errors.Is(err, ErrCollision) {
			t.Errorf("CheckCollision() error = %v, want ErrCollision", err)
		}
	})

	t.Run("missing container", func(t *testing.T) {
		m := NewMemory()
		if _, err := CheckCollision(ctx, m, "gone", "a.pdf", PolicySkip); !errors.Is(err, ErrContainerNotFound) {
			t.Errorf("CheckCollision() error = %v, want ErrContainerNotFound", err)
		}
	})
}

func TestBuildStorageKey(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Essays.pdf", "files/abc/Essays.pdf"},
		{"Unit 1.pdf", "files/abc/Unit%201.pdf"},
		{"../../etc/passwd", "files/abc/passwd"},
		{"", "files/abc/file"},
	}

	for _, tt := range tests {
		if got := buildStorageKey("abc", tt.name); got != tt.want {
			t.Errorf("buildStorageKey(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestParseID(t *testing.T) {
	if v, err := parseID("", ErrNotFound); v != nil || err != nil {
		t.Errorf("parseID(root) = %v, %v", v, err)
	}
	if _, err := parseID("not-a-uuid", ErrContainerNotFound); !errors.Is(err, ErrContainerNotFound) {
		t.Errorf("parseID() error = %v, want ErrContainerNotFound", err)
	}
	if _, err := parseID("2f1c6d4e-8a42-4f0b-9b1e-5a7d3c2e1f00", ErrNotFound); err != nil {
		t.Errorf("parseID(valid) error = %v", err)
	}
}
