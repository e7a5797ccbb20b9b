package drive

import (
	"context"
	"fmt"
	"strings"
)

// Policy decides what happens when a write targets a name that already
// exists in the destination container.
type Policy int

const (
	// PolicySkip leaves existing entries untouched and skips the write.
	PolicySkip Policy = iota
	// PolicyReplace trashes every same-named entry before writing.
	PolicyReplace
	// PolicyError fails the write with ErrCollision.
	PolicyError
)

func (p Policy) String() string {
	switch p {
	case PolicyReplace:
		return "replace"
	case PolicyError:
		return "error"
	default:
		return "skip"
	}
}

// ParsePolicy converts a configuration value to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "skip", "keep":
		return PolicySkip, nil
	case "replace", "overwrite":
		return PolicyReplace, nil
	case "error", "fail":
		return PolicyError, nil
	default:
		return PolicySkip, fmt.Errorf("unknown collision policy: %q", s)
	}
}

// Collision is the outcome of checking a write target.
// Skip is set when the write must not happen. Existing holds the entries
// Resolve trashes under PolicyReplace.
type Collision struct {
	Policy   Policy
	Existing []File
	Skip     bool
}

// CheckCollision looks for files named exactly name in containerID and
// applies policy. Under PolicyError a collision is returned as ErrCollision.
// Nothing is modified; call Resolve right before writing.
func CheckCollision(ctx context.Context, sys System, containerID, name string, policy Policy) (Collision, error) {
	c := Collision{Policy: policy}

	files, err := sys.ListFiles(ctx, containerID)
	if err != nil {
		return c, fmt.Errorf("list destination: %w", err)
	}

	for _, f := range files {
		if f.Name == name {
			c.Existing = append(c.Existing, f)
		}
	}

	if len(c.Existing) == 0 {
		return c, nil
	}

	switch policy {
	case PolicySkip:
		c.Skip = true
	case PolicyError:
		return c, fmt.Errorf("%w: %s", ErrCollision, name)
	}
	return c, nil
}

// Resolve trashes the colliding entries recorded under PolicyReplace.
func (c Collision) Resolve(ctx context.Context, sys System) error {
	if c.Policy != PolicyReplace {
		return nil
	}
	for _, f := range c.Existing {
		if err := sys.TrashFile(ctx, f.ID); err != nil {
			return fmt.Errorf("trash existing %s: %w", f.Name, err)
		}
	}
	return nil
}
