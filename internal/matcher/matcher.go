// Package matcher resolves name-matching rules to the files of a container.
package matcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/JaimeStill/binder/internal/drive"
)

// ErrEmptyRule indicates a rule with no non-blank substring.
var ErrEmptyRule = errors.New("match rule has no substrings")

// Mode selects how a substring is compared against a file name.
type Mode int

const (
	Prefix Mode = iota
	Suffix
	Contains
)

func (m Mode) String() string {
	switch m {
	case Suffix:
		return "suffix"
	case Contains:
		return "contains"
	default:
		return "prefix"
	}
}

// ParseMode converts a flag or configuration value to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "prefix":
		return Prefix, nil
	case "suffix":
		return Suffix, nil
	case "contains":
		return Contains, nil
	default:
		return Prefix, fmt.Errorf("unknown match mode: %q", s)
	}
}

func (m Mode) match(name, sub string) bool {
	switch m {
	case Suffix:
		return strings.HasSuffix(name, sub)
	case Contains:
		return strings.Contains(name, sub)
	default:
		return strings.HasPrefix(name, sub)
	}
}

// Rule selects files by name. Matching is case-sensitive. When MIMETypes is
// non-empty only files of those types are returned.
type Rule struct {
	Substrings []string
	Mode       Mode
	MIMETypes  []string
	Recursive  bool
}

// Validate reports ErrEmptyRule when no substring is usable.
func (r Rule) Validate() error {
	if len(r.substrings()) == 0 {
		return ErrEmptyRule
	}
	return nil
}

func (r Rule) substrings() []string {
	out := make([]string, 0, len(r.Substrings))
	for _, s := range r.Substrings {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (r Rule) allows(f drive.File) bool {
	return len(r.MIMETypes) == 0 || slices.Contains(r.MIMETypes, f.MIMEType)
}

// Matcher finds files in a drive.
type Matcher struct {
	drive  drive.System
	logger *slog.Logger
}

// New creates a Matcher over sys.
func New(sys drive.System, logger *slog.Logger) *Matcher {
	return &Matcher{
		drive:  sys,
		logger: logger.With("system", "matcher"),
	}
}

// Find returns the files of containerID matching rule, deduplicated by id.
// Substrings are applied in order and each claims the files it matches that
// an earlier substring did not, so the result is grouped by substring and
// ordered by name within a group. Subcontainers are searched depth-first when
// rule.Recursive is set.
//
// Find never fails: an unreadable container yields an empty result and an
// unreadable subcontainer is skipped, both logged.
func (m *Matcher) Find(ctx context.Context, containerID string, rule Rule) []drive.File {
	subs := rule.substrings()
	if len(subs) == 0 {
		m.logger.WarnContext(ctx, "match skipped", "container_id", containerID, "error", ErrEmptyRule)
		return []drive.File{}
	}

	candidates, err := m.collect(ctx, containerID, rule.Recursive)
	if err != nil {
		m.logger.ErrorContext(ctx, "container traversal failed", "container_id", containerID, "error", err)
		return []drive.File{}
	}

	seen := make(map[string]bool, len(candidates))
	matched := make([]drive.File, 0)

	for _, sub := range subs {
		for _, f := range candidates {
			if seen[f.ID] || !rule.allows(f) || !rule.Mode.match(f.Name, sub) {
				continue
			}
			seen[f.ID] = true
			matched = append(matched, f)
		}
	}

	m.logger.DebugContext(
		ctx, "files matched",
		"container_id", containerID,
		"mode", rule.Mode,
		"substrings", subs,
		"candidates", len(candidates),
		"matched", len(matched),
	)
	return matched
}

// collect lists the files of containerID followed, when recursive, by the
// files of each subcontainer depth-first. Only a failure to list the
// top-level container is returned.
func (m *Matcher) collect(ctx context.Context, containerID string, recursive bool) ([]drive.File, error) {
	files, err := m.drive.ListFiles(ctx, containerID)
	if err != nil {
		return nil, err
	}
	if !recursive {
		return files, nil
	}

	visited := map[string]bool{containerID: true}
	return m.descend(ctx, containerID, files, visited), nil
}

func (m *Matcher) descend(ctx context.Context, containerID string, acc []drive.File, visited map[string]bool) []drive.File {
	subs, err := m.drive.ListSubcontainers(ctx, containerID)
	if err != nil {
		m.logger.WarnContext(ctx, "subcontainer listing failed", "container_id", containerID, "error", err)
		return acc
	}

	for _, sub := range subs {
		if visited[sub.ID] {
			continue
		}
		visited[sub.ID] = true

		files, err := m.drive.ListFiles(ctx, sub.ID)
		if err != nil {
			m.logger.WarnContext(ctx, "subcontainer skipped", "container_id", sub.ID, "error", err)
			continue
		}
		acc = append(acc, files...)
		acc = m.descend(ctx, sub.ID, acc, visited)
	}
	return acc
}
