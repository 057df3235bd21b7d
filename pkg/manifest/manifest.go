// Package manifest is the declarative, line-oriented package list: one
// spec per line, read and written at config/packages.conf. It is the
// source of truth `apply` drives installs and uninstalls from.
package manifest

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/robfig/cron/v3"
)

const (
	headerComment         = "# pygr declarative package manifest"
	refreshScheduleHeader = "# pygr:refresh-schedule "
)

// Manifest is the on-disk declarative package list at path.
type Manifest struct {
	path string
}

// New returns a Manifest backed by path. The file need not exist yet;
// it is created on first write.
func New(path string) *Manifest {
	return &Manifest{path: path}
}

// rawLines returns every line of the manifest file verbatim (including
// blanks, comments, and the header), or an empty slice if the file does
// not exist yet.
func (m *Manifest) rawLines() ([]string, error) {
	f, err := os.Open(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("manifest: read %s: %w", m.path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("manifest: scan %s: %w", m.path, err)
	}
	return lines, nil
}

func (m *Manifest) writeRawLines(lines []string) error {
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(m.path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("manifest: write %s: %w", m.path, err)
	}
	return nil
}

func isBlankOrComment(line string) bool {
	trimmed := strings.TrimSpace(line)
	return trimmed == "" || strings.HasPrefix(trimmed, "#")
}

// ReadEntries returns every parsed spec entry in the manifest, in file
// order, skipping blank lines, comments, and the header.
func (m *Manifest) ReadEntries() ([]Entry, error) {
	lines, err := m.rawLines()
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if isBlankOrComment(trimmed) {
			continue
		}
		entry, err := ParseEntry(trimmed)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// AddEntry appends spec as a new line if no existing line already carries
// that exact spec text (idempotent).
func (m *Manifest) AddEntry(spec string) error {
	spec = strings.TrimSpace(spec)
	if _, err := ParseEntry(spec); err != nil {
		return err
	}

	lines, err := m.rawLines()
	if err != nil {
		return err
	}
	for _, line := range lines {
		if strings.TrimSpace(line) == spec {
			return nil
		}
	}

	if len(lines) == 0 {
		lines = append(lines, headerComment)
	}
	lines = append(lines, spec)
	return m.writeRawLines(lines)
}

// RemoveByName removes the first non-comment line whose parsed display
// name matches name, returning the removed spec text and true. Returns
// ("", false, nil) if no entry matches.
func (m *Manifest) RemoveByName(name string) (string, bool, error) {
	lines, err := m.rawLines()
	if err != nil {
		return "", false, err
	}

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if isBlankOrComment(trimmed) {
			continue
		}
		entry, perr := ParseEntry(trimmed)
		if perr != nil {
			return "", false, perr
		}
		if entry.DisplayName() != name {
			continue
		}
		remaining := append(append([]string{}, lines[:i]...), lines[i+1:]...)
		if err := m.writeRawLines(remaining); err != nil {
			return "", false, err
		}
		return trimmed, true, nil
	}
	return "", false, nil
}

// WriteEntries overwrites the manifest with a canonical header followed
// by one line per entry. If refreshSchedule is non-empty it is validated
// as a standard 5-field cron expression and recorded as a header comment;
// pygr never acts on it itself — it is advisory for an external scheduler
// invoking `pygr apply`.
func (m *Manifest) WriteEntries(entries []Entry, refreshSchedule string) error {
	lines := []string{headerComment}
	if refreshSchedule != "" {
		if _, err := cron.ParseStandard(refreshSchedule); err != nil {
			return fmt.Errorf("%w: %q: %v", ErrInvalidRefreshSchedule, refreshSchedule, err)
		}
		lines = append(lines, refreshScheduleHeader+refreshSchedule)
	}
	for _, e := range entries {
		lines = append(lines, e.Raw)
	}
	return m.writeRawLines(lines)
}

// RefreshSchedule returns the header's advisory cron expression, or ""
// if the manifest carries none.
func (m *Manifest) RefreshSchedule() (string, error) {
	lines, err := m.rawLines()
	if err != nil {
		return "", err
	}
	for _, line := range lines {
		if strings.HasPrefix(line, refreshScheduleHeader) {
			return strings.TrimSpace(strings.TrimPrefix(line, refreshScheduleHeader)), nil
		}
	}
	return "", nil
}

// Plan is the structured diff apply executes: recipe
// entries present in the manifest but not in the current profile
// generation (ToInstall), and recipe-origin artifact names present in the
// current generation but no longer declared in the manifest (ToRemove).
type Plan struct {
	ToInstall []Entry
	ToRemove  []Entry
}

// Plan compares the manifest's recipe: entries against
// currentRecipeArtifactNames (the distinct artifact names of recipe
// origin in the active profile generation). Distro and remote entries are
// always included in ToInstall, since apply always re-runs them — they
// are not reflected in the profile and so cannot be diffed against it.
func (m *Manifest) Plan(currentRecipeArtifactNames []string) (Plan, error) {
	entries, err := m.ReadEntries()
	if err != nil {
		return Plan{}, err
	}

	present := make(map[string]bool, len(currentRecipeArtifactNames))
	for _, n := range currentRecipeArtifactNames {
		present[n] = true
	}

	declared := make(map[string]bool)
	var plan Plan
	for _, e := range entries {
		if e.Kind == KindRecipe {
			declared[e.Name] = true
			if !present[e.Name] {
				plan.ToInstall = append(plan.ToInstall, e)
			}
			continue
		}
		plan.ToInstall = append(plan.ToInstall, e)
	}

	for _, n := range currentRecipeArtifactNames {
		if !declared[n] {
			plan.ToRemove = append(plan.ToRemove, Entry{Kind: KindRecipe, Name: n})
		}
	}

	return plan, nil
}
