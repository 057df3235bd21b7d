// Package recipe parses and validates the declarative recipe document: a
// human-authored YAML mapping describing one buildable package.
package recipe

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pygr-project/pygr/pkg/version"
)

// SourceKind enumerates the supported remote-repository kinds. Only a
// single kind is currently recognized, matching the original tool's
// GitHub-only source provider.
type SourceKind string

// SourceKindGitHub is the one supported remote-repo kind.
const SourceKindGitHub SourceKind = "github"

// Source is the recipe's `source:` mapping.
type Source struct {
	Type SourceKind `yaml:"type"`
	Repo string     `yaml:"repo"`
	Ref  string     `yaml:"ref"`
}

// CommandList is the shape of the recipe's `build:`/`install:` mappings.
type CommandList struct {
	Commands []string `yaml:"commands,omitempty"`
}

// DependencyTerm is a single dependency string parsed once at load time
// into its name and constraint, so call sites never re-split the raw text.
type DependencyTerm struct {
	Name       string
	Constraint version.Constraint
	raw        string
}

// String returns the original dependency text the term was parsed from.
func (d DependencyTerm) String() string { return d.raw }

// Recipe is the closed, immutable value a loaded recipe document produces.
type Recipe struct {
	Name         string
	Version      string
	Source       Source
	Build        CommandList
	Install      CommandList
	Dependencies []DependencyTerm

	// raw preserves any top-level keys this loader doesn't recognize, so
	// ToYAML round-trips them instead of silently dropping them.
	raw map[string]any
}

// yamlDoc mirrors the on-disk shape for decoding/encoding.
type yamlDoc struct {
	Name         string       `yaml:"name"`
	Version      string       `yaml:"version"`
	Source       Source       `yaml:"source"`
	Build        CommandList  `yaml:"build,omitempty"`
	Install      CommandList  `yaml:"install,omitempty"`
	Dependencies []string     `yaml:"dependencies,omitempty"`
}

// Load reads and parses a recipe document from path.
func Load(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("recipe: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses recipe document bytes into a validated Recipe.
func Parse(data []byte) (*Recipe, error) {
	var doc yamlDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: yaml: %v", ErrRecipeInvalid, err)
	}

	var rawMap map[string]any
	if err := yaml.Unmarshal(data, &rawMap); err != nil {
		return nil, fmt.Errorf("%w: yaml: %v", ErrRecipeInvalid, err)
	}
	for _, known := range []string{"name", "version", "source", "build", "install", "dependencies"} {
		delete(rawMap, known)
	}

	deps := make([]DependencyTerm, 0, len(doc.Dependencies))
	for _, d := range doc.Dependencies {
		term, err := parseDependencyTerm(d)
		if err != nil {
			return nil, err
		}
		deps = append(deps, term)
	}

	r := &Recipe{
		Name:         doc.Name,
		Version:      doc.Version,
		Source:       doc.Source,
		Build:        doc.Build,
		Install:      doc.Install,
		Dependencies: deps,
		raw:          rawMap,
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// parseDependencyTerm splits a dependency string at its first operator
// character (one of '>', '<', '=') to extract the dependency name, then
// parses the remainder (including the operator) as a version constraint.
func parseDependencyTerm(raw string) (DependencyTerm, error) {
	idx := strings.IndexAny(raw, "><=")
	if idx < 0 {
		return DependencyTerm{Name: strings.TrimSpace(raw), Constraint: version.Any, raw: raw}, nil
	}
	name := strings.TrimSpace(raw[:idx])
	constraintText := strings.TrimSpace(raw[idx:])
	c, err := version.ParseConstraint(constraintText)
	if err != nil {
		return DependencyTerm{}, fmt.Errorf("%w: dependency %q: %v", ErrRecipeInvalid, raw, err)
	}
	return DependencyTerm{Name: name, Constraint: c, raw: raw}, nil
}

// ParseSpec parses a caller-supplied package spec such as "lib>=1.0" using
// the same grammar as a recipe's dependency terms: an optional leading
// operator, then the version operand. A bare name with no operator means
// "any".
func ParseSpec(raw string) (name string, constraint version.Constraint, err error) {
	term, err := parseDependencyTerm(raw)
	if err != nil {
		return "", version.Constraint{}, err
	}
	return term.Name, term.Constraint, nil
}

// Validate checks the invariants a recipe document must satisfy: a name
// and version are present, the source type is the single supported kind,
// and repo/ref are both present.
func (r *Recipe) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("%w: missing name", ErrRecipeInvalid)
	}
	if r.Version == "" {
		return fmt.Errorf("%w: missing version", ErrRecipeInvalid)
	}
	if _, err := version.Parse(r.Version); err != nil {
		return fmt.Errorf("%w: version %q: %v", ErrRecipeInvalid, r.Version, err)
	}
	if r.Source.Type != SourceKindGitHub {
		return fmt.Errorf("%w: only GitHub source repositories are supported, got %q", ErrRecipeInvalid, r.Source.Type)
	}
	if r.Source.Repo == "" {
		return fmt.Errorf("%w: missing source.repo", ErrRecipeInvalid)
	}
	if r.Source.Ref == "" {
		return fmt.Errorf("%w: missing source.ref", ErrRecipeInvalid)
	}
	return nil
}

// Document returns the recipe as a plain map, suitable for feeding to
// hash.Fingerprint as the "recipe" element of a derivation fingerprint.
// It carries the same fields ToYAML re-serializes, including any
// unrecognized top-level keys preserved at parse time.
func (r *Recipe) Document() map[string]any {
	deps := make([]string, len(r.Dependencies))
	for i, d := range r.Dependencies {
		deps[i] = d.raw
	}

	out := map[string]any{
		"name":    r.Name,
		"version": r.Version,
		"source": map[string]any{
			"type": string(r.Source.Type),
			"repo": r.Source.Repo,
			"ref":  r.Source.Ref,
		},
	}
	if len(r.Build.Commands) > 0 {
		out["build"] = map[string]any{"commands": r.Build.Commands}
	}
	if len(r.Install.Commands) > 0 {
		out["install"] = map[string]any{"commands": r.Install.Commands}
	}
	if len(deps) > 0 {
		out["dependencies"] = deps
	}
	for k, v := range r.raw {
		out[k] = v
	}
	return out
}

// ToYAML re-serializes the recipe, re-emitting any unrecognized top-level
// keys captured at parse time so a load/save round trip does not silently
// drop data.
func (r *Recipe) ToYAML() ([]byte, error) {
	return yaml.Marshal(r.Document())
}
