// Package resolver implements the greedy, non-backtracking dependency
// resolution algorithm: highest-version-first selection per name, with
// cycle detection and a deterministic topological output order.
package resolver

import (
	"fmt"
	"strings"

	"github.com/pygr-project/pygr/pkg/recipe"
	"github.com/pygr-project/pygr/pkg/version"
)

// RecipeLookup is satisfied by a recipe index: it returns every candidate
// recipe registered under a name, across every repository.
type RecipeLookup interface {
	ByName(name string) []*recipe.Recipe
}

// Resolver selects one version per package name and orders the result so
// dependencies precede dependents.
type Resolver struct {
	lookup RecipeLookup
}

// New builds a Resolver over the given recipe lookup.
func New(lookup RecipeLookup) *Resolver {
	return &Resolver{lookup: lookup}
}

// Resolve selects rootName (and transitively every package it depends on)
// subject to constraint, and returns the selected recipes in dependencies-
// before-dependents order.
func (r *Resolver) Resolve(rootName string, constraint version.Constraint) ([]*recipe.Recipe, error) {
	selected := make(map[string]*recipe.Recipe)
	if err := r.resolveOne(rootName, constraint, nil, selected); err != nil {
		return nil, err
	}

	g := newDependencyGraph()
	for name, rec := range selected {
		depNames := make([]string, len(rec.Dependencies))
		for i, d := range rec.Dependencies {
			depNames[i] = d.Name
		}
		g.addNode(name, depNames)
	}

	order, err := g.topologicalSort(rootName)
	if err != nil {
		return nil, err
	}

	out := make([]*recipe.Recipe, len(order))
	for i, name := range order {
		out[i] = selected[name]
	}
	return out, nil
}

// resolveOne resolves name under constraint along the given ancestor path,
// recording the choice into selected and recursing into its dependencies.
func (r *Resolver) resolveOne(name string, constraint version.Constraint, path []string, selected map[string]*recipe.Recipe) error {
	for _, ancestor := range path {
		if ancestor == name {
			return fmt.Errorf("%w: %s", ErrCircularDependency, strings.Join(append(append([]string{}, path...), name), " -> "))
		}
	}

	if existing, ok := selected[name]; ok {
		matches, err := constraint.Matches(existing.Version)
		if err != nil {
			return err
		}
		if !matches {
			return fmt.Errorf("%w: %s already selected at %s, but also required %s", ErrIncompatibleRequirement, name, existing.Version, constraint)
		}
		return nil
	}

	candidates := r.lookup.ByName(name)
	if len(candidates) == 0 {
		return fmt.Errorf("%w: %s", ErrNoRecipe, name)
	}

	var best *recipe.Recipe
	var bestVer version.Version
	for _, candidate := range candidates {
		matches, err := constraint.Matches(candidate.Version)
		if err != nil {
			return err
		}
		if !matches {
			continue
		}
		v, err := version.Parse(candidate.Version)
		if err != nil {
			return err
		}
		if best == nil || v.Compare(bestVer) > 0 {
			best = candidate
			bestVer = v
		}
	}
	if best == nil {
		return fmt.Errorf("%w: %s", ErrNoMatchingVersion, name)
	}

	selected[name] = best
	nextPath := append(append([]string{}, path...), name)
	for _, dep := range best.Dependencies {
		if err := r.resolveOne(dep.Name, dep.Constraint, nextPath, selected); err != nil {
			return err
		}
	}
	return nil
}
