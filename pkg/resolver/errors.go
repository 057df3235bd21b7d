package resolver

import "errors"

var (
	// ErrNoRecipe is returned when a requested name has no recipe at all.
	ErrNoRecipe = errors.New("resolver: no recipe found")

	// ErrNoMatchingVersion is returned when candidates exist for a name but
	// none satisfy the requested constraint.
	ErrNoMatchingVersion = errors.New("resolver: no matching version")

	// ErrCircularDependency is returned when a name is reachable from
	// itself through the dependency graph.
	ErrCircularDependency = errors.New("resolver: circular dependency")

	// ErrIncompatibleRequirement is returned when a name already selected
	// at one version is later required under a constraint that version
	// does not satisfy.
	ErrIncompatibleRequirement = errors.New("resolver: incompatible requirement")
)
