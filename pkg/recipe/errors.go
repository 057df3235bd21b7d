package recipe

import "errors"

var (
	// ErrRecipeInvalid is returned when a recipe document is missing a
	// required field or declares an unsupported source type.
	ErrRecipeInvalid = errors.New("recipe: invalid recipe document")
)
