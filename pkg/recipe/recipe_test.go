package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validDoc = `
name: ripgrep
version: 13.0.0
source:
  type: github
  repo: BurntSushi/ripgrep
  ref: 13.0.0
build:
  commands:
    - cargo build --release
install:
  commands:
    - install -Dm755 target/release/rg {{prefix}}/bin/rg
dependencies:
  - cargo>=1.50
  - libc
`

func TestParseValid(t *testing.T) {
	r, err := Parse([]byte(validDoc))
	require.NoError(t, err)
	assert.Equal(t, "ripgrep", r.Name)
	assert.Equal(t, "13.0.0", r.Version)
	assert.Equal(t, SourceKindGitHub, r.Source.Type)
	assert.Equal(t, "BurntSushi/ripgrep", r.Source.Repo)
	require.Len(t, r.Dependencies, 2)
	assert.Equal(t, "cargo", r.Dependencies[0].Name)
	assert.Equal(t, "libc", r.Dependencies[1].Name)
	ok, err := r.Dependencies[0].Constraint.Matches("1.60")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestValidateMissingRepo(t *testing.T) {
	doc := `
name: foo
version: 1.0.0
source:
  type: github
  ref: main
`
	_, err := Parse([]byte(doc))
	assert.ErrorIs(t, err, ErrRecipeInvalid)
}

func TestValidateMissingRef(t *testing.T) {
	doc := `
name: foo
version: 1.0.0
source:
  type: github
  repo: owner/foo
`
	_, err := Parse([]byte(doc))
	assert.ErrorIs(t, err, ErrRecipeInvalid)
}

func TestValidateOnlyGitHubSupported(t *testing.T) {
	doc := `
name: foo
version: 1.0.0
source:
  type: gitlab
  repo: owner/foo
  ref: main
`
	_, err := Parse([]byte(doc))
	assert.ErrorIs(t, err, ErrRecipeInvalid)
}

func TestToYAMLRoundTripsUnknownKeys(t *testing.T) {
	doc := `
name: foo
version: 1.0.0
source:
  type: github
  repo: owner/foo
  ref: main
maintainer: somebody
`
	r, err := Parse([]byte(doc))
	require.NoError(t, err)

	out, err := r.ToYAML()
	require.NoError(t, err)

	r2, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, r.Name, r2.Name)
	assert.Equal(t, "somebody", r2.raw["maintainer"])
}

func TestDependencyTermSplitsOnFirstOperator(t *testing.T) {
	term, err := parseDependencyTerm("lib>=1.0")
	require.NoError(t, err)
	assert.Equal(t, "lib", term.Name)

	term, err = parseDependencyTerm("lib==2.0")
	require.NoError(t, err)
	assert.Equal(t, "lib", term.Name)

	term, err = parseDependencyTerm("lib")
	require.NoError(t, err)
	assert.Equal(t, "lib", term.Name)
	assert.Equal(t, "", term.Constraint.String())
}
