package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCacheKeyFor(t *testing.T) {
	assert.Equal(t, "owner_repo_abc123", cacheKeyFor("owner/repo", "abc123"))
}

func TestHex40MatchesFortyCharCommit(t *testing.T) {
	assert.True(t, hex40.MatchString("0123456789abcdef0123456789abcdef01234567"))
	assert.False(t, hex40.MatchString("main"))
	assert.False(t, hex40.MatchString("v1.0.0"))
}

func TestNewHTTPClientWrapsTransport(t *testing.T) {
	c := newHTTPClient("")
	assert.NotNil(t, c.Transport)

	withToken := newHTTPClient("some-token")
	assert.NotNil(t, withToken.Transport)
}
