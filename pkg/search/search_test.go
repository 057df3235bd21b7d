package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSetsTransportWithAndWithoutToken(t *testing.T) {
	s := New("")
	assert.NotNil(t, s.client.Transport)

	withToken := New("some-token")
	assert.NotNil(t, withToken.client.Transport)
}

func TestURLEscapeReplacesSpacesWithPlus(t *testing.T) {
	assert.Equal(t, "http+client", urlEscape("http client"))
	assert.Equal(t, "curl", urlEscape("curl"))
}

func TestDecodeSearchResponseParsesItems(t *testing.T) {
	body := `{"items":[{"name":"curl","description":"command line transfer tool","owner":{"login":"curl"},"stargazers_count":34000}]}`

	results, err := decodeSearchResponse(strings.NewReader(body))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "curl", results[0].Owner)
	assert.Equal(t, "curl", results[0].Repo)
	assert.Equal(t, 34000, results[0].Stars)
}

func TestDecodeSearchResponseEmptyItemsIsNotAnError(t *testing.T) {
	results, err := decodeSearchResponse(strings.NewReader(`{"items":[]}`))
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestDecodeSearchResponseMalformedBodyFails(t *testing.T) {
	_, err := decodeSearchResponse(strings.NewReader(`not json`))
	assert.ErrorIs(t, err, ErrSearchFailed)
}
