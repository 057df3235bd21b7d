package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"
)

// Result is one candidate repository returned by a search.
type Result struct {
	Owner       string
	Repo        string
	Description string
	Stars       int
}

// Searcher looks up candidate repositories matching query.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// GitHubSearcher queries the hosted code-search API for repositories
// whose name or description matches query, the same unauthenticated-by-
// default, token-if-present request shape as pkg/source's commit
// resolution.
type GitHubSearcher struct {
	token  string
	client *http.Client
}

// New builds a GitHubSearcher. token, if non-empty, raises the
// unauthenticated rate limit.
func New(token string) *GitHubSearcher {
	var base http.RoundTripper = http.DefaultTransport
	if token != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		base = &oauth2.Transport{Source: src, Base: base}
	}
	return &GitHubSearcher{
		token:  token,
		client: &http.Client{Transport: otelhttp.NewTransport(base)},
	}
}

type searchResponse struct {
	Items []struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Owner       struct {
			Login string `json:"login"`
		} `json:"owner"`
		StargazersCount int `json:"stargazers_count"`
	} `json:"items"`
}

// Search implements Searcher.
func (s *GitHubSearcher) Search(ctx context.Context, query string) ([]Result, error) {
	url := fmt.Sprintf("https://api.github.com/search/repositories?q=%s&sort=stars&order=desc", urlEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: search returned %d", ErrSearchFailed, resp.StatusCode)
	}

	return decodeSearchResponse(resp.Body)
}

// decodeSearchResponse parses a GitHub repository-search response body
// into Results. Split out from Search so the parsing logic can be tested
// without a live network call.
func decodeSearchResponse(r io.Reader) ([]Result, error) {
	var body searchResponse
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrSearchFailed, err)
	}

	results := make([]Result, 0, len(body.Items))
	for _, item := range body.Items {
		results = append(results, Result{
			Owner:       item.Owner.Login,
			Repo:        item.Name,
			Description: item.Description,
			Stars:       item.StargazersCount,
		})
	}
	return results, nil
}

func urlEscape(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == ' ' {
			out = append(out, '+')
			continue
		}
		out = append(out, s[i])
	}
	return string(out)
}

