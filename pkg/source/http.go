package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"
)

// newHTTPClient builds an http.Client whose transport is traced with
// otelhttp, matching the teacher's outbound-call instrumentation. When
// token is non-empty, requests carry a static bearer token, the same
// shape golang.org/x/oauth2's static token source produces, for accessing
// private repositories.
func newHTTPClient(token string) *http.Client {
	var base http.RoundTripper = http.DefaultTransport
	if token != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		base = &oauth2.Transport{Source: src, Base: base}
	}
	return &http.Client{Transport: otelhttp.NewTransport(base)}
}

// resolveCommitViaAPI resolves ref to a commit SHA by querying the hosted
// service's commits API directly, used when `git ls-remote` can't see the
// ref (e.g. an arbitrary short SHA rather than a branch/tag name).
func (f *Fetcher) resolveCommitViaAPI(ctx context.Context, repo, ref string) (string, error) {
	url := fmt.Sprintf("https://api.github.com/repos/%s/commits/%s", repo, ref)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnresolvableRef, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s@%s returned %d", ErrUnresolvableRef, repo, ref, resp.StatusCode)
	}

	var body struct {
		SHA string `json:"sha"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrUnresolvableRef, err)
	}
	if body.SHA == "" {
		return "", fmt.Errorf("%w: %s@%s", ErrUnresolvableRef, repo, ref)
	}
	return body.SHA, nil
}
