package source

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// runGit shells out to the real git binary rather than a pure-Go
// implementation, the same way a CGI backend builds an *exec.Cmd around
// the system git rather than reimplementing the protocol.
func runGit(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %v: %v: %s", args, err, stderr.String())
	}
	return stdout.String(), nil
}

func githubURL(repo string) string {
	return "https://github.com/" + repo + ".git"
}
