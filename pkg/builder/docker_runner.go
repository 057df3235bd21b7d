package builder

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"

	"github.com/pygr-project/pygr/pkg/observability"
)

// defaultBuildImage is pulled once per DockerRunner and used for every
// command; it needs only a POSIX shell plus whatever the recipe's own
// build commands install for themselves (they run as root inside the
// container).
const defaultBuildImage = "debian:bookworm-slim"

// DockerRunner runs build commands inside a throwaway container with
// networking disabled and only the build directory bind-mounted, matching
// the isolation the spec calls for when sandboxing is requested.
type DockerRunner struct {
	client     *client.Client
	image      string
	imagePulled bool
	log        *observability.Logger
}

// NewDockerRunner connects to the local Docker daemon and verifies it is
// reachable, returning ErrDockerNotAvailable otherwise.
func NewDockerRunner(ctx context.Context, log *observability.Logger) (*DockerRunner, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDockerNotAvailable, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := cli.Ping(pingCtx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDockerNotAvailable, err)
	}

	return &DockerRunner{client: cli, image: defaultBuildImage, log: log}, nil
}

func (r *DockerRunner) ensureImage(ctx context.Context) error {
	if r.imagePulled {
		return nil
	}
	if _, err := r.client.ImageInspect(ctx, r.image); err == nil {
		r.imagePulled = true
		return nil
	}

	pullCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()
	reader, err := r.client.ImagePull(pullCtx, r.image, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("pull build image %s: %w", r.image, err)
	}
	defer reader.Close()
	_, _ = bytes.NewBuffer(nil).ReadFrom(reader)

	r.imagePulled = true
	return nil
}

// Run implements Runner.
func (r *DockerRunner) Run(ctx context.Context, workDir string, env []string, command string) (string, string, error) {
	if err := r.ensureImage(ctx); err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrBuildFailed, err)
	}

	cfg := &container.Config{
		Image:        r.image,
		Cmd:          []string{"sh", "-c", command},
		Env:          env,
		WorkingDir:   "/build",
		AttachStdout: true,
		AttachStderr: true,
	}

	hostCfg := &container.HostConfig{
		Binds:       []string{workDir + ":/build"},
		NetworkMode: "none",
		AutoRemove:  false,
		Privileged:  false,
	}

	resp, err := r.client.ContainerCreate(ctx, cfg, hostCfg, &network.NetworkingConfig{}, nil, "")
	if err != nil {
		return "", "", fmt.Errorf("%w: create container: %v", ErrBuildFailed, err)
	}
	defer r.client.ContainerRemove(context.Background(), resp.ID, container.RemoveOptions{Force: true, RemoveVolumes: true})

	if err := r.client.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return "", "", fmt.Errorf("%w: start container: %v", ErrBuildFailed, err)
	}

	statusCh, errCh := r.client.ContainerWait(ctx, resp.ID, container.WaitConditionNotRunning)
	var exitCode int64
	select {
	case err := <-errCh:
		if err != nil {
			return "", "", fmt.Errorf("%w: wait container: %v", ErrBuildFailed, err)
		}
	case status := <-statusCh:
		exitCode = status.StatusCode
	case <-ctx.Done():
		return "", "", fmt.Errorf("%w: %v", ErrBuildFailed, ctx.Err())
	}

	logs, err := r.client.ContainerLogs(ctx, resp.ID, container.LogsOptions{ShowStdout: true, ShowStderr: true})
	var stdout, stderr bytes.Buffer
	if err == nil {
		stdcopy.StdCopy(&stdout, &stderr, logs)
		logs.Close()
	}

	if exitCode != 0 {
		return stdout.String(), stderr.String(), fmt.Errorf("%w: %s: exit code %d: %s", ErrBuildFailed, command, exitCode, stderr.String())
	}

	return stdout.String(), stderr.String(), nil
}

// Close implements Runner.
func (r *DockerRunner) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
