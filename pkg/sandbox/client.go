package sandbox

import (
	"context"
	"fmt"
	"io"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// DockerAPI is the subset of the Docker client gocheck relies on.
// *client.Client satisfies it.
type DockerAPI interface {
	Ping(ctx context.Context) (types.Ping, error)
	ImageInspectWithRaw(ctx context.Context, image string) (types.ImageInspect, []byte, error)
	ImagePull(ctx context.Context, ref string, options types.ImagePullOptions) (io.ReadCloser, error)
	ContainerList(ctx context.Context, options types.ContainerListOptions) ([]types.Container, error)
	ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig, networkingConfig *network.NetworkingConfig, platform *ocispec.Platform, containerName string) (container.CreateResponse, error)
	ContainerStart(ctx context.Context, containerID string, options types.ContainerStartOptions) error
	ContainerRemove(ctx context.Context, containerID string, options types.ContainerRemoveOptions) error
	ContainerExecCreate(ctx context.Context, container string, config types.ExecConfig) (types.IDResponse, error)
	ContainerExecAttach(ctx context.Context, execID string, config types.ExecStartCheck) (types.HijackedResponse, error)
	ContainerExecInspect(ctx context.Context, execID string) (types.ContainerExecInspect, error)
	Close() error
}

// NewClient connects to the daemon described by the DOCKER_* environment
func NewClient() (*client.Client, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %w", err)
	}
	return cli, nil
}

// CheckDockerAvailability verifies the daemon answers
func CheckDockerAvailability(ctx context.Context, cli DockerAPI) error {
	if _, err := cli.Ping(ctx); err != nil {
		return fmt.Errorf("Docker not available: %w", err)
	}
	return nil
}

// PullDockerImage ensures the required image is available
func PullDockerImage(ctx context.Context, cli DockerAPI, image string) error {
	// Check if image exists locally first
	if _, _, err := cli.ImageInspectWithRaw(ctx, image); err == nil {
		return nil
	}

	reader, err := cli.ImagePull(ctx, image, types.ImagePullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull Docker image: %w", err)
	}
	defer reader.Close()

	// The pull only completes once the progress stream is drained
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return fmt.Errorf("failed to pull Docker image: %w", err)
	}

	return nil
}
