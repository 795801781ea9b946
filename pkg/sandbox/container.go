package sandbox

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/mount"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Labels identifying containers created by gocheck
const (
	LabelWorkspace = "dev.gocheck.workspace"
	LabelImage     = "dev.gocheck.image"
)

// Handle is a running container that tool commands are exec'd into
type Handle struct {
	ID        string
	Name      string
	Image     string
	MountPath string
	client    DockerAPI
}

// ContainerConfig describes the long-lived container to create
type ContainerConfig struct {
	Image         string
	WorkspaceRoot string // Host directory bind-mounted into the container
	MountPath     string // Target of the bind mount; defaults to WorkspaceRoot
	EnvVar        string // Set to MountPath inside the container
	NamePrefix    string
	Timeout       time.Duration
}

func (c ContainerConfig) mountPath() string {
	if c.MountPath != "" {
		return c.MountPath
	}
	return c.WorkspaceRoot
}

// Factory creates (or finds) the container behind a Handle
type Factory func(ctx context.Context) (*Handle, error)

// HandleProvider hands out one container handle for the life of the
// process. Callers arriving while the container is still being created
// wait for that same creation.
type HandleProvider struct {
	factory Factory
	group   singleflight.Group
	mu      sync.Mutex
	handle  *Handle
	gen     uint64 // Bumped by Reset; a creation started before it is not kept
}

// NewHandleProvider wraps factory with lazy single-flight creation
func NewHandleProvider(factory Factory) *HandleProvider {
	return &HandleProvider{factory: factory}
}

const handleKey = "container"

// Get returns the memoized handle, creating it on first use. A failed
// creation is not remembered; the next Get tries again. Cancelling ctx
// only abandons this caller's wait, not the shared creation.
func (p *HandleProvider) Get(ctx context.Context) (*Handle, error) {
	if h := p.current(); h != nil {
		return h, nil
	}

	ch := p.group.DoChan(handleKey, func() (interface{}, error) {
		p.mu.Lock()
		if p.handle != nil {
			defer p.mu.Unlock()
			return p.handle, nil
		}
		gen := p.gen
		p.mu.Unlock()

		h, err := p.factory(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		p.mu.Lock()
		if p.gen == gen {
			p.handle = h
		}
		p.mu.Unlock()
		return h, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Handle), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Reset forgets the memoized handle, including one still being created.
// The container itself is left alone.
func (p *HandleProvider) Reset() {
	p.mu.Lock()
	p.handle = nil
	p.gen++
	p.mu.Unlock()
	p.group.Forget(handleKey)
}

func (p *HandleProvider) current() *Handle {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.handle
}

// DockerFactory returns a Factory that reuses a running gocheck container
// for the same workspace and image, or creates and starts a new one.
func DockerFactory(cli DockerAPI, cfg ContainerConfig) Factory {
	return func(ctx context.Context) (*Handle, error) {
		if cfg.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
			defer cancel()
		}

		if h, err := FindContainer(ctx, cli, cfg); err != nil {
			return nil, err
		} else if h != nil {
			return h, nil
		}

		if err := PullDockerImage(ctx, cli, cfg.Image); err != nil {
			return nil, fmt.Errorf("failed to pull image %s: %w", cfg.Image, err)
		}
		return CreateContainer(ctx, cli, cfg)
	}
}

// FindContainer looks for a running container labelled for cfg's
// workspace and image. It returns nil when there is none.
func FindContainer(ctx context.Context, cli DockerAPI, cfg ContainerConfig) (*Handle, error) {
	list, err := cli.ContainerList(ctx, types.ContainerListOptions{
		Filters: filters.NewArgs(
			filters.Arg("label", LabelWorkspace+"="+cfg.WorkspaceRoot),
			filters.Arg("label", LabelImage+"="+cfg.Image),
			filters.Arg("status", "running"),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}
	if len(list) == 0 {
		return nil, nil
	}

	c := list[0]
	name := c.ID
	if len(c.Names) > 0 {
		name = strings.TrimPrefix(c.Names[0], "/")
	}
	return &Handle{
		ID:        c.ID,
		Name:      name,
		Image:     cfg.Image,
		MountPath: cfg.mountPath(),
		client:    cli,
	}, nil
}

// CreateContainer creates and starts a container that stays up until it
// is removed, with the workspace bind-mounted at cfg's mount path.
func CreateContainer(ctx context.Context, cli DockerAPI, cfg ContainerConfig) (*Handle, error) {
	if cfg.Image == "" {
		return nil, fmt.Errorf("container image cannot be empty")
	}
	if cfg.WorkspaceRoot == "" {
		return nil, fmt.Errorf("workspace root cannot be empty")
	}

	target := cfg.mountPath()
	var env []string
	if cfg.EnvVar != "" {
		env = append(env, cfg.EnvVar+"="+target)
	}

	containerConfig := &container.Config{
		Image:      cfg.Image,
		Cmd:        []string{"sleep", "infinity"},
		WorkingDir: target,
		Env:        env,
		Labels: map[string]string{
			LabelWorkspace: cfg.WorkspaceRoot,
			LabelImage:     cfg.Image,
		},
	}

	hostConfig := &container.HostConfig{
		Mounts: []mount.Mount{
			{
				Type:   mount.TypeBind,
				Source: cfg.WorkspaceRoot,
				Target: target,
			},
		},
	}

	name := cfg.NamePrefix + uuid.New().String()
	resp, err := cli.ContainerCreate(ctx, containerConfig, hostConfig, nil, nil, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create container: %w", err)
	}

	if err := cli.ContainerStart(ctx, resp.ID, types.ContainerStartOptions{}); err != nil {
		cli.ContainerRemove(ctx, resp.ID, types.ContainerRemoveOptions{Force: true})
		return nil, fmt.Errorf("failed to start container: %w", err)
	}

	return &Handle{
		ID:        resp.ID,
		Name:      name,
		Image:     cfg.Image,
		MountPath: target,
		client:    cli,
	}, nil
}

// RemoveContainer force-removes the container behind h
func RemoveContainer(ctx context.Context, h *Handle) error {
	if h == nil {
		return nil
	}
	if err := h.client.ContainerRemove(ctx, h.ID, types.ContainerRemoveOptions{Force: true}); err != nil {
		return fmt.Errorf("failed to remove container %s: %w", shortID(h.ID), err)
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
