package sandbox

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/mount"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHandleProvider_ConcurrentGetCreatesOnce(t *testing.T) {
	var calls int32
	release := make(chan struct{})

	provider := NewHandleProvider(func(ctx context.Context) (*Handle, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return &Handle{ID: "abc123"}, nil
	})

	const callers = 10
	handles := make([]*Handle, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			handles[i], errs[i] = provider.Get(context.Background())
		}(i)
	}

	// Let every caller reach the in-flight creation before it completes
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Same(t, handles[0], handles[i])
	}

	// Later calls reuse the memoized handle
	h, err := provider.Get(context.Background())
	require.NoError(t, err)
	assert.Same(t, handles[0], h)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestHandleProvider_FailureNotMemoized(t *testing.T) {
	var calls int32
	provider := NewHandleProvider(func(ctx context.Context) (*Handle, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return nil, errors.New("daemon unreachable")
		}
		return &Handle{ID: "second"}, nil
	})

	_, err := provider.Get(context.Background())
	require.Error(t, err)

	h, err := provider.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "second", h.ID)
}

func TestHandleProvider_Reset(t *testing.T) {
	var calls int32
	provider := NewHandleProvider(func(ctx context.Context) (*Handle, error) {
		n := atomic.AddInt32(&calls, 1)
		return &Handle{ID: string(rune('a' + n))}, nil
	})

	first, err := provider.Get(context.Background())
	require.NoError(t, err)

	provider.Reset()

	second, err := provider.Get(context.Background())
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestHandleProvider_ResetDuringCreation(t *testing.T) {
	var calls int32
	started := make(chan struct{})
	release := make(chan struct{})
	provider := NewHandleProvider(func(ctx context.Context) (*Handle, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(started)
			<-release
			return &Handle{ID: "stale"}, nil
		}
		return &Handle{ID: "fresh"}, nil
	})

	result := make(chan *Handle, 1)
	go func() {
		h, _ := provider.Get(context.Background())
		result <- h
	}()

	<-started
	provider.Reset()
	close(release)
	assert.Equal(t, "stale", (<-result).ID)

	h, err := provider.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", h.ID)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestHandleProvider_CallerCancelDoesNotAbortCreation(t *testing.T) {
	release := make(chan struct{})
	provider := NewHandleProvider(func(ctx context.Context) (*Handle, error) {
		<-release
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return &Handle{ID: "kept"}, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() {
		_, err := provider.Get(ctx)
		result <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-result, context.Canceled)

	close(release)
	h, err := provider.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "kept", h.ID)
}

func TestCreateContainer(t *testing.T) {
	m := &MockDocker{}
	cfg := ContainerConfig{
		Image:         "golang:1.22",
		WorkspaceRoot: "/home/dev/project",
		EnvVar:        "GOCHECK_WORKSPACE",
		NamePrefix:    "gocheck-",
	}

	m.On("ContainerCreate", mock.Anything,
		mock.MatchedBy(func(c *container.Config) bool {
			return c.Image == "golang:1.22" &&
				c.WorkingDir == "/home/dev/project" &&
				len(c.Env) == 1 && c.Env[0] == "GOCHECK_WORKSPACE=/home/dev/project" &&
				c.Labels[LabelWorkspace] == "/home/dev/project"
		}),
		mock.MatchedBy(func(h *container.HostConfig) bool {
			return len(h.Mounts) == 1 &&
				h.Mounts[0].Type == mount.TypeBind &&
				h.Mounts[0].Source == "/home/dev/project" &&
				h.Mounts[0].Target == "/home/dev/project"
		}),
		mock.MatchedBy(func(name string) bool { return len(name) > len("gocheck-") }),
	).Return(container.CreateResponse{ID: "0123456789abcdef"}, nil)
	m.On("ContainerStart", mock.Anything, "0123456789abcdef").Return(nil)

	h, err := CreateContainer(context.Background(), m, cfg)
	require.NoError(t, err)
	assert.Equal(t, "0123456789abcdef", h.ID)
	assert.Equal(t, "/home/dev/project", h.MountPath)
	m.AssertExpectations(t)
}

func TestCreateContainer_CustomMountPath(t *testing.T) {
	m := &MockDocker{}
	cfg := ContainerConfig{
		Image:         "golang:1.22",
		WorkspaceRoot: "/home/dev/project",
		MountPath:     "/go/src/project",
		EnvVar:        "GOCHECK_WORKSPACE",
	}

	m.On("ContainerCreate", mock.Anything,
		mock.MatchedBy(func(c *container.Config) bool {
			return c.Env[0] == "GOCHECK_WORKSPACE=/go/src/project"
		}),
		mock.MatchedBy(func(h *container.HostConfig) bool {
			return h.Mounts[0].Target == "/go/src/project"
		}),
		mock.Anything,
	).Return(container.CreateResponse{ID: "id"}, nil)
	m.On("ContainerStart", mock.Anything, "id").Return(nil)

	h, err := CreateContainer(context.Background(), m, cfg)
	require.NoError(t, err)
	assert.Equal(t, "/go/src/project", h.MountPath)
}

func TestCreateContainer_StartFailureRemoves(t *testing.T) {
	m := &MockDocker{}
	cfg := ContainerConfig{Image: "golang:1.22", WorkspaceRoot: "/w"}

	m.On("ContainerCreate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(container.CreateResponse{ID: "dead"}, nil)
	m.On("ContainerStart", mock.Anything, "dead").Return(errors.New("port busy"))
	m.On("ContainerRemove", mock.Anything, "dead").Return(nil)

	_, err := CreateContainer(context.Background(), m, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start container")
	m.AssertCalled(t, "ContainerRemove", mock.Anything, "dead")
}

func TestCreateContainer_Validation(t *testing.T) {
	_, err := CreateContainer(context.Background(), &MockDocker{}, ContainerConfig{WorkspaceRoot: "/w"})
	assert.Error(t, err)

	_, err = CreateContainer(context.Background(), &MockDocker{}, ContainerConfig{Image: "golang"})
	assert.Error(t, err)
}

func TestDockerFactory_ReusesRunningContainer(t *testing.T) {
	m := &MockDocker{}
	cfg := ContainerConfig{Image: "golang:1.22", WorkspaceRoot: "/w"}

	m.On("ContainerList", mock.Anything, mock.Anything).
		Return([]types.Container{{ID: "existing", Names: []string{"/gocheck-1"}}}, nil)

	h, err := DockerFactory(m, cfg)(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "existing", h.ID)
	assert.Equal(t, "gocheck-1", h.Name)
	m.AssertNotCalled(t, "ContainerCreate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDockerFactory_CreatesWhenNoneRunning(t *testing.T) {
	m := &MockDocker{}
	cfg := ContainerConfig{Image: "golang:1.22", WorkspaceRoot: "/w", Timeout: time.Minute}

	m.On("ContainerList", mock.Anything, mock.Anything).Return([]types.Container{}, nil)
	m.On("ImageInspectWithRaw", mock.Anything, "golang:1.22").Return(types.ImageInspect{}, nil)
	m.On("ContainerCreate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(container.CreateResponse{ID: "fresh"}, nil)
	m.On("ContainerStart", mock.Anything, "fresh").Return(nil)

	h, err := DockerFactory(m, cfg)(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", h.ID)
	m.AssertExpectations(t)
}

func TestDockerFactory_ListFailure(t *testing.T) {
	m := &MockDocker{}
	m.On("ContainerList", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

	_, err := DockerFactory(m, ContainerConfig{Image: "golang", WorkspaceRoot: "/w"})(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestRemoveContainer(t *testing.T) {
	m := &MockDocker{}
	m.On("ContainerRemove", mock.Anything, "0123456789abcdef").Return(errors.New("gone"))

	err := RemoveContainer(context.Background(), &Handle{ID: "0123456789abcdef", client: m})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0123456789ab")

	assert.NoError(t, RemoveContainer(context.Background(), nil))
}
