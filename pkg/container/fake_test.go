package container

import (
	"bytes"
	"context"
	"io"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/pkg/stdcopy"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// fakeClient is an in-memory APIClient recording every call, with
// injectable failures per operation.
type fakeClient struct {
	pingErr error

	pulled  []string
	pullErr error

	createdConfigs []*container.Config
	createdHosts   []*container.HostConfig
	createErr      error

	started  []string
	startErr error

	stopped []string
	removed []string

	waitCode int64
	waitErr  error

	logLines []string

	commits   []container.CommitOptions
	commitErr error

	copyInPaths    []string
	copyInArchives [][]byte
	copyInErr      error

	copyOutData []byte
	copyOutErr  error

	removedImages []string
}

func (f *fakeClient) Ping(ctx context.Context) (types.Ping, error) {
	return types.Ping{}, f.pingErr
}

func (f *fakeClient) ImagePull(ctx context.Context, refStr string, options image.PullOptions) (io.ReadCloser, error) {
	if f.pullErr != nil {
		return nil, f.pullErr
	}
	f.pulled = append(f.pulled, refStr)
	return io.NopCloser(bytes.NewReader([]byte("{}"))), nil
}

func (f *fakeClient) ImageRemove(ctx context.Context, imageID string, options image.RemoveOptions) ([]image.DeleteResponse, error) {
	f.removedImages = append(f.removedImages, imageID)
	return nil, nil
}

func (f *fakeClient) ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig,
	networkingConfig *network.NetworkingConfig, platform *ocispec.Platform, containerName string) (container.CreateResponse, error) {
	if f.createErr != nil {
		return container.CreateResponse{}, f.createErr
	}
	f.createdConfigs = append(f.createdConfigs, config)
	f.createdHosts = append(f.createdHosts, hostConfig)
	return container.CreateResponse{ID: "fake-container"}, nil
}

func (f *fakeClient) ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error {
	if f.startErr != nil {
		return f.startErr
	}
	f.started = append(f.started, containerID)
	return nil
}

func (f *fakeClient) ContainerStop(ctx context.Context, containerID string, options container.StopOptions) error {
	f.stopped = append(f.stopped, containerID)
	return nil
}

func (f *fakeClient) ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error {
	f.removed = append(f.removed, containerID)
	return nil
}

func (f *fakeClient) ContainerWait(ctx context.Context, containerID string, condition container.WaitCondition) (<-chan container.WaitResponse, <-chan error) {
	waitCh := make(chan container.WaitResponse, 1)
	errCh := make(chan error, 1)
	if f.waitErr != nil {
		errCh <- f.waitErr
	} else {
		waitCh <- container.WaitResponse{StatusCode: f.waitCode}
	}
	return waitCh, errCh
}

func (f *fakeClient) ContainerLogs(ctx context.Context, containerID string, options container.LogsOptions) (io.ReadCloser, error) {
	// Emit the configured lines in the daemon's multiplexed frame format so
	// stdcopy on the consuming side has something real to demux.
	var buf bytes.Buffer
	w := stdcopy.NewStdWriter(&buf, stdcopy.Stdout)
	for _, line := range f.logLines {
		w.Write([]byte(line + "\n"))
	}
	return io.NopCloser(&buf), nil
}

func (f *fakeClient) ContainerCommit(ctx context.Context, containerID string, options container.CommitOptions) (types.IDResponse, error) {
	if f.commitErr != nil {
		return types.IDResponse{}, f.commitErr
	}
	f.commits = append(f.commits, options)
	return types.IDResponse{ID: "sha256:fake-image"}, nil
}

func (f *fakeClient) CopyToContainer(ctx context.Context, containerID, dstPath string, content io.Reader, options container.CopyToContainerOptions) error {
	if f.copyInErr != nil {
		return f.copyInErr
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return err
	}
	f.copyInPaths = append(f.copyInPaths, dstPath)
	f.copyInArchives = append(f.copyInArchives, data)
	return nil
}

func (f *fakeClient) CopyFromContainer(ctx context.Context, containerID, srcPath string) (io.ReadCloser, types.ContainerPathStat, error) {
	if f.copyOutErr != nil {
		return nil, types.ContainerPathStat{}, f.copyOutErr
	}
	return io.NopCloser(bytes.NewReader(f.copyOutData)), types.ContainerPathStat{}, nil
}
