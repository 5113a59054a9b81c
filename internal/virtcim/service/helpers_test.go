package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jimyag/virtcim/internal/virtcim/config"
	"github.com/jimyag/virtcim/internal/virtcim/entity"
	"github.com/jimyag/virtcim/internal/virtcim/repository"
	"github.com/jimyag/virtcim/pkg/libvirt"
)

// jobEvent 记录一次通知
type jobEvent struct {
	kind   string
	state  entity.JobState
	prev   entity.JobState
	status string
}

// recordingNotifier 按顺序记录作业通知
type recordingNotifier struct {
	mu     sync.Mutex
	events []jobEvent
}

func (n *recordingNotifier) Created(_ context.Context, job *entity.Job) {
	n.add(jobEvent{kind: "created", state: job.State, status: job.Status})
}

func (n *recordingNotifier) Modified(_ context.Context, prev, cur *entity.Job) {
	n.add(jobEvent{kind: "modified", prev: prev.State, state: cur.State, status: cur.Status})
}

func (n *recordingNotifier) Deleted(_ context.Context, job *entity.Job) {
	n.add(jobEvent{kind: "deleted", state: job.State, status: job.Status})
}

func (n *recordingNotifier) add(e jobEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

func (n *recordingNotifier) Events() []jobEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]jobEvent(nil), n.events...)
}

// TestServices 包含测试所需的所有服务和依赖
type TestServices struct {
	Repo        *repository.Repository
	JobRepo     repository.JobRepository
	MockLibvirt *libvirt.MockClient
	MockRemote  *libvirt.MockClient
	Notifier    *recordingNotifier
	Jobs        *JobManager
	Migration   *MigrationService
	Snapshot    *SnapshotService
	Domain      *DomainService
	Pool        *StoragePoolService
	Filter      *FilterService
	ConnectErr  error
	ConnectURIs []string
	TempDir     string
}

// setupTestServices 为每个测试用例创建独立的测试环境
func setupTestServices(t *testing.T) *TestServices {
	t.Helper()

	tmpDir := t.TempDir()
	repo, err := repository.New(filepath.Join(tmpDir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	ts := &TestServices{
		Repo:        repo,
		JobRepo:     repository.NewJobRepository(repo.DB()),
		MockLibvirt: libvirt.NewMockClient(),
		MockRemote:  libvirt.NewMockClient(),
		Notifier:    &recordingNotifier{},
		TempDir:     tmpDir,
	}
	ts.MockLibvirt.On("URI").Return("qemu:///system").Maybe()

	var mu sync.Mutex
	connect := func(uri string) (libvirt.LibvirtClient, error) {
		mu.Lock()
		defer mu.Unlock()
		ts.ConnectURIs = append(ts.ConnectURIs, uri)
		if ts.ConnectErr != nil {
			return nil, ts.ConnectErr
		}
		return ts.MockRemote, nil
	}

	cfg := config.Default().Migration
	cfg.ChecksDir = filepath.Join(tmpDir, "checks")
	cfg.CheckTimeout = 5 * time.Second
	cfg.ShutdownPollInterval = time.Millisecond
	cfg.ShutdownPollCount = 5
	cfg.UndefineRetryInterval = time.Millisecond
	cfg.UndefineRetryCount = 2

	ts.Jobs = NewJobManager(ts.JobRepo, ts.Notifier)
	ts.Migration = NewMigrationService(ts.MockLibvirt, connect, ts.Jobs, cfg)
	ts.Snapshot = NewSnapshotService(ts.MockLibvirt, ts.Jobs, tmpDir)
	ts.Domain = NewDomainService(ts.MockLibvirt, ts.Jobs)
	ts.Pool = NewStoragePoolService(ts.MockLibvirt)
	ts.Filter = NewFilterService(ts.MockLibvirt)

	return ts
}

// waitJob 等待作业结束
func waitJob(t *testing.T, jobs *JobManager, id string) *entity.Job {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	job, err := jobs.Wait(ctx, id)
	require.NoError(t, err)
	return job
}

var errBoom = errors.New("boom")
