package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/jimyag/virtcim/internal/virtcim/entity"
	"github.com/jimyag/virtcim/internal/virtcim/repository"
	"github.com/jimyag/virtcim/pkg/apierror"
	"github.com/jimyag/virtcim/pkg/idgen"
)

// jobError 作业失败
// Error() 返回写入作业状态的文本，底层错误只记录日志
type jobError struct {
	status string
	err    error
}

func (e *jobError) Error() string { return e.status }
func (e *jobError) Unwrap() error { return e.err }

func failJob(err error, format string, args ...any) error {
	return &jobError{status: fmt.Sprintf(format, args...), err: err}
}

// Work 作业的执行体，返回 nil 表示成功
type Work func(ctx context.Context, h *JobHandle) error

type jobEntry struct {
	job  *entity.Job
	done chan struct{}
}

// JobManager 作业注册表
// 负责作业的创建、状态推进、持久化和通知，同时记录正在迁移的域
type JobManager struct {
	repo     repository.JobRepository
	notifier Notifier
	ids      *idgen.Generator
	now      func() time.Time

	mu        sync.Mutex
	jobs      map[string]*jobEntry
	migrating map[string]int
}

// NewJobManager 创建作业管理器，notifier 为 nil 时只写日志
func NewJobManager(repo repository.JobRepository, notifier Notifier) *JobManager {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &JobManager{
		repo:      repo,
		notifier:  notifier,
		ids:       idgen.DefaultGenerator(),
		now:       time.Now,
		jobs:      make(map[string]*jobEntry),
		migrating: make(map[string]int),
	}
}

// Run 创建作业（Starting）并在后台 goroutine 中执行 work
// 返回创建时的作业快照，work 的结果写入作业的最终状态
func (m *JobManager) Run(ctx context.Context, tmpl *entity.Job, work Work) (*entity.Job, error) {
	id, err := m.ids.GenerateJobID()
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to allocate job ID", err)
	}

	now := m.now()
	job := tmpl.Clone()
	job.ID = id
	job.UUID = uuid.NewString()
	job.State = entity.JobStateStarting
	job.Status = entity.StatusStarting
	job.ReturnCode = entity.ReturnJobStarted
	job.StartTime = now
	job.UpdateTime = now

	if err := m.persist(ctx, job, true); err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to create job", err)
	}

	entry := &jobEntry{job: job, done: make(chan struct{})}
	m.mu.Lock()
	m.jobs[id] = entry
	m.mu.Unlock()

	created := job.Clone()
	m.notifier.Created(ctx, created.Clone())

	// 作业的生命周期不受请求影响，只继承 logger
	// ctx 可能是会被复用的 *gin.Context
	logger := zerolog.Ctx(ctx).With().Str("jobID", id).Logger()
	jobCtx := logger.WithContext(context.Background())

	go m.execute(jobCtx, entry, work)

	return created, nil
}

// execute 执行作业，结束后从注册表移除
// 移除发生在 done 关闭之前，之后的查询只能从数据库读取
func (m *JobManager) execute(ctx context.Context, entry *jobEntry, work Work) {
	h := &JobHandle{m: m, id: entry.job.ID, ctx: ctx}
	defer close(entry.done)

	h.SetRunning(entity.StatusRunning)

	err := runWork(ctx, h, work)

	logger := zerolog.Ctx(ctx)
	if err != nil {
		logger.Error().Err(errors.Unwrap(err)).Str("status", err.Error()).Msg("Job failed")
		h.complete(err.Error(), true, entity.ReturnFailed)
	} else {
		logger.Info().Msg("Job completed")
		h.complete(entity.StatusCompleted, false, entity.ReturnCompleted)
	}

	m.notifier.Deleted(ctx, m.snapshot(entry))

	m.mu.Lock()
	delete(m.jobs, h.id)
	m.mu.Unlock()
}

// runWork 执行 work，panic 转换为作业失败，保证作业总能到达 Complete
func runWork(ctx context.Context, h *JobHandle, work Work) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = failJob(fmt.Errorf("panic: %v", r), "Internal error")
		}
	}()
	return work(ctx, h)
}

// transition 在锁内修改作业，持久化后通知
func (m *JobManager) transition(ctx context.Context, id string, apply func(j *entity.Job)) {
	m.mu.Lock()
	entry, ok := m.jobs[id]
	if !ok {
		m.mu.Unlock()
		return
	}
	prev := entry.job.Clone()
	apply(entry.job)
	entry.job.UpdateTime = m.now()
	cur := entry.job.Clone()
	m.mu.Unlock()

	if err := m.persist(ctx, cur, false); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("jobID", id).Msg("Failed to persist job state")
	}
	m.notifier.Modified(ctx, prev, cur)
}

func (m *JobManager) persist(ctx context.Context, job *entity.Job, create bool) error {
	if m.repo == nil {
		return nil
	}
	mdl, err := jobEntityToModel(job)
	if err != nil {
		return fmt.Errorf("convert job: %w", err)
	}
	if create {
		return m.repo.Create(ctx, mdl)
	}
	return m.repo.Update(ctx, mdl)
}

func (m *JobManager) snapshot(entry *jobEntry) *entity.Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	return entry.job.Clone()
}

// Get 获取作业，内存中只有未结束的作业，其余从数据库读取
func (m *JobManager) Get(ctx context.Context, id string) (*entity.Job, error) {
	m.mu.Lock()
	entry, ok := m.jobs[id]
	m.mu.Unlock()
	if ok {
		return m.snapshot(entry), nil
	}

	// 非法格式的 ID 不可能存在
	if _, valid := idgen.ParseJobID(id); valid && m.repo != nil {
		mdl, err := m.repo.GetByID(ctx, id)
		if err == nil {
			return jobModelToEntity(mdl)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to get job", err)
		}
	}
	return nil, apierror.WrapError(apierror.ErrNotFound, fmt.Sprintf("Job %s not found", id), nil)
}

// List 列出作业
// 没有数据库时只能列出未结束的作业
func (m *JobManager) List(ctx context.Context, req *entity.ListJobsRequest) ([]*entity.Job, error) {
	filters := map[string]any{}
	if req.Kind != "" {
		filters["kind"] = string(req.Kind)
	}
	if req.Domain != "" {
		filters["domain"] = req.Domain
	}

	if m.repo == nil {
		return m.listMemory(req), nil
	}

	models, err := m.repo.List(ctx, filters)
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to list jobs", err)
	}
	jobs := make([]*entity.Job, 0, len(models))
	for _, mdl := range models {
		job, err := jobModelToEntity(mdl)
		if err != nil {
			return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to convert job", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func (m *JobManager) listMemory(req *entity.ListJobsRequest) []*entity.Job {
	m.mu.Lock()
	defer m.mu.Unlock()

	jobs := make([]*entity.Job, 0, len(m.jobs))
	for _, e := range m.jobs {
		if req.Kind != "" && e.job.Kind != req.Kind {
			continue
		}
		if req.Domain != "" && e.job.Domain != req.Domain {
			continue
		}
		jobs = append(jobs, e.job.Clone())
	}
	return jobs
}

// Wait 等待作业结束，返回最终状态
func (m *JobManager) Wait(ctx context.Context, id string) (*entity.Job, error) {
	m.mu.Lock()
	entry, ok := m.jobs[id]
	m.mu.Unlock()
	if !ok {
		return m.Get(ctx, id)
	}

	select {
	case <-entry.done:
		return m.snapshot(entry), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// MarkMigrating 标记域正在迁移
func (m *JobManager) MarkMigrating(domain string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.migrating[domain]++
}

// ClearMigrating 清除迁移标记
func (m *JobManager) ClearMigrating(domain string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.migrating[domain] <= 1 {
		delete(m.migrating, domain)
		return
	}
	m.migrating[domain]--
}

// IsMigrating 域是否正在迁移
func (m *JobManager) IsMigrating(domain string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.migrating[domain] > 0
}

// JobHandle 作业执行体用来推进状态
type JobHandle struct {
	m   *JobManager
	id  string
	ctx context.Context
}

// ID 作业 ID
func (h *JobHandle) ID() string { return h.id }

// SetRunning 进入 Running 并更新状态文本
// 已经完成的作业不会回退
func (h *JobHandle) SetRunning(status string) {
	h.m.transition(h.ctx, h.id, func(j *entity.Job) {
		if j.State == entity.JobStateComplete {
			return
		}
		j.State = entity.JobStateRunning
		j.Status = status
	})
}

func (h *JobHandle) complete(status string, failed bool, code int) {
	h.m.transition(h.ctx, h.id, func(j *entity.Job) {
		j.State = entity.JobStateComplete
		j.Status = status
		j.Error = failed
		j.ReturnCode = code
		j.FinishTime = h.m.now()
	})
}
