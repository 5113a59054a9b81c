package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jimyag/virtcim/internal/virtcim/entity"
)

// Notifier 接收作业生命周期事件
// 每次状态变更在持久化之后才会通知，prev 为变更前的快照
type Notifier interface {
	Created(ctx context.Context, job *entity.Job)
	Modified(ctx context.Context, prev, cur *entity.Job)
	Deleted(ctx context.Context, job *entity.Job)
}

// LogNotifier 将作业事件写入日志
type LogNotifier struct{}

func (LogNotifier) Created(ctx context.Context, job *entity.Job) {
	zerolog.Ctx(ctx).Info().
		Str("jobID", job.ID).
		Str("kind", string(job.Kind)).
		Str("domain", job.Domain).
		Msg("Job created")
}

func (LogNotifier) Modified(ctx context.Context, prev, cur *entity.Job) {
	zerolog.Ctx(ctx).Info().
		Str("jobID", cur.ID).
		Stringer("prevState", prev.State).
		Stringer("state", cur.State).
		Str("status", cur.Status).
		Bool("error", cur.Error).
		Msg("Job modified")
}

func (LogNotifier) Deleted(ctx context.Context, job *entity.Job) {
	zerolog.Ctx(ctx).Info().
		Str("jobID", job.ID).
		Str("status", job.Status).
		Msg("Job finished")
}
