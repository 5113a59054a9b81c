package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jimyag/virtcim/internal/virtcim/entity"
	"github.com/jimyag/virtcim/internal/virtcim/service"
	"github.com/jimyag/virtcim/pkg/ginx"
)

// JobQuerier 作业查询接口
type JobQuerier interface {
	Get(ctx context.Context, id string) (*entity.Job, error)
	List(ctx context.Context, req *entity.ListJobsRequest) ([]*entity.Job, error)
}

type Job struct {
	jobs JobQuerier
}

func NewJob(jobs *service.JobManager) *Job {
	return &Job{
		jobs: jobs,
	}
}

func (j *Job) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/describe-job", ginx.Adapt(j.DescribeJob))
	router.POST("/list-jobs", ginx.Adapt(j.ListJobs))
}

func (j *Job) DescribeJob(ctx *gin.Context, req *entity.DescribeJobRequest) (*entity.DescribeJobResponse, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().Str("jobID", req.ID).Msg("API: DescribeJob called")

	job, err := j.jobs.Get(ctx, req.ID)
	if err != nil {
		logger.Error().Err(err).Str("jobID", req.ID).Msg("Failed to describe job")
		return nil, err
	}
	return &entity.DescribeJobResponse{Job: job}, nil
}

func (j *Job) ListJobs(ctx *gin.Context, req *entity.ListJobsRequest) (*entity.ListJobsResponse, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().Str("kind", string(req.Kind)).Str("domain", req.Domain).Msg("API: ListJobs called")

	jobs, err := j.jobs.List(ctx, req)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list jobs")
		return nil, err
	}
	return &entity.ListJobsResponse{Jobs: jobs}, nil
}
