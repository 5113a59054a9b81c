package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/jimyag/virtcim/internal/virtcim/repository/model"
)

// JobRepository 作业仓库接口
type JobRepository interface {
	Create(ctx context.Context, job *model.Job) error
	GetByID(ctx context.Context, id string) (*model.Job, error)
	GetByUUID(ctx context.Context, uuid string) (*model.Job, error)
	List(ctx context.Context, filters map[string]any) ([]*model.Job, error)
	Update(ctx context.Context, job *model.Job) error
	Delete(ctx context.Context, id string) error
}

type jobRepository struct {
	db *gorm.DB
}

// NewJobRepository 创建作业仓库
func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

// Create 创建作业
func (r *jobRepository) Create(ctx context.Context, job *model.Job) error {
	return r.db.WithContext(ctx).Create(job).Error
}

// GetByID 根据 ID 获取作业
func (r *jobRepository) GetByID(ctx context.Context, id string) (*model.Job, error) {
	var job model.Job
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&job).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// GetByUUID 根据实例 UUID 获取作业
func (r *jobRepository) GetByUUID(ctx context.Context, uuid string) (*model.Job, error) {
	var job model.Job
	if err := r.db.WithContext(ctx).Where("uuid = ?", uuid).First(&job).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// List 按开始时间列出作业
func (r *jobRepository) List(ctx context.Context, filters map[string]any) ([]*model.Job, error) {
	var jobs []*model.Job
	query := r.db.WithContext(ctx).Model(&model.Job{})

	if kind, ok := filters["kind"]; ok {
		query = query.Where("kind = ?", kind)
	}
	if domain, ok := filters["domain"]; ok {
		query = query.Where("domain = ?", domain)
	}
	if state, ok := filters["state"]; ok {
		query = query.Where("state = ?", state)
	}

	if err := query.Order("start_time, id").Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// Update 更新作业
func (r *jobRepository) Update(ctx context.Context, job *model.Job) error {
	return r.db.WithContext(ctx).Save(job).Error
}

// Delete 删除作业
func (r *jobRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&model.Job{}, "id = ?", id).Error
}
