// Package service 提供业务逻辑层的服务实现
package service

import (
	"github.com/jinzhu/copier"

	"github.com/jimyag/virtcim/internal/virtcim/entity"
	"github.com/jimyag/virtcim/internal/virtcim/repository/model"
)

// jobEntityToModel 将 entity.Job 转换为 model.Job
func jobEntityToModel(e *entity.Job) (*model.Job, error) {
	m := &model.Job{}
	if err := copier.Copy(m, e); err != nil {
		return nil, err
	}

	// 枚举字段
	m.Kind = string(e.Kind)
	m.MigrationType = int(e.MigrationType)
	m.Transport = int(e.Transport)
	m.SnapshotType = int(e.SnapshotType)
	m.State = int(e.State)

	return m, nil
}

// jobModelToEntity 将 model.Job 转换为 entity.Job
func jobModelToEntity(m *model.Job) (*entity.Job, error) {
	e := &entity.Job{}
	if err := copier.Copy(e, m); err != nil {
		return nil, err
	}

	e.Kind = entity.JobKind(m.Kind)
	e.MigrationType = entity.MigrationType(m.MigrationType)
	e.Transport = entity.Transport(m.Transport)
	e.SnapshotType = entity.SnapshotType(m.SnapshotType)
	e.State = entity.JobState(m.State)

	return e, nil
}
