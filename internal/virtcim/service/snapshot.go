package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/jimyag/virtcim/internal/virtcim/entity"
	"github.com/jimyag/virtcim/pkg/apierror"
	"github.com/jimyag/virtcim/pkg/libvirt"
)

// SnapshotService 内存快照服务
// 快照是 libvirt save 生成的内存镜像，路径为 <saveDir>/<domain>.save
type SnapshotService struct {
	libvirtClient libvirt.LibvirtClient
	jobs          *JobManager
	saveDir       string
}

// NewSnapshotService 创建快照服务
func NewSnapshotService(libvirtClient libvirt.LibvirtClient, jobs *JobManager, saveDir string) *SnapshotService {
	return &SnapshotService{
		libvirtClient: libvirtClient,
		jobs:          jobs,
		saveDir:       saveDir,
	}
}

func (s *SnapshotService) savePath(domain string) string {
	return filepath.Join(s.saveDir, domain+".save")
}

// CreateSnapshot 创建快照作业
// Mem 只保存，域随后停止；MemT 保存后立即恢复
func (s *SnapshotService) CreateSnapshot(ctx context.Context, req *entity.CreateSnapshotRequest) (*entity.CreateSnapshotResponse, error) {
	logger := zerolog.Ctx(ctx)

	var restore bool
	switch req.Type {
	case entity.SnapshotTypeMem:
	case entity.SnapshotTypeMemT:
		restore = true
	default:
		return nil, apierror.WrapError(apierror.ErrNotSupported,
			fmt.Sprintf("Only memory(%d,%d) snapshots are supported", entity.SnapshotTypeMem, entity.SnapshotTypeMemT), nil)
	}

	ok, err := s.libvirtClient.HasDomain(req.Domain)
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to lookup domain", err)
	}
	if !ok {
		return nil, apierror.WrapError(apierror.ErrNotFound, fmt.Sprintf("No such domain %s", req.Domain), nil)
	}

	path := s.savePath(req.Domain)
	logger.Info().
		Str("domain", req.Domain).
		Int("type", int(req.Type)).
		Str("path", path).
		Msg("Creating snapshot")

	tmpl := &entity.Job{
		Kind:         entity.JobKindSnapshot,
		Domain:       req.Domain,
		SnapshotType: req.Type,
	}
	job, err := s.jobs.Run(ctx, tmpl, func(ctx context.Context, h *JobHandle) error {
		return s.doSnapshot(ctx, h, req.Domain, path, restore)
	})
	if err != nil {
		return nil, err
	}

	return &entity.CreateSnapshotResponse{Job: job, ReturnCode: entity.ReturnJobStarted}, nil
}

func (s *SnapshotService) doSnapshot(ctx context.Context, h *JobHandle, domain, path string, restore bool) error {
	logger := zerolog.Ctx(ctx)

	if err := s.libvirtClient.SaveDomain(domain, path); err != nil {
		return failJob(err, "Save failed")
	}
	logger.Debug().Str("path", path).Msg("Domain saved")
	h.SetRunning("Save finished")

	if !restore {
		return nil
	}

	if err := s.libvirtClient.RestoreDomain(path); err != nil {
		return failJob(err, "Restore failed")
	}
	h.SetRunning("Restore finished")
	return nil
}

// DestroySnapshot 删除快照镜像
func (s *SnapshotService) DestroySnapshot(ctx context.Context, req *entity.SnapshotRequest) error {
	path := s.savePath(req.Domain)
	zerolog.Ctx(ctx).Info().Str("domain", req.Domain).Str("path", path).Msg("Destroying snapshot")

	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return apierror.WrapError(apierror.ErrNotFound, fmt.Sprintf("Unable to remove snapshot: %s", path), err)
		}
		return apierror.WrapError(apierror.ErrInternalError, fmt.Sprintf("Unable to remove snapshot: %s", path), err)
	}
	return nil
}

// ApplySnapshot 从快照镜像恢复域
func (s *SnapshotService) ApplySnapshot(ctx context.Context, req *entity.SnapshotRequest) error {
	path := s.savePath(req.Domain)
	zerolog.Ctx(ctx).Info().Str("domain", req.Domain).Str("path", path).Msg("Applying snapshot")

	if _, err := os.Stat(path); err != nil {
		return apierror.WrapError(apierror.ErrNotFound, fmt.Sprintf("No snapshot for domain %s", req.Domain), err)
	}
	if err := s.libvirtClient.RestoreDomain(path); err != nil {
		return apierror.WrapError(apierror.ErrInternalError, "Restore failed", err)
	}
	return nil
}
