package service

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/jimyag/virtcim/internal/virtcim/entity"
	"github.com/jimyag/virtcim/pkg/apierror"
	"github.com/jimyag/virtcim/pkg/checkrun"
	"github.com/jimyag/virtcim/pkg/libvirt"
)

// CheckMigratable 检查域能否迁移到目标主机
// 检查未通过时返回 Migratable=false 和原因，只有连接失败或域不存在才返回错误
func (s *MigrationService) CheckMigratable(ctx context.Context, req *entity.CheckMigratableRequest) (*entity.CheckMigratableResponse, error) {
	return s.checkMigratable(ctx, req.Domain, req.Destination, req.Settings, req.Params)
}

// CheckMigratableToSystem 检查域能否迁移到目标系统
func (s *MigrationService) CheckMigratableToSystem(ctx context.Context, req *entity.CheckMigratableToSystemRequest) (*entity.CheckMigratableResponse, error) {
	return s.checkMigratable(ctx, req.Domain, req.DestinationSystem, req.Settings, req.Params)
}

func (s *MigrationService) checkMigratable(ctx context.Context, name, host string, settings entity.MigrationSettings, params []string) (*entity.CheckMigratableResponse, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().Str("domain", name).Str("destination", host).Msg("Checking whether domain is migratable")

	target, err := s.resolveTarget(host, settings)
	if err != nil {
		return nil, err
	}

	dconn, err := s.dial(target.uri)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := dconn.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close remote connection")
		}
	}()

	if reason := s.checkVersion(ctx, dconn); reason != "" {
		logger.Info().Str("reason", reason).Msg("Hypervisor version check failed")
		return notMigratable(reason), nil
	}

	ok, err := s.libvirtClient.HasDomain(name)
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to lookup domain", err)
	}
	if !ok {
		return nil, apierror.WrapError(apierror.ErrNotFound, "No such domain", nil)
	}

	if reason := s.checkCaps(ctx, target, name); reason != "" {
		logger.Info().Str("reason", reason).Msg("Hypervisor capabilities check failed")
		return notMigratable(reason), nil
	}

	path, err := checkrun.WriteParams(params)
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to write check parameters", err)
	}
	defer os.Remove(path)

	if err := s.checks.RunAll(ctx, name, s.libvirtClient.URI(), path); err != nil {
		var ce *checkrun.CheckError
		if !errors.As(err, &ce) {
			return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to run migration checks", err)
		}
		reason := fmt.Sprintf("Migration check `%s' failed", ce.Script)
		logger.Info().Err(ce.Err).Str("reason", reason).Msg("An external check failed")
		return notMigratable(reason), nil
	}

	logger.Info().Str("domain", name).Msg("Domain is migratable")
	return &entity.CheckMigratableResponse{Migratable: true}, nil
}

func notMigratable(reason string) *entity.CheckMigratableResponse {
	return &entity.CheckMigratableResponse{Migratable: false, Reason: reason}
}

// checkVersion 目标 hypervisor 版本不能低于本地
func (s *MigrationService) checkVersion(ctx context.Context, dconn libvirt.LibvirtClient) string {
	local, err := s.libvirtClient.GetHypervisorVersion()
	if err != nil {
		return "Unable to get local Hypervisor version"
	}
	remote, err := dconn.GetHypervisorVersion()
	if err != nil {
		return "Unable to get remote Hypervisor version"
	}
	zerolog.Ctx(ctx).Debug().
		Str("local", libvirt.FormatVersion(local)).
		Str("remote", libvirt.FormatVersion(remote)).
		Msg("Hypervisor versions")
	if remote < local {
		return fmt.Sprintf("Remote hypervisor is older than local (%d < %d)", remote, local)
	}
	return ""
}

// checkCaps 运行中的 KVM 域不能已经处于 QEMU 迁移过程中
// 查询失败不阻止迁移
func (s *MigrationService) checkCaps(ctx context.Context, target *migrationTarget, name string) string {
	if target.classPrefix != "KVM" {
		return ""
	}

	logger := zerolog.Ctx(ctx)
	info, err := s.libvirtClient.GetDomainInfo(name)
	if err != nil {
		logger.Debug().Err(err).Msg("Skip QEMU migration status check")
		return ""
	}
	if !info.Running() {
		logger.Debug().Str("state", info.StateString()).Msg("Domain not running, skip QEMU migration status check")
		return ""
	}

	status, err := s.libvirtClient.QueryMigration(name)
	if err != nil {
		logger.Debug().Err(err).Msg("Skip QEMU migration status check")
		return ""
	}
	if status.Active() {
		return fmt.Sprintf("Domain already has a migration in progress (%s)", status.Status)
	}
	return ""
}
