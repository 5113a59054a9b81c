package service

import (
	"context"
	"fmt"
	"time"

	golibvirt "github.com/digitalocean/go-libvirt"
	"github.com/rs/zerolog"

	"github.com/jimyag/virtcim/internal/virtcim/config"
	"github.com/jimyag/virtcim/internal/virtcim/entity"
	"github.com/jimyag/virtcim/pkg/apierror"
	"github.com/jimyag/virtcim/pkg/checkrun"
	"github.com/jimyag/virtcim/pkg/libvirt"
)

// MigrationService 虚拟机迁移服务
type MigrationService struct {
	libvirtClient libvirt.LibvirtClient
	connect       libvirt.Connector
	jobs          *JobManager
	checks        *checkrun.Runner
	cfg           config.MigrationConfig
}

// NewMigrationService 创建迁移服务
func NewMigrationService(
	libvirtClient libvirt.LibvirtClient,
	connect libvirt.Connector,
	jobs *JobManager,
	cfg config.MigrationConfig,
) *MigrationService {
	return &MigrationService{
		libvirtClient: libvirtClient,
		connect:       connect,
		jobs:          jobs,
		checks:        checkrun.New(cfg.ChecksDir, cfg.CheckTimeout),
		cfg:           cfg,
	}
}

// migrationTarget 解析后的迁移目标
type migrationTarget struct {
	host        string
	uri         string
	classPrefix string
	settings    entity.MigrationSettings
}

// resolveTarget 补全默认值并构造目标 URI
func (s *MigrationService) resolveTarget(host string, settings entity.MigrationSettings) (*migrationTarget, error) {
	if settings.Type == 0 {
		settings.Type = entity.MigrationTypeLive
	}
	if settings.Transport == 0 {
		settings.Transport = entity.TransportSSH
	}
	if !settings.Type.Valid() {
		return nil, apierror.WrapError(apierror.ErrInvalidParameter,
			fmt.Sprintf("Unsupported migration type %d", settings.Type), nil)
	}

	var params string
	if settings.WithoutRootKey {
		if s.cfg.SSHTmpKey == "" {
			return nil, errSSHKeyDisabled()
		}
		params = keyfileParam(s.cfg.SSHTmpKey)
	}

	prefix := ClassPrefixFromURI(s.libvirtClient.URI())
	uri := DestURI(prefix, host, params, settings.Transport)
	if uri == "" {
		return nil, apierror.WrapError(apierror.ErrInvalidParameter, "Failed to construct a valid libvirt URI", nil)
	}

	return &migrationTarget{host: host, uri: uri, classPrefix: prefix, settings: settings}, nil
}

func (s *MigrationService) dial(uri string) (libvirt.LibvirtClient, error) {
	dconn, err := s.connect(uri)
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrConnectionFailed,
			fmt.Sprintf("Unable to connect to remote host (%s)", uri), err)
	}
	return dconn, nil
}

// Migrate 将域迁移到目标主机
// 立即返回已创建的作业，迁移在后台执行
func (s *MigrationService) Migrate(ctx context.Context, req *entity.MigrateRequest) (*entity.MigrateResponse, error) {
	return s.migrate(ctx, req.Domain, req.Destination, req.Settings)
}

// MigrateToSystem 将域迁移到目标系统
func (s *MigrationService) MigrateToSystem(ctx context.Context, req *entity.MigrateToSystemRequest) (*entity.MigrateResponse, error) {
	return s.migrate(ctx, req.Domain, req.DestinationSystem, req.Settings)
}

func (s *MigrationService) migrate(ctx context.Context, name, host string, settings entity.MigrationSettings) (*entity.MigrateResponse, error) {
	logger := zerolog.Ctx(ctx)

	target, err := s.resolveTarget(host, settings)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("domain", name).
		Str("destURI", target.uri).
		Stringer("type", target.settings.Type).
		Msg("Migrating domain")

	dconn, err := s.dial(target.uri)
	if err != nil {
		return nil, err
	}

	tmpl := &entity.Job{
		Kind:          entity.JobKindMigration,
		Domain:        name,
		Destination:   target.host,
		DestURI:       target.uri,
		ClassPrefix:   target.classPrefix,
		MigrationType: target.settings.Type,
		Transport:     target.settings.Transport,
	}

	s.jobs.MarkMigrating(name)
	job, err := s.jobs.Run(ctx, tmpl, func(ctx context.Context, h *JobHandle) error {
		defer func() {
			s.jobs.ClearMigrating(name)
			if err := dconn.Close(); err != nil {
				zerolog.Ctx(ctx).Warn().Err(err).Msg("Failed to close remote connection")
			}
		}()
		return s.migrateWorker(ctx, dconn, target, name)
	})
	if err != nil {
		s.jobs.ClearMigrating(name)
		_ = dconn.Close()
		return nil, err
	}

	logger.Info().Str("jobID", job.ID).Msg("Migration job started")
	return &entity.MigrateResponse{Job: job, ReturnCode: entity.ReturnJobStarted}, nil
}

func (s *MigrationService) migrateWorker(ctx context.Context, dconn libvirt.LibvirtClient, target *migrationTarget, name string) error {
	logger := zerolog.Ctx(ctx)

	if target.host != "localhost" {
		exists, err := dconn.HasDomain(name)
		if err != nil {
			return failJob(err, "Failed to lookup domain `%s' on remote host", name)
		}
		if exists {
			return failJob(nil, "Remote already has domain `%s'", name)
		}
	}

	ok, err := s.libvirtClient.HasDomain(name)
	if err != nil || !ok {
		return failJob(err, "Failed to lookup domain `%s'", name)
	}

	xml, err := s.libvirtClient.GetDomainXML(name, golibvirt.DomainXMLInactive|golibvirt.DomainXMLSecure)
	if err != nil {
		return failJob(err, "Unable to retrieve domain XML")
	}

	switch target.settings.Type {
	case entity.MigrationTypeOther:
		logger.Debug().Msg("Offline migration")
		err = s.ensureOffline(name)
	case entity.MigrationTypeLive:
		logger.Debug().Msg("Live migration")
		err = s.handleMigrate(name, target.uri, golibvirt.MigrateLive)
	case entity.MigrationTypeResume:
		logger.Debug().Msg("Static migration")
		err = s.handleMigrate(name, target.uri, 0)
	case entity.MigrationTypeRestart:
		logger.Debug().Msg("Restart migration")
		err = s.handleRestart(ctx, name)
	default:
		err = failJob(nil, "Unsupported migration type (%d)", target.settings.Type)
	}
	if err != nil {
		return err
	}

	return s.completeMigrate(ctx, dconn, name, xml, target.settings.Type == entity.MigrationTypeRestart)
}

func (s *MigrationService) domainState(name string) (golibvirt.DomainState, error) {
	state, err := s.libvirtClient.GetDomainState(name)
	if err != nil {
		return state, failJob(err, "Error getting domain info")
	}
	return state, nil
}

func (s *MigrationService) ensureOffline(name string) error {
	state, err := s.domainState(name)
	if err != nil {
		return err
	}
	if state != golibvirt.DomainShutoff {
		return failJob(nil, "Domain must be shut off for offline migration")
	}
	return nil
}

func (s *MigrationService) handleMigrate(name, uri string, flags golibvirt.DomainMigrateFlags) error {
	state, err := s.domainState(name)
	if err != nil {
		return err
	}
	if state == golibvirt.DomainShutoff {
		return failJob(nil, "Domain must be running for live or resume migration")
	}

	if err := s.libvirtClient.MigrateDomain(name, uri, flags); err != nil {
		return failJob(err, "Migration Failed")
	}
	return nil
}

// handleRestart 关闭域并等待关机完成
func (s *MigrationService) handleRestart(ctx context.Context, name string) error {
	logger := zerolog.Ctx(ctx)

	if err := s.libvirtClient.ShutdownDomain(name); err != nil {
		return failJob(err, "Unable to shutdown guest")
	}

	for i := 0; i < s.cfg.ShutdownPollCount; i++ {
		if i%30 == 0 {
			logger.Debug().Str("domain", name).Msg("Polling for shutdown completion")
		}
		state, err := s.libvirtClient.GetDomainState(name)
		if err == nil && state == golibvirt.DomainShutoff {
			logger.Debug().Str("domain", name).Msg("Domain shutdown")
			return nil
		}
		time.Sleep(s.cfg.ShutdownPollInterval)
	}

	timeout := s.cfg.ShutdownPollInterval * time.Duration(s.cfg.ShutdownPollCount)
	return failJob(nil, "Domain failed to shutdown in %s", timeout)
}

// completeMigrate 删除本地定义并在目标端重新定义
func (s *MigrationService) completeMigrate(ctx context.Context, dconn libvirt.LibvirtClient, name, xml string, restart bool) error {
	logger := zerolog.Ctx(ctx)

	var err error
	for i := 0; i <= s.cfg.UndefineRetryCount; i++ {
		if err = s.libvirtClient.UndefineDomain(name); err == nil {
			break
		}
		logger.Debug().Err(err).Str("domain", name).Msg("Polling to undefine guest")
		time.Sleep(s.cfg.UndefineRetryInterval)
	}
	if err != nil {
		logger.Warn().Err(err).Str("domain", name).Msg("Undefine of local domain failed")
	}

	if err := dconn.DefineDomain(xml); err != nil {
		return failJob(err, "Failed to define domain")
	}

	if restart {
		logger.Debug().Str("domain", name).Msg("Restarting domain on remote host")
		if err := dconn.StartDomain(name); err != nil {
			return failJob(err, "Failed to start domain on remote host")
		}
	}
	return nil
}

func errSSHKeyDisabled() error {
	return apierror.WrapError(apierror.ErrNotSupported,
		"Migration with special ssh key is not enabled in config file.", nil)
}
