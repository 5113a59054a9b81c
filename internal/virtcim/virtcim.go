// Package virtcim 提供 virtcim 服务器的主入口和初始化逻辑
package virtcim

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/jimmicro/grace"
	"github.com/rs/zerolog"

	"github.com/jimyag/virtcim/internal/virtcim/api"
	"github.com/jimyag/virtcim/internal/virtcim/config"
	"github.com/jimyag/virtcim/internal/virtcim/repository"
	"github.com/jimyag/virtcim/internal/virtcim/service"
	"github.com/jimyag/virtcim/pkg/libvirt"
)

type Server struct {
	cfg           *config.Config
	api           *api.API
	repo          *repository.Repository
	libvirtClient libvirt.LibvirtClient

	closeOnce sync.Once
	closeErr  error
}

func New(cfg *config.Config) (*Server, error) {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger

	// 1. 打开作业数据库
	repo, err := repository.New(cfg.DBPath())
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	logger.Info().Str("path", cfg.DBPath()).Msg("Job database opened")

	// 2. 连接本地 hypervisor
	libvirtClient, err := libvirt.NewWithURI(cfg.LibvirtURI)
	if err != nil {
		_ = repo.Close()
		return nil, err
	}
	if v, err := libvirtClient.GetHypervisorVersion(); err == nil {
		logger.Info().Str("uri", cfg.LibvirtURI).Str("version", libvirt.FormatVersion(v)).Msg("Connected to hypervisor")
	}

	// 3. 创建服务
	jobs := service.NewJobManager(repository.NewJobRepository(repo.DB()), service.LogNotifier{})
	services := &api.Services{
		Domain:    service.NewDomainService(libvirtClient, jobs),
		Migration: service.NewMigrationService(libvirtClient, libvirt.Connect, jobs, cfg.Migration),
		SSHKey:    service.NewSSHKeyService(cfg.Migration.SSHTmpKey),
		Snapshot:  service.NewSnapshotService(libvirtClient, jobs, cfg.SaveDir),
		Pool:      service.NewStoragePoolService(libvirtClient),
		Filter:    service.NewFilterService(libvirtClient),
		Jobs:      jobs,
	}

	// 4. 创建 API
	apiInstance, err := api.New(cfg.Address, services)
	if err != nil {
		_ = libvirtClient.Close()
		_ = repo.Close()
		return nil, err
	}

	return &Server{
		cfg:           cfg,
		api:           apiInstance,
		repo:          repo,
		libvirtClient: libvirtClient,
	}, nil
}

func (s *Server) Run(ctx context.Context) error {
	services := []grace.Grace{
		s.api,
	}

	shepherd := grace.NewShepherd(
		services,
		grace.WithTimeout(30*time.Second),
		grace.WithLogger(&zerologLogger{}),
	)

	shepherd.Start(ctx)
	return s.close()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.api.Shutdown(ctx); err != nil {
		return err
	}
	return s.close()
}

func (s *Server) close() error {
	s.closeOnce.Do(func() {
		if err := s.libvirtClient.Close(); err != nil {
			zerolog.DefaultContextLogger.Warn().Err(err).Msg("Failed to close libvirt connection")
		}
		s.closeErr = s.repo.Close()
	})
	return s.closeErr
}

// Name 实现 grace.Grace 接口
func (s *Server) Name() string {
	return "virtcim Server"
}

// zerologLogger 实现 grace.Logger 接口
type zerologLogger struct{}

func (l *zerologLogger) Info(msg string, args ...interface{}) {
	logger := zerolog.DefaultContextLogger.Info()
	if len(args) > 0 {
		logger.Msgf(msg, args...)
	} else {
		logger.Msg(msg)
	}
}

func (l *zerologLogger) Error(msg string, args ...interface{}) {
	logger := zerolog.DefaultContextLogger.Error()
	if len(args) > 0 {
		logger.Msgf(msg, args...)
	} else {
		logger.Msg(msg)
	}
}
