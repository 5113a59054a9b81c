// Package api 提供 HTTP 接口，所有路由都是 /api 下的 POST 动作
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jimyag/virtcim/internal/virtcim/service"
	"github.com/jimyag/virtcim/pkg/ginx"
)

// Services API 依赖的服务
type Services struct {
	Domain    *service.DomainService
	Migration *service.MigrationService
	SSHKey    *service.SSHKeyService
	Snapshot  *service.SnapshotService
	Pool      *service.StoragePoolService
	Filter    *service.FilterService
	Jobs      *service.JobManager
}

type API struct {
	engine *gin.Engine
	server *http.Server

	domain    *Domain
	migration *Migration
	snapshot  *Snapshot
	pool      *StoragePool
	filter    *Filter
	job       *Job
}

func New(addr string, svcs *Services) (*API, error) {
	if svcs == nil {
		return nil, errors.New("services are required")
	}

	logger := log.Logger
	if zerolog.DefaultContextLogger != nil {
		logger = *zerolog.DefaultContextLogger
	}

	engine := gin.New()
	// zerolog.Ctx(*gin.Context) 需要回落到 request context
	engine.ContextWithFallback = true
	engine.Use(gin.Recovery(), ginx.RequestContext(logger))

	api := &API{
		engine:    engine,
		domain:    NewDomain(svcs.Domain),
		migration: NewMigration(svcs.Migration, svcs.SSHKey),
		snapshot:  NewSnapshot(svcs.Snapshot),
		pool:      NewStoragePool(svcs.Pool),
		filter:    NewFilter(svcs.Filter),
		job:       NewJob(svcs.Jobs),
	}

	group := engine.Group("/api")
	api.domain.RegisterRoutes(group)
	api.migration.RegisterRoutes(group)
	api.snapshot.RegisterRoutes(group)
	api.pool.RegisterRoutes(group)
	api.filter.RegisterRoutes(group)
	api.job.RegisterRoutes(group)

	api.server = &http.Server{
		Addr:    addr,
		Handler: engine,
	}
	return api, nil
}

// Handler 返回 HTTP handler
func (a *API) Handler() http.Handler {
	return a.engine
}

func (a *API) Run(ctx context.Context) error {
	zerolog.Ctx(ctx).Info().Str("addr", a.server.Addr).Msg("API server listening")
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *API) Shutdown(ctx context.Context) error {
	return a.server.Shutdown(ctx)
}

// Name 实现 grace.Grace 接口
func (a *API) Name() string {
	return "API Server"
}
