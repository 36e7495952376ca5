package provider

import (
	"github.com/routepilot/internal/cache"
	"github.com/routepilot/internal/config"
	"github.com/routepilot/internal/logger"
	"github.com/routepilot/internal/models"
	"github.com/routepilot/internal/queue"
	"github.com/routepilot/internal/repository"
	"github.com/routepilot/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	SalesmanRepo   repository.SalesmanRepository
	CustomerRepo   repository.CustomerRepository
	TemplateRepo   repository.RouteTemplateRepository
	VisitRepo      repository.VisitRepository
	TrackerRepo    repository.TrackerEventRepository
	SalesOrderRepo repository.SalesOrderRepository

	// Services
	FieldAuthService    *service.FieldAuthService
	TemplateService     *service.RouteTemplateService
	MaterializerService *service.MaterializerService
	TrackerService      *service.VisitTrackerService
	CorrelatorService   *service.CorrelatorService
	ReportService       *service.ReportService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.SalesmanRepo = repository.NewSalesmanRepository(db)
	c.CustomerRepo = repository.NewCustomerRepository(db)
	c.TemplateRepo = repository.NewRouteTemplateRepository(db)
	c.VisitRepo = repository.NewVisitRepository(db)
	c.TrackerRepo = repository.NewTrackerEventRepository(db)
	c.SalesOrderRepo = repository.NewSalesOrderRepository(db)
}

func (c *Container) initServices() {
	c.FieldAuthService = service.NewFieldAuthService(c.Config, c.SalesmanRepo)
	c.TemplateService = service.NewRouteTemplateService(c.TemplateRepo, c.CustomerRepo, c.SalesmanRepo)
	c.MaterializerService = service.NewMaterializerService(c.TemplateRepo, c.VisitRepo)
	c.TrackerService = service.NewVisitTrackerService(c.VisitRepo, c.TrackerRepo, c.SalesOrderRepo)
	c.CorrelatorService = service.NewCorrelatorService(c.VisitRepo, c.TrackerRepo)
	c.ReportService = service.NewReportService(c.VisitRepo, c.CustomerRepo, c.SalesmanRepo, c.CorrelatorService)
}
