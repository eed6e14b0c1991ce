package wire

import (
	"Mediahub/internal/api"
	"Mediahub/internal/api/config"
	"Mediahub/internal/api/handler"
	"Mediahub/internal/job"
	"Mediahub/internal/pkg/cron"
	"Mediahub/internal/pkg/kafka"
	"Mediahub/internal/repository"
	"Mediahub/internal/service"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router       *gin.Engine
	DB           *gorm.DB
	CronMgr      *cron.Manager
	KafkaManager *kafka.ConsumerManager
	// Publisher Kafka 未启用时为 nil
	Publisher *kafka.LifecyclePublisher
}

func BuildApplication(db *gorm.DB, cfg *config.Config) (*ApplicationContainer, error) {
	loc, err := time.LoadLocation(cfg.Analytics.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load analytics timezone: %w", err)
	}

	contentRepo := repository.NewContentRepo(db)
	eventRepo := repository.NewSessionEventRepo(db)
	subRepo := repository.NewSubscriptionRepo(db)
	activityRepo := repository.NewActivityRepo(db)

	var (
		publisher     service.EventPublisher = service.NewNoopPublisher()
		kafkaProducer *kafka.LifecyclePublisher
	)
	if cfg.Kafka.Enable {
		kafkaProducer, err = kafka.NewLifecyclePublisher(cfg.Kafka)
		if err != nil {
			return nil, err
		}
		publisher = kafkaProducer
	}

	quotaService := service.NewQuotaService(contentRepo, subRepo, cfg.Quota.DefaultUnits, nil)
	activityService := service.NewActivityService(activityRepo, nil)
	contentService := service.NewContentService(contentRepo, eventRepo, quotaService, activityService, publisher, service.ContentOptions{
		WriteRetries: cfg.Lifecycle.WriteRetries,
		Location:     loc,
	})
	analyticsService := service.NewAnalyticsService(contentRepo, eventRepo, service.AnalyticsOptions{
		Location:     loc,
		DefaultDays:  cfg.Analytics.DefaultDays,
		QueryTimeout: cfg.Analytics.QueryTimeout,
		CacheTTL:     cfg.Analytics.CacheTTL,
	})
	publishService := service.NewPublishService(contentRepo, contentService, service.SchedulerOptions{
		BatchSize:    cfg.Scheduler.BatchSize,
		Concurrency:  cfg.Scheduler.Concurrency,
		ItemTimeout:  cfg.Scheduler.ItemTimeout,
		MaxAttempts:  cfg.Scheduler.MaxAttempts,
		RetryBackoff: cfg.Scheduler.RetryBackoff,
	})

	handlers := &api.HandlersGroup{
		ContentHandler:   handler.NewContentHandler(contentService),
		SessionHandler:   handler.NewSessionHandler(contentService),
		DashboardHandler: handler.NewDashboardHandler(analyticsService),
		QuotaHandler:     handler.NewQuotaHandler(quotaService),
		ActivityHandler:  handler.NewActivityHandler(activityService),
	}
	router := api.SetupRouter(handlers)

	cronMgr := cron.NewCronManager(
		job.NewAutoPublishJob(publishService, cfg.Scheduler.LockTTL, nil),
		job.NewReconcileJob(analyticsService, cfg.Reconcile.Limit),
		cfg.Scheduler.Spec,
		cfg.Reconcile.Spec,
	)

	app := &ApplicationContainer{
		Router:    router,
		DB:        db,
		CronMgr:   cronMgr,
		Publisher: kafkaProducer,
	}

	if cfg.Kafka.Enable {
		app.KafkaManager, err = kafka.NewConsumerManager(cfg, contentService)
		if err != nil {
			if kafkaProducer != nil {
				_ = kafkaProducer.Close()
			}
			return nil, err
		}
	}
	return app, nil
}
