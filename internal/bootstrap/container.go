package bootstrap

import (
	"context"
	"log"

	"spaced-learning-be/internal/config"
	"spaced-learning-be/internal/controller"
	"spaced-learning-be/internal/handler"
	"spaced-learning-be/internal/pkg/logger"
	"spaced-learning-be/internal/repository/memory"
	"spaced-learning-be/internal/repository/unitofwork"
	"spaced-learning-be/internal/service"
	"spaced-learning-be/internal/websocket"
	pkgNats "spaced-learning-be/pkg/nats"
	"spaced-learning-be/pkg/srs"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	SessionController     controller.ISessionController
	DeckSessionController controller.IDeckSessionController
	JobController         controller.IJobController
	SkillTreeController   controller.ISkillTreeController

	// Background services (exposed for main.go to run)
	GeneratorService service.IGeneratorService

	// WebSockets & push
	PushHandler  *handler.PushHandler
	WebSocketHub *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event bus (in-process job queue)
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	natsPub, err := pkgNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pkgNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket hub
	wsLogger := logger.NewIsolatedLogger("logs/push.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 3. Services
	distractorCache := memory.NewDistractorCache()
	scheduler := srs.NewFSRS()

	publisherService := service.NewPublisherService(pubSub, cfg.App.JobTopicName)
	distractorService := service.NewDistractorService(uowFactory, distractorCache)
	generatorService := service.NewGeneratorService(
		pubSub,
		cfg.App.JobTopicName,
		uowFactory,
		distractorService,
		natsPub,
		sysLogger,
	)

	selectionService := service.NewSelectionService(uowFactory, distractorService, publisherService, sysLogger)
	traversalService := service.NewTraversalService(uowFactory)
	masteryService := service.NewMasteryService()
	sessionService := service.NewSessionService(
		uowFactory,
		selectionService,
		traversalService,
		masteryService,
		scheduler,
		natsPub,
		cfg.Study,
		sysLogger,
	)
	deckSyncService := service.NewDeckSyncService(uowFactory, sysLogger)
	jobService := service.NewJobService(uowFactory, rdb)

	// Push worker: NATS events -> connected clients
	notifService := service.NewNotificationService(natsSub, wsHub, wsLogger)
	if natsSub != nil {
		go notifService.Start()
	}

	pushHandler := handler.NewPushHandler(wsHub, wsLogger)

	// 4. Controllers
	return &Container{
		SessionController:     controller.NewSessionController(sessionService),
		DeckSessionController: controller.NewDeckSessionController(deckSyncService),
		JobController:         controller.NewJobController(jobService),
		SkillTreeController:   controller.NewSkillTreeController(traversalService),

		GeneratorService: generatorService,

		PushHandler:  pushHandler,
		WebSocketHub: wsHub,
	}
}
