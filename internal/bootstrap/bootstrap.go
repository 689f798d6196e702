package bootstrap

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/parking-service/internal/api/http"
	"github.com/spec-kit/parking-service/internal/api/http/handlers"
	"github.com/spec-kit/parking-service/internal/auth"
	"github.com/spec-kit/parking-service/internal/config"
	"github.com/spec-kit/parking-service/internal/events"
	"github.com/spec-kit/parking-service/internal/observability"
	"github.com/spec-kit/parking-service/internal/persistence"
	"github.com/spec-kit/parking-service/internal/repository"
	"github.com/spec-kit/parking-service/internal/repository/memory"
	"github.com/spec-kit/parking-service/internal/service"
	"github.com/spec-kit/parking-service/internal/worker"
)

// Repositories is the storage backend of the server.
type Repositories struct {
	Users    repository.UserRepository
	Vehicles repository.VehicleRepository
	Slots    repository.ParkingSlotRepository
	Requests repository.SlotRequestRepository
}

// PostgresRepositories binds every repository to the pool.
func PostgresRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Users:    repository.NewUserRepository(pool),
		Vehicles: repository.NewVehicleRepository(pool),
		Slots:    repository.NewParkingSlotRepository(pool),
		Requests: repository.NewSlotRequestRepository(pool),
	}
}

// MemoryRepositories binds every repository to one in-memory store.
func MemoryRepositories(store *memory.Store) Repositories {
	return Repositories{
		Users:    store.Users(),
		Vehicles: store.Vehicles(),
		Slots:    store.Slots(),
		Requests: store.Requests(),
	}
}

// Options configures New. Postgres and Redis may be nil.
type Options struct {
	Config   config.Config
	Repos    Repositories
	Postgres *persistence.Postgres
	Redis    *persistence.Redis
	Sender   service.EmailSender
	Logger   *zap.Logger
}

// Server is the assembled HTTP application and the services behind it.
type Server struct {
	App           *fiber.App
	Auth          *service.AuthService
	Users         *service.UserService
	Vehicles      *service.VehicleService
	Slots         *service.SlotService
	Requests      *service.SlotRequestService
	Jobs          *service.JobService
	Notifications *service.NotificationService
	Dispatcher    events.Dispatcher
	Metrics       *observability.Metrics
}

// New wires services, handlers and routes.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	pg := opts.Postgres
	if pg == nil {
		pg = &persistence.Postgres{}
	}
	rdb := opts.Redis
	if rdb == nil {
		rdb = &persistence.Redis{}
	}

	var revoked auth.RevocationStore
	if rdb.Enabled() {
		revoked = auth.NewRedisRevocationStore(rdb.Client)
	} else {
		revoked = auth.NewMemoryRevocationStore()
	}

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()
	repos := opts.Repos

	authService := service.NewAuthService(opts.Config, service.AuthDependencies{
		UserRepo:   repos.Users,
		Revocation: revoked,
		Logger:     logger,
	})
	userService := service.NewUserService(repos.Users, opts.Config.Auth.BcryptCost, logger)
	vehicleService := service.NewVehicleService(service.VehicleDependencies{
		VehicleRepo: repos.Vehicles,
		UserRepo:    repos.Users,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	slotService := service.NewSlotService(repos.Slots, logger)
	requestService := service.NewSlotRequestService(service.SlotRequestDependencies{
		RequestRepo: repos.Requests,
		VehicleRepo: repos.Vehicles,
		UserRepo:    repos.Users,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	jobService := service.NewJobService(repos.Requests, repos.Users, dispatcher, logger)
	notifications := service.NewNotificationService(dispatcher, opts.Sender, logger)
	worker.StartNotificationWorker(notifications, logger)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), repos.Users, authService.Revocation(), logger)

	app := httptransport.NewApp(opts.Config.App.Name, logger, metrics, opts.Config.App.RequestTimeout(), httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(opts.Config.App.Name, opts.Config.App.Version, pg, rdb, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUsersHandler(userService),
		Vehicles:       handlers.NewVehiclesHandler(vehicleService),
		Slots:          handlers.NewSlotsHandler(slotService),
		SlotRequests:   handlers.NewSlotRequestsHandler(requestService),
		AuthMiddleware: authMiddleware,
	})

	return &Server{
		App:           app,
		Auth:          authService,
		Users:         userService,
		Vehicles:      vehicleService,
		Slots:         slotService,
		Requests:      requestService,
		Jobs:          jobService,
		Notifications: notifications,
		Dispatcher:    dispatcher,
		Metrics:       metrics,
	}
}
