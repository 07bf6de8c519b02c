package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"cloud.google.com/go/datastore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/locvowork/sales_bonus/internal/config"
	"github.com/locvowork/sales_bonus/internal/database"
	"github.com/locvowork/sales_bonus/internal/domain"
	"github.com/locvowork/sales_bonus/internal/handler"
	"github.com/locvowork/sales_bonus/internal/logger"
	"github.com/locvowork/sales_bonus/internal/repository"
	"github.com/locvowork/sales_bonus/internal/service"
)

type App struct {
	Echo            *echo.Echo
	DB              *sql.DB
	DataStoreClient *datastore.Client

	Employees    domain.EmployeeRecordRepository
	Sales        domain.SalesSource
	Auditor      domain.BonusAuditor
	BonusService *service.BonusService
}

func NewApp() *App {
	return &App{
		Echo: echo.New(),
	}
}

// Initialize wires config, logging, storage and the bonus service. It does
// not register HTTP routes; Serve does that.
func (a *App) Initialize(ctx context.Context) error {
	// Load environment configuration
	if err := config.LoadEnvConfig(); err != nil {
		return fmt.Errorf("failed to load env config: %w", err)
	}
	cfg := config.DefaultEnvConfig

	// Initialize logging
	logger.InitLogging(cfg.LOG_FILE_PATH, cfg.LOG_LEVEL)
	logger.InfoLog(ctx, "Environment variables loaded successfully")

	// Initialize database connection
	dbConfig := database.Config{
		Host:            cfg.DB_HOST,
		Port:            cfg.DB_PORT,
		User:            cfg.DB_USER,
		Password:        cfg.DB_PASSWORD,
		DBName:          cfg.DB_NAME,
		SSLMode:         cfg.DB_SSL_MODE,
		MaxOpenConns:    cfg.DB_MAX_OPEN_CONNS,
		MaxIdleConns:    cfg.DB_MAX_IDLE_CONNS,
		ConnMaxLifetime: cfg.DB_CONN_MAX_LIFETIME,
	}

	db, err := database.NewPostgresDB(ctx, dbConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	a.DB = db

	if err := database.Migrate(ctx, db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	a.Employees = repository.NewEmployeeRecordRepository(db)

	// Sales source
	switch cfg.SALES_SOURCE {
	case config.SalesSourceDatastore:
		dsClient, rawClient, err := database.NewDatastoreClient(ctx, cfg.DATASTORE_PROJECT_ID)
		if err != nil {
			return fmt.Errorf("failed to initialize datastore: %w", err)
		}
		a.DataStoreClient = rawClient
		a.Sales = dsClient
	default:
		a.Sales = repository.NewDepartmentSalesRepository(db)
	}
	logger.InfoLog(ctx, "Using %s sales source", cfg.SALES_SOURCE)

	// Audit trail is optional
	if cfg.ELASTIC_URL != "" {
		esClient, err := database.NewElasticSearchClient(cfg.ELASTIC_URL, cfg.BONUS_AUDIT_INDEX, cfg.ELASTIC_SNIFF)
		if err != nil {
			return fmt.Errorf("failed to initialize elasticsearch: %w", err)
		}
		if err := esClient.EnsureIndex(ctx); err != nil {
			return fmt.Errorf("failed to ensure audit index: %w", err)
		}
		a.Auditor = esClient
		logger.InfoLog(ctx, "Bonus audit enabled on index %s", cfg.BONUS_AUDIT_INDEX)
	}

	a.BonusService = service.NewBonusService(a.Employees, a.Sales, a.Auditor)
	return nil
}

// Serve registers middlewares and routes, then blocks on the HTTP server.
func (a *App) Serve() error {
	a.RegisterMiddlewares()
	a.RegisterRoutes(handler.NewBonusHandler(a.BonusService, config.DefaultEnvConfig.REPORT_TEMPLATE_PATH))
	return a.Echo.Start(":" + config.DefaultEnvConfig.APP_PORT)
}

func (a *App) RegisterMiddlewares() {
	a.Echo.Use(middleware.Logger())
	a.Echo.Use(middleware.Recover())
	a.Echo.Use(middleware.CORS())
}

func (a *App) RegisterRoutes(bonusHandler *handler.BonusHandler) {
	handler.RegisterBonusRoutes(a.Echo, bonusHandler)
}

// Close releases every client Initialize opened.
func (a *App) Close() {
	if a.DataStoreClient != nil {
		a.DataStoreClient.Close()
	}
	if a.DB != nil {
		a.DB.Close()
	}
}
