package app

import (
	"time"

	"dealerstock-backend/internal/config"
	"dealerstock-backend/internal/database"
	"dealerstock-backend/internal/excelsync"
	"dealerstock-backend/internal/health"
	"dealerstock-backend/internal/imports"
	"dealerstock-backend/internal/inventory"
	"dealerstock-backend/internal/middleware"
	"dealerstock-backend/internal/sales"
	"dealerstock-backend/internal/stock"
	"dealerstock-backend/internal/transfers"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CreateApp builds the Fiber app with global middleware and route
// registration. The DB and Redis client are returned so the entrypoint can
// verify connectivity before listening.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler,
		BodyLimit:             32 * 1024 * 1024, // bulk import uploads
	})

	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, err
		}
		rdb = redis.NewClient(opts)
	}

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := database.AutoMigrate(db); err != nil {
			return nil, nil, nil, err
		}
	}

	healthHandlers := &health.Handlers{DB: db, Rdb: rdb}
	app.Get("/health/json", healthHandlers.JSON)

	// db may be nil when DATABASE_URL is not set (e.g. smoke tests of the
	// health surface); domain routes are only mounted with a live DB.
	if db != nil {
		syncService := &excelsync.Service{DB: db, WorkbookPath: cfg.ExcelInventoryPath}

		stockService := &stock.Service{DB: db, Sync: syncService}
		stockHandlers := &stock.Handlers{
			Service:        stockService,
			ExportDir:      cfg.ImportStorageDir,
			ExportFilename: cfg.ExcelExportFilename,
		}
		stockGroup := app.Group("/api/v1/vehicle-stock")
		stockGroup.Get("/export", stockHandlers.ExportStock)
		stockGroup.Post("/import", stockHandlers.ImportStock)
		stockGroup.Get("/", stockHandlers.ListStock)
		stockGroup.Post("/", stockHandlers.CreateStock)
		stockGroup.Get("/:id", stockHandlers.GetStock)
		stockGroup.Patch("/:id", stockHandlers.UpdateStock)
		stockGroup.Post("/:id/adjust", stockHandlers.AdjustStock)
		stockGroup.Delete("/:id", stockHandlers.DeleteStock)

		salesService := &sales.Service{
			DB:          db,
			Sync:        syncService,
			PurgeWindow: time.Duration(cfg.OverduePurgeDays) * 24 * time.Hour,
		}
		salesHandlers := &sales.Handlers{Service: salesService}
		salesGroup := app.Group("/api/v1/sales")
		salesGroup.Post("/", salesHandlers.CreateSale)
		salesGroup.Get("/", salesHandlers.ListSales)
		salesGroup.Get("/:id", salesHandlers.GetSale)
		salesGroup.Patch("/:id", salesHandlers.UpdateSale)
		salesGroup.Delete("/:id", salesHandlers.DeleteSale)

		inventoryService := &inventory.Service{DB: db}
		inventoryHandlers := &inventory.Handlers{Service: inventoryService}
		inventoryGroup := app.Group("/api/v1/inventory")
		inventoryGroup.Get("/nearest", inventoryHandlers.Nearest)
		inventoryGroup.Get("/branches/:branch_id", inventoryHandlers.ListBranchInventory)
		inventoryGroup.Post("/", inventoryHandlers.Upsert)

		importService := &imports.Service{DB: db, StorageDir: cfg.ImportStorageDir}
		importHandlers := &imports.Handlers{Service: importService}
		importGroup := app.Group("/api/v1/imports")
		importGroup.Post("/upload", importHandlers.Upload)
		importGroup.Get("/jobs", importHandlers.ListJobs)

		transferService := &transfers.Service{DB: db}
		transferHandlers := &transfers.Handlers{Service: transferService}
		transferGroup := app.Group("/api/v1/transfers")
		transferGroup.Get("/open", transferHandlers.ListOpen)
		transferGroup.Post("/", transferHandlers.CreateTransfer)
		transferGroup.Patch("/:id/status", transferHandlers.UpdateStatus)
	}

	return app, db, rdb, nil
}
