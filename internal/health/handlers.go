package health

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// DepStatus is the reported state of one dependency.
type DepStatus struct {
	Status string      `json:"status"`
	PingMs interface{} `json:"pingMs"`
}

// Handlers serves the health endpoint. Redis is optional; when no client is
// configured the dependency is reported as not_configured.
type Handlers struct {
	DB  *gorm.DB
	Rdb *redis.Client
}

// GET /health/json
func (h *Handlers) JSON(c *fiber.Ctx) error {
	deps := map[string]DepStatus{
		"database": h.pingDB(),
		"redis":    h.pingRedis(c),
	}

	status := "ok"
	if deps["database"].Status != "connected" {
		status = "degraded"
	}

	return c.JSON(fiber.Map{
		"status":       status,
		"dependencies": deps,
	})
}

func (h *Handlers) pingDB() DepStatus {
	if h.DB == nil {
		return DepStatus{Status: "not_configured", PingMs: nil}
	}
	sqlDB, err := h.DB.DB()
	if err != nil {
		return DepStatus{Status: "error", PingMs: nil}
	}
	start := time.Now()
	if err := sqlDB.Ping(); err != nil {
		return DepStatus{Status: "disconnected", PingMs: nil}
	}
	return DepStatus{Status: "connected", PingMs: time.Since(start).Milliseconds()}
}

func (h *Handlers) pingRedis(c *fiber.Ctx) DepStatus {
	if h.Rdb == nil {
		return DepStatus{Status: "not_configured", PingMs: nil}
	}
	start := time.Now()
	if err := h.Rdb.Ping(c.Context()).Err(); err != nil {
		return DepStatus{Status: "disconnected", PingMs: nil}
	}
	return DepStatus{Status: "connected", PingMs: time.Since(start).Milliseconds()}
}
