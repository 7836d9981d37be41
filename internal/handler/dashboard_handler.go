package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"go-pos-ws/internal/service"
)

type DashboardHandler struct {
	service service.DashboardService
}

func NewDashboardHandler(s service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: s}
}

// GetDashboardStats returns the overview statistics block.
// GET /api/v1/dashboard/stats
func (h *DashboardHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.service.GetDashboardStats()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch dashboard stats"})
	}
	return c.JSON(stats)
}

// GetSalesSummary returns per-day sales counts and revenue for charts.
// Query params: range (7d, 1m, 3m, 6m, 12m; default 7d)
func (h *DashboardHandler) GetSalesSummary(c *fiber.Ctx) error {
	days := 7
	switch c.Query("range", "7d") {
	case "7d":
		days = 7
	case "1m":
		days = 30
	case "3m":
		days = 90
	case "6m":
		days = 180
	case "12m":
		days = 365
	default:
		if parsed, err := strconv.Atoi(c.Query("days", "")); err == nil && parsed > 0 {
			days = parsed
		}
	}

	data, err := h.service.GetSalesSummary(days)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch sales summary"})
	}

	return c.JSON(fiber.Map{
		"period": days,
		"data":   data,
	})
}
