package service

import (
	"time"

	"github.com/shopspring/decimal"

	"go-pos-ws/internal/repository"
)

// Products with stock below this show up in the low stock counter.
const lowStockThreshold = 10

// DashboardStats is the overview block of the back-office dashboard.
type DashboardStats struct {
	TotalProducts      int64           `json:"total_products"`
	LowStockCount      int64           `json:"low_stock_count"`
	InventoryValuation decimal.Decimal `json:"inventory_valuation"`
	SalesCount         int64           `json:"sales_count"`
	TotalRevenue       decimal.Decimal `json:"total_revenue"`
}

type DashboardService interface {
	GetDashboardStats() (*DashboardStats, error)
	GetSalesSummary(days int) ([]repository.DailyRevenueData, error)
}

type dashboardService struct {
	productRepo repository.ProductRepository
	saleRepo    repository.SaleRepository
}

func NewDashboardService(pRepo repository.ProductRepository, sRepo repository.SaleRepository) DashboardService {
	return &dashboardService{productRepo: pRepo, saleRepo: sRepo}
}

func (s *dashboardService) GetDashboardStats() (*DashboardStats, error) {
	stats := &DashboardStats{}

	var err error
	if stats.TotalProducts, err = s.productRepo.Count(); err != nil {
		return nil, err
	}
	if stats.LowStockCount, err = s.productRepo.LowStockCount(lowStockThreshold); err != nil {
		return nil, err
	}
	if stats.InventoryValuation, err = s.productRepo.Valuation(); err != nil {
		return nil, err
	}

	revenue, count, err := s.saleRepo.RevenueSummary(time.Time{}, time.Now())
	if err != nil {
		return nil, err
	}
	stats.TotalRevenue = revenue
	stats.SalesCount = count

	return stats, nil
}

func (s *dashboardService) GetSalesSummary(days int) ([]repository.DailyRevenueData, error) {
	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -days)
	return s.saleRepo.GetDailyRevenue(startDate, endDate)
}
