package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"go-pos-ws/internal/model"
)

type SaleRepository interface {
	// Create appends a sale with its items; pass the checkout transaction so
	// the ledger write commits or rolls back together with the stock update.
	Create(tx *gorm.DB, sale *model.Sale) error
	FindAll() ([]model.Sale, error)
	FindByID(id uuid.UUID) (*model.Sale, error)
	RevenueSummary(startDate, endDate time.Time) (decimal.Decimal, int64, error)
	GetDailyRevenue(startDate, endDate time.Time) ([]DailyRevenueData, error)
}

// DailyRevenueData is one row of the dashboard sales chart.
type DailyRevenueData struct {
	Date    string          `json:"date"`
	Sales   int             `json:"sales"`
	Revenue decimal.Decimal `json:"revenue"`
}

type saleRepo struct {
	db *gorm.DB
}

func NewSaleRepo(db *gorm.DB) SaleRepository {
	return &saleRepo{db}
}

func (r *saleRepo) Create(tx *gorm.DB, sale *model.Sale) error {
	if tx == nil {
		tx = r.db
	}
	// GORM inserts the SoldItems rows along with the parent sale.
	return tx.Create(sale).Error
}

func (r *saleRepo) FindAll() ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.Preload("SoldItems").Preload("CreatedByUser").
		Order("created_at DESC").Find(&sales).Error
	return sales, err
}

func (r *saleRepo) FindByID(id uuid.UUID) (*model.Sale, error) {
	var sale model.Sale
	err := r.db.Preload("SoldItems").Preload("CreatedByUser").
		First(&sale, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *saleRepo) RevenueSummary(startDate, endDate time.Time) (decimal.Decimal, int64, error) {
	var revenue decimal.Decimal
	var count int64

	if err := r.db.Model(&model.Sale{}).
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&revenue).Error; err != nil {
		return decimal.Zero, 0, err
	}

	if err := r.db.Model(&model.Sale{}).
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Count(&count).Error; err != nil {
		return decimal.Zero, 0, err
	}

	return revenue, count, nil
}

func (r *saleRepo) GetDailyRevenue(startDate, endDate time.Time) ([]DailyRevenueData, error) {
	var results []DailyRevenueData

	rows, err := r.db.Model(&model.Sale{}).
		Select(`DATE(created_at) as date, COUNT(*) as sales, COALESCE(SUM(total_amount), 0) as revenue`).
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Group("DATE(created_at)").
		Order("date ASC").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data DailyRevenueData
		if err := rows.Scan(&data.Date, &data.Sales, &data.Revenue); err != nil {
			return nil, err
		}
		results = append(results, data)
	}

	return results, nil
}
