package services

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/farellandr/rifas/internal/models"
)

type DashboardStats struct {
	TotalRaffles    int64           `json:"totalRifas"`
	ActiveRaffles   int64           `json:"activeRifas"`
	TotalUsers      int64           `json:"totalUsers"`
	TotalRevenue    decimal.Decimal `json:"totalRevenue"`
	PendingPayments int64           `json:"pendingPayments"`
}

type StatsService struct {
	db *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{db: db}
}

func (s *StatsService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	db := s.db.WithContext(ctx)
	var stats DashboardStats

	if err := db.Model(&models.Raffle{}).Count(&stats.TotalRaffles).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Raffle{}).Where("status = ?", models.RaffleActive).Count(&stats.ActiveRaffles).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Payment{}).Where("status = ?", models.PaymentPending).Count(&stats.PendingPayments).Error; err != nil {
		return nil, err
	}

	var revenue decimal.NullDecimal
	row := db.Model(&models.Payment{}).
		Select("SUM(amount)").
		Where("status = ?", models.PaymentCompleted).
		Row()
	if err := row.Scan(&revenue); err != nil {
		return nil, err
	}
	if revenue.Valid {
		stats.TotalRevenue = revenue.Decimal
	}
	return &stats, nil
}
