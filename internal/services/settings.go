package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/farellandr/rifas/internal/models"
)

const maxSettingKeyLen = 100

type SettingsService struct {
	db *gorm.DB
}

func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{db: db}
}

func (s *SettingsService) All(ctx context.Context) (map[string]string, error) {
	var rows []models.Setting
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.Key] = r.Value
	}
	return out, nil
}

// Upsert writes every key in one transaction, replacing existing values.
func (s *SettingsService) Upsert(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return fmt.Errorf("%w: no settings given", ErrInvalidInput)
	}

	rows := make([]models.Setting, 0, len(values))
	for k, v := range values {
		k = strings.TrimSpace(k)
		if k == "" || len(k) > maxSettingKeyLen {
			return fmt.Errorf("%w: invalid setting key %q", ErrInvalidInput, k)
		}
		rows = append(rows, models.Setting{Key: k, Value: v})
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range rows {
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "setting_key"}},
				DoUpdates: clause.AssignmentColumns([]string{"setting_value", "updated_at"}),
			}).Create(&rows[i]).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}
