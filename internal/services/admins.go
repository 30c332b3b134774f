package services

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/farellandr/rifas/internal/helpers"
	"github.com/farellandr/rifas/internal/models"
)

type AdminService struct {
	db *gorm.DB
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{db: db}
}

func (s *AdminService) Authenticate(ctx context.Context, username, password string) (*models.Admin, error) {
	var admin models.Admin
	err := s.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&admin).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &admin, nil
}

func (s *AdminService) Get(ctx context.Context, username string) (*models.Admin, error) {
	var admin models.Admin
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return &admin, nil
}

// EnsureAdmin creates the admin account when no admin with that username
// exists. An existing account keeps its password.
func (s *AdminService) EnsureAdmin(ctx context.Context, username, email, password string) (bool, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return false, ErrInvalidInput
	}

	var count int64
	db := s.db.WithContext(ctx)
	if err := db.Model(&models.Admin{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}
	admin := models.Admin{
		Username:     username,
		Email:        helpers.NormalizeEmail(email),
		PasswordHash: string(hash),
	}
	if err := db.Create(&admin).Error; err != nil {
		return false, err
	}
	return true, nil
}
