package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/farellandr/rifas/internal/helpers"
	"github.com/farellandr/rifas/internal/models"
)

type PurchasedNumber struct {
	Number      string `json:"number"`
	RaffleTitle string `json:"rifaTitle"`
}

type UserSummary struct {
	models.User
	TotalNumbers     int               `json:"total_numbers"`
	PurchasedNumbers []PurchasedNumber `json:"purchased_numbers"`
}

type paidNumberRow struct {
	UserID uuid.UUID
	Number string
	Title  string
}

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// List returns every user, newest first, with the numbers they have paid for.
func (s *UserService) List(ctx context.Context) ([]UserSummary, error) {
	db := s.db.WithContext(ctx)

	var users []models.User
	if err := db.Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, err
	}

	var rows []paidNumberRow
	err := db.Table("raffle_numbers").
		Select("raffle_numbers.user_id, raffle_numbers.number, raffles.title").
		Joins("JOIN raffles ON raffles.id = raffle_numbers.raffle_id").
		Where("raffle_numbers.status = ? AND raffle_numbers.user_id IS NOT NULL", models.NumberPaid).
		Order("raffles.title, raffle_numbers.number").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	byUser := make(map[uuid.UUID][]PurchasedNumber)
	for _, r := range rows {
		byUser[r.UserID] = append(byUser[r.UserID], PurchasedNumber{Number: r.Number, RaffleTitle: r.Title})
	}

	out := make([]UserSummary, len(users))
	for i, u := range users {
		numbers := byUser[u.ID]
		if numbers == nil {
			numbers = []PurchasedNumber{}
		}
		out[i] = UserSummary{User: u, TotalNumbers: len(numbers), PurchasedNumbers: numbers}
	}
	return out, nil
}

func (s *UserService) Create(ctx context.Context, name, email, phone string) (*models.User, error) {
	user := models.User{
		Name:  strings.TrimSpace(name),
		Email: helpers.NormalizeEmail(email),
		Phone: strings.TrimSpace(phone),
	}
	if user.Name == "" || user.Email == "" {
		return nil, fmt.Errorf("%w: name and email are required", ErrInvalidInput)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.User
		err := tx.Select("id").Where("email = ?", user.Email).First(&existing).Error
		if err == nil {
			return ErrEmailTaken
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}
