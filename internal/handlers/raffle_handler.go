package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/farellandr/rifas/internal/helpers"
	"github.com/farellandr/rifas/internal/services"
)

type CreateRaffleRequest struct {
	Title            string          `json:"title" binding:"required"`
	Description      string          `json:"description"`
	PrizeDescription string          `json:"prize_description" binding:"required"`
	TicketPrice      decimal.Decimal `json:"ticket_price"`
	TotalNumbers     int             `json:"total_numbers"`
	StartDate        string          `json:"start_date" binding:"required"`
	EndDate          string          `json:"end_date" binding:"required"`
	DrawDate         string          `json:"draw_date" binding:"required"`
}

type UpdateRaffleStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

func ListRaffles(c *gin.Context) {
	svc := mustServices(c)
	if svc == nil {
		return
	}

	raffles, err := svc.Pool.ListActive(c.Request.Context())
	if err != nil {
		helpers.RespondInternalError(c, "Failed to retrieve raffles.", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"rifas":   raffles,
	})
}

func GetRaffleNumbers(c *gin.Context) {
	raffleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid raffle ID.")
		return
	}

	svc := mustServices(c)
	if svc == nil {
		return
	}

	numbers, err := svc.Pool.Numbers(c.Request.Context(), raffleID)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve numbers.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"numbers": numbers,
	})
}

func CreateRaffle(c *gin.Context) {
	var req CreateRaffleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "All required fields must be filled in.")
		return
	}

	var dates [3]time.Time
	for i, s := range []string{req.StartDate, req.EndDate, req.DrawDate} {
		d, err := parseDate(s)
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		dates[i] = d
	}

	svc := mustServices(c)
	if svc == nil {
		return
	}

	raffle, err := svc.Pool.CreateRaffle(c.Request.Context(), services.NewRaffle{
		Title:            req.Title,
		Description:      req.Description,
		PrizeDescription: req.PrizeDescription,
		TicketPrice:      req.TicketPrice,
		TotalNumbers:     req.TotalNumbers,
		StartDate:        dates[0],
		EndDate:          dates[1],
		DrawDate:         dates[2],
	})
	if err != nil {
		respondServiceError(c, err, "Failed to create raffle.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Raffle created successfully.",
		"rifa":    raffle,
	})
}

func UpdateRaffleStatus(c *gin.Context) {
	raffleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid raffle ID.")
		return
	}

	var req UpdateRaffleStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Status is required.")
		return
	}

	svc := mustServices(c)
	if svc == nil {
		return
	}

	raffle, err := svc.Pool.SetStatus(c.Request.Context(), raffleID, req.Status)
	if err != nil {
		respondServiceError(c, err, "Failed to update raffle.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"rifa":    raffle,
	})
}
