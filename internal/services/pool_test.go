package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/farellandr/rifas/internal/models"
	"github.com/farellandr/rifas/internal/testutil"
)

func newRaffleInput(total int) NewRaffle {
	now := time.Now()
	return NewRaffle{
		Title:            "Moto",
		PrizeDescription: "A motorcycle",
		TicketPrice:      decimal.RequireFromString("2.50"),
		TotalNumbers:     total,
		StartDate:        now,
		EndDate:          now.Add(7 * 24 * time.Hour),
		DrawDate:         now.Add(8 * 24 * time.Hour),
	}
}

func TestCreateRaffleMaterializesPool(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewPoolService(db)

	raffle, err := svc.CreateRaffle(context.Background(), newRaffleInput(1000))
	if err != nil {
		t.Fatalf("CreateRaffle failed: %v", err)
	}
	if raffle.Status != models.RaffleActive {
		t.Errorf("Expected active raffle, got %s", raffle.Status)
	}

	if got := testutil.CountNumbers(t, db, raffle.ID, models.NumberAvailable); got != 1000 {
		t.Fatalf("Expected 1000 available numbers, got %d", got)
	}

	numbers, err := svc.Numbers(context.Background(), raffle.ID)
	if err != nil {
		t.Fatalf("Numbers failed: %v", err)
	}
	if numbers[0].Number != "000" || numbers[999].Number != "999" {
		t.Errorf("Unexpected pool bounds: %s..%s", numbers[0].Number, numbers[999].Number)
	}
}

func TestCreateRaffleDefaultsAndWidth(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewPoolService(db)
	ctx := context.Background()

	small, err := svc.CreateRaffle(ctx, newRaffleInput(10))
	if err != nil {
		t.Fatalf("CreateRaffle failed: %v", err)
	}
	numbers, _ := svc.Numbers(ctx, small.ID)
	if len(numbers) != 10 || numbers[9].Number != "009" {
		t.Errorf("Expected 000..009, got %d numbers ending %s", len(numbers), numbers[len(numbers)-1].Number)
	}

	defaulted, err := svc.CreateRaffle(ctx, newRaffleInput(0))
	if err != nil {
		t.Fatalf("CreateRaffle failed: %v", err)
	}
	if defaulted.TotalNumbers != DefaultTotalNumbers {
		t.Errorf("Expected default total %d, got %d", DefaultTotalNumbers, defaulted.TotalNumbers)
	}
}

func TestCreateRaffleValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewPoolService(db)

	tests := []struct {
		name   string
		mutate func(*NewRaffle)
	}{
		{"zero price", func(in *NewRaffle) { in.TicketPrice = decimal.Zero }},
		{"too many numbers", func(in *NewRaffle) { in.TotalNumbers = MaxTotalNumbers + 1 }},
		{"negative total", func(in *NewRaffle) { in.TotalNumbers = -5 }},
		{"missing title", func(in *NewRaffle) { in.Title = " " }},
		{"end before start", func(in *NewRaffle) { in.EndDate = in.StartDate.Add(-time.Hour) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := newRaffleInput(10)
			tt.mutate(&in)
			if _, err := svc.CreateRaffle(context.Background(), in); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Expected ErrInvalidInput, got %v", err)
			}
		})
	}

	var count int64
	db.Model(&models.Raffle{}).Count(&count)
	if count != 0 {
		t.Errorf("Expected no raffles, got %d", count)
	}
}

func TestListActive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewPoolService(db)
	active := testutil.CreateTestRaffle(t, db, "5.00", 20, models.RaffleActive)
	testutil.CreateTestRaffle(t, db, "5.00", 20, models.RaffleCancelled)
	reserveForTest(t, db, active.ID, "ana@example.com", "001", "002")

	list, err := svc.ListActive(context.Background())
	if err != nil {
		t.Fatalf("ListActive failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("Expected 1 active raffle, got %d", len(list))
	}
	if list[0].ID != active.ID || list[0].AvailableNumbers != 18 {
		t.Errorf("Unexpected summary: %+v", list[0])
	}
}

func TestNumbersUnknownRaffle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	if _, err := NewPoolService(db).Numbers(context.Background(), uuid.New()); !errors.Is(err, ErrRaffleNotFound) {
		t.Errorf("Expected ErrRaffleNotFound, got %v", err)
	}
}

func TestSetStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewPoolService(db)
	raffle := testutil.CreateTestRaffle(t, db, "5.00", 5, models.RaffleActive)
	ctx := context.Background()

	updated, err := svc.SetStatus(ctx, raffle.ID, models.RaffleCompleted)
	if err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	if updated.Status != models.RaffleCompleted {
		t.Errorf("Expected completed, got %s", updated.Status)
	}

	if _, err := svc.SetStatus(ctx, raffle.ID, "paused"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("Expected ErrInvalidStatus, got %v", err)
	}
	if _, err := svc.SetStatus(ctx, uuid.New(), models.RaffleActive); !errors.Is(err, ErrRaffleNotFound) {
		t.Errorf("Expected ErrRaffleNotFound, got %v", err)
	}
}
