package services

import (
	"testing"
	"time"

	"parkhub/internal/models"
)

func testLot(tariff float64, dayTariff *float64) *models.ParkingLot {
	return &models.ParkingLot{
		Name:      "Central Garage",
		Capacity:  100,
		Tariff:    tariff,
		DayTariff: dayTariff,
		IsActive:  true,
	}
}

func floatPtr(v float64) *float64 { return &v }

func TestCalculateTariffGracePeriod(t *testing.T) {
	svc := NewPricingService()
	lot := testLot(5.0, floatPtr(30.0))
	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

	result := svc.CalculateTariff(lot, start, start.Add(2*time.Minute))
	if result.Price != 0 {
		t.Errorf("expected free stay under grace period, got %.2f", result.Price)
	}

	result = svc.CalculateTariff(lot, start, start.Add(3*time.Minute))
	if result.Price == 0 {
		t.Error("expected a charge for a stay of exactly three minutes")
	}
}

func TestCalculateTariffHourlyCeiling(t *testing.T) {
	svc := NewPricingService()
	lot := testLot(5.0, floatPtr(100.0))
	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		duration  time.Duration
		wantHours int
		wantPrice float64
	}{
		{1 * time.Hour, 1, 5.0},
		{61 * time.Minute, 2, 10.0},
		{90 * time.Minute, 2, 10.0},
		{2 * time.Hour, 2, 10.0},
		{10 * time.Minute, 1, 5.0},
	}

	for _, tt := range tests {
		result := svc.CalculateTariff(lot, start, start.Add(tt.duration))
		if result.BilledHours != tt.wantHours {
			t.Errorf("duration %v: billed hours = %d, want %d", tt.duration, result.BilledHours, tt.wantHours)
		}
		if result.Price != tt.wantPrice {
			t.Errorf("duration %v: price = %.2f, want %.2f", tt.duration, result.Price, tt.wantPrice)
		}
	}
}

func TestCalculateTariffDayCap(t *testing.T) {
	svc := NewPricingService()
	lot := testLot(5.0, floatPtr(30.0))
	start := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	// 10 hourly units would cost 50; same-day stays cap at the day tariff.
	result := svc.CalculateTariff(lot, start, start.Add(10*time.Hour))
	if result.Price != 30.0 {
		t.Errorf("expected same-day price capped at 30.00, got %.2f", result.Price)
	}
}

func TestCalculateTariffCrossMidnight(t *testing.T) {
	svc := NewPricingService()
	lot := testLot(5.0, floatPtr(30.0))

	// 23:00 to 01:00 next day touches two calendar dates.
	start := time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)
	result := svc.CalculateTariff(lot, start, start.Add(2*time.Hour))
	if result.BilledDays != 2 {
		t.Errorf("expected 2 billed days, got %d", result.BilledDays)
	}
	if result.Price != 60.0 {
		t.Errorf("expected 60.00 for two day tariffs, got %.2f", result.Price)
	}

	// Three calendar dates.
	result = svc.CalculateTariff(lot, start, start.Add(26*time.Hour))
	if result.BilledDays != 3 {
		t.Errorf("expected 3 billed days, got %d", result.BilledDays)
	}
	if result.Price != 90.0 {
		t.Errorf("expected 90.00 for three day tariffs, got %.2f", result.Price)
	}
}

func TestCalculateTariffDefaultDayTariff(t *testing.T) {
	svc := NewPricingService()
	lot := testLot(5.0, nil)

	start := time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)
	result := svc.CalculateTariff(lot, start, start.Add(2*time.Hour))
	if result.Price != 2*999.0 {
		t.Errorf("expected fallback day tariff of 999 per day, got %.2f", result.Price)
	}
}

func TestCalculateDiscountAmountPercentage(t *testing.T) {
	svc := NewPricingService()
	discount := &models.Discount{Type: models.DiscountTypePercentage, Percentage: 33.333}

	got := svc.CalculateDiscountAmount(discount, 100.0)
	if got != 33.33 {
		t.Errorf("expected 33.33 after rounding to cents, got %v", got)
	}
}

func TestCalculateDiscountAmountFixed(t *testing.T) {
	svc := NewPricingService()
	discount := &models.Discount{Type: models.DiscountTypeFixedAmount, FixedAmount: 20.0}

	if got := svc.CalculateDiscountAmount(discount, 50.0); got != 20.0 {
		t.Errorf("expected 20.00, got %v", got)
	}

	// A fixed discount never exceeds the bill.
	if got := svc.CalculateDiscountAmount(discount, 12.5); got != 12.5 {
		t.Errorf("expected discount clamped to 12.50, got %v", got)
	}
}

func TestCalculateDiscountAmountZeroBill(t *testing.T) {
	svc := NewPricingService()
	discount := &models.Discount{Type: models.DiscountTypeFixedAmount, FixedAmount: 20.0}

	if got := svc.CalculateDiscountAmount(discount, 0); got != 0 {
		t.Errorf("expected zero discount on a zero bill, got %v", got)
	}
}

func TestCalculatePriceWithDiscount(t *testing.T) {
	svc := NewPricingService()
	lot := testLot(10.0, floatPtr(100.0))
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(4 * time.Hour)

	discount := &models.Discount{Type: models.DiscountTypePercentage, Percentage: 25}
	breakdown := svc.CalculatePriceWithDiscount(lot, start, end, discount)

	if breakdown.OriginalCost != 40.0 {
		t.Errorf("original cost = %.2f, want 40.00", breakdown.OriginalCost)
	}
	if breakdown.DiscountAmount != 10.0 {
		t.Errorf("discount amount = %.2f, want 10.00", breakdown.DiscountAmount)
	}
	if breakdown.Cost != 30.0 {
		t.Errorf("final cost = %.2f, want 30.00", breakdown.Cost)
	}
}

func TestCalculatePriceWithDiscountNeverNegative(t *testing.T) {
	svc := NewPricingService()
	lot := testLot(5.0, floatPtr(100.0))
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(1 * time.Hour)

	discount := &models.Discount{Type: models.DiscountTypeFixedAmount, FixedAmount: 500.0}
	breakdown := svc.CalculatePriceWithDiscount(lot, start, end, discount)

	if breakdown.Cost < 0 {
		t.Errorf("final cost must never be negative, got %.2f", breakdown.Cost)
	}
	if breakdown.Cost != 0 {
		t.Errorf("expected fully discounted stay to cost 0, got %.2f", breakdown.Cost)
	}
}

func TestCalculatePriceWithoutDiscount(t *testing.T) {
	svc := NewPricingService()
	lot := testLot(5.0, floatPtr(100.0))
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(3 * time.Hour)

	breakdown := svc.CalculatePriceWithDiscount(lot, start, end, nil)
	if breakdown.Cost != breakdown.OriginalCost {
		t.Errorf("without a discount the final cost must equal the original, got %.2f vs %.2f", breakdown.Cost, breakdown.OriginalCost)
	}
	if breakdown.DiscountAmount != 0 {
		t.Errorf("expected zero discount amount, got %.2f", breakdown.DiscountAmount)
	}
}
