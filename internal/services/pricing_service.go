package services

import (
	"math"
	"time"

	"parkhub/internal/models"
	"parkhub/internal/utils"
)

// PricingService owns all price computation: the tariff model, the
// discount amount calculation and their composition. Every method is a
// pure function of its inputs.
type PricingService interface {
	CalculateTariff(lot *models.ParkingLot, start, end time.Time) *TariffResult
	CalculateDiscountAmount(discount *models.Discount, originalAmount float64) float64
	CalculatePriceWithDiscount(lot *models.ParkingLot, start, end time.Time, discount *models.Discount) *PriceBreakdown
}

type TariffResult struct {
	Price       float64 `json:"price"`
	BilledHours int     `json:"billed_hours"`
	BilledDays  int     `json:"billed_days"`
}

type PriceBreakdown struct {
	OriginalCost   float64 `json:"original_cost"`
	DiscountAmount float64 `json:"discount_amount"`
	Cost           float64 `json:"cost"`
	BilledHours    int     `json:"billed_hours"`
	BilledDays     int     `json:"billed_days"`
}

type pricingService struct{}

func NewPricingService() PricingService {
	return &pricingService{}
}

// CalculateTariff prices the window [start, end). Hours are billed by the
// ceiling; stays shorter than the grace period are free; a window that
// crosses midnight is billed per calendar day touched, at the lot's day
// tariff; a same-day stay is billed hourly but never above the day tariff.
func (s *pricingService) CalculateTariff(lot *models.ParkingLot, start, end time.Time) *TariffResult {
	duration := end.Sub(start)

	billedHours := int(math.Ceil(duration.Seconds() / 3600))

	if duration < utils.ParkingGracePeriod {
		return &TariffResult{Price: 0, BilledHours: billedHours, BilledDays: 0}
	}

	dayTariff := utils.DefaultDayTariff
	if lot.DayTariff != nil {
		dayTariff = *lot.DayTariff
	}

	startDate := truncateToDate(start)
	endDate := truncateToDate(end)

	if endDate.After(startDate) {
		days := int(endDate.Sub(startDate).Hours()/24) + 1
		return &TariffResult{
			Price:       utils.RoundAmount(dayTariff * float64(days)),
			BilledHours: billedHours,
			BilledDays:  days,
		}
	}

	price := lot.Tariff * float64(billedHours)
	if price > dayTariff {
		price = dayTariff
	}

	return &TariffResult{
		Price:       utils.RoundAmount(price),
		BilledHours: billedHours,
		BilledDays:  0,
	}
}

// CalculateDiscountAmount computes the reduction a discount grants on an
// amount. Percentage discounts round to cents; fixed discounts never
// exceed the bill.
func (s *pricingService) CalculateDiscountAmount(discount *models.Discount, originalAmount float64) float64 {
	if originalAmount <= 0 {
		return 0
	}

	switch discount.Type {
	case models.DiscountTypePercentage:
		return utils.RoundAmount(originalAmount * discount.Percentage / 100)
	case models.DiscountTypeFixedAmount:
		return math.Min(discount.FixedAmount, originalAmount)
	default:
		return 0
	}
}

func (s *pricingService) CalculatePriceWithDiscount(lot *models.ParkingLot, start, end time.Time, discount *models.Discount) *PriceBreakdown {
	tariff := s.CalculateTariff(lot, start, end)

	breakdown := &PriceBreakdown{
		OriginalCost: tariff.Price,
		Cost:         tariff.Price,
		BilledHours:  tariff.BilledHours,
		BilledDays:   tariff.BilledDays,
	}

	if discount == nil {
		return breakdown
	}

	breakdown.DiscountAmount = s.CalculateDiscountAmount(discount, tariff.Price)
	breakdown.Cost = math.Max(0, utils.RoundAmount(tariff.Price-breakdown.DiscountAmount))

	return breakdown
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
