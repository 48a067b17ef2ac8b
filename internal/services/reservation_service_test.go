package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"parkhub/internal/models"
	"parkhub/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type reservationFixture struct {
	svc          ReservationService
	discountRepo *fakeDiscountRepo
	userRepo     *fakeUserRepo
	vehicleRepo  *fakeVehicleRepo
	lotRepo      *fakeParkingLotRepo
	resRepo      *fakeReservationRepo

	user    *models.User
	vehicle *models.Vehicle
	lot     *models.ParkingLot
}

func newReservationFixture(t *testing.T) *reservationFixture {
	t.Helper()
	log := newTestLogger(t)
	discountRepo := newFakeDiscountRepo()
	userRepo := newFakeUserRepo()
	vehicleRepo := newFakeVehicleRepo()
	lotRepo := newFakeParkingLotRepo()
	resRepo := newFakeReservationRepo()

	pricing := NewPricingService()
	discounts := NewDiscountService(discountRepo, userRepo, pricing, log)
	svc := NewReservationService(resRepo, vehicleRepo, lotRepo, userRepo, discounts, pricing, nil, log)

	user := userRepo.add(&models.User{Email: "driver@example.com"})
	vehicle := vehicleRepo.add(&models.Vehicle{UserID: user.ID, LicensePlate: "AB123CD", Type: models.VehicleTypeCar})
	day := 50.0
	lot := lotRepo.add(&models.ParkingLot{Name: "Central", Capacity: 50, Tariff: 5.0, DayTariff: &day, IsActive: true})

	return &reservationFixture{
		svc:          svc,
		discountRepo: discountRepo,
		userRepo:     userRepo,
		vehicleRepo:  vehicleRepo,
		lotRepo:      lotRepo,
		resRepo:      resRepo,
		user:         user,
		vehicle:      vehicle,
		lot:          lot,
	}
}

func (f *reservationFixture) request(start, end time.Time, code string) *CreateReservationRequest {
	return &CreateReservationRequest{
		VehicleID:    f.vehicle.ID.Hex(),
		ParkingLotID: f.lot.ID.Hex(),
		StartTime:    start,
		EndTime:      end,
		DiscountCode: code,
	}
}

func TestCreateReservationWithoutDiscount(t *testing.T) {
	f := newReservationFixture(t)
	start := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	reservation, err := f.svc.CreateReservation(context.Background(), f.user.ID, f.request(start, start.Add(3*time.Hour), ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if reservation.Cost != reservation.OriginalCost {
		t.Errorf("cost %.2f should equal original cost %.2f when no discount is used", reservation.Cost, reservation.OriginalCost)
	}
	if reservation.OriginalCost != 15.0 {
		t.Errorf("expected 15.00 for three hours at 5.00, got %.2f", reservation.OriginalCost)
	}
	if reservation.Status != models.ReservationStatusConfirmed {
		t.Errorf("expected confirmed status, got %s", reservation.Status)
	}
	if reservation.ReservationNumber == "" {
		t.Error("expected a reservation number")
	}
}

func TestCreateReservationWithDiscount(t *testing.T) {
	f := newReservationFixture(t)
	discount := f.discountRepo.add(&models.Discount{
		Code:       "TWENTY",
		Type:       models.DiscountTypePercentage,
		Percentage: 20,
		ValidUntil: time.Now().Add(48 * time.Hour),
		IsActive:   true,
	})

	start := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	reservation, err := f.svc.CreateReservation(context.Background(), f.user.ID, f.request(start, start.Add(4*time.Hour), "twenty"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if reservation.OriginalCost != 20.0 || reservation.DiscountAmount != 4.0 || reservation.Cost != 16.0 {
		t.Errorf("unexpected pricing: original=%.2f discount=%.2f cost=%.2f",
			reservation.OriginalCost, reservation.DiscountAmount, reservation.Cost)
	}
	if reservation.DiscountCode != "TWENTY" {
		t.Errorf("expected canonical code on reservation, got %q", reservation.DiscountCode)
	}

	stored, _ := f.discountRepo.GetByID(context.Background(), discount.ID)
	if stored.CurrentUsageCount != 1 {
		t.Errorf("expected usage count 1, got %d", stored.CurrentUsageCount)
	}
	usages, _, _ := f.discountRepo.ListUsages(context.Background(), discount.ID, nil)
	if len(usages) != 1 {
		t.Fatalf("expected one ledger row, got %d", len(usages))
	}
	if usages[0].ReservationID != reservation.ID || usages[0].FinalAmount != 16.0 {
		t.Errorf("ledger row does not match reservation: %+v", usages[0])
	}
}

func TestCreateReservationInvalidWindow(t *testing.T) {
	f := newReservationFixture(t)
	start := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	_, err := f.svc.CreateReservation(context.Background(), f.user.ID, f.request(start, start.Add(-time.Hour), ""))
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for end before start, got %v", err)
	}

	_, err = f.svc.CreateReservation(context.Background(), f.user.ID, f.request(start, start, ""))
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for zero-length window, got %v", err)
	}
}

func TestCreateReservationOverlapConflict(t *testing.T) {
	f := newReservationFixture(t)
	start := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	if _, err := f.svc.CreateReservation(context.Background(), f.user.ID, f.request(start, start.Add(3*time.Hour), "")); err != nil {
		t.Fatalf("first booking failed: %v", err)
	}

	// Overlapping window for the same vehicle.
	_, err := f.svc.CreateReservation(context.Background(), f.user.ID, f.request(start.Add(time.Hour), start.Add(5*time.Hour), ""))
	if !errors.Is(err, ErrBookingConflict) {
		t.Errorf("expected booking conflict, got %v", err)
	}

	// Back-to-back windows do not overlap: [9, 12) then [12, 14).
	if _, err := f.svc.CreateReservation(context.Background(), f.user.ID, f.request(start.Add(3*time.Hour), start.Add(5*time.Hour), "")); err != nil {
		t.Errorf("adjacent booking should be allowed, got %v", err)
	}
}

func TestCreateReservationCancelledDoesNotBlock(t *testing.T) {
	f := newReservationFixture(t)
	start := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	first, err := f.svc.CreateReservation(context.Background(), f.user.ID, f.request(start, start.Add(3*time.Hour), ""))
	if err != nil {
		t.Fatalf("first booking failed: %v", err)
	}
	if _, err := f.svc.CancelReservation(context.Background(), f.user.ID, first.ID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	if _, err := f.svc.CreateReservation(context.Background(), f.user.ID, f.request(start, start.Add(3*time.Hour), "")); err != nil {
		t.Errorf("cancelled reservation must not block a new booking, got %v", err)
	}
}

func TestCreateReservationVehicleChecks(t *testing.T) {
	f := newReservationFixture(t)
	start := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	req := f.request(start, start.Add(time.Hour), "")
	req.VehicleID = primitive.NewObjectID().Hex()
	_, err := f.svc.CreateReservation(context.Background(), f.user.ID, req)
	if !errors.Is(err, interfaces.ErrNotFound) {
		t.Errorf("expected not found for unknown vehicle, got %v", err)
	}

	stranger := f.userRepo.add(&models.User{Email: "stranger@example.com"})
	_, err = f.svc.CreateReservation(context.Background(), stranger.ID, f.request(start, start.Add(time.Hour), ""))
	if !errors.Is(err, ErrVehicleOwnership) {
		t.Errorf("expected ownership error, got %v", err)
	}
}

func TestCreateReservationRejectsInvalidDiscount(t *testing.T) {
	f := newReservationFixture(t)
	f.discountRepo.add(&models.Discount{
		Code:       "EXPIRED",
		Type:       models.DiscountTypePercentage,
		Percentage: 10,
		ValidUntil: time.Now().Add(-time.Hour),
		IsActive:   true,
	})

	start := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	_, err := f.svc.CreateReservation(context.Background(), f.user.ID, f.request(start, start.Add(time.Hour), "EXPIRED"))
	if !errors.Is(err, ErrInvalidDiscount) {
		t.Fatalf("expected ErrInvalidDiscount, got %v", err)
	}
	if !strings.Contains(err.Error(), "expired") {
		t.Errorf("error should carry the rejection reason, got %q", err.Error())
	}

	// No reservation should survive a rejected discount.
	all, _, _ := f.resRepo.ListByUser(context.Background(), f.user.ID, nil)
	if len(all) != 0 {
		t.Errorf("expected no reservations, got %d", len(all))
	}
}

// racingDiscountRepo passes validation but fails every redemption, which
// is what losing a usage-cap race to a concurrent booking looks like.
type racingDiscountRepo struct {
	*fakeDiscountRepo
}

func (r *racingDiscountRepo) RecordUsage(context.Context, *models.Discount, *models.DiscountUsage) error {
	return interfaces.ErrUsageLimitExceeded
}

func TestCreateReservationRollsBackOnUsageRace(t *testing.T) {
	log := newTestLogger(t)
	discountRepo := &racingDiscountRepo{newFakeDiscountRepo()}
	userRepo := newFakeUserRepo()
	vehicleRepo := newFakeVehicleRepo()
	lotRepo := newFakeParkingLotRepo()
	resRepo := newFakeReservationRepo()

	pricing := NewPricingService()
	discounts := NewDiscountService(discountRepo, userRepo, pricing, log)
	svc := NewReservationService(resRepo, vehicleRepo, lotRepo, userRepo, discounts, pricing, nil, log)

	user := userRepo.add(&models.User{Email: "driver@example.com"})
	vehicle := vehicleRepo.add(&models.Vehicle{UserID: user.ID, LicensePlate: "AB123CD"})
	day := 50.0
	lot := lotRepo.add(&models.ParkingLot{Name: "Central", Capacity: 50, Tariff: 5.0, DayTariff: &day, IsActive: true})

	discountRepo.add(&models.Discount{
		Code:          "RACE",
		Type:          models.DiscountTypePercentage,
		Percentage:    10,
		ValidUntil:    time.Now().Add(24 * time.Hour),
		MaxUsageCount: intPtr(1),
		IsActive:      true,
	})

	start := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	_, err := svc.CreateReservation(context.Background(), user.ID, &CreateReservationRequest{
		VehicleID:    vehicle.ID.Hex(),
		ParkingLotID: lot.ID.Hex(),
		StartTime:    start,
		EndTime:      start.Add(time.Hour),
		DiscountCode: "RACE",
	})
	if !errors.Is(err, ErrInvalidDiscount) {
		t.Fatalf("expected ErrInvalidDiscount after losing the race, got %v", err)
	}

	// The created reservation must have been rolled back to cancelled.
	all, _, _ := resRepo.ListByUser(context.Background(), user.ID, nil)
	if len(all) == 0 {
		t.Fatal("expected the rolled back reservation to still exist as cancelled")
	}
	for _, r := range all {
		if r.Status != models.ReservationStatusCancelled {
			t.Errorf("expected rolled back reservation to be cancelled, got %s", r.Status)
		}
	}
}

func TestCancelReservationOnlyOnce(t *testing.T) {
	f := newReservationFixture(t)
	start := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	reservation, err := f.svc.CreateReservation(context.Background(), f.user.ID, f.request(start, start.Add(time.Hour), ""))
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}

	cancelled, err := f.svc.CancelReservation(context.Background(), f.user.ID, reservation.ID)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != models.ReservationStatusCancelled || cancelled.CancelledAt == nil {
		t.Errorf("expected cancelled status with timestamp, got %+v", cancelled)
	}

	_, err = f.svc.CancelReservation(context.Background(), f.user.ID, reservation.ID)
	if !errors.Is(err, ErrReservationClosed) {
		t.Errorf("second cancel must fail, got %v", err)
	}
}

func TestCancelDoesNotRefundDiscountUsage(t *testing.T) {
	f := newReservationFixture(t)
	discount := f.discountRepo.add(&models.Discount{
		Code:       "KEEP",
		Type:       models.DiscountTypePercentage,
		Percentage: 10,
		ValidUntil: time.Now().Add(24 * time.Hour),
		IsActive:   true,
	})

	start := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	reservation, err := f.svc.CreateReservation(context.Background(), f.user.ID, f.request(start, start.Add(time.Hour), "KEEP"))
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}
	if _, err := f.svc.CancelReservation(context.Background(), f.user.ID, reservation.ID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	stored, _ := f.discountRepo.GetByID(context.Background(), discount.ID)
	if stored.CurrentUsageCount != 1 {
		t.Errorf("cancellation must not refund usage, count = %d", stored.CurrentUsageCount)
	}
}

func TestUpdateReservationReprices(t *testing.T) {
	f := newReservationFixture(t)
	start := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	reservation, err := f.svc.CreateReservation(context.Background(), f.user.ID, f.request(start, start.Add(2*time.Hour), ""))
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}

	newEnd := start.Add(4 * time.Hour)
	updated, err := f.svc.UpdateReservation(context.Background(), f.user.ID, reservation.ID, &UpdateReservationRequest{EndTime: &newEnd})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Cost != 20.0 {
		t.Errorf("expected repriced cost 20.00 for four hours, got %.2f", updated.Cost)
	}
}

func TestGetReservationOwnership(t *testing.T) {
	f := newReservationFixture(t)
	start := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	reservation, err := f.svc.CreateReservation(context.Background(), f.user.ID, f.request(start, start.Add(time.Hour), ""))
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}

	stranger := f.userRepo.add(&models.User{Email: "stranger@example.com"})
	if _, err := f.svc.GetReservation(context.Background(), stranger.ID, reservation.ID, false); !errors.Is(err, interfaces.ErrNotFound) {
		t.Errorf("stranger must not see the reservation, got %v", err)
	}
	if _, err := f.svc.GetReservation(context.Background(), stranger.ID, reservation.ID, true); err != nil {
		t.Errorf("admin should see any reservation, got %v", err)
	}
}
