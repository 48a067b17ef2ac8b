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

func intPtr(v int) *int                          { return &v }
func durPtr(v time.Duration) *time.Duration      { return &v }
func oidPtr(v primitive.ObjectID) *primitive.ObjectID { return &v }

func newDiscountFixture(t *testing.T) (DiscountService, *fakeDiscountRepo, *fakeUserRepo) {
	t.Helper()
	discountRepo := newFakeDiscountRepo()
	userRepo := newFakeUserRepo()
	svc := NewDiscountService(discountRepo, userRepo, NewPricingService(), newTestLogger(t))
	return svc, discountRepo, userRepo
}

func TestValidateDiscountCodeValid(t *testing.T) {
	svc, repo, users := newDiscountFixture(t)
	user := users.add(&models.User{Email: "ana@example.com"})
	repo.add(&models.Discount{
		Code:       "SUMMER20",
		Type:       models.DiscountTypePercentage,
		Percentage: 20,
		ValidUntil: time.Now().Add(24 * time.Hour),
		IsActive:   true,
	})

	start := time.Now().Add(time.Hour)
	result, err := svc.ValidateDiscountCode(context.Background(), "SUMMER20", user.ID, primitive.NewObjectID(), start, start.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Valid {
		t.Fatalf("expected valid, got reason %q", result.Reason)
	}
	if result.Reason != "Discount code is valid." {
		t.Errorf("unexpected reason: %q", result.Reason)
	}
}

func TestValidateDiscountCodeCaseAndWhitespaceInsensitive(t *testing.T) {
	svc, repo, users := newDiscountFixture(t)
	user := users.add(&models.User{Email: "ana@example.com"})
	repo.add(&models.Discount{
		Code:       "summer20",
		Type:       models.DiscountTypePercentage,
		Percentage: 20,
		ValidUntil: time.Now().Add(24 * time.Hour),
		IsActive:   true,
	})

	start := time.Now().Add(time.Hour)
	for _, code := range []string{"SUMMER20", "summer20", "  Summer20  "} {
		result, err := svc.ValidateDiscountCode(context.Background(), code, user.ID, primitive.NewObjectID(), start, start.Add(time.Hour))
		if err != nil {
			t.Fatalf("code %q: unexpected error: %v", code, err)
		}
		if !result.Valid {
			t.Errorf("code %q: expected valid, got %q", code, result.Reason)
		}
	}
}

func TestValidateDiscountCodeNotFound(t *testing.T) {
	svc, _, users := newDiscountFixture(t)
	user := users.add(&models.User{Email: "ana@example.com"})

	start := time.Now().Add(time.Hour)
	result, err := svc.ValidateDiscountCode(context.Background(), "NOPE", user.ID, primitive.NewObjectID(), start, start.Add(time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Valid {
		t.Fatal("expected invalid")
	}
	if !strings.Contains(result.Reason, "not found or inactive") {
		t.Errorf("unexpected reason: %q", result.Reason)
	}
}

func TestValidateDiscountCodeInactive(t *testing.T) {
	svc, repo, users := newDiscountFixture(t)
	user := users.add(&models.User{Email: "ana@example.com"})
	repo.add(&models.Discount{
		Code:       "OLD",
		Type:       models.DiscountTypePercentage,
		Percentage: 10,
		ValidUntil: time.Now().Add(24 * time.Hour),
		IsActive:   false,
	})

	start := time.Now().Add(time.Hour)
	result, _ := svc.ValidateDiscountCode(context.Background(), "OLD", user.ID, primitive.NewObjectID(), start, start.Add(time.Hour))
	if result.Valid || !strings.Contains(result.Reason, "not found or inactive") {
		t.Errorf("expected not found or inactive, got valid=%v reason=%q", result.Valid, result.Reason)
	}
}

func TestValidateDiscountCodeExpired(t *testing.T) {
	svc, repo, users := newDiscountFixture(t)
	user := users.add(&models.User{Email: "ana@example.com"})
	repo.add(&models.Discount{
		Code:       "EXPIRED",
		Type:       models.DiscountTypePercentage,
		Percentage: 10,
		ValidUntil: time.Now().Add(-time.Hour),
		IsActive:   true,
	})

	start := time.Now().Add(time.Hour)
	result, _ := svc.ValidateDiscountCode(context.Background(), "EXPIRED", user.ID, primitive.NewObjectID(), start, start.Add(time.Hour))
	if result.Valid || !strings.Contains(result.Reason, "expired") {
		t.Errorf("expected expired, got valid=%v reason=%q", result.Valid, result.Reason)
	}
}

func TestValidateDiscountCodeUsageLimit(t *testing.T) {
	svc, repo, users := newDiscountFixture(t)
	user := users.add(&models.User{Email: "ana@example.com"})
	repo.add(&models.Discount{
		Code:              "MAXED",
		Type:              models.DiscountTypePercentage,
		Percentage:        10,
		ValidUntil:        time.Now().Add(24 * time.Hour),
		MaxUsageCount:     intPtr(5),
		CurrentUsageCount: 5,
		IsActive:          true,
	})

	start := time.Now().Add(time.Hour)
	result, _ := svc.ValidateDiscountCode(context.Background(), "MAXED", user.ID, primitive.NewObjectID(), start, start.Add(time.Hour))
	if result.Valid || !strings.Contains(result.Reason, "maximum usage limit") {
		t.Errorf("expected usage limit reason, got valid=%v reason=%q", result.Valid, result.Reason)
	}
}

func TestValidateDiscountCodeUserScope(t *testing.T) {
	svc, repo, users := newDiscountFixture(t)
	owner := users.add(&models.User{Email: "owner@example.com"})
	other := users.add(&models.User{Email: "other@example.com"})
	repo.add(&models.Discount{
		Code:       "PERSONAL",
		Type:       models.DiscountTypePercentage,
		Percentage: 10,
		ValidUntil: time.Now().Add(24 * time.Hour),
		UserID:     oidPtr(owner.ID),
		IsActive:   true,
	})

	start := time.Now().Add(time.Hour)
	result, _ := svc.ValidateDiscountCode(context.Background(), "PERSONAL", other.ID, primitive.NewObjectID(), start, start.Add(time.Hour))
	if result.Valid || !strings.Contains(result.Reason, "not available for your account") {
		t.Errorf("expected account scope reason, got valid=%v reason=%q", result.Valid, result.Reason)
	}

	result, _ = svc.ValidateDiscountCode(context.Background(), "PERSONAL", owner.ID, primitive.NewObjectID(), start, start.Add(time.Hour))
	if !result.Valid {
		t.Errorf("owner should be able to use their code, got %q", result.Reason)
	}
}

func TestValidateDiscountCodeOrganizationScope(t *testing.T) {
	svc, repo, users := newDiscountFixture(t)
	orgID := primitive.NewObjectID()
	member := users.add(&models.User{Email: "member@example.com", OrganizationID: oidPtr(orgID)})
	outsider := users.add(&models.User{Email: "outsider@example.com"})
	repo.add(&models.Discount{
		Code:           "CORP",
		Type:           models.DiscountTypePercentage,
		Percentage:     15,
		ValidUntil:     time.Now().Add(24 * time.Hour),
		OrganizationID: oidPtr(orgID),
		IsActive:       true,
	})

	start := time.Now().Add(time.Hour)
	result, _ := svc.ValidateDiscountCode(context.Background(), "CORP", outsider.ID, primitive.NewObjectID(), start, start.Add(time.Hour))
	if result.Valid || !strings.Contains(result.Reason, "specific organizations") {
		t.Errorf("expected organization scope reason, got valid=%v reason=%q", result.Valid, result.Reason)
	}

	result, _ = svc.ValidateDiscountCode(context.Background(), "CORP", member.ID, primitive.NewObjectID(), start, start.Add(time.Hour))
	if !result.Valid {
		t.Errorf("member should qualify, got %q", result.Reason)
	}

	result, _ = svc.ValidateDiscountCode(context.Background(), "CORP", primitive.NewObjectID(), primitive.NewObjectID(), start, start.Add(time.Hour))
	if result.Valid || !strings.Contains(result.Reason, "User not found") {
		t.Errorf("expected user not found reason, got valid=%v reason=%q", result.Valid, result.Reason)
	}
}

func TestValidateDiscountCodeParkingLotScope(t *testing.T) {
	svc, repo, users := newDiscountFixture(t)
	user := users.add(&models.User{Email: "ana@example.com"})
	lotID := primitive.NewObjectID()
	repo.add(&models.Discount{
		Code:         "LOTONLY",
		Type:         models.DiscountTypePercentage,
		Percentage:   10,
		ValidUntil:   time.Now().Add(24 * time.Hour),
		ParkingLotID: oidPtr(lotID),
		IsActive:     true,
	})

	start := time.Now().Add(time.Hour)
	result, _ := svc.ValidateDiscountCode(context.Background(), "LOTONLY", user.ID, primitive.NewObjectID(), start, start.Add(time.Hour))
	if result.Valid || !strings.Contains(result.Reason, "not valid for this parking lot") {
		t.Errorf("expected parking lot reason, got valid=%v reason=%q", result.Valid, result.Reason)
	}

	result, _ = svc.ValidateDiscountCode(context.Background(), "LOTONLY", user.ID, lotID, start, start.Add(time.Hour))
	if !result.Valid {
		t.Errorf("expected valid for matching lot, got %q", result.Reason)
	}
}

func TestValidateDiscountCodeDurationBounds(t *testing.T) {
	svc, repo, users := newDiscountFixture(t)
	user := users.add(&models.User{Email: "ana@example.com"})
	repo.add(&models.Discount{
		Code:                   "LONGSTAY",
		Type:                   models.DiscountTypePercentage,
		Percentage:             10,
		ValidUntil:             time.Now().Add(24 * time.Hour),
		MinReservationDuration: durPtr(4 * time.Hour),
		MaxReservationDuration: durPtr(12 * time.Hour),
		IsActive:               true,
	})

	start := time.Now().Add(time.Hour)
	lotID := primitive.NewObjectID()

	result, _ := svc.ValidateDiscountCode(context.Background(), "LONGSTAY", user.ID, lotID, start, start.Add(2*time.Hour))
	if result.Valid || !strings.Contains(result.Reason, "Minimum reservation duration") {
		t.Errorf("expected minimum duration reason, got valid=%v reason=%q", result.Valid, result.Reason)
	}

	result, _ = svc.ValidateDiscountCode(context.Background(), "LONGSTAY", user.ID, lotID, start, start.Add(20*time.Hour))
	if result.Valid || !strings.Contains(result.Reason, "Maximum reservation duration") {
		t.Errorf("expected maximum duration reason, got valid=%v reason=%q", result.Valid, result.Reason)
	}

	result, _ = svc.ValidateDiscountCode(context.Background(), "LONGSTAY", user.ID, lotID, start, start.Add(6*time.Hour))
	if !result.Valid {
		t.Errorf("expected valid inside bounds, got %q", result.Reason)
	}
}

func TestEstimateDiscountSkipsWindowChecks(t *testing.T) {
	svc, repo, users := newDiscountFixture(t)
	user := users.add(&models.User{Email: "ana@example.com"})
	repo.add(&models.Discount{
		Code:                   "LONGSTAY",
		Type:                   models.DiscountTypePercentage,
		Percentage:             50,
		ValidUntil:             time.Now().Add(24 * time.Hour),
		MinReservationDuration: durPtr(4 * time.Hour),
		ParkingLotID:           oidPtr(primitive.NewObjectID()),
		IsActive:               true,
	})

	estimate, err := svc.EstimateDiscount(context.Background(), "LONGSTAY", user.ID, 80.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !estimate.Valid {
		t.Fatalf("estimate should skip window and lot checks, got %q", estimate.Reason)
	}
	if estimate.DiscountAmount != 40.0 {
		t.Errorf("expected estimated amount 40.00, got %.2f", estimate.DiscountAmount)
	}
}

func TestRecordUsageSequentialCounts(t *testing.T) {
	svc, repo, _ := newDiscountFixture(t)
	discount := repo.add(&models.Discount{
		Code:          "TWICE",
		Type:          models.DiscountTypeFixedAmount,
		FixedAmount:   5,
		ValidUntil:    time.Now().Add(24 * time.Hour),
		MaxUsageCount: intPtr(2),
		IsActive:      true,
	})

	breakdown := &PriceBreakdown{OriginalCost: 20, DiscountAmount: 5, Cost: 15}
	userID := primitive.NewObjectID()

	for i := 0; i < 2; i++ {
		reservation := &models.Reservation{ID: primitive.NewObjectID(), UserID: userID}
		current, _ := repo.GetByID(context.Background(), discount.ID)
		if err := svc.RecordUsage(context.Background(), current, reservation, breakdown); err != nil {
			t.Fatalf("redemption %d failed: %v", i+1, err)
		}
	}

	stored, _ := repo.GetByID(context.Background(), discount.ID)
	if stored.CurrentUsageCount != 2 {
		t.Errorf("expected usage count 2, got %d", stored.CurrentUsageCount)
	}
	usages, total, _ := repo.ListUsages(context.Background(), discount.ID, nil)
	if total != 2 || len(usages) != 2 {
		t.Errorf("expected two ledger rows, got %d", total)
	}

	// Third redemption must fail.
	reservation := &models.Reservation{ID: primitive.NewObjectID(), UserID: userID}
	current, _ := repo.GetByID(context.Background(), discount.ID)
	err := svc.RecordUsage(context.Background(), current, reservation, breakdown)
	if !errors.Is(err, interfaces.ErrUsageLimitExceeded) {
		t.Errorf("expected usage limit error, got %v", err)
	}
}

func TestCreateDiscountValidation(t *testing.T) {
	svc, _, _ := newDiscountFixture(t)
	adminID := primitive.NewObjectID()
	future := time.Now().Add(24 * time.Hour)

	tests := []struct {
		name string
		req  CreateDiscountRequest
	}{
		{"empty code", CreateDiscountRequest{Code: "  ", Type: models.DiscountTypePercentage, Percentage: 10, ValidUntil: future}},
		{"zero percentage", CreateDiscountRequest{Code: "A", Type: models.DiscountTypePercentage, Percentage: 0, ValidUntil: future}},
		{"percentage over 100", CreateDiscountRequest{Code: "B", Type: models.DiscountTypePercentage, Percentage: 101, ValidUntil: future}},
		{"zero fixed amount", CreateDiscountRequest{Code: "C", Type: models.DiscountTypeFixedAmount, FixedAmount: 0, ValidUntil: future}},
		{"past expiry", CreateDiscountRequest{Code: "D", Type: models.DiscountTypePercentage, Percentage: 10, ValidUntil: time.Now().Add(-time.Hour)}},
		{"unknown type", CreateDiscountRequest{Code: "E", Type: "loyalty", ValidUntil: future}},
		{"min over max duration", CreateDiscountRequest{Code: "F", Type: models.DiscountTypePercentage, Percentage: 10, ValidUntil: future, MinReservationDuration: durPtr(10 * time.Hour), MaxReservationDuration: durPtr(2 * time.Hour)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateDiscount(context.Background(), &tt.req, adminID)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestCreateDiscountCanonicalizesAndRejectsDuplicates(t *testing.T) {
	svc, _, _ := newDiscountFixture(t)
	adminID := primitive.NewObjectID()
	future := time.Now().Add(24 * time.Hour)

	created, err := svc.CreateDiscount(context.Background(), &CreateDiscountRequest{
		Code:       "  welcome10 ",
		Type:       models.DiscountTypePercentage,
		Percentage: 10,
		ValidUntil: future,
	}, adminID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Code != "WELCOME10" {
		t.Errorf("expected canonical code WELCOME10, got %q", created.Code)
	}

	_, err = svc.CreateDiscount(context.Background(), &CreateDiscountRequest{
		Code:       "WELCOME10",
		Type:       models.DiscountTypePercentage,
		Percentage: 20,
		ValidUntil: future,
	}, adminID)
	if !errors.Is(err, interfaces.ErrDuplicate) {
		t.Errorf("expected duplicate error, got %v", err)
	}
}
