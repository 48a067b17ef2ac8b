package services

import (
	"context"
	"sync"
	"time"

	"parkhub/internal/models"
	"parkhub/internal/repositories/interfaces"
	"parkhub/internal/repositories/mongodb"
	"parkhub/internal/utils"
	"parkhub/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestLogger(t interface{ Fatalf(string, ...interface{}) }) *logger.Logger {
	l, err := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Format: "text", Output: "stderr"})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	return l
}

type fakeDiscountRepo struct {
	mu        sync.Mutex
	discounts map[primitive.ObjectID]*models.Discount
	usages    []*models.DiscountUsage
}

func newFakeDiscountRepo() *fakeDiscountRepo {
	return &fakeDiscountRepo{discounts: make(map[primitive.ObjectID]*models.Discount)}
}

func (f *fakeDiscountRepo) add(d *models.Discount) *models.Discount {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	d.Code = mongodb.CanonicalCode(d.Code)
	f.discounts[d.ID] = d
	return d
}

func (f *fakeDiscountRepo) Create(_ context.Context, d *models.Discount) error {
	f.mu.Lock()
	for _, existing := range f.discounts {
		if existing.Code == mongodb.CanonicalCode(d.Code) {
			f.mu.Unlock()
			return interfaces.ErrDuplicate
		}
	}
	f.mu.Unlock()
	f.add(d)
	return nil
}

func (f *fakeDiscountRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Discount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.discounts[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	copied := *d
	return &copied, nil
}

func (f *fakeDiscountRepo) Update(_ context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.discounts[id]
	if !ok {
		return interfaces.ErrNotFound
	}
	if v, ok := updates["is_active"]; ok {
		d.IsActive = v.(bool)
	}
	if v, ok := updates["valid_until"]; ok {
		d.ValidUntil = v.(time.Time)
	}
	if v, ok := updates["percentage"]; ok {
		d.Percentage = v.(float64)
	}
	if v, ok := updates["description"]; ok {
		d.Description = v.(string)
	}
	return nil
}

func (f *fakeDiscountRepo) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	return f.Update(ctx, id, map[string]interface{}{"is_active": false})
}

func (f *fakeDiscountRepo) GetByCode(_ context.Context, code string) (*models.Discount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	canonical := mongodb.CanonicalCode(code)
	for _, d := range f.discounts {
		if d.Code == canonical {
			copied := *d
			return &copied, nil
		}
	}
	return nil, interfaces.ErrNotFound
}

func (f *fakeDiscountRepo) GetActiveByCode(ctx context.Context, code string) (*models.Discount, error) {
	d, err := f.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !d.IsActive {
		return nil, interfaces.ErrNotFound
	}
	return d, nil
}

func (f *fakeDiscountRepo) List(_ context.Context, _ *utils.PaginationParams) ([]*models.Discount, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Discount, 0, len(f.discounts))
	for _, d := range f.discounts {
		copied := *d
		out = append(out, &copied)
	}
	return out, int64(len(out)), nil
}

func (f *fakeDiscountRepo) ListActive(ctx context.Context, params *utils.PaginationParams) ([]*models.Discount, int64, error) {
	all, _, _ := f.List(ctx, params)
	out := make([]*models.Discount, 0, len(all))
	for _, d := range all {
		if d.IsActive {
			out = append(out, d)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeDiscountRepo) RecordUsage(_ context.Context, discount *models.Discount, usage *models.DiscountUsage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.discounts[discount.ID]
	if !ok || !stored.IsActive {
		return interfaces.ErrUsageLimitExceeded
	}
	if stored.MaxUsageCount != nil && stored.CurrentUsageCount >= *stored.MaxUsageCount {
		return interfaces.ErrUsageLimitExceeded
	}
	stored.CurrentUsageCount++
	discount.CurrentUsageCount = stored.CurrentUsageCount
	usage.ID = primitive.NewObjectID()
	usage.DiscountID = stored.ID
	usage.Code = stored.Code
	usage.UsedAt = time.Now()
	f.usages = append(f.usages, usage)
	return nil
}

func (f *fakeDiscountRepo) ListUsages(_ context.Context, discountID primitive.ObjectID, _ *utils.PaginationParams) ([]*models.DiscountUsage, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.DiscountUsage, 0)
	for _, u := range f.usages {
		if u.DiscountID == discountID {
			out = append(out, u)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeDiscountRepo) GetUsageStats(ctx context.Context, discountID primitive.ObjectID) (map[string]interface{}, error) {
	usages, total, _ := f.ListUsages(ctx, discountID, nil)
	var discounted float64
	for _, u := range usages {
		discounted += u.DiscountAmount
	}
	return map[string]interface{}{"total_usages": total, "total_discounted": discounted}, nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*models.User)}
}

func (f *fakeUserRepo) add(u *models.User) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	f.users[u.ID] = u
	return u
}

func (f *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	f.mu.Lock()
	for _, existing := range f.users {
		if existing.Email == u.Email {
			f.mu.Unlock()
			return interfaces.ErrDuplicate
		}
	}
	f.mu.Unlock()
	f.add(u)
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, interfaces.ErrNotFound
}

func (f *fakeUserRepo) Update(_ context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return interfaces.ErrNotFound
	}
	if v, ok := updates["organization_id"]; ok {
		orgID := v.(primitive.ObjectID)
		u.OrganizationID = &orgID
	}
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return interfaces.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) List(_ context.Context, _ *utils.PaginationParams) ([]*models.User, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.User, 0, len(f.users))
	for _, u := range f.users {
		copied := *u
		out = append(out, &copied)
	}
	return out, int64(len(out)), nil
}

type fakeVehicleRepo struct {
	mu       sync.Mutex
	vehicles map[primitive.ObjectID]*models.Vehicle
}

func newFakeVehicleRepo() *fakeVehicleRepo {
	return &fakeVehicleRepo{vehicles: make(map[primitive.ObjectID]*models.Vehicle)}
}

func (f *fakeVehicleRepo) add(v *models.Vehicle) *models.Vehicle {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v.ID.IsZero() {
		v.ID = primitive.NewObjectID()
	}
	f.vehicles[v.ID] = v
	return v
}

func (f *fakeVehicleRepo) Create(_ context.Context, v *models.Vehicle) error {
	f.add(v)
	return nil
}

func (f *fakeVehicleRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Vehicle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.vehicles[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	copied := *v
	return &copied, nil
}

func (f *fakeVehicleRepo) GetByPlate(_ context.Context, userID primitive.ObjectID, plate string) (*models.Vehicle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.vehicles {
		if v.UserID == userID && v.LicensePlate == plate {
			copied := *v
			return &copied, nil
		}
	}
	return nil, interfaces.ErrNotFound
}

func (f *fakeVehicleRepo) Update(_ context.Context, id primitive.ObjectID, _ map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.vehicles[id]; !ok {
		return interfaces.ErrNotFound
	}
	return nil
}

func (f *fakeVehicleRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.vehicles, id)
	return nil
}

func (f *fakeVehicleRepo) ListByUser(_ context.Context, userID primitive.ObjectID, _ *utils.PaginationParams) ([]*models.Vehicle, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Vehicle, 0)
	for _, v := range f.vehicles {
		if v.UserID == userID {
			copied := *v
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

type fakeParkingLotRepo struct {
	mu   sync.Mutex
	lots map[primitive.ObjectID]*models.ParkingLot
}

func newFakeParkingLotRepo() *fakeParkingLotRepo {
	return &fakeParkingLotRepo{lots: make(map[primitive.ObjectID]*models.ParkingLot)}
}

func (f *fakeParkingLotRepo) add(l *models.ParkingLot) *models.ParkingLot {
	f.mu.Lock()
	defer f.mu.Unlock()
	if l.ID.IsZero() {
		l.ID = primitive.NewObjectID()
	}
	f.lots[l.ID] = l
	return l
}

func (f *fakeParkingLotRepo) Create(_ context.Context, l *models.ParkingLot) error {
	f.add(l)
	return nil
}

func (f *fakeParkingLotRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.ParkingLot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.lots[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	copied := *l
	return &copied, nil
}

func (f *fakeParkingLotRepo) Update(_ context.Context, id primitive.ObjectID, _ map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.lots[id]; !ok {
		return interfaces.ErrNotFound
	}
	return nil
}

func (f *fakeParkingLotRepo) Deactivate(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.lots[id]
	if !ok {
		return interfaces.ErrNotFound
	}
	l.IsActive = false
	return nil
}

func (f *fakeParkingLotRepo) List(_ context.Context, _ *utils.PaginationParams) ([]*models.ParkingLot, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.ParkingLot, 0, len(f.lots))
	for _, l := range f.lots {
		copied := *l
		out = append(out, &copied)
	}
	return out, int64(len(out)), nil
}

type fakeReservationRepo struct {
	mu           sync.Mutex
	reservations map[primitive.ObjectID]*models.Reservation
}

func newFakeReservationRepo() *fakeReservationRepo {
	return &fakeReservationRepo{reservations: make(map[primitive.ObjectID]*models.Reservation)}
}

func (f *fakeReservationRepo) Create(_ context.Context, r *models.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	r.CreatedAt = time.Now()
	copied := *r
	f.reservations[r.ID] = &copied
	return nil
}

func (f *fakeReservationRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reservations[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	copied := *r
	return &copied, nil
}

func (f *fakeReservationRepo) Update(_ context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reservations[id]
	if !ok {
		return interfaces.ErrNotFound
	}
	if v, ok := updates["status"]; ok {
		r.Status = v.(models.ReservationStatus)
	}
	if v, ok := updates["cancelled_at"]; ok {
		at := v.(time.Time)
		r.CancelledAt = &at
	}
	if v, ok := updates["start_time"]; ok {
		r.StartTime = v.(time.Time)
	}
	if v, ok := updates["end_time"]; ok {
		r.EndTime = v.(time.Time)
	}
	if v, ok := updates["original_cost"]; ok {
		r.OriginalCost = v.(float64)
	}
	if v, ok := updates["discount_amount"]; ok {
		r.DiscountAmount = v.(float64)
	}
	if v, ok := updates["cost"]; ok {
		r.Cost = v.(float64)
	}
	if v, ok := updates["billed_hours"]; ok {
		r.BilledHours = v.(int)
	}
	if v, ok := updates["billed_days"]; ok {
		r.BilledDays = v.(int)
	}
	return nil
}

func (f *fakeReservationRepo) ListByUser(_ context.Context, userID primitive.ObjectID, _ *utils.PaginationParams) ([]*models.Reservation, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Reservation, 0)
	for _, r := range f.reservations {
		if r.UserID == userID {
			copied := *r
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeReservationRepo) ListByParkingLot(_ context.Context, lotID primitive.ObjectID, _ *utils.PaginationParams) ([]*models.Reservation, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Reservation, 0)
	for _, r := range f.reservations {
		if r.ParkingLotID == lotID {
			copied := *r
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeReservationRepo) FindOverlapping(_ context.Context, vehicleID primitive.ObjectID, start, end time.Time) ([]*models.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Reservation, 0)
	for _, r := range f.reservations {
		if r.VehicleID == vehicleID && r.Status != models.ReservationStatusCancelled && r.Overlaps(start, end) {
			copied := *r
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeReservationRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.ReservationStatus) error {
	return f.Update(ctx, id, map[string]interface{}{"status": status})
}

func (f *fakeReservationRepo) SumCostsByUser(_ context.Context, userID primitive.ObjectID) (map[string]interface{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var total, discounted float64
	var count int64
	for _, r := range f.reservations {
		if r.UserID == userID && r.Status != models.ReservationStatusCancelled {
			total += r.Cost
			discounted += r.DiscountAmount
			count++
		}
	}
	return map[string]interface{}{
		"total_cost":     total,
		"total_discount": discounted,
		"reservations":   count,
	}, nil
}
