package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	bookingRepo "havenstay/database/repository/booking"
	propertyRepo "havenstay/database/repository/property"
	"havenstay/models"
)

// ============================================
// In-memory repository mocks
// ============================================

type mockBookingRepo struct {
	mu       sync.Mutex
	bookings map[string]*models.Booking
}

func newMockBookingRepo() *mockBookingRepo {
	return &mockBookingRepo{bookings: make(map[string]*models.Booking)}
}

func (m *mockBookingRepo) CreateIfAvailable(ctx context.Context, b *models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.bookings {
		if existing.PropertyID != b.PropertyID || existing.Status == models.BookingStatusCancelled {
			continue
		}
		if existing.Overlaps(b.CheckIn, b.CheckOut) {
			return bookingRepo.ErrConflict
		}
	}
	cp := *b
	m.bookings[b.ID] = &cp
	return nil
}

func (m *mockBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *mockBookingRepo) GetByReference(ctx context.Context, reference string) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.BookingReference == reference {
			cp := *b
			return &cp, nil
		}
	}
	return nil, bookingRepo.ErrNotFound
}

func (m *mockBookingRepo) GetByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Booking
	for _, b := range m.bookings {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *mockBookingRepo) GetByProperty(ctx context.Context, propertyID string, activeOnly bool) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Booking
	for _, b := range m.bookings {
		if b.PropertyID != propertyID {
			continue
		}
		if activeOnly && b.Status == models.BookingStatusCancelled {
			continue
		}
		out = append(out, *b)
	}
	return out, nil
}

func (m *mockBookingRepo) FindOverlapping(ctx context.Context, propertyID string, checkIn, checkOut time.Time) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Booking
	for _, b := range m.bookings {
		if b.PropertyID == propertyID && b.Status != models.BookingStatusCancelled && b.Overlaps(checkIn, checkOut) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *mockBookingRepo) MarkPaid(ctx context.Context, bookingID, providerRef string) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[bookingID]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	if b.PaymentStatus == models.PaymentStatusCompleted {
		if b.PaymentReference == providerRef {
			cp := *b
			return &cp, nil
		}
		return nil, bookingRepo.ErrPaymentRegression
	}
	b.PaymentStatus = models.PaymentStatusCompleted
	b.PaymentReference = providerRef
	if b.Status == models.BookingStatusPending {
		b.Status = models.BookingStatusConfirmed
	}
	b.UpdatedAt = time.Now()
	cp := *b
	return &cp, nil
}

func (m *mockBookingRepo) MarkPaymentFailed(ctx context.Context, bookingID, reason string) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[bookingID]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	if b.PaymentStatus == models.PaymentStatusCompleted {
		return nil, bookingRepo.ErrPaymentRegression
	}
	b.PaymentStatus = models.PaymentStatusFailed
	b.UpdatedAt = time.Now()
	cp := *b
	return &cp, nil
}

func (m *mockBookingRepo) Cancel(ctx context.Context, bookingID, reason string) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[bookingID]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	if b.Status.Terminal() {
		return nil, bookingRepo.ErrTerminalState
	}
	b.Status = models.BookingStatusCancelled
	b.CancellationReason = reason
	b.UpdatedAt = time.Now()
	cp := *b
	return &cp, nil
}

func (m *mockBookingRepo) ExpirePending(ctx context.Context, bookingID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[bookingID]
	if !ok {
		return false, nil
	}
	if b.Status != models.BookingStatusPending || b.PaymentStatus == models.PaymentStatusCompleted {
		return false, nil
	}
	b.Status = models.BookingStatusCancelled
	b.CancellationReason = "deposit deadline passed"
	b.UpdatedAt = time.Now()
	return true, nil
}

type mockPropertyRepo struct {
	properties map[string]*models.Property
}

func (m *mockPropertyRepo) GetByID(ctx context.Context, id string) (*models.Property, error) {
	p, ok := m.properties[id]
	if !ok {
		return nil, propertyRepo.ErrNotFound
	}
	return p, nil
}

type mockScheduler struct {
	mu        sync.Mutex
	scheduled map[string]time.Time
}

func newMockScheduler() *mockScheduler {
	return &mockScheduler{scheduled: make(map[string]time.Time)}
}

func (m *mockScheduler) ScheduleExpiry(ctx context.Context, bookingID string, dueAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scheduled[bookingID] = dueAt
	return nil
}

type mockNotifier struct {
	mu   sync.Mutex
	sent []string
}

func (m *mockNotifier) Send(ctx context.Context, template, recipient string, params map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, template)
	return nil
}

// ============================================
// Fixtures
// ============================================

const testPropertyID = "prop-1"

func futureDate(offsetDays int) string {
	return time.Now().AddDate(0, 0, offsetDays).Format(DateLayout)
}

func newTestService() (*DefaultBookingService, *mockBookingRepo, *mockScheduler) {
	repo := newMockBookingRepo()
	scheduler := newMockScheduler()
	svc := &DefaultBookingService{
		Repo: repo,
		PropertyRepo: &mockPropertyRepo{properties: map[string]*models.Property{
			testPropertyID: {ID: testPropertyID, Name: "Lakeside Cottage", PricePerNight: 2000, MaxGuests: 4},
		}},
		Notifier:  &mockNotifier{},
		Scheduler: scheduler,
		Hub:       NewWatchHub(),
	}
	return svc, repo, scheduler
}

func validInput(userID string) CreateBookingInput {
	return CreateBookingInput{
		PropertyID: testPropertyID,
		CheckIn:    futureDate(30),
		CheckOut:   futureDate(33),
		Guests:     3,
		UserID:     userID,
		UserEmail:  userID + "@example.com",
	}
}

// ============================================
// CreateBooking
// ============================================

func TestCreateBookingHappyPath(t *testing.T) {
	svc, _, scheduler := newTestService()

	b, err := svc.CreateBooking(context.Background(), validInput("user-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if b.Status != models.BookingStatusPending {
		t.Errorf("expected pending status, got %s", b.Status)
	}
	if b.PaymentStatus != models.PaymentStatusPending {
		t.Errorf("expected pending payment, got %s", b.PaymentStatus)
	}
	// 3 nights at 2000 plus one extra guest surcharge.
	if b.TotalCost != 6500 {
		t.Errorf("expected total 6500, got %.2f", b.TotalCost)
	}
	if b.BookingReference == "" {
		t.Error("expected a booking reference")
	}

	scheduler.mu.Lock()
	dueAt, ok := scheduler.scheduled[b.ID]
	scheduler.mu.Unlock()
	if !ok {
		t.Fatal("expected an expiry sweep to be scheduled")
	}
	if dueAt.Hour() != 8 {
		t.Errorf("expected deadline at 08:00, got %v", dueAt)
	}
}

func TestCreateBookingRequiresUser(t *testing.T) {
	svc, _, _ := newTestService()

	input := validInput("")
	_, err := svc.CreateBooking(context.Background(), input)
	if CodeOf(err) != CodeAuthRequired {
		t.Errorf("expected %s, got %v", CodeAuthRequired, err)
	}
}

func TestCreateBookingValidation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*CreateBookingInput)
		code   string
	}{
		{"malformed check-in", func(i *CreateBookingInput) { i.CheckIn = "10/06/2024" }, CodeValidation},
		{"checkout before checkin", func(i *CreateBookingInput) { i.CheckIn, i.CheckOut = i.CheckOut, i.CheckIn }, CodeValidation},
		{"zero-night stay", func(i *CreateBookingInput) { i.CheckOut = i.CheckIn }, CodeValidation},
		{"check-in in the past", func(i *CreateBookingInput) { i.CheckIn = "2020-01-01"; i.CheckOut = "2020-01-05" }, CodeValidation},
		{"zero guests", func(i *CreateBookingInput) { i.Guests = 0 }, CodeValidation},
		{"over capacity", func(i *CreateBookingInput) { i.Guests = 5 }, CodeValidation},
		{"unknown property", func(i *CreateBookingInput) { i.PropertyID = "prop-missing" }, CodeNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput("user-1")
			tc.mutate(&input)
			_, err := svc.CreateBooking(ctx, input)
			if CodeOf(err) != tc.code {
				t.Errorf("expected code %s, got %v", tc.code, err)
			}
		})
	}
}

func TestCreateBookingConflict(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.CreateBooking(ctx, validInput("user-1")); err != nil {
		t.Fatalf("first booking failed: %v", err)
	}

	// Same dates, different user.
	_, err := svc.CreateBooking(ctx, validInput("user-2"))
	if CodeOf(err) != CodeConflict {
		t.Errorf("expected conflict, got %v", err)
	}
}

func TestCreateBookingBackToBackStaysAllowed(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	first := validInput("user-1")
	if _, err := svc.CreateBooking(ctx, first); err != nil {
		t.Fatalf("first booking failed: %v", err)
	}

	// Second stay checks in on the first stay's checkout day.
	second := validInput("user-2")
	second.CheckIn = first.CheckOut
	second.CheckOut = futureDate(36)
	if _, err := svc.CreateBooking(ctx, second); err != nil {
		t.Errorf("back-to-back stay should not conflict: %v", err)
	}
}

func TestCreateBookingAfterCancellationFreesDates(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	b, err := svc.CreateBooking(ctx, validInput("user-1"))
	if err != nil {
		t.Fatalf("first booking failed: %v", err)
	}
	if _, err := svc.CancelBooking(ctx, b.ID, "change of plans", "user-1", false); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	if _, err := svc.CreateBooking(ctx, validInput("user-2")); err != nil {
		t.Errorf("cancelled booking should not block new dates: %v", err)
	}
}

func TestConcurrentCreatesOnlyOneWins(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	const attempts = 8
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			input := validInput("user-racer")
			_, err := svc.CreateBooking(ctx, input)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	var won, conflicted int
	for err := range errs {
		switch {
		case err == nil:
			won++
		case CodeOf(err) == CodeConflict:
			conflicted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if won != 1 {
		t.Errorf("expected exactly one winner, got %d", won)
	}
	if conflicted != attempts-1 {
		t.Errorf("expected %d conflicts, got %d", attempts-1, conflicted)
	}
}

// ============================================
// GetBooking / CancelBooking ownership
// ============================================

func TestGetBookingOwnership(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	b, err := svc.CreateBooking(ctx, validInput("user-1"))
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}

	if _, err := svc.GetBooking(ctx, b.ID, "user-1", false); err != nil {
		t.Errorf("owner read failed: %v", err)
	}
	if _, err := svc.GetBooking(ctx, b.ID, "user-2", false); CodeOf(err) != CodeUnauthorized {
		t.Errorf("expected unauthorized for a stranger, got %v", err)
	}
	if _, err := svc.GetBooking(ctx, b.ID, "support-agent", true); err != nil {
		t.Errorf("elevated read failed: %v", err)
	}
	if _, err := svc.GetBooking(ctx, "missing", "user-1", false); CodeOf(err) != CodeNotFound {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestCancelBooking(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	b, err := svc.CreateBooking(ctx, validInput("user-1"))
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}

	cancelled, err := svc.CancelBooking(ctx, b.ID, "change of plans", "user-1", false)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != models.BookingStatusCancelled {
		t.Errorf("expected cancelled status, got %s", cancelled.Status)
	}
	if cancelled.CancellationReason != "change of plans" {
		t.Errorf("expected reason recorded, got %q", cancelled.CancellationReason)
	}
	if cancelled.PaymentStatus != models.PaymentStatusPending {
		t.Errorf("cancel must not touch payment status, got %s", cancelled.PaymentStatus)
	}

	// Cancelling again is rejected: the state is terminal.
	if _, err := svc.CancelBooking(ctx, b.ID, "again", "user-1", false); CodeOf(err) != CodeValidation {
		t.Errorf("expected validation error on double cancel, got %v", err)
	}

	// A paid booking can still be cancelled, keeping its payment record.
	paid, err := svc.CreateBooking(ctx, CreateBookingInput{
		PropertyID: testPropertyID,
		CheckIn:    futureDate(60),
		CheckOut:   futureDate(62),
		Guests:     2,
		UserID:     "user-1",
		UserEmail:  "user-1@example.com",
	})
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}
	if _, err := repo.MarkPaid(ctx, paid.ID, "ch_123"); err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}
	cancelled, err = svc.CancelBooking(ctx, paid.ID, "refund requested", "user-1", false)
	if err != nil {
		t.Fatalf("cancel of paid booking failed: %v", err)
	}
	if cancelled.PaymentStatus != models.PaymentStatusCompleted {
		t.Errorf("payment record must survive cancellation, got %s", cancelled.PaymentStatus)
	}
}

func TestCancelBookingOwnership(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	b, err := svc.CreateBooking(ctx, validInput("user-1"))
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}

	if _, err := svc.CancelBooking(ctx, b.ID, "nope", "user-2", false); CodeOf(err) != CodeUnauthorized {
		t.Errorf("expected unauthorized, got %v", err)
	}
	if _, err := svc.CancelBooking(ctx, b.ID, "policy breach", "support-agent", true); err != nil {
		t.Errorf("elevated cancel failed: %v", err)
	}
}

func TestListPropertyBookingsRequiresElevation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	b, err := svc.CreateBooking(ctx, validInput("user-1"))
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}
	if _, err := svc.CancelBooking(ctx, b.ID, "freed up", "user-1", false); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	if _, err := svc.ListPropertyBookings(ctx, testPropertyID, true, false); CodeOf(err) != CodeUnauthorized {
		t.Errorf("expected unauthorized for a regular caller, got %v", err)
	}

	active, err := svc.ListPropertyBookings(ctx, testPropertyID, true, true)
	if err != nil {
		t.Fatalf("elevated list failed: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("expected no active bookings after cancellation, got %d", len(active))
	}

	all, err := svc.ListPropertyBookings(ctx, testPropertyID, false, true)
	if err != nil {
		t.Fatalf("elevated list failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("expected the cancelled booking in the full calendar, got %d", len(all))
	}
}

// ============================================
// State machine edges in the repository
// ============================================

func TestMarkPaidIdempotentPerReference(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	b, err := svc.CreateBooking(ctx, validInput("user-1"))
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}

	first, err := repo.MarkPaid(ctx, b.ID, "ch_abc")
	if err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}
	if first.Status != models.BookingStatusConfirmed {
		t.Errorf("expected confirmed, got %s", first.Status)
	}

	// Replay with the same reference is a no-op.
	if _, err := repo.MarkPaid(ctx, b.ID, "ch_abc"); err != nil {
		t.Errorf("same-reference replay must succeed: %v", err)
	}

	// A different reference against a completed payment is a regression.
	if _, err := repo.MarkPaid(ctx, b.ID, "ch_other"); !errors.Is(err, bookingRepo.ErrPaymentRegression) {
		t.Errorf("expected payment regression, got %v", err)
	}
}

func TestExpirePendingSkipsPaidBookings(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	b, err := svc.CreateBooking(ctx, validInput("user-1"))
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}

	if _, err := repo.MarkPaid(ctx, b.ID, "ch_abc"); err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}

	expired, err := repo.ExpirePending(ctx, b.ID)
	if err != nil {
		t.Fatalf("expire failed: %v", err)
	}
	if expired {
		t.Error("a paid booking must not be expired")
	}

	got, _ := repo.GetByID(ctx, b.ID)
	if got.Status != models.BookingStatusConfirmed {
		t.Errorf("expected confirmed to survive the sweep, got %s", got.Status)
	}
}

func TestExpirePendingCancelsUnpaid(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	b, err := svc.CreateBooking(ctx, validInput("user-1"))
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}

	expired, err := repo.ExpirePending(ctx, b.ID)
	if err != nil {
		t.Fatalf("expire failed: %v", err)
	}
	if !expired {
		t.Fatal("expected the unpaid booking to expire")
	}

	got, _ := repo.GetByID(ctx, b.ID)
	if got.Status != models.BookingStatusCancelled {
		t.Errorf("expected cancelled, got %s", got.Status)
	}
}

// ============================================
// Watch
// ============================================

func TestWatchReceivesLifecycleEvents(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	events, cancel := svc.Watch(testPropertyID)
	defer cancel()

	b, err := svc.CreateBooking(ctx, validInput("user-1"))
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}

	select {
	case ev := <-events:
		if ev.Type != "created" || ev.Booking.ID != b.ID {
			t.Errorf("unexpected event %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the created event")
	}

	if _, err := svc.CancelBooking(ctx, b.ID, "plans changed", "user-1", false); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	select {
	case ev := <-events:
		if ev.Type != "cancelled" {
			t.Errorf("expected cancelled event, got %s", ev.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the cancelled event")
	}
}

func TestWatchCancelStopsDelivery(t *testing.T) {
	svc, _, _ := newTestService()

	events, cancel := svc.Watch(testPropertyID)
	cancel()
	// Cancelling twice is safe.
	cancel()

	if _, ok := <-events; ok {
		t.Error("expected the channel to be closed after cancel")
	}

	// Publishing after cancel must not panic.
	svc.Hub.Publish("created", models.Booking{PropertyID: testPropertyID})
}
