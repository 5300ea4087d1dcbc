package scheduling

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	redisclient "github.com/clinova/clinic-backend/internal/redis"
)

// --- fakes ---

// memRepo is an in-memory Repository that enforces the same uniqueness
// rules the Postgres schema does, so booking races can be exercised
// without a database.
type memRepo struct {
	mu           sync.Mutex
	availability map[string]Availability // doctorID|day
	appointments map[uuid.UUID]Appointment
}

func newMemRepo() *memRepo {
	return &memRepo{
		availability: make(map[string]Availability),
		appointments: make(map[uuid.UUID]Appointment),
	}
}

func avKey(doctorID uuid.UUID, day int) string {
	return doctorID.String() + "|" + string(rune('0'+day))
}

func (r *memRepo) addWindow(doctorID uuid.UUID, day int, start, end time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.availability[avKey(doctorID, day)] = Availability{
		ID:        uuid.New(),
		DoctorID:  doctorID,
		DayOfWeek: day,
		StartTime: start,
		EndTime:   end,
	}
}

func (r *memRepo) FindAvailability(ctx context.Context, doctorID uuid.UUID, dayOfWeek int) (*Availability, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	av, ok := r.availability[avKey(doctorID, dayOfWeek)]
	if !ok {
		return nil, ErrAvailabilityNotFound
	}
	return &av, nil
}

func (r *memRepo) ListAvailability(ctx context.Context, doctorID uuid.UUID) ([]Availability, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []Availability
	for _, av := range r.availability {
		if av.DoctorID == doctorID {
			result = append(result, av)
		}
	}
	return result, nil
}

func (r *memRepo) InsertAvailability(ctx context.Context, av Availability) (*Availability, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := avKey(av.DoctorID, av.DayOfWeek)
	if _, ok := r.availability[key]; ok {
		return nil, ErrAvailabilityExists
	}
	r.availability[key] = av
	return &av, nil
}

func (r *memRepo) FindConflicting(ctx context.Context, doctorID uuid.UUID, at time.Time) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.appointments {
		if a.DoctorID == doctorID && a.StartAt.Equal(at) && a.Status != StatusCancelled {
			return &a, nil
		}
	}
	return nil, ErrAppointmentNotFound
}

func (r *memRepo) ListAppointments(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []Appointment
	for _, a := range r.appointments {
		if a.DoctorID == doctorID && a.Status != StatusCancelled &&
			!a.StartAt.Before(from) && a.StartAt.Before(to) {
			result = append(result, a)
		}
	}
	return result, nil
}

func (r *memRepo) InsertAppointment(ctx context.Context, appt Appointment) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	// Same backstop as the partial unique index.
	for _, a := range r.appointments {
		if a.DoctorID == appt.DoctorID && a.StartAt.Equal(appt.StartAt) && a.Status != StatusCancelled {
			return nil, ErrSlotTaken
		}
	}
	r.appointments[appt.ID] = appt
	return &appt, nil
}

func (r *memRepo) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	return &a, nil
}

func (r *memRepo) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []Appointment
	for _, a := range r.appointments {
		if a.PatientID == patientID {
			result = append(result, a)
		}
	}
	return result, nil
}

func (r *memRepo) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []Appointment
	for _, a := range r.appointments {
		if a.DoctorID == doctorID {
			result = append(result, a)
		}
	}
	return result, nil
}

func (r *memRepo) UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, from, to AppointmentStatus) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	if !ok || a.Status != from {
		return nil, ErrAppointmentNotFound
	}
	a.Status = to
	r.appointments[id] = a
	return &a, nil
}

// localLocker serializes critical sections per lock key in-process, the
// way the Redis locker does across processes.
type localLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newLocalLocker() *localLocker {
	return &localLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *localLocker) WithBookingLock(ctx context.Context, doctorID uuid.UUID, at time.Time, fn func(ctx context.Context) error) error {
	key := doctorID.String() + "|" + at.UTC().Format(time.RFC3339Nano)
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	defer m.Unlock()
	return fn(ctx)
}

// passthroughLocker runs the critical section with no serialization at
// all, leaving only the repository's uniqueness backstop.
type passthroughLocker struct{}

func (passthroughLocker) WithBookingLock(ctx context.Context, doctorID uuid.UUID, at time.Time, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// busyLocker always reports the lock as held elsewhere.
type busyLocker struct{}

func (busyLocker) WithBookingLock(ctx context.Context, doctorID uuid.UUID, at time.Time, fn func(ctx context.Context) error) error {
	return redisclient.ErrLockNotAcquired
}

func newTestService(repo Repository, locker redisclient.Locker) *Service {
	return NewService(repo, locker, nil)
}

// mondayAt returns a Monday timestamp at the given clock time.
// 2026-09-07 is a Monday.
func mondayAt(hour, min int) time.Time {
	return time.Date(2026, 9, 7, hour, min, 0, 0, time.UTC)
}

// --- availability checks ---

func TestIsSlotAvailable_NoWindowConfigured(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, newLocalLocker())
	doctorID := uuid.New()

	for _, at := range []time.Time{mondayAt(0, 0), mondayAt(9, 0), mondayAt(23, 30)} {
		ok, err := svc.IsSlotAvailable(context.Background(), doctorID, at)
		if err != nil {
			t.Fatalf("IsSlotAvailable(%s) returned error: %v", at, err)
		}
		if ok {
			t.Errorf("IsSlotAvailable(%s) = true, want false with no window", at)
		}
	}
}

func TestIsSlotAvailable_WindowBoundaries(t *testing.T) {
	repo := newMemRepo()
	doctorID := uuid.New()
	repo.addWindow(doctorID, 1, 9*time.Hour, 17*time.Hour)
	svc := newTestService(repo, newLocalLocker())

	cases := []struct {
		at   time.Time
		want bool
	}{
		{mondayAt(8, 59), false}, // before start
		{mondayAt(9, 0), true},   // start inclusive
		{mondayAt(16, 30), true},
		{mondayAt(17, 0), false}, // end exclusive
		{mondayAt(20, 0), false},
	}

	for _, tc := range cases {
		ok, err := svc.IsSlotAvailable(context.Background(), doctorID, tc.at)
		if err != nil {
			t.Fatalf("IsSlotAvailable(%s) returned error: %v", tc.at, err)
		}
		if ok != tc.want {
			t.Errorf("IsSlotAvailable(%s) = %v, want %v", tc.at, ok, tc.want)
		}
	}
}

func TestIsSlotAvailable_WrongWeekday(t *testing.T) {
	repo := newMemRepo()
	doctorID := uuid.New()
	repo.addWindow(doctorID, 1, 9*time.Hour, 17*time.Hour)
	svc := newTestService(repo, newLocalLocker())

	// Same clock time on a Tuesday.
	tuesday := mondayAt(10, 0).AddDate(0, 0, 1)
	ok, err := svc.IsSlotAvailable(context.Background(), doctorID, tuesday)
	if err != nil {
		t.Fatalf("IsSlotAvailable returned error: %v", err)
	}
	if ok {
		t.Error("expected Tuesday slot to be unavailable with a Monday-only window")
	}
}

// --- slot enumeration ---

func TestAvailableSlots_FullDayCount(t *testing.T) {
	repo := newMemRepo()
	doctorID := uuid.New()
	repo.addWindow(doctorID, 1, 9*time.Hour, 17*time.Hour)
	svc := newTestService(repo, newLocalLocker())

	slots, err := svc.AvailableSlots(context.Background(), doctorID, mondayAt(0, 0))
	if err != nil {
		t.Fatalf("AvailableSlots returned error: %v", err)
	}

	if len(slots) != 16 {
		t.Fatalf("got %d slots, want 16", len(slots))
	}
	if !slots[0].Equal(mondayAt(9, 0)) {
		t.Errorf("first slot = %s, want 09:00", slots[0])
	}
	if !slots[15].Equal(mondayAt(16, 30)) {
		t.Errorf("last slot = %s, want 16:30", slots[15])
	}
	for i := 1; i < len(slots); i++ {
		if !slots[i].After(slots[i-1]) {
			t.Errorf("slots not strictly ascending at index %d: %s then %s", i, slots[i-1], slots[i])
		}
	}
}

func TestAvailableSlots_TrailingPartialSlotDropped(t *testing.T) {
	repo := newMemRepo()
	doctorID := uuid.New()
	// 09:00-10:45 fits three full slots; the 10:30-10:45 remainder is dropped.
	repo.addWindow(doctorID, 1, 9*time.Hour, 10*time.Hour+45*time.Minute)
	svc := newTestService(repo, newLocalLocker())

	slots, err := svc.AvailableSlots(context.Background(), doctorID, mondayAt(0, 0))
	if err != nil {
		t.Fatalf("AvailableSlots returned error: %v", err)
	}
	if len(slots) != 3 {
		t.Fatalf("got %d slots, want 3", len(slots))
	}
	if !slots[2].Equal(mondayAt(10, 0)) {
		t.Errorf("last slot = %s, want 10:00", slots[2])
	}
}

func TestAvailableSlots_NoWindow(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, newLocalLocker())

	slots, err := svc.AvailableSlots(context.Background(), uuid.New(), mondayAt(0, 0))
	if err != nil {
		t.Fatalf("AvailableSlots returned error: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("got %d slots, want 0", len(slots))
	}
}

func TestAvailableSlots_ExcludesBookedIncludesCancelled(t *testing.T) {
	repo := newMemRepo()
	doctorID := uuid.New()
	repo.addWindow(doctorID, 1, 9*time.Hour, 17*time.Hour)
	svc := newTestService(repo, newLocalLocker())

	booked, err := svc.Book(context.Background(), uuid.New(), doctorID, mondayAt(10, 0), "")
	if err != nil {
		t.Fatalf("Book returned error: %v", err)
	}

	cancelled, err := svc.Book(context.Background(), uuid.New(), doctorID, mondayAt(11, 0), "")
	if err != nil {
		t.Fatalf("Book returned error: %v", err)
	}
	if _, err := svc.Cancel(context.Background(), cancelled.ID); err != nil {
		t.Fatalf("Cancel returned error: %v", err)
	}

	slots, err := svc.AvailableSlots(context.Background(), doctorID, mondayAt(0, 0))
	if err != nil {
		t.Fatalf("AvailableSlots returned error: %v", err)
	}

	for _, s := range slots {
		if s.Equal(booked.StartAt) {
			t.Errorf("slot %s should be excluded, it holds a scheduled appointment", s)
		}
	}

	foundFreed := false
	for _, s := range slots {
		if s.Equal(cancelled.StartAt) {
			foundFreed = true
		}
	}
	if !foundFreed {
		t.Error("slot held only by a cancelled appointment should be listed again")
	}
	if len(slots) != 15 {
		t.Errorf("got %d slots, want 15 (16 minus one booked)", len(slots))
	}
}

// --- booking ---

func TestBook_ThenCheckAndRebook(t *testing.T) {
	repo := newMemRepo()
	doctorID := uuid.New()
	repo.addWindow(doctorID, 1, 9*time.Hour, 17*time.Hour)
	svc := newTestService(repo, newLocalLocker())

	at := mondayAt(9, 30)
	appt, err := svc.Book(context.Background(), uuid.New(), doctorID, at, "first visit")
	if err != nil {
		t.Fatalf("Book returned error: %v", err)
	}
	if appt.Status != StatusScheduled {
		t.Errorf("Status = %s, want scheduled", appt.Status)
	}
	if appt.ID == uuid.Nil {
		t.Error("expected a generated appointment id")
	}

	ok, err := svc.IsSlotAvailable(context.Background(), doctorID, at)
	if err != nil {
		t.Fatalf("IsSlotAvailable returned error: %v", err)
	}
	if ok {
		t.Error("slot should be unavailable after booking")
	}

	if _, err := svc.Book(context.Background(), uuid.New(), doctorID, at, ""); !errors.Is(err, ErrSlotUnavailable) {
		t.Errorf("second booking error = %v, want ErrSlotUnavailable", err)
	}
}

func TestBook_CancelledAppointmentFreesSlot(t *testing.T) {
	repo := newMemRepo()
	doctorID := uuid.New()
	repo.addWindow(doctorID, 1, 9*time.Hour, 17*time.Hour)
	svc := newTestService(repo, newLocalLocker())

	at := mondayAt(14, 0)
	appt, err := svc.Book(context.Background(), uuid.New(), doctorID, at, "")
	if err != nil {
		t.Fatalf("Book returned error: %v", err)
	}
	if _, err := svc.Cancel(context.Background(), appt.ID); err != nil {
		t.Fatalf("Cancel returned error: %v", err)
	}

	ok, err := svc.IsSlotAvailable(context.Background(), doctorID, at)
	if err != nil {
		t.Fatalf("IsSlotAvailable returned error: %v", err)
	}
	if !ok {
		t.Error("slot should be available again after cancellation")
	}

	if _, err := svc.Book(context.Background(), uuid.New(), doctorID, at, ""); err != nil {
		t.Errorf("rebooking a freed slot failed: %v", err)
	}
}

func TestBook_OutsideAnyWindowFails(t *testing.T) {
	repo := newMemRepo()
	doctorID := uuid.New()
	repo.addWindow(doctorID, 1, 9*time.Hour, 17*time.Hour)
	svc := newTestService(repo, newLocalLocker())

	// Wednesday: no window at all.
	wednesday := mondayAt(10, 0).AddDate(0, 0, 2)
	if _, err := svc.Book(context.Background(), uuid.New(), doctorID, wednesday, ""); !errors.Is(err, ErrSlotUnavailable) {
		t.Errorf("booking with no window: error = %v, want ErrSlotUnavailable", err)
	}
}

func TestBook_LockHeldElsewhere(t *testing.T) {
	repo := newMemRepo()
	doctorID := uuid.New()
	repo.addWindow(doctorID, 1, 9*time.Hour, 17*time.Hour)
	svc := newTestService(repo, busyLocker{})

	_, err := svc.Book(context.Background(), uuid.New(), doctorID, mondayAt(9, 0), "")
	if !errors.Is(err, ErrSlotBeingBooked) {
		t.Errorf("error = %v, want ErrSlotBeingBooked", err)
	}
}

func TestBook_ConcurrentSameSlot(t *testing.T) {
	lockers := map[string]redisclient.Locker{
		"serialized":    newLocalLocker(),
		"backstop_only": passthroughLocker{},
	}

	for name, locker := range lockers {
		t.Run(name, func(t *testing.T) {
			repo := newMemRepo()
			doctorID := uuid.New()
			repo.addWindow(doctorID, 1, 9*time.Hour, 17*time.Hour)
			svc := newTestService(repo, locker)

			at := mondayAt(9, 0)
			const attempts = 32

			var wg sync.WaitGroup
			errs := make([]error, attempts)
			for i := 0; i < attempts; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, err := svc.Book(context.Background(), uuid.New(), doctorID, at, "")
					errs[i] = err
				}(i)
			}
			wg.Wait()

			wins := 0
			for _, err := range errs {
				switch {
				case err == nil:
					wins++
				case errors.Is(err, ErrSlotUnavailable), errors.Is(err, ErrSlotBeingBooked):
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}
			if wins != 1 {
				t.Errorf("%d bookings succeeded for the same slot, want exactly 1", wins)
			}
		})
	}
}

// --- transitions ---

func TestTransitions(t *testing.T) {
	repo := newMemRepo()
	doctorID := uuid.New()
	repo.addWindow(doctorID, 1, 9*time.Hour, 17*time.Hour)
	svc := newTestService(repo, newLocalLocker())

	appt, err := svc.Book(context.Background(), uuid.New(), doctorID, mondayAt(9, 0), "")
	if err != nil {
		t.Fatalf("Book returned error: %v", err)
	}

	done, err := svc.Complete(context.Background(), appt.ID)
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if done.Status != StatusCompleted {
		t.Errorf("Status = %s, want completed", done.Status)
	}

	if _, err := svc.Cancel(context.Background(), appt.ID); !errors.Is(err, ErrInvalidStatusTransition) {
		t.Errorf("cancelling a completed appointment: error = %v, want ErrInvalidStatusTransition", err)
	}

	if _, err := svc.Cancel(context.Background(), uuid.New()); !errors.Is(err, ErrAppointmentNotFound) {
		t.Errorf("cancelling unknown id: error = %v, want ErrAppointmentNotFound", err)
	}
}

// --- availability management ---

func TestAddAvailability_Validation(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, newLocalLocker())
	doctorID := uuid.New()

	if _, err := svc.AddAvailability(context.Background(), doctorID, 0, 9*time.Hour, 17*time.Hour); !errors.Is(err, ErrInvalidWeekday) {
		t.Errorf("day 0: error = %v, want ErrInvalidWeekday", err)
	}
	if _, err := svc.AddAvailability(context.Background(), doctorID, 8, 9*time.Hour, 17*time.Hour); !errors.Is(err, ErrInvalidWeekday) {
		t.Errorf("day 8: error = %v, want ErrInvalidWeekday", err)
	}
	if _, err := svc.AddAvailability(context.Background(), doctorID, 1, 17*time.Hour, 9*time.Hour); !errors.Is(err, ErrInvalidWindow) {
		t.Errorf("inverted window: error = %v, want ErrInvalidWindow", err)
	}
	if _, err := svc.AddAvailability(context.Background(), doctorID, 1, 9*time.Hour, 25*time.Hour); !errors.Is(err, ErrInvalidWindow) {
		t.Errorf("window past midnight: error = %v, want ErrInvalidWindow", err)
	}
}

func TestAddAvailability_OnePerDay(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, newLocalLocker())
	doctorID := uuid.New()

	if _, err := svc.AddAvailability(context.Background(), doctorID, 1, 9*time.Hour, 17*time.Hour); err != nil {
		t.Fatalf("first AddAvailability returned error: %v", err)
	}
	if _, err := svc.AddAvailability(context.Background(), doctorID, 1, 8*time.Hour, 12*time.Hour); !errors.Is(err, ErrAvailabilityExists) {
		t.Errorf("second window same day: error = %v, want ErrAvailabilityExists", err)
	}
	// A different day is fine.
	if _, err := svc.AddAvailability(context.Background(), doctorID, 2, 9*time.Hour, 17*time.Hour); err != nil {
		t.Errorf("different day returned error: %v", err)
	}
}
