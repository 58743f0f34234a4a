package scheduler

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/linesmerrill/pickup-notify-api/databases"
	"github.com/linesmerrill/pickup-notify-api/models"
	templates "github.com/linesmerrill/pickup-notify-api/templates/html"
)

const (
	reminderLockName = "pickup_reminder_job"
	// reminderLockTTL outlives the local day so the key cannot be retaken before midnight
	reminderLockTTL = 26 * time.Hour
)

// State is the scheduler's position in its Idle -> Armed -> Firing cycle
type State int

// Scheduler states
const (
	Idle State = iota
	Armed
	Firing
)

func (s State) String() string {
	switch s {
	case Armed:
		return "armed"
	case Firing:
		return "firing"
	default:
		return "idle"
	}
}

// ReminderNotifier sends one reminder to a driver for their pickups
type ReminderNotifier interface {
	NotifyDriverPickupReminder(ctx context.Context, driverID string, pickups []models.Pickup) error
}

// Mailer is the outbound email chain used for the optional reminder email
type Mailer interface {
	SendEmail(ctx context.Context, to, subject, html string) bool
}

// PickupDigest is one driver's assigned pickups for the reminder window
type PickupDigest struct {
	DriverID string
	Pickups  []models.Pickup
}

// RunResult describes what one reminder run did
type RunResult struct {
	Pickups  int  `json:"pickups"`
	Drivers  int  `json:"drivers"`
	Notified int  `json:"notified"`
	Failed   int  `json:"failed"`
	Emailed  int  `json:"emailed"`
	Skipped  bool `json:"skipped"`
}

// ReminderScheduler sends drivers a reminder about tomorrow's pickups once a day
type ReminderScheduler struct {
	PickupDB databases.PickupDatabase
	Notifier ReminderNotifier
	LockDB   databases.SchedulerLockDatabase
	Mailer   Mailer

	hour       int
	location   *time.Location
	instanceID string
	now        func() time.Time

	mu    sync.Mutex
	cron  *cron.Cron
	state State
}

// NewScheduler creates a new reminder scheduler. lockDB and mailer may be nil.
func NewScheduler(
	pickupDB databases.PickupDatabase,
	notifier ReminderNotifier,
	lockDB databases.SchedulerLockDatabase,
	mailer Mailer,
	hour int,
	location *time.Location,
) *ReminderScheduler {
	// Generate a unique instance ID for this pod
	instanceID := os.Getenv("DYNO")
	if instanceID == "" {
		instanceID = fmt.Sprintf("instance-%s", uuid.NewString())
	}
	if location == nil {
		location = time.Local
	}

	return &ReminderScheduler{
		PickupDB:   pickupDB,
		Notifier:   notifier,
		LockDB:     lockDB,
		Mailer:     mailer,
		hour:       hour,
		location:   location,
		instanceID: instanceID,
		now:        time.Now,
	}
}

// Start arms the daily reminder. Any previously armed timer is cleared first, so
// calling Start twice never leaves two timers behind.
func (s *ReminderScheduler) Start() {
	s.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()

	c := cron.New(cron.WithLocation(s.location))
	c.Schedule(NewDailyBoundary(s.hour), cron.FuncJob(s.fire))
	c.Start()
	s.cron = c
	s.state = Armed

	zap.S().Infow("Pickup reminder scheduler started",
		"hour", s.hour,
		"location", s.location.String(),
		"next", NextBoundary(s.now().In(s.location), s.hour),
	)
}

// Stop clears every armed timer and waits for a running fire to finish. Safe to call
// when the scheduler was never started.
func (s *ReminderScheduler) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.state = Idle
	s.mu.Unlock()

	if c == nil {
		return
	}
	ctx := c.Stop()
	<-ctx.Done()
	zap.S().Info("Pickup reminder scheduler stopped")
}

// State reports where the scheduler is in its cycle
func (s *ReminderScheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// entries is the number of timers currently armed
func (s *ReminderScheduler) entries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron == nil {
		return 0
	}
	return len(s.cron.Entries())
}

// TriggerNow runs the reminder immediately, bypassing the timer. It goes through the
// same path as a scheduled fire.
func (s *ReminderScheduler) TriggerNow(ctx context.Context) (RunResult, error) {
	return s.run(ctx)
}

func (s *ReminderScheduler) fire() {
	s.setState(Firing)
	defer s.setState(Armed)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if _, err := s.run(ctx); err != nil {
		zap.S().Errorw("pickup reminder run failed, skipping until next fire", "error", err)
	}
}

// setState only moves between Armed and Firing while a timer is armed
func (s *ReminderScheduler) setState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		s.state = state
	}
}

func (s *ReminderScheduler) run(ctx context.Context) (RunResult, error) {
	result := RunResult{}

	local := s.now().In(s.location)
	lockName := dailyLockName(local)

	if s.LockDB != nil {
		// The lock is per local day and kept until it expires, so an instance whose
		// timer fires after another finished still sees the day as taken.
		acquired, err := s.LockDB.TryAcquireLock(ctx, lockName, s.instanceID, reminderLockTTL)
		if err != nil {
			return result, fmt.Errorf("failed to acquire lock for reminder job: %w", err)
		}
		if !acquired {
			zap.S().Debugw("Reminder job already ran on another instance today, skipping", "lock", lockName)
			result.Skipped = true
			return result, nil
		}
	}

	tomorrowStart, dayAfterStart := window(local)
	filter := bson.M{
		"status": models.PickupStatusAssigned,
		"scheduledDate": bson.M{
			"$gte": primitive.NewDateTimeFromTime(tomorrowStart),
			"$lt":  primitive.NewDateTimeFromTime(dayAfterStart),
		},
	}

	zap.S().Infow("Running pickup reminder job", "instance", s.instanceID, "from", tomorrowStart, "to", dayAfterStart)

	pickups, err := s.PickupDB.Find(ctx, filter)
	if err != nil {
		// nothing was sent, so let a retry take the day
		s.releaseLock(ctx, lockName)
		return result, fmt.Errorf("failed to find assigned pickups: %w", err)
	}
	result.Pickups = len(pickups)

	digests := GroupByDriver(pickups)
	result.Drivers = len(digests)

	for _, digest := range digests {
		if err := s.Notifier.NotifyDriverPickupReminder(ctx, digest.DriverID, digest.Pickups); err != nil {
			zap.S().Errorw("failed to send pickup reminder", "error", err, "driverId", digest.DriverID)
			result.Failed++
			continue
		}
		result.Notified++

		if s.sendReminderEmail(ctx, digest) {
			result.Emailed++
		}
	}

	zap.S().Infow("Pickup reminder job complete",
		"pickups", result.Pickups,
		"drivers", result.Drivers,
		"notified", result.Notified,
		"failed", result.Failed,
	)
	return result, nil
}

func (s *ReminderScheduler) releaseLock(ctx context.Context, name string) {
	if s.LockDB == nil {
		return
	}
	if err := s.LockDB.ReleaseLock(ctx, name, s.instanceID); err != nil {
		zap.S().Warnw("failed to release reminder lock", "error", err, "lock", name)
	}
}

// dailyLockName keys the reminder lock by job and local calendar day
func dailyLockName(local time.Time) string {
	return fmt.Sprintf("%s:%s", reminderLockName, local.Format("2006-01-02"))
}

func (s *ReminderScheduler) sendReminderEmail(ctx context.Context, digest PickupDigest) bool {
	if s.Mailer == nil {
		return false
	}
	to := ""
	for _, p := range digest.Pickups {
		if p.DriverEmail != "" {
			to = p.DriverEmail
			break
		}
	}
	if to == "" {
		return false
	}

	addresses := make([]string, 0, len(digest.Pickups))
	for _, p := range digest.Pickups {
		addresses = append(addresses, p.Address)
	}
	subject := fmt.Sprintf("Reminder: %d pickup(s) tomorrow", len(digest.Pickups))
	return s.Mailer.SendEmail(ctx, to, subject, templates.RenderPickupReminderEmail(addresses))
}

// GroupByDriver buckets pickups per driver, ordered by driver id. Pickups without a
// driver are dropped since nobody can be reminded about them.
func GroupByDriver(pickups []models.Pickup) []PickupDigest {
	groups := make(map[string][]models.Pickup)
	for _, p := range pickups {
		if p.DriverID == "" {
			continue
		}
		groups[p.DriverID] = append(groups[p.DriverID], p)
	}

	drivers := make([]string, 0, len(groups))
	for id := range groups {
		drivers = append(drivers, id)
	}
	sort.Strings(drivers)

	digests := make([]PickupDigest, 0, len(drivers))
	for _, id := range drivers {
		digests = append(digests, PickupDigest{DriverID: id, Pickups: groups[id]})
	}
	return digests
}
