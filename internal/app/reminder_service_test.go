package app

import (
	"context"
	"strings"
	"testing"
	"time"

	"pill_control_bot/internal/domain/cycle"
	"pill_control_bot/internal/domain/dose"
	"pill_control_bot/internal/domain/reminder"
)

type reminderFixture struct {
	userRepo   *fakeUserRepo
	cycleRepo  *fakeCycleRepo
	doseRepo   *fakeDoseRepo
	friendRepo *fakeFriendRepo
	logRepo    *fakeReminderLogRepo
	client     *recordingClient
}

func newReminderFixture() *reminderFixture {
	return &reminderFixture{
		userRepo:   newFakeUserRepo(),
		cycleRepo:  &fakeCycleRepo{},
		doseRepo:   &fakeDoseRepo{},
		friendRepo: &fakeFriendRepo{},
		logRepo:    newFakeReminderLogRepo(),
		client:     &recordingClient{},
	}
}

func (f *reminderFixture) service(now time.Time) *ReminderService {
	return NewReminderService(
		f.userRepo, f.cycleRepo, f.doseRepo, f.friendRepo, f.logRepo,
		f.client, plainMascot{}, testLogger(),
		reminder.DefaultWindowMinutes, cycle.DefaultBleedingWindowDays,
		fixedNow(now),
	)
}

func TestProcessDoseReminders_DeliversOncePerBucket(t *testing.T) {
	t.Parallel()

	f := newReminderFixture()
	owner := registerUser(t, f.userRepo, 100, "Ana")
	startCycle(t, f.cycleRepo, owner.ID, "2024-01-01", "20:00")
	ctx := context.Background()

	// 19:50 is inside the due-now band. Two ticks, one delivery.
	service := f.service(mustMoment(t, "2024-01-10 19:50"))
	for i := 0; i < 2; i++ {
		if err := service.ProcessDoseReminders(ctx); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}

	if len(f.client.sent) != 1 {
		t.Fatalf("expected exactly one delivery, got %d", len(f.client.sent))
	}
	if f.client.sent[0].chatID != owner.TelegramID {
		t.Fatalf("expected delivery to chat %d, got %d", owner.TelegramID, f.client.sent[0].chatID)
	}
	if !strings.Contains(f.client.sent[0].text, string(reminder.BucketDoseDueNow)) {
		t.Fatalf("expected a due-now message, got %q", f.client.sent[0].text)
	}
}

func TestProcessDoseReminders_DistinctBucketsDeliverSeparately(t *testing.T) {
	t.Parallel()

	f := newReminderFixture()
	owner := registerUser(t, f.userRepo, 100, "Ana")
	startCycle(t, f.cycleRepo, owner.ID, "2024-01-01", "20:00")
	ctx := context.Background()

	// 19:00 classifies as soon, 19:50 as due now; each bucket fires once.
	if err := f.service(mustMoment(t, "2024-01-10 19:00")).ProcessDoseReminders(ctx); err != nil {
		t.Fatalf("soon tick: %v", err)
	}
	if err := f.service(mustMoment(t, "2024-01-10 19:50")).ProcessDoseReminders(ctx); err != nil {
		t.Fatalf("due-now tick: %v", err)
	}

	if len(f.client.sent) != 2 {
		t.Fatalf("expected two deliveries across buckets, got %d", len(f.client.sent))
	}
}

func TestProcessDoseReminders_SkipsResolvedDay(t *testing.T) {
	t.Parallel()

	f := newReminderFixture()
	owner := registerUser(t, f.userRepo, 100, "Ana")
	c := startCycle(t, f.cycleRepo, owner.ID, "2024-01-01", "20:00")
	ctx := context.Background()

	// A skipped dose still resolves the day: no missed-dose nagging after it.
	event := &dose.Event{CycleID: c.ID, UserID: owner.ID, DayTaken: mustDay(t, "2024-01-10"), Status: dose.StatusSkipped}
	if err := f.doseRepo.Create(ctx, event); err != nil {
		t.Fatalf("seed event: %v", err)
	}

	if err := f.service(mustMoment(t, "2024-01-10 22:30")).ProcessDoseReminders(ctx); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if len(f.client.sent) != 0 {
		t.Fatalf("expected no delivery on a resolved day, got %d", len(f.client.sent))
	}
}

func TestProcessDoseReminders_SkipsRestDay(t *testing.T) {
	t.Parallel()

	f := newReminderFixture()
	owner := registerUser(t, f.userRepo, 100, "Ana")
	startCycle(t, f.cycleRepo, owner.ID, "2024-01-01", "20:00")
	ctx := context.Background()

	// 2024-01-25 is a rest day of the 28/21 cycle.
	if err := f.service(mustMoment(t, "2024-01-25 19:50")).ProcessDoseReminders(ctx); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if len(f.client.sent) != 0 {
		t.Fatalf("expected no delivery on a rest day, got %d", len(f.client.sent))
	}
}

func TestProcessDoseReminders_SkipsAmbienceBuckets(t *testing.T) {
	t.Parallel()

	f := newReminderFixture()
	owner := registerUser(t, f.userRepo, 100, "Ana")
	startCycle(t, f.cycleRepo, owner.ID, "2024-01-01", "20:00")
	ctx := context.Background()

	// 08:00 far from a 20:00 dose classifies as a morning ambience bucket,
	// which is shown on demand only.
	if err := f.service(mustMoment(t, "2024-01-10 08:00")).ProcessDoseReminders(ctx); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if len(f.client.sent) != 0 {
		t.Fatalf("expected ambience buckets not to push, got %d deliveries", len(f.client.sent))
	}
}

func TestProcessDoseReminders_MalformedTakeHourSkipped(t *testing.T) {
	t.Parallel()

	f := newReminderFixture()
	owner := registerUser(t, f.userRepo, 100, "Ana")
	ctx := context.Background()

	broken, err := cycle.New(owner.ID, mustDay(t, "2024-01-01"), 28, 21, "quarter past nine")
	if err != nil {
		t.Fatalf("build cycle: %v", err)
	}
	if err := f.cycleRepo.Create(ctx, broken); err != nil {
		t.Fatalf("store cycle: %v", err)
	}

	if err := f.service(mustMoment(t, "2024-01-10 19:50")).ProcessDoseReminders(ctx); err != nil {
		t.Fatalf("expected malformed take hour to be skipped, got error: %v", err)
	}
	if len(f.client.sent) != 0 {
		t.Fatalf("expected no delivery for a malformed take hour, got %d", len(f.client.sent))
	}
}

func TestStatusBucket_MissedSuppressedAfterTake(t *testing.T) {
	t.Parallel()

	f := newReminderFixture()
	owner := registerUser(t, f.userRepo, 100, "Ana")
	c := startCycle(t, f.cycleRepo, owner.ID, "2024-01-01", "20:00")
	ctx := context.Background()
	service := f.service(mustMoment(t, "2024-01-10 22:30"))

	bucket, err := service.StatusBucket(ctx, owner.ID)
	if err != nil {
		t.Fatalf("status bucket: %v", err)
	}
	if bucket != reminder.BucketMissedDose {
		t.Fatalf("expected missed-dose before taking, got %s", bucket)
	}

	event := &dose.Event{CycleID: c.ID, UserID: owner.ID, DayTaken: mustDay(t, "2024-01-10"), Status: dose.StatusTaken}
	if err := f.doseRepo.Create(ctx, event); err != nil {
		t.Fatalf("seed event: %v", err)
	}

	bucket, err = service.StatusBucket(ctx, owner.ID)
	if err != nil {
		t.Fatalf("status bucket after take: %v", err)
	}
	if bucket != reminder.BucketNight {
		t.Fatalf("expected night ambience after taking, got %s", bucket)
	}
}

func TestAddFriend(t *testing.T) {
	t.Parallel()

	f := newReminderFixture()
	owner := registerUser(t, f.userRepo, 100, "Ana")
	buddy := registerUser(t, f.userRepo, 200, "Lucía")
	ctx := context.Background()
	service := f.service(mustMoment(t, "2024-01-10 12:00"))

	if _, err := service.AddFriend(ctx, owner.ID, 999); err != ErrFriendNotRegistered {
		t.Fatalf("expected ErrFriendNotRegistered, got %v", err)
	}
	if _, err := service.AddFriend(ctx, owner.ID, owner.TelegramID); err != ErrCannotFriendSelf {
		t.Fatalf("expected ErrCannotFriendSelf, got %v", err)
	}

	added, err := service.AddFriend(ctx, owner.ID, buddy.TelegramID)
	if err != nil {
		t.Fatalf("add friend: %v", err)
	}
	if added.ID != buddy.ID {
		t.Fatalf("expected linked friend %d, got %d", buddy.ID, added.ID)
	}

	if _, err := service.AddFriend(ctx, owner.ID, buddy.TelegramID); err != ErrFriendAlreadyAdded {
		t.Fatalf("expected ErrFriendAlreadyAdded, got %v", err)
	}
}

func TestRemoveFriend(t *testing.T) {
	t.Parallel()

	f := newReminderFixture()
	owner := registerUser(t, f.userRepo, 100, "Ana")
	buddy := registerUser(t, f.userRepo, 200, "Lucía")
	ctx := context.Background()
	service := f.service(mustMoment(t, "2024-01-10 12:00"))

	if _, err := service.RemoveFriend(ctx, owner.ID, buddy.TelegramID); err != ErrFriendNotLinked {
		t.Fatalf("expected ErrFriendNotLinked before adding, got %v", err)
	}

	if _, err := service.AddFriend(ctx, owner.ID, buddy.TelegramID); err != nil {
		t.Fatalf("add friend: %v", err)
	}
	removed, err := service.RemoveFriend(ctx, owner.ID, buddy.TelegramID)
	if err != nil {
		t.Fatalf("remove friend: %v", err)
	}
	if removed.ID != buddy.ID {
		t.Fatalf("expected removed friend %d, got %d", buddy.ID, removed.ID)
	}

	links, err := f.friendRepo.ListByUserID(ctx, owner.ID)
	if err != nil {
		t.Fatalf("list friends: %v", err)
	}
	if len(links) != 0 {
		t.Fatalf("expected no remaining links, got %d", len(links))
	}
}

func TestRemindFriends_EligibilityWindow(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		now      string
		wantSent bool
	}{
		{name: "inside window", now: "2024-01-10 07:30", wantSent: true},
		{name: "one minute early", now: "2024-01-10 07:29", wantSent: false},
	}

	for _, testCase := range cases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			f := newReminderFixture()
			owner := registerUser(t, f.userRepo, 100, "Ana")
			buddy := registerUser(t, f.userRepo, 200, "Lucía")
			startCycle(t, f.cycleRepo, buddy.ID, "2024-01-01", "08:00")
			ctx := context.Background()

			service := f.service(mustMoment(t, testCase.now))
			if _, err := service.AddFriend(ctx, owner.ID, buddy.TelegramID); err != nil {
				t.Fatalf("add friend: %v", err)
			}

			results, err := service.RemindFriends(ctx, owner.ID)
			if err != nil {
				t.Fatalf("remind friends: %v", err)
			}
			if len(results) != 1 {
				t.Fatalf("expected one nudge result, got %d", len(results))
			}
			if results[0].Sent != testCase.wantSent {
				t.Fatalf("expected sent=%v, got %v", testCase.wantSent, results[0].Sent)
			}
			if testCase.wantSent && len(f.client.sent) != 1 {
				t.Fatalf("expected one delivery, got %d", len(f.client.sent))
			}
			if !testCase.wantSent && len(f.client.sent) != 0 {
				t.Fatalf("expected no delivery, got %d", len(f.client.sent))
			}
		})
	}
}

func TestRemindFriends_FriendWithoutCycleNotEligible(t *testing.T) {
	t.Parallel()

	f := newReminderFixture()
	owner := registerUser(t, f.userRepo, 100, "Ana")
	buddy := registerUser(t, f.userRepo, 200, "Lucía")
	ctx := context.Background()

	service := f.service(mustMoment(t, "2024-01-10 08:00"))
	if _, err := service.AddFriend(ctx, owner.ID, buddy.TelegramID); err != nil {
		t.Fatalf("add friend: %v", err)
	}

	results, err := service.RemindFriends(ctx, owner.ID)
	if err != nil {
		t.Fatalf("remind friends: %v", err)
	}
	if len(results) != 1 || results[0].Sent {
		t.Fatalf("expected an unsent result for a friend without a cycle, got %+v", results)
	}
}
