package app

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"pill_control_bot/internal/domain/cycle"
	"pill_control_bot/internal/domain/dose"
	"pill_control_bot/internal/domain/friend"
	"pill_control_bot/internal/domain/reminder"
	"pill_control_bot/internal/domain/user"
	idb "pill_control_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// ---- in-memory repositories ------------------------------------------------

type fakeUserRepo struct {
	users  map[int64]*user.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*user.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, u *user.User) error {
	for _, existing := range r.users {
		if existing.TelegramID == u.TelegramID {
			return idb.ErrDuplicateTelegramID
		}
	}
	r.nextID++
	u.ID = r.nextID
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*user.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, idb.ErrUserNotFound
}

func (r *fakeUserRepo) GetByTelegramID(_ context.Context, telegramID int64) (*user.User, error) {
	for _, u := range r.users {
		if u.TelegramID == telegramID {
			return u, nil
		}
	}
	return nil, idb.ErrUserNotFound
}

type fakeCycleRepo struct {
	cycles []*cycle.Cycle
	nextID int64
}

func (r *fakeCycleRepo) Create(_ context.Context, c *cycle.Cycle) error {
	r.nextID++
	c.ID = r.nextID
	r.cycles = append(r.cycles, c)
	return nil
}

func (r *fakeCycleRepo) GetByID(_ context.Context, id int64) (*cycle.Cycle, error) {
	for _, c := range r.cycles {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, idb.ErrCycleNotFound
}

func (r *fakeCycleRepo) GetActiveByUserID(_ context.Context, userID int64) (*cycle.Cycle, error) {
	for i := len(r.cycles) - 1; i >= 0; i-- {
		if r.cycles[i].UserID == userID && !r.cycles[i].IsDeleted {
			return r.cycles[i], nil
		}
	}
	return nil, idb.ErrCycleNotFound
}

func (r *fakeCycleRepo) ListActive(_ context.Context) ([]*cycle.Cycle, error) {
	active := make([]*cycle.Cycle, 0)
	for _, c := range r.cycles {
		if !c.IsDeleted {
			active = append(active, c)
		}
	}
	return active, nil
}

func (r *fakeCycleRepo) SoftDelete(_ context.Context, id int64) error {
	for _, c := range r.cycles {
		if c.ID == id {
			c.IsDeleted = true
			return nil
		}
	}
	return idb.ErrCycleNotFound
}

type fakeDoseRepo struct {
	events []*dose.Event
	nextID int64
}

func (r *fakeDoseRepo) Create(_ context.Context, e *dose.Event) error {
	for _, existing := range r.events {
		if existing.CycleID == e.CycleID && existing.DayTaken.Equal(e.DayTaken) {
			return idb.ErrDuplicateDoseEvent
		}
	}
	r.nextID++
	e.ID = r.nextID
	r.events = append(r.events, e)
	return nil
}

func (r *fakeDoseRepo) GetByCycleAndDay(_ context.Context, cycleID int64, day time.Time) (*dose.Event, error) {
	for _, e := range r.events {
		if e.CycleID == cycleID && e.DayTaken.Equal(day) {
			return e, nil
		}
	}
	return nil, idb.ErrDoseEventNotFound
}

func (r *fakeDoseRepo) ListByCycle(_ context.Context, cycleID int64) ([]dose.Event, error) {
	events := make([]dose.Event, 0)
	for _, e := range r.events {
		if e.CycleID == cycleID {
			events = append(events, *e)
		}
	}
	return events, nil
}

type fakeFriendRepo struct {
	links  []*friend.Link
	nextID int64
}

func (r *fakeFriendRepo) Create(_ context.Context, l *friend.Link) error {
	for _, existing := range r.links {
		if existing.UserID == l.UserID && existing.FriendUserID == l.FriendUserID {
			return idb.ErrDuplicateFriendLink
		}
	}
	r.nextID++
	l.ID = r.nextID
	r.links = append(r.links, l)
	return nil
}

func (r *fakeFriendRepo) ListByUserID(_ context.Context, userID int64) ([]friend.Link, error) {
	links := make([]friend.Link, 0)
	for _, l := range r.links {
		if l.UserID == userID {
			links = append(links, *l)
		}
	}
	return links, nil
}

func (r *fakeFriendRepo) Delete(_ context.Context, userID, friendUserID int64) error {
	for i, l := range r.links {
		if l.UserID == userID && l.FriendUserID == friendUserID {
			r.links = append(r.links[:i], r.links[i+1:]...)
			return nil
		}
	}
	return idb.ErrFriendLinkNotFound
}

type fakeReminderLogRepo struct {
	entries map[string]bool
	nextID  int64
}

func newFakeReminderLogRepo() *fakeReminderLogRepo {
	return &fakeReminderLogRepo{entries: make(map[string]bool)}
}

func logKey(cycleID int64, day time.Time, bucket reminder.Bucket) string {
	return fmt.Sprintf("%d|%s|%s", cycleID, day.Format("2006-01-02"), bucket)
}

func (r *fakeReminderLogRepo) Create(_ context.Context, e *reminder.LogEntry) error {
	key := logKey(e.CycleID, e.Day, e.Bucket)
	if r.entries[key] {
		return idb.ErrDuplicateReminderLog
	}
	r.nextID++
	e.ID = r.nextID
	r.entries[key] = true
	return nil
}

func (r *fakeReminderLogRepo) Exists(_ context.Context, cycleID int64, day time.Time, bucket reminder.Bucket) (bool, error) {
	return r.entries[logKey(cycleID, day, bucket)], nil
}

// ---- delivery doubles ------------------------------------------------------

type sentMessage struct {
	chatID int64
	text   string
}

type recordingClient struct {
	sent []sentMessage
}

func (c *recordingClient) SendMessage(recipientChatID int64, text string, _ *telebot.SendOptions) error {
	c.sent = append(c.sent, sentMessage{chatID: recipientChatID, text: text})
	return nil
}

type plainMascot struct{}

func (plainMascot) ReminderMessage(b reminder.Bucket, firstName string) string {
	return fmt.Sprintf("%s:%s", b, firstName)
}

func (plainMascot) FriendNudgeMessage(fromFirstName string) string {
	return fmt.Sprintf("nudge:%s", fromFirstName)
}

// ---- helpers ---------------------------------------------------------------

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l.WithField("component", "test")
}

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func mustDay(t *testing.T, raw string) time.Time {
	t.Helper()

	parsed, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		t.Fatalf("parse day %q: %v", raw, err)
	}
	return parsed
}

func mustMoment(t *testing.T, raw string) time.Time {
	t.Helper()

	parsed, err := time.ParseInLocation("2006-01-02 15:04", raw, time.UTC)
	if err != nil {
		t.Fatalf("parse moment %q: %v", raw, err)
	}
	return parsed
}

func registerUser(t *testing.T, repo *fakeUserRepo, telegramID int64, name string) *user.User {
	t.Helper()

	u := &user.User{TelegramID: telegramID, FirstName: name}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("register user: %v", err)
	}
	return u
}
