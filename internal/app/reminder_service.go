// internal/app/reminder_service.go
package app

import (
	"context"
	"fmt"
	"time"

	"pill_control_bot/internal/domain/cycle"
	"pill_control_bot/internal/domain/dose"
	"pill_control_bot/internal/domain/friend"
	"pill_control_bot/internal/domain/reminder"
	domainTelegram "pill_control_bot/internal/domain/telegram"
	"pill_control_bot/internal/domain/user"
	idb "pill_control_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// Custom application-level errors for friend reminders
var ErrFriendNotRegistered = fmt.Errorf("friend is not registered with the bot")
var ErrCannotFriendSelf = fmt.Errorf("cannot add yourself as a friend")
var ErrFriendAlreadyAdded = fmt.Errorf("friend is already added")
var ErrFriendNotLinked = fmt.Errorf("friend is not in the user's list")

// MascotRenderer maps a reminder bucket to the display message shown to the
// user. The lookup table is owned by the presentation layer so locale and art
// changes never touch the classification logic.
type MascotRenderer interface {
	ReminderMessage(b reminder.Bucket, firstName string) string
	FriendNudgeMessage(fromFirstName string) string
}

// NudgeResult reports the outcome of one friend nudge attempt.
type NudgeResult struct {
	Friend *user.User
	Sent   bool
}

// ReminderService evaluates reminder buckets for every active cycle and
// delivers mascot messages, and powers the "remind a friend" action.
type ReminderService struct {
	userRepo           user.Repository
	cycleRepo          cycle.Repository
	doseRepo           dose.Repository
	friendRepo         friend.Repository
	logRepo            reminder.LogRepository
	telegramClient     domainTelegram.Client
	mascot             MascotRenderer
	logger             *logrus.Entry
	windowMinutes      int
	bleedingWindowDays int
	now                func() time.Time
}

func NewReminderService(
	ur user.Repository,
	cr cycle.Repository,
	dr dose.Repository,
	fr friend.Repository,
	lr reminder.LogRepository,
	tc domainTelegram.Client,
	mascot MascotRenderer,
	logger *logrus.Entry,
	windowMinutes int,
	bleedingWindowDays int,
	now func() time.Time,
) *ReminderService {
	return &ReminderService{
		userRepo:           ur,
		cycleRepo:          cr,
		doseRepo:           dr,
		friendRepo:         fr,
		logRepo:            lr,
		telegramClient:     tc,
		mascot:             mascot,
		logger:             logger,
		windowMinutes:      windowMinutes,
		bleedingWindowDays: bleedingWindowDays,
		now:                now,
	}
}

// pushBuckets are the classifications that warrant an unsolicited message.
// Ambience buckets (Morning, Midday, ...) are only shown on demand in /status.
var pushBuckets = map[reminder.Bucket]bool{
	reminder.BucketDoseDueNow: true,
	reminder.BucketDoseSoon:   true,
	reminder.BucketMissedDose: true,
}

// ProcessDoseReminders runs on every scheduler tick. For each active cycle
// whose current day is an active-dose day it classifies the moment and
// delivers the mascot message, at most once per cycle, day and bucket.
func (s *ReminderService) ProcessDoseReminders(ctx context.Context) error {
	nowT := s.now()
	today := dateOnly(nowT)
	nowTod := reminder.TimeOfDayFromClock(nowT)

	cycles, err := s.cycleRepo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active cycles: %w", err)
	}

	for _, c := range cycles {
		logCtx := s.logger.WithFields(logrus.Fields{"cycle_id": c.ID, "user_id": c.UserID})

		phase, ok := cycle.PhaseOf(c, today, s.bleedingWindowDays)
		if !ok || phase.Kind != cycle.PhaseActiveDose {
			continue // rest day or outside the template, nothing to remind
		}

		takeHour, err := reminder.ParseTimeOfDay(c.TakeHour)
		if err != nil {
			// Malformed take hour: the cycle is not eligible for reminders.
			logCtx.WithError(err).Warnf("Cycle has unparseable take hour %q, skipping", c.TakeHour)
			continue
		}

		event, err := s.doseRepo.GetByCycleAndDay(ctx, c.ID, today)
		if err != nil && err != idb.ErrDoseEventNotFound {
			logCtx.WithError(err).Error("Failed to check today's dose event")
			continue
		}
		if event != nil {
			continue // today is already resolved, taken or deliberately skipped
		}

		bucket := reminder.Classify(nowTod, takeHour, false)
		if !pushBuckets[bucket] {
			continue
		}

		delivered, err := s.logRepo.Exists(ctx, c.ID, today, bucket)
		if err != nil {
			logCtx.WithError(err).Error("Failed to check reminder log")
			continue
		}
		if delivered {
			continue
		}

		if err := s.deliverReminder(ctx, c, bucket, logCtx); err != nil {
			logCtx.WithError(err).Error("Failed to deliver reminder")
			continue
		}

		entry := &reminder.LogEntry{CycleID: c.ID, Day: today, Bucket: bucket, SentAt: nowT}
		if err := s.logRepo.Create(ctx, entry); err != nil && err != idb.ErrDuplicateReminderLog {
			logCtx.WithError(err).Error("Failed to record reminder delivery")
		}
	}
	return nil
}

func (s *ReminderService) deliverReminder(ctx context.Context, c *cycle.Cycle, bucket reminder.Bucket, logCtx *logrus.Entry) error {
	u, err := s.userRepo.GetByID(ctx, c.UserID)
	if err != nil {
		return fmt.Errorf("failed to get cycle owner: %w", err)
	}

	text := s.mascot.ReminderMessage(bucket, u.FirstName)

	replyMarkup := &telebot.ReplyMarkup{}
	btnTaken := replyMarkup.Data("💊 Tomada", fmt.Sprintf("dose_taken_%d", c.ID))
	btnSkip := replyMarkup.Data("✖️ Omitida", fmt.Sprintf("dose_skip_%d", c.ID))
	replyMarkup.Inline(replyMarkup.Row(btnTaken, btnSkip))

	if err := s.telegramClient.SendMessage(u.TelegramID, text, &telebot.SendOptions{ReplyMarkup: replyMarkup}); err != nil {
		return fmt.Errorf("failed to send reminder message: %w", err)
	}
	logCtx.WithField("bucket", bucket).Info("Reminder delivered")
	return nil
}

// StatusBucket returns the mascot bucket for the user's current moment, used
// by the on-demand /status view. A missing or unparseable take hour degrades
// to the Default bucket instead of failing.
func (s *ReminderService) StatusBucket(ctx context.Context, userID int64) (reminder.Bucket, error) {
	c, err := s.cycleRepo.GetActiveByUserID(ctx, userID)
	if err != nil {
		if err == idb.ErrCycleNotFound {
			return reminder.BucketDefault, ErrNoActiveCycle
		}
		return reminder.BucketDefault, fmt.Errorf("failed to get active cycle: %w", err)
	}

	takeHour, err := reminder.ParseTimeOfDay(c.TakeHour)
	if err != nil {
		return reminder.BucketDefault, nil
	}

	nowT := s.now()
	today := dateOnly(nowT)

	takenToday := false
	if event, err := s.doseRepo.GetByCycleAndDay(ctx, c.ID, today); err == nil {
		takenToday = event.Status == dose.StatusTaken
	} else if err != idb.ErrDoseEventNotFound {
		return reminder.BucketDefault, fmt.Errorf("failed to check today's dose event: %w", err)
	}

	return reminder.Classify(reminder.TimeOfDayFromClock(nowT), takeHour, takenToday), nil
}

// AddFriend links another registered user so they can be nudged about doses.
func (s *ReminderService) AddFriend(ctx context.Context, userID, friendTelegramID int64) (*user.User, error) {
	friendUser, err := s.userRepo.GetByTelegramID(ctx, friendTelegramID)
	if err != nil {
		if err == idb.ErrUserNotFound {
			return nil, ErrFriendNotRegistered
		}
		return nil, fmt.Errorf("failed to look up friend: %w", err)
	}
	if friendUser.ID == userID {
		return nil, ErrCannotFriendSelf
	}

	link := &friend.Link{UserID: userID, FriendUserID: friendUser.ID}
	if err := s.friendRepo.Create(ctx, link); err != nil {
		if err == idb.ErrDuplicateFriendLink {
			return nil, ErrFriendAlreadyAdded
		}
		return nil, fmt.Errorf("failed to create friend link: %w", err)
	}
	return friendUser, nil
}

// RemoveFriend unlinks a previously added friend.
func (s *ReminderService) RemoveFriend(ctx context.Context, userID, friendTelegramID int64) (*user.User, error) {
	friendUser, err := s.userRepo.GetByTelegramID(ctx, friendTelegramID)
	if err != nil {
		if err == idb.ErrUserNotFound {
			return nil, ErrFriendNotRegistered
		}
		return nil, fmt.Errorf("failed to look up friend: %w", err)
	}

	if err := s.friendRepo.Delete(ctx, userID, friendUser.ID); err != nil {
		if err == idb.ErrFriendLinkNotFound {
			return nil, ErrFriendNotLinked
		}
		return nil, fmt.Errorf("failed to delete friend link: %w", err)
	}
	return friendUser, nil
}

// RemindFriends nudges every linked friend whose own scheduled dose is within
// the reminder window right now. Friends without an active cycle or with an
// unparseable take hour are simply not eligible.
func (s *ReminderService) RemindFriends(ctx context.Context, userID int64) ([]NudgeResult, error) {
	sender, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sender: %w", err)
	}

	links, err := s.friendRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}

	nowTod := reminder.TimeOfDayFromClock(s.now())
	results := make([]NudgeResult, 0, len(links))

	for _, link := range links {
		friendUser, err := s.userRepo.GetByID(ctx, link.FriendUserID)
		if err != nil {
			s.logger.WithError(err).WithField("friend_user_id", link.FriendUserID).Error("Failed to load friend")
			continue
		}
		res := NudgeResult{Friend: friendUser}

		if s.friendEligible(ctx, friendUser.ID, nowTod) {
			text := s.mascot.FriendNudgeMessage(sender.FirstName)
			if err := s.telegramClient.SendMessage(friendUser.TelegramID, text, nil); err != nil {
				s.logger.WithError(err).WithField("friend_user_id", friendUser.ID).Error("Failed to send friend nudge")
			} else {
				res.Sent = true
			}
		}
		results = append(results, res)
	}
	return results, nil
}

func (s *ReminderService) friendEligible(ctx context.Context, friendUserID int64, now reminder.TimeOfDay) bool {
	c, err := s.cycleRepo.GetActiveByUserID(ctx, friendUserID)
	if err != nil {
		return false
	}
	takeHour, err := reminder.ParseTimeOfDay(c.TakeHour)
	if err != nil {
		return false // malformed take hour never crashes the caller
	}
	return reminder.WithinReminderWindow(now, takeHour, s.windowMinutes)
}
