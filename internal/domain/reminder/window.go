// internal/domain/reminder/window.go
package reminder

// Bucket classifies "now" relative to the next scheduled dose. The engine
// returns only the tag; the message/asset each bucket maps to is owned by the
// presentation layer.
type Bucket string

const (
	BucketDoseDueNow Bucket = "DOSE_DUE_NOW"
	BucketDoseSoon   Bucket = "DOSE_SOON"
	BucketMissedDose Bucket = "MISSED_DOSE"
	BucketMorning    Bucket = "MORNING"
	BucketMidday     Bucket = "MIDDAY"
	BucketEvening    Bucket = "EVENING"
	BucketNight      Bucket = "NIGHT"
	BucketLateNight  Bucket = "LATE_NIGHT"
	BucketDefault    Bucket = "DEFAULT"
)

// DefaultWindowMinutes is the friend-reminder eligibility window around the
// scheduled dose time.
const DefaultWindowMinutes = 30

// MinutesUntilDose returns the minutes from now until the next scheduled
// dose. When now is at or past takeHour the dose is the one on the next
// notional day, so the difference wraps through midnight. Always in
// [0, 1439]; now == takeHour yields 0.
func MinutesUntilDose(now, takeHour TimeOfDay) int {
	diff := int(takeHour) - int(now)
	if diff < 0 {
		diff += minutesPerDay
	}
	return diff
}

// Classify maps the current moment to a reminder bucket. The rules form a
// cascade evaluated top to bottom, first match wins:
//
//	<= 15 min until dose                      -> DoseDueNow
//	16..60 min until dose                     -> DoseSoon
//	> 120 min, past takeHour, not taken today -> MissedDose
//	otherwise the hour-of-day ambiance bucket.
//
// alreadyTakenToday suppresses MissedDose once the day's dose is recorded.
func Classify(now, takeHour TimeOfDay, alreadyTakenToday bool) Bucket {
	minutes := MinutesUntilDose(now, takeHour)

	switch {
	case minutes <= 15:
		return BucketDoseDueNow
	case minutes <= 60:
		return BucketDoseSoon
	case minutes > 120 && now > takeHour && !alreadyTakenToday:
		return BucketMissedDose
	}

	switch hour := now.Hour(); {
	case hour >= 6 && hour <= 11:
		return BucketMorning
	case hour >= 12 && hour <= 17:
		return BucketMidday
	case hour >= 18 && hour <= 21:
		return BucketEvening
	case hour >= 22:
		return BucketNight
	case hour <= 5:
		return BucketLateNight
	default:
		return BucketDefault
	}
}

// WithinReminderWindow reports whether the next dose is at most windowMinutes
// away. It backs the "remind a friend" eligibility check.
func WithinReminderWindow(now, takeHour TimeOfDay, windowMinutes int) bool {
	return MinutesUntilDose(now, takeHour) <= windowMinutes
}
