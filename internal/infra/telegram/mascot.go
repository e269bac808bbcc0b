// internal/infra/telegram/mascot.go
package telegram

import (
	"fmt"

	"pill_control_bot/internal/domain/reminder"
)

// Mascot owns the bucket-to-message lookup table. The classification engine
// only ever returns a bucket tag; everything the user actually reads lives
// here, so copy and art changes never touch the decision logic.
type Mascot struct{}

func NewMascot() *Mascot { return &Mascot{} }

var mascotMessages = map[reminder.Bucket]string{
	reminder.BucketDoseDueNow: "💊 ¡%s, ya casi es hora de tu pastilla! Tómala y márcala aquí.",
	reminder.BucketDoseSoon:   "⏰ %s, tu pastilla toca dentro de poco. ¡No la olvides!",
	reminder.BucketMissedDose: "😟 %s, parece que hoy no has registrado tu pastilla. ¿La olvidaste?",
	reminder.BucketMorning:    "🌅 ¡Buenos días, %s! Recuerda que hoy toca pastilla.",
	reminder.BucketMidday:     "🌞 ¡Hola, %s! ¿Qué tal va tu día?",
	reminder.BucketEvening:    "🌇 Buenas tardes, %s. Tu pastilla te espera más tarde.",
	reminder.BucketNight:      "🌙 Buenas noches, %s. No olvides tu pastilla antes de dormir.",
	reminder.BucketLateNight:  "😴 %s, es muy tarde... descansa, mañana seguimos.",
	reminder.BucketDefault:    "🐣 ¡Hola, %s! Aquí estoy para recordarte tu pastilla.",
}

// ReminderMessage renders the mascot line for a bucket.
func (m *Mascot) ReminderMessage(b reminder.Bucket, firstName string) string {
	tpl, ok := mascotMessages[b]
	if !ok {
		tpl = mascotMessages[reminder.BucketDefault]
	}
	return fmt.Sprintf(tpl, firstName)
}

// FriendNudgeMessage renders the "a friend reminds you" line.
func (m *Mascot) FriendNudgeMessage(fromFirstName string) string {
	return fmt.Sprintf("💌 %s te recuerda: ¡es casi la hora de tu pastilla!", fromFirstName)
}
