// internal/infra/telegram/dose_handlers.go
package telegram

import (
	"context"
	"fmt"
	"strings"

	"pill_control_bot/internal/app"
	"pill_control_bot/internal/domain/dose"
	"pill_control_bot/internal/domain/user"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// RegisterDoseHandlers wires the /take and /skip commands plus the inline
// buttons attached to reminder messages (callback data dose_taken_<cycleID>
// and dose_skip_<cycleID>).
func RegisterDoseHandlers(
	ctx context.Context,
	b *telebot.Bot,
	userRepo user.Repository,
	doseService *app.DoseService,
	baseLogger *logrus.Entry,
) {
	record := func(c telebot.Context, status dose.Status) (string, error) {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "record_dose",
			"sender_id": c.Sender().ID,
			"status":    status,
		})

		u, ok := resolveUser(ctx, userRepo, c, handlerLogger)
		if !ok {
			return "", nil
		}

		event, err := doseService.RecordDose(ctx, u.ID, status, "")
		if err != nil {
			switch err {
			case app.ErrNoActiveCycle:
				return "No tienes ningún ciclo activo. Regístralo con /newcycle.", nil
			case app.ErrDoseAlreadyRecorded:
				return "La pastilla de hoy ya está registrada. 😉", nil
			case app.ErrNoDoseScheduledToday:
				return "Hoy es día de descanso, no toca pastilla. 🌼", nil
			default:
				handlerLogger.WithError(err).Error("Failed to record dose")
				return "Ocurrió un error al registrar la pastilla.", nil
			}
		}

		handlerLogger.WithField("event_id", event.ID).Info("Dose recorded")
		if status == dose.StatusTaken {
			return fmt.Sprintf("✅ ¡Pastilla registrada a las %s! Sigue así. 💪", event.HourTaken.String), nil
		}
		return "✖️ Pastilla de hoy marcada como omitida.", nil
	}

	b.Handle("/take", func(c telebot.Context) error {
		msg, _ := record(c, dose.StatusTaken)
		if msg == "" {
			return nil
		}
		return c.Send(msg)
	})

	b.Handle("/skip", func(c telebot.Context) error {
		msg, _ := record(c, dose.StatusSkipped)
		if msg == "" {
			return nil
		}
		return c.Send(msg)
	})

	b.Handle(telebot.OnCallback, func(c telebot.Context) error {
		data := strings.TrimSpace(c.Callback().Data)

		var status dose.Status
		switch {
		case strings.HasPrefix(data, "dose_taken_"):
			status = dose.StatusTaken
		case strings.HasPrefix(data, "dose_skip_"):
			status = dose.StatusSkipped
		default:
			// Not ours; acknowledge so the button stops spinning.
			return c.Respond(&telebot.CallbackResponse{Text: "Acción desconocida."})
		}

		msg, _ := record(c, status)
		if msg == "" {
			return c.Respond()
		}
		if err := c.Respond(&telebot.CallbackResponse{Text: msg}); err != nil {
			return err
		}
		return c.Send(msg)
	})
}
