// internal/infra/telegram/cycle_handlers.go
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"pill_control_bot/internal/app"
	"pill_control_bot/internal/domain/cycle"
	"pill_control_bot/internal/domain/reminder"
	"pill_control_bot/internal/domain/user"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const (
	defaultTotalDays      = 28
	defaultActiveDoseDays = 21
)

// RegisterCycleHandlers wires the cycle management commands.
func RegisterCycleHandlers(
	ctx context.Context,
	b *telebot.Bot,
	userRepo user.Repository,
	cycleService *app.CycleService,
	doseService *app.DoseService,
	reminderService *app.ReminderService,
	mascot *Mascot,
	baseLogger *logrus.Entry,
) {
	b.Handle("/newcycle", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/newcycle",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		u, ok := resolveUser(ctx, userRepo, c, handlerLogger)
		if !ok {
			return nil
		}

		args := c.Args()
		// Expected format: /newcycle <HH:MM> [totalDays activeDays [YYYY-MM-DD]]
		if len(args) < 1 || len(args) == 2 || len(args) > 4 {
			return c.Send("Formato: /newcycle <HH:MM> [totalDías díasActivos [AAAA-MM-DD]]\nEjemplo: /newcycle 22:00 28 21")
		}

		takeHour := args[0]
		totalDays := defaultTotalDays
		activeDoseDays := defaultActiveDoseDays
		startDate := time.Now()

		if len(args) >= 3 {
			var err error
			totalDays, err = strconv.Atoi(args[1])
			if err != nil {
				return c.Send("Error: el número total de días debe ser un número.")
			}
			activeDoseDays, err = strconv.Atoi(args[2])
			if err != nil {
				return c.Send("Error: el número de días activos debe ser un número.")
			}
		}
		if len(args) == 4 {
			parsed, err := time.ParseInLocation("2006-01-02", args[3], time.Local)
			if err != nil {
				return c.Send("Error: la fecha de inicio debe tener el formato AAAA-MM-DD.")
			}
			startDate = parsed
		}

		handlerLogger = handlerLogger.WithFields(logrus.Fields{
			"take_hour":        takeHour,
			"total_days":       totalDays,
			"active_dose_days": activeDoseDays,
		})

		newCycle, err := cycleService.StartCycle(ctx, u.ID, startDate, totalDays, activeDoseDays, takeHour)
		if err != nil {
			logWithError := handlerLogger.WithError(err)
			switch err {
			case reminder.ErrParseTimeOfDay:
				logWithError.Warn("Invalid take hour")
				return c.Send("Error: la hora debe tener el formato HH:MM, por ejemplo 22:00.")
			case cycle.ErrInvalidConfig:
				logWithError.Warn("Invalid cycle configuration")
				return c.Send("Error: los días activos deben ser mayores que 0 y no superar el total de días del ciclo.")
			default:
				logWithError.Error("Failed to start cycle")
				return c.Send(fmt.Sprintf("Ocurrió un error al registrar el ciclo: %s", err.Error()))
			}
		}

		handlerLogger.WithField("cycle_id", newCycle.ID).Info("Cycle started successfully")
		return c.Send(fmt.Sprintf(
			"✅ Ciclo registrado: %d días (%d con pastilla), toma a las %s.\nEmpieza el %s y termina el %s. ¡Te avisaré cada día!",
			newCycle.TotalDays, newCycle.ActiveDoseDays, newCycle.TakeHour,
			newCycle.StartDate.Format("02/01/2006"), newCycle.EndDate().Format("02/01/2006")))
	})

	b.Handle("/stopcycle", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/stopcycle",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		u, ok := resolveUser(ctx, userRepo, c, handlerLogger)
		if !ok {
			return nil
		}

		if err := cycleService.StopCycle(ctx, u.ID); err != nil {
			if err == app.ErrNoActiveCycle {
				return c.Send("No tienes ningún ciclo activo.")
			}
			handlerLogger.WithError(err).Error("Failed to stop cycle")
			return c.Send("Ocurrió un error al terminar el ciclo.")
		}

		handlerLogger.Info("Cycle stopped")
		return c.Send("🛑 Ciclo terminado. Puedes registrar uno nuevo con /newcycle.")
	})

	b.Handle("/calendar", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/calendar",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		u, ok := resolveUser(ctx, userRepo, c, handlerLogger)
		if !ok {
			return nil
		}

		activeCycle, schedule, err := cycleService.Calendar(ctx, u.ID)
		if err != nil {
			if err == app.ErrNoActiveCycle {
				return c.Send("No tienes ningún ciclo activo. Regístralo con /newcycle.")
			}
			handlerLogger.WithError(err).Error("Failed to build calendar")
			return c.Send("Ocurrió un error al generar el calendario.")
		}

		return c.Send(renderCalendar(activeCycle, schedule), &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	})

	b.Handle("/status", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/status",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		u, ok := resolveUser(ctx, userRepo, c, handlerLogger)
		if !ok {
			return nil
		}

		_, summary, err := doseService.Summary(ctx, u.ID)
		if err != nil {
			if err == app.ErrNoActiveCycle {
				return c.Send("No tienes ningún ciclo activo. Regístralo con /newcycle.")
			}
			handlerLogger.WithError(err).Error("Failed to compute summary")
			return c.Send("Ocurrió un error al calcular tu progreso.")
		}

		bucket, err := reminderService.StatusBucket(ctx, u.ID)
		if err != nil && err != app.ErrNoActiveCycle {
			handlerLogger.WithError(err).Error("Failed to classify status bucket")
			bucket = reminder.BucketDefault
		}

		var response strings.Builder
		response.WriteString(mascot.ReminderMessage(bucket, u.FirstName))
		response.WriteString(fmt.Sprintf("\n\n💊 Tomadas: %d de %d (%.0f%%)", summary.Taken, summary.Total, summary.Ratio*100))
		if summary.TakenToday {
			response.WriteString("\n✅ La pastilla de hoy ya está registrada.")
		}
		if summary.Inconsistent {
			response.WriteString("\n⚠️ Hay registros de más en este ciclo; el progreso se muestra ajustado.")
		}
		return c.Send(response.String())
	})
}

// renderCalendar draws the cycle as one line per week. Legend: 💊 active
// dose, 🔴 rest day inside the bleeding window, ⚪ plain rest day.
func renderCalendar(c *cycle.Cycle, schedule []cycle.ScheduleDay) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("*Ciclo del %s al %s*\n\n",
		c.StartDate.Format("02/01"), c.EndDate().Format("02/01")))

	for i, day := range schedule {
		symbol := "⚪"
		switch {
		case day.Phase.Kind == cycle.PhaseActiveDose:
			symbol = "💊"
		case day.Phase.Bleeding:
			symbol = "🔴"
		}
		sb.WriteString(fmt.Sprintf("%s%s", day.Date.Format("02"), symbol))
		if (i+1)%7 == 0 {
			sb.WriteString("\n")
		} else {
			sb.WriteString("  ")
		}
	}
	sb.WriteString("\n💊 pastilla · 🔴 sangrado esperado · ⚪ descanso")
	return sb.String()
}
