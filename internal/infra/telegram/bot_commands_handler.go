// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"pill_control_bot/internal/domain/user"
	idb "pill_control_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func RegisterBotCommands(
	ctx context.Context,
	b *telebot.Bot,
	userRepo user.Repository,
	baseLogger *logrus.Entry, // For contextual logging
) {
	startHelpLogger := baseLogger.WithField("handler_group", "start_help")

	b.Handle("/start", func(c telebot.Context) error {
		sender := c.Sender()
		logCtx := startHelpLogger.WithField("command", "/start").WithField("sender_id", sender.ID)
		logCtx.Info("Processing /start command")

		existing, err := userRepo.GetByTelegramID(ctx, sender.ID)
		if err == nil {
			logCtx.WithField("user_id", existing.ID).Info("User already registered")
			return c.Send(fmt.Sprintf("¡Hola de nuevo, %s! Tu cuenta ya está activa. Usa /help para ver los comandos.", existing.FirstName))
		}
		if err != idb.ErrUserNotFound {
			logCtx.WithError(err).Error("Error checking user registration for /start command")
			return c.Send("Ocurrió un error al comprobar tu cuenta. Inténtalo de nuevo más tarde.")
		}

		newUser := &user.User{
			TelegramID: sender.ID,
			FirstName:  sender.FirstName,
		}
		if sender.LastName != "" {
			newUser.LastName = sql.NullString{String: sender.LastName, Valid: true}
		}
		if err := userRepo.Create(ctx, newUser); err != nil {
			logCtx.WithError(err).Error("Failed to register user")
			return c.Send("Ocurrió un error al crear tu cuenta. Inténtalo de nuevo más tarde.")
		}

		logCtx.WithField("user_id", newUser.ID).Info("User registered successfully")
		return c.Send(fmt.Sprintf(
			"¡Hola, %s! 🐣 Soy tu recordatorio de pastillas.\n\nRegistra tu ciclo con /newcycle y te avisaré cada día a la hora de tu toma. Usa /help para ver todos los comandos.",
			newUser.FirstName))
	})

	b.Handle("/help", func(c telebot.Context) error {
		logCtx := startHelpLogger.WithField("command", "/help").WithField("sender_id", c.Sender().ID)
		logCtx.Info("Processing /help command")

		var helpText strings.Builder
		helpText.WriteString("Comandos disponibles:\n\n")
		helpText.WriteString("`/newcycle <HH:MM> [totalDías díasActivos [AAAA-MM-DD]]`\n - Registrar un ciclo nuevo (por defecto 28/21 empezando hoy).\n\n")
		helpText.WriteString("`/take`\n - Marcar la pastilla de hoy como tomada.\n\n")
		helpText.WriteString("`/skip`\n - Marcar la pastilla de hoy como omitida.\n\n")
		helpText.WriteString("`/calendar`\n - Ver el calendario del ciclo actual.\n\n")
		helpText.WriteString("`/status`\n - Ver tu progreso y el mensaje de la mascota.\n\n")
		helpText.WriteString("`/stopcycle`\n - Terminar el ciclo actual.\n\n")
		helpText.WriteString("`/addfriend <TelegramID>`\n - Añadir una amiga registrada.\n\n")
		helpText.WriteString("`/remindfriend`\n - Avisar a tus amigas si les toca la pastilla pronto.\n\n")
		helpText.WriteString("`/unfriend <TelegramID>`\n - Quitar a una amiga de tu lista.\n\n")
		helpText.WriteString("`/help`\n - Mostrar este mensaje.")
		return c.Send(helpText.String(), &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	})
}

// resolveUser maps the message sender to a registered user, answering with a
// registration hint when unknown. The bool reports whether handling should
// continue.
func resolveUser(ctx context.Context, userRepo user.Repository, c telebot.Context, logCtx *logrus.Entry) (*user.User, bool) {
	u, err := userRepo.GetByTelegramID(ctx, c.Sender().ID)
	if err == nil {
		return u, true
	}
	if err == idb.ErrUserNotFound {
		_ = c.Send("Primero necesitas una cuenta: envía /start para registrarte.")
		return nil, false
	}
	logCtx.WithError(err).Error("Failed to resolve sender")
	_ = c.Send("Ocurrió un error al comprobar tu cuenta. Inténtalo de nuevo más tarde.")
	return nil, false
}
