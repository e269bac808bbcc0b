// internal/infra/telegram/friend_handlers.go
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"pill_control_bot/internal/app"
	"pill_control_bot/internal/domain/user"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// RegisterFriendHandlers wires friend linking and the friend nudge command.
func RegisterFriendHandlers(
	ctx context.Context,
	b *telebot.Bot,
	userRepo user.Repository,
	reminderService *app.ReminderService,
	baseLogger *logrus.Entry,
) {
	b.Handle("/addfriend", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/addfriend",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		u, ok := resolveUser(ctx, userRepo, c, handlerLogger)
		if !ok {
			return nil
		}

		args := c.Args()
		// Expected format: /addfriend <TelegramID>
		if len(args) != 1 {
			return c.Send("Formato: /addfriend <TelegramID>\nTu amiga puede ver su ID con /start.")
		}

		friendTelegramID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			handlerLogger.WithField("arg", args[0]).Warn("Invalid Telegram ID format")
			return c.Send("Error: el Telegram ID debe ser un número.")
		}
		handlerLogger = handlerLogger.WithField("friend_telegram_id", friendTelegramID)

		friendUser, err := reminderService.AddFriend(ctx, u.ID, friendTelegramID)
		if err != nil {
			logWithError := handlerLogger.WithError(err)
			switch err {
			case app.ErrFriendNotRegistered:
				logWithError.Warn("Friend not registered")
				return c.Send("Esa persona todavía no usa el bot. Pídele que envíe /start primero.")
			case app.ErrCannotFriendSelf:
				logWithError.Warn("User tried to add themselves")
				return c.Send("No puedes añadirte a ti misma. 😄")
			case app.ErrFriendAlreadyAdded:
				logWithError.Warn("Friend already added")
				return c.Send("Esa amiga ya está en tu lista.")
			default:
				logWithError.Error("Failed to add friend")
				return c.Send(fmt.Sprintf("Ocurrió un error al añadir a tu amiga: %s", err.Error()))
			}
		}

		handlerLogger.WithField("friend_user_id", friendUser.ID).Info("Friend added successfully")
		return c.Send(fmt.Sprintf("💕 %s añadida como amiga. Usa /remindfriend para avisarle cuando le toque.", friendUser.FirstName))
	})

	b.Handle("/unfriend", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/unfriend",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		u, ok := resolveUser(ctx, userRepo, c, handlerLogger)
		if !ok {
			return nil
		}

		args := c.Args()
		if len(args) != 1 {
			return c.Send("Formato: /unfriend <TelegramID>")
		}

		friendTelegramID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return c.Send("Error: el Telegram ID debe ser un número.")
		}

		removed, err := reminderService.RemoveFriend(ctx, u.ID, friendTelegramID)
		if err != nil {
			logWithError := handlerLogger.WithError(err).WithField("friend_telegram_id", friendTelegramID)
			switch err {
			case app.ErrFriendNotRegistered, app.ErrFriendNotLinked:
				logWithError.Warn("Friend not in list")
				return c.Send("Esa persona no está en tu lista de amigas.")
			default:
				logWithError.Error("Failed to remove friend")
				return c.Send("Ocurrió un error al quitar a tu amiga.")
			}
		}

		handlerLogger.WithField("friend_user_id", removed.ID).Info("Friend removed")
		return c.Send(fmt.Sprintf("👋 %s ya no está en tu lista de amigas.", removed.FirstName))
	})

	b.Handle("/remindfriend", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/remindfriend",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		u, ok := resolveUser(ctx, userRepo, c, handlerLogger)
		if !ok {
			return nil
		}

		results, err := reminderService.RemindFriends(ctx, u.ID)
		if err != nil {
			handlerLogger.WithError(err).Error("Failed to remind friends")
			return c.Send("Ocurrió un error al avisar a tus amigas.")
		}
		if len(results) == 0 {
			return c.Send("Todavía no tienes amigas añadidas. Usa /addfriend <TelegramID>.")
		}

		var sent, skipped []string
		for _, res := range results {
			if res.Sent {
				sent = append(sent, res.Friend.FirstName)
			} else {
				skipped = append(skipped, res.Friend.FirstName)
			}
		}

		var response strings.Builder
		if len(sent) > 0 {
			response.WriteString(fmt.Sprintf("💌 Aviso enviado a: %s.", strings.Join(sent, ", ")))
		}
		if len(skipped) > 0 {
			if response.Len() > 0 {
				response.WriteString("\n")
			}
			response.WriteString(fmt.Sprintf("⏳ Aún no les toca: %s.", strings.Join(skipped, ", ")))
		}

		handlerLogger.WithFields(logrus.Fields{"sent": len(sent), "skipped": len(skipped)}).Info("Friend nudges processed")
		return c.Send(response.String())
	})
}
