package telegram

import "gopkg.in/telebot.v3"

// Client defines an interface for sending messages via a Telegram bot.
// Reminder delivery and friend nudges depend on this instead of the concrete
// bot library, so services can be tested with a recording fake.
type Client interface {
	SendMessage(recipientChatID int64, text string, options *telebot.SendOptions) error
}
