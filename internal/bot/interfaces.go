package bot

import "gopkg.in/telebot.v4"

// API is the subset of *telebot.Bot used by the chat surface and the Telegram notifier.
type API interface {
	// Handle binds a command such as "/track" to a handler.
	Handle(endpoint interface{}, h telebot.HandlerFunc, m ...telebot.MiddlewareFunc)
	// Start polls for updates until Stop is called.
	Start()
	Stop()
	// Send delivers a message to a chat.
	Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error)
}
