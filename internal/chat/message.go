// Package chat connects to a Twitch channel and delivers its messages.
package chat

import (
	"strings"
	"time"
)

// Message is one chat line received from the channel.
type Message struct {
	ID      string
	Channel string
	Author  string
	Text    string
	Time    time.Time

	// SelfEcho is set when the bot account itself sent the message.
	SelfEcho bool
}

// Handler receives every chat message, including self echoes.
type Handler func(Message)

// Replier sends a line to the joined channel.
type Replier interface {
	Say(text string) error
}

// isSelf reports whether author is the bot account.
func isSelf(author, username string) bool {
	return username != "" && strings.EqualFold(strings.TrimSpace(author), strings.TrimSpace(username))
}
