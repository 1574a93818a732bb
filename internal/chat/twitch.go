package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	twitch "github.com/gempir/go-twitch-irc/v4"
)

// Errors returned by the Twitch client.
var (
	ErrNoChannel     = errors.New("no channel to join")
	ErrNotConnected  = errors.New("not connected to chat")
	ErrAuthFailed    = errors.New("twitch login authentication failed")
	ErrAlreadyActive = errors.New("chat client is already running")
)

// ircClient is the subset of *twitch.Client the bot uses.
type ircClient interface {
	OnConnect(func())
	OnPrivateMessage(func(twitch.PrivateMessage))
	Join(channels ...string)
	Connect() error
	Disconnect() error
	Say(channel, text string)
}

// Config configures a TwitchClient.
type Config struct {
	// Username is the bot account. Empty connects anonymously (read only).
	Username string
	// Token is the OAuth token, with or without the "oauth:" prefix.
	Token string
	// Channel is the channel to join, without the leading '#'.
	Channel string

	// MinBackoff and MaxBackoff bound the reconnect delay.
	MinBackoff time.Duration
	MaxBackoff time.Duration
}

// TwitchClient is a chat session on one Twitch channel.
type TwitchClient struct {
	cfg     Config
	channel string
	client  ircClient
	handler Handler
	logger  *slog.Logger

	running   atomic.Bool
	connected atomic.Bool
}

// NewTwitchClient creates a client that calls handler for every message.
func NewTwitchClient(cfg Config, handler Handler, logger *slog.Logger) (*TwitchClient, error) {
	channel := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(cfg.Channel), "#"))
	if channel == "" {
		return nil, ErrNoChannel
	}

	var client *twitch.Client
	if cfg.Username == "" {
		client = twitch.NewAnonymousClient()
	} else {
		token := strings.TrimSpace(cfg.Token)
		if token != "" && !strings.HasPrefix(token, "oauth:") {
			token = "oauth:" + token
		}
		client = twitch.NewClient(cfg.Username, token)
	}

	return newTwitchClient(cfg, channel, client, handler, logger), nil
}

func newTwitchClient(cfg Config, channel string, client ircClient, handler Handler, logger *slog.Logger) *TwitchClient {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MinBackoff <= 0 {
		cfg.MinBackoff = time.Second
	}
	if cfg.MaxBackoff < cfg.MinBackoff {
		cfg.MaxBackoff = 30 * time.Second
	}

	c := &TwitchClient{
		cfg:     cfg,
		channel: channel,
		client:  client,
		handler: handler,
		logger:  logger.With("channel", channel),
	}

	client.OnConnect(func() {
		c.connected.Store(true)
		c.logger.Info("joined chat", "username", cfg.Username)
	})
	client.OnPrivateMessage(c.onPrivateMessage)
	client.Join(channel)
	return c
}

// Channel returns the joined channel name.
func (c *TwitchClient) Channel() string {
	return c.channel
}

// Connected reports whether the IRC session is up.
func (c *TwitchClient) Connected() bool {
	return c.connected.Load()
}

func (c *TwitchClient) onPrivateMessage(m twitch.PrivateMessage) {
	author := m.User.Name
	if author == "" {
		author = m.User.DisplayName
	}
	msg := Message{
		ID:       m.ID,
		Channel:  m.Channel,
		Author:   author,
		Text:     m.Message,
		Time:     m.Time,
		SelfEcho: isSelf(author, c.cfg.Username),
	}
	if msg.Time.IsZero() {
		msg.Time = time.Now()
	}
	if c.handler != nil {
		c.handler(msg)
	}
}

// Say sends text to the channel.
func (c *TwitchClient) Say(text string) error {
	if !c.connected.Load() {
		return ErrNotConnected
	}
	if c.cfg.Username == "" {
		return fmt.Errorf("%w: anonymous sessions cannot send", ErrNotConnected)
	}
	c.client.Say(c.channel, text)
	return nil
}

// Run connects and keeps the session alive until ctx is done, reconnecting
// with exponential backoff after connection loss. A rejected login is
// returned immediately.
func (c *TwitchClient) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrAlreadyActive
	}
	defer c.running.Store(false)

	stop := context.AfterFunc(ctx, func() {
		if err := c.client.Disconnect(); err != nil && !errors.Is(err, twitch.ErrConnectionIsNotOpen) {
			c.logger.Debug("disconnect", "error", err)
		}
	})
	defer stop()

	backoff := c.cfg.MinBackoff
	for {
		c.logger.Info("connecting to chat")
		err := c.client.Connect()
		c.connected.Store(false)

		if ctx.Err() != nil {
			c.logger.Info("chat disconnected")
			return nil
		}
		switch {
		case errors.Is(err, twitch.ErrLoginAuthenticationFailed):
			return fmt.Errorf("%w for %q", ErrAuthFailed, c.cfg.Username)
		case errors.Is(err, twitch.ErrClientDisconnected):
			return nil
		}

		c.logger.Warn("chat connection lost", "error", err, "retry_in", backoff)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, c.cfg.MaxBackoff)
	}
}
