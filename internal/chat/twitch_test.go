package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	twitch "github.com/gempir/go-twitch-irc/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeIRC scripts Connect results and records outbound lines.
type fakeIRC struct {
	mu        sync.Mutex
	onConnect func()
	onMessage func(twitch.PrivateMessage)
	joined    []string
	said      []string
	connects  int
	results   []error
	release   chan struct{}
}

func newFakeIRC(results ...error) *fakeIRC {
	return &fakeIRC{results: results, release: make(chan struct{})}
}

func (f *fakeIRC) OnConnect(fn func())                             { f.onConnect = fn }
func (f *fakeIRC) OnPrivateMessage(fn func(twitch.PrivateMessage)) { f.onMessage = fn }
func (f *fakeIRC) Join(channels ...string)                         { f.joined = append(f.joined, channels...) }

func (f *fakeIRC) Say(channel, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.said = append(f.said, channel+": "+text)
}

// Connect returns the next scripted result, or blocks until Disconnect once
// the script is exhausted.
func (f *fakeIRC) Connect() error {
	f.mu.Lock()
	f.connects++
	var next error
	scripted := len(f.results) > 0
	if scripted {
		next = f.results[0]
		f.results = f.results[1:]
	}
	f.mu.Unlock()

	if f.onConnect != nil {
		f.onConnect()
	}
	if scripted {
		return next
	}
	<-f.release
	return twitch.ErrClientDisconnected
}

func (f *fakeIRC) Disconnect() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	select {
	case <-f.release:
	default:
		close(f.release)
	}
	return nil
}

func (f *fakeIRC) connectCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connects
}

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() Config {
	return Config{Username: "PlaysBot", Token: "abc", Channel: "#Streamer", MinBackoff: time.Millisecond, MaxBackoff: 4 * time.Millisecond}
}

func TestNewTwitchClient_NoChannel(t *testing.T) {
	_, err := NewTwitchClient(Config{Channel: " # "}, nil, quiet())
	assert.ErrorIs(t, err, ErrNoChannel)
}

func TestNewTwitchClient_NormalizesChannel(t *testing.T) {
	c, err := NewTwitchClient(Config{Username: "bot", Token: "x", Channel: "#SomeStreamer"}, nil, quiet())
	require.NoError(t, err)
	assert.Equal(t, "somestreamer", c.Channel())
}

func TestTwitchClient_DeliversMessages(t *testing.T) {
	irc := newFakeIRC()
	var got []Message
	newTwitchClient(testConfig(), "streamer", irc, func(m Message) { got = append(got, m) }, quiet())
	assert.Equal(t, []string{"streamer"}, irc.joined)

	irc.onMessage(twitch.PrivateMessage{
		User:    twitch.User{Name: "viewer1"},
		Channel: "streamer",
		Message: "up",
		ID:      "m1",
	})
	irc.onMessage(twitch.PrivateMessage{
		User:    twitch.User{Name: "playsbot"},
		Channel: "streamer",
		Message: "Commands: up",
	})

	require.Len(t, got, 2)
	assert.Equal(t, "up", got[0].Text)
	assert.Equal(t, "viewer1", got[0].Author)
	assert.False(t, got[0].SelfEcho)
	assert.False(t, got[0].Time.IsZero())
	assert.True(t, got[1].SelfEcho, "bot's own line is an echo")
}

func TestTwitchClient_SayRequiresConnection(t *testing.T) {
	irc := newFakeIRC()
	c := newTwitchClient(testConfig(), "streamer", irc, nil, quiet())

	assert.ErrorIs(t, c.Say("hi"), ErrNotConnected)

	irc.onConnect()
	require.NoError(t, c.Say("hi"))
	assert.Equal(t, []string{"streamer: hi"}, irc.said)
}

func TestTwitchClient_SayAnonymous(t *testing.T) {
	irc := newFakeIRC()
	cfg := testConfig()
	cfg.Username = ""
	c := newTwitchClient(cfg, "streamer", irc, nil, quiet())
	irc.onConnect()

	assert.ErrorIs(t, c.Say("hi"), ErrNotConnected)
}

func TestTwitchClient_RunReconnects(t *testing.T) {
	irc := newFakeIRC(errors.New("reset by peer"), errors.New("eof"))
	c := newTwitchClient(testConfig(), "streamer", irc, nil, quiet())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	require.Eventually(t, func() bool { return irc.connectCount() == 3 }, time.Second, time.Millisecond)
	assert.True(t, c.Connected())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.False(t, c.Connected())
}

func TestTwitchClient_RunAuthFailure(t *testing.T) {
	irc := newFakeIRC(twitch.ErrLoginAuthenticationFailed)
	c := newTwitchClient(testConfig(), "streamer", irc, nil, quiet())

	err := c.Run(context.Background())
	assert.ErrorIs(t, err, ErrAuthFailed)
	assert.Equal(t, 1, irc.connectCount())
}

func TestTwitchClient_RunTwice(t *testing.T) {
	irc := newFakeIRC()
	c := newTwitchClient(testConfig(), "streamer", irc, nil, quiet())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = c.Run(ctx) }()
	require.Eventually(t, func() bool { return irc.connectCount() == 1 }, time.Second, time.Millisecond)

	assert.ErrorIs(t, c.Run(ctx), ErrAlreadyActive)
}

func TestIsSelf(t *testing.T) {
	assert.True(t, isSelf("PlaysBot", "playsbot"))
	assert.False(t, isSelf("viewer", "playsbot"))
	assert.False(t, isSelf("viewer", ""))
}
