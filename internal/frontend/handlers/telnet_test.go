package handlers_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/luckydraw/internal/config"
	"github.com/cory-johannsen/luckydraw/internal/frontend/telnet"
	"github.com/cory-johannsen/luckydraw/internal/testutil"
)

func startTelnet(t *testing.T, obs *fakeObserver) *telnet.Acceptor {
	t.Helper()
	h := newHandler(t, 20*time.Millisecond, obs)
	acc := telnet.NewAcceptor(config.TelnetConfig{
		Host:         "127.0.0.1",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}, h, zaptest.NewLogger(t))

	errCh := make(chan error, 1)
	go func() { errCh <- acc.Start() }()
	require.Eventually(t, func() bool { return acc.Addr() != "" }, 2*time.Second, 10*time.Millisecond)
	t.Cleanup(func() {
		acc.Stop()
		assert.NoError(t, <-errCh)
	})
	return acc
}

func TestTelnet_DrawOverTheWire(t *testing.T) {
	obs := &fakeObserver{}
	acc := startTelnet(t, obs)

	client := testutil.NewTelnetClient(t, acc.Addr())
	client.ReadUntil("to spin", 2*time.Second)
	client.Send("spin")
	client.ReadUntil("You won: GRAND PRIZE", 3*time.Second)
	client.ReadUntil("> ", 2*time.Second)
	client.Send("h")
	client.ReadUntil("1. GRAND PRIZE", 2*time.Second)
	client.Send("quit")
	client.ReadUntil("Goodbye.", 2*time.Second)

	require.Eventually(t, func() bool {
		_, _, _, _, closed := obs.counts()
		return closed == 1
	}, 2*time.Second, 10*time.Millisecond)
	started, _, settled, opened, _ := obs.counts()
	assert.Equal(t, 1, started)
	assert.Equal(t, 1, settled)
	assert.Equal(t, 1, opened)
	assert.Contains(t, client.Transcript(), "\a", "bell haptics reach the terminal")
}

func TestTelnet_InterruptEndsSession(t *testing.T) {
	obs := &fakeObserver{}
	acc := startTelnet(t, obs)

	client := testutil.NewTelnetClient(t, acc.Addr())
	client.ReadUntil("to spin", 2*time.Second)
	client.SendRaw([]byte{telnet.IAC, telnet.IP})

	require.Eventually(t, func() bool {
		_, _, _, _, closed := obs.counts()
		return closed == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestTelnet_IndependentSessions(t *testing.T) {
	obs := &fakeObserver{}
	acc := startTelnet(t, obs)

	a := testutil.NewTelnetClient(t, acc.Addr())
	b := testutil.NewTelnetClient(t, acc.Addr())
	a.ReadUntil("to spin", 2*time.Second)
	b.ReadUntil("to spin", 2*time.Second)

	a.Send("draw")
	a.ReadUntil("You won:", 3*time.Second)

	b.Send("history")
	b.ReadUntil("No winners yet.", 2*time.Second)
}

func TestTelnet_StopSaysGoodbye(t *testing.T) {
	acc := startTelnet(t, &fakeObserver{})

	client := testutil.NewTelnetClient(t, acc.Addr())
	client.ReadUntil("to spin", 2*time.Second)
	require.Eventually(t, func() bool { return acc.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	acc.Stop()
	client.ReadUntil("Shutting down. Goodbye!", 2*time.Second)
	assert.Equal(t, 0, acc.Clients())
}
