package session

import (
	"time"

	"go.uber.org/zap"
)

// Default timeouts, used whenever an Option or a firmware-suggested
// value doesn't override them.
const (
	DefaultCommandTimeout = 10 * time.Second
	DefaultConnectTimeout = 10 * time.Second
	DefaultSendTimeout    = 5 * time.Second
	DefaultAckTimeout     = 15 * time.Second

	// eventQueueCapacity bounds each subscriber's buffered channel. Once
	// full, the two oldest queued events are dropped to make room for the
	// new event and a QueueOverflow diagnostic event (see Session.Events).
	eventQueueCapacity = 256
)

type config struct {
	logger         *zap.Logger
	commandTimeout time.Duration
	connectTimeout time.Duration
	sendTimeout    time.Duration
	ackTimeout     time.Duration
}

func defaultConfig() config {
	return config{
		logger:         zap.NewNop(),
		commandTimeout: DefaultCommandTimeout,
		connectTimeout: DefaultConnectTimeout,
		sendTimeout:    DefaultSendTimeout,
		ackTimeout:     DefaultAckTimeout,
	}
}

// Option configures a Session at construction time.
type Option func(*config)

// WithLogger injects a diagnostics sink. Without this option the
// session logs nothing (zap.NewNop()); no package-level logger exists
// for Session to fall back on.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithCommandTimeout overrides how long SendAndAwait waits for a
// solicited reply before giving up.
func WithCommandTimeout(d time.Duration) Option {
	return func(c *config) { c.commandTimeout = d }
}

// WithConnectTimeout overrides how long Start waits for the appStart
// handshake's selfInfo reply.
func WithConnectTimeout(d time.Duration) Option {
	return func(c *config) { c.connectTimeout = d }
}

// WithSendTimeout overrides how long a single frame write may block.
func WithSendTimeout(d time.Duration) Option {
	return func(c *config) { c.sendTimeout = d }
}

// WithAckTimeout overrides the default wait for a message's ack push
// when the firmware's own messageSent reply didn't suggest one.
func WithAckTimeout(d time.Duration) Option {
	return func(c *config) { c.ackTimeout = d }
}
