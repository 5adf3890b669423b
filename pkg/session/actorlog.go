// pkg/session/actorlog.go
package session

import "go.uber.org/zap"

// ActorLogger attributes diagnostic output to one simulated user, so
// interleaved lines from a multi-user run stay readable. It is stateless
// beyond its label: every call is an immediate, synchronous write to the
// process diagnostic stream.
type ActorLogger struct {
	username string
	logger   *zap.Logger
}

// NewActorLogger labels the given process logger with a username.
func NewActorLogger(username string, base *zap.Logger) *ActorLogger {
	return &ActorLogger{
		username: username,
		logger:   base.Named("actor").With(zap.String("username", username)),
	}
}

// Log writes one tagged line.
func (l *ActorLogger) Log(msg string, fields ...zap.Field) {
	l.logger.Info(msg, fields...)
}

// Username returns the label.
func (l *ActorLogger) Username() string { return l.username }
