package api

import (
	"context"
	"log/slog"
	"time"
)

// LoggingService is a decorator that records every remote call.
type LoggingService struct {
	inner  Service
	logger *slog.Logger
}

// WithLogging wraps a Service with structured call logging.
func WithLogging(s Service, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingService{inner: s, logger: logger.With("component", "api")}
}

func (l *LoggingService) FetchCatalog(ctx context.Context) ([]Question, error) {
	start := time.Now()
	qs, err := l.inner.FetchCatalog(ctx)
	l.record(ctx, "fetch_catalog", start, err, slog.Int("questions", len(qs)))
	return qs, err
}

func (l *LoggingService) FetchStats(ctx context.Context) (*Stats, error) {
	start := time.Now()
	s, err := l.inner.FetchStats(ctx)
	l.record(ctx, "fetch_stats", start, err)
	return s, err
}

func (l *LoggingService) SubmitProgress(ctx context.Context, questionID, elapsedSeconds int, solved bool) (ProgressStatus, error) {
	start := time.Now()
	st, err := l.inner.SubmitProgress(ctx, questionID, elapsedSeconds, solved)
	l.record(ctx, "submit_progress", start, err,
		slog.Int("question_id", questionID),
		slog.Int("elapsed_seconds", elapsedSeconds),
		slog.Bool("solved", solved),
		slog.String("status", string(st)),
	)
	return st, err
}

func (l *LoggingService) ResetProgress(ctx context.Context) error {
	start := time.Now()
	err := l.inner.ResetProgress(ctx)
	l.record(ctx, "reset_progress", start, err)
	return err
}

func (l *LoggingService) CurrentUser(ctx context.Context) (*User, error) {
	start := time.Now()
	u, err := l.inner.CurrentUser(ctx)
	l.record(ctx, "current_user", start, err)
	return u, err
}

func (l *LoggingService) Login(ctx context.Context, username, password string) error {
	start := time.Now()
	err := l.inner.Login(ctx, username, password)
	l.record(ctx, "login", start, err, slog.String("username", username))
	return err
}

func (l *LoggingService) Register(ctx context.Context, username, password string) (*User, error) {
	start := time.Now()
	u, err := l.inner.Register(ctx, username, password)
	l.record(ctx, "register", start, err, slog.String("username", username))
	return u, err
}

func (l *LoggingService) Logout(ctx context.Context) error {
	start := time.Now()
	err := l.inner.Logout(ctx)
	l.record(ctx, "logout", start, err)
	return err
}

func (l *LoggingService) record(ctx context.Context, op string, start time.Time, err error, attrs ...slog.Attr) {
	attrs = append(attrs,
		slog.String("op", op),
		slog.Int64("latency_ms", time.Since(start).Milliseconds()),
		slog.Bool("success", err == nil),
	)
	level := slog.LevelInfo
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		level = slog.LevelWarn
	}
	l.logger.LogAttrs(ctx, level, "remote call", attrs...)
}
