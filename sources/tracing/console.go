package tracing

import (
	"context"
	"log/slog"
	"os"
	"time"
)

const (
	ExecutionTime   = "exe_time"
	InnerError      = "inner_error"
	UserId          = "user_id"
	UserName        = "user_name"
	ChatId          = "chat_id"
	MessageId       = "message_id"
	MessageDate     = "message_date"
	CallbackKind    = "callback_kind"
	CallbackData    = "callback_data"
	CommandIssued   = "command_issued"
	SessionState    = "session_state"
	PaymentId       = "payment_id"
	PaymentStatus   = "payment_status"
	SubscriptionId  = "subscription_id"
	ServiceId       = "service_id"
	Segment         = "segment"
	Cursor          = "cursor"
	GatewayOp       = "gateway_op"
	GatewayStatus   = "gateway_status"
	GatewayAttempt  = "gateway_attempt"
	GatewayBackoff  = "gateway_backoff"
	WebhookPath     = "webhook_path"
	Language        = "language"
	Page            = "page"
	Delivered       = "delivered"
	Failed          = "failed"
	Skipped         = "skipped"
)

type Logger struct {
	log *slog.Logger
	ctx context.Context
}

func NewConsoleLogger() *Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	logger.InfoContext(ctx, "Initializing logger")
	return &Logger{log: logger, ctx: ctx}
}

func (l *Logger) With(args ...any) *Logger {
	return &Logger{log: l.log.With(args...), ctx: l.ctx}
}

func (l *Logger) D(msg string, args ...any) {
	l.log.DebugContext(l.ctx, msg, args...)
}

func (l *Logger) I(msg string, args ...any) {
	l.log.InfoContext(l.ctx, msg, args...)
}

func (l *Logger) W(msg string, args ...any) {
	l.log.WarnContext(l.ctx, msg, args...)
}

func (l *Logger) E(msg string, args ...any) {
	l.log.ErrorContext(l.ctx, msg, args...)
}

func (l *Logger) F(msg string, args ...any) {
	l.log.ErrorContext(l.ctx, msg, args...)
	panic(msg)
}
