package logger

import (
	"context"
	"io"
	"os"
	"runtime/debug"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger struct {
	service  string
	hostname string
	z        *zap.Logger
}

func New(service string, level zapcore.Level) *Logger {
	return NewWithWriter(service, level, os.Stdout)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(service string, level zapcore.Level, w io.Writer) *Logger {
	hostname, _ := os.Hostname()

	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "time"
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.AddSync(w), level)

	return &Logger{
		service:  service,
		hostname: hostname,
		z:        zap.New(core),
	}
}

func (l *Logger) Info(ctx context.Context, action, message string, fields ...zap.Field) {
	l.log(ctx, zapcore.InfoLevel, action, message, fields)
}

func (l *Logger) Debug(ctx context.Context, action, message string, fields ...zap.Field) {
	l.log(ctx, zapcore.DebugLevel, action, message, fields)
}

func (l *Logger) Warn(ctx context.Context, action, message string, fields ...zap.Field) {
	l.log(ctx, zapcore.WarnLevel, action, message, fields)
}

func (l *Logger) Error(ctx context.Context, action, message string, err error, fields ...zap.Field) {
	if err != nil {
		fields = append(fields, zap.Dict("error",
			zap.String("msg", err.Error()),
			zap.String("stack", string(debug.Stack())),
		))
	}
	l.log(ctx, zapcore.ErrorLevel, action, message, fields)
}

// Sync flushes buffered entries
func (l *Logger) Sync() error {
	return l.z.Sync()
}

func (l *Logger) log(ctx context.Context, level zapcore.Level, action, message string, fields []zap.Field) {
	ce := l.z.Check(level, message)
	if ce == nil {
		return
	}
	base := []zap.Field{
		zap.String("service", l.service),
		zap.String("hostname", l.hostname),
		zap.String("action", action),
		zap.String("request_id", RequestID(ctx)),
	}
	ce.Write(append(base, fields...)...)
}

type requestIDKey struct{}

// WithRequestID returns a copy of ctx carrying id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request ID stored in ctx, or "".
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
