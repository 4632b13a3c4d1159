package log

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the structured logger passed to sessions, routers and endpoints.
type Logger interface {
	Debugw(msg string, keyvals ...interface{})
	Infow(msg string, keyvals ...interface{})
	Warnw(msg string, keyvals ...interface{})
	Errorw(msg string, keyvals ...interface{})
	With(args ...interface{}) Logger
	Named(s string) Logger
}

type logger struct {
	*zap.SugaredLogger
}

func (l *logger) With(args ...interface{}) Logger {
	return &logger{l.SugaredLogger.With(args...)}
}

func (l *logger) Named(s string) Logger {
	return &logger{l.SugaredLogger.Named(s)}
}

const (
	DebugLevel = int(zapcore.DebugLevel)
	InfoLevel  = int(zapcore.InfoLevel)
	WarnLevel  = int(zapcore.WarnLevel)
)

// DefaultLevel is the level of the default logger.
// MPC_LOG=DEBUG lowers it to DebugLevel.
var DefaultLevel = InfoLevel

func init() {
	if v, ok := os.LookupEnv("MPC_LOG"); ok && v == "DEBUG" {
		DefaultLevel = DebugLevel
	}
}

var defaultOnce sync.Once

// DefaultLogger returns the process wide JSON logger at DefaultLevel.
func DefaultLogger() Logger {
	defaultOnce.Do(func() {
		zap.ReplaceGlobals(newZap(nil, true, DefaultLevel))
	})
	return &logger{zap.S()}
}

// New returns a logger writing entries at or above level to output.
// A nil output writes to stdout.
func New(output zapcore.WriteSyncer, level int, isJSON bool) Logger {
	return &logger{newZap(output, isJSON, level).Sugar()}
}

// ParseLevel maps a level name from the configuration onto a level constant.
func ParseLevel(s string) (int, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return InfoLevel, err
	}
	return int(lvl), nil
}

func newZap(output zapcore.WriteSyncer, isJSON bool, level int) *zap.Logger {
	if output == nil {
		output = os.Stdout
	}
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	enc := zapcore.NewConsoleEncoder(cfg)
	if isJSON {
		enc = zapcore.NewJSONEncoder(cfg)
	}
	return zap.New(zapcore.NewCore(enc, output, zapcore.Level(level)), zap.WithCaller(true))
}
