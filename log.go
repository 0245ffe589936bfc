package anydir

import (
	"os"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var diagnostics atomic.Pointer[zap.Logger]

func init() {
	diagnostics.Store(stderrLogger())
}

// SetLogger sets the sink for warnings the package reports instead of
// returning, like a runtime directory that cannot be listed. A nil logger
// discards them.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}

	diagnostics.Store(l)
}

func logger() *zap.Logger {
	return diagnostics.Load()
}

func stderrLogger() *zap.Logger {
	return zap.New(
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
				TimeKey:          zapcore.OmitKey,
				LevelKey:         "L",
				NameKey:          "N",
				MessageKey:       "M",
				LineEnding:       zapcore.DefaultLineEnding,
				EncodeLevel:      zapcore.CapitalLevelEncoder,
				EncodeDuration:   zapcore.StringDurationEncoder,
				ConsoleSeparator: " ",
			}),
			zapcore.Lock(os.Stderr),
			zapcore.WarnLevel,
		),
	).Named("anydir")
}
