package gateway

import (
	"fmt"
	"strings"

	"bulkpay/internal/utils/logger"
)

// leveledLogger feeds go-retryablehttp's structured log calls into the
// service logger.
type leveledLogger struct{}

func (leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	logger.Error("%s%s", msg, pairs(keysAndValues))
}

func (leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Info("%s%s", msg, pairs(keysAndValues))
}

func (leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	logger.Debug("%s%s", msg, pairs(keysAndValues))
}

func (leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	logger.Warning("%s%s", msg, pairs(keysAndValues))
}

func pairs(kv []interface{}) string {
	var b strings.Builder
	for i := 0; i+1 < len(kv); i += 2 {
		fmt.Fprintf(&b, " %v=%v", kv[i], kv[i+1])
	}
	return b.String()
}
