package logging

import (
	"strings"

	"github.com/pkg/errors"
)

// LoggerType is a type of logger output.
// Possible types:
//   - LoggerText: zap production console encoder, plain level names.
//   - LoggerJSON: zap production JSON encoder.
//   - LoggerPretty: zap development console encoder with colored levels.
//   - LoggerPrettyNoColor: the same without colors.
type LoggerType int

const (
	LoggerText LoggerType = iota
	LoggerJSON
	LoggerPretty
	LoggerPrettyNoColor
)

var loggerTypeNames = map[LoggerType]string{
	LoggerText:          "text",
	LoggerJSON:          "json",
	LoggerPretty:        "pretty",
	LoggerPrettyNoColor: "prettynocolor",
}

func (t LoggerType) String() string {
	if n, ok := loggerTypeNames[t]; ok {
		return n
	}
	return "unknown"
}

func (t LoggerType) MarshalText() ([]byte, error) {
	n, ok := loggerTypeNames[t]
	if !ok {
		return nil, errors.Errorf("unknown logger type %d", int(t))
	}
	return []byte(n), nil
}

func (t *LoggerType) UnmarshalText(text []byte) error {
	s := strings.ToLower(string(text))
	for k, v := range loggerTypeNames {
		if v == s {
			*t = k
			return nil
		}
	}
	return errors.Errorf("unknown logger type %q", string(text))
}
