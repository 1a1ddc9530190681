package logging

import (
	"fmt"

	"github.com/pkg/errors"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap/zapcore"
)

type Parameters struct {
	Level  zapcore.Level
	Type   LoggerType
	Filter string

	flagLogLevel   string
	flagLoggerType string
}

// Initialize adds logging command line parameters to the flag set.
func (p *Parameters) Initialize(fs *flag.FlagSet) {
	fs.StringVar(&p.flagLogLevel, "log-level", "info",
		"Set the logging level. Supported values: debug, info, warn, error. Default: info.")
	fs.StringVar(&p.flagLoggerType, "log-type", "pretty",
		"Set the logger output format. Supported types: text, json, pretty, prettynocolor. Default: pretty.")
	fs.StringVar(&p.Filter, "log-filter", "",
		"Filter log entries by level and logger name, e.g. \"debug:scc* info:*\". Empty means no filtering.")
}

// Parse parses the command line parameters for logging.
func (p *Parameters) Parse() error {
	var err error
	p.Level, err = p.parseLevel(p.flagLogLevel)
	if err != nil {
		return errors.Wrap(err, "failed to parse logger parameters")
	}
	p.Type, err = p.parseType(p.flagLoggerType)
	if err != nil {
		return errors.Wrap(err, "failed to parse logger parameters")
	}
	return nil
}

func (p *Parameters) String() string {
	return fmt.Sprintf("{Level: %s, Type: %s, Filter: %q}", p.Level, p.Type, p.Filter)
}

func (p *Parameters) parseLevel(l string) (zapcore.Level, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(l)); err != nil {
		return zapcore.InfoLevel, errors.Wrap(err, "invalid log level")
	}
	return level, nil
}

func (p *Parameters) parseType(t string) (LoggerType, error) {
	var lt LoggerType
	if err := lt.UnmarshalText([]byte(t)); err != nil {
		return LoggerText, errors.Wrap(err, "invalid logger type")
	}
	return lt, nil
}
