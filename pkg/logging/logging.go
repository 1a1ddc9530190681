package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"moul.io/zapfilter"
)

const (
	SCCNamespace       = "scc"
	MethodNamespace    = "method"
	ClasspathNamespace = "classpath"
)

// NewLogger creates a logger writing to stderr according to params.
func NewLogger(params Parameters) (*zap.Logger, error) {
	return newLogger(params, zapcore.Lock(os.Stderr))
}

func newLogger(params Parameters, w zapcore.WriteSyncer) (*zap.Logger, error) {
	core := zapcore.NewCore(newEncoder(params.Type), w, zap.NewAtomicLevelAt(params.Level))
	if params.Filter != "" {
		rules, err := zapfilter.ParseRules(params.Filter)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid log filter %q", params.Filter)
		}
		core = zapfilter.NewFilteringCore(core, rules)
	}
	return zap.New(core), nil
}

func newEncoder(t LoggerType) zapcore.Encoder {
	switch t {
	case LoggerText:
		return zapcore.NewConsoleEncoder(zap.NewProductionEncoderConfig())
	case LoggerJSON:
		return zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	case LoggerPretty:
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(ec)
	case LoggerPrettyNoColor:
		return zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	default:
		panic(fmt.Sprintf("unsupported logger type %d", t))
	}
}

// NewWriterLogger is NewLogger for an arbitrary writer.
func NewWriterLogger(params Parameters, w io.Writer) (*zap.Logger, error) {
	return newLogger(params, zapcore.AddSync(w))
}
