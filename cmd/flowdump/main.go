package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/wavesplatform/godecompiler/pkg/decompiler/classpath"
	"github.com/wavesplatform/godecompiler/pkg/decompiler/method"
	"github.com/wavesplatform/godecompiler/pkg/logging"
)

var version = "v0.0.0"

type config struct {
	in        string
	out       string
	format    string
	workers   int
	classpath string
	logging   logging.Parameters
}

func main() {
	var showHelp bool
	var showVersion bool
	cfg := config{}

	flag.StringVarP(&cfg.in, "in", "i", "-", "Path to the JSON method description, \"-\" reads standard input")
	flag.StringVarP(&cfg.out, "out", "o", "-", "Path to the output file, \"-\" writes to standard output")
	flag.StringVarP(&cfg.format, "format", "f", "text", "Output format: text or json")
	flag.IntVarP(&cfg.workers, "workers", "w", 4, "Number of methods analysed concurrently")
	flag.StringVarP(&cfg.classpath, "classpath", "c", "", "Optional class index (.json or .cbor) used to resolve invoked methods")
	flag.BoolVarP(&showHelp, "help", "h", false, "Print usage information (this message) and quit")
	flag.BoolVarP(&showVersion, "version", "v", false, "Print version information and quit")
	cfg.logging.Initialize(flag.CommandLine)
	flag.Usage = showUsageAndExit
	flag.Parse()

	if showHelp {
		showUsageAndExit()
	}
	if showVersion {
		showVersionAndExit()
	}
	if err := cfg.logging.Parse(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger, err := logging.NewLogger(cfg.logging)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Failed to dump flow", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	if cfg.format != "text" && cfg.format != "json" {
		return errors.Errorf("unsupported output format %q", cfg.format)
	}
	methods, err := readMethods(cfg.in)
	if err != nil {
		return err
	}
	opts := []method.Option{method.WithLogger(logger.Named(logging.MethodNamespace))}
	if cfg.classpath != "" {
		provider, err := readClasspath(cfg.classpath)
		if err != nil {
			return err
		}
		resolver := classpath.NewResolver(provider, classpath.WithLogger(logger.Named(logging.ClasspathNamespace)))
		opts = append(opts, method.WithResolver(resolver))
		logger.Debug("Class index loaded", zap.String("path", cfg.classpath), zap.Int("classes", provider.Len()))
	}

	outcomes, stats := method.AnalyzeAll(ctx, methods, cfg.workers, opts...)
	logger.Info("Analysis finished",
		zap.Int64("succeeded", stats.Succeeded), zap.Int64("failed", stats.Failed), zap.Int64("skipped", stats.Skipped))

	reports := make([]methodReport, 0, len(outcomes))
	for _, o := range outcomes {
		reports = append(reports, newMethodReport(o))
	}
	if err := writeOutput(cfg.out, cfg.format, reports); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "analysis interrupted")
	}
	return nil
}

func writeOutput(path, format string, reports []methodReport) error {
	w, closeOut, err := openOutput(path)
	if err != nil {
		return err
	}
	err = writeReports(w, format, reports)
	if cerr := closeOut(); cerr != nil && err == nil {
		err = errors.Wrapf(cerr, "failed to close %q", path)
	}
	return err
}

func writeReports(w io.Writer, format string, reports []methodReport) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			return errors.Wrap(err, "failed to write report")
		}
	default:
		if err := writeText(w, reports); err != nil {
			return errors.Wrap(err, "failed to write report")
		}
	}
	return nil
}

func readMethods(path string) ([]method.Method, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to open %q", path)
		}
		defer func() { _ = f.Close() }()
		r = f
	}
	return method.Load(r)
}

func readClasspath(path string) (*classpath.MapProvider, error) {
	format := classpath.FormatJSON
	if strings.EqualFold(filepath.Ext(path), ".cbor") {
		format = classpath.FormatCBOR
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open class index %q", path)
	}
	defer func() { _ = f.Close() }()
	return classpath.LoadIndex(f, format)
}

func openOutput(path string) (io.Writer, func() error, error) {
	if path == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to create %q", path)
	}
	return f, f.Close, nil
}

func showUsageAndExit() {
	fmt.Println("usage: flowdump [flags]")
	flag.PrintDefaults()
	os.Exit(0)
}

func showVersionAndExit() {
	fmt.Printf("flowdump %s\n", version)
	os.Exit(0)
}
