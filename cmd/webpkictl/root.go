package main

import (
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// usageError marks a cobra command failure that should exit 2 (malformed
// arguments or flags) rather than 1 (the operation ran but failed).
type usageError struct{ err error }

func (u usageError) Error() string { return u.err.Error() }
func (u usageError) Unwrap() error { return u.err }

func newUsageError(format string, a ...any) error {
	return usageError{err: fmt.Errorf(format, a...)}
}

type rootFlags struct {
	anchorsPath string
	crlsPath    string
	logLevel    string
}

func newLogger(level string) logr.Logger {
	cfg := zap.NewProductionConfig()
	switch level {
	case "debug":
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	case "warn":
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	case "error":
		cfg.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	cfg.Encoding = "console"
	cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	zl, err := cfg.Build()
	if err != nil {
		// zap's own constructor failing is not something a flag-parsing
		// caller can recover from; fall back to a discard logger rather
		// than panic on what is purely an observability path.
		return logr.Discard()
	}
	return zapr.NewLogger(zl)
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "webpkictl",
		Short:         "Inspect certificates and drive the webpki path validator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.anchorsPath, "anchors", "", "trust anchor bundle (PEM CERTIFICATE blocks)")
	root.PersistentFlags().StringVar(&flags.crlsPath, "crls", "", "CRL bundle (PEM X509 CRL blocks)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "debug, info, warn or error")

	root.AddCommand(newInspectCmd())
	root.AddCommand(newVerifyChainCmd(flags))
	root.AddCommand(newVerifyNameCmd())

	return root
}

func run(args []string) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	err := cmd.Execute()
	if err == nil {
		return 0
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if _, ok := err.(usageError); ok {
		return 2
	}
	return 1
}
