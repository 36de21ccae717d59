//go:build linux
// +build linux

// File: cmd/fdrelay/main.go
// Author: momentics <momentics@gmail.com>
//
// fdrelay copies standard input to standard output through the readiness
// dispatcher. It exits when input reaches end-of-data and everything has
// been written.

package main

import (
	"crypto/rand"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"
	"golang.org/x/sys/unix"

	"github.com/momentics/fdreactor/control"
	"github.com/momentics/fdreactor/internal/arc4"
	"github.com/momentics/fdreactor/internal/logging"
	"github.com/momentics/fdreactor/internal/relay"
	"github.com/momentics/fdreactor/internal/strutil"
	"github.com/momentics/fdreactor/reactor"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("fdrelay", flag.ContinueOnError)
	configPath := fs.StringP("config", "c", "", "Path to a TOML or YAML config file")
	backend := fs.StringP("backend", "b", "", "Readiness backend: poll or select")
	policy := fs.String("sweep-policy", "", "Sweep policy: complete or abandon")
	logLevel := fs.StringP("log-level", "l", "", "Log level (debug, info, warn, error)")
	bufSize := fs.Int("buffer", 64<<10, "Relay buffer size in bytes")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fdrelay: %v\n", err)
		return 2
	}
	if fs.Changed("backend") {
		cfg.Backend = *backend
	}
	if fs.Changed("sweep-policy") {
		cfg.SweepPolicy = *policy
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "fdrelay: %v\n", err)
		return 2
	}

	log := logging.New(os.Stderr, "fdrelay", cfg.LogLevel, cfg.LogFormat)
	stream, err := arc4.NewFromEntropy(rand.Reader)
	if err != nil {
		log.Error().Err(err).Msg("cannot seed session stream")
		return 1
	}
	log = log.With().Str("session", stream.Token(8)).Logger()
	log.Debug().Str("config_digest", cfg.Digest()).Str("backend", cfg.Backend).Msg("configuration loaded")

	metrics := control.NewMetricsRegistry()
	d, err := reactor.New(reactor.WithConfig(cfg), reactor.WithLogger(log), reactor.WithMetrics(metrics))
	if err != nil {
		log.Error().Err(err).Msg("cannot create dispatcher")
		return 1
	}

	in, out := int(os.Stdin.Fd()), int(os.Stdout.Fd())
	for _, fd := range []int{in, out} {
		if err := unix.SetNonblock(fd, true); err != nil {
			log.Error().Err(err).Int("fd", fd).Msg("cannot make descriptor non-blocking")
			return 1
		}
		defer unix.SetNonblock(fd, false)
	}

	r := relay.New(d, in, out, *bufSize, log)
	r.Start()
	d.Run()

	log.Info().
		Int64("bytes", r.Copied()).
		Int64("sweeps", metrics.Counter(reactor.MetricSweeps)).
		Int64("dispatches", metrics.Counter(reactor.MetricDispatches)).
		Msg("relay finished")
	if r.Err() != nil {
		return 1
	}
	return 0
}

func loadConfig(path string) (control.Config, error) {
	if path == "" {
		return control.DefaultConfig(), nil
	}
	expanded, err := strutil.ExpandHome(path)
	if err != nil {
		return control.Config{}, err
	}
	return control.LoadConfig(expanded)
}
