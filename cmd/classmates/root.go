package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/classmates/internal/adapters/http/client"
	"github.com/okian/classmates/internal/config"
	"github.com/okian/classmates/pkg/logger"
	"github.com/okian/classmates/pkg/metrics"
)

// options carries the persistent flags and I/O shared by every subcommand.
type options struct {
	url      string
	timeout  time.Duration
	logLevel string

	out    io.Writer
	errOut io.Writer
	in     io.Reader
}

func newRootCmd(out, errOut io.Writer, in io.Reader) *cobra.Command {
	o := &options{out: out, errOut: errOut, in: in}

	root := &cobra.Command{
		Use:           "classmates",
		Short:         "Manage the classmates roster",
		Long:          `Create, inspect and update classmates through the roster backend API. Results are printed as JSON.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.SetIn(in)

	pf := root.PersistentFlags()
	pf.StringVar(&o.url, "url", "", "backend origin, e.g. http://localhost:5001 (default from config)")
	pf.DurationVar(&o.timeout, "timeout", 0, "per-request timeout (default from config, 0 = none)")
	pf.StringVar(&o.logLevel, "log-level", "", "debug, info, warn or error (default from config)")

	root.AddCommand(
		newListCmd(o),
		newGetCmd(o),
		newCreateCmd(o),
		newUpdateCmd(o),
		newDeleteCmd(o),
		newStatsCmd(o),
		newBatchCmd(o),
		newNearbyCmd(o),
		newSeedCmd(o),
	)
	return root
}

// setup loads configuration, applies flag overrides and builds the API client.
func (o *options) setup(ctx context.Context) (*client.Client, *config.Config, logger.Logger, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	if o.url != "" {
		cfg.BackendURL = o.url
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, nil, err
	}
	log := logger.New(o.errOut, level)
	metrics.Configure(cfg.MetricsOptions()...)

	timeout := cfg.RequestTimeout()
	if o.timeout > 0 {
		timeout = o.timeout
	}

	c, err := client.New(cfg.BackendURL,
		client.WithLogger(log),
		client.WithBasePath(cfg.APIBasePath),
		client.WithTimeout(timeout),
	)
	if err != nil {
		return nil, nil, nil, err
	}
	log.Debug(ctx, "client ready", logger.String("baseURL", c.BaseURL()), logger.String("timeout", timeout.String()))
	return c, cfg, log, nil
}

func (o *options) print(v any) error {
	enc := json.NewEncoder(o.out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func readAll(r io.Reader) ([]byte, error) {
	if r == nil {
		return nil, io.ErrUnexpectedEOF
	}
	return io.ReadAll(r)
}
