package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	httpengine "github.com/bft-labs/apicaller/internal/adapters/http"
	"github.com/bft-labs/apicaller/internal/cliconfig"
	"github.com/bft-labs/apicaller/pkg/call"
	"github.com/bft-labs/apicaller/pkg/log"
	"github.com/bft-labs/apicaller/pkg/poller"
	"github.com/bft-labs/apicaller/pkg/status"
	"github.com/bft-labs/apicaller/plugins/configwatcher"
)

const helpDescription = `
Execute HTTP API calls from the command line.

Each call kind decides how the request is encoded, how it is sent and how the
response is decoded. Transport options use engine option names without the
OPT_ prefix (timeout, followlocation, httpheader, ...) and can come from the
config file, APICALLER_OPT_* variables or --opt flags.
`

var exampleUsage = strings.TrimSpace(`
  apicaller call get-json https://api.example.com/items --data page=2 --select items.0.name
  apicaller call post-json https://api.example.com/items --data name=widget --assoc --dump
  apicaller poll get-json https://api.example.com/health --interval 10s --retries 3
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// flags holds values that are not part of cliconfig.Config.
type flags struct {
	cfgPath    string
	data       []string
	opts       []string
	showHeader bool
	selectPath string
	dump       bool
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var f flags

	root := &cobra.Command{
		Use:           "apicaller",
		Short:         "Execute HTTP API calls",
		Long:          strings.TrimSpace(helpDescription),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	callCmd := &cobra.Command{
		Use:       "call <kind> <url>",
		Short:     "Execute a call once",
		Args:      cobra.ExactArgs(2),
		ValidArgs: kindNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, &cfg, f, args[0], args[1], true)
		},
	}
	pollCmd := &cobra.Command{
		Use:       "poll <kind> <url>",
		Short:     "Execute a call on an interval until interrupted",
		Long:      "Execute a call on an interval until interrupted. Changes to the config file are applied without restarting.",
		Args:      cobra.ExactArgs(2),
		ValidArgs: kindNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, &cfg, f, args[0], args[1], false)
		},
	}
	pollCmd.Flags().DurationVar(&cfg.Interval, "interval", cfg.Interval, "time between polls")
	root.AddCommand(callCmd, pollCmd)

	pf := root.PersistentFlags()
	pf.StringVar(&f.cfgPath, "config", "", "path to config file (default: $HOME/.apicaller/config.toml)")
	pf.StringArrayVarP(&f.data, "data", "d", nil, "request field as key=value (repeatable; repeated keys form a list)")
	pf.StringArrayVarP(&f.opts, "opt", "o", nil, "transport option as name=value (repeatable)")
	pf.StringArrayVarP(&cfg.Headers, "header", "H", cfg.Headers, "request header as 'Name: value' (repeatable)")
	pf.BoolVar(&cfg.Associative, "assoc", cfg.Associative, "decode into maps and parse response headers")
	pf.BoolVar(&cfg.RawQuery, "raw-query", cfg.RawQuery, "repeat keys for list values instead of key[i]=")
	pf.BoolVar(&cfg.Fresh, "fresh", cfg.Fresh, "use a new connection for every execution")
	pf.IntVar(&cfg.Retries, "retries", cfg.Retries, "extra attempts when the server cannot be reached")
	pf.DurationVar(&cfg.RetryDelay, "retry-delay", cfg.RetryDelay, "delay between attempts")
	pf.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "transfer timeout (0 disables)")
	pf.StringVar(&cfg.UserAgent, "user-agent", cfg.UserAgent, "User-Agent header")
	pf.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	pf.BoolVarP(&f.showHeader, "include", "i", false, "print the status line and response headers")
	pf.StringVar(&f.selectPath, "select", "", "print only the JSON value at this gjson path")
	pf.BoolVar(&f.dump, "dump", false, "print the decoded response as YAML")

	if err := root.Execute(); err != nil {
		logger := cliconfig.Logger(zerolog.InfoLevel)
		logger.Error().Err(err).Msg("apicaller")
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, flagged *cliconfig.Config, f flags, kindName, url string, once bool) error {
	cfgFile := f.cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}
	if cfgFile != "" && !cliconfig.FileExists(cfgFile) {
		if f.cfgPath != "" {
			return fmt.Errorf("config file %s not found", cfgFile)
		}
		cfgFile = ""
	}

	changed := map[string]bool{}
	cmd.Flags().Visit(func(fl *pflag.Flag) { changed[fl.Name] = true })

	flagOpts, err := cliconfig.ParseAssignments(f.opts)
	if err != nil {
		return fmt.Errorf("--opt: %w", err)
	}

	// File, then environment, then flags.
	cfg, err := cliconfig.Layered(cfgFile, *flagged, changed, flagOpts)
	if err != nil {
		return err
	}
	level, _ := cfg.Level()
	zl := cliconfig.Logger(level)
	logger := log.NewZerologAdapterWithLogger(zl)

	kind, err := newKind(kindName)
	if err != nil {
		return err
	}
	var request any
	if len(f.data) > 0 {
		if request, err = cliconfig.ParseAssignments(f.data); err != nil {
			return fmt.Errorf("--data: %w", err)
		}
	}

	factory := func() (*call.Call, error) {
		c, err := call.New(url, request, kind,
			call.WithAssociative(cfg.Associative),
			call.WithLogger(logger),
			call.WithName(kindName))
		if err != nil {
			return nil, err
		}
		if cfg.RawQuery {
			if err := c.SetRawQueryMode(true); err != nil {
				return nil, err
			}
		}
		return c, nil
	}

	mode := outputMode{showHeader: f.showHeader, selectPath: f.selectPath, dump: f.dump}
	out := cmd.OutOrStdout()
	var renderErr, pollErr error
	handler := poller.EventHandlerFuncs{
		Error: func(e poller.ErrorEvent) {
			pollErr = e.Error
			if e.Call != nil && mode.showHeader {
				if err := render(out, e.Call, outputMode{showHeader: true}); err != nil {
					zl.Error().Err(err).Msg("render response")
				}
			}
		},
		Result: func(e poller.ResultEvent) {
			if e.Call.StatusCode() == status.ConnectionFailed {
				zl.Error().Err(e.Call.TransportError()).Int("attempts", e.Attempts).Msg("server unreachable")
				return
			}
			if err := render(out, e.Call, mode); err != nil {
				renderErr = err
				zl.Error().Err(err).Msg("render response")
			}
		},
	}

	popts := []poller.Option{
		poller.WithLogger(logger),
		poller.WithOptions(cfg.TransportOptions()),
		poller.WithEventHandler(handler),
	}
	if !once && cfgFile != "" {
		popts = append(popts, configwatcher.WithLoader(func(path string) (map[string]any, error) {
			next, err := cliconfig.Layered(path, *flagged, changed, flagOpts)
			if err != nil {
				return nil, err
			}
			return next.TransportOptions(), nil
		}))
	}

	p, err := poller.New(poller.Config{
		Interval:   cfg.Interval,
		Once:       once,
		Fresh:      cfg.Fresh,
		Retries:    cfg.Retries,
		RetryDelay: cfg.RetryDelay,
		ConfigPath: cfgFile,
	}, factory, httpengine.NewEngine(httpengine.WithLogger(logger)), popts...)
	if err != nil {
		return fmt.Errorf("create poller: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := p.Start(ctx); err != nil {
		return fmt.Errorf("start poller: %w", err)
	}

	select {
	case <-ctx.Done():
		zl.Info().Msg("received signal, stopping...")
	case <-p.Done():
	}

	if err := p.Stop(); err != nil && !errors.Is(err, poller.ErrNotRunning) {
		return fmt.Errorf("stop poller: %w", err)
	}

	if once {
		last := p.Last()
		switch {
		case pollErr != nil:
			return pollErr
		case last == nil:
			return errors.New("call failed")
		case last.StatusCode() == status.ConnectionFailed:
			return fmt.Errorf("server unreachable: %v", last.TransportError())
		case renderErr != nil:
			return renderErr
		}
	}
	return nil
}
