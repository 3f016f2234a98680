package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	dnspkg "dnsprop/dns"
	"dnsprop/logging"
	"dnsprop/tui"
)

func main() {
	app := &cli.App{
		Name:  "dnsprop",
		Usage: "check DNS record propagation across public resolvers worldwide",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "config file path (YAML)",
				EnvVars: []string{"DNSPROP_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "check",
				Aliases:   []string{"c"},
				Usage:     "Run a one-shot propagation check and print the results.",
				ArgsUsage: "<domain>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Usage: "record type (A, AAAA, MX, TXT, NS, CNAME)"},
					&cli.StringFlag{Name: "strategy", Aliases: []string{"s"}, Usage: "sequential or concurrent"},
					&cli.StringFlag{Name: "csv", Usage: "write the results as CSV to `FILE`"},
					&cli.BoolFlag{Name: "escaped", Usage: "quote CSV fields strictly"},
				},
				Action: runCheck,
			},
			{
				Name:    "serve",
				Aliases: []string{"s", "srv"},
				Usage:   "Start the HTTP API.",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "listen", Aliases: []string{"l"}, Usage: "listen address, e.g. :8080"},
				},
				Action: runServe,
			},
			{
				Name:   "tui",
				Usage:  "Launch the interactive terminal UI.",
				Action: runTUI,
			},
			{
				Name:    "resolvers",
				Aliases: []string{"r", "ls"},
				Usage:   "List the configured vantage points by region.",
				Action:  runResolvers,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file named by the global flag on top of the
// defaults and validates the result.
func loadConfig(c *cli.Context) (*dnspkg.Config, error) {
	cfg := dnspkg.DefaultConfig
	cfg.VantagePoints = append([]dnspkg.VantagePoint(nil), dnspkg.DefaultVantagePoints...)
	if err := dnspkg.LoadConfig(&cfg, c.String("config")); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// newProber builds the lookup backend and prober described by cfg. The
// returned cleanup releases backend connections.
func newProber(cfg *dnspkg.Config, logger *zap.Logger, extra ...dnspkg.Option) (*dnspkg.Prober, func(), error) {
	timeout, err := cfg.ProbeTimeout()
	if err != nil {
		return nil, nil, err
	}
	lookuper, err := dnspkg.NewLookuper(cfg.Lookup, timeout)
	if err != nil {
		return nil, nil, err
	}
	opts, err := cfg.ProberOptions()
	if err != nil {
		return nil, nil, err
	}
	opts = append(opts, dnspkg.WithLogger(logger))
	opts = append(opts, extra...)
	return dnspkg.NewProber(lookuper, opts...), func() { closeLookuper(lookuper) }, nil
}

func closeLookuper(l dnspkg.Lookuper) {
	if c, ok := l.(interface{ Close() }); ok {
		c.Close()
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runCheck(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("Please specify a domain to check!", 1)
	}
	domain, err := checkDomain(c.Args().First())
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	defer logger.Sync() //nolint:errcheck

	recordType := cfg.Defaults.RecordType
	if t := c.String("type"); t != "" {
		recordType = t
	}
	rt, err := dnspkg.ParseRecordType(recordType)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	var extra []dnspkg.Option
	if s := c.String("strategy"); s != "" {
		strategy, err := dnspkg.ParseStrategy(s)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
		extra = append(extra, dnspkg.WithStrategy(strategy))
	}

	prober, cleanup, err := newProber(cfg, logger, extra...)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	defer cleanup()

	ctx, stop := signalContext()
	defer stop()

	out := newPrinter(os.Stdout)
	out.Header(domain, rt, len(cfg.VantagePoints))

	summary, err := prober.Probe(ctx, dnspkg.NewSessionID(), domain, rt, cfg.VantagePoints, out.Progress)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	out.Summary(summary)

	if path := c.String("csv"); path != "" {
		if err := writeCSV(path, summary, c.Bool("escaped")); err != nil {
			return cli.Exit(err.Error(), 1)
		}
		out.Saved(path)
	}
	return nil
}

// checkDomain normalizes the domain argument and rejects an empty one.
func checkDomain(arg string) (string, error) {
	domain := dnspkg.NormalizeDomain(arg)
	if domain == "" {
		return "", &dnspkg.ValidationError{Field: "domain", Reason: "domain is required"}
	}
	return domain, nil
}

func runServe(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	if addr := c.String("listen"); addr != "" {
		cfg.Listen = addr
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	defer logger.Sync() //nolint:errcheck

	srv, cleanup, err := buildServer(cfg, logger)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	defer cleanup()

	ctx, stop := signalContext()
	defer stop()
	if err := srv.Run(ctx); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	return nil
}

func runTUI(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	logger, err := logging.ForTUI(cfg.Log)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	defer logger.Sync() //nolint:errcheck

	prober, cleanup, err := newProber(cfg, logger)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	defer cleanup()

	m := tui.New(cfg, c.String("config"), prober, logger)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return cli.Exit(fmt.Sprintf("Error running TUI: %v", err), 1)
	}
	return nil
}

func runResolvers(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	newPrinter(os.Stdout).VantagePoints(cfg.VantagePoints)
	return nil
}
