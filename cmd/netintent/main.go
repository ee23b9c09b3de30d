package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/akamensky/argparse"
	"github.com/sirupsen/logrus"

	"netintent/internal/adapter"
	"netintent/internal/assertion"
	"netintent/internal/codec"
	"netintent/internal/config"
	"netintent/internal/domain"
	"netintent/internal/logging"
	"netintent/internal/render"
	"netintent/internal/repository/gitea"
	"netintent/internal/repository/sqlite"
	"netintent/internal/service"
)

// errFailed marks a run that completed but reported failures
var errFailed = errors.New("one or more operations failed")

func main() {
	parser := argparse.NewParser("netintent",
		"netintent Render, store and verify intended network device configuration")

	configPath := parser.String("C", "config", &argparse.Options{
		Help: "Path to the config file (default: search standard locations)",
	})
	logLevel := parser.Selector("L", "log-level", []string{"debug", "info", "warn", "error"}, &argparse.Options{
		Help: "Override the configured log level",
	})

	checkCmd := parser.NewCommand("check", "Run a test catalog against devices")
	syncCmd := parser.NewCommand("sync", "Render device configs and commit changes to the repository")
	renderCmd := parser.NewCommand("render", "Render one device config to stdout")
	historyCmd := parser.NewCommand("history", "Show recent sync outcomes from the journal")

	var checkCatalog *string = checkCmd.String("c", "catalog", &argparse.Options{
		Required: true,
		Help:     "Path to the test catalog YAML",
	})
	var checkReplay *string = checkCmd.String("r", "replay", &argparse.Options{
		Help: "Use recorded command output instead of SSH",
	})
	var checkFormat *string = checkCmd.Selector("f", "format", codec.Formats(), &argparse.Options{
		Default: "yaml",
		Help:    "Report format",
	})

	var syncDevices *[]string = syncCmd.StringList("d", "device", &argparse.Options{
		Help: "Device to sync (repeatable)",
	})
	var syncAll *bool = syncCmd.Flag("a", "all", &argparse.Options{
		Help: "Sync every device in the inventory",
	})
	var syncDryRun *bool = syncCmd.Flag("n", "dry-run", &argparse.Options{
		Help: "Fetch and compare but never write",
	})
	var syncFormat *string = syncCmd.Selector("f", "format", codec.Formats(), &argparse.Options{
		Default: "yaml",
		Help:    "Outcome format",
	})

	var renderDevice *string = renderCmd.String("d", "device", &argparse.Options{
		Required: true,
		Help:     "Device to render",
	})

	var historyDevice *string = historyCmd.String("d", "device", &argparse.Options{
		Help: "Only show outcomes for this device",
	})
	var historyLimit *int = historyCmd.Int("l", "limit", &argparse.Options{
		Default: sqlite.DefaultRecentLimit,
		Help:    "Maximum number of outcomes",
	})
	var historyFormat *string = historyCmd.Selector("f", "format", codec.Formats(), &argparse.Options{
		Default: "yaml",
		Help:    "Outcome format",
	})

	if err := parser.Parse(os.Args); err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(2)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}

	// Logs go to stderr so stdout carries only reports
	logger := logging.Setup(cfg.Log.Level, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := &app{cfg: cfg, logger: logger, events: service.NewEventBus()}
	app.watchEvents(ctx)

	switch {
	case checkCmd.Happened():
		err = app.check(ctx, *checkCatalog, *checkReplay, *checkFormat)
	case syncCmd.Happened():
		err = app.sync(ctx, *syncDevices, *syncAll, *syncDryRun, *syncFormat)
	case renderCmd.Happened():
		err = app.render(ctx, *renderDevice)
	case historyCmd.Happened():
		err = app.history(ctx, *historyDevice, *historyLimit, *historyFormat)
	}

	if err != nil {
		if !errors.Is(err, errFailed) {
			logger.WithError(err).Error("command failed")
		}
		stop()
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, _, err = config.LoadFromPath(path)
	} else {
		cfg, _, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type app struct {
	cfg    *config.Config
	logger *logrus.Logger
	events *service.EventBus
}

// watchEvents logs bus events at debug level until ctx ends
func (a *app) watchEvents(ctx context.Context) {
	eventChan := make(chan service.Event, 100)
	a.events.Subscribe(eventChan)
	log := logging.Component(a.logger, "events")
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event := <-eventChan:
				log.WithField("type", event.Type).Debug("event")
			}
		}
	}()
}

func (a *app) check(ctx context.Context, catalogPath, replayPath, format string) error {
	exporter, err := codec.ExporterFor(format)
	if err != nil {
		return err
	}

	catalog, err := assertion.LoadCatalog(catalogPath)
	if err != nil {
		return err
	}

	inventory, err := a.cfg.LoadInventory()
	if err != nil {
		return err
	}

	var executor adapter.Executor
	if replayPath != "" {
		replay, err := adapter.LoadReplayExecutor(replayPath)
		if err != nil {
			return err
		}
		logging.Component(a.logger, "check").Infof("Replaying recorded output for %d hosts", replay.Hosts())
		executor = replay
	} else {
		ssh, err := a.sshExecutor()
		if err != nil {
			return err
		}
		executor = ssh
	}

	checks := service.NewCheckService(executor, inventory, a.cfg.Execution.MaxConcurrent, a.events,
		logging.Component(a.logger, "check"))

	report, err := checks.Run(ctx, catalog)
	if err != nil {
		return err
	}
	if err := exporter.ExportReport(report, os.Stdout); err != nil {
		return err
	}
	if !report.OK() {
		return errFailed
	}
	return nil
}

func (a *app) sync(ctx context.Context, names []string, all, dryRun bool, format string) error {
	exporter, err := codec.ExporterFor(format)
	if err != nil {
		return err
	}
	if err := a.cfg.ValidateRepository(); err != nil {
		return err
	}

	inventory, err := a.cfg.LoadInventory()
	if err != nil {
		return err
	}

	var devices []domain.Device
	switch {
	case all:
		devices = inventory.Devices()
	case len(names) > 0:
		devices, err = inventory.Select(names)
		if err != nil {
			return err
		}
	default:
		return errors.New("sync: name at least one --device or pass --all")
	}

	opts := []service.SyncOption{
		service.WithEventBus(a.events),
		service.WithLogger(logging.Component(a.logger, "sync")),
	}
	if a.cfg.Journal.Path != "" {
		journal, err := sqlite.New(a.cfg.Journal.Path)
		if err != nil {
			return err
		}
		defer journal.Close()
		opts = append(opts, service.WithJournal(journal))
	}

	repo := gitea.New(gitea.Config{
		URL:     a.cfg.Repository.URL,
		Repo:    a.cfg.Repository.Repo,
		Token:   a.cfg.RepoToken(),
		Timeout: a.cfg.Repository.Timeout.Duration(),
	}, gitea.WithLogger(logging.Component(a.logger, "gitea")))

	engine := service.NewSyncEngine(render.NewTemplateRenderer(a.cfg.Templates.Dir), repo, service.SyncConfig{
		Branch:        a.cfg.Repository.Branch,
		Prefix:        a.cfg.Repository.Prefix,
		SourceSystem:  a.cfg.Repository.SourceSystem,
		Timeout:       a.cfg.Repository.Timeout.Duration(),
		MaxConcurrent: a.cfg.Execution.MaxConcurrent,
	}, opts...)

	outcomes := engine.SyncAll(ctx, devices, service.SyncOptions{DryRun: dryRun})
	if err := exporter.ExportOutcomes(outcomes, os.Stdout); err != nil {
		return err
	}
	for _, o := range outcomes {
		if !o.Success {
			return errFailed
		}
	}
	return nil
}

func (a *app) render(ctx context.Context, name string) error {
	inventory, err := a.cfg.LoadInventory()
	if err != nil {
		return err
	}
	device, ok := inventory.Lookup(name)
	if !ok {
		return fmt.Errorf("device %q not in inventory", name)
	}
	if !device.HasTemplate() {
		return domain.NewSyncError(domain.KindMissingTemplate, fmt.Errorf("device %s has no config template", name))
	}

	content, err := render.NewTemplateRenderer(a.cfg.Templates.Dir).Render(ctx, device)
	if err != nil {
		return err
	}
	fmt.Print(content)
	return nil
}

func (a *app) history(ctx context.Context, device string, limit int, format string) error {
	if a.cfg.Journal.Path == "" {
		return errors.New("history: journal.path is not configured")
	}
	exporter, err := codec.ExporterFor(format)
	if err != nil {
		return err
	}

	journal, err := sqlite.New(a.cfg.Journal.Path)
	if err != nil {
		return err
	}
	defer journal.Close()

	outcomes, err := journal.Recent(ctx, device, limit)
	if err != nil {
		return err
	}
	return exporter.ExportOutcomes(outcomes, os.Stdout)
}

func (a *app) sshExecutor() (*adapter.SSHExecutor, error) {
	creds := a.cfg.Credentials
	key, err := creds.PrivateKey()
	if err != nil {
		return nil, err
	}

	return adapter.NewSSHExecutor(adapter.SSHConfig{
		Credentials: adapter.Credentials{
			Username:   creds.Username,
			Password:   creds.Password(),
			PrivateKey: key,
			Passphrase: creds.Passphrase(),
		},
		KnownHostsPath: creds.KnownHosts,
		ConnectTimeout: a.cfg.Execution.ConnectTimeout.Duration(),
		CommandTimeout: a.cfg.Execution.CommandTimeout.Duration(),
	}, logging.Component(a.logger, "ssh"))
}
