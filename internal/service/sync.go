package service

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"netintent/internal/domain"
	"netintent/internal/render"
	"netintent/internal/repository"
)

// Sync defaults
const (
	DefaultBranch        = "main"
	DefaultPrefix        = "netbox-data-source"
	DefaultSourceSystem  = "NetBox"
	DefaultSyncTimeout   = 30 * time.Second
	DefaultMaxConcurrent = 5
	commitTimeFormat     = "2006-01-02 15:04:05"
	diffContextLines     = 3
)

// SyncConfig controls where and how intended configuration is stored
type SyncConfig struct {
	Branch        string
	Prefix        string
	SourceSystem  string
	Timeout       time.Duration
	MaxConcurrent int
}

// SyncOptions are per-invocation switches
type SyncOptions struct {
	DryRun bool
}

// SyncEngine renders device configuration and stores it in the content
// repository when it changed. Each Sync is a single attempt with no retry.
type SyncEngine struct {
	renderer render.Renderer
	repo     repository.ContentRepository
	journal  repository.Journal
	events   *EventBus
	cfg      SyncConfig
	now      func() time.Time
	newID    func() string
	log      *logrus.Entry
}

// SyncOption configures a SyncEngine
type SyncOption func(*SyncEngine)

// WithJournal records every outcome
func WithJournal(j repository.Journal) SyncOption {
	return func(e *SyncEngine) {
		e.journal = j
	}
}

// WithEventBus publishes every outcome
func WithEventBus(bus *EventBus) SyncOption {
	return func(e *SyncEngine) {
		e.events = bus
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) SyncOption {
	return func(e *SyncEngine) {
		e.now = now
	}
}

// WithLogger sets the logger
func WithLogger(entry *logrus.Entry) SyncOption {
	return func(e *SyncEngine) {
		e.log = entry
	}
}

// NewSyncEngine creates a sync engine, applying defaults to cfg
func NewSyncEngine(renderer render.Renderer, repo repository.ContentRepository, cfg SyncConfig, opts ...SyncOption) *SyncEngine {
	if cfg.Branch == "" {
		cfg.Branch = DefaultBranch
	}
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultPrefix
	}
	if cfg.SourceSystem == "" {
		cfg.SourceSystem = DefaultSourceSystem
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultSyncTimeout
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = DefaultMaxConcurrent
	}

	e := &SyncEngine{
		renderer: renderer,
		repo:     repo,
		cfg:      cfg,
		now:      time.Now,
		newID:    uuid.NewString,
		log:      logrus.WithField("component", "sync"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Path returns the repository path holding a device's intended configuration
func (e *SyncEngine) Path(device string) string {
	return path.Join(e.cfg.Prefix, "intended", device+".cfg")
}

// CommitMessage formats the commit message for a device at t
func CommitMessage(sourceSystem, device string, t time.Time) string {
	return fmt.Sprintf("%s: %s - %s", sourceSystem, device, t.Format(commitTimeFormat))
}

// Decide compares the stored file with the rendered content. Content equal
// after trimming surrounding whitespace needs no write.
func Decide(state domain.RemoteFileState, rendered domain.RenderedConfig) domain.SyncDecision {
	if !state.Exists {
		return domain.SyncDecision{Kind: domain.DecisionCreate}
	}
	if strings.TrimSpace(state.Content) == strings.TrimSpace(rendered.Content) {
		return domain.SyncDecision{Kind: domain.DecisionNoOp}
	}
	return domain.SyncDecision{Kind: domain.DecisionUpdate, RevisionToken: state.RevisionToken}
}

// UnifiedDiff renders the change from current to next for display
func UnifiedDiff(filePath, current, next string) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(current),
		B:        difflib.SplitLines(next),
		FromFile: filePath + " (current)",
		ToFile:   filePath + " (new)",
		Context:  diffContextLines,
	})
	if err != nil {
		return ""
	}
	return diff
}

// Sync runs one render, fetch, decide and write attempt for device. Failures
// are reported in the outcome, never as a Go error.
func (e *SyncEngine) Sync(ctx context.Context, device domain.Device, opts SyncOptions) domain.SyncOutcome {
	out := domain.SyncOutcome{
		ID:        e.newID(),
		Device:    device.Name,
		DryRun:    opts.DryRun,
		StartedAt: e.now(),
	}
	log := e.log.WithField("device", device.Name)
	log.WithFields(logrus.Fields{"site": device.Site, "platform": device.Platform, "template": device.Template}).Info("sync started")

	e.run(ctx, device, opts, &out, log)

	out.FinishedAt = e.now()
	e.finish(ctx, out, log)
	return out
}

func (e *SyncEngine) run(ctx context.Context, device domain.Device, opts SyncOptions, out *domain.SyncOutcome, log *logrus.Entry) {
	if !device.HasTemplate() {
		out.Fail(domain.NewSyncError(domain.KindMissingTemplate, fmt.Errorf("device %s has no config template", device.Name)))
		return
	}

	content, err := e.renderer.Render(ctx, device)
	if err != nil {
		out.Fail(domain.NewSyncError(domain.KindRenderError, err))
		return
	}
	rendered := domain.NewRenderedConfig(device.Name, content)
	out.LineCount = rendered.LineCount
	log.WithField("lines", rendered.LineCount).Info("configuration rendered")

	out.Path = e.Path(device.Name)
	log = log.WithField("path", out.Path)

	getCtx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	state, err := e.repo.Get(getCtx, out.Path, e.cfg.Branch)
	cancel()
	if err != nil {
		out.Fail(domain.AsSyncError(err, domain.KindConnectionError))
		return
	}

	out.Decision = Decide(state, rendered)
	switch out.Decision.Kind {
	case domain.DecisionNoOp:
		log.Info("stored configuration is identical, nothing to commit")
	case domain.DecisionCreate:
		log.Info("file does not exist, it will be created")
	case domain.DecisionUpdate:
		out.Diff = UnifiedDiff(out.Path, state.Content, rendered.Content)
		log.Info("differences detected")
		for _, line := range strings.Split(strings.TrimRight(out.Diff, "\n"), "\n") {
			log.Info(line)
		}
	}

	if !out.Decision.RequiresWrite() {
		out.Skip()
		return
	}

	out.Message = CommitMessage(e.cfg.SourceSystem, device.Name, e.now())
	if opts.DryRun {
		log.Warn("dry run, no commit made")
		out.Skip()
		return
	}

	writeCtx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	res, err := e.repo.Write(writeCtx, repository.WriteRequest{
		Path:          out.Path,
		Content:       rendered.Content,
		Message:       out.Message,
		Branch:        e.cfg.Branch,
		RevisionToken: out.Decision.RevisionToken,
	})
	cancel()
	if err != nil {
		out.Fail(domain.AsSyncError(err, domain.KindConnectionError))
		return
	}

	out.Commit(res.CommitRef)
	log.WithFields(logrus.Fields{"message": out.Message, "commit": res.CommitRef}).Info("commit created")
}

func (e *SyncEngine) finish(ctx context.Context, out domain.SyncOutcome, log *logrus.Entry) {
	event := EventSyncSkipped
	switch out.Stage {
	case domain.StageCommitted:
		event = EventSyncCommitted
	case domain.StageFailed:
		event = EventSyncFailed
		log.WithError(out.Err).Error("sync failed")
	}

	if e.journal != nil {
		if err := e.journal.Record(context.WithoutCancel(ctx), out); err != nil {
			log.WithError(err).Warn("failed to record sync outcome")
		}
	}
	e.events.Publish(Event{Type: event, Payload: out})
}

// SyncAll syncs devices concurrently and returns outcomes in input order
func (e *SyncEngine) SyncAll(ctx context.Context, devices []domain.Device, opts SyncOptions) []domain.SyncOutcome {
	outcomes := make([]domain.SyncOutcome, len(devices))

	var g errgroup.Group
	g.SetLimit(e.cfg.MaxConcurrent)
	for i, device := range devices {
		i, device := i, device
		g.Go(func() error {
			outcomes[i] = e.Sync(ctx, device, opts)
			return nil
		})
	}
	g.Wait()

	return outcomes
}
