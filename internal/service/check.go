package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"netintent/internal/adapter"
	"netintent/internal/assertion"
	"netintent/internal/domain"
	"netintent/internal/extractor"
)

// CheckService runs a test catalog against live devices
type CheckService struct {
	executor      adapter.Executor
	inventory     *domain.Inventory
	events        *EventBus
	maxConcurrent int
	now           func() time.Time
	log           *logrus.Entry
}

// NewCheckService creates a runner. Hosts missing from the inventory are
// dialed by name.
func NewCheckService(executor adapter.Executor, inventory *domain.Inventory, maxConcurrent int, events *EventBus, log *logrus.Entry) *CheckService {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	if log == nil {
		log = logrus.WithField("component", "check")
	}
	return &CheckService{
		executor:      executor,
		inventory:     inventory,
		events:        events,
		maxConcurrent: maxConcurrent,
		now:           time.Now,
		log:           log,
	}
}

// hostJob is one poll: one class on one host with that host's parameter sets
type hostJob struct {
	class  assertion.Class
	label  string
	host   string
	params []domain.Params
}

// Run evaluates every catalog entry. Results follow catalog order, then host
// order of first appearance, then parameter order.
func (s *CheckService) Run(ctx context.Context, catalog *assertion.Catalog) (*domain.CheckReport, error) {
	report := &domain.CheckReport{StartedAt: s.now()}

	jobs := planJobs(catalog)
	results := make([][]domain.CheckResult, len(jobs))

	var g errgroup.Group
	g.SetLimit(s.maxConcurrent)
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			results[i] = s.runHost(ctx, job)
			return nil
		})
	}
	g.Wait()

	for _, rs := range results {
		for _, r := range rs {
			report.Add(r)
		}
	}
	report.FinishedAt = s.now()

	s.log.WithFields(logrus.Fields{"passed": report.Passed, "failed": report.Failed}).Info("check run completed")
	s.events.Publish(Event{Type: EventCheckCompleted, Payload: report})

	return report, ctx.Err()
}

func planJobs(catalog *assertion.Catalog) []hostJob {
	var jobs []hostJob
	for _, entry := range catalog.Entries {
		class, ok := assertion.LookupClass(entry.TestClass)
		if !ok {
			continue
		}

		byHost := make(map[string]int)
		start := len(jobs)
		for _, p := range entry.TestData {
			host := p.Host()
			idx, seen := byHost[host]
			if !seen {
				idx = len(jobs) - start
				byHost[host] = idx
				jobs = append(jobs, hostJob{class: class, label: entry.Label, host: host})
			}
			jobs[start+idx].params = append(jobs[start+idx].params, p)
		}
	}
	return jobs
}

func (s *CheckService) runHost(ctx context.Context, job hostJob) []domain.CheckResult {
	log := s.log.WithFields(logrus.Fields{"class": job.class.Name, "host": job.host})

	ex, err := extractor.New(job.class.Extractor, job.params)
	if err != nil {
		return s.failHost(job, err, log)
	}

	device := s.inventory.Resolve(job.host)
	raw, err := s.executor.Execute(ctx, device, ex.Commands())
	if err != nil {
		return s.failHost(job, err, log)
	}

	set := ex.Transform(raw)
	log.WithField("records", len(set)).Debug("records extracted")

	var results []domain.CheckResult
	for _, p := range job.params {
		results = append(results, job.class.Evaluate(job.label, set, p)...)
	}
	return results
}

func (s *CheckService) failHost(job hostJob, err error, log *logrus.Entry) []domain.CheckResult {
	log.WithError(err).Warn("host could not be polled")
	s.events.Publish(Event{Type: EventHostFailed, Payload: map[string]string{
		"class": job.class.Name,
		"host":  job.host,
		"error": err.Error(),
	}})

	var results []domain.CheckResult
	for _, p := range job.params {
		results = append(results, job.class.FailAll(job.label, p, err.Error())...)
	}
	return results
}
