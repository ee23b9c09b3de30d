package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"netintent/internal/domain"
	"netintent/internal/repository"
)

// fakeRenderer returns fixed content per device
type fakeRenderer struct {
	content map[string]string
	err     error
	calls   int
	mu      sync.Mutex
}

func (r *fakeRenderer) Render(ctx context.Context, device domain.Device) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return "", r.err
	}
	return r.content[device.Name], nil
}

type storedFile struct {
	content string
	sha     string
}

// fakeRepo is an in-memory content repository enforcing revision tokens
type fakeRepo struct {
	mu       sync.Mutex
	files    map[string]storedFile
	revision int
	gets     int
	writes   []repository.WriteRequest
	getErr   error
	writeErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{files: make(map[string]storedFile)}
}

func (r *fakeRepo) put(path, content string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revision++
	r.files[path] = storedFile{content: content, sha: fmt.Sprintf("sha%d", r.revision)}
}

func (r *fakeRepo) Get(ctx context.Context, path, ref string) (domain.RemoteFileState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gets++
	if r.getErr != nil {
		return domain.RemoteFileState{}, r.getErr
	}
	f, ok := r.files[path]
	if !ok {
		return domain.RemoteFileState{Path: path}, nil
	}
	return domain.RemoteFileState{Path: path, Exists: true, Content: f.content, RevisionToken: f.sha}, nil
}

func (r *fakeRepo) Write(ctx context.Context, req repository.WriteRequest) (repository.WriteResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes = append(r.writes, req)
	if r.writeErr != nil {
		return repository.WriteResult{}, r.writeErr
	}

	f, exists := r.files[req.Path]
	switch {
	case !req.IsUpdate() && exists:
		return repository.WriteResult{}, domain.NewRepositoryError(422, "file already exists")
	case req.IsUpdate() && (!exists || f.sha != req.RevisionToken):
		return repository.WriteResult{}, domain.NewRepositoryError(409, "sha does not match")
	}

	r.revision++
	sha := fmt.Sprintf("sha%d", r.revision)
	r.files[req.Path] = storedFile{content: req.Content, sha: sha}
	status := 200
	if !req.IsUpdate() {
		status = 201
	}
	return repository.WriteResult{Status: status, CommitRef: "https://git.example/commit/" + sha}, nil
}

func (r *fakeRepo) writeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.writes)
}

// fakeJournal collects outcomes
type fakeJournal struct {
	mu       sync.Mutex
	outcomes []domain.SyncOutcome
	err      error
}

func (j *fakeJournal) Record(ctx context.Context, outcome domain.SyncOutcome) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.err != nil {
		return j.err
	}
	j.outcomes = append(j.outcomes, outcome)
	return nil
}

func (j *fakeJournal) Recent(ctx context.Context, device string, limit int) ([]domain.SyncOutcome, error) {
	return nil, errors.New("not implemented")
}

func (j *fakeJournal) Close() error {
	return nil
}

// fakeExecutor answers commands from a per-host table
type fakeExecutor struct {
	mu      sync.Mutex
	outputs map[string]map[string]any
	failing map[string]error
	calls   map[string][]string
}

func (e *fakeExecutor) Execute(ctx context.Context, device domain.Device, commands []string) (domain.RawCommandResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.calls == nil {
		e.calls = make(map[string][]string)
	}
	e.calls[device.Name] = append(e.calls[device.Name], commands...)

	if err := e.failing[device.Name]; err != nil {
		return domain.RawCommandResult{Host: device.Name}, domain.NewSyncError(domain.KindConnectionError, err)
	}

	res := domain.RawCommandResult{Host: device.Name}
	for _, cmd := range commands {
		out := domain.CommandOutput{Command: cmd}
		if v, ok := e.outputs[device.Name][cmd]; ok {
			out.Output = v
		} else {
			out.Err = fmt.Errorf("unexpected command %q", cmd)
		}
		res.Results = append(res.Results, out)
	}
	return res, nil
}
