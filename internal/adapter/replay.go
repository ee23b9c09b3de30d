package adapter

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"netintent/internal/domain"
)

// ReplayExecutor answers commands from recorded output instead of a live
// device. Recordings map host name to command to output, where output is
// text or an already-structured document.
type ReplayExecutor struct {
	outputs map[string]map[string]any
}

var _ Executor = (*ReplayExecutor)(nil)

// NewReplayExecutor creates an executor over in-memory recordings
func NewReplayExecutor(outputs map[string]map[string]any) *ReplayExecutor {
	if outputs == nil {
		outputs = make(map[string]map[string]any)
	}
	return &ReplayExecutor{outputs: outputs}
}

// LoadReplayExecutor reads recordings from a YAML file
func LoadReplayExecutor(path string) (*ReplayExecutor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read recordings: %w", err)
	}

	var outputs map[string]map[string]any
	if err := yaml.Unmarshal(data, &outputs); err != nil {
		return nil, fmt.Errorf("parse recordings: %w", err)
	}
	return NewReplayExecutor(outputs), nil
}

// Hosts returns the number of recorded hosts
func (r *ReplayExecutor) Hosts() int {
	return len(r.outputs)
}

// Execute returns the recorded output for each command. An unknown host is
// reported like an unreachable device.
func (r *ReplayExecutor) Execute(ctx context.Context, device domain.Device, commands []string) (domain.RawCommandResult, error) {
	result := domain.RawCommandResult{Host: device.Name}

	recorded, ok := r.outputs[device.Name]
	if !ok {
		return result, domain.NewSyncError(domain.KindConnectionError, fmt.Errorf("no recordings for host %s", device.Name))
	}

	for _, cmd := range commands {
		out := domain.CommandOutput{Command: cmd}
		switch {
		case ctx.Err() != nil:
			out.Err = ctx.Err()
		default:
			if v, ok := recorded[cmd]; ok {
				out.Output = v
			} else {
				out.Err = fmt.Errorf("no recorded output for %q", cmd)
			}
		}
		result.Results = append(result.Results, out)
	}
	return result, nil
}
