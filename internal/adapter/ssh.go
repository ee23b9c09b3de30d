package adapter

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/ssh"

	"netintent/internal/domain"
)

// Default SSH timeouts
const (
	DefaultConnectTimeout = 10 * time.Second
	DefaultCommandTimeout = 30 * time.Second
)

// Credentials authenticate SSH sessions. A private key takes precedence; a
// password, if also set, is offered as a second method.
type Credentials struct {
	Username   string
	Password   string
	PrivateKey []byte
	Passphrase string
}

// SSHConfig holds configuration for the SSH executor
type SSHConfig struct {
	Credentials Credentials
	// KnownHostsPath enables host key verification when set
	KnownHostsPath string
	ConnectTimeout time.Duration
	CommandTimeout time.Duration
}

// SSHExecutor runs device commands over SSH, one session per command
type SSHExecutor struct {
	config         *ssh.ClientConfig
	connectTimeout time.Duration
	commandTimeout time.Duration
	log            *logrus.Entry
}

var _ Executor = (*SSHExecutor)(nil)

// NewSSHExecutor validates credentials and builds the client configuration
func NewSSHExecutor(cfg SSHConfig, log *logrus.Entry) (*SSHExecutor, error) {
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}
	if cfg.CommandTimeout == 0 {
		cfg.CommandTimeout = DefaultCommandTimeout
	}
	if log == nil {
		log = logrus.WithField("component", "ssh")
	}

	config, err := buildSSHConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build SSH config: %w", err)
	}

	return &SSHExecutor{
		config:         config,
		connectTimeout: cfg.ConnectTimeout,
		commandTimeout: cfg.CommandTimeout,
		log:            log,
	}, nil
}

// Execute connects to the device and runs each command in order. The
// device's command prefix is prepended on the wire but not recorded.
func (e *SSHExecutor) Execute(ctx context.Context, device domain.Device, commands []string) (domain.RawCommandResult, error) {
	result := domain.RawCommandResult{Host: device.Name}
	log := e.log.WithFields(logrus.Fields{"host": device.Name, "target": device.Target()})

	client, err := e.connect(ctx, device.Target())
	if err != nil {
		return result, domain.NewSyncError(domain.KindConnectionError, err)
	}
	defer client.Close()

	for _, cmd := range commands {
		out := domain.CommandOutput{Command: cmd}

		if err := ctx.Err(); err != nil {
			out.Err = err
			result.Results = append(result.Results, out)
			continue
		}

		started := time.Now()
		text, err := e.runCommand(ctx, client, device.CommandPrefix+cmd)
		if err != nil {
			log.WithError(err).WithField("command", cmd).Warn("command failed")
			out.Err = err
		} else {
			out.Output = text
		}
		log.WithFields(logrus.Fields{"command": cmd, "duration": time.Since(started)}).Debug("command executed")

		result.Results = append(result.Results, out)
	}

	return result, nil
}
