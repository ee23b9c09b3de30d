package adapter

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// connect establishes an SSH connection bounded by the connect timeout and ctx
func (e *SSHExecutor) connect(ctx context.Context, addr string) (*ssh.Client, error) {
	dialer := &net.Dialer{
		Timeout: e.connectTimeout,
	}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", addr, err)
	}

	// the handshake is bounded by the same timeout as the dial
	if err := conn.SetDeadline(time.Now().Add(e.connectTimeout)); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to set deadline: %w", err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, e.config)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to establish SSH connection: %w", err)
	}
	conn.SetDeadline(time.Time{})

	return ssh.NewClient(sshConn, chans, reqs), nil
}

// buildSSHConfig creates an SSH client config from credentials
func buildSSHConfig(cfg SSHConfig) (*ssh.ClientConfig, error) {
	creds := cfg.Credentials
	if creds.Username == "" {
		return nil, errors.New("username is required")
	}

	var auth []ssh.AuthMethod

	if len(creds.PrivateKey) > 0 {
		var (
			signer ssh.Signer
			err    error
		)
		if creds.Passphrase != "" {
			signer, err = ssh.ParsePrivateKeyWithPassphrase(creds.PrivateKey, []byte(creds.Passphrase))
		} else {
			signer, err = ssh.ParsePrivateKey(creds.PrivateKey)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}
		auth = append(auth, ssh.PublicKeys(signer))
	}

	if creds.Password != "" {
		auth = append(auth, ssh.Password(creds.Password))
	}

	if len(auth) == 0 {
		return nil, errors.New("no password or private key configured")
	}

	hostKeyCallback := ssh.InsecureIgnoreHostKey()
	if cfg.KnownHostsPath != "" {
		cb, err := knownhosts.New(cfg.KnownHostsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load known hosts: %w", err)
		}
		hostKeyCallback = cb
	}

	return &ssh.ClientConfig{
		User:            creds.Username,
		Auth:            auth,
		HostKeyCallback: hostKeyCallback,
		Timeout:         cfg.ConnectTimeout,
	}, nil
}

// runCommand executes a command in its own session. A non-zero exit status
// still returns the output; ping exits non-zero when no replies arrive.
func (e *SSHExecutor) runCommand(ctx context.Context, client *ssh.Client, cmd string) (string, error) {
	session, err := client.NewSession()
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	defer session.Close()

	type result struct {
		output []byte
		err    error
	}
	done := make(chan result, 1)

	go func() {
		output, err := session.CombinedOutput(cmd)
		done <- result{output: output, err: err}
	}()

	timer := time.NewTimer(e.commandTimeout)
	defer timer.Stop()

	select {
	case res := <-done:
		if res.err != nil {
			var exitErr *ssh.ExitError
			if errors.As(res.err, &exitErr) {
				return string(res.output), nil
			}
			return "", fmt.Errorf("command failed: %w", res.err)
		}
		return string(res.output), nil
	case <-timer.C:
		session.Signal(ssh.SIGKILL)
		return "", fmt.Errorf("command timeout after %s", e.commandTimeout)
	case <-ctx.Done():
		session.Signal(ssh.SIGKILL)
		return "", ctx.Err()
	}
}
