package adapter

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"fmt"
	"io"
	"net"
	"strconv"
	"testing"
	"time"

	"golang.org/x/crypto/ssh"

	"netintent/internal/domain"
	"netintent/internal/logging"
)

const (
	testUser     = "admin"
	testPassword = "NokiaSrl1!"
)

// startSSHServer runs an in-process SSH server answering exec requests from
// outputs. "hang" never answers; unknown commands exit with status 1.
func startSSHServer(t *testing.T, outputs map[string]string) domain.Device {
	t.Helper()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate host key: %v", err)
	}
	signer, err := ssh.NewSignerFromKey(priv)
	if err != nil {
		t.Fatalf("host signer: %v", err)
	}

	config := &ssh.ServerConfig{
		PasswordCallback: func(c ssh.ConnMetadata, pass []byte) (*ssh.Permissions, error) {
			if c.User() == testUser && string(pass) == testPassword {
				return nil, nil
			}
			return nil, fmt.Errorf("access denied")
		},
	}
	config.AddHostKey(signer)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go serveSSH(conn, config, outputs)
		}
	}()

	host, port, _ := net.SplitHostPort(ln.Addr().String())
	p, _ := strconv.Atoi(port)
	return domain.Device{Name: "leaf1", Address: host, Port: p}
}

func serveSSH(conn net.Conn, config *ssh.ServerConfig, outputs map[string]string) {
	_, chans, reqs, err := ssh.NewServerConn(conn, config)
	if err != nil {
		conn.Close()
		return
	}
	go ssh.DiscardRequests(reqs)

	for nc := range chans {
		if nc.ChannelType() != "session" {
			nc.Reject(ssh.UnknownChannelType, "unsupported")
			continue
		}
		ch, chReqs, err := nc.Accept()
		if err != nil {
			continue
		}
		go func() {
			for req := range chReqs {
				if req.Type != "exec" {
					req.Reply(false, nil)
					continue
				}
				var payload struct{ Command string }
				ssh.Unmarshal(req.Payload, &payload)
				req.Reply(true, nil)

				if payload.Command == "hang" {
					continue
				}

				out, ok := outputs[payload.Command]
				status := uint32(0)
				if !ok {
					out = "Error: unknown command\n"
					status = 1
				}
				io.WriteString(ch, out)
				ch.SendRequest("exit-status", false, ssh.Marshal(struct{ Status uint32 }{status}))
				ch.Close()
			}
		}()
	}
}

func newTestExecutor(t *testing.T, creds Credentials, commandTimeout time.Duration) *SSHExecutor {
	t.Helper()
	exec, err := NewSSHExecutor(SSHConfig{
		Credentials:    creds,
		ConnectTimeout: 2 * time.Second,
		CommandTimeout: commandTimeout,
	}, logging.Discard())
	if err != nil {
		t.Fatalf("NewSSHExecutor() error = %v", err)
	}
	return exec
}

func TestSSHExecutorRunsCommandsInOrder(t *testing.T) {
	device := startSSHServer(t, map[string]string{
		"sr_cli -d -- ping -c 4 -W 5 network-instance default 10.0.0.2": "4 packets transmitted, 4 received\n",
		"sr_cli -d -- show version":                                       "v24.3.1\n",
	})
	device.CommandPrefix = "sr_cli -d -- "

	exec := newTestExecutor(t, Credentials{Username: testUser, Password: testPassword}, 2*time.Second)

	cmds := []string{
		"ping -c 4 -W 5 network-instance default 10.0.0.2",
		"show bogus",
		"show version",
	}
	res, err := exec.Execute(context.Background(), device, cmds)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if res.Host != "leaf1" || len(res.Results) != len(cmds) {
		t.Fatalf("unexpected result %+v", res)
	}
	for i, cmd := range cmds {
		if res.Results[i].Command != cmd {
			t.Errorf("result %d command = %q, want %q", i, res.Results[i].Command, cmd)
		}
	}
	if res.Results[0].Text() != "4 packets transmitted, 4 received\n" {
		t.Errorf("ping output = %q", res.Results[0].Text())
	}
	if res.Results[1].Err != nil || res.Results[1].Text() != "Error: unknown command\n" {
		t.Errorf("non-zero exit should keep output: %+v", res.Results[1])
	}
	if res.Results[2].Text() != "v24.3.1\n" {
		t.Errorf("version output = %q", res.Results[2].Text())
	}
}

func TestSSHExecutorCommandTimeoutDoesNotAbortBatch(t *testing.T) {
	device := startSSHServer(t, map[string]string{"show version": "v24.3.1\n"})
	exec := newTestExecutor(t, Credentials{Username: testUser, Password: testPassword}, 200*time.Millisecond)

	res, err := exec.Execute(context.Background(), device, []string{"hang", "show version"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.Results[0].Err == nil {
		t.Error("hanging command should time out")
	}
	if res.Results[1].Err != nil || res.Results[1].Text() != "v24.3.1\n" {
		t.Errorf("command after timeout = %+v", res.Results[1])
	}
}

func TestSSHExecutorConnectionErrors(t *testing.T) {
	t.Run("bad password", func(t *testing.T) {
		device := startSSHServer(t, nil)
		exec := newTestExecutor(t, Credentials{Username: testUser, Password: "wrong"}, time.Second)

		_, err := exec.Execute(context.Background(), device, []string{"show version"})
		if domain.KindOf(err) != domain.KindConnectionError {
			t.Errorf("error = %v, want connection error", err)
		}
	})

	t.Run("nothing listening", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("listen: %v", err)
		}
		addr := ln.Addr().(*net.TCPAddr)
		ln.Close()

		exec := newTestExecutor(t, Credentials{Username: testUser, Password: testPassword}, time.Second)
		_, err = exec.Execute(context.Background(), domain.Device{Name: "leaf1", Address: "127.0.0.1", Port: addr.Port}, []string{"show version"})
		if domain.KindOf(err) != domain.KindConnectionError {
			t.Errorf("error = %v, want connection error", err)
		}
	})
}

func TestBuildSSHConfig(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	block, err := ssh.MarshalPrivateKey(priv, "")
	if err != nil {
		t.Fatalf("marshal key: %v", err)
	}
	keyPEM := pem.EncodeToMemory(block)

	tests := []struct {
		name      string
		creds     Credentials
		wantAuth  int
		wantError bool
	}{
		{"password", Credentials{Username: "admin", Password: "pw"}, 1, false},
		{"key", Credentials{Username: "admin", PrivateKey: keyPEM}, 1, false},
		{"key and password", Credentials{Username: "admin", PrivateKey: keyPEM, Password: "pw"}, 2, false},
		{"no username", Credentials{Password: "pw"}, 0, true},
		{"no secret", Credentials{Username: "admin"}, 0, true},
		{"bad key", Credentials{Username: "admin", PrivateKey: []byte("not a key")}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := buildSSHConfig(SSHConfig{Credentials: tt.creds, ConnectTimeout: time.Second})
			if (err != nil) != tt.wantError {
				t.Fatalf("buildSSHConfig() error = %v, wantError %v", err, tt.wantError)
			}
			if tt.wantError {
				return
			}
			if cfg.User != "admin" || len(cfg.Auth) != tt.wantAuth {
				t.Errorf("config user=%q auth=%d, want admin/%d", cfg.User, len(cfg.Auth), tt.wantAuth)
			}
		})
	}
}

func TestBuildSSHConfigKnownHosts(t *testing.T) {
	_, err := buildSSHConfig(SSHConfig{
		Credentials:    Credentials{Username: "admin", Password: "pw"},
		KnownHostsPath: "/nonexistent/known_hosts",
	})
	if err == nil {
		t.Error("expected error for missing known_hosts file")
	}
}
