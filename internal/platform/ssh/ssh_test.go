package ssh

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"io"
	"net"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"

	"github.com/imamik/lempress/internal/platform/shell"
)

func generateTestKey(t *testing.T) []byte {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	block, err := ssh.MarshalPrivateKey(priv, "")
	require.NoError(t, err)
	return pem.EncodeToMemory(block)
}

type execHandler func(command string, stdin []byte) (string, uint32)

type testServer struct {
	addr  string
	conns atomic.Int32
}

func startServer(t *testing.T, handler execHandler) *testServer {
	t.Helper()
	_, hostKey, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	signer, err := ssh.NewSignerFromKey(hostKey)
	require.NoError(t, err)

	cfg := &ssh.ServerConfig{
		PublicKeyCallback: func(ssh.ConnMetadata, ssh.PublicKey) (*ssh.Permissions, error) { return nil, nil },
	}
	cfg.AddHostKey(signer)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	srv := &testServer{addr: ln.Addr().String()}
	go func() {
		for {
			nc, err := ln.Accept()
			if err != nil {
				return
			}
			srv.conns.Add(1)
			go serveConn(nc, cfg, handler)
		}
	}()
	return srv
}

func serveConn(nc net.Conn, cfg *ssh.ServerConfig, handler execHandler) {
	_, chans, reqs, err := ssh.NewServerConn(nc, cfg)
	if err != nil {
		return
	}
	go ssh.DiscardRequests(reqs)
	for nch := range chans {
		if nch.ChannelType() == "direct-tcpip" {
			// Forwarded connections echo what they receive.
			ch, chReqs, err := nch.Accept()
			if err != nil {
				continue
			}
			go ssh.DiscardRequests(chReqs)
			go func() {
				defer func() { _ = ch.Close() }()
				_, _ = io.Copy(ch, ch)
			}()
			continue
		}
		if nch.ChannelType() != "session" {
			_ = nch.Reject(ssh.UnknownChannelType, "unsupported")
			continue
		}
		ch, chReqs, err := nch.Accept()
		if err != nil {
			continue
		}
		go func() {
			defer func() { _ = ch.Close() }()
			for req := range chReqs {
				if req.Type != "exec" {
					_ = req.Reply(false, nil)
					continue
				}
				var payload struct{ Command string }
				_ = ssh.Unmarshal(req.Payload, &payload)
				_ = req.Reply(true, nil)

				stdin, _ := io.ReadAll(ch)
				out, code := handler(payload.Command, stdin)
				_, _ = ch.Write([]byte(out))
				_, _ = ch.SendRequest("exit-status", false, ssh.Marshal(struct{ Status uint32 }{code}))
				return
			}
		}()
	}
}

func clientFor(t *testing.T, srv *testServer) *Client {
	t.Helper()
	host, portStr, err := net.SplitHostPort(srv.addr)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	c, err := NewClient(&Config{
		Host:       host,
		Port:       port,
		User:       "root",
		PrivateKey: generateTestKey(t),
		MaxRetries: 1,
		RetryDelay: time.Millisecond,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestNewClient_Defaults(t *testing.T) {
	t.Parallel()
	cfg := &Config{Host: "192.0.2.10", User: "root", PrivateKey: generateTestKey(t)}

	client, err := NewClient(cfg)
	require.NoError(t, err)

	assert.Equal(t, defaultPort, client.config.Port)
	assert.Equal(t, defaultDialTimeout, client.config.DialTimeout)
	assert.Equal(t, defaultMaxRetries, client.config.MaxRetries)
	assert.Equal(t, defaultRetryDelay, client.config.RetryDelay)
	assert.Equal(t, "192.0.2.10:22", client.Addr())
	assert.Zero(t, cfg.Port, "caller config must not be mutated")
}

func TestNewClient_Validation(t *testing.T) {
	t.Parallel()
	key := generateTestKey(t)
	tests := []struct {
		name string
		cfg  *Config
		want string
	}{
		{"nil", nil, "config cannot be nil"},
		{"empty host", &Config{User: "root", PrivateKey: key}, "config host cannot be empty"},
		{"empty user", &Config{Host: "h", PrivateKey: key}, "config user cannot be empty"},
		{"empty key", &Config{Host: "h", User: "root"}, "config private key cannot be empty"},
		{"invalid key", &Config{Host: "h", User: "root", PrivateKey: []byte("nope")}, "failed to parse private key"},
		{"missing known hosts", &Config{Host: "h", User: "root", PrivateKey: key, KnownHostsPath: "/nonexistent/known_hosts"}, "failed to load known hosts"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewClient(tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestClient_Run(t *testing.T) {
	t.Parallel()
	var lastCommand atomic.Value
	srv := startServer(t, func(command string, stdin []byte) (string, uint32) {
		lastCommand.Store(command)
		if len(stdin) > 0 {
			return "got:" + string(stdin), 0
		}
		return "ok\n", 0
	})
	c := clientFor(t, srv)
	ctx := context.Background()

	res, err := c.Run(ctx, shell.Cmd("systemctl", "is-active", "nginx"))
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Text())
	assert.Equal(t, "systemctl is-active nginx", lastCommand.Load())

	res, err = c.Run(ctx, shell.Cmd("install", "-m", "0640", "/dev/stdin", "/tmp/x").WithStdin([]byte("secret")))
	require.NoError(t, err)
	assert.Equal(t, "got:secret", res.Text())
	assert.NotContains(t, lastCommand.Load(), "secret")

	_, err = c.Run(ctx, shell.Cmd("apt-get", "update").WithEnv("DEBIAN_FRONTEND=noninteractive"))
	require.NoError(t, err)
	assert.Equal(t, "env DEBIAN_FRONTEND=noninteractive apt-get update", lastCommand.Load())

	assert.Equal(t, int32(1), srv.conns.Load(), "connection is reused")
}

func TestClient_RunExitCode(t *testing.T) {
	t.Parallel()
	srv := startServer(t, func(string, []byte) (string, uint32) {
		return "inactive\n", 3
	})
	c := clientFor(t, srv)

	res, err := c.Run(context.Background(), shell.Cmd("systemctl", "is-active", "fail2ban"))
	require.Error(t, err)
	assert.Equal(t, 3, res.Code)
	assert.Equal(t, 3, shell.ExitCode(err))
	assert.Contains(t, err.Error(), "inactive")
}

func TestClient_DialFailure(t *testing.T) {
	t.Parallel()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	host, portStr, _ := net.SplitHostPort(addr)
	port, _ := strconv.Atoi(portStr)
	c, err := NewClient(&Config{
		Host: host, Port: port, User: "root", PrivateKey: generateTestKey(t),
		MaxRetries: 1, RetryDelay: time.Millisecond,
	})
	require.NoError(t, err)

	_, err = c.Run(context.Background(), shell.Cmd("true"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to establish SSH connection")
}

func TestClient_Dial(t *testing.T) {
	t.Parallel()
	srv := startServer(t, func(string, []byte) (string, uint32) { return "", 0 })
	c := clientFor(t, srv)

	conn, err := c.Dial(context.Background(), "tcp", "127.0.0.1:3306")
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	_, err = conn.Write([]byte("ping"))
	require.NoError(t, err)
	buf := make([]byte, 4)
	_, err = io.ReadFull(conn, buf)
	require.NoError(t, err)
	assert.Equal(t, "ping", string(buf))
	assert.Equal(t, int32(1), srv.conns.Load())
}
