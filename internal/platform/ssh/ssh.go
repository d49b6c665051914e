package ssh

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/imamik/lempress/internal/platform/shell"
	"github.com/imamik/lempress/internal/util/retry"
)

const (
	defaultPort        = 22
	defaultDialTimeout = 30 * time.Second
	defaultMaxRetries  = 5
	defaultRetryDelay  = 2 * time.Second
	defaultMaxDelay    = 10 * time.Second
)

// Config holds SSH client configuration.
type Config struct {
	Host       string
	Port       int
	User       string
	PrivateKey []byte

	// KnownHostsPath enables host key verification against an OpenSSH
	// known_hosts file. If empty, host keys are not verified.
	KnownHostsPath string

	// DialTimeout is the timeout for establishing the TCP connection.
	// If zero, defaultDialTimeout is used.
	DialTimeout time.Duration

	// MaxRetries is the maximum number of connection retry attempts.
	// If zero, defaultMaxRetries is used.
	MaxRetries int

	// RetryDelay is the initial delay between retry attempts.
	// If zero, defaultRetryDelay is used.
	RetryDelay time.Duration

	// HostKeyCallback overrides KnownHostsPath when set.
	HostKeyCallback ssh.HostKeyCallback
}

// Client is a shell.Runner that executes commands on a remote host. The
// connection is opened on first use and reused until Close.
type Client struct {
	config *Config
	signer ssh.Signer

	mu     sync.Mutex
	client *ssh.Client
}

var _ shell.Runner = (*Client)(nil)

// NewClient creates a new SSH client and validates the private key.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Host == "" {
		return nil, fmt.Errorf("config host cannot be empty")
	}
	if cfg.User == "" {
		return nil, fmt.Errorf("config user cannot be empty")
	}
	if len(cfg.PrivateKey) == 0 {
		return nil, fmt.Errorf("config private key cannot be empty")
	}

	// Copy config to avoid mutating caller's struct
	configCopy := *cfg
	if configCopy.Port == 0 {
		configCopy.Port = defaultPort
	}
	if configCopy.DialTimeout == 0 {
		configCopy.DialTimeout = defaultDialTimeout
	}
	if configCopy.MaxRetries == 0 {
		configCopy.MaxRetries = defaultMaxRetries
	}
	if configCopy.RetryDelay == 0 {
		configCopy.RetryDelay = defaultRetryDelay
	}
	if configCopy.HostKeyCallback == nil {
		if configCopy.KnownHostsPath != "" {
			cb, err := knownhosts.New(configCopy.KnownHostsPath)
			if err != nil {
				return nil, fmt.Errorf("failed to load known hosts: %w", err)
			}
			configCopy.HostKeyCallback = cb
		} else {
			configCopy.HostKeyCallback = ssh.InsecureIgnoreHostKey() //nolint:gosec // verification is opt-in via KnownHostsPath
		}
	}

	signer, err := ssh.ParsePrivateKey(configCopy.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	return &Client{
		config: &configCopy,
		signer: signer,
	}, nil
}

// Addr returns the host:port the client dials.
func (c *Client) Addr() string {
	return net.JoinHostPort(c.config.Host, strconv.Itoa(c.config.Port))
}

// Run executes cmd in a new session. Environment entries are passed as an
// env prefix since most sshd configurations reject SetEnv.
func (c *Client) Run(ctx context.Context, cmd shell.Command) (shell.Result, error) {
	client, err := c.connect(ctx)
	if err != nil {
		return shell.Result{Code: -1}, err
	}

	session, err := client.NewSession()
	if err != nil {
		c.reset()
		return shell.Result{Code: -1}, fmt.Errorf("failed to create SSH session on %s: %w", c.config.Host, err)
	}
	defer func() { _ = session.Close() }()

	if cmd.Stdin != nil {
		session.Stdin = bytes.NewReader(cmd.Stdin)
	}
	var out bytes.Buffer
	session.Stdout = &out
	session.Stderr = &out

	line := cmd.String()
	done := make(chan error, 1)
	go func() { done <- session.Run(line) }()

	select {
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGKILL)
		_ = session.Close()
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return shell.Result{Output: out.Bytes(), Code: -1}, fmt.Errorf("%w: %s: %w", shell.ErrTimeout, line, ctx.Err())
		}
		return shell.Result{Output: out.Bytes(), Code: -1}, ctx.Err()
	case err := <-done:
		if err == nil {
			return shell.Result{Output: out.Bytes()}, nil
		}
		var exitErr *ssh.ExitError
		if errors.As(err, &exitErr) {
			return shell.Result{Output: out.Bytes(), Code: exitErr.ExitStatus()},
				&shell.ExitError{Command: line, Code: exitErr.ExitStatus(), Output: out.String()}
		}
		return shell.Result{Output: out.Bytes(), Code: -1}, fmt.Errorf("command failed on %s: %w", c.config.Host, err)
	}
}

// Dial opens a connection from the remote host to addr, so local clients
// can reach services bound to the target's loopback or unix sockets.
func (c *Client) Dial(ctx context.Context, network, addr string) (net.Conn, error) {
	client, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	conn, err := client.Dial(network, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s %s via %s: %w", network, addr, c.config.Host, err)
	}
	return conn, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client == nil {
		return nil
	}
	err := c.client.Close()
	c.client = nil
	return err
}

func (c *Client) reset() {
	_ = c.Close()
}

// connect establishes SSH connection with retry logic.
func (c *Client) connect(ctx context.Context) (*ssh.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil {
		return c.client, nil
	}

	config := &ssh.ClientConfig{
		User: c.config.User,
		Auth: []ssh.AuthMethod{
			ssh.PublicKeys(c.signer),
		},
		HostKeyCallback: c.config.HostKeyCallback,
		Timeout:         c.config.DialTimeout,
	}

	addr := c.Addr()
	var client *ssh.Client
	err := retry.WithExponentialBackoff(ctx, func() error {
		var dialErr error
		client, dialErr = ssh.Dial("tcp", addr, config)
		var keyErr *knownhosts.KeyError
		if errors.As(dialErr, &keyErr) {
			return retry.Fatal(dialErr)
		}
		return dialErr
	},
		retry.WithMaxRetries(c.config.MaxRetries),
		retry.WithInitialDelay(c.config.RetryDelay),
		retry.WithMaxDelay(defaultMaxDelay),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to establish SSH connection to %s: %w", addr, err)
	}

	c.client = client
	return client, nil
}
