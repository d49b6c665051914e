// Package mysql manages per-site MariaDB/MySQL databases and users over an
// administrative connection.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"regexp"

	"github.com/go-sql-driver/mysql"

	"github.com/imamik/lempress/internal/provisioning"
)

// tunnelNet is the driver network name registered for dialing through a runner.
const tunnelNet = "lempress-tunnel"

// userHosts are the account hosts created for every site user. MySQL treats
// socket and TCP loopback connections as different hosts.
var userHosts = []string{"localhost", "127.0.0.1"}

var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

const (
	maxDatabaseLen = 64
	maxUserLen     = 32
)

// DialFunc opens a connection to the database server, for example through
// an SSH tunnel.
type DialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// Client is a provisioning.Database backed by database/sql.
type Client struct {
	db *sql.DB
}

var _ provisioning.Database = (*Client)(nil)

// Open connects with dsn. When dial is non-nil every connection goes through it.
func Open(dsn string, dial DialFunc) (*Client, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database DSN: %w", err)
	}
	// Account statements cannot take server-side placeholders.
	cfg.InterpolateParams = true
	if dial != nil {
		network := cfg.Net
		mysql.RegisterDialContext(tunnelNet, func(ctx context.Context, addr string) (net.Conn, error) {
			return dial(ctx, network, addr)
		})
		cfg.Net = tunnelNet
	}
	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connector: %w", err)
	}
	return New(sql.OpenDB(connector)), nil
}

// New wraps an existing handle.
func New(db *sql.DB) *Client {
	return &Client{db: db}
}

func (c *Client) Close() error {
	return c.db.Close()
}

// Available reports whether the server accepts the administrative
// connection. A refused or missing socket means no server is running and is
// not an error; a server that answers with an error is.
func (c *Client) Available(ctx context.Context) (bool, error) {
	err := c.db.PingContext(ctx)
	if err == nil {
		return true, nil
	}
	var serverErr *mysql.MySQLError
	if errors.As(err, &serverErr) || ctx.Err() != nil {
		return false, fmt.Errorf("failed to connect to database server: %w", err)
	}
	return false, nil
}

// Ping verifies the administrative connection.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to connect to database server: %w", err)
	}
	return nil
}

func (c *Client) EnsureDatabase(ctx context.Context, name string) error {
	if err := validIdentifier("database", name, maxDatabaseLen); err != nil {
		return err
	}
	q := fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s` CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci", name)
	if _, err := c.db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("failed to create database %s: %w", name, err)
	}
	return nil
}

// EnsureUser creates the user if missing and sets its password either way,
// so the account always matches the requested credentials.
func (c *Client) EnsureUser(ctx context.Context, user string, password provisioning.Secret) error {
	if err := validIdentifier("user", user, maxUserLen); err != nil {
		return err
	}
	for _, host := range userHosts {
		if _, err := c.db.ExecContext(ctx, fmt.Sprintf("CREATE USER IF NOT EXISTS '%s'@'%s' IDENTIFIED BY ?", user, host), password.Reveal()); err != nil {
			return fmt.Errorf("failed to create user %s@%s: %w", user, host, err)
		}
		if _, err := c.db.ExecContext(ctx, fmt.Sprintf("ALTER USER '%s'@'%s' IDENTIFIED BY ?", user, host), password.Reveal()); err != nil {
			return fmt.Errorf("failed to set password for %s@%s: %w", user, host, err)
		}
	}
	return nil
}

func (c *Client) Grant(ctx context.Context, user, database string) error {
	if err := validIdentifier("user", user, maxUserLen); err != nil {
		return err
	}
	if err := validIdentifier("database", database, maxDatabaseLen); err != nil {
		return err
	}
	for _, host := range userHosts {
		q := fmt.Sprintf("GRANT ALL PRIVILEGES ON `%s`.* TO '%s'@'%s'", database, user, host)
		if _, err := c.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to grant %s on %s: %w", user, database, err)
		}
	}
	if _, err := c.db.ExecContext(ctx, "FLUSH PRIVILEGES"); err != nil {
		return fmt.Errorf("failed to flush privileges: %w", err)
	}
	return nil
}

func (c *Client) DatabaseExists(ctx context.Context, name string) (bool, error) {
	var found string
	err := c.db.QueryRowContext(ctx,
		"SELECT SCHEMA_NAME FROM information_schema.SCHEMATA WHERE SCHEMA_NAME = ?", name).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up database %s: %w", name, err)
	}
	return true, nil
}

// UserExists reports whether an account with this user name exists for any host.
func (c *Client) UserExists(ctx context.Context, user string) (bool, error) {
	var found string
	err := c.db.QueryRowContext(ctx, "SELECT User FROM mysql.user WHERE User = ? LIMIT 1", user).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up user %s: %w", user, err)
	}
	return true, nil
}

func (c *Client) DropDatabase(ctx context.Context, name string) error {
	if err := validIdentifier("database", name, maxDatabaseLen); err != nil {
		return err
	}
	if _, err := c.db.ExecContext(ctx, fmt.Sprintf("DROP DATABASE IF EXISTS `%s`", name)); err != nil {
		return fmt.Errorf("failed to drop database %s: %w", name, err)
	}
	return nil
}

func (c *Client) DropUser(ctx context.Context, user string) error {
	if err := validIdentifier("user", user, maxUserLen); err != nil {
		return err
	}
	for _, host := range userHosts {
		if _, err := c.db.ExecContext(ctx, fmt.Sprintf("DROP USER IF EXISTS '%s'@'%s'", user, host)); err != nil {
			return fmt.Errorf("failed to drop user %s@%s: %w", user, host, err)
		}
	}
	return nil
}

func validIdentifier(kind, name string, max int) error {
	if name == "" || len(name) > max || !identifierPattern.MatchString(name) {
		return fmt.Errorf("invalid %s name %q", kind, name)
	}
	return nil
}
