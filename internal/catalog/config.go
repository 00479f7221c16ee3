package catalog

import (
	"net"
	"strconv"
	"time"
)

// Protocol identifies the wire protocol used to reach the server.
type Protocol string

const (
	ProtocolNative   Protocol = "native"   // ClickHouse native TCP, default port 9000
	ProtocolMySQL    Protocol = "mysql"    // MySQL compatibility port, default 9004
	ProtocolPostgres Protocol = "postgres" // PostgreSQL compatibility port, default 9005
)

// Config holds all settings needed to connect to and pool a ClickHouse
// server. The same Config feeds every driver; each driver fills in its
// protocol's default port when Port is zero.
type Config struct {
	// Protocol selects which driver the caller should construct.
	Protocol Protocol

	Host     string
	Port     int
	Database string
	Username string
	Password string

	// Pool tuning
	MaxConns        int32         // maximum number of connections in the pool
	MinConns        int32         // minimum number of idle connections kept alive
	MaxConnLifetime time.Duration // maximum time a connection may be reused
	MaxConnIdleTime time.Duration // maximum time a connection may sit idle

	// Timeouts
	ConnectTimeout time.Duration // time limit for establishing a new connection
	QueryTimeout   time.Duration // per-query deadline applied by the drivers, 0 disables
}

// DefaultConfig returns pool settings suited to a schema-reading
// workload: few connections, generous lifetimes.
func DefaultConfig() *Config {
	return &Config{
		Protocol:        ProtocolNative,
		Host:            "localhost",
		Database:        "default",
		Username:        "default",
		MaxConns:        4,
		MinConns:        1,
		MaxConnLifetime: 30 * time.Minute,
		MaxConnIdleTime: 5 * time.Minute,
		ConnectTimeout:  10 * time.Second,
		QueryTimeout:    30 * time.Second,
	}
}

// Addr returns the host:port pair, substituting defaultPort when the
// config leaves Port unset.
func (c *Config) Addr(defaultPort int) string {
	port := c.Port
	if port == 0 {
		port = defaultPort
	}
	return net.JoinHostPort(c.Host, strconv.Itoa(port))
}
