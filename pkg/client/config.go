package client

import (
	"crypto/md5"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bellhop-dev/bellhop/pkg/protocol"
	"github.com/bellhop-dev/bellhop/pkg/registry"
	"github.com/bellhop-dev/bellhop/pkg/ticket"
)

// Identity is the client build the session claims to be. The server
// rejects stale release strings with an outdated-client disconnect, so
// these travel in configuration rather than code.
type Identity struct {
	ReleaseVersion       string
	ClientType           string
	PlatformID           int32
	ClientVersion        int32
	ExternalVariablesURL string

	// MachineID is the persisted device token, empty on first login.
	MachineID string

	// Fingerprint identifies the device during login. Empty means a
	// fresh random fingerprint per session.
	Fingerprint string

	// Platform is the runtime descriptor, e.g. "WIN/51,1,1,5".
	Platform string
}

// randomFingerprint mimics the vendor client's device token: '~' plus
// the hex MD5 of a fresh UUID.
func randomFingerprint() string {
	sum := md5.Sum([]byte(uuid.NewString()))
	return fmt.Sprintf("~%x", sum)
}

// Proxy tunnels the game connection. All protocol bytes, including the
// handshake, flow through the tunnel.
type Proxy struct {
	// Scheme is one of "socks5", "socks4", "socks4a", "http".
	Scheme string

	// Address is the proxy's host:port.
	Address string

	Username string
	Password string
}

// Config assembles everything a session needs. The zero value is not
// usable; Address, ServiceKeyModulus/Exponent and Tickets are required.
type Config struct {
	// Address is the game server's host:port.
	Address string

	// ServiceKeyModulus and ServiceKeyExponent are the hex-encoded RSA
	// public key the server signs its key-exchange values with.
	ServiceKeyModulus  string
	ServiceKeyExponent string

	// Registry maps header IDs for the target deployment. Nil means the
	// built-in production table.
	Registry *registry.Registry

	// Tickets supplies the single sign-on ticket for authentication.
	Tickets ticket.Source

	Identity Identity

	// Proxy routes the connection; nil means direct.
	Proxy *Proxy

	// DialTimeout bounds the transport connect, proxy tunnel included.
	// Default 30s.
	DialTimeout time.Duration

	// HandshakeTimeout bounds the whole key exchange plus the wait for
	// the authentication acknowledgement. Default 15s.
	HandshakeTimeout time.Duration

	// ReadIdleTimeout terminates a session whose server has gone silent.
	// Default 60s.
	ReadIdleTimeout time.Duration

	// KeepaliveInterval spaces the latency pings that keep NATs and the
	// server's idle reaper away. Default 20s.
	KeepaliveInterval time.Duration

	// MaxFrameSize is the inbound frame ceiling. Default 512 KiB.
	MaxFrameSize int

	// EventBuffer is the capacity of the caller-facing event channel.
	// Default 64; when the caller lags further than this, events are
	// dropped and counted, never blocking the read loop.
	EventBuffer int

	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.Registry == nil {
		c.Registry = registry.Default()
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = 30 * time.Second
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = 15 * time.Second
	}
	if c.ReadIdleTimeout <= 0 {
		c.ReadIdleTimeout = 60 * time.Second
	}
	if c.KeepaliveInterval <= 0 {
		c.KeepaliveInterval = 20 * time.Second
	}
	if c.MaxFrameSize <= 0 {
		c.MaxFrameSize = protocol.DefaultMaxFrameSize
	}
	if c.EventBuffer <= 0 {
		c.EventBuffer = 64
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Identity.Fingerprint == "" {
		c.Identity.Fingerprint = randomFingerprint()
	}
	if c.Tickets == nil {
		c.Tickets = ticket.Static("")
	}
	return c
}
