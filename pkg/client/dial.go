package client

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"h12.io/socks"
)

// dial opens the transport, tunneling through the configured proxy when
// one is set. No protocol bytes are exchanged here; the caller owns the
// returned connection.
func dial(ctx context.Context, cfg Config) (net.Conn, error) {
	if cfg.Proxy == nil {
		d := net.Dialer{Timeout: cfg.DialTimeout}
		return d.DialContext(ctx, "tcp", cfg.Address)
	}
	switch cfg.Proxy.Scheme {
	case "socks4", "socks4a", "socks5":
		return dialSOCKS(cfg)
	case "http":
		return dialHTTPConnect(ctx, cfg)
	default:
		return nil, fmt.Errorf("client: unsupported proxy scheme %q", cfg.Proxy.Scheme)
	}
}

func dialSOCKS(cfg Config) (net.Conn, error) {
	u := url.URL{
		Scheme:   cfg.Proxy.Scheme,
		Host:     cfg.Proxy.Address,
		RawQuery: url.Values{"timeout": {cfg.DialTimeout.String()}}.Encode(),
	}
	if cfg.Proxy.Username != "" {
		u.User = url.UserPassword(cfg.Proxy.Username, cfg.Proxy.Password)
	}
	return socks.Dial(u.String())("tcp", cfg.Address)
}

// dialHTTPConnect opens an HTTP CONNECT tunnel. The proxy answers the
// CONNECT with a status line; anything but 200 means no tunnel.
func dialHTTPConnect(ctx context.Context, cfg Config) (net.Conn, error) {
	d := net.Dialer{Timeout: cfg.DialTimeout}
	conn, err := d.DialContext(ctx, "tcp", cfg.Proxy.Address)
	if err != nil {
		return nil, err
	}

	req := &http.Request{
		Method: http.MethodConnect,
		URL:    &url.URL{Opaque: cfg.Address},
		Host:   cfg.Address,
		Header: make(http.Header),
	}
	if cfg.Proxy.Username != "" {
		req.SetBasicAuth(cfg.Proxy.Username, cfg.Proxy.Password)
		req.Header.Set("Proxy-Authorization", req.Header.Get("Authorization"))
		req.Header.Del("Authorization")
	}

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}
	if err := req.Write(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("client: proxy connect: %w", err)
	}

	br := bufio.NewReader(conn)
	resp, err := http.ReadResponse(br, req)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("client: proxy connect: %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		conn.Close()
		return nil, fmt.Errorf("client: proxy connect: %s", resp.Status)
	}
	if br.Buffered() > 0 {
		// The proxy must not speak past the CONNECT response.
		conn.Close()
		return nil, fmt.Errorf("client: proxy connect: unexpected trailing data")
	}
	conn.SetDeadline(time.Time{})
	return conn, nil
}
