package config

import (
	"strings"
	"testing"

	"github.com/bellhop-dev/bellhop/pkg/ticket"
)

const validConfig = `
[server]
address = "game.habbo.com:30001"
service_key_modulus = "bd2f"
service_key_exponent = "3"
dial_timeout_seconds = 10

[identity]
release_version = "WIN63-202511041237-472105733"
client_type = "FLASH25"
platform_id = 6
client_version = 4
external_variables_url = "https://www.habbo.com/gamedata/external_variables/1"
platform = "WIN/51,1,1,5"

[[accounts]]
name = "alpha"
ticket = "fixed-ticket"

[[accounts]]
ticket_endpoint = "https://www.habbo.com/api/ssotoken"
session_cookie = "sess"
browser_token = "tok"
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(validConfig))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Server.Address != "game.habbo.com:30001" {
		t.Errorf("address = %q", cfg.Server.Address)
	}
	if len(cfg.Accounts) != 2 {
		t.Fatalf("len(accounts) = %d, want 2", len(cfg.Accounts))
	}
	if cfg.Accounts[1].Name != "account-2" {
		t.Errorf("default account name = %q, want %q", cfg.Accounts[1].Name, "account-2")
	}
	if cfg.Accounts[1].Origin != DefaultTicketOrigin {
		t.Errorf("default origin = %q, want %q", cfg.Accounts[1].Origin, DefaultTicketOrigin)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("log defaults = %q/%q", cfg.Log.Level, cfg.Log.Format)
	}
	if cfg.Ops.Listen != DefaultOpsListen {
		t.Errorf("ops listen = %q, want %q", cfg.Ops.Listen, DefaultOpsListen)
	}
}

func TestParseRejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(string) string
		wantSub string
	}{
		{
			name:    "missing address",
			mutate:  func(s string) string { return strings.Replace(s, `address = "game.habbo.com:30001"`, "", 1) },
			wantSub: "server.address",
		},
		{
			name:    "missing service key",
			mutate:  func(s string) string { return strings.Replace(s, `service_key_modulus = "bd2f"`, "", 1) },
			wantSub: "service key",
		},
		{
			name: "no accounts",
			mutate: func(s string) string {
				i := strings.Index(s, "[[accounts]]")
				return s[:i]
			},
			wantSub: "at least one account",
		},
		{
			name: "ticket and endpoint together",
			mutate: func(s string) string {
				return strings.Replace(s, `ticket = "fixed-ticket"`,
					"ticket = \"fixed-ticket\"\nticket_endpoint = \"https://x\"\nsession_cookie = \"a\"\nbrowser_token = \"b\"", 1)
			},
			wantSub: "mutually exclusive",
		},
		{
			name: "endpoint missing cookies",
			mutate: func(s string) string {
				return strings.Replace(s, `browser_token = "tok"`, "", 1)
			},
			wantSub: "session_cookie and browser_token",
		},
		{
			name: "bad log level",
			mutate: func(s string) string {
				return s + "\n[log]\nlevel = \"loud\"\n"
			},
			wantSub: "log level",
		},
		{
			name: "bad proxy scheme",
			// Top-level key, so it must precede the table sections.
			mutate: func(s string) string {
				return "proxies = [\"ftp://proxy:21\"]\n" + s
			},
			wantSub: "unsupported scheme",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.mutate(validConfig)))
			if err == nil {
				t.Fatal("Parse() succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error = %v, want substring %q", err, tt.wantSub)
			}
		})
	}
}

func TestSessionConfig(t *testing.T) {
	cfg, err := Parse([]byte(validConfig))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	reg, err := cfg.Registry()
	if err != nil {
		t.Fatalf("Registry() error = %v", err)
	}
	log := cfg.Logger()

	sc, err := cfg.SessionConfig(0, reg, log)
	if err != nil {
		t.Fatalf("SessionConfig(0) error = %v", err)
	}
	if sc.Address != cfg.Server.Address {
		t.Errorf("address = %q", sc.Address)
	}
	if _, ok := sc.Tickets.(ticket.Static); !ok {
		t.Errorf("account 0 ticket source = %T, want ticket.Static", sc.Tickets)
	}
	if sc.Identity.ReleaseVersion != "WIN63-202511041237-472105733" {
		t.Errorf("release version = %q", sc.Identity.ReleaseVersion)
	}

	sc, err = cfg.SessionConfig(1, reg, log)
	if err != nil {
		t.Fatalf("SessionConfig(1) error = %v", err)
	}
	ws, ok := sc.Tickets.(*ticket.WebSource)
	if !ok {
		t.Fatalf("account 1 ticket source = %T, want *ticket.WebSource", sc.Tickets)
	}
	if ws.Endpoint != "https://www.habbo.com/api/ssotoken" {
		t.Errorf("endpoint = %q", ws.Endpoint)
	}
	if len(ws.Cookies) != 2 {
		t.Errorf("len(cookies) = %d, want 2", len(ws.Cookies))
	}

	if _, err := cfg.SessionConfig(5, reg, log); err == nil {
		t.Error("SessionConfig(5) succeeded, want error")
	}
}

func TestSessionConfigProxyRotation(t *testing.T) {
	text := "proxies = [\"socks5://u:p@p1:1080\", \"http://p2:8080\"]\n" + validConfig
	cfg, err := Parse([]byte(text))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(cfg.Proxies) != 2 {
		t.Fatalf("len(proxies) = %d, want 2", len(cfg.Proxies))
	}
	reg, _ := cfg.Registry()
	log := cfg.Logger()

	sc0, err := cfg.SessionConfig(0, reg, log)
	if err != nil {
		t.Fatalf("SessionConfig(0) error = %v", err)
	}
	if sc0.Proxy == nil {
		t.Fatal("proxy 0 = nil, want socks5 p1:1080")
	}
	if sc0.Proxy.Address != "p1:1080" || sc0.Proxy.Scheme != "socks5" {
		t.Errorf("proxy 0 = %+v, want socks5 p1:1080", sc0.Proxy)
	}
	if sc0.Proxy.Username != "u" || sc0.Proxy.Password != "p" {
		t.Errorf("proxy 0 credentials = %q/%q", sc0.Proxy.Username, sc0.Proxy.Password)
	}

	sc1, err := cfg.SessionConfig(1, reg, log)
	if err != nil {
		t.Fatalf("SessionConfig(1) error = %v", err)
	}
	if sc1.Proxy == nil {
		t.Fatal("proxy 1 = nil, want http p2:8080")
	}
	if sc1.Proxy.Address != "p2:8080" || sc1.Proxy.Scheme != "http" {
		t.Errorf("proxy 1 = %+v, want http p2:8080", sc1.Proxy)
	}
}
