package registry

import (
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	r, err := New(
		map[Kind]uint16{KindPing: 2829, KindChat: 3423, KindDisconnect: 4000},
		map[Kind]uint16{KindPong: 2418, KindClientHello: 4000},
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tests := []struct {
		header uint16
		want   Kind
	}{
		{2829, KindPing},
		{3423, KindChat},
		{4000, KindDisconnect},
		{2418, KindUnknown}, // outgoing ID, not valid inbound
		{9999, KindUnknown},
		{0, KindUnknown},
	}
	for _, tt := range tests {
		if got := r.Classify(tt.header); got != tt.want {
			t.Errorf("Classify(%d) = %s, want %s", tt.header, got, tt.want)
		}
	}
}

func TestHeader(t *testing.T) {
	r, err := New(nil, map[Kind]uint16{KindWalk: 1551, KindShout: 901})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if id, ok := r.Header(KindWalk); !ok || id != 1551 {
		t.Errorf("Header(walk) = %d, %v; want 1551, true", id, ok)
	}
	if _, ok := r.Header(KindWhisper); ok {
		t.Error("Header(whisper) resolved with no mapping")
	}
}

// The same numeric ID legitimately means different things per direction.
func TestDirectionsIndependent(t *testing.T) {
	r, err := New(
		map[Kind]uint16{KindDisconnect: 4000},
		map[Kind]uint16{KindClientHello: 4000},
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if got := r.Classify(4000); got != KindDisconnect {
		t.Errorf("Classify(4000) = %s, want disconnect", got)
	}
	if id, ok := r.Header(KindClientHello); !ok || id != 4000 {
		t.Errorf("Header(client_hello) = %d, %v; want 4000, true", id, ok)
	}
}

func TestNewRejectsDuplicateIncoming(t *testing.T) {
	_, err := New(map[Kind]uint16{KindPing: 100, KindChat: 100}, nil)
	if err == nil {
		t.Fatal("New() accepted two incoming kinds on one header")
	}
}

func TestParse(t *testing.T) {
	const doc = `
[incoming]
ping       = 2829
auth_ok    = 115
floor_plan = 590

[outgoing]
pong = 2418
walk = 1551
`
	r, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := r.Classify(115); got != KindAuthOK {
		t.Errorf("Classify(115) = %s, want auth_ok", got)
	}
	if id, ok := r.Header(KindWalk); !ok || id != 1551 {
		t.Errorf("Header(walk) = %d, %v; want 1551, true", id, ok)
	}
	if r.Incoming() != 3 || r.Outgoing() != 2 {
		t.Errorf("sizes = %d/%d, want 3/2", r.Incoming(), r.Outgoing())
	}
}

func TestParseRejectsUnknownName(t *testing.T) {
	_, err := Parse([]byte("[incoming]\npnig = 2829\n"))
	if err == nil || !strings.Contains(err.Error(), "pnig") {
		t.Errorf("Parse() error = %v, want unknown-kind error naming the key", err)
	}
}

func TestParseRejectsMalformedTOML(t *testing.T) {
	if _, err := Parse([]byte("[incoming\nping = 2829")); err == nil {
		t.Error("Parse() accepted malformed TOML")
	}
}

func TestKindByName(t *testing.T) {
	for k := KindServerKeyExchange; k < kindCount; k++ {
		got, ok := KindByName(k.String())
		if !ok || got != k {
			t.Errorf("KindByName(%q) = %v, %v; want %v, true", k.String(), got, ok, k)
		}
	}
	if _, ok := KindByName("unknown"); ok {
		t.Error("KindByName(unknown) resolved; unknown is not configurable")
	}
	if _, ok := KindByName("no_such_kind"); ok {
		t.Error("KindByName(no_such_kind) resolved")
	}
}

func TestDefault(t *testing.T) {
	r := Default()
	if got := r.Classify(2829); got != KindPing {
		t.Errorf("Classify(2829) = %s, want ping", got)
	}
	if got := r.Classify(503); got != KindServerKeyExchange {
		t.Errorf("Classify(503) = %s, want server_key_exchange", got)
	}
	if id, ok := r.Header(KindTicket); !ok || id != 3674 {
		t.Errorf("Header(ticket) = %d, %v; want 3674, true", id, ok)
	}
}
