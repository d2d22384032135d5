package registry

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// tomlDoc is the on-disk registry layout: two tables of kind-name keys
// to numeric header IDs.
//
//	[incoming]
//	ping    = 2829
//	auth_ok = 115
//
//	[outgoing]
//	walk = 1551
type tomlDoc struct {
	Incoming map[string]uint16 `toml:"incoming"`
	Outgoing map[string]uint16 `toml:"outgoing"`
}

// Parse builds a registry from TOML text. Unrecognized kind names are a
// configuration error: a typo here would silently turn real traffic into
// KindUnknown.
func Parse(data []byte) (*Registry, error) {
	var doc tomlDoc
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("registry: parse: %w", err)
	}
	incoming, err := resolve(doc.Incoming, "incoming")
	if err != nil {
		return nil, err
	}
	outgoing, err := resolve(doc.Outgoing, "outgoing")
	if err != nil {
		return nil, err
	}
	return New(incoming, outgoing)
}

// Load reads and parses a registry file.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	return Parse(data)
}

func resolve(table map[string]uint16, direction string) (map[Kind]uint16, error) {
	m := make(map[Kind]uint16, len(table))
	for name, id := range table {
		kind, ok := KindByName(name)
		if !ok {
			return nil, fmt.Errorf("registry: unknown %s kind %q", direction, name)
		}
		m[kind] = id
	}
	return m, nil
}
