package utils

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// DecodeTOMLFile strictly decodes path into v and returns the keys present
// in the file that v has no field for.
func DecodeTOMLFile(path string, v any) ([]string, error) {
	md, err := toml.DecodeFile(path, v)
	if err != nil {
		log.Warnf("Config %s does not decode cleanly: %v", path, err)
		return nil, err
	}

	var unknown []string
	for _, key := range md.Undecoded() {
		unknown = append(unknown, key.String())
	}
	return unknown, nil
}

// DecodeTOMLTable decodes path loosely, without a target type, so values of
// the wrong type can still be picked out key by key.
func DecodeTOMLTable(path string) (map[string]any, error) {
	table := make(map[string]any)
	if _, err := toml.DecodeFile(path, &table); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return table, nil
}

// Table returns the sub-table name of a loosely decoded file.
func Table(data map[string]any, name string) (map[string]any, bool) {
	t, ok := data[name].(map[string]any)
	return t, ok
}

// TableInt reads an integer key. TOML integers decode as int64.
func TableInt(t map[string]any, key string) (int, bool) {
	v, ok := t[key].(int64)
	return int(v), ok
}

func TableString(t map[string]any, key string) (string, bool) {
	v, ok := t[key].(string)
	return v, ok
}

// TableDuration reads a duration written as a string such as "750ms".
func TableDuration(t map[string]any, key string) (time.Duration, bool) {
	s, ok := TableString(t, key)
	if !ok {
		return 0, false
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		log.Warnf("Ignoring %s = %q: %v", key, s, err)
		return 0, false
	}
	return d, true
}
