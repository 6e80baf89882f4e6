// Package settings provides the read-only configuration surface the engine
// consults on every event. Values are stored as strings; list and map values
// are JSON-encoded. Parse failures fall back to zero values and are never
// propagated to callers.
package settings

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
)

type Store interface {
	// Get returns the raw string value for key, and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
}

func GetString(ctx context.Context, s Store, key, def string) string {
	v, ok, err := s.Get(ctx, key)
	if err != nil || !ok || v == "" {
		return def
	}
	return v
}

func GetBool(ctx context.Context, s Store, key string, def bool) bool {
	v, ok, err := s.Get(ctx, key)
	if err != nil || !ok || v == "" {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	}
	return def
}

func GetInt(ctx context.Context, s Store, key string, def int) int {
	v, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

// GetStringList decodes a JSON string-array value. Missing or malformed
// values yield an empty list.
func GetStringList(ctx context.Context, s Store, key string) []string {
	v, ok, err := s.Get(ctx, key)
	if err != nil || !ok || v == "" {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal([]byte(v), &out); err != nil {
		return []string{}
	}
	return out
}

// GetIntMap decodes a JSON object of string to int. Missing or malformed
// values yield an empty map.
func GetIntMap(ctx context.Context, s Store, key string) map[string]int {
	v, ok, err := s.Get(ctx, key)
	if err != nil || !ok || v == "" {
		return map[string]int{}
	}
	var out map[string]int
	if err := json.Unmarshal([]byte(v), &out); err != nil {
		return map[string]int{}
	}
	return out
}
