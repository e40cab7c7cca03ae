// Package featureflags gates optional features from the FEATURE_FLAGS setting.
package featureflags

import (
	"hash/fnv"
	"strconv"
	"strings"
)

// Flags understood by the application.
const (
	RealtimeNotifications = "realtime_notifications"
	MediaUploads          = "media_uploads"
)

// rule is either fully on, fully off, or a deterministic per-user percentage.
type rule struct {
	on      bool
	percent int
	rollout bool
}

// Manager evaluates flags parsed from a list like "realtime_notifications=on,media_uploads=25%".
type Manager struct {
	rules map[string]rule
}

// NewManager parses raw, ignoring malformed entries.
func NewManager(raw string) *Manager {
	rules := make(map[string]rule)

	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key, value = normalize(key), normalize(value)
		if key == "" {
			continue
		}
		if r, ok := parseRule(value); ok {
			rules[key] = r
		}
	}

	return &Manager{rules: rules}
}

func parseRule(value string) (rule, bool) {
	switch value {
	case "on", "true", "1":
		return rule{on: true}, true
	case "off", "false", "0":
		return rule{}, true
	}
	pct, ok := strings.CutSuffix(value, "%")
	if !ok {
		return rule{}, false
	}
	n, err := strconv.Atoi(pct)
	if err != nil {
		return rule{}, false
	}
	switch {
	case n <= 0:
		return rule{}, true
	case n >= 100:
		return rule{on: true}, true
	}
	return rule{rollout: true, percent: n}, true
}

// Enabled reports whether name is on for userID. Partial rollouts are off for anonymous callers.
func (m *Manager) Enabled(name string, userID uint) bool {
	if m == nil {
		return false
	}
	r, ok := m.rules[normalize(name)]
	if !ok {
		return false
	}
	if !r.rollout {
		return r.on
	}
	if userID == 0 {
		return false
	}
	return bucket(name, userID) < r.percent
}

// Snapshot returns every configured flag evaluated for userID.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	out := make(map[string]bool, len(m.rules))
	for name := range m.rules {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func bucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(normalize(name) + ":" + strconv.FormatUint(uint64(userID), 10)))
	return int(h.Sum32() % 100)
}
