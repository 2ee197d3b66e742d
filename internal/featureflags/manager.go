// Package featureflags evaluates the FEATURE_FLAGS setting.
package featureflags

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
)

// Known flags.
const (
	// WebPAvatars lets GET /api/profile/avatar/:id serve WebP on ?format=webp.
	WebPAvatars = "webp_avatars"
	// Realtime enables the notification websocket and its Redis fan-out.
	Realtime = "realtime"
)

// Defaults apply to flags absent from the configured list.
var Defaults = map[string]string{
	WebPAvatars: "off",
	Realtime:    "on",
}

type rule struct {
	raw     string
	on      bool
	percent int // -1 when the rule is a plain on/off switch
}

// Manager evaluates feature flags defined in a simple key=value list.
// Example: "webp_avatars=on,realtime=25%"
type Manager struct {
	rules map[string]rule
}

// NewManager parses raw on top of Defaults. Malformed pairs are skipped.
func NewManager(raw string) *Manager {
	m := &Manager{rules: make(map[string]rule)}
	for k, v := range Defaults {
		if r, ok := parseRule(v); ok {
			m.rules[k] = r
		}
	}

	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key = normalize(key)
		if key == "" {
			continue
		}
		if r, ok := parseRule(value); ok {
			m.rules[key] = r
		}
	}
	return m
}

// parseRule accepts on/true/1, off/false/0 and N% rollouts.
func parseRule(value string) (rule, bool) {
	value = normalize(value)
	switch value {
	case "on", "true", "1":
		return rule{raw: value, on: true, percent: -1}, true
	case "off", "false", "0":
		return rule{raw: value, percent: -1}, true
	}
	pctRaw, ok := strings.CutSuffix(value, "%")
	if !ok {
		return rule{}, false
	}
	pct, err := strconv.Atoi(pctRaw)
	if err != nil {
		return rule{}, false
	}
	pct = min(max(pct, 0), 100)
	return rule{raw: value, percent: pct}, true
}

// Enabled reports whether name is on for userID. Percentage rollouts are
// deterministic per user; anonymous callers (userID 0) only see 100%.
func (m *Manager) Enabled(name string, userID uint) bool {
	if m == nil {
		return false
	}
	r, ok := m.rules[normalize(name)]
	if !ok {
		return false
	}
	if r.percent < 0 {
		return r.on
	}
	switch {
	case r.percent == 0:
		return false
	case r.percent == 100:
		return true
	case userID == 0:
		return false
	}
	return rolloutBucket(name, userID) < r.percent
}

// EnabledGlobally reports whether name is on for everyone.
func (m *Manager) EnabledGlobally(name string) bool {
	return m.Enabled(name, 0)
}

// Raw returns a copy of the configured values.
func (m *Manager) Raw() map[string]string {
	out := make(map[string]string, len(m.rules))
	for k, r := range m.rules {
		out[k] = r.raw
	}
	return out
}

// Names lists the configured flags in sorted order.
func (m *Manager) Names() []string {
	names := make([]string, 0, len(m.rules))
	for k := range m.rules {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns evaluated flag status for one user.
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

func rolloutBucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = fmt.Fprintf(h, "%s:%d", normalize(name), userID)
	return int(h.Sum32() % 100)
}
