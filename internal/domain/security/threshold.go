package security

import (
	"sort"
	"time"
)

// ThresholdRule defines when a burst of one action kind becomes suspicious.
type ThresholdRule struct {
	Action Action
	Count  int
	Window time.Duration
	Reason string
}

// ThresholdCatalog is a static lookup of rules keyed by action kind.
// It is built once at process start and is safe for concurrent reads.
type ThresholdCatalog struct {
	rules map[Action]ThresholdRule
}

// DefaultThresholds returns the production rule set.
var DefaultThresholds = []ThresholdRule{
	{Action: ActionCreate, Count: 3, Window: 5 * time.Minute, Reason: "High frequency creation"},
	{Action: ActionUpdate, Count: 5, Window: 5 * time.Minute, Reason: "High frequency updates"},
	{Action: ActionDelete, Count: 2, Window: 5 * time.Minute, Reason: "High frequency deletion"},
	{Action: ActionLogin, Count: 4, Window: 5 * time.Minute, Reason: "Excessive login attempts"},
}

// NewThresholdCatalog builds a catalog from the given rules. Passing nil or an
// empty slice yields the default catalog; tests swap in lower thresholds to
// make detection deterministic.
func NewThresholdCatalog(rules []ThresholdRule) *ThresholdCatalog {
	if len(rules) == 0 {
		rules = DefaultThresholds
	}
	m := make(map[Action]ThresholdRule, len(rules))
	for _, r := range rules {
		m[r.Action] = r
	}
	return &ThresholdCatalog{rules: m}
}

// Lookup returns the rule for an action kind, if one is configured.
func (c *ThresholdCatalog) Lookup(action Action) (ThresholdRule, bool) {
	r, ok := c.rules[action]
	return r, ok
}

// Rules returns all configured rules in deterministic (action-sorted) order.
func (c *ThresholdCatalog) Rules() []ThresholdRule {
	out := make([]ThresholdRule, 0, len(c.rules))
	for _, r := range c.rules {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Action < out[j].Action })
	return out
}
