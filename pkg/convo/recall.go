package convo

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultRecallPhrases trigger full-history context. Anything else gets the
// minimal system instruction with no history, which keeps cost and latency
// down for the common case.
var DefaultRecallPhrases = []string{
	"remember",
	"earlier",
	"last time",
	"previously",
	"as i said",
	"you told me",
	"we discussed",
	"recall",
	"context",
	"above",
}

// RecallPolicy decides whether a query warrants loading conversation history.
// The phrase set is injectable so deployments (and tests) can tune the gate.
type RecallPolicy struct {
	patterns []*regexp.Regexp
}

// NewRecallPolicy compiles a recall policy from trigger phrases. Matching is
// case-insensitive on word boundaries.
func NewRecallPolicy(phrases []string) (*RecallPolicy, error) {
	patterns := make([]*regexp.Regexp, 0, len(phrases))
	for _, phrase := range phrases {
		pattern, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(strings.TrimSpace(phrase)) + `\b`)
		if err != nil {
			return nil, fmt.Errorf("compiling recall phrase %q: %w", phrase, err)
		}
		patterns = append(patterns, pattern)
	}
	return &RecallPolicy{patterns: patterns}, nil
}

// DefaultRecallPolicy returns a policy built from DefaultRecallPhrases.
func DefaultRecallPolicy() *RecallPolicy {
	policy, err := NewRecallPolicy(DefaultRecallPhrases)
	if err != nil {
		panic(err)
	}
	return policy
}

// Triggered reports whether the query matches any trigger phrase.
func (p *RecallPolicy) Triggered(query string) bool {
	for _, pattern := range p.patterns {
		if pattern.MatchString(query) {
			return true
		}
	}
	return false
}
