package app

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/dpi/sms-rule-based/internal/routing_service/domain"
)

// senderIDSubstitutes replaces digits commonly used by spammers to confuse
// word lookups.
var senderIDSubstitutes = strings.NewReplacer("@", "a", "1", "l", "0", "o")

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]`)

// SenderFilterConfig holds the sender-id restriction settings.
type SenderFilterConfig struct {
	// Excluded is a comma-separated list of wildcard patterns ('%' matching
	// any sequence) denied to ordinary users.
	Excluded string
	// Included is a semicolon-separated list of
	// "user1,user2:pattern1,pattern2" groups granting listed users use of
	// otherwise excluded patterns. The username "*" applies to all users.
	Included string
	// IncludeSuperuser subjects the superuser to the checks as well.
	IncludeSuperuser bool
}

type senderIDPattern struct {
	raw string
	re  *regexp.Regexp
}

type senderIDRules struct {
	excluded []senderIDPattern
	included map[string][]senderIDPattern // keyed by lowercased username or "*"
}

// SenderIDFilter decides whether a sender id may be used by a given user.
// The compiled rule cache is shared across calls and rebuilt only through
// UpdateConfig, so configuration changes must be pushed explicitly.
type SenderIDFilter struct {
	mu     sync.RWMutex
	cfg    SenderFilterConfig
	rules  *senderIDRules
	logger *slog.Logger
}

// NewSenderIDFilter compiles the restriction settings into a rule cache. An
// included list whose grammar cannot be parsed yields ErrConfiguration.
func NewSenderIDFilter(cfg SenderFilterConfig, logger *slog.Logger) (*SenderIDFilter, error) {
	rules, err := compileSenderIDRules(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &SenderIDFilter{
		cfg:    cfg,
		rules:  rules,
		logger: logger.With("component", "sender_id_filter"),
	}, nil
}

// UpdateConfig atomically replaces the compiled rule cache. The previous
// configuration stays in effect when the new one fails to parse.
func (f *SenderIDFilter) UpdateConfig(cfg SenderFilterConfig) error {
	rules, err := compileSenderIDRules(cfg, f.logger)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.cfg = cfg
	f.rules = rules
	f.mu.Unlock()
	return nil
}

// IsAllowed checks a sender id for the given user and reports the decision
// along with the pattern that settled it. Precedence: the user's own included
// patterns, then "*"-scoped included patterns, then excluded patterns; an id
// matched by nothing is allowed.
func (f *SenderIDFilter) IsAllowed(senderID string, user domain.User) (bool, string) {
	f.mu.RLock()
	cfg := f.cfg
	rules := f.rules
	f.mu.RUnlock()

	// Don't check the superuser unless configured to.
	if user.IsSuperuser && !cfg.IncludeSuperuser {
		return true, ""
	}

	normalized := normalizeSenderID(senderID)

	for _, p := range rules.included[strings.ToLower(user.Username)] {
		if p.re.MatchString(normalized) {
			return true, p.raw
		}
	}
	for _, p := range rules.included["*"] {
		if p.re.MatchString(normalized) {
			return true, p.raw
		}
	}
	for _, p := range rules.excluded {
		if p.re.MatchString(normalized) {
			return false, p.raw
		}
	}
	return true, ""
}

// normalizeSenderID strips non-alphanumeric characters, then undoes the
// common numeric substitutes for alpha characters.
func normalizeSenderID(senderID string) string {
	return senderIDSubstitutes.Replace(nonAlphanumeric.ReplaceAllString(senderID, ""))
}

func compileSenderIDRules(cfg SenderFilterConfig, logger *slog.Logger) (*senderIDRules, error) {
	rules := &senderIDRules{included: make(map[string][]senderIDPattern)}

	for _, ex := range strings.Split(cfg.Excluded, ",") {
		p, ok := compileSenderIDPattern(ex, logger)
		if !ok {
			continue
		}
		rules.excluded = append(rules.excluded, p)
	}

	for _, group := range strings.Split(cfg.Included, ";") {
		if strings.TrimSpace(group) == "" {
			continue
		}
		parts := strings.SplitN(group, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("%w: included sender-id group %q must be 'users:patterns'", domain.ErrConfiguration, group)
		}
		var patterns []senderIDPattern
		for _, in := range strings.Split(parts[1], ",") {
			if p, ok := compileSenderIDPattern(in, logger); ok {
				patterns = append(patterns, p)
			}
		}
		for _, name := range strings.Split(parts[0], ",") {
			name = strings.ToLower(strings.TrimSpace(name))
			if name == "" {
				continue
			}
			rules.included[name] = append(rules.included[name], patterns...)
		}
	}
	return rules, nil
}

// compileSenderIDPattern turns one '%' wildcard pattern into a word-boundary,
// case-insensitive matcher. Blank and uncompilable patterns are skipped.
func compileSenderIDPattern(pattern string, logger *slog.Logger) (senderIDPattern, bool) {
	trimmed := strings.TrimSpace(strings.ReplaceAll(pattern, "%", ".*"))
	if trimmed == "" {
		return senderIDPattern{}, false
	}
	re, err := regexp.Compile(`(?i)\b` + trimmed + `\b`)
	if err != nil {
		logger.Warn("Skipping uncompilable sender-id pattern", "pattern", pattern, "error", err)
		return senderIDPattern{}, false
	}
	return senderIDPattern{raw: trimmed, re: re}, true
}
