package app

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	"github.com/dpi/sms-rule-based/internal/routing_service/domain"
	"github.com/dpi/sms-rule-based/internal/routing_service/repository"
)

// Router partitions a message's recipients across delivery gateways according
// to the configured routing rulesets.
type Router struct {
	rulesetRepo repository.RulesetRepository
	logger      *slog.Logger
}

// NewRouter creates a new Router.
func NewRouter(rulesetRepo repository.RulesetRepository, logger *slog.Logger) *Router {
	return &Router{
		rulesetRepo: rulesetRepo,
		logger:      logger.With("component", "router"),
	}
}

// Route loads the enabled rulesets and partitions msg's recipients into
// gateway-labeled groups. An error is only returned when the rulesets cannot
// be loaded; routing itself never fails partially.
func (r *Router) Route(ctx context.Context, msg *domain.Message) (*domain.RoutingResult, error) {
	rulesets, err := r.rulesetRepo.GetEnabledRulesetsOrderedByWeight(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to load routing rulesets", "error", err)
		return nil, fmt.Errorf("loading routing rulesets: %w", err)
	}
	return r.RouteRecipients(rulesets, msg), nil
}

// RouteRecipients evaluates rulesets in ascending weight order (stable for
// equal weights) against a shrinking recipient pool. Each matched recipient
// is claimed by the first ruleset that matches it; whatever remains goes to
// the default gateway. The union of all route groups is always exactly the
// original recipient list.
func (r *Router) RouteRecipients(rulesets []*domain.Ruleset, msg *domain.Message) *domain.RoutingResult {
	sorted := make([]*domain.Ruleset, len(rulesets))
	copy(sorted, rulesets)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Weight < sorted[j].Weight })

	pool := make([]string, len(msg.Recipients))
	copy(pool, msg.Recipients)

	result := &domain.RoutingResult{
		Routes: make(map[string][]string),
		Order:  make(map[string][]string),
	}
	for _, ruleset := range sorted {
		if !ruleset.Enabled {
			continue
		}
		var matched []string
		matched, pool = applyRuleset(ruleset, pool, msg)
		if len(matched) == 0 {
			continue
		}
		// Matches from later rulesets targeting the same gateway are merged
		// with earlier ones.
		result.Routes[ruleset.Gateway] = append(result.Routes[ruleset.Gateway], matched...)
		result.Order[ruleset.Name] = matched
		r.logger.Debug("Ruleset matched recipients",
			"ruleset", ruleset.Name, "gateway", ruleset.Gateway, "matched", len(matched), "remaining", len(pool))
	}
	result.Routes[domain.DefaultGateway] = pool
	result.Order[domain.DefaultGateway] = pool
	return result
}

// applyRuleset computes the subset of pool the ruleset claims and the
// remaining pool with that subset removed, original order preserved. With
// AllTrue the rules are intersected progressively from the full pool; without
// it each rule's matches are unioned, de-duplicated. An empty rule list
// matches nothing.
func applyRuleset(ruleset *domain.Ruleset, pool []string, msg *domain.Message) (matched, remaining []string) {
	if len(ruleset.Rules) == 0 {
		return nil, pool
	}
	if ruleset.AllTrue {
		matched = pool
		for _, rule := range ruleset.Rules {
			matched = intersect(matched, matchRuleType(pool, rule, msg))
		}
	} else {
		seen := make(map[string]struct{})
		for _, rule := range ruleset.Rules {
			for _, number := range matchRuleType(pool, rule, msg) {
				if _, dup := seen[number]; dup {
					continue
				}
				seen[number] = struct{}{}
				matched = append(matched, number)
			}
		}
	}
	return matched, difference(pool, matched)
}

// matchRuleType returns the subset of pool satisfying one rule. Message
// scoped types (user, sender, count, sendtime) gate the whole pool: all of it
// on success, none of it otherwise. Recipient-scoped types (number, country,
// area) test each number independently. Unknown types match nothing.
func matchRuleType(pool []string, rule domain.Rule, msg *domain.Message) []string {
	switch rule.Type {
	case domain.RuleTypeUser:
		if evaluateRule(msg.Username, rule.Op, rule.Operand, rule.Negate) {
			return pool
		}
		return nil
	case domain.RuleTypeSender:
		if evaluateRule(msg.Sender, rule.Op, rule.Operand, rule.Negate) {
			return pool
		}
		return nil
	case domain.RuleTypeCount:
		// Pool size at the moment the rule runs, so earlier rulesets that
		// consumed recipients are visible here.
		if evaluateRule(strconv.Itoa(len(pool)), rule.Op, rule.Operand, rule.Negate) {
			return pool
		}
		return nil
	case domain.RuleTypeSendTime:
		if evaluateRule(strconv.FormatInt(msg.SendTime.Unix(), 10), rule.Op, rule.Operand, rule.Negate) {
			return pool
		}
		return nil
	case domain.RuleTypeNumber:
		return filterNumbers(pool, func(number string) string { return number }, rule)
	case domain.RuleTypeCountry:
		return filterNumbers(pool, domain.CountryCode, rule)
	case domain.RuleTypeArea:
		return filterNumbers(pool, domain.AreaCode, rule)
	default:
		return nil
	}
}

func filterNumbers(pool []string, attr func(string) string, rule domain.Rule) []string {
	var out []string
	for _, number := range pool {
		if evaluateRule(attr(number), rule.Op, rule.Operand, rule.Negate) {
			out = append(out, number)
		}
	}
	return out
}

// intersect keeps the elements of a that also occur in b, preserving a's
// order.
func intersect(a, b []string) []string {
	inB := make(map[string]struct{}, len(b))
	for _, v := range b {
		inB[v] = struct{}{}
	}
	var out []string
	for _, v := range a {
		if _, ok := inB[v]; ok {
			out = append(out, v)
		}
	}
	return out
}

// difference keeps the elements of a not occurring in b, preserving a's
// order.
func difference(a, b []string) []string {
	inB := make(map[string]struct{}, len(b))
	for _, v := range b {
		inB[v] = struct{}{}
	}
	out := make([]string, 0, len(a))
	for _, v := range a {
		if _, ok := inB[v]; !ok {
			out = append(out, v)
		}
	}
	return out
}
