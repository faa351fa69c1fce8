package repository

import (
	"context"

	"github.com/dpi/sms-rule-based/internal/routing_service/domain"
)

// RulesetRepository defines the interface for loading routing rulesets.
type RulesetRepository interface {
	// GetEnabledRulesetsOrderedByWeight fetches all enabled rulesets ordered
	// by weight ascending (lower weight is evaluated first).
	GetEnabledRulesetsOrderedByWeight(ctx context.Context) ([]*domain.Ruleset, error)
}
