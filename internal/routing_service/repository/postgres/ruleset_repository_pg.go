package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/dpi/sms-rule-based/internal/routing_service/domain"
	"github.com/dpi/sms-rule-based/internal/routing_service/repository"
)

// DBQuerier is the subset of pgxpool.Pool the repository needs; pgxmock
// satisfies it in tests.
type DBQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type PgRulesetRepository struct {
	db     DBQuerier
	logger *slog.Logger
}

// NewPgRulesetRepository creates a new PostgreSQL ruleset repository.
func NewPgRulesetRepository(db DBQuerier, logger *slog.Logger) repository.RulesetRepository {
	return &PgRulesetRepository{db: db, logger: logger.With("component", "ruleset_repository_pg")}
}

func (r *PgRulesetRepository) GetEnabledRulesetsOrderedByWeight(ctx context.Context) ([]*domain.Ruleset, error) {
	query := `
		SELECT name, label, description, weight, enabled, gateway, rules
		FROM sms_routing_rulesets
		WHERE enabled = TRUE
		ORDER BY weight ASC, created_at ASC
	` // created_at keeps the order stable for equal weights

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error querying enabled rulesets", "error", err)
		return nil, fmt.Errorf("querying enabled rulesets: %w", err)
	}
	defer rows.Close()

	var rulesets []*domain.Ruleset
	for rows.Next() {
		var ruleset domain.Ruleset
		var compacted string

		if err := rows.Scan(
			&ruleset.Name, &ruleset.Label, &ruleset.Description,
			&ruleset.Weight, &ruleset.Enabled, &ruleset.Gateway, &compacted,
		); err != nil {
			r.logger.ErrorContext(ctx, "Error scanning ruleset row", "error", err)
			return nil, fmt.Errorf("scanning ruleset row: %w", err)
		}

		// A corrupt encoding is a configuration error; surface it instead of
		// silently routing with a partial ruleset.
		allTrue, rules, err := domain.ExpandRules(compacted)
		if err != nil {
			r.logger.ErrorContext(ctx, "Error expanding compacted rules", "ruleset", ruleset.Name, "error", err)
			return nil, fmt.Errorf("expanding rules of ruleset %q: %w", ruleset.Name, err)
		}
		ruleset.AllTrue = allTrue
		ruleset.Rules = rules
		rulesets = append(rulesets, &ruleset)
	}

	if err = rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error after iterating ruleset rows", "error", err)
		return nil, fmt.Errorf("iterating ruleset rows: %w", err)
	}

	r.logger.DebugContext(ctx, "Fetched enabled rulesets", "count", len(rulesets))
	return rulesets, nil
}
