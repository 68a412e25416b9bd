package scan_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"scanflow/internal/core/apperror"
	"scanflow/internal/domain/scanning"
	"scanflow/internal/infrastructure/storage/postgres"
)

var _ scanning.PolicySource = (*PolicyRepo)(nil)

// PolicyRepo reads scan settings from doc_scan_settings.
type PolicyRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewPolicyRepo creates a new policy repository.
func NewPolicyRepo(txManager *postgres.TxManager) *PolicyRepo {
	return &PolicyRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetPolicy returns the scan settings of a document.
func (r *PolicyRepo) GetPolicy(ctx context.Context, documentID string) (scanning.Policy, error) {
	sql, args, err := r.policyQuery(documentID).ToSql()
	if err != nil {
		return scanning.Policy{}, fmt.Errorf("build query: %w", err)
	}

	var p scanning.Policy
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return scanning.Policy{}, apperror.NewDocumentNotFound(documentID)
		}
		return scanning.Policy{}, fmt.Errorf("get policy: %w", err)
	}
	return p, nil
}

func (r *PolicyRepo) policyQuery(documentID string) squirrel.SelectBuilder {
	return r.builder.Select(postgres.Columns[scanning.Policy]()...).
		From(settingsTable).
		Where(squirrel.Eq{"document_id": documentID})
}
