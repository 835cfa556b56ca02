package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/koinonia/core"
	"github.com/trezcool/koinonia/core/dashboard"
)

type dashboardRepository struct {
	baseRepository
}

var _ dashboard.Repository = (*dashboardRepository)(nil) // interface compliance check

func NewDashboardRepository(exec core.DBExecutor) *dashboardRepository {
	return &dashboardRepository{baseRepository{exec: exec}}
}

func (repo dashboardRepository) count(ctx context.Context, table string) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, repo.exec, &n, "SELECT COUNT(*) FROM "+table); err != nil {
		return 0, errors.Wrapf(err, "counting %s", table)
	}
	return n, nil
}

func (repo dashboardRepository) CountMembers(ctx context.Context) (int, error) {
	return repo.count(ctx, "members")
}

func (repo dashboardRepository) CountGroups(ctx context.Context) (int, error) {
	return repo.count(ctx, "church_groups")
}

func (repo dashboardRepository) CountClasses(ctx context.Context) (int, error) {
	return repo.count(ctx, "school_classes")
}
