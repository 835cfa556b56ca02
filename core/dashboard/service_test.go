package dashboard_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/koinonia/core/dashboard"
	sqlxrepos "github.com/trezcool/koinonia/storage/database/sqlx"
	"github.com/trezcool/koinonia/testutil"
)

func TestService_Summary(t *testing.T) {
	ctx := context.Background()
	db := testutil.PrepareDB(t)
	svc := dashboard.NewService(sqlxrepos.NewDashboardRepository(db))

	sum, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, dashboard.Summary{}, sum)

	members := sqlxrepos.NewMemberRepository(db)
	for _, name := range []string{"John", "Jane", "Bob"} {
		testutil.CreateMember(t, members, name, testutil.Date(1990, 1, 1))
	}
	testutil.CreateGroup(t, sqlxrepos.NewGroupRepository(db), "Choir")
	classes := sqlxrepos.NewSchoolRepository(db)
	testutil.CreateClass(t, classes, "Genesis")
	testutil.CreateClass(t, classes, "Exodus")

	sum, err = svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, dashboard.Summary{TotalMembers: 3, TotalGroups: 1, TotalBiblicalSchoolClasses: 2}, sum)
}

type stubRepository struct {
	members, groups, classes int
	err                      error
}

func (repo stubRepository) CountMembers(context.Context) (int, error) { return repo.members, nil }
func (repo stubRepository) CountGroups(context.Context) (int, error)  { return repo.groups, repo.err }
func (repo stubRepository) CountClasses(context.Context) (int, error) { return repo.classes, nil }

func TestService_Summary_Error(t *testing.T) {
	boom := errors.New("boom")
	svc := dashboard.NewService(stubRepository{members: 1, groups: 2, classes: 3, err: boom})

	sum, err := svc.Summary(context.Background())
	assert.Equal(t, boom, errors.Cause(err))
	assert.Equal(t, dashboard.Summary{}, sum)
}
