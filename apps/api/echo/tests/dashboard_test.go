package tests

import (
	"net/http"
	"testing"

	"github.com/trezcool/koinonia/core/dashboard"
	"github.com/trezcool/koinonia/testutil"
)

func Test_dashboardApi_summary(t *testing.T) {
	a := setup(t)
	token := a.authToken(t)

	runHTTPTests(t, a, []httpTest{
		{name: "empty", path: "/dashboard/summary", token: token, wantCode: http.StatusOK, wantData: marshallObj(t, dashboard.Summary{})},
	})

	testutil.CreateMember(t, a.members, "John", testutil.Date(1990, 1, 1))
	testutil.CreateMember(t, a.members, "Jane", testutil.Date(1985, 6, 15))
	testutil.CreateGroup(t, a.groups, "Choir")
	testutil.CreateClass(t, a.classes, "Genesis")
	testutil.CreateClass(t, a.classes, "Exodus")
	testutil.CreateClass(t, a.classes, "Psalms")

	runHTTPTests(t, a, []httpTest{
		{
			name: "counts", path: "/dashboard/summary", token: token, wantCode: http.StatusOK,
			wantData: []byte(`{"totalMembers": 2, "totalGroups": 1, "totalBiblicalSchoolClasses": 3}`),
		},
	})
}
