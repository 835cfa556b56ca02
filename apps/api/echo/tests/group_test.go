package tests

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/koinonia/core/group"
	"github.com/trezcool/koinonia/testutil"
)

func Test_groupApi_crud(t *testing.T) {
	a := setup(t)
	token := a.authToken(t)

	rec := a.do(newAuthRequest(http.MethodPost, "/groups", token, []byte(`{"name": "Choir", "description": "Sunday worship"}`)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var grp group.Group
	unmarshall(t, rec, &grp)
	assert.NotEmpty(t, grp.ID)
	assert.Equal(t, "Choir", grp.Name)
	assert.Equal(t, []group.Membership{}, grp.Members)

	rec = a.do(newAuthRequest(http.MethodPatch, "/groups/"+grp.ID, token, []byte(`{"name": "Worship Team"}`)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	unmarshall(t, rec, &grp)
	assert.Equal(t, "Worship Team", grp.Name)
	if assert.NotNil(t, grp.Description) {
		assert.Equal(t, "Sunday worship", *grp.Description)
	}

	rec = a.do(newAuthRequest(http.MethodGet, "/groups", token))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var groups []group.Group
	unmarshall(t, rec, &groups)
	require.Len(t, groups, 1)
	assert.Equal(t, grp.ID, groups[0].ID)

	rec = a.do(newAuthRequest(http.MethodDelete, "/groups/"+grp.ID, token))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	notFound := marshallObj(t, httpErr{Error: "group with ID " + grp.ID + " not found"})
	runHTTPTests(t, a, []httpTest{
		{
			name: "missing name", method: http.MethodPost, path: "/groups", token: token,
			body: []byte(`{"description": "nameless"}`), wantCode: http.StatusBadRequest,
			wantData: []byte(`{"name": "this field is required"}`),
		},
		{name: "get deleted", path: "/groups/" + grp.ID, token: token, wantCode: http.StatusNotFound, wantData: notFound},
		{name: "delete deleted", method: http.MethodDelete, path: "/groups/" + grp.ID, token: token, wantCode: http.StatusNotFound, wantData: notFound},
	})
}

func Test_groupApi_members(t *testing.T) {
	a := setup(t)
	token := a.authToken(t)
	grp := testutil.CreateGroup(t, a.groups, "Choir")
	john := testutil.CreateMember(t, a.members, "John", testutil.Date(1990, 1, 1))

	membersPath := "/groups/" + grp.ID + "/members"
	addJohn := []byte(fmt.Sprintf(`{"memberId": %q}`, john.ID))

	rec := a.do(newAuthRequest(http.MethodPost, membersPath, token, addJohn))
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = a.do(newAuthRequest(http.MethodGet, "/groups/"+grp.ID, token))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got group.Group
	unmarshall(t, rec, &got)
	require.Len(t, got.Members, 1)
	assert.Equal(t, john.ID, got.Members[0].MemberID)
	if assert.NotNil(t, got.Members[0].Member) {
		assert.Equal(t, "John", got.Members[0].Member.Name)
	}

	tests := []httpTest{
		{
			name: "already in group", method: http.MethodPost, path: membersPath, token: token, body: addJohn,
			wantCode: http.StatusConflict,
			wantData: marshallObj(t, httpErr{Error: fmt.Sprintf("member %s is already in group %s", john.ID, grp.ID)}),
		},
		{
			name: "unknown member", method: http.MethodPost, path: membersPath, token: token,
			body:     []byte(`{"memberId": "unknown"}`),
			wantCode: http.StatusNotFound,
			wantData: marshallObj(t, httpErr{Error: "member with ID unknown not found"}),
		},
		{
			name: "unknown group", method: http.MethodPost, path: "/groups/unknown/members", token: token, body: addJohn,
			wantCode: http.StatusNotFound,
			wantData: marshallObj(t, httpErr{Error: "group with ID unknown not found"}),
		},
		{
			name: "missing memberId", method: http.MethodPost, path: membersPath, token: token,
			body:     []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"memberId": "this field is required"}`),
		},
		{
			name: "remove", method: http.MethodDelete, path: membersPath + "/" + john.ID, token: token,
			wantCode: http.StatusNoContent,
		},
		{
			name: "remove twice", method: http.MethodDelete, path: membersPath + "/" + john.ID, token: token,
			wantCode: http.StatusNotFound,
			wantData: marshallObj(t, httpErr{Error: fmt.Sprintf("member %s not found in group %s", john.ID, grp.ID)}),
		},
	}
	runHTTPTests(t, a, tests)
}
