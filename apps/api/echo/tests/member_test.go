package tests

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/koinonia/core/member"
	"github.com/trezcool/koinonia/testutil"
)

func memberIDs(t *testing.T, rec *httptest.ResponseRecorder) []string {
	t.Helper()
	var members []member.Member
	unmarshall(t, rec, &members)
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}
	return ids
}

func Test_memberApi_create(t *testing.T) {
	a := setup(t)
	token := a.authToken(t)

	body := []byte(`{"name": " John Doe ", "birthDate": "1990-05-17", "phone": "+243 810 000 000", "baptized": true}`)
	rec := a.do(newAuthRequest(http.MethodPost, "/members", token, body))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var m member.Member
	unmarshall(t, rec, &m)
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, "John Doe", m.Name)
	assert.Equal(t, "1990-05-17T12:00:00Z", m.BirthDate.Format("2006-01-02T15:04:05Z07:00"))
	if assert.NotNil(t, m.Phone) {
		assert.Equal(t, "+243 810 000 000", *m.Phone)
	}
	assert.Nil(t, m.Address)
	assert.True(t, m.Baptized)

	tests := []httpTest{
		{
			name: "missing fields", method: http.MethodPost, path: "/members", token: token,
			body:     []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"name": "this field is required", "birthDate": "this field is required"}`),
		},
		{
			name: "invalid birth date", method: http.MethodPost, path: "/members", token: token,
			body:     []byte(`{"name": "Jane", "birthDate": "17/05/1990"}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"birthDate": "birthDate must be a date formatted as YYYY-MM-DD"}`),
		},
	}
	runHTTPTests(t, a, tests)
}

func Test_memberApi_query(t *testing.T) {
	a := setup(t)
	token := a.authToken(t)

	john := testutil.CreateMember(t, a.members, "John", testutil.Date(1990, 1, 1), true)
	jane := testutil.CreateMember(t, a.members, "Jane", testutil.Date(1985, 6, 15))
	johanna := testutil.CreateMember(t, a.members, "Johanna", testutil.Date(2001, 3, 9), true)

	tests := []struct {
		name    string
		path    string
		wantIDs []string
	}{
		{name: "all, by name", path: "/members", wantIDs: []string{jane.ID, johanna.ID, john.ID}},
		{name: "search", path: "/members?search=JOH", wantIDs: []string{johanna.ID, john.ID}},
		{name: "search (unknown)", path: "/members?search=lol", wantIDs: []string{}},
		{name: "baptized", path: "/members?baptized=true", wantIDs: []string{johanna.ID, john.ID}},
		{name: "not baptized", path: "/members?baptized=false", wantIDs: []string{jane.ID}},
		{name: "ordering", path: "/members?ordering=-birthDate", wantIDs: []string{johanna.ID, john.ID, jane.ID}},
		{name: "unknown ordering ignored", path: "/members?ordering=lol", wantIDs: []string{jane.ID, johanna.ID, john.ID}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := a.do(newAuthRequest(http.MethodGet, tc.path, token))
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, tc.wantIDs, memberIDs(t, rec))
		})
	}

	runHTTPTests(t, a, []httpTest{
		{
			name: "invalid baptized", path: "/members?baptized=maybe", token: token,
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"baptized": "must be true or false"}`),
		},
	})
}

func Test_memberApi_detail(t *testing.T) {
	a := setup(t)
	token := a.authToken(t)
	john := testutil.CreateMember(t, a.members, "John", testutil.Date(1990, 1, 1))

	rec := a.do(newAuthRequest(http.MethodGet, "/members/"+john.ID, token))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got member.Member
	unmarshall(t, rec, &got)
	assert.Equal(t, john.ID, got.ID)
	assert.Equal(t, "John", got.Name)

	rec = a.do(newAuthRequest(http.MethodPatch, "/members/"+john.ID, token, []byte(`{"address": "12 Church Street", "baptized": true}`)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	unmarshall(t, rec, &got)
	assert.Equal(t, "John", got.Name)
	if assert.NotNil(t, got.Address) {
		assert.Equal(t, "12 Church Street", *got.Address)
	}
	assert.True(t, got.Baptized)

	rec = a.do(newAuthRequest(http.MethodDelete, "/members/"+john.ID, token))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	notFound := marshallObj(t, httpErr{Error: "member with ID " + john.ID + " not found"})
	runHTTPTests(t, a, []httpTest{
		{name: "get deleted", path: "/members/" + john.ID, token: token, wantCode: http.StatusNotFound, wantData: notFound},
		{
			name: "update deleted", method: http.MethodPatch, path: "/members/" + john.ID, token: token,
			body: []byte(`{"name": "Johnny"}`), wantCode: http.StatusNotFound, wantData: notFound,
		},
		{name: "delete deleted", method: http.MethodDelete, path: "/members/" + john.ID, token: token, wantCode: http.StatusNotFound, wantData: notFound},
	})
}

func newImportRequest(t *testing.T, token string, rows ...[]interface{}) (*http.Request, *httptest.ResponseRecorder) {
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "members.xlsx")
	require.NoError(t, err)
	require.NoError(t, f.Write(fw))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/members/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req, httptest.NewRecorder()
}

func Test_memberApi_import(t *testing.T) {
	a := setup(t)
	token := a.authToken(t)

	rec := a.do(newImportRequest(t, token,
		[]interface{}{"Name", "Birth Date", "Phone", "Address", "Baptized"},
		[]interface{}{"John", "1990-01-01", "0810000000", "12 Church Street", "yes"},
		[]interface{}{"", "1990-01-01"},
		[]interface{}{"Jane", "1985-06-15"},
	))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res member.ImportResult
	unmarshall(t, rec, &res)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, []member.RowError{{Row: 3, Error: "name is required"}}, res.Skipped)

	rec = a.do(newAuthRequest(http.MethodGet, "/members", token))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, memberIDs(t, rec), 2)

	t.Run("missing file", func(t *testing.T) {
		rec := a.do(newAuthRequest(http.MethodPost, "/members/import", token))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		ok, err := jsonBytesEqual(rec.Body.Bytes(), []byte(`{"file": "an xlsx file is required"}`))
		require.NoError(t, err)
		assert.True(t, ok, rec.Body.String())
	})
}
