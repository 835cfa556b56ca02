package tests

import (
	"bytes"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/koinonia/core/school"
	"github.com/trezcool/koinonia/testutil"
)

func Test_schoolApi_crud(t *testing.T) {
	a := setup(t)
	token := a.authToken(t)

	rec := a.do(newAuthRequest(http.MethodPost, "/biblical-school", token, []byte(`{"name": "Genesis"}`)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var cls school.Class
	unmarshall(t, rec, &cls)
	assert.NotEmpty(t, cls.ID)
	assert.Equal(t, "Genesis", cls.Name)

	rec = a.do(newAuthRequest(http.MethodPatch, "/biblical-school/"+cls.ID, token, []byte(`{"description": "In the beginning"}`)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	unmarshall(t, rec, &cls)
	if assert.NotNil(t, cls.Description) {
		assert.Equal(t, "In the beginning", *cls.Description)
	}

	rec = a.do(newAuthRequest(http.MethodGet, "/biblical-school", token))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var classes []school.Class
	unmarshall(t, rec, &classes)
	require.Len(t, classes, 1)
	assert.Equal(t, cls.ID, classes[0].ID)

	rec = a.do(newAuthRequest(http.MethodDelete, "/biblical-school/"+cls.ID, token))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	runHTTPTests(t, a, []httpTest{
		{
			name: "get deleted", path: "/biblical-school/" + cls.ID, token: token,
			wantCode: http.StatusNotFound,
			wantData: marshallObj(t, httpErr{Error: "class with ID " + cls.ID + " not found"}),
		},
	})
}

func Test_schoolApi_participants(t *testing.T) {
	a := setup(t)
	token := a.authToken(t)
	cls := testutil.CreateClass(t, a.classes, "Genesis")
	john := testutil.CreateMember(t, a.members, "John", testutil.Date(1990, 1, 1))

	participantsPath := "/biblical-school/" + cls.ID + "/participants"
	assign := func(memberID, role string) []byte {
		return []byte(fmt.Sprintf(`{"memberId": %q, "role": %q}`, memberID, role))
	}

	tests := []httpTest{
		{
			name: "assign teacher", method: http.MethodPost, path: participantsPath, token: token,
			body: assign(john.ID, school.RoleTeacher), wantCode: http.StatusNoContent,
		},
		{
			name: "assign again as student", method: http.MethodPost, path: participantsPath, token: token,
			body:     assign(john.ID, school.RoleStudent),
			wantCode: http.StatusConflict,
			wantData: marshallObj(t, httpErr{Error: fmt.Sprintf("member %s is already assigned to class %s", john.ID, cls.ID)}),
		},
		{
			name: "invalid role", method: http.MethodPost, path: participantsPath, token: token,
			body:     assign(john.ID, "JANITOR"),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"role": "role must be one of TEACHER, STUDENT"}`),
		},
		{
			name: "unknown class", method: http.MethodPost, path: "/biblical-school/unknown/participants", token: token,
			body:     assign(john.ID, school.RoleStudent),
			wantCode: http.StatusNotFound,
			wantData: marshallObj(t, httpErr{Error: "class with ID unknown not found"}),
		},
		{
			name: "unknown member", method: http.MethodPost, path: participantsPath, token: token,
			body:     assign("unknown", school.RoleStudent),
			wantCode: http.StatusNotFound,
			wantData: marshallObj(t, httpErr{Error: "member with ID unknown not found"}),
		},
		{
			name: "remove", method: http.MethodDelete, path: participantsPath + "/" + john.ID, token: token,
			wantCode: http.StatusNoContent,
		},
		{
			name: "remove twice", method: http.MethodDelete, path: participantsPath + "/" + john.ID, token: token,
			wantCode: http.StatusNotFound,
			wantData: marshallObj(t, httpErr{Error: fmt.Sprintf("member %s is not assigned to class %s", john.ID, cls.ID)}),
		},
	}
	runHTTPTests(t, a, tests)
}

func Test_schoolApi_attendance(t *testing.T) {
	a := setup(t)
	token := a.authToken(t)
	cls := testutil.CreateClass(t, a.classes, "Genesis")
	john := testutil.CreateMember(t, a.members, "John", testutil.Date(1990, 1, 1))

	attendancePath := "/biblical-school/" + cls.ID + "/attendance"
	record := func(status string) []byte {
		return []byte(fmt.Sprintf(`{"memberId": %q, "date": "2024-03-10", "status": %q}`, john.ID, status))
	}

	rec := a.do(newAuthRequest(http.MethodPost, attendancePath, token, record(school.StatusPresent)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var first school.Attendance
	unmarshall(t, rec, &first)
	assert.Equal(t, school.StatusPresent, first.Status)
	assert.Equal(t, "2024-03-10", first.Date.Format("2006-01-02"))

	// same day: updated in place
	rec = a.do(newAuthRequest(http.MethodPost, attendancePath, token, record(school.StatusAbsent)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var second school.Attendance
	unmarshall(t, rec, &second)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, school.StatusAbsent, second.Status)

	rec = a.do(newAuthRequest(http.MethodGet, attendancePath+"?date=2024-03-10", token))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var attendances []school.Attendance
	unmarshall(t, rec, &attendances)
	require.Len(t, attendances, 1)
	assert.Equal(t, first.ID, attendances[0].ID)
	if assert.NotNil(t, attendances[0].Student) {
		assert.Equal(t, "John", attendances[0].Student.Name)
	}

	rec = a.do(newAuthRequest(http.MethodPatch, "/biblical-school/attendance/"+first.ID, token, []byte(`{"status": "PRESENT"}`)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated school.Attendance
	unmarshall(t, rec, &updated)
	assert.Equal(t, school.StatusPresent, updated.Status)
	assert.Equal(t, first.Date, updated.Date)

	tests := []httpTest{
		{name: "other day", path: attendancePath + "?date=2024-03-17", token: token, wantCode: http.StatusOK, wantData: []byte(`[]`)},
		{
			name: "missing date", path: attendancePath, token: token,
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"date": "this field is required"}`),
		},
		{
			name: "invalid date", path: attendancePath + "?date=10-03-2024", token: token,
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"date": "date must be a date formatted as YYYY-MM-DD"}`),
		},
		{
			name: "invalid status", method: http.MethodPost, path: attendancePath, token: token,
			body:     record("LATE"),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"status": "status must be one of PRESENT, ABSENT"}`),
		},
		{
			name: "unknown class", path: "/biblical-school/unknown/attendance?date=2024-03-10", token: token,
			wantCode: http.StatusNotFound,
			wantData: marshallObj(t, httpErr{Error: "class with ID unknown not found"}),
		},
		{
			name: "update unknown", method: http.MethodPatch, path: "/biblical-school/attendance/unknown", token: token,
			body:     []byte(`{"status": "ABSENT"}`),
			wantCode: http.StatusNotFound,
			wantData: marshallObj(t, httpErr{Error: "attendance with ID unknown not found"}),
		},
	}
	runHTTPTests(t, a, tests)
}

func Test_schoolApi_exportAttendance(t *testing.T) {
	a := setup(t)
	token := a.authToken(t)
	cls := testutil.CreateClass(t, a.classes, "Genesis")
	john := testutil.CreateMember(t, a.members, "John", testutil.Date(1990, 1, 1))

	body := []byte(fmt.Sprintf(`{"memberId": %q, "date": "2024-03-10", "status": "PRESENT"}`, john.ID))
	rec := a.do(newAuthRequest(http.MethodPost, "/biblical-school/"+cls.ID+"/attendance", token, body))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = a.do(newAuthRequest(http.MethodGet, "/biblical-school/"+cls.ID+"/attendance/export?date=2024-03-10", token))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="attendance-2024-03-10.xlsx"`, rec.Header().Get("Content-Disposition"))

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("2024-03-10")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Genesis", rows[0][0])
	assert.Equal(t, []string{"Student", "Phone", "Status", "Recorded At"}, rows[1])
	assert.Equal(t, "John", rows[2][0])
	assert.Equal(t, school.StatusPresent, rows[2][2])

	runHTTPTests(t, a, []httpTest{
		{
			name: "missing date", path: "/biblical-school/" + cls.ID + "/attendance/export", token: token,
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"date": "this field is required"}`),
		},
	})
}
