package tests

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/koinonia/apps/api/echo"
	"github.com/trezcool/koinonia/core/auth"
	"github.com/trezcool/koinonia/core/dashboard"
	"github.com/trezcool/koinonia/core/group"
	"github.com/trezcool/koinonia/core/member"
	"github.com/trezcool/koinonia/core/school"
	"github.com/trezcool/koinonia/core/user"
	logsvc "github.com/trezcool/koinonia/services/logger"
	sqlxrepos "github.com/trezcool/koinonia/storage/database/sqlx"
	"github.com/trezcool/koinonia/testutil"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type app struct {
	server  *echoapi.Server
	signer  *auth.Signer
	users   user.Repository
	members member.Repository
	groups  group.Repository
	classes school.Repository
}

func setup(t *testing.T) app {
	conf := testutil.NewConfig(t)
	db := testutil.PrepareDB(t, conf)

	// set up repos
	users := sqlxrepos.NewUserRepository(db)
	members := sqlxrepos.NewMemberRepository(db)
	groups := sqlxrepos.NewGroupRepository(db)
	classes := sqlxrepos.NewSchoolRepository(db)

	// set up services
	signer := auth.NewSigner(conf)
	validate, translator := testutil.NewValidator()

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:         conf,
		Logger:       logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf),
		Signer:       signer,
		UserSvc:      user.NewService(users, signer),
		MemberSvc:    member.NewService(db, members),
		GroupSvc:     group.NewService(db, groups, members),
		SchoolSvc:    school.NewService(db, classes, members),
		DashboardSvc: dashboard.NewService(sqlxrepos.NewDashboardRepository(db)),
		Validate:     validate,
		Translator:   translator,
	})

	return app{
		server:  server,
		signer:  signer,
		users:   users,
		members: members,
		groups:  groups,
		classes: classes,
	}
}

// authToken signs a token for a freshly created admin.
func (a app) authToken(t *testing.T) string {
	usr := testutil.CreateUser(t, a.users, "admin@koinonia.test", "s3cure-Pa55", user.RoleAdmin)
	return getToken(t, a.signer, usr)
}

// do serves the request and returns the recorded response.
func (a app) do(req *http.Request, rec *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	a.server.ServeHTTP(rec, req)
	return rec
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, signer *auth.Signer, usr user.User) string {
	token, err := signer.SignToken(usr.ID, usr.Email, usr.Role)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func unmarshall(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dest), "body: %s", rec.Body.String())
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, tt.wantCode, rec.Code, "body: %s", rec.Body.String())
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

// runHTTPTests serves every test case against the app.
func runHTTPTests(t *testing.T, a app, tests []httpTest) {
	t.Helper()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			method := tc.method
			if method == "" {
				method = http.MethodGet
			}
			rec := a.do(newAuthRequest(method, tc.path, tc.token, tc.body))
			checkCodeAndData(t, tc, rec)
		})
	}
}
