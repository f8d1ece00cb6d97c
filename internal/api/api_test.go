package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"travel_itinerary/internal/datamanager"
	"travel_itinerary/internal/db"
	"travel_itinerary/internal/domain"
	"travel_itinerary/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testSecret = "api-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
	conn   *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	return newTestServerWith(t, nil)
}

// newTestServerWith lets a test wrap the data manager before routes are built
func newTestServerWith(t *testing.T, wrap func(datamanager.DataManager) datamanager.DataManager) *testServer {
	t.Helper()
	conn, err := db.OpenDialector(sqlite.Open(filepath.Join(t.TempDir(), "api.db")+"?_foreign_keys=on"), false)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))

	var dm datamanager.DataManager = datamanager.NewSQLDataManager(conn, datamanager.WithHashCost(bcrypt.MinCost))
	if wrap != nil {
		dm = wrap(dm)
	}
	router, err := NewRouter(dm, RouterConfig{JWTSecret: testSecret})
	require.NoError(t, err)
	return &testServer{t: t, router: router, conn: conn}
}

// faultyStore fails selected reads with a storage error
type faultyStore struct {
	datamanager.DataManager
	getUserErr error
	listErr    error
}

func (f *faultyStore) GetUser(ctx context.Context, userID uint) (*domain.User, error) {
	if f.getUserErr != nil {
		return nil, f.getUserErr
	}
	return f.DataManager.GetUser(ctx, userID)
}

func (f *faultyStore) ListDestinations(ctx context.Context, userID uint) ([]domain.Destination, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.DataManager.ListDestinations(ctx, userID)
}

// findEntry returns the last captured log entry with the given message
func findEntry(hook *logtest.Hook, msg string) *logrus.Entry {
	entries := hook.AllEntries()
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Message == msg {
			return entries[i]
		}
	}
	return nil
}

func (s *testServer) do(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: token})
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) postForm(path string, form url.Values, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(req, token)
}

func (s *testServer) postJSON(path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return s.do(req, token)
}

func (s *testServer) get(path, token string) *httptest.ResponseRecorder {
	return s.do(httptest.NewRequest(http.MethodGet, path, nil), token)
}

// signup registers and logs in a user, returning its id and session token
func (s *testServer) signup(username string) (uint, string) {
	s.t.Helper()
	w := s.postForm("/register", url.Values{
		"username": {username},
		"email":    {username + "@example.com"},
		"password": {"password123"},
	}, "")
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())

	var registered struct {
		User domain.User `json:"user"`
	}
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &registered))

	w = s.postForm("/login", url.Values{"username": {username}, "password": {"password123"}}, "")
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var auth AuthResponse
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &auth))
	require.NotEmpty(s.t, auth.Token)
	return registered.User.ID, auth.Token
}

func (s *testServer) addDestination(token, name string) domain.Destination {
	s.t.Helper()
	w := s.postJSON("/add_destination", `{"name":"`+name+`","poster_url":"https://img.example/p.jpg","activities":"museums","accommodations":"hotel","transportation":"metro"}`, token)
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		Destination domain.Destination `json:"destination"`
	}
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Destination
}

func (s *testServer) listDestinations(token string) []domain.Destination {
	s.t.Helper()
	w := s.get("/get_destinations", token)
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Destinations []domain.Destination `json:"destinations"`
	}
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Destinations
}

func TestRegister(t *testing.T) {
	s := newTestServer(t)

	w := s.postForm("/register", url.Values{"username": {"Alice"}, "email": {"alice@example.com"}, "password": {"password123"}}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotContains(t, w.Body.String(), "password123")

	w = s.postForm("/register", url.Values{"username": {"alice"}, "email": {"a2@example.com"}, "password": {"password123"}}, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.postForm("/register", url.Values{"username": {"bob"}, "email": {"not-an-email"}, "password": {"password123"}}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.postForm("/register", url.Values{"username": {"bob smith"}, "email": {"bob@example.com"}, "password": {"password123"}}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.postForm("/register", url.Values{"username": {"bob"}, "email": {"bob@example.com"}, "password": {"short"}}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterMultibytePasswordTooLong(t *testing.T) {
	s := newTestServer(t)

	// 40 characters pass the length binding but are 80 bytes
	w := s.postForm("/register", url.Values{
		"username": {"zoe"},
		"email":    {"zoe@example.com"},
		"password": {strings.Repeat("é", 40)},
	}, "")
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"field":"password"`)

	w = s.postForm("/login", url.Values{"username": {"zoe"}, "password": {strings.Repeat("é", 40)}}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStorageFailureIsInternalError(t *testing.T) {
	hook := logtest.NewGlobal()
	s := newTestServerWith(t, func(dm datamanager.DataManager) datamanager.DataManager {
		return &faultyStore{
			DataManager: dm,
			listErr:     &datamanager.StorageError{Op: "list destinations", Err: errors.New("disk I/O error")},
		}
	})
	_, token := s.signup("quinn")

	w := s.get("/get_destinations", token)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal server error")
	assert.NotContains(t, w.Body.String(), "disk I/O error")

	entry := findEntry(hook, "Request failed")
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "list_destinations", entry.Data["action"])
}

func TestClosedDatabaseIsInternalError(t *testing.T) {
	s := newTestServer(t)
	sqlDB, err := s.conn.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	w := s.postForm("/register", url.Values{"username": {"ruth"}, "email": {"ruth@example.com"}, "password": {"password123"}}, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal server error")
}

func TestLoginAndLogout(t *testing.T) {
	s := newTestServer(t)
	s.signup("carol")

	w := s.postForm("/login", url.Values{"username": {"carol"}, "password": {"wrong-password"}}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.postForm("/login", url.Values{"username": {"nobody"}, "password": {"password123"}}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.postJSON("/login", `{"username":"CAROL","password":"password123"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.SessionCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	token := cookies[0].Value

	w = s.get("/", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"carol"`)

	hook := logtest.NewGlobal()
	w = s.get("/logout", token)
	require.Equal(t, http.StatusOK, w.Code)
	entry := findEntry(hook, "User logged out")
	require.NotNil(t, entry)
	assert.Equal(t, "carol", entry.Data["username"])
	cookies = w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Less(t, cookies[0].MaxAge, 0)

	w = s.get("/logout", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestIndex(t *testing.T) {
	s := newTestServer(t)

	w := s.get("/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "current_user")

	_, token := s.signup("oscar")
	w = s.get("/", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"oscar"`)
}

func TestIndexLogsUserLookupFailure(t *testing.T) {
	hook := logtest.NewGlobal()
	s := newTestServerWith(t, func(dm datamanager.DataManager) datamanager.DataManager {
		return &faultyStore{
			DataManager: dm,
			getUserErr:  &datamanager.StorageError{Op: "get user", Err: errors.New("connection reset")},
		}
	})
	_, token := s.signup("pat")

	w := s.get("/", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "current_user")

	entry := findEntry(hook, "Failed to load current user")
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Contains(t, entry.Data["error"], "connection reset")
}

func TestDestinationRoutesRequireSession(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusUnauthorized, s.get("/get_destinations", "").Code)
	assert.Equal(t, http.StatusUnauthorized, s.get("/destination/1", "").Code)
	assert.Equal(t, http.StatusUnauthorized, s.postJSON("/add_destination", `{}`, "").Code)
	assert.Equal(t, http.StatusUnauthorized, s.postForm("/update_destination/1", url.Values{}, "").Code)
	assert.Equal(t, http.StatusUnauthorized, s.postForm("/delete_destination/1/1", url.Values{}, "").Code)
	assert.Equal(t, http.StatusUnauthorized, s.get("/get_destinations", "forged").Code)
}

func TestAddAndListDestinations(t *testing.T) {
	s := newTestServer(t)
	_, token := s.signup("dave")

	assert.Empty(t, s.listDestinations(token))

	added := s.addDestination(token, "Lisbon")
	assert.Equal(t, "Lisbon", added.Name)

	w := s.postForm("/add_destination", url.Values{
		"name":           {"Porto"},
		"poster_url":     {""},
		"activities":     {"wine"},
		"accommodations": {""},
		"transportation": {"tram"},
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	list := s.listDestinations(token)
	require.Len(t, list, 2)
	assert.Equal(t, "Lisbon", list[0].Name)
	assert.Equal(t, "Porto", list[1].Name)
	assert.Equal(t, "wine", list[1].Activities)

	w = s.get("/destination/"+strconv.FormatUint(uint64(added.ID), 10), token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Lisbon"`)

	assert.Equal(t, http.StatusBadRequest, s.get("/destination/abc", token).Code)
	assert.Equal(t, http.StatusNotFound, s.get("/destination/999", token).Code)
}

func TestAddDestinationValidation(t *testing.T) {
	s := newTestServer(t)
	_, token := s.signup("erin")

	w := s.postJSON("/add_destination", `{"name":"","poster_url":"p","activities":"a","accommodations":"b","transportation":"c"}`, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"name"`)

	w = s.postJSON("/add_destination", `{"name":"Nice","activities":"a","accommodations":"b","transportation":"c"}`, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"poster_url"`)

	w = s.postJSON("/add_destination", `{"name":`, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Empty(t, s.listDestinations(token))
}

func TestUpdateDestination(t *testing.T) {
	s := newTestServer(t)
	_, token := s.signup("frank")
	_, otherToken := s.signup("grace")
	added := s.addDestination(token, "Tokyo")
	path := "/update_destination/" + strconv.FormatUint(uint64(added.ID), 10)

	update := url.Values{
		"poster_url":     {"https://img.example/tokyo.jpg"},
		"activities":     {""},
		"accommodations": {"ryokan"},
		"transportation": {"shinkansen"},
	}

	w := s.postForm(path, url.Values{"poster_url": {""}, "activities": {"x"}}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.postForm("/update_destination/999", update, token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.postForm(path, update, otherToken)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.postForm(path, update, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	list := s.listDestinations(token)
	require.Len(t, list, 1)
	assert.Equal(t, "Tokyo", list[0].Name)
	assert.Equal(t, "https://img.example/tokyo.jpg", list[0].PosterURL)
	assert.Equal(t, "", list[0].Activities)
	assert.Equal(t, "ryokan", list[0].Accommodations)
	assert.Equal(t, "shinkansen", list[0].Transportation)
}

func TestDeleteDestination(t *testing.T) {
	s := newTestServer(t)
	userID, token := s.signup("heidi")
	otherID, otherToken := s.signup("ivan")
	added := s.addDestination(token, "Berlin")

	id := strconv.FormatUint(uint64(added.ID), 10)
	own := "/delete_destination/" + strconv.FormatUint(uint64(userID), 10) + "/" + id
	foreign := "/delete_destination/" + strconv.FormatUint(uint64(otherID), 10) + "/" + id

	assert.Equal(t, http.StatusNotFound, s.postForm(foreign, nil, token).Code)
	assert.Equal(t, http.StatusNotFound, s.postForm(own, nil, otherToken).Code)
	assert.Len(t, s.listDestinations(token), 1)

	assert.Equal(t, http.StatusOK, s.postForm(own, nil, token).Code)
	assert.Empty(t, s.listDestinations(token))

	assert.Equal(t, http.StatusNotFound, s.postForm(own, nil, token).Code)
	assert.Equal(t, http.StatusBadRequest, s.postForm("/delete_destination/x/1", nil, token).Code)
}
