package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/social-scuba/divelog/pkg/audit"
	"github.com/social-scuba/divelog/pkg/auth"
	"github.com/social-scuba/divelog/pkg/config"
	"github.com/social-scuba/divelog/pkg/models"
	"github.com/social-scuba/divelog/pkg/services"
)

// testEnv wires handlers onto a mux behind the real session middleware.
// Security audit events are captured in auditLogs.
type testEnv struct {
	sessions  *auth.SessionStore
	authMW    *auth.Middleware
	auditor   *audit.SecurityAuditor
	auditLogs *observer.ObservedLogs
	mux       *http.ServeMux
}

func newTestEnv() *testEnv {
	sessions := auth.NewSessionStore(config.SessionConfig{Secret: "handler-test-secret", MaxAge: 3600})
	core, logs := observer.New(zapcore.InfoLevel)
	return &testEnv{
		sessions:  sessions,
		authMW:    auth.NewMiddleware(sessions, zap.NewNop()),
		auditor:   audit.NewSecurityAuditor(zap.New(core)),
		auditLogs: logs,
		mux:       http.NewServeMux(),
	}
}

func (e *testEnv) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

// asUser attaches a session cookie for userID to req.
func (e *testEnv) asUser(t *testing.T, req *http.Request, userID int) *http.Request {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, e.sessions.Login(rec, httptest.NewRequest(http.MethodPost, "/", nil), userID))
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

type mockAuthService struct {
	user      *models.User
	err       error
	signupReq services.SignupRequest
	loginName string
	loginPass string
}

func (m *mockAuthService) Signup(ctx context.Context, req services.SignupRequest) (*models.User, error) {
	m.signupReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.user, nil
}

func (m *mockAuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	m.loginName = username
	m.loginPass = password
	if m.err != nil {
		return nil, m.err
	}
	return m.user, nil
}

type mockUserService struct {
	user           *models.User
	profile        *models.Profile
	err            error
	requestedID    int
	updatePassword string
	update         models.ProfileUpdate
	deletedID      int
}

func (m *mockUserService) Get(ctx context.Context, userID int) (*models.User, error) {
	m.requestedID = userID
	if m.err != nil {
		return nil, m.err
	}
	return m.user, nil
}

func (m *mockUserService) GetProfile(ctx context.Context, userID int) (*models.Profile, error) {
	m.requestedID = userID
	if m.err != nil {
		return nil, m.err
	}
	return m.profile, nil
}

func (m *mockUserService) Stats(ctx context.Context, userID int) (models.UserStats, error) {
	if m.err != nil {
		return models.UserStats{}, m.err
	}
	return m.profile.Stats, nil
}

func (m *mockUserService) UpdateProfile(ctx context.Context, userID int, password string, update models.ProfileUpdate) (*models.User, error) {
	m.requestedID = userID
	m.updatePassword = password
	m.update = update
	if m.err != nil {
		return nil, m.err
	}
	return m.user, nil
}

func (m *mockUserService) Delete(ctx context.Context, userID int) error {
	m.deletedID = userID
	return m.err
}

type buddyEdge struct{ userID, buddyID int }

type mockBuddyService struct {
	list         []models.UserSummary
	leaderboards *models.Leaderboards
	err          error
	added        []buddyEdge
	removed      []buddyEdge
	listedID     int
	listedOfID   int
}

func (m *mockBuddyService) Add(ctx context.Context, userID, buddyID int) error {
	if m.err != nil {
		return m.err
	}
	m.added = append(m.added, buddyEdge{userID, buddyID})
	return nil
}

func (m *mockBuddyService) Remove(ctx context.Context, userID, buddyID int) error {
	if m.err != nil {
		return m.err
	}
	m.removed = append(m.removed, buddyEdge{userID, buddyID})
	return nil
}

func (m *mockBuddyService) ListBuddies(ctx context.Context, userID int) ([]models.UserSummary, error) {
	m.listedID = userID
	return m.list, m.err
}

func (m *mockBuddyService) ListBuddiesOf(ctx context.Context, userID int) ([]models.UserSummary, error) {
	m.listedOfID = userID
	return m.list, m.err
}

func (m *mockBuddyService) IsBuddy(ctx context.Context, userID, otherID int) (bool, error) {
	for _, e := range m.added {
		if e.userID == userID && e.buddyID == otherID {
			return true, nil
		}
	}
	return false, m.err
}

func (m *mockBuddyService) Leaderboards(ctx context.Context, userID int) (*models.Leaderboards, error) {
	m.listedID = userID
	if m.err != nil {
		return nil, m.err
	}
	return m.leaderboards, nil
}

type mockDiveSiteService struct {
	markers   []models.DiveSiteMarker
	detail    *models.DiveSiteDetail
	created   *models.DiveSite
	err       error
	bounds    models.MapBounds
	input     models.NewDiveSite
	userID    int
	deletedID int
}

func (m *mockDiveSiteService) InBounds(ctx context.Context, bounds models.MapBounds) ([]models.DiveSiteMarker, error) {
	m.bounds = bounds
	return m.markers, m.err
}

func (m *mockDiveSiteService) Get(ctx context.Context, siteID int) (*models.DiveSiteDetail, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.detail, nil
}

func (m *mockDiveSiteService) Create(ctx context.Context, userID int, in models.NewDiveSite) (*models.DiveSite, error) {
	m.userID = userID
	m.input = in
	if m.err != nil {
		return nil, m.err
	}
	return m.created, nil
}

func (m *mockDiveSiteService) Delete(ctx context.Context, userID, siteID int) error {
	m.userID = userID
	m.deletedID = siteID
	return m.err
}

type mockDiveService struct {
	dive      *models.DiveView
	feed      []models.DiveView
	err       error
	userID    int
	siteID    int
	diveID    int
	input     models.DiveInput
	deletedID int
}

func (m *mockDiveService) Log(ctx context.Context, userID, siteID int, in models.DiveInput) (*models.DiveView, error) {
	m.userID = userID
	m.siteID = siteID
	m.input = in
	if m.err != nil {
		return nil, m.err
	}
	return m.dive, nil
}

func (m *mockDiveService) Get(ctx context.Context, diveID int) (*models.DiveView, error) {
	m.diveID = diveID
	if m.err != nil {
		return nil, m.err
	}
	return m.dive, nil
}

func (m *mockDiveService) Edit(ctx context.Context, userID, diveID int, in models.DiveInput) (*models.DiveView, error) {
	m.userID = userID
	m.diveID = diveID
	m.input = in
	if m.err != nil {
		return nil, m.err
	}
	return m.dive, nil
}

func (m *mockDiveService) Delete(ctx context.Context, userID, diveID int) error {
	m.userID = userID
	m.deletedID = diveID
	return m.err
}

func (m *mockDiveService) Feed(ctx context.Context, userID int) ([]models.DiveView, error) {
	m.userID = userID
	return m.feed, m.err
}

type mockSearchService struct {
	users    models.Page[models.UserSummary]
	sites    models.Page[models.DiveSite]
	err      error
	category string
	query    string
	page     int
}

func (m *mockSearchService) Users(ctx context.Context, query string, page int) (models.Page[models.UserSummary], error) {
	m.category, m.query, m.page = "users", query, page
	return m.users, m.err
}

func (m *mockSearchService) DiveSites(ctx context.Context, query string, page int) (models.Page[models.DiveSite], error) {
	m.category, m.query, m.page = "divesites", query, page
	return m.sites, m.err
}

var (
	_ services.AuthService     = (*mockAuthService)(nil)
	_ services.UserService     = (*mockUserService)(nil)
	_ services.BuddyService    = (*mockBuddyService)(nil)
	_ services.DiveSiteService = (*mockDiveSiteService)(nil)
	_ services.DiveService     = (*mockDiveService)(nil)
	_ services.SearchService   = (*mockSearchService)(nil)
)
