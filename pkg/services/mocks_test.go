package services

import (
	"context"

	"github.com/social-scuba/divelog/pkg/apperrors"
	"github.com/social-scuba/divelog/pkg/models"
)

// mockUserRepository keeps users in memory, keyed by ID.
type mockUserRepository struct {
	users     map[int]*models.User
	nextID    int
	createErr error
	updateErr error
	deleteErr error
	searchErr error

	capturedQuery  string
	capturedLimit  int
	capturedOffset int
	searchResult   []models.UserSummary
	searchTotal    int
}

func newMockUserRepository(users ...*models.User) *mockUserRepository {
	m := &mockUserRepository{users: map[int]*models.User{}, nextID: 1}
	for _, u := range users {
		m.users[u.ID] = u
		if u.ID >= m.nextID {
			m.nextID = u.ID + 1
		}
	}
	return m
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, u := range m.users {
		if u.Username == user.Username {
			return apperrors.ErrConflict
		}
	}
	user.ID = m.nextID
	m.nextID++
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockUserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *mockUserRepository) Delete(ctx context.Context, id int) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.users[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *mockUserRepository) Search(ctx context.Context, query string, limit, offset int) ([]models.UserSummary, int, error) {
	m.capturedQuery, m.capturedLimit, m.capturedOffset = query, limit, offset
	if m.searchErr != nil {
		return nil, 0, m.searchErr
	}
	return m.searchResult, m.searchTotal, nil
}

// mockBuddyRepository stores directed buddy edges.
type mockBuddyRepository struct {
	edges  map[[2]int]bool
	order  [][2]int
	addErr error
	idsErr error
}

func newMockBuddyRepository() *mockBuddyRepository {
	return &mockBuddyRepository{edges: map[[2]int]bool{}}
}

func (m *mockBuddyRepository) Add(ctx context.Context, userID, buddyID int) error {
	if m.addErr != nil {
		return m.addErr
	}
	key := [2]int{userID, buddyID}
	if !m.edges[key] {
		m.edges[key] = true
		m.order = append(m.order, key)
	}
	return nil
}

func (m *mockBuddyRepository) Remove(ctx context.Context, userID, buddyID int) error {
	key := [2]int{userID, buddyID}
	if !m.edges[key] {
		return apperrors.ErrNotFound
	}
	delete(m.edges, key)
	return nil
}

func (m *mockBuddyRepository) ListBuddies(ctx context.Context, userID int) ([]models.UserSummary, error) {
	out := []models.UserSummary{}
	for _, e := range m.order {
		if m.edges[e] && e[0] == userID {
			out = append(out, models.UserSummary{ID: e[1]})
		}
	}
	return out, nil
}

func (m *mockBuddyRepository) ListBuddiesOf(ctx context.Context, userID int) ([]models.UserSummary, error) {
	out := []models.UserSummary{}
	for _, e := range m.order {
		if m.edges[e] && e[1] == userID {
			out = append(out, models.UserSummary{ID: e[0]})
		}
	}
	return out, nil
}

func (m *mockBuddyRepository) IsBuddy(ctx context.Context, userID, buddyID int) (bool, error) {
	return m.edges[[2]int{userID, buddyID}], nil
}

func (m *mockBuddyRepository) BuddyIDs(ctx context.Context, userID int) ([]int, error) {
	if m.idsErr != nil {
		return nil, m.idsErr
	}
	ids := []int{}
	for _, e := range m.order {
		if m.edges[e] && e[0] == userID {
			ids = append(ids, e[1])
		}
	}
	return ids, nil
}

// mockDiveRepository serves canned reads and captures writes.
type mockDiveRepository struct {
	dives      map[int]*models.DiveView
	totals     []models.DiverTotals
	countries  int
	continents int
	listed     []models.DiveView
	createErr  error
	updateErr  error

	created       *models.Dive
	updated       *models.Dive
	deletedID     int
	capturedIDs   []int
	capturedLimit int
}

func newMockDiveRepository() *mockDiveRepository {
	return &mockDiveRepository{dives: map[int]*models.DiveView{}}
}

func (m *mockDiveRepository) Create(ctx context.Context, dive *models.Dive) error {
	if m.createErr != nil {
		return m.createErr
	}
	dive.ID = len(m.dives) + 100
	if dive.DiveNo == 0 {
		dive.DiveNo = 1
	}
	copied := *dive
	m.created = &copied
	m.dives[dive.ID] = &models.DiveView{Dive: copied, TypeNames: copied.Types.Names()}
	return nil
}

func (m *mockDiveRepository) GetByID(ctx context.Context, id int) (*models.DiveView, error) {
	v, ok := m.dives[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *v
	return &copied, nil
}

func (m *mockDiveRepository) Update(ctx context.Context, dive *models.Dive) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	copied := *dive
	m.updated = &copied
	m.dives[dive.ID] = &models.DiveView{Dive: copied, TypeNames: copied.Types.Names()}
	return nil
}

func (m *mockDiveRepository) Delete(ctx context.Context, id int) error {
	if _, ok := m.dives[id]; !ok {
		return apperrors.ErrNotFound
	}
	m.deletedID = id
	delete(m.dives, id)
	return nil
}

func (m *mockDiveRepository) ListByUser(ctx context.Context, userID, limit int) ([]models.DiveView, error) {
	m.capturedIDs = []int{userID}
	m.capturedLimit = limit
	return m.listed, nil
}

func (m *mockDiveRepository) Feed(ctx context.Context, userIDs []int, limit int) ([]models.DiveView, error) {
	m.capturedIDs = userIDs
	m.capturedLimit = limit
	return m.listed, nil
}

func (m *mockDiveRepository) Totals(ctx context.Context, userIDs []int) ([]models.DiverTotals, error) {
	m.capturedIDs = userIDs
	want := map[int]bool{}
	for _, id := range userIDs {
		want[id] = true
	}
	out := []models.DiverTotals{}
	for _, t := range m.totals {
		if want[t.User.ID] {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockDiveRepository) CountPlaces(ctx context.Context, userID int) (int, int, error) {
	return m.countries, m.continents, nil
}

// mockDiveSiteRepository keeps sites in memory.
type mockDiveSiteRepository struct {
	sites     map[int]*models.DiveSite
	avg       *float64
	markers   []models.DiveSiteMarker
	createErr error

	capturedBounds models.MapBounds
	capturedQuery  string
	capturedOffset int
	searchResult   []models.DiveSite
	searchTotal    int
	deletedID      int
}

func newMockDiveSiteRepository(sites ...*models.DiveSite) *mockDiveSiteRepository {
	m := &mockDiveSiteRepository{sites: map[int]*models.DiveSite{}}
	for _, s := range sites {
		m.sites[s.ID] = s
	}
	return m
}

func (m *mockDiveSiteRepository) ReplaceAll(ctx context.Context, sites []models.DiveSite) (int64, error) {
	m.sites = map[int]*models.DiveSite{}
	for i := range sites {
		s := sites[i]
		s.ID = i + 1
		m.sites[s.ID] = &s
	}
	return int64(len(sites)), nil
}

func (m *mockDiveSiteRepository) Create(ctx context.Context, site *models.DiveSite) error {
	if m.createErr != nil {
		return m.createErr
	}
	site.ID = len(m.sites) + 1
	copied := *site
	m.sites[site.ID] = &copied
	return nil
}

func (m *mockDiveSiteRepository) GetByID(ctx context.Context, id int) (*models.DiveSite, error) {
	s, ok := m.sites[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (m *mockDiveSiteRepository) Delete(ctx context.Context, id int) error {
	if _, ok := m.sites[id]; !ok {
		return apperrors.ErrNotFound
	}
	m.deletedID = id
	delete(m.sites, id)
	return nil
}

func (m *mockDiveSiteRepository) InBounds(ctx context.Context, b models.MapBounds) ([]models.DiveSiteMarker, error) {
	m.capturedBounds = b
	return m.markers, nil
}

func (m *mockDiveSiteRepository) Search(ctx context.Context, query string, limit, offset int) ([]models.DiveSite, int, error) {
	m.capturedQuery, m.capturedOffset = query, offset
	return m.searchResult, m.searchTotal, nil
}

func (m *mockDiveSiteRepository) AverageRating(ctx context.Context, id int) (*float64, error) {
	return m.avg, nil
}
