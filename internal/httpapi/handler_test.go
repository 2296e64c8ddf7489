package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"arcfeed/internal/aggregator"
	"arcfeed/internal/feed"
	"arcfeed/internal/saved"
	"arcfeed/internal/wiki"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type stubState struct {
	mu         sync.Mutex
	latest     *aggregator.Snapshot
	refreshed  aggregator.Snapshot
	refreshes  int
	stale      bool // Refresh returns refreshed without applying it
	refreshCtx context.Context
}

func (s *stubState) Latest() (aggregator.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.latest == nil {
		return aggregator.Snapshot{}, false
	}
	return *s.latest, true
}

func (s *stubState) refreshCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshes
}

func (s *stubState) Refresh(ctx context.Context) aggregator.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.refreshes++
	s.refreshCtx = ctx
	if !s.stale {
		snap := s.refreshed
		s.latest = &snap
	}
	return s.refreshed
}

func (s *stubState) lastRefreshCtx() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshCtx
}

type mockLookup struct {
	mock.Mock
}

func (m *mockLookup) FetchSummary(ctx context.Context, title string) (feed.Article, error) {
	args := m.Called(ctx, title)
	return args.Get(0).(feed.Article), args.Error(1)
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Save(ctx context.Context, a *saved.Article) (bool, error) {
	args := m.Called(ctx, a)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) Remove(ctx context.Context, title string) error {
	return m.Called(ctx, title).Error(0)
}

func (m *mockStore) List(ctx context.Context) ([]saved.Article, error) {
	args := m.Called(ctx)
	return args.Get(0).([]saved.Article), args.Error(1)
}

func (m *mockStore) Exists(ctx context.Context, title string) (bool, error) {
	args := m.Called(ctx, title)
	return args.Bool(0), args.Error(1)
}

func liveSnapshot() aggregator.Snapshot {
	return aggregator.Snapshot{
		Seq:         1,
		LoadID:      uuid.New(),
		CompletedAt: time.Date(2025, time.October, 19, 9, 0, 0, 0, time.UTC),
		Home: feed.Home{
			Bundle: feed.FeaturedBundle{
				FeaturedArticle: &feed.Article{ID: "Ada_Lovelace", DisplayTitle: "<i>Ada</i> Lovelace"},
				PictureOfDay:    &feed.Image{Title: "File:River.jpg", DescriptionText: "A <b>river</b>"},
				MostRead:        []feed.ArticleSummary{{ID: "X", DisplayTitle: "X", ViewCount: 12403}},
				InTheNews:       []feed.NewsItem{{StoryText: "<a href=\"/wiki/Y\">Y</a> happened"}},
				OnThisDay: []feed.HistoryEvent{
					{Year: 1969, Text: "Moon landing", RelatedPages: []feed.Article{{ID: "Apollo_11", DisplayTitle: "Apollo 11"}}},
				},
			},
			Random: feed.RandomArticle{ID: "Soccer_ball", DisplayTitle: "Random Fallback"},
			Origin: feed.Origin{FeedLive: true, RandomLive: false},
		},
	}
}

type HandlerSuite struct {
	suite.Suite

	state  *stubState
	lookup *mockLookup
	store  *mockStore
	srv    *httptest.Server
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.state = &stubState{}
	s.lookup = &mockLookup{}
	s.store = &mockStore{}

	h := NewHandler(s.state, s.lookup, s.store, log.New(io.Discard, "", 0))
	s.srv = httptest.NewServer(h.Router())
}

func (s *HandlerSuite) TearDownTest() {
	s.srv.Close()
	s.lookup.AssertExpectations(s.T())
	s.store.AssertExpectations(s.T())
}

func (s *HandlerSuite) do(method, path string) (*http.Response, []byte) {
	req, err := http.NewRequest(method, s.srv.URL+path, nil)
	s.Require().NoError(err)

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	return resp, body
}

func (s *HandlerSuite) TestHealthz() {
	resp, body := s.do(http.MethodGet, "/healthz")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("ok", string(body))
}

func (s *HandlerSuite) TestFeedBeforeFirstLoad() {
	resp, _ := s.do(http.MethodGet, "/feed")
	s.Equal(http.StatusServiceUnavailable, resp.StatusCode)
}

func (s *HandlerSuite) TestFeedRendersViews() {
	snap := liveSnapshot()
	s.state.latest = &snap

	resp, body := s.do(http.MethodGet, "/feed")
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Equal("application/json", resp.Header.Get("Content-Type"))

	var v HomeView
	s.Require().NoError(json.Unmarshal(body, &v))

	s.Equal(snap.LoadID, v.LoadID)
	s.Require().NotNil(v.Featured)
	s.Equal("<i>Ada</i> Lovelace", v.Featured.DisplayTitle)
	s.Equal("Ada Lovelace", v.Featured.Title)
	s.Require().NotNil(v.Picture)
	s.Equal("A river", v.Picture.DescriptionText)
	s.Equal("A <b>river</b>", v.Picture.Description)
	s.Require().Len(v.MostRead, 1)
	s.Equal("12,403 views", v.MostRead[0].Views)
	s.Require().Len(v.News, 1)
	s.Equal("Y happened", v.News[0].Text)
	s.Require().Len(v.OnThisDay, 1)
	s.Equal("Apollo_11", v.OnThisDay[0].Pages[0].ID)
	s.Equal("Soccer_ball", v.Random.ID)
	s.True(v.Origin.FeedLive)
	s.False(v.Origin.RandomLive)
}

func (s *HandlerSuite) TestFeedLoadErrorIs503() {
	failed := aggregator.Snapshot{Seq: 2, LoadID: uuid.New(), Err: &aggregator.LoadError{Message: "failed to load content: boom"}}
	s.state.latest = &failed

	resp, body := s.do(http.MethodGet, "/feed")
	s.Equal(http.StatusServiceUnavailable, resp.StatusCode)

	var v errorView
	s.Require().NoError(json.Unmarshal(body, &v))
	s.Equal("failed to load content: boom", v.Error)
	s.Equal(failed.LoadID.String(), v.LoadID)
}

func (s *HandlerSuite) TestRefreshRetriesAfterError() {
	failed := aggregator.Snapshot{Seq: 1, Err: &aggregator.LoadError{Message: "boom"}}
	s.state.latest = &failed
	s.state.refreshed = liveSnapshot()

	resp, _ := s.do(http.MethodPost, "/feed/refresh")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal(1, s.state.refreshCount())

	resp, _ = s.do(http.MethodGet, "/feed")
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *HandlerSuite) TestRefreshAnswersWithVisibleStateWhenStale() {
	visible := liveSnapshot()
	s.state.latest = &visible
	s.state.refreshed = aggregator.Snapshot{Seq: 1, LoadID: uuid.New(), Home: feed.Home{Random: feed.RandomArticle{ID: "Old"}}}
	s.state.stale = true

	resp, body := s.do(http.MethodPost, "/feed/refresh")
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var v HomeView
	s.Require().NoError(json.Unmarshal(body, &v))
	s.Equal(visible.LoadID, v.LoadID)
	s.Equal("Soccer_ball", v.Random.ID)
}

func (s *HandlerSuite) TestRefreshIsNotTiedToClientConnection() {
	s.state.refreshed = liveSnapshot()

	resp, _ := s.do(http.MethodPost, "/feed/refresh")
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	ctx := s.state.lastRefreshCtx()
	s.Require().NotNil(ctx)
	s.Nil(ctx.Done(), "refresh must not be cancelled with the request")
}

func (s *HandlerSuite) TestRefreshRequiresPost() {
	resp, _ := s.do(http.MethodGet, "/feed/refresh")
	s.Equal(http.StatusMethodNotAllowed, resp.StatusCode)
	s.Equal(0, s.state.refreshCount())
}

func (s *HandlerSuite) TestGetArticle() {
	s.lookup.On("FetchSummary", mock.Anything, "AC/DC").
		Return(feed.Article{ID: "AC/DC", DisplayTitle: "AC/DC", Description: "band"}, nil).
		Once()

	resp, body := s.do(http.MethodGet, "/articles/AC%2FDC")
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var v ArticleView
	s.Require().NoError(json.Unmarshal(body, &v))
	s.Equal("band", v.Description)
}

func (s *HandlerSuite) TestGetArticleNotFound() {
	s.lookup.On("FetchSummary", mock.Anything, "Nope").
		Return(feed.Article{}, fmt.Errorf("summary: %w", wiki.ErrNotFound)).
		Once()

	resp, _ := s.do(http.MethodGet, "/articles/Nope")
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *HandlerSuite) TestGetArticleUpstreamFailure() {
	s.lookup.On("FetchSummary", mock.Anything, "Ada").
		Return(feed.Article{}, errors.New("connection refused")).
		Once()

	resp, _ := s.do(http.MethodGet, "/articles/Ada")
	s.Equal(http.StatusBadGateway, resp.StatusCode)
}

func (s *HandlerSuite) TestSaveCreated() {
	s.lookup.On("FetchSummary", mock.Anything, "Ada Lovelace").
		Return(feed.Article{ID: "Ada_Lovelace", DisplayTitle: "Ada Lovelace"}, nil).
		Once()
	s.store.On("Save", mock.Anything, mock.MatchedBy(func(a *saved.Article) bool {
		return a.Title == "Ada_Lovelace"
	})).Return(true, nil).Once()

	resp, body := s.do(http.MethodPut, "/saved/Ada%20Lovelace")
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	var v SavedView
	s.Require().NoError(json.Unmarshal(body, &v))
	s.Equal("Ada_Lovelace", v.ID)
}

func (s *HandlerSuite) TestSaveExistingIsOK() {
	s.lookup.On("FetchSummary", mock.Anything, "Capybara").
		Return(feed.Article{ID: "Capybara"}, nil).
		Once()
	s.store.On("Save", mock.Anything, mock.Anything).Return(false, nil).Once()

	resp, _ := s.do(http.MethodPut, "/saved/Capybara")
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *HandlerSuite) TestSaveUnknownArticle() {
	s.lookup.On("FetchSummary", mock.Anything, "Nope").
		Return(feed.Article{}, wiki.ErrNotFound).
		Once()

	resp, _ := s.do(http.MethodPut, "/saved/Nope")
	s.Equal(http.StatusNotFound, resp.StatusCode)
	s.store.AssertNotCalled(s.T(), "Save", mock.Anything, mock.Anything)
}

func (s *HandlerSuite) TestListSaved() {
	s.store.On("List", mock.Anything).Return([]saved.Article{
		{Title: "B", DisplayTitle: "<b>B</b>"},
		{Title: "A", DisplayTitle: "A"},
	}, nil).Once()

	resp, body := s.do(http.MethodGet, "/saved")
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var v []SavedView
	s.Require().NoError(json.Unmarshal(body, &v))
	s.Require().Len(v, 2)
	s.Equal("B", v[0].ID)
	s.Equal("B", v[0].Title)
}

func (s *HandlerSuite) TestListSavedFailure() {
	s.store.On("List", mock.Anything).Return([]saved.Article(nil), errors.New("mongo down")).Once()

	resp, _ := s.do(http.MethodGet, "/saved")
	s.Equal(http.StatusInternalServerError, resp.StatusCode)
}

func (s *HandlerSuite) TestRemoveSaved() {
	s.store.On("Remove", mock.Anything, "Capybara").Return(nil).Once()
	s.store.On("Remove", mock.Anything, "Missing").Return(saved.ErrNotFound).Once()

	resp, _ := s.do(http.MethodDelete, "/saved/Capybara")
	s.Equal(http.StatusNoContent, resp.StatusCode)

	resp, _ = s.do(http.MethodDelete, "/saved/Missing")
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func TestHomeView_EmptyListsRenderAsArrays(t *testing.T) {
	v := homeView(aggregator.Snapshot{})

	data, err := json.Marshal(v)
	require.NoError(t, err)

	body := string(data)
	assert.Contains(t, body, `"mostRead":[]`)
	assert.Contains(t, body, `"news":[]`)
	assert.Contains(t, body, `"onThisDay":[]`)
	assert.NotContains(t, body, `"featured"`)
}
