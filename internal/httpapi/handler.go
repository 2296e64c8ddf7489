package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"

	"arcfeed/internal/aggregator"
	"arcfeed/internal/feed"
	"arcfeed/internal/saved"
	"arcfeed/internal/wiki"

	"github.com/gorilla/mux"
)

type FeedState interface {
	Latest() (aggregator.Snapshot, bool)
	Refresh(ctx context.Context) aggregator.Snapshot
}

type ArticleLookup interface {
	FetchSummary(ctx context.Context, title string) (feed.Article, error)
}

type Handler struct {
	state    FeedState
	articles ArticleLookup
	store    saved.Repository
	logger   *log.Logger
}

func NewHandler(state FeedState, articles ArticleLookup, store saved.Repository, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}

	return &Handler{
		state:    state,
		articles: articles,
		store:    store,
		logger:   logger,
	}
}

// Router wires every route. Titles are matched on the escaped path so that
// "AC%2FDC" stays one segment.
func (h *Handler) Router() http.Handler {
	r := mux.NewRouter().UseEncodedPath()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	r.HandleFunc("/feed", h.getFeed).Methods(http.MethodGet)
	r.HandleFunc("/feed/refresh", h.refreshFeed).Methods(http.MethodPost)
	r.HandleFunc("/articles/{title}", h.getArticle).Methods(http.MethodGet)
	r.HandleFunc("/saved", h.listSaved).Methods(http.MethodGet)
	r.HandleFunc("/saved/{title}", h.saveArticle).Methods(http.MethodPut)
	r.HandleFunc("/saved/{title}", h.removeSaved).Methods(http.MethodDelete)

	return r
}

func (h *Handler) getFeed(w http.ResponseWriter, _ *http.Request) {
	snap, ok := h.state.Latest()
	if !ok {
		writeJSON(w, http.StatusServiceUnavailable, errorView{Error: "feed is still loading"})
		return
	}
	h.writeSnapshot(w, snap)
}

// refreshFeed answers with the visible state after the refresh, which is an
// older snapshot when this one was stale. The refresh ignores request
// cancellation.
func (h *Handler) refreshFeed(w http.ResponseWriter, r *http.Request) {
	snap := h.state.Refresh(context.WithoutCancel(r.Context()))

	if latest, ok := h.state.Latest(); ok {
		snap = latest
	}
	h.writeSnapshot(w, snap)
}

func (h *Handler) writeSnapshot(w http.ResponseWriter, snap aggregator.Snapshot) {
	if snap.Err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorView{Error: snap.Err.Message, LoadID: snap.LoadID.String()})
		return
	}
	writeJSON(w, http.StatusOK, homeView(snap))
}

func (h *Handler) getArticle(w http.ResponseWriter, r *http.Request) {
	title, ok := titleVar(w, r)
	if !ok {
		return
	}

	a, err := h.articles.FetchSummary(r.Context(), title)
	if err != nil {
		h.writeLookupError(w, title, err)
		return
	}
	writeJSON(w, http.StatusOK, articleView(a))
}

func (h *Handler) listSaved(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Printf("list saved: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorView{Error: "could not list saved articles"})
		return
	}
	writeJSON(w, http.StatusOK, savedViews(list))
}

func (h *Handler) saveArticle(w http.ResponseWriter, r *http.Request) {
	title, ok := titleVar(w, r)
	if !ok {
		return
	}

	a, err := h.articles.FetchSummary(r.Context(), title)
	if err != nil {
		h.writeLookupError(w, title, err)
		return
	}

	entry := saved.FromFeed(a)
	created, err := h.store.Save(r.Context(), &entry)
	if err != nil {
		h.logger.Printf("save %s: %v", title, err)
		writeJSON(w, http.StatusInternalServerError, errorView{Error: "could not save article"})
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, savedViews([]saved.Article{entry})[0])
}

func (h *Handler) removeSaved(w http.ResponseWriter, r *http.Request) {
	title, ok := titleVar(w, r)
	if !ok {
		return
	}

	err := h.store.Remove(r.Context(), title)
	switch {
	case errors.Is(err, saved.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorView{Error: "article is not saved"})
	case err != nil:
		h.logger.Printf("remove %s: %v", title, err)
		writeJSON(w, http.StatusInternalServerError, errorView{Error: "could not remove article"})
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *Handler) writeLookupError(w http.ResponseWriter, title string, err error) {
	if errors.Is(err, wiki.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorView{Error: "article not found"})
		return
	}
	h.logger.Printf("lookup %s: %v", title, err)
	writeJSON(w, http.StatusBadGateway, errorView{Error: "article unavailable"})
}

func titleVar(w http.ResponseWriter, r *http.Request) (string, bool) {
	title, err := url.PathUnescape(mux.Vars(r)["title"])
	if err != nil || strings.TrimSpace(title) == "" {
		writeJSON(w, http.StatusBadRequest, errorView{Error: "invalid title"})
		return "", false
	}
	return title, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
