package httpapi

import (
	"time"

	"arcfeed/internal/aggregator"
	"arcfeed/internal/feed"
	"arcfeed/internal/saved"

	"github.com/google/uuid"
)

// Views keep the upstream markup next to a plain-text rendering so clients
// can pick either.

type ArticleView struct {
	ID           string `json:"id"`
	DisplayTitle string `json:"displayTitle"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	Extract      string `json:"extract,omitempty"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

type MostReadView struct {
	ID           string `json:"id"`
	DisplayTitle string `json:"displayTitle"`
	Title        string `json:"title"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
	ViewCount    int64  `json:"viewCount"`
	Views        string `json:"views"`
}

type ImageView struct {
	Title           string `json:"title"`
	ThumbnailURL    string `json:"thumbnailUrl,omitempty"`
	DescriptionText string `json:"descriptionText,omitempty"`
	Description     string `json:"description,omitempty"`
}

type NewsView struct {
	Story        string `json:"story"`
	Text         string `json:"text"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

type EventView struct {
	Year  int           `json:"year"`
	Text  string        `json:"text"`
	Pages []ArticleView `json:"pages"`
}

type HomeView struct {
	LoadID      uuid.UUID      `json:"loadId"`
	RefreshedAt time.Time      `json:"refreshedAt"`
	Origin      feed.Origin    `json:"origin"`
	Featured    *ArticleView   `json:"featured,omitempty"`
	Picture     *ImageView     `json:"picture,omitempty"`
	MostRead    []MostReadView `json:"mostRead"`
	News        []NewsView     `json:"news"`
	OnThisDay   []EventView    `json:"onThisDay"`
	Random      ArticleView    `json:"random"`
}

type SavedView struct {
	ArticleView
	SavedAt time.Time `json:"savedAt"`
}

type errorView struct {
	Error  string `json:"error"`
	LoadID string `json:"loadId,omitempty"`
}

func articleView(a feed.Article) ArticleView {
	return ArticleView{
		ID:           a.ID,
		DisplayTitle: a.DisplayTitle,
		Title:        feed.PlainText(a.DisplayTitle),
		Description:  a.Description,
		Extract:      a.Extract,
		ThumbnailURL: a.ThumbnailURL,
	}
}

func homeView(snap aggregator.Snapshot) HomeView {
	home := snap.Home
	b := home.Bundle

	v := HomeView{
		LoadID:      snap.LoadID,
		RefreshedAt: snap.CompletedAt,
		Origin:      home.Origin,
		MostRead:    make([]MostReadView, 0, len(b.MostRead)),
		News:        make([]NewsView, 0, len(b.InTheNews)),
		OnThisDay:   make([]EventView, 0, len(b.OnThisDay)),
		Random:      articleView(home.Random),
	}

	if b.FeaturedArticle != nil {
		fa := articleView(*b.FeaturedArticle)
		v.Featured = &fa
	}
	if b.PictureOfDay != nil {
		v.Picture = &ImageView{
			Title:           b.PictureOfDay.Title,
			ThumbnailURL:    b.PictureOfDay.ThumbnailURL,
			Description:     b.PictureOfDay.DescriptionText,
			DescriptionText: feed.PlainText(b.PictureOfDay.DescriptionText),
		}
	}

	for _, s := range b.MostRead {
		v.MostRead = append(v.MostRead, MostReadView{
			ID:           s.ID,
			DisplayTitle: s.DisplayTitle,
			Title:        feed.PlainText(s.DisplayTitle),
			ThumbnailURL: s.ThumbnailURL,
			ViewCount:    s.ViewCount,
			Views:        feed.FormatViews(s.ViewCount),
		})
	}

	for _, n := range b.InTheNews {
		v.News = append(v.News, NewsView{
			Story:        n.StoryText,
			Text:         feed.PlainText(n.StoryText),
			ThumbnailURL: n.ThumbnailURL,
		})
	}

	for _, e := range b.OnThisDay {
		ev := EventView{
			Year:  e.Year,
			Text:  e.Text,
			Pages: make([]ArticleView, 0, len(e.RelatedPages)),
		}
		for _, p := range e.RelatedPages {
			ev.Pages = append(ev.Pages, articleView(p))
		}
		v.OnThisDay = append(v.OnThisDay, ev)
	}

	return v
}

func savedViews(list []saved.Article) []SavedView {
	out := make([]SavedView, 0, len(list))
	for _, a := range list {
		out = append(out, SavedView{
			ArticleView: ArticleView{
				ID:           a.Title,
				DisplayTitle: a.DisplayTitle,
				Title:        feed.PlainText(a.DisplayTitle),
				Description:  a.Description,
				Extract:      a.Extract,
				ThumbnailURL: a.ThumbnailURL,
			},
			SavedAt: a.SavedAt,
		})
	}
	return out
}
