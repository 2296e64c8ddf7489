package wiki

import (
	"strings"

	"arcfeed/internal/feed"
)

func mapFeatured(r featuredResponse) feed.FeaturedBundle {
	var b feed.FeaturedBundle

	if r.TFA != nil {
		a := mapArticle(*r.TFA)
		b.FeaturedArticle = &a
	}

	if r.Image != nil {
		img := feed.Image{
			Title:        r.Image.Title,
			ThumbnailURL: thumbURL(r.Image.Thumbnail),
		}
		if r.Image.Description != nil {
			img.DescriptionText = r.Image.Description.Text
		}
		b.PictureOfDay = &img
	}

	if r.MostRead != nil && r.MostRead.Articles != nil {
		b.MostRead = make([]feed.ArticleSummary, 0, len(r.MostRead.Articles))
		for _, a := range r.MostRead.Articles {
			b.MostRead = append(b.MostRead, mapSummary(a))
		}
	}

	if r.News != nil {
		b.InTheNews = make([]feed.NewsItem, 0, len(r.News))
		for _, n := range r.News {
			b.InTheNews = append(b.InTheNews, mapNews(n))
		}
	}

	if r.OnThisDay != nil {
		b.OnThisDay = make([]feed.HistoryEvent, 0, len(r.OnThisDay))
		for _, e := range r.OnThisDay {
			b.OnThisDay = append(b.OnThisDay, mapEvent(e))
		}
	}

	return b
}

// mapArticle uses the page title as ID. Without one the display title is
// stripped of markup and turned into title form.
func mapArticle(p pageSummary) feed.Article {
	id := p.Title
	if id == "" {
		id = strings.ReplaceAll(feed.PlainText(p.DisplayTitle), " ", "_")
	}
	return feed.Article{
		ID:           id,
		DisplayTitle: p.DisplayTitle,
		ThumbnailURL: thumbURL(p.Thumbnail),
		Extract:      p.Extract,
		Description:  p.Description,
	}
}

func mapSummary(a mostReadArticle) feed.ArticleSummary {
	base := mapArticle(a.pageSummary)
	views := int64(a.Views)
	if views < 0 {
		views = 0
	}
	return feed.ArticleSummary{
		ID:           base.ID,
		DisplayTitle: base.DisplayTitle,
		ViewCount:    views,
		ThumbnailURL: base.ThumbnailURL,
	}
}

// mapNews takes the story thumbnail, or the first linked page that has one.
func mapNews(n newsStory) feed.NewsItem {
	item := feed.NewsItem{
		StoryText:    n.Story,
		ThumbnailURL: thumbURL(n.Thumbnail),
	}
	for _, l := range n.Links {
		if item.ThumbnailURL != "" {
			break
		}
		item.ThumbnailURL = thumbURL(l.Thumbnail)
	}
	return item
}

func mapEvent(e onThisDayItem) feed.HistoryEvent {
	pages := make([]feed.Article, 0, len(e.Pages))
	for _, p := range e.Pages {
		pages = append(pages, mapArticle(p))
	}
	return feed.HistoryEvent{
		Year:         int(e.Year),
		Text:         e.Text,
		RelatedPages: pages,
	}
}

func thumbURL(t *thumbnail) string {
	if t == nil {
		return ""
	}
	return t.Source
}
