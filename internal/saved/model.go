package saved

import (
	"time"

	"arcfeed/internal/feed"
)

// Article is a bookmarked page. The title is the document key, so saving the
// same page twice keeps a single entry.
type Article struct {
	Title        string    `bson:"_id" json:"title"`
	DisplayTitle string    `bson:"displayTitle" json:"displayTitle"`
	Description  string    `bson:"description,omitempty" json:"description,omitempty"`
	Extract      string    `bson:"extract,omitempty" json:"extract,omitempty"`
	ThumbnailURL string    `bson:"thumbnailUrl,omitempty" json:"thumbnailUrl,omitempty"`
	SavedAt      time.Time `bson:"savedAt" json:"savedAt"`
}

func FromFeed(a feed.Article) Article {
	return Article{
		Title:        a.ID,
		DisplayTitle: a.DisplayTitle,
		Description:  a.Description,
		Extract:      a.Extract,
		ThumbnailURL: a.ThumbnailURL,
	}
}
