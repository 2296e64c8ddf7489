package feed

// FeaturedBundle is the "today" payload shown on the home screen.
// Any field may be absent; nil means the upstream did not provide it.
type FeaturedBundle struct {
	FeaturedArticle *Article         `json:"featuredArticle,omitempty"`
	PictureOfDay    *Image           `json:"pictureOfDay,omitempty"`
	MostRead        []ArticleSummary `json:"mostRead,omitempty"`
	InTheNews       []NewsItem       `json:"inTheNews,omitempty"`
	OnThisDay       []HistoryEvent   `json:"onThisDay,omitempty"`
}

// Article is keyed by ID, the encyclopedia page title used for navigation.
// DisplayTitle and Extract are kept exactly as received and may contain markup.
type Article struct {
	ID           string `json:"id"`
	DisplayTitle string `json:"displayTitle"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
	Extract      string `json:"extract,omitempty"`
	Description  string `json:"description,omitempty"`
}

type ArticleSummary struct {
	ID           string `json:"id"`
	DisplayTitle string `json:"displayTitle"`
	ViewCount    int64  `json:"viewCount"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

type Image struct {
	Title           string `json:"title"`
	ThumbnailURL    string `json:"thumbnailUrl"`
	DescriptionText string `json:"descriptionText,omitempty"`
}

type NewsItem struct {
	StoryText    string `json:"storyText"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

type HistoryEvent struct {
	Year         int       `json:"year"`
	Text         string    `json:"text"`
	RelatedPages []Article `json:"relatedPages"`
}

// RandomArticle is sourced independently of the bundle but shares its shape.
type RandomArticle = Article

// Origin records which parts of a Home came from live upstream data.
type Origin struct {
	FeedLive       bool `json:"feedLive"`
	VarietyApplied bool `json:"varietyApplied"`
	RandomLive     bool `json:"randomLive"`
}

// Home is one aggregator result: a bundle plus a random article.
type Home struct {
	Bundle FeaturedBundle `json:"bundle"`
	Random RandomArticle  `json:"random"`
	Origin Origin         `json:"origin"`
}

// IsEmpty reports whether no field of the bundle is populated.
func (b FeaturedBundle) IsEmpty() bool {
	return b.FeaturedArticle == nil &&
		b.PictureOfDay == nil &&
		b.MostRead == nil &&
		b.InTheNews == nil &&
		b.OnThisDay == nil
}
