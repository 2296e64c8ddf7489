package wiki

import (
	"math"
	"strconv"
	"strings"
)

// featuredResponse mirrors /feed/featured/{yyyy}/{mm}/{dd}. Every key is optional.
type featuredResponse struct {
	TFA       *pageSummary    `json:"tfa"`
	Image     *imageInfo      `json:"image"`
	MostRead  *mostRead       `json:"mostread"`
	News      []newsStory     `json:"news"`
	OnThisDay []onThisDayItem `json:"onthisday"`
}

type pageSummary struct {
	Title        string     `json:"title"`
	DisplayTitle string     `json:"displaytitle"`
	Extract      string     `json:"extract"`
	Description  string     `json:"description"`
	Thumbnail    *thumbnail `json:"thumbnail"`
}

type thumbnail struct {
	Source string `json:"source"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type mostRead struct {
	Date     string            `json:"date"`
	Articles []mostReadArticle `json:"articles"`
}

type mostReadArticle struct {
	pageSummary
	Views lenientInt `json:"views"`
	Rank  lenientInt `json:"rank"`
}

type imageInfo struct {
	Title       string     `json:"title"`
	Thumbnail   *thumbnail `json:"thumbnail"`
	Description *struct {
		Text string `json:"text"`
		HTML string `json:"html"`
	} `json:"description"`
}

type newsStory struct {
	Story     string        `json:"story"`
	Thumbnail *thumbnail    `json:"thumbnail"`
	Links     []pageSummary `json:"links"`
}

type onThisDayItem struct {
	Year  lenientInt    `json:"year"`
	Text  string        `json:"text"`
	Pages []pageSummary `json:"pages"`
}

// lenientInt accepts numbers, numeric strings with digit grouping ("12,403"),
// null and anything else. Unusable input decodes to 0 and never fails the
// surrounding document.
type lenientInt int64

func (n *lenientInt) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	s = strings.Trim(s, `"`)
	s = strings.ReplaceAll(s, ",", "")

	*n = 0
	if s == "" || s == "null" {
		return nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}

	switch {
	case f >= math.MaxInt64:
		*n = math.MaxInt64
	case f <= math.MinInt64:
		*n = math.MinInt64
	default:
		*n = lenientInt(f)
	}
	return nil
}
