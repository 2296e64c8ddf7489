package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

// decodeChange round-trips a raw change document the way the stream hands it over.
func decodeChange(t *testing.T, raw bson.M) changeEvent {
	t.Helper()

	data, err := bson.Marshal(raw)
	require.NoError(t, err)

	var ev changeEvent
	require.NoError(t, bson.Unmarshal(data, &ev))
	return ev
}

func TestToSavedChange_Insert(t *testing.T) {
	savedAt := time.Date(2025, time.October, 19, 8, 0, 0, 0, time.UTC)
	ev := decodeChange(t, bson.M{
		"operationType": "insert",
		"documentKey":   bson.M{"_id": "Capybara"},
		"fullDocument": bson.M{
			"_id":          "Capybara",
			"displayTitle": "Capybara",
			"savedAt":      savedAt,
		},
	})

	change, ok := toSavedChange(ev)
	require.True(t, ok)
	assert.Equal(t, OpSaved, change.Op)
	assert.Equal(t, "Capybara", change.Title)
	require.NotNil(t, change.Article)
	assert.Equal(t, "Capybara", change.Article.DisplayTitle)
	assert.True(t, savedAt.Equal(change.Article.SavedAt))
}

func TestToSavedChange_Delete(t *testing.T) {
	ev := decodeChange(t, bson.M{
		"operationType": "delete",
		"documentKey":   bson.M{"_id": "Capybara"},
	})

	change, ok := toSavedChange(ev)
	require.True(t, ok)
	assert.Equal(t, OpRemoved, change.Op)
	assert.Nil(t, change.Article)
}

func TestToSavedChange_Skips(t *testing.T) {
	cases := map[string]bson.M{
		"update without lookup": {"operationType": "update", "documentKey": bson.M{"_id": "Gone"}},
		"missing key":           {"operationType": "delete"},
		"drop":                  {"operationType": "drop", "documentKey": bson.M{"_id": "X"}},
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, ok := toSavedChange(decodeChange(t, raw))
			assert.False(t, ok)
		})
	}
}
