package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flashdeck/internal/models"
)

func card(topic, question string) models.Flashcard {
	return models.Flashcard{Question: question, Answer: "a-" + question, Topic: topic}
}

func TestDistinctTopics(t *testing.T) {
	cards := []models.Flashcard{
		card("Biology", "q1"),
		card("", "q2"),
		card("Chemistry", "q3"),
		card("Biology", "q4"),
		card("General", "q5"),
	}

	assert.Equal(t, []string{"Biology", "Chemistry", "General"}, DistinctTopics(cards))
	assert.Empty(t, DistinctTopics(nil))
}

func TestGroupByTopic_PartitionsDeck(t *testing.T) {
	cards := []models.Flashcard{
		card("Biology", "q1"),
		card("", "q2"),
		card("Chemistry", "q3"),
		card("Biology", "q4"),
		card("General", "q5"),
	}

	groups := GroupByTopic(cards)
	require.Len(t, groups, 3)

	assert.Equal(t, "Biology", groups[0].Topic)
	assert.Equal(t, "General", groups[1].Topic)
	assert.Equal(t, "Chemistry", groups[2].Topic)

	assert.Equal(t, []string{"q1", "q4"}, questions(groups[0].Cards))
	assert.Equal(t, []string{"q2", "q5"}, questions(groups[1].Cards))
	assert.Equal(t, 2, groups[1].Len())

	var flat []models.Flashcard
	for _, g := range groups {
		flat = append(flat, g.Cards...)
	}
	assert.ElementsMatch(t, cards, flat)
}

func TestGlobalIndex(t *testing.T) {
	cards := []models.Flashcard{
		card("Chemistry", "c1"),
		card("Physics", "p1"),
		card("Biology", "b1"),
		card("Physics", "p2"),
		card("Chemistry", "c2"),
		card("Biology", "b2"),
	}

	tests := []struct {
		name   string
		topic  string
		n      int
		want   int
		wantOK bool
	}{
		{"second biology card", "Biology", 1, 5, true},
		{"first biology card", "Biology", 0, 2, true},
		{"index past group", "Biology", 2, 0, false},
		{"negative index", "Biology", -1, 0, false},
		{"unknown topic", "History", 0, 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := GlobalIndex(cards, tc.topic, tc.n)
			assert.Equal(t, tc.wantOK, ok)
			if tc.wantOK {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestGlobalIndex_BlankTopicMatchesGeneral(t *testing.T) {
	cards := []models.Flashcard{card("Biology", "b1"), card("", "g1")}
	got, ok := GlobalIndex(cards, "General", 0)
	require.True(t, ok)
	assert.Equal(t, 1, got)
}

func questions(cards []models.Flashcard) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.Question
	}
	return out
}
