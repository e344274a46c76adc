package deck

import "flashdeck/internal/models"

// TopicGroup is one section of the saved-cards summary.
type TopicGroup struct {
	Topic string
	Cards []models.Flashcard
}

func (g TopicGroup) Len() int { return len(g.Cards) }

// DistinctTopics lists every non-empty topic once, in order of first
// appearance. Blank topics are skipped rather than reported as "General";
// this list feeds the topic filter, which filters on raw stored values.
func DistinctTopics(cards []models.Flashcard) []string {
	seen := make(map[string]struct{})
	var topics []string
	for _, c := range cards {
		if c.Topic == "" {
			continue
		}
		if _, ok := seen[c.Topic]; ok {
			continue
		}
		seen[c.Topic] = struct{}{}
		topics = append(topics, c.Topic)
	}
	return topics
}

// GroupByTopic partitions the deck by topic (blank counts as "General").
// Groups appear in first-occurrence order and keep deck order inside.
func GroupByTopic(cards []models.Flashcard) []TopicGroup {
	pos := make(map[string]int)
	var groups []TopicGroup
	for _, c := range cards {
		topic := c.TopicOrDefault()
		i, ok := pos[topic]
		if !ok {
			i = len(groups)
			pos[topic] = i
			groups = append(groups, TopicGroup{Topic: topic})
		}
		groups[i].Cards = append(groups[i].Cards, c)
	}
	return groups
}

// GlobalIndex resolves the n-th card of a topic group back to its position in
// the full deck by matching (topic, question). The first matching card wins,
// so duplicate questions inside one topic resolve to the earliest of them.
func GlobalIndex(cards []models.Flashcard, topic string, n int) (int, bool) {
	if n < 0 {
		return 0, false
	}
	var target *models.Flashcard
	seen := 0
	for i := range cards {
		if cards[i].TopicOrDefault() != topic {
			continue
		}
		if seen == n {
			target = &cards[i]
			break
		}
		seen++
	}
	if target == nil {
		return 0, false
	}
	for i, c := range cards {
		if c.SameCard(*target) {
			return i, true
		}
	}
	return 0, false
}
