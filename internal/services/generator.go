package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"flashdeck/internal/models"
)

const (
	// MaxGeneratedCards caps one generation request.
	MaxGeneratedCards = 5
	promptTextLimit   = 1000
	minSentenceLength = 20
)

// QuestionGenerator produces question/answer pairs from study notes. It asks
// the model when one is configured and falls back to sentence templates when
// there is no model, the model fails, or its reply contains no usable pairs.
type QuestionGenerator struct {
	model TextModel
	log   *zap.Logger
}

func NewQuestionGenerator(model TextModel, log *zap.Logger) *QuestionGenerator {
	return &QuestionGenerator{model: model, log: log}
}

func (g *QuestionGenerator) Generate(ctx context.Context, text string) []models.Flashcard {
	if g.model == nil {
		return FallbackQuestions(text)
	}

	reply, err := g.model.GenerateText(ctx, BuildQuestionPrompt(text))
	if err != nil {
		g.log.Warn("question model failed, using fallback", zap.Error(err))
		return FallbackQuestions(text)
	}

	cards := ParseQuestionsAndAnswers(reply)
	if len(cards) == 0 {
		g.log.Warn("question model reply had no Q:/A: pairs, using fallback",
			zap.Int("reply_len", len(reply)))
		return FallbackQuestions(text)
	}
	return cards
}

func BuildQuestionPrompt(text string) string {
	return fmt.Sprintf("Generate %d study questions and answers from this text. Format as Q: question A: answer\nText: %s",
		MaxGeneratedCards, truncateRunes(text, promptTextLimit))
}

// ParseQuestionsAndAnswers reads "Q: ..." / "A: ..." blocks. Lines that follow
// a marker continue the question until an answer starts, then continue the
// answer. Pairs missing either half are dropped.
func ParseQuestionsAndAnswers(generated string) []models.Flashcard {
	var cards []models.Flashcard
	var question, answer string

	flush := func() {
		if question != "" && answer != "" {
			cards = append(cards, models.Flashcard{
				Question:   question,
				Answer:     answer,
				Difficulty: models.DifficultyMedium,
			})
		}
	}

	for _, line := range strings.Split(generated, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "Q:"):
			flush()
			question = strings.TrimSpace(line[2:])
			answer = ""
		case strings.HasPrefix(line, "A:"):
			answer = strings.TrimSpace(line[2:])
		case line == "":
		case question != "" && answer == "":
			question += " " + line
		case answer != "":
			answer += " " + line
		}
	}
	flush()

	if len(cards) > MaxGeneratedCards {
		cards = cards[:MaxGeneratedCards]
	}
	return cards
}

var questionTemplates = []string{
	"What is the main concept discussed in: '%s'?",
	"How does this relate to the topic: '%s'?",
	"Why is this important: '%s'?",
	"When might this apply: '%s'?",
	"Where would you use this information: '%s'?",
}

// FallbackQuestions looks at the first five '.'-separated sentences and turns
// each one longer than 20 characters into a card, cycling the question
// template by sentence position.
func FallbackQuestions(text string) []models.Flashcard {
	sentences := strings.Split(text, ".")
	if len(sentences) > MaxGeneratedCards {
		sentences = sentences[:MaxGeneratedCards]
	}

	var cards []models.Flashcard
	for i, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		if utf8.RuneCountInString(sentence) <= minSentenceLength {
			continue
		}
		cards = append(cards, models.Flashcard{
			Question:   fmt.Sprintf(questionTemplates[i%len(questionTemplates)], sentence),
			Answer:     sentence,
			Difficulty: models.DifficultyMedium,
		})
	}
	return cards
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
