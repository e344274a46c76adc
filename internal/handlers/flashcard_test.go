package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"flashdeck/internal/models"
	"flashdeck/internal/services"
)

type fakeFlashcards struct {
	gotText, gotTopic string
	genErr            error
	listErr           error
	listTopic         string
	cards             []models.Flashcard
}

func (f *fakeFlashcards) Generate(ctx context.Context, text, topic string) (*models.GenerateFlashcardsResponse, error) {
	f.gotText, f.gotTopic = text, topic
	if f.genErr != nil {
		return nil, f.genErr
	}
	if strings.TrimSpace(text) == "" {
		return nil, services.ErrNoText
	}
	return &models.GenerateFlashcardsResponse{Success: true, Flashcards: f.cards, SessionID: 7}, nil
}

func (f *fakeFlashcards) List(ctx context.Context, topic string) ([]models.Flashcard, error) {
	f.listTopic = topic
	return f.cards, f.listErr
}

func newFlashcardHandler(svc *fakeFlashcards) *FlashcardHandler {
	return NewFlashcardHandler(svc, services.NewFileExtractService(), zap.NewNop())
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestGenerateHandler(t *testing.T) {
	cards := []models.Flashcard{{ID: 1, Question: "Q", Answer: "A", Topic: "Biology", Difficulty: models.DifficultyMedium}}

	tests := []struct {
		name    string
		body    string
		genErr  error
		status  int
		wantErr string
	}{
		{"ok", `{"text":"notes","topic":"Biology"}`, nil, http.StatusOK, ""},
		{"no text", `{"text":"","topic":"Biology"}`, nil, http.StatusBadRequest, "No text provided"},
		{"bad json", `{`, nil, http.StatusBadRequest, "Invalid request body"},
		{"storage down", `{"text":"notes"}`, errors.New("db down"), http.StatusInternalServerError, "Failed to generate flashcards"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeFlashcards{cards: cards, genErr: tc.genErr}
			h := newFlashcardHandler(svc)

			req := httptest.NewRequest(http.MethodPost, "/generate_flashcards", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			h.Generate(rec, req)

			assert.Equal(t, tc.status, rec.Code)
			if tc.wantErr != "" {
				assert.Equal(t, tc.wantErr, decodeError(t, rec))
				return
			}
			var resp models.GenerateFlashcardsResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.True(t, resp.Success)
			assert.Equal(t, int64(7), resp.SessionID)
			assert.Equal(t, cards, resp.Flashcards)
			assert.Equal(t, "Biology", svc.gotTopic)
		})
	}
}

func TestListHandler(t *testing.T) {
	svc := &fakeFlashcards{cards: []models.Flashcard{}}
	h := newFlashcardHandler(svc)

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/get_flashcards?topic=Biology", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Biology", svc.listTopic)
	assert.JSONEq(t, `{"flashcards":[]}`, rec.Body.String())
}

func TestListHandler_Failure(t *testing.T) {
	h := newFlashcardHandler(&fakeFlashcards{listErr: errors.New("db down")})

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/get_flashcards", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to load flashcards", decodeError(t, rec))
}

func multipartUpload(t *testing.T, filename, content, topic string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.WriteField("topic", topic))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/generate_flashcards/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadHandler(t *testing.T) {
	svc := &fakeFlashcards{cards: []models.Flashcard{}}
	h := newFlashcardHandler(svc)

	rec := httptest.NewRecorder()
	h.Upload(rec, multipartUpload(t, "notes.txt", "Mitochondria make ATP.\n", "Biology"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Mitochondria make ATP.", svc.gotText)
	assert.Equal(t, "Biology", svc.gotTopic)
}

func TestUploadHandler_Rejections(t *testing.T) {
	h := newFlashcardHandler(&fakeFlashcards{})

	rec := httptest.NewRecorder()
	h.Upload(rec, multipartUpload(t, "", "", "Biology"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No file provided", decodeError(t, rec))

	rec = httptest.NewRecorder()
	h.Upload(rec, multipartUpload(t, "slides.pptx", "x", "Biology"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.Upload(rec, multipartUpload(t, "notes.pdf", "not a pdf", "Biology"))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
