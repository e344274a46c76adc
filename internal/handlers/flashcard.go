package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"flashdeck/internal/models"
	"flashdeck/internal/services"
)

const maxUploadBytes = 10 << 20

type FlashcardService interface {
	Generate(ctx context.Context, text, topic string) (*models.GenerateFlashcardsResponse, error)
	List(ctx context.Context, topic string) ([]models.Flashcard, error)
}

type TextExtractor interface {
	ExtractText(filename string, data []byte) (string, error)
}

type FlashcardHandler struct {
	svc     FlashcardService
	extract TextExtractor
	log     *zap.Logger
}

func NewFlashcardHandler(svc FlashcardService, extract TextExtractor, log *zap.Logger) *FlashcardHandler {
	return &FlashcardHandler{svc: svc, extract: extract, log: log}
}

// Generate handles POST /generate_flashcards.
func (h *FlashcardHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateFlashcardsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", r)
		return
	}
	h.generate(w, r, req.Text, req.Topic)
}

// Upload handles POST /generate_flashcards/upload: the notes come from a
// .txt, .pdf or .docx file instead of the request body.
func (h *FlashcardHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > maxUploadBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "File size exceeds 10MB limit", r)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided", r)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Could not read uploaded file", r)
		return
	}

	text, err := h.extract.ExtractText(header.Filename, data)
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr.Message, r)
			return
		}
		h.log.Warn("text extraction failed", zap.String("file", header.Filename), zap.Error(err))
		writeError(w, http.StatusUnprocessableEntity, "Could not extract text from file", r)
		return
	}

	h.generate(w, r, text, r.FormValue("topic"))
}

func (h *FlashcardHandler) generate(w http.ResponseWriter, r *http.Request, text, topic string) {
	resp, err := h.svc.Generate(r.Context(), text, topic)
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr.Message, r)
			return
		}
		h.log.Error("flashcard generation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to generate flashcards", r)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// List handles GET /get_flashcards?topic=.
func (h *FlashcardHandler) List(w http.ResponseWriter, r *http.Request) {
	topic := strings.TrimSpace(r.URL.Query().Get("topic"))

	cards, err := h.svc.List(r.Context(), topic)
	if err != nil {
		h.log.Error("listing flashcards failed", zap.String("topic", topic), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to load flashcards", r)
		return
	}
	writeJSON(w, http.StatusOK, models.GetFlashcardsResponse{Flashcards: cards})
}

// SupportedFormats lists the upload extensions.
func (h *FlashcardHandler) SupportedFormats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"formats": services.SupportedExtensions,
	})
}
