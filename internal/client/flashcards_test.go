package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"flashdeck/internal/models"
)

func TestList_EncodesTopicAndAppliesDefaults(t *testing.T) {
	var gotTopic string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/get_flashcards", r.URL.Path)
		gotTopic = r.URL.Query().Get("topic")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"flashcards":[{"question":"Q","answer":"A","topic":"Cell Biology"}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/", nil, zaptest.NewLogger(t))
	cards, err := c.List(context.Background(), "Cell Biology & more")
	require.NoError(t, err)

	assert.Equal(t, "Cell Biology & more", gotTopic)
	require.Len(t, cards, 1)
	assert.Equal(t, models.DifficultyMedium, cards[0].Difficulty)
}

func TestList_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"error":"db down"}`},
		{"malformed body", http.StatusOK, `<html>`},
		{"missing flashcards field", http.StatusOK, `{}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL, nil, nil).List(context.Background(), "")
			var svcErr *ServiceError
			require.True(t, errors.As(err, &svcErr))
			assert.Equal(t, tc.status, svcErr.Status)
		})
	}
}

func TestList_EmptyResultIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"flashcards":[]}`))
	}))
	defer srv.Close()

	cards, err := New(srv.URL, nil, nil).List(context.Background(), "Biology")
	require.NoError(t, err)
	assert.Empty(t, cards)
}

func TestGenerate_PostsJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req models.GenerateFlashcardsRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Photosynthesis notes", req.Text)
		assert.Equal(t, "General", req.Topic)

		json.NewEncoder(w).Encode(models.GenerateFlashcardsResponse{
			Success: true,
			Flashcards: []models.Flashcard{
				{Question: "Q1", Answer: "A1", Topic: "General", Difficulty: models.DifficultyHard},
			},
		})
	}))
	defer srv.Close()

	cards, err := New(srv.URL, nil, nil).Generate(context.Background(), "Photosynthesis notes", "General")
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, models.DifficultyHard, cards[0].Difficulty)
}

func TestGenerate_SurfacesServiceErrorText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"No text provided"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, nil, nil).Generate(context.Background(), "", "General")
	var svcErr *ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, "No text provided", svcErr.Message)
	assert.Equal(t, http.StatusBadRequest, svcErr.Status)
}

func TestGenerate_SuccessWithoutCardsFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, nil, nil).Generate(context.Background(), "notes", "General")
	assert.Error(t, err)
}

func TestGenerate_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(url, nil, nil).Generate(context.Background(), "notes", "General")
	require.Error(t, err)
	var svcErr *ServiceError
	assert.False(t, errors.As(err, &svcErr))
}

func TestHTTPClientWithHeader_SetsHeaderOnEveryCall(t *testing.T) {
	var got []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.Header.Get("X-Service-Token"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"flashcards":[]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, HTTPClientWithHeader("X-Service-Token", "tok"), zaptest.NewLogger(t))
	_, err := c.List(context.Background(), "")
	require.NoError(t, err)
	_, err = c.List(context.Background(), "Biology")
	require.NoError(t, err)

	assert.Equal(t, []string{"tok", "tok"}, got)
}
