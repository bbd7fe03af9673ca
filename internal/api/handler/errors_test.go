package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/timmy/musicmatch/internal/domain"
	"github.com/timmy/musicmatch/internal/service"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"incomplete quiz", &domain.IncompleteQuizError{Missing: []string{"q2"}, Answered: 1, Total: 2}, http.StatusBadRequest},
		{"invalid answer", &domain.InvalidAnswerError{QuestionID: "q1", OptionID: "z"}, http.StatusBadRequest},
		{"untrained", fmt.Errorf("wrapped: %w", &domain.UntrainedModelError{Operation: "match"}), http.StatusServiceUnavailable},
		{"not found", domain.ErrNotFound, http.StatusNotFound},
		{"training running", service.ErrTrainingInProgress, http.StatusConflict},
		{"empty catalog", &domain.EmptyCatalogError{Songs: 2, K: 3}, http.StatusUnprocessableEntity},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			respondError(c, tt.err)

			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
			var body map[string]interface{}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("body is not JSON: %v", err)
			}
			if tt.want == http.StatusInternalServerError && body["error"] != "internal error" {
				t.Errorf("internal error leaked: %v", body["error"])
			}
		})
	}
}
