package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/timmy/musicmatch/internal/domain"
	"github.com/timmy/musicmatch/internal/service"
)

// QuizHandler serves the taste quiz.
type QuizHandler struct {
	recs *service.RecommendationService
}

// NewQuizHandler creates a new quiz handler.
func NewQuizHandler(recs *service.RecommendationService) *QuizHandler {
	return &QuizHandler{recs: recs}
}

// SubmitRequest is the body of POST /api/v1/quiz/submit.
type SubmitRequest struct {
	Answers []domain.QuizAnswer `json:"answers" binding:"required,dive"`
}

// Questions handles GET /api/v1/quiz/questions.
func (h *QuizHandler) Questions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"questions": h.recs.Questions()})
}

// Submit handles POST /api/v1/quiz/submit.
func (h *QuizHandler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request: "+err.Error())
		return
	}

	result, err := h.recs.SubmitQuiz(c.Request.Context(), req.Answers)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
