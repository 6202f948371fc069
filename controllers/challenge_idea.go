package controllers

import (
	"net/http"

	"iris-api/middleware"
	"iris-api/services"

	"github.com/gin-gonic/gin"
)

type ChallengeIdeaController struct {
	submissions *services.ChallengeIdeaService
}

func NewChallengeIdeaController(submissions *services.ChallengeIdeaService) *ChallengeIdeaController {
	return &ChallengeIdeaController{submissions: submissions}
}

// SubmitIdea handles POST /challenges/:id/ideas.
func (h *ChallengeIdeaController) SubmitIdea(c *gin.Context) {
	var in services.ChallengeIdeaInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid payload: "+err.Error())
		return
	}
	out, err := h.submissions.Submit(c.Request.Context(), middleware.IdentityFrom(c), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, out)
}

func (h *ChallengeIdeaController) GetChallengeIdeas(c *gin.Context) {
	items, err := h.submissions.ListForChallenge(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, items)
}

func (h *ChallengeIdeaController) GetIdea(c *gin.Context) {
	idea, err := h.submissions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, idea)
}

// GetMyIdeas handles GET /my-ideas with the caller's reward total.
func (h *ChallengeIdeaController) GetMyIdeas(c *gin.Context) {
	mine, err := h.submissions.Mine(c.Request.Context(), middleware.IdentityFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, mine)
}
