package controllers

import (
	"net/http"
	"time"

	"iris-api/middleware"
	"iris-api/models"
	"iris-api/services"
	"iris-api/utils"

	"github.com/gin-gonic/gin"
)

type ChallengeController struct {
	challenges *services.ChallengeService
}

func NewChallengeController(challenges *services.ChallengeService) *ChallengeController {
	return &ChallengeController{challenges: challenges}
}

// ChallengeRequest is the phase 1 payload. Dates are YYYY-MM-DD (or RFC 3339).
type ChallengeRequest struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	Round1EvalStart string `json:"round1_eval_start"`
	Round1EvalEnd   string `json:"round1_eval_end"`
	Round2EvalStart string `json:"round2_eval_start"`
	Round2EvalEnd   string `json:"round2_eval_end"`
	Keywords        string `json:"keywords"`
	KeyInsights     string `json:"key_insights"`
	ExpectedOutcome string `json:"expected_outcome"`
	Visibility      string `json:"visibility"`
	TargetAudience  string `json:"target_audience"`
	IsFeatured      bool   `json:"is_featured"`
}

func (r ChallengeRequest) toInput() (services.ChallengeDraftInput, error) {
	in := services.ChallengeDraftInput{
		Title:           r.Title,
		Description:     r.Description,
		Keywords:        r.Keywords,
		KeyInsights:     r.KeyInsights,
		ExpectedOutcome: r.ExpectedOutcome,
		Visibility:      models.Visibility(r.Visibility),
		TargetAudience:  models.TargetAudience(r.TargetAudience),
		IsFeatured:      r.IsFeatured,
	}
	required := []struct {
		field string
		raw   string
		dst   *time.Time
	}{
		{"start_date", r.StartDate, &in.StartDate},
		{"end_date", r.EndDate, &in.EndDate},
		{"round1_eval_start", r.Round1EvalStart, &in.Round1EvalStart},
		{"round1_eval_end", r.Round1EvalEnd, &in.Round1EvalEnd},
	}
	for _, f := range required {
		t, err := utils.ParseDate(f.raw)
		if err != nil {
			return in, &services.ValidationError{Field: f.field, Message: err.Error()}
		}
		*f.dst = t
	}
	var err error
	if in.Round2EvalStart, err = utils.ParseDatePtr(r.Round2EvalStart); err != nil {
		return in, &services.ValidationError{Field: "round2_eval_start", Message: err.Error()}
	}
	if in.Round2EvalEnd, err = utils.ParseDatePtr(r.Round2EvalEnd); err != nil {
		return in, &services.ValidationError{Field: "round2_eval_end", Message: err.Error()}
	}
	return in, nil
}

type ReviewParametersRequest struct {
	Parameters []services.ParameterWeight `json:"parameters"`
}

type MentorRequest struct {
	Panel string `json:"panel"`
	Email string `json:"email"`
}

// CreateChallenge handles POST /challenges (phase 1).
func (h *ChallengeController) CreateChallenge(c *gin.Context) {
	var req ChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	in, err := req.toInput()
	if err != nil {
		respondError(c, err)
		return
	}
	ch, err := h.challenges.CreateDraft(c.Request.Context(), middleware.IdentityFrom(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, ch)
}

// GetChallenges handles GET /challenges?filter=active|draft|past|all&q=.
func (h *ChallengeController) GetChallenges(c *gin.Context) {
	items, err := h.challenges.List(c.Request.Context(), middleware.IdentityFrom(c), c.Query("filter"), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, items)
}

func (h *ChallengeController) GetFeatured(c *gin.Context) {
	ch, err := h.challenges.Featured(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, ch)
}

func (h *ChallengeController) GetChallenge(c *gin.Context) {
	detail, err := h.challenges.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, detail)
}

// UpdateChallengeStatus handles PATCH /challenges/:id with {status}.
func (h *ChallengeController) UpdateChallengeStatus(c *gin.Context) {
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	target, err := services.ParseChallengeStatus(req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	ch, err := h.challenges.UpdateStatus(c.Request.Context(), middleware.IdentityFrom(c), c.Param("id"), target)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, ch)
}

func (h *ChallengeController) SetReviewParameters(c *gin.Context) {
	var req ReviewParametersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	items, err := h.challenges.SetReviewParameters(c.Request.Context(), middleware.IdentityFrom(c), c.Param("id"), req.Parameters)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, items)
}

func (h *ChallengeController) GetHistory(c *gin.Context) {
	items, err := h.challenges.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, historyView(items))
}

// CreatePanel handles POST /challenge-panels (phase 2).
func (h *ChallengeController) CreatePanel(c *gin.Context) {
	var in services.PanelInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	panel, err := h.challenges.AddPanel(c.Request.Context(), middleware.IdentityFrom(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, panel)
}

func (h *ChallengeController) GetPanels(c *gin.Context) {
	challengeID := c.Query("challenge_id")
	if challengeID == "" {
		badRequest(c, "challenge_id is required")
		return
	}
	items, err := h.challenges.ListPanels(c.Request.Context(), challengeID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, items)
}

// AssignMentor handles POST /challenge-mentors (phase 3). A repeated
// assignment answers 200 with the existing record instead of 201.
func (h *ChallengeController) AssignMentor(c *gin.Context) {
	var req MentorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	if req.Panel == "" {
		badRequest(c, "panel is required")
		return
	}
	result, err := h.challenges.AssignMentor(c.Request.Context(), middleware.IdentityFrom(c), req.Panel, req.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	respondOK(c, status, result)
}

func (h *ChallengeController) GetMentors(c *gin.Context) {
	panelID := c.Query("panel_id")
	if panelID == "" {
		badRequest(c, "panel_id is required")
		return
	}
	items, err := h.challenges.ListMentors(c.Request.Context(), panelID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, items)
}
