package controllers

import (
	"net/http"
	"strings"

	"iris-api/middleware"
	"iris-api/models"
	"iris-api/repository"
	"iris-api/services"
	"iris-api/utils"

	"github.com/gin-gonic/gin"
)

type IdeaController struct {
	ideas *services.IdeaService
}

func NewIdeaController(ideas *services.IdeaService) *IdeaController {
	return &IdeaController{ideas: ideas}
}

type EvaluateRequest struct {
	Role        string `json:"role"`
	Action      string `json:"action"`
	IsDesirable bool   `json:"is_desirable"`
	IsFeasible  bool   `json:"is_feasible"`
	IsViable    bool   `json:"is_viable"`
	Remarks     string `json:"remarks"`
}

type StatusRequest struct {
	Status  string `json:"status"`
	Remarks string `json:"remarks"`
}

// CreateIdea handles POST /grassroot-ideas.
func (h *IdeaController) CreateIdea(c *gin.Context) {
	var in services.SubmitIdeaInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid payload: "+err.Error())
		return
	}
	idea, err := h.ideas.Submit(c.Request.Context(), middleware.IdentityFrom(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, idea)
}

// GetIdeas handles GET /grassroot-ideas. Supported filters: status (comma
// separated), user_id, and role=RM|IBU for the reviewer queues.
func (h *IdeaController) GetIdeas(c *gin.Context) {
	ctx := c.Request.Context()

	if role := c.Query("role"); role != "" {
		r, err := services.ParseReviewerRole(role)
		if err != nil {
			respondError(c, err)
			return
		}
		items, err := h.ideas.Pending(ctx, r)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusOK, items)
		return
	}

	filter := repository.IdeaFilter{IdeatorID: c.Query("user_id")}
	if raw := c.Query("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			st, err := services.ParseIdeaStatus(part)
			if err != nil {
				respondError(c, err)
				return
			}
			filter.Statuses = append(filter.Statuses, st)
		}
	}
	items, err := h.ideas.List(ctx, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, items)
}

func (h *IdeaController) GetIdea(c *gin.Context) {
	idea, err := h.ideas.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, idea)
}

// UpdateIdeaStatus handles PATCH /grassroot-ideas/:id with a target status.
func (h *IdeaController) UpdateIdeaStatus(c *gin.Context) {
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	target, err := services.ParseIdeaStatus(req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	idea, err := h.ideas.EvaluateToStatus(c.Request.Context(), middleware.IdentityFrom(c), c.Param("id"), target, req.Remarks)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, idea)
}

func (h *IdeaController) EvaluateIdea(c *gin.Context) {
	var req EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	idea, err := h.ideas.Evaluate(c.Request.Context(), middleware.IdentityFrom(c), c.Param("id"), services.EvaluationInput{
		Role:        services.ReviewerRole(req.Role),
		Action:      services.ReviewAction(req.Action),
		IsDesirable: req.IsDesirable,
		IsFeasible:  req.IsFeasible,
		IsViable:    req.IsViable,
		Remarks:     req.Remarks,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, idea)
}

func (h *IdeaController) GetEvaluations(c *gin.Context) {
	items, err := h.ideas.Evaluations(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, items)
}

func (h *IdeaController) GetHistory(c *gin.Context) {
	items, err := h.ideas.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, historyView(items))
}

type historyEntry struct {
	models.WorkflowLog
	StatusLabel string `json:"status_label"`
}

func historyView(logs []models.WorkflowLog) []historyEntry {
	out := make([]historyEntry, 0, len(logs))
	for _, l := range logs {
		out = append(out, historyEntry{WorkflowLog: l, StatusLabel: utils.StatusLabel(l.NewStatus)})
	}
	return out
}
