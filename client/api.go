package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"iris-api/models"
	"iris-api/services"
)

func (c *Client) Profile(ctx context.Context) (*services.UserProfile, error) {
	var out services.UserProfile
	if err := c.do(ctx, http.MethodGet, "/profile", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) FindUsers(ctx context.Context, email string) ([]models.User, error) {
	var out []models.User
	err := c.do(ctx, http.MethodGet, "/users", url.Values{"email": {email}}, nil, &out)
	return out, err
}

// ---------- catalog ----------

func (c *Client) Categories(ctx context.Context) ([]models.ImprovementCategory, error) {
	var out []models.ImprovementCategory
	err := c.do(ctx, http.MethodGet, "/improvement-categories", nil, nil, &out)
	return out, err
}

// SubCategories lists the subcategories of categoryID (all when zero).
func (c *Client) SubCategories(ctx context.Context, categoryID uint) ([]models.ImprovementSubCategory, error) {
	var q url.Values
	if categoryID != 0 {
		q = url.Values{"category_id": {strconv.FormatUint(uint64(categoryID), 10)}}
	}
	var out []models.ImprovementSubCategory
	err := c.do(ctx, http.MethodGet, "/improvement-subcategories", q, nil, &out)
	return out, err
}

func (c *Client) ReviewParameters(ctx context.Context) ([]models.ReviewParameter, error) {
	var out []models.ReviewParameter
	err := c.do(ctx, http.MethodGet, "/review-parameters", nil, nil, &out)
	return out, err
}

// ---------- grassroot ideas ----------

type IdeaQuery struct {
	Statuses []models.IdeaStatus
	UserID   string
	// Role selects a reviewer queue (RM or IBU) and overrides the other fields.
	Role string
}

func (q IdeaQuery) values() url.Values {
	v := url.Values{}
	if q.Role != "" {
		v.Set("role", q.Role)
		return v
	}
	if len(q.Statuses) > 0 {
		parts := make([]string, len(q.Statuses))
		for i, s := range q.Statuses {
			parts[i] = string(s)
		}
		v.Set("status", strings.Join(parts, ","))
	}
	if q.UserID != "" {
		v.Set("user_id", q.UserID)
	}
	return v
}

func (c *Client) SubmitIdea(ctx context.Context, in services.SubmitIdeaInput) (*models.GrassrootIdea, error) {
	var out models.GrassrootIdea
	if err := c.do(ctx, http.MethodPost, "/grassroot-ideas", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListIdeas(ctx context.Context, q IdeaQuery) ([]models.GrassrootIdea, error) {
	var out []models.GrassrootIdea
	err := c.do(ctx, http.MethodGet, "/grassroot-ideas", q.values(), nil, &out)
	return out, err
}

func (c *Client) GetIdea(ctx context.Context, ideaID string) (*models.GrassrootIdea, error) {
	var out models.GrassrootIdea
	if err := c.do(ctx, http.MethodGet, "/grassroot-ideas/"+url.PathEscape(ideaID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type Evaluation struct {
	Role        string `json:"role"`
	Action      string `json:"action"`
	IsDesirable bool   `json:"is_desirable"`
	IsFeasible  bool   `json:"is_feasible"`
	IsViable    bool   `json:"is_viable"`
	Remarks     string `json:"remarks"`
}

func (c *Client) EvaluateIdea(ctx context.Context, ideaID string, ev Evaluation) (*models.GrassrootIdea, error) {
	var out models.GrassrootIdea
	if err := c.do(ctx, http.MethodPost, "/grassroot-ideas/"+url.PathEscape(ideaID)+"/evaluate", nil, ev, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetIdeaStatus is the target-status form of an evaluation.
func (c *Client) SetIdeaStatus(ctx context.Context, ideaID string, status models.IdeaStatus, remarks string) (*models.GrassrootIdea, error) {
	body := map[string]string{"status": string(status), "remarks": remarks}
	var out models.GrassrootIdea
	if err := c.do(ctx, http.MethodPatch, "/grassroot-ideas/"+url.PathEscape(ideaID), nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) IdeaHistory(ctx context.Context, ideaID string) ([]models.WorkflowLog, error) {
	var out []models.WorkflowLog
	err := c.do(ctx, http.MethodGet, "/grassroot-ideas/"+url.PathEscape(ideaID)+"/history", nil, nil, &out)
	return out, err
}

// ---------- challenges ----------

// ChallengeDraft is the phase 1 payload; dates are YYYY-MM-DD.
type ChallengeDraft struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	Round1EvalStart string `json:"round1_eval_start"`
	Round1EvalEnd   string `json:"round1_eval_end"`
	Round2EvalStart string `json:"round2_eval_start,omitempty"`
	Round2EvalEnd   string `json:"round2_eval_end,omitempty"`
	Keywords        string `json:"keywords,omitempty"`
	KeyInsights     string `json:"key_insights,omitempty"`
	ExpectedOutcome string `json:"expected_outcome,omitempty"`
	Visibility      string `json:"visibility"`
	TargetAudience  string `json:"target_audience"`
	IsFeatured      bool   `json:"is_featured"`
}

func (c *Client) CreateChallenge(ctx context.Context, d ChallengeDraft) (*models.Challenge, error) {
	var out models.Challenge
	if err := c.do(ctx, http.MethodPost, "/challenges", nil, d, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListChallenges(ctx context.Context, filter, query string) ([]models.Challenge, error) {
	v := url.Values{}
	if filter != "" {
		v.Set("filter", filter)
	}
	if query != "" {
		v.Set("q", query)
	}
	var out []models.Challenge
	err := c.do(ctx, http.MethodGet, "/challenges", v, nil, &out)
	return out, err
}

func (c *Client) FeaturedChallenge(ctx context.Context) (*models.Challenge, error) {
	var out models.Challenge
	if err := c.do(ctx, http.MethodGet, "/challenges/featured", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetChallenge(ctx context.Context, challengeID string) (*services.ChallengeDetail, error) {
	var out services.ChallengeDetail
	if err := c.do(ctx, http.MethodGet, "/challenges/"+url.PathEscape(challengeID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) setChallengeStatus(ctx context.Context, challengeID string, status models.ChallengeStatus) (*models.Challenge, error) {
	var out models.Challenge
	body := map[string]string{"status": string(status)}
	if err := c.do(ctx, http.MethodPatch, "/challenges/"+url.PathEscape(challengeID), nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FinalizeChallenge publishes a draft (DRAFT -> LIVE).
func (c *Client) FinalizeChallenge(ctx context.Context, challengeID string) (*models.Challenge, error) {
	return c.setChallengeStatus(ctx, challengeID, models.ChallengeLive)
}

func (c *Client) ArchiveChallenge(ctx context.Context, challengeID string) (*models.Challenge, error) {
	return c.setChallengeStatus(ctx, challengeID, models.ChallengeArchived)
}

func (c *Client) SetReviewParameters(ctx context.Context, challengeID string, weights []services.ParameterWeight) ([]models.ChallengeReviewParameter, error) {
	body := map[string]any{"parameters": weights}
	var out []models.ChallengeReviewParameter
	err := c.do(ctx, http.MethodPut, "/challenges/"+url.PathEscape(challengeID)+"/review-parameters", nil, body, &out)
	return out, err
}

func (c *Client) AddPanel(ctx context.Context, in services.PanelInput) (*models.ChallengePanel, error) {
	var out models.ChallengePanel
	if err := c.do(ctx, http.MethodPost, "/challenge-panels", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListPanels is used to reconcile after a partially failed panel phase.
func (c *Client) ListPanels(ctx context.Context, challengeID string) ([]models.ChallengePanel, error) {
	var out []models.ChallengePanel
	err := c.do(ctx, http.MethodGet, "/challenge-panels", url.Values{"challenge_id": {challengeID}}, nil, &out)
	return out, err
}

func (c *Client) AssignMentor(ctx context.Context, panelID, email string) (*services.MentorAssignment, error) {
	body := map[string]string{"panel": panelID, "email": email}
	var out services.MentorAssignment
	if err := c.do(ctx, http.MethodPost, "/challenge-mentors", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListMentors(ctx context.Context, panelID string) ([]models.ChallengeMentor, error) {
	var out []models.ChallengeMentor
	err := c.do(ctx, http.MethodGet, "/challenge-mentors", url.Values{"panel_id": {panelID}}, nil, &out)
	return out, err
}

// ---------- notifications ----------

func (c *Client) Notifications(ctx context.Context, unreadOnly bool) ([]models.Notification, error) {
	var q url.Values
	if unreadOnly {
		q = url.Values{"unread": {"true"}}
	}
	var out []models.Notification
	err := c.do(ctx, http.MethodGet, "/notifications", q, nil, &out)
	return out, err
}

func (c *Client) UnreadCount(ctx context.Context) (int64, error) {
	var out struct {
		Unread int64 `json:"unread"`
	}
	if err := c.do(ctx, http.MethodGet, "/notifications/unread-count", nil, nil, &out); err != nil {
		return 0, err
	}
	return out.Unread, nil
}

func (c *Client) MarkRead(ctx context.Context, notificationID string) (*models.Notification, error) {
	var out models.Notification
	if err := c.do(ctx, http.MethodPost, "/notifications/"+url.PathEscape(notificationID)+"/mark_as_read", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ---------- dashboard & reports ----------

func (c *Client) Stats(ctx context.Context) (*services.Stats, error) {
	var out services.Stats
	if err := c.do(ctx, http.MethodGet, "/stats", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ActiveChallenges(ctx context.Context) ([]models.Challenge, error) {
	var out []models.Challenge
	err := c.do(ctx, http.MethodGet, "/dashboard/active-challenges", nil, nil, &out)
	return out, err
}

// ExportReport streams the CSV export into w.
func (c *Client) ExportReport(ctx context.Context, reportType, from, to string, w io.Writer) error {
	op := "GET /reports/export"
	q := url.Values{"report_type": {reportType}, "from_date": {from}, "to_date": {to}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reports/export?"+q.Encode(), nil)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	if s, ok := c.Session(); ok {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.decodeFailure(op, resp)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return &TransportError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	return nil
}
