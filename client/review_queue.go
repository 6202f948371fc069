package client

import (
	"context"
	"fmt"
	"sync"

	"iris-api/models"
)

// IdeaReviewer is the part of *Client a ReviewQueue needs.
type IdeaReviewer interface {
	ListIdeas(ctx context.Context, q IdeaQuery) ([]models.GrassrootIdea, error)
	EvaluateIdea(ctx context.Context, ideaID string, ev Evaluation) (*models.GrassrootIdea, error)
}

// ReviewQueue is the local list of ideas awaiting one reviewer role. An
// idea leaves the queue only after the server confirmed the decision.
type ReviewQueue struct {
	api  IdeaReviewer
	role string

	mu    sync.Mutex
	items []models.GrassrootIdea
}

func NewReviewQueue(api IdeaReviewer, role string) *ReviewQueue {
	return &ReviewQueue{api: api, role: role}
}

// Refresh replaces the local items with the server's pending list.
func (q *ReviewQueue) Refresh(ctx context.Context) error {
	items, err := q.api.ListIdeas(ctx, IdeaQuery{Role: q.role})
	if err != nil {
		return err
	}
	q.mu.Lock()
	q.items = items
	q.mu.Unlock()
	return nil
}

// Items returns a copy of the queued ideas.
func (q *ReviewQueue) Items() []models.GrassrootIdea {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]models.GrassrootIdea, len(q.items))
	copy(out, q.items)
	return out
}

func (q *ReviewQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Decision is a reviewer verdict; the role comes from the queue.
type Decision struct {
	Action      string
	IsDesirable bool
	IsFeasible  bool
	IsViable    bool
	Remarks     string
}

// Decide submits a decision for ideaID. On failure the queue is left
// unchanged and the error is returned.
func (q *ReviewQueue) Decide(ctx context.Context, ideaID string, d Decision) (*models.GrassrootIdea, error) {
	if !q.contains(ideaID) {
		return nil, fmt.Errorf("idea %s is not in the %s queue", ideaID, q.role)
	}
	idea, err := q.api.EvaluateIdea(ctx, ideaID, Evaluation{
		Role:        q.role,
		Action:      d.Action,
		IsDesirable: d.IsDesirable,
		IsFeasible:  d.IsFeasible,
		IsViable:    d.IsViable,
		Remarks:     d.Remarks,
	})
	if err != nil {
		return nil, err
	}
	q.remove(ideaID)
	return idea, nil
}

func (q *ReviewQueue) contains(ideaID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, it := range q.items {
		if it.IdeaID == ideaID {
			return true
		}
	}
	return false
}

func (q *ReviewQueue) remove(ideaID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, it := range q.items {
		if it.IdeaID == ideaID {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return
		}
	}
}
