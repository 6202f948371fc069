package services

import (
	"context"

	"iris-api/models"
	"iris-api/repository"
)

type Stats struct {
	Members        int64 `json:"members"`
	Ideas          int64 `json:"ideas"`
	LiveChallenges int64 `json:"live_challenges"`
}

type DashboardService struct {
	base
}

func NewDashboardService(store repository.Store, opts Options) *DashboardService {
	return &DashboardService{base: newBase(store, opts)}
}

func (s *DashboardService) Stats(ctx context.Context) (*Stats, error) {
	var (
		st  Stats
		err error
	)
	if st.Members, err = s.store.CountUsers(ctx); err != nil {
		return nil, err
	}
	if st.Ideas, err = s.store.CountIdeas(ctx); err != nil {
		return nil, err
	}
	if st.LiveChallenges, err = s.store.CountChallenges(ctx, models.ChallengeLive); err != nil {
		return nil, err
	}
	return &st, nil
}

// ActiveChallenges lists LIVE challenges running now, soonest deadline first.
func (s *DashboardService) ActiveChallenges(ctx context.Context) ([]models.Challenge, error) {
	now := s.now()
	return s.store.ListChallenges(ctx, repository.ChallengeFilter{
		Statuses: []models.ChallengeStatus{models.ChallengeLive},
		ActiveAt: &now,
	})
}
