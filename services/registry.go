package services

import "iris-api/repository"

// Registry wires every service over one store.
type Registry struct {
	Users         *UserService
	Catalog       *CatalogService
	Notifications *NotificationService
	Ideas         *IdeaService
	Challenges    *ChallengeService
	Submissions   *ChallengeIdeaService
	Dashboard     *DashboardService
	Reports       *ReportService
}

func NewRegistry(store repository.Store, deps NotificationDeps, opts Options) *Registry {
	notifier := NewNotificationService(store, deps, opts)
	return &Registry{
		Users:         NewUserService(store, opts),
		Catalog:       NewCatalogService(store, opts),
		Notifications: notifier,
		Ideas:         NewIdeaService(store, notifier, opts),
		Challenges:    NewChallengeService(store, notifier, opts),
		Submissions:   NewChallengeIdeaService(store, notifier, opts),
		Dashboard:     NewDashboardService(store, opts),
		Reports:       NewReportService(store, opts),
	}
}
