package repository

import (
	"context"
	"maps"
	"sort"
	"strings"
	"sync"
	"time"

	"iris-api/models"
)

type memData struct {
	users           map[string]models.User
	roles           map[string]models.Role // by name
	userRoles       map[string]map[uint]bool
	details         map[string]models.EmployeeDetail
	loginLogs       []models.UserLoginLog
	categories      map[uint]models.ImprovementCategory
	subCategories   map[uint]models.ImprovementSubCategory
	parameters      map[uint]models.ReviewParameter
	ideas           map[string]models.GrassrootIdea
	evaluations     []models.GrassrootEvaluation
	challenges      map[string]models.Challenge
	challengeParams map[string][]models.ChallengeReviewParameter
	panels          map[string]models.ChallengePanel
	mentors         []models.ChallengeMentor
	challengeIdeas  map[string]models.ChallengeIdea
	ideaDetails     map[string]models.IdeaDetail
	coIdeators      []models.CoIdeator
	rewards         []models.Reward
	notifications   map[string]models.Notification
	workflowLogs    []models.WorkflowLog
	seq             uint
}

func newMemData() *memData {
	return &memData{
		users:           map[string]models.User{},
		roles:           map[string]models.Role{},
		userRoles:       map[string]map[uint]bool{},
		details:         map[string]models.EmployeeDetail{},
		categories:      map[uint]models.ImprovementCategory{},
		subCategories:   map[uint]models.ImprovementSubCategory{},
		parameters:      map[uint]models.ReviewParameter{},
		ideas:           map[string]models.GrassrootIdea{},
		challenges:      map[string]models.Challenge{},
		challengeParams: map[string][]models.ChallengeReviewParameter{},
		panels:          map[string]models.ChallengePanel{},
		challengeIdeas:  map[string]models.ChallengeIdea{},
		ideaDetails:     map[string]models.IdeaDetail{},
		notifications:   map[string]models.Notification{},
	}
}

func (d *memData) clone() *memData {
	c := &memData{
		users:           maps.Clone(d.users),
		roles:           maps.Clone(d.roles),
		userRoles:       make(map[string]map[uint]bool, len(d.userRoles)),
		details:         maps.Clone(d.details),
		loginLogs:       append([]models.UserLoginLog(nil), d.loginLogs...),
		categories:      maps.Clone(d.categories),
		subCategories:   maps.Clone(d.subCategories),
		parameters:      maps.Clone(d.parameters),
		ideas:           maps.Clone(d.ideas),
		evaluations:     append([]models.GrassrootEvaluation(nil), d.evaluations...),
		challenges:      maps.Clone(d.challenges),
		challengeParams: make(map[string][]models.ChallengeReviewParameter, len(d.challengeParams)),
		panels:          maps.Clone(d.panels),
		mentors:         append([]models.ChallengeMentor(nil), d.mentors...),
		challengeIdeas:  maps.Clone(d.challengeIdeas),
		ideaDetails:     maps.Clone(d.ideaDetails),
		coIdeators:      append([]models.CoIdeator(nil), d.coIdeators...),
		rewards:         append([]models.Reward(nil), d.rewards...),
		notifications:   maps.Clone(d.notifications),
		workflowLogs:    append([]models.WorkflowLog(nil), d.workflowLogs...),
		seq:             d.seq,
	}
	for k, v := range d.userRoles {
		c.userRoles[k] = maps.Clone(v)
	}
	for k, v := range d.challengeParams {
		c.challengeParams[k] = append([]models.ChallengeReviewParameter(nil), v...)
	}
	return c
}

// MemoryStore is an in-process Store for tests and single-instance demos.
// A transaction works on a private copy of the data that replaces the
// shared copy on commit. Writers outside a transaction wait on txMu, so a
// commit never discards them and readers never see uncommitted rows.
type MemoryStore struct {
	mu   sync.RWMutex
	txMu *sync.Mutex
	data *memData
	inTx bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{txMu: &sync.Mutex{}, data: newMemData()}
}

// memTx is the Store handed to a transaction body; nested Tx calls join
// the outer transaction.
type memTx struct {
	*MemoryStore
}

func (t memTx) Tx(ctx context.Context, fn func(Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(t)
}

func (s *MemoryStore) Tx(ctx context.Context, fn func(Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	work := &MemoryStore{txMu: s.txMu, data: s.data.clone(), inTx: true}
	s.mu.RUnlock()

	if err := fn(memTx{work}); err != nil {
		return err
	}
	s.mu.Lock()
	s.data = work.data
	s.mu.Unlock()
	return nil
}

// lockWrite takes the locks a write needs and returns the release func.
// Inside a transaction txMu is already held by Tx.
func (s *MemoryStore) lockWrite() func() {
	if s.inTx {
		s.mu.Lock()
		return s.mu.Unlock
	}
	s.txMu.Lock()
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		s.txMu.Unlock()
	}
}

func (s *MemoryStore) nextID() uint {
	s.data.seq++
	return s.data.seq
}

// ---------- users ----------

func (s *MemoryStore) GetUser(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.data.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemoryStore) FindUsersByEmail(_ context.Context, email string) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	want := strings.ToLower(strings.TrimSpace(email))
	var out []models.User
	for _, u := range s.data.users {
		if strings.ToLower(u.Email) == want {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *MemoryStore) CountUsers(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.data.users)), nil
}

func (s *MemoryStore) UserHasRole(_ context.Context, userID, roleName string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	role, ok := s.data.roles[roleName]
	if !ok {
		return false, nil
	}
	return s.data.userRoles[userID][role.RoleID], nil
}

func (s *MemoryStore) UsersWithRole(_ context.Context, roleName string) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	role, ok := s.data.roles[roleName]
	if !ok {
		return nil, nil
	}
	var out []models.User
	for userID, set := range s.data.userRoles {
		if !set[role.RoleID] {
			continue
		}
		if u, ok := s.data.users[userID]; ok {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (s *MemoryStore) GetEmployeeDetail(_ context.Context, userID string) (*models.EmployeeDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.data.details[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &d, nil
}

func (s *MemoryStore) IsReportingManager(_ context.Context, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.data.details {
		if d.ReportingManagerID != nil && *d.ReportingManagerID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) CreateLoginLog(_ context.Context, entry *models.UserLoginLog) error {
	defer s.lockWrite()()
	entry.ID = s.nextID()
	s.data.loginLogs = append(s.data.loginLogs, *entry)
	return nil
}

// ---------- catalog ----------

func (s *MemoryStore) ListCategories(context.Context) ([]models.ImprovementCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ImprovementCategory, 0, len(s.data.categories))
	for _, c := range s.data.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) GetCategory(_ context.Context, id uint) (*models.ImprovementCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.data.categories[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (s *MemoryStore) ListSubCategories(_ context.Context, categoryID uint) ([]models.ImprovementSubCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.ImprovementSubCategory
	for _, sc := range s.data.subCategories {
		if categoryID == 0 || sc.CategoryID == categoryID {
			out = append(out, sc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) GetSubCategory(_ context.Context, id uint) (*models.ImprovementSubCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sc, ok := s.data.subCategories[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &sc, nil
}

func (s *MemoryStore) ListReviewParameters(_ context.Context, activeOnly bool) ([]models.ReviewParameter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.ReviewParameter
	for _, p := range s.data.parameters {
		if activeOnly && !p.IsActive {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ParameterID < out[j].ParameterID })
	return out, nil
}

func (s *MemoryStore) GetReviewParameter(_ context.Context, id uint) (*models.ReviewParameter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.data.parameters[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

// ---------- ideas ----------

func (s *MemoryStore) CreateIdea(_ context.Context, idea *models.GrassrootIdea) error {
	defer s.lockWrite()()
	s.data.ideas[idea.IdeaID] = *idea
	return nil
}

func (s *MemoryStore) GetIdea(_ context.Context, id string) (*models.GrassrootIdea, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idea, ok := s.data.ideas[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &idea, nil
}

func (s *MemoryStore) ListIdeas(_ context.Context, filter IdeaFilter) ([]models.GrassrootIdea, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.GrassrootIdea
	for _, idea := range s.data.ideas {
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, idea.Status) {
			continue
		}
		if filter.IdeatorID != "" && idea.IdeatorID != filter.IdeatorID {
			continue
		}
		if !inRange(idea.CreatedAt, filter.CreatedFrom, filter.CreatedTo) {
			continue
		}
		out = append(out, idea)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) CountIdeas(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.data.ideas)), nil
}

func (s *MemoryStore) UpdateIdeaStatus(_ context.Context, id string, from, to models.IdeaStatus, at time.Time) error {
	defer s.lockWrite()()
	idea, ok := s.data.ideas[id]
	if !ok {
		return ErrNotFound
	}
	if idea.Status != from {
		return ErrStaleStatus
	}
	idea.Status = to
	idea.UpdatedAt = at
	s.data.ideas[id] = idea
	return nil
}

func (s *MemoryStore) CreateEvaluation(_ context.Context, eval *models.GrassrootEvaluation) error {
	defer s.lockWrite()()
	eval.ID = s.nextID()
	s.data.evaluations = append(s.data.evaluations, *eval)
	return nil
}

func (s *MemoryStore) ListEvaluations(_ context.Context, ideaID string) ([]models.GrassrootEvaluation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.GrassrootEvaluation
	for _, e := range s.data.evaluations {
		if e.IdeaID == ideaID {
			out = append(out, e)
		}
	}
	return out, nil
}

// ---------- challenges ----------

func (s *MemoryStore) CreateChallenge(_ context.Context, ch *models.Challenge) error {
	defer s.lockWrite()()
	s.data.challenges[ch.ChallengeID] = *ch
	return nil
}

func (s *MemoryStore) GetChallenge(_ context.Context, id string) (*models.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ch, ok := s.data.challenges[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &ch, nil
}

// LockChallenge is a plain read; Tx already serializes writers.
func (s *MemoryStore) LockChallenge(ctx context.Context, id string) (*models.Challenge, error) {
	return s.GetChallenge(ctx, id)
}

func (s *MemoryStore) ListChallenges(_ context.Context, filter ChallengeFilter) ([]models.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	term := strings.ToLower(strings.TrimSpace(filter.Query))
	var out []models.Challenge
	for _, ch := range s.data.challenges {
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, ch.Status) {
			continue
		}
		if filter.CreatedBy != "" && ch.CreatedByID != filter.CreatedBy {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(ch.Title), term) &&
			!strings.Contains(strings.ToLower(ch.Description), term) &&
			!strings.Contains(strings.ToLower(ch.Keywords), term) {
			continue
		}
		if filter.EndedBefore != nil && !ch.EndDate.Before(*filter.EndedBefore) {
			continue
		}
		if !inRange(ch.CreatedAt, filter.CreatedFrom, filter.CreatedTo) {
			continue
		}
		if filter.ActiveAt != nil && (ch.StartDate.After(*filter.ActiveAt) || ch.EndDate.Before(*filter.ActiveAt)) {
			continue
		}
		out = append(out, ch)
	}
	if filter.ActiveAt != nil {
		sort.Slice(out, func(i, j int) bool { return out[i].EndDate.Before(out[j].EndDate) })
	} else {
		sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	}
	return out, nil
}

func (s *MemoryStore) CountChallenges(_ context.Context, status models.ChallengeStatus) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, ch := range s.data.challenges {
		if status == "" || ch.Status == status {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) FeaturedChallenge(_ context.Context) (*models.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var best *models.Challenge
	for _, ch := range s.data.challenges {
		if !ch.IsFeatured || ch.Status != models.ChallengeLive {
			continue
		}
		if best == nil || ch.CreatedAt.After(best.CreatedAt) {
			c := ch
			best = &c
		}
	}
	if best == nil {
		return nil, ErrNotFound
	}
	return best, nil
}

func (s *MemoryStore) UpdateChallengeStatus(_ context.Context, id string, from, to models.ChallengeStatus, at time.Time) error {
	defer s.lockWrite()()
	ch, ok := s.data.challenges[id]
	if !ok {
		return ErrNotFound
	}
	if ch.Status != from {
		return ErrStaleStatus
	}
	ch.Status = to
	ch.UpdatedAt = at
	s.data.challenges[id] = ch
	return nil
}

func (s *MemoryStore) ReplaceReviewParameters(_ context.Context, challengeID string, params []models.ChallengeReviewParameter) error {
	defer s.lockWrite()()
	s.data.challengeParams[challengeID] = append([]models.ChallengeReviewParameter(nil), params...)
	return nil
}

func (s *MemoryStore) ListChallengeReviewParameters(_ context.Context, challengeID string) ([]models.ChallengeReviewParameter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]models.ChallengeReviewParameter(nil), s.data.challengeParams[challengeID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].ParameterID < out[j].ParameterID })
	return out, nil
}

// ---------- panels & mentors ----------

func (s *MemoryStore) CreatePanel(_ context.Context, panel *models.ChallengePanel) error {
	defer s.lockWrite()()
	s.data.panels[panel.PanelID] = *panel
	return nil
}

func (s *MemoryStore) GetPanel(_ context.Context, id string) (*models.ChallengePanel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.data.panels[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *MemoryStore) ListPanels(_ context.Context, challengeID string) ([]models.ChallengePanel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.ChallengePanel
	for _, p := range s.data.panels {
		if p.ChallengeID == challengeID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RoundNumber != out[j].RoundNumber {
			return out[i].RoundNumber < out[j].RoundNumber
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) CountPanels(_ context.Context, challengeID string, round int) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, p := range s.data.panels {
		if p.ChallengeID == challengeID && p.RoundNumber == round {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) CreateMentor(_ context.Context, m *models.ChallengeMentor) error {
	defer s.lockWrite()()
	m.ID = s.nextID()
	s.data.mentors = append(s.data.mentors, *m)
	return nil
}

func (s *MemoryStore) FindMentor(_ context.Context, panelID, mentorID string) (*models.ChallengeMentor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.data.mentors {
		if m.PanelID == panelID && m.MentorID == mentorID {
			found := m
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ListMentors(_ context.Context, panelID string) ([]models.ChallengeMentor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.ChallengeMentor
	for _, m := range s.data.mentors {
		if m.PanelID == panelID {
			out = append(out, m)
		}
	}
	return out, nil
}

// ---------- challenge ideas ----------

func (s *MemoryStore) CreateChallengeIdea(_ context.Context, idea *models.ChallengeIdea) error {
	defer s.lockWrite()()
	s.data.challengeIdeas[idea.IdeaID] = *idea
	return nil
}

func (s *MemoryStore) GetChallengeIdea(_ context.Context, id string) (*models.ChallengeIdea, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idea, ok := s.data.challengeIdeas[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &idea, nil
}

func (s *MemoryStore) ListChallengeIdeas(_ context.Context, filter ChallengeIdeaFilter) ([]models.ChallengeIdea, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.ChallengeIdea
	for _, idea := range s.data.challengeIdeas {
		if filter.ChallengeID != "" && idea.ChallengeID != filter.ChallengeID {
			continue
		}
		if filter.SubmitterID != "" && idea.SubmitterID != filter.SubmitterID {
			continue
		}
		out = append(out, idea)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return out, nil
}

func (s *MemoryStore) CreateIdeaDetail(_ context.Context, d *models.IdeaDetail) error {
	defer s.lockWrite()()
	s.data.ideaDetails[d.IdeaID] = *d
	return nil
}

func (s *MemoryStore) GetIdeaDetail(_ context.Context, ideaID string) (*models.IdeaDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.data.ideaDetails[ideaID]
	if !ok {
		return nil, ErrNotFound
	}
	return &d, nil
}

func (s *MemoryStore) CreateCoIdeator(_ context.Context, c *models.CoIdeator) error {
	defer s.lockWrite()()
	c.ID = s.nextID()
	s.data.coIdeators = append(s.data.coIdeators, *c)
	return nil
}

func (s *MemoryStore) ListCoIdeators(_ context.Context, ideaID string) ([]models.CoIdeator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.CoIdeator
	for _, c := range s.data.coIdeators {
		if c.IdeaID == ideaID {
			out = append(out, c)
		}
	}
	return out, nil
}

// ---------- rewards ----------

func (s *MemoryStore) CreateReward(_ context.Context, r *models.Reward) error {
	defer s.lockWrite()()
	s.data.rewards = append(s.data.rewards, *r)
	return nil
}

func (s *MemoryStore) SumRewardPoints(_ context.Context, userID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total int64
	for _, r := range s.data.rewards {
		if r.UserID == userID {
			total += int64(r.Points)
		}
	}
	return total, nil
}

// ---------- notifications ----------

func (s *MemoryStore) CreateNotification(_ context.Context, n *models.Notification) error {
	defer s.lockWrite()()
	s.data.notifications[n.NotificationID] = *n
	return nil
}

func (s *MemoryStore) GetNotification(_ context.Context, id string) (*models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.data.notifications[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &n, nil
}

func (s *MemoryStore) ListNotifications(_ context.Context, recipientID string, unreadOnly bool) ([]models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Notification
	for _, n := range s.data.notifications {
		if n.RecipientID != recipientID || (unreadOnly && n.IsRead) {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) MarkNotificationRead(_ context.Context, id string) error {
	defer s.lockWrite()()
	n, ok := s.data.notifications[id]
	if !ok {
		return ErrNotFound
	}
	n.IsRead = true
	s.data.notifications[id] = n
	return nil
}

func (s *MemoryStore) CountUnread(_ context.Context, recipientID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var c int64
	for _, n := range s.data.notifications {
		if n.RecipientID == recipientID && !n.IsRead {
			c++
		}
	}
	return c, nil
}

// ---------- audit ----------

func (s *MemoryStore) CreateWorkflowLog(_ context.Context, entry *models.WorkflowLog) error {
	defer s.lockWrite()()
	s.data.workflowLogs = append(s.data.workflowLogs, *entry)
	return nil
}

func (s *MemoryStore) ListWorkflowLogs(_ context.Context, entityType, entityID string) ([]models.WorkflowLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.WorkflowLog
	for _, l := range s.data.workflowLogs {
		if l.EntityType == entityType && l.EntityID == entityID {
			out = append(out, l)
		}
	}
	return out, nil
}

// ---------- seeding ----------

func (s *MemoryStore) CreateUser(_ context.Context, u *models.User) error {
	defer s.lockWrite()()
	s.data.users[u.UserID] = *u
	return nil
}

func (s *MemoryStore) EnsureRole(_ context.Context, roleName string) error {
	defer s.lockWrite()()
	s.ensureRole(roleName)
	return nil
}

func (s *MemoryStore) ensureRole(roleName string) models.Role {
	role, ok := s.data.roles[roleName]
	if !ok {
		role = models.Role{RoleID: s.nextID(), RoleName: roleName}
		s.data.roles[roleName] = role
	}
	return role
}

func (s *MemoryStore) AssignRole(_ context.Context, userID, roleName string) error {
	defer s.lockWrite()()
	role := s.ensureRole(roleName)
	if s.data.userRoles[userID] == nil {
		s.data.userRoles[userID] = map[uint]bool{}
	}
	s.data.userRoles[userID][role.RoleID] = true
	return nil
}

func (s *MemoryStore) SetEmployeeDetail(_ context.Context, d *models.EmployeeDetail) error {
	defer s.lockWrite()()
	s.data.details[d.UserID] = *d
	return nil
}

func (s *MemoryStore) CreateCategory(_ context.Context, c *models.ImprovementCategory) error {
	defer s.lockWrite()()
	for _, existing := range s.data.categories {
		if existing.Name == c.Name {
			*c = existing
			return nil
		}
	}
	if c.ID == 0 {
		c.ID = s.nextID()
	}
	s.data.categories[c.ID] = *c
	return nil
}

func (s *MemoryStore) CreateSubCategory(_ context.Context, sc *models.ImprovementSubCategory) error {
	defer s.lockWrite()()
	for _, existing := range s.data.subCategories {
		if existing.CategoryID == sc.CategoryID && existing.Name == sc.Name {
			*sc = existing
			return nil
		}
	}
	if sc.ID == 0 {
		sc.ID = s.nextID()
	}
	s.data.subCategories[sc.ID] = *sc
	return nil
}

func (s *MemoryStore) CreateReviewParameter(_ context.Context, p *models.ReviewParameter) error {
	defer s.lockWrite()()
	for _, existing := range s.data.parameters {
		if existing.ParameterName == p.ParameterName {
			*p = existing
			return nil
		}
	}
	if p.ParameterID == 0 {
		p.ParameterID = s.nextID()
	}
	s.data.parameters[p.ParameterID] = *p
	return nil
}

func containsStatus[T comparable](set []T, v T) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func inRange(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && !t.Before(*to) {
		return false
	}
	return true
}

var (
	_ Store  = (*MemoryStore)(nil)
	_ Seeder = (*MemoryStore)(nil)
)
