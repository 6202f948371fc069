package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"iris-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore implements Store on a gorm connection (MySQL or PostgreSQL).
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// AllModels lists every table managed by Migrate.
func AllModels() []any {
	return []any{
		&models.User{},
		&models.Role{},
		&models.UserRole{},
		&models.EmployeeDetail{},
		&models.UserLoginLog{},
		&models.ImprovementCategory{},
		&models.ImprovementSubCategory{},
		&models.ReviewParameter{},
		&models.GrassrootIdea{},
		&models.GrassrootEvaluation{},
		&models.Challenge{},
		&models.ChallengeReviewParameter{},
		&models.ChallengePanel{},
		&models.ChallengeMentor{},
		&models.ChallengeIdea{},
		&models.IdeaDetail{},
		&models.CoIdeator{},
		&models.Reward{},
		&models.Notification{},
		&models.WorkflowLog{},
	}
}

// Migrate creates or updates the schema.
func (s *GormStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(AllModels()...)
}

func (s *GormStore) Tx(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// ---------- users ----------

func (s *GormStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Where("user_id = ?", id).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *GormStore) FindUsersByEmail(ctx context.Context, email string) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		Find(&users).Error
	return users, err
}

func (s *GormStore) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.User{}).Count(&n).Error
	return n, err
}

func (s *GormStore) UserHasRole(ctx context.Context, userID, roleName string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Table("iris_user_roles AS ur").
		Joins("JOIN iris_roles AS r ON r.role_id = ur.role_id").
		Where("ur.user_id = ? AND r.role_name = ?", userID, roleName).
		Count(&n).Error
	return n > 0, err
}

func (s *GormStore) UsersWithRole(ctx context.Context, roleName string) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).
		Joins("JOIN iris_user_roles AS ur ON ur.user_id = iris_users.user_id").
		Joins("JOIN iris_roles AS r ON r.role_id = ur.role_id").
		Where("r.role_name = ?", roleName).
		Order("iris_users.full_name ASC").
		Find(&users).Error
	return users, err
}

func (s *GormStore) GetEmployeeDetail(ctx context.Context, userID string) (*models.EmployeeDetail, error) {
	var d models.EmployeeDetail
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&d).Error; err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}

func (s *GormStore) IsReportingManager(ctx context.Context, userID string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.EmployeeDetail{}).
		Where("reporting_manager_id = ?", userID).
		Count(&n).Error
	return n > 0, err
}

func (s *GormStore) CreateLoginLog(ctx context.Context, entry *models.UserLoginLog) error {
	return s.db.WithContext(ctx).Create(entry).Error
}

// ---------- catalog ----------

func (s *GormStore) ListCategories(ctx context.Context) ([]models.ImprovementCategory, error) {
	var out []models.ImprovementCategory
	err := s.db.WithContext(ctx).Order("name ASC").Find(&out).Error
	return out, err
}

func (s *GormStore) GetCategory(ctx context.Context, id uint) (*models.ImprovementCategory, error) {
	var c models.ImprovementCategory
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (s *GormStore) ListSubCategories(ctx context.Context, categoryID uint) ([]models.ImprovementSubCategory, error) {
	var out []models.ImprovementSubCategory
	q := s.db.WithContext(ctx).Order("name ASC")
	if categoryID != 0 {
		q = q.Where("category_id = ?", categoryID)
	}
	err := q.Find(&out).Error
	return out, err
}

func (s *GormStore) GetSubCategory(ctx context.Context, id uint) (*models.ImprovementSubCategory, error) {
	var sc models.ImprovementSubCategory
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&sc).Error; err != nil {
		return nil, notFound(err)
	}
	return &sc, nil
}

func (s *GormStore) ListReviewParameters(ctx context.Context, activeOnly bool) ([]models.ReviewParameter, error) {
	var out []models.ReviewParameter
	q := s.db.WithContext(ctx).Order("parameter_id ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	err := q.Find(&out).Error
	return out, err
}

func (s *GormStore) GetReviewParameter(ctx context.Context, id uint) (*models.ReviewParameter, error) {
	var p models.ReviewParameter
	if err := s.db.WithContext(ctx).Where("parameter_id = ?", id).First(&p).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// ---------- ideas ----------

func (s *GormStore) CreateIdea(ctx context.Context, idea *models.GrassrootIdea) error {
	return s.db.WithContext(ctx).Create(idea).Error
}

func (s *GormStore) GetIdea(ctx context.Context, id string) (*models.GrassrootIdea, error) {
	var idea models.GrassrootIdea
	if err := s.db.WithContext(ctx).Where("idea_id = ?", id).First(&idea).Error; err != nil {
		return nil, notFound(err)
	}
	return &idea, nil
}

func (s *GormStore) ListIdeas(ctx context.Context, filter IdeaFilter) ([]models.GrassrootIdea, error) {
	q := s.db.WithContext(ctx).Model(&models.GrassrootIdea{})
	if len(filter.Statuses) > 0 {
		q = q.Where("status IN ?", filter.Statuses)
	}
	if filter.IdeatorID != "" {
		q = q.Where("ideator_id = ?", filter.IdeatorID)
	}
	if filter.CreatedFrom != nil {
		q = q.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		q = q.Where("created_at < ?", *filter.CreatedTo)
	}
	var out []models.GrassrootIdea
	err := q.Order("created_at DESC").Find(&out).Error
	return out, err
}

func (s *GormStore) CountIdeas(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.GrassrootIdea{}).Count(&n).Error
	return n, err
}

// UpdateIdeaStatus moves an idea from one status to another only if it still
// holds from. It distinguishes a missing idea from a concurrent change.
func (s *GormStore) UpdateIdeaStatus(ctx context.Context, id string, from, to models.IdeaStatus, at time.Time) error {
	res := s.db.WithContext(ctx).Model(&models.GrassrootIdea{}).
		Where("idea_id = ? AND status = ?", id, from).
		Updates(map[string]any{"status": to, "updated_at": at})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}
	var statuses []string
	if err := s.db.WithContext(ctx).Model(&models.GrassrootIdea{}).
		Where("idea_id = ?", id).Pluck("status", &statuses).Error; err != nil {
		return err
	}
	if len(statuses) == 0 {
		return ErrNotFound
	}
	return ErrStaleStatus
}

func (s *GormStore) CreateEvaluation(ctx context.Context, eval *models.GrassrootEvaluation) error {
	return s.db.WithContext(ctx).Create(eval).Error
}

func (s *GormStore) ListEvaluations(ctx context.Context, ideaID string) ([]models.GrassrootEvaluation, error) {
	var out []models.GrassrootEvaluation
	err := s.db.WithContext(ctx).Where("idea_id = ?", ideaID).Order("evaluated_at ASC").Find(&out).Error
	return out, err
}

// ---------- challenges ----------

func (s *GormStore) CreateChallenge(ctx context.Context, ch *models.Challenge) error {
	return s.db.WithContext(ctx).Create(ch).Error
}

func (s *GormStore) GetChallenge(ctx context.Context, id string) (*models.Challenge, error) {
	var ch models.Challenge
	if err := s.db.WithContext(ctx).Where("challenge_id = ?", id).First(&ch).Error; err != nil {
		return nil, notFound(err)
	}
	return &ch, nil
}

// LockChallenge reads the challenge with SELECT ... FOR UPDATE. Only
// meaningful inside Tx.
func (s *GormStore) LockChallenge(ctx context.Context, id string) (*models.Challenge, error) {
	var ch models.Challenge
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("challenge_id = ?", id).
		First(&ch).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &ch, nil
}

func (s *GormStore) ListChallenges(ctx context.Context, filter ChallengeFilter) ([]models.Challenge, error) {
	q := s.db.WithContext(ctx).Model(&models.Challenge{})
	if len(filter.Statuses) > 0 {
		q = q.Where("status IN ?", filter.Statuses)
	}
	if filter.CreatedBy != "" {
		q = q.Where("created_by = ?", filter.CreatedBy)
	}
	if term := strings.ToLower(strings.TrimSpace(filter.Query)); term != "" {
		like := "%" + term + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(keywords) LIKE ?", like, like, like)
	}
	if filter.EndedBefore != nil {
		q = q.Where("end_date < ?", *filter.EndedBefore)
	}
	if filter.CreatedFrom != nil {
		q = q.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		q = q.Where("created_at < ?", *filter.CreatedTo)
	}
	if filter.ActiveAt != nil {
		q = q.Where("start_date <= ? AND end_date >= ?", *filter.ActiveAt, *filter.ActiveAt).Order("end_date ASC")
	} else {
		q = q.Order("created_at DESC")
	}
	var out []models.Challenge
	err := q.Find(&out).Error
	return out, err
}

func (s *GormStore) CountChallenges(ctx context.Context, status models.ChallengeStatus) (int64, error) {
	var n int64
	q := s.db.WithContext(ctx).Model(&models.Challenge{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Count(&n).Error
	return n, err
}

func (s *GormStore) FeaturedChallenge(ctx context.Context) (*models.Challenge, error) {
	var ch models.Challenge
	err := s.db.WithContext(ctx).
		Where("is_featured = ? AND status = ?", true, models.ChallengeLive).
		Order("created_at DESC").
		First(&ch).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &ch, nil
}

func (s *GormStore) UpdateChallengeStatus(ctx context.Context, id string, from, to models.ChallengeStatus, at time.Time) error {
	res := s.db.WithContext(ctx).Model(&models.Challenge{}).
		Where("challenge_id = ? AND status = ?", id, from).
		Updates(map[string]any{"status": to, "updated_at": at})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}
	var statuses []string
	if err := s.db.WithContext(ctx).Model(&models.Challenge{}).
		Where("challenge_id = ?", id).Pluck("status", &statuses).Error; err != nil {
		return err
	}
	if len(statuses) == 0 {
		return ErrNotFound
	}
	return ErrStaleStatus
}

func (s *GormStore) ReplaceReviewParameters(ctx context.Context, challengeID string, params []models.ChallengeReviewParameter) error {
	db := s.db.WithContext(ctx)
	if err := db.Where("challenge_id = ?", challengeID).Delete(&models.ChallengeReviewParameter{}).Error; err != nil {
		return err
	}
	if len(params) == 0 {
		return nil
	}
	return db.Create(&params).Error
}

func (s *GormStore) ListChallengeReviewParameters(ctx context.Context, challengeID string) ([]models.ChallengeReviewParameter, error) {
	var out []models.ChallengeReviewParameter
	err := s.db.WithContext(ctx).Where("challenge_id = ?", challengeID).Order("parameter_id ASC").Find(&out).Error
	return out, err
}

// ---------- panels & mentors ----------

func (s *GormStore) CreatePanel(ctx context.Context, panel *models.ChallengePanel) error {
	return s.db.WithContext(ctx).Create(panel).Error
}

func (s *GormStore) GetPanel(ctx context.Context, id string) (*models.ChallengePanel, error) {
	var p models.ChallengePanel
	if err := s.db.WithContext(ctx).Where("panel_id = ?", id).First(&p).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *GormStore) ListPanels(ctx context.Context, challengeID string) ([]models.ChallengePanel, error) {
	var out []models.ChallengePanel
	err := s.db.WithContext(ctx).
		Where("challenge_id = ?", challengeID).
		Order("round_number ASC, created_at ASC").
		Find(&out).Error
	return out, err
}

func (s *GormStore) CountPanels(ctx context.Context, challengeID string, round int) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.ChallengePanel{}).
		Where("challenge_id = ? AND round_number = ?", challengeID, round).
		Count(&n).Error
	return n, err
}

func (s *GormStore) CreateMentor(ctx context.Context, m *models.ChallengeMentor) error {
	return s.db.WithContext(ctx).Create(m).Error
}

func (s *GormStore) FindMentor(ctx context.Context, panelID, mentorID string) (*models.ChallengeMentor, error) {
	var m models.ChallengeMentor
	err := s.db.WithContext(ctx).Where("panel_id = ? AND mentor_id = ?", panelID, mentorID).First(&m).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

func (s *GormStore) ListMentors(ctx context.Context, panelID string) ([]models.ChallengeMentor, error) {
	var out []models.ChallengeMentor
	err := s.db.WithContext(ctx).Where("panel_id = ?", panelID).Order("assigned_at ASC").Find(&out).Error
	return out, err
}

// ---------- challenge ideas ----------

func (s *GormStore) CreateChallengeIdea(ctx context.Context, idea *models.ChallengeIdea) error {
	return s.db.WithContext(ctx).Create(idea).Error
}

func (s *GormStore) GetChallengeIdea(ctx context.Context, id string) (*models.ChallengeIdea, error) {
	var idea models.ChallengeIdea
	if err := s.db.WithContext(ctx).Where("idea_id = ?", id).First(&idea).Error; err != nil {
		return nil, notFound(err)
	}
	return &idea, nil
}

func (s *GormStore) ListChallengeIdeas(ctx context.Context, filter ChallengeIdeaFilter) ([]models.ChallengeIdea, error) {
	q := s.db.WithContext(ctx).Model(&models.ChallengeIdea{})
	if filter.ChallengeID != "" {
		q = q.Where("challenge_id = ?", filter.ChallengeID)
	}
	if filter.SubmitterID != "" {
		q = q.Where("submitter_id = ?", filter.SubmitterID)
	}
	var out []models.ChallengeIdea
	err := q.Order("submission_date DESC").Find(&out).Error
	return out, err
}

func (s *GormStore) CreateIdeaDetail(ctx context.Context, d *models.IdeaDetail) error {
	return s.db.WithContext(ctx).Create(d).Error
}

func (s *GormStore) GetIdeaDetail(ctx context.Context, ideaID string) (*models.IdeaDetail, error) {
	var d models.IdeaDetail
	if err := s.db.WithContext(ctx).Where("idea_id = ?", ideaID).First(&d).Error; err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}

func (s *GormStore) CreateCoIdeator(ctx context.Context, c *models.CoIdeator) error {
	return s.db.WithContext(ctx).Create(c).Error
}

func (s *GormStore) ListCoIdeators(ctx context.Context, ideaID string) ([]models.CoIdeator, error) {
	var out []models.CoIdeator
	err := s.db.WithContext(ctx).Where("idea_id = ?", ideaID).Order("id ASC").Find(&out).Error
	return out, err
}

// ---------- rewards ----------

func (s *GormStore) CreateReward(ctx context.Context, r *models.Reward) error {
	return s.db.WithContext(ctx).Create(r).Error
}

func (s *GormStore) SumRewardPoints(ctx context.Context, userID string) (int64, error) {
	var total int64
	err := s.db.WithContext(ctx).Model(&models.Reward{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(points), 0)").
		Scan(&total).Error
	return total, err
}

// ---------- notifications ----------

func (s *GormStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	return s.db.WithContext(ctx).Create(n).Error
}

func (s *GormStore) GetNotification(ctx context.Context, id string) (*models.Notification, error) {
	var n models.Notification
	if err := s.db.WithContext(ctx).Where("notification_id = ?", id).First(&n).Error; err != nil {
		return nil, notFound(err)
	}
	return &n, nil
}

func (s *GormStore) ListNotifications(ctx context.Context, recipientID string, unreadOnly bool) ([]models.Notification, error) {
	q := s.db.WithContext(ctx).Where("recipient_id = ?", recipientID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	var out []models.Notification
	err := q.Order("created_at DESC").Find(&out).Error
	return out, err
}

func (s *GormStore) MarkNotificationRead(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("notification_id = ?", id).
		Update("is_read", true).Error
}

func (s *GormStore) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&n).Error
	return n, err
}

// ---------- audit ----------

func (s *GormStore) CreateWorkflowLog(ctx context.Context, entry *models.WorkflowLog) error {
	return s.db.WithContext(ctx).Create(entry).Error
}

func (s *GormStore) ListWorkflowLogs(ctx context.Context, entityType, entityID string) ([]models.WorkflowLog, error) {
	var out []models.WorkflowLog
	err := s.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("changed_at ASC").
		Find(&out).Error
	return out, err
}

// ---------- seeding ----------

func (s *GormStore) CreateUser(ctx context.Context, u *models.User) error {
	return s.db.WithContext(ctx).Create(u).Error
}

func (s *GormStore) EnsureRole(ctx context.Context, roleName string) error {
	role := models.Role{RoleName: roleName}
	return s.db.WithContext(ctx).Where("role_name = ?", roleName).FirstOrCreate(&role).Error
}

func (s *GormStore) AssignRole(ctx context.Context, userID, roleName string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		role := models.Role{RoleName: roleName}
		if err := tx.Where("role_name = ?", roleName).FirstOrCreate(&role).Error; err != nil {
			return err
		}
		link := models.UserRole{UserID: userID, RoleID: role.RoleID, AssignedAt: time.Now()}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error
	})
}

func (s *GormStore) SetEmployeeDetail(ctx context.Context, d *models.EmployeeDetail) error {
	return s.db.WithContext(ctx).Save(d).Error
}

func (s *GormStore) CreateCategory(ctx context.Context, c *models.ImprovementCategory) error {
	return s.db.WithContext(ctx).Where("name = ?", c.Name).FirstOrCreate(c).Error
}

func (s *GormStore) CreateSubCategory(ctx context.Context, sc *models.ImprovementSubCategory) error {
	return s.db.WithContext(ctx).
		Where("category_id = ? AND name = ?", sc.CategoryID, sc.Name).
		FirstOrCreate(sc).Error
}

func (s *GormStore) CreateReviewParameter(ctx context.Context, p *models.ReviewParameter) error {
	return s.db.WithContext(ctx).Where("parameter_name = ?", p.ParameterName).FirstOrCreate(p).Error
}

var (
	_ Store  = (*GormStore)(nil)
	_ Seeder = (*GormStore)(nil)
)
