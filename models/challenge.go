package models

import "time"

// ChallengeStatus is the lifecycle state of a challenge.
type ChallengeStatus string

const (
	ChallengeDraft     ChallengeStatus = "DRAFT"
	ChallengeLive      ChallengeStatus = "LIVE"
	ChallengeCompleted ChallengeStatus = "COMPLETED"
	ChallengeArchived  ChallengeStatus = "ARCHIVED"
)

type Visibility string

const (
	VisibilityPublic  Visibility = "PUBLIC"
	VisibilityPrivate Visibility = "PRIVATE"
)

type TargetAudience string

const (
	AudienceInternal TargetAudience = "INTERNAL"
	AudienceExternal TargetAudience = "EXTERNAL"
	AudienceBoth     TargetAudience = "BOTH"
)

type Challenge struct {
	ChallengeID     string          `gorm:"primaryKey;column:challenge_id;type:char(36)" json:"challenge_id"`
	Title           string          `gorm:"column:title;size:255" json:"title"`
	Description     string          `gorm:"column:description;type:text" json:"description"`
	StartDate       time.Time       `gorm:"column:start_date" json:"start_date"`
	EndDate         time.Time       `gorm:"column:end_date;index" json:"end_date"`
	Round1EvalStart time.Time       `gorm:"column:round1_eval_start" json:"round1_eval_start"`
	Round1EvalEnd   time.Time       `gorm:"column:round1_eval_end" json:"round1_eval_end"`
	Round2EvalStart *time.Time      `gorm:"column:round2_eval_start" json:"round2_eval_start,omitempty"`
	Round2EvalEnd   *time.Time      `gorm:"column:round2_eval_end" json:"round2_eval_end,omitempty"`
	Keywords        string          `gorm:"column:keywords;size:255" json:"keywords"`
	KeyInsights     string          `gorm:"column:key_insights;type:text" json:"key_insights"`
	ExpectedOutcome string          `gorm:"column:expected_outcome;type:text" json:"expected_outcome"`
	Visibility      Visibility      `gorm:"column:visibility;size:20" json:"visibility"`
	TargetAudience  TargetAudience  `gorm:"column:target_audience;size:20" json:"target_audience"`
	Status          ChallengeStatus `gorm:"column:status;size:20;index" json:"status"`
	IsFeatured      bool            `gorm:"column:is_featured" json:"is_featured"`
	CreatedByID     string          `gorm:"column:created_by;type:char(36);index" json:"created_by"`
	CreatedAt       time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

// ChallengePanel is a review committee for one evaluation round.
type ChallengePanel struct {
	PanelID     string    `gorm:"primaryKey;column:panel_id;type:char(36)" json:"panel_id"`
	ChallengeID string    `gorm:"column:challenge_id;type:char(36);index:idx_panel_round" json:"challenge"`
	PanelName   string    `gorm:"column:panel_name;size:100" json:"panel_name"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	RoundNumber int       `gorm:"column:round_number;index:idx_panel_round" json:"round_number"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
}

type ChallengeMentor struct {
	ID         uint      `gorm:"primaryKey;column:id" json:"id"`
	PanelID    string    `gorm:"column:panel_id;type:char(36);uniqueIndex:idx_panel_mentor" json:"panel"`
	MentorID   string    `gorm:"column:mentor_id;type:char(36);uniqueIndex:idx_panel_mentor" json:"mentor"`
	AssignedAt time.Time `gorm:"column:assigned_at" json:"assigned_at"`
}

func (Challenge) TableName() string { return "iris_challenges" }

func (ChallengePanel) TableName() string { return "iris_challenge_panels" }

func (ChallengeMentor) TableName() string { return "iris_challenge_mentors" }
