package models

import "time"

// ChallengeIdeaStatus is the state of an idea submitted to a challenge.
type ChallengeIdeaStatus string

const (
	ChallengeIdeaSubmitted   ChallengeIdeaStatus = "SUBMITTED"
	ChallengeIdeaUnderReview ChallengeIdeaStatus = "UNDER_REVIEW"
	ChallengeIdeaApproved    ChallengeIdeaStatus = "APPROVED"
	ChallengeIdeaRejected    ChallengeIdeaStatus = "REJECTED"
	ChallengeIdeaImplemented ChallengeIdeaStatus = "IMPLEMENTED"
	ChallengeIdeaArchived    ChallengeIdeaStatus = "ARCHIVED"
)

type SharingScope string

const (
	SharingCustomer  SharingScope = "CUSTOMER"
	SharingEcosystem SharingScope = "ECOSYSTEM"
	SharingPublic    SharingScope = "PUBLIC"
	SharingNone      SharingScope = "NONE"
)

type InnovationType string

const (
	InnovationIncremental InnovationType = "INCREMENTAL"
	InnovationAdjacent    InnovationType = "ADJACENT"
	InnovationDisruptive  InnovationType = "DISRUPTIVE"
)

// ChallengeIdea is an idea submitted in response to a LIVE challenge.
type ChallengeIdea struct {
	IdeaID         string              `gorm:"primaryKey;column:idea_id;type:char(36)" json:"idea_id"`
	Title          string              `gorm:"column:title;size:255" json:"title"`
	SubmitterID    string              `gorm:"column:submitter_id;type:char(36);index" json:"submitter"`
	ChallengeID    string              `gorm:"column:challenge_id;type:char(36);index" json:"challenge"`
	Status         ChallengeIdeaStatus `gorm:"column:status;size:20" json:"status"`
	IsConfidential bool                `gorm:"column:is_confidential" json:"is_confidential"`
	SharingScope   SharingScope        `gorm:"column:sharing_scope;size:20" json:"sharing_scope"`
	SubmittedAt    time.Time           `gorm:"column:submission_date" json:"submission_date"`
	UpdatedAt      time.Time           `gorm:"column:updated_at" json:"updated_at"`
}

// IdeaDetail holds the long-form body of a ChallengeIdea.
type IdeaDetail struct {
	IdeaID                   string         `gorm:"primaryKey;column:idea_id;type:char(36)" json:"idea"`
	ProblemStatement         string         `gorm:"column:problem_statement;type:text" json:"problem_statement"`
	ProposedSolution         string         `gorm:"column:proposed_solution;type:text" json:"proposed_solution"`
	BusinessValueMonetary    string         `gorm:"column:business_value_monetary;type:text" json:"business_value_monetary"`
	BusinessValueNonMonetary string         `gorm:"column:business_value_non_monetary;type:text" json:"business_value_non_monetary"`
	Assumptions              string         `gorm:"column:assumptions;type:text" json:"assumptions"`
	Risks                    string         `gorm:"column:risks;type:text" json:"risks"`
	InnovationType           InnovationType `gorm:"column:innovation_type;size:20" json:"innovation_type"`
}

type CoIdeator struct {
	ID      uint      `gorm:"primaryKey;column:id" json:"id"`
	IdeaID  string    `gorm:"column:idea_id;type:char(36);uniqueIndex:idx_co_ideator" json:"idea"`
	UserID  string    `gorm:"column:user_id;type:char(36);uniqueIndex:idx_co_ideator" json:"user"`
	AddedAt time.Time `gorm:"column:added_at" json:"added_at"`
}

// Reward is a points entry; a user's total is the sum of their rows.
type Reward struct {
	RewardID   string    `gorm:"primaryKey;column:reward_id;type:char(36)" json:"reward_id"`
	UserID     string    `gorm:"column:user_id;type:char(36);index" json:"user"`
	Points     int       `gorm:"column:points" json:"points"`
	Reason     string    `gorm:"column:reason;size:255" json:"reason"`
	DateEarned time.Time `gorm:"column:date_earned" json:"date_earned"`
}

func (ChallengeIdea) TableName() string { return "iris_ideas" }

func (IdeaDetail) TableName() string { return "iris_idea_details" }

func (CoIdeator) TableName() string { return "iris_co_ideators" }

func (Reward) TableName() string { return "iris_rewards" }
