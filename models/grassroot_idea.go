package models

import "time"

// IdeaStatus is the review state of a grassroot idea.
type IdeaStatus string

const (
	IdeaSubmittedRM IdeaStatus = "SUBMITTED_RM"
	IdeaApprovedRM  IdeaStatus = "APPROVED_RM"
	IdeaRejectedRM  IdeaStatus = "REJECTED_RM"
	IdeaReworkRM    IdeaStatus = "REWORK_RM"
	IdeaApprovedIBU IdeaStatus = "APPROVED_IBU"
	IdeaRejectedIBU IdeaStatus = "REJECTED_IBU"
	IdeaReworkIBU   IdeaStatus = "REWORK_IBU"
)

// IdeaStatuses lists every valid status in workflow order.
var IdeaStatuses = []IdeaStatus{
	IdeaSubmittedRM,
	IdeaApprovedRM,
	IdeaRejectedRM,
	IdeaReworkRM,
	IdeaApprovedIBU,
	IdeaRejectedIBU,
	IdeaReworkIBU,
}

type GrassrootIdea struct {
	IdeaID                string     `gorm:"primaryKey;column:idea_id;type:char(36)" json:"idea_id"`
	IdeatorID             string     `gorm:"column:ideator_id;type:char(36);index" json:"ideator"`
	CategoryID            uint       `gorm:"column:improvement_category_id" json:"improvement_category"`
	SubCategoryID         uint       `gorm:"column:improvement_sub_category_id" json:"improvement_sub_category"`
	ProposedIdea          string     `gorm:"column:proposed_idea;type:text" json:"proposed_idea"`
	BusinessValue         string     `gorm:"column:business_value;type:text" json:"business_value"`
	MonetaryValue         string     `gorm:"column:monetary_value;type:text" json:"monetary_value"`
	NonMonetaryValue      string     `gorm:"column:non_monetary_value;type:text" json:"non_monetary_value"`
	Assumptions           string     `gorm:"column:assumptions;type:text" json:"assumptions"`
	KeyRisks              string     `gorm:"column:key_risks;type:text" json:"key_risks"`
	AdditionalInformation *string    `gorm:"column:additional_information;type:text" json:"additional_information,omitempty"`
	Status                IdeaStatus `gorm:"column:status;size:50;index" json:"status"`
	CreatedAt             time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt             time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

func (GrassrootIdea) TableName() string { return "iris_grassroot_ideas" }
