package models

import "time"

const (
	EntityGrassrootIdea = "GRASSROOT_IDEA"
	EntityChallenge     = "CHALLENGE"
	EntityChallengeIdea = "CHALLENGE_IDEA"
)

// WorkflowLog tracks historical status changes for ideas and challenges.
type WorkflowLog struct {
	LogID          string    `gorm:"primaryKey;column:log_id;type:char(36)" json:"log_id"`
	EntityType     string    `gorm:"column:entity_type;size:20;index:idx_workflow_entity" json:"entity_type"`
	EntityID       string    `gorm:"column:entity_id;type:char(36);index:idx_workflow_entity" json:"entity_id"`
	PreviousStatus *string   `gorm:"column:previous_status;size:50" json:"previous_status"`
	NewStatus      string    `gorm:"column:new_status;size:50" json:"new_status"`
	ChangedByID    *string   `gorm:"column:changed_by;type:char(36)" json:"changed_by"`
	Remarks        *string   `gorm:"column:remarks;type:text" json:"remarks"`
	ChangedAt      time.Time `gorm:"column:changed_at" json:"changed_at"`
}

// TableName specifies the table for WorkflowLog.
func (WorkflowLog) TableName() string {
	return "iris_workflow_logs"
}
