package models

import "time"

// GrassrootEvaluation records one reviewer decision on a grassroot idea.
type GrassrootEvaluation struct {
	ID            uint      `gorm:"primaryKey;column:id" json:"id"`
	IdeaID        string    `gorm:"column:idea_id;type:char(36);index" json:"idea"`
	EvaluatorID   string    `gorm:"column:evaluator_id;type:char(36)" json:"evaluator"`
	EvaluatorRole string    `gorm:"column:evaluator_role;size:20" json:"evaluator_role"`
	Decision      string    `gorm:"column:decision;size:20" json:"decision"`
	IsDesirable   bool      `gorm:"column:is_desirable" json:"is_desirable"`
	IsFeasible    bool      `gorm:"column:is_feasible" json:"is_feasible"`
	IsViable      bool      `gorm:"column:is_viable" json:"is_viable"`
	Remarks       *string   `gorm:"column:remarks;type:text" json:"remarks,omitempty"`
	EvaluatedAt   time.Time `gorm:"column:evaluated_at" json:"evaluated_at"`
}

// TableName specifies the table for GrassrootEvaluation.
func (GrassrootEvaluation) TableName() string {
	return "iris_grassroot_evaluations"
}
