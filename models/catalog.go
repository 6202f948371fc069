package models

type ImprovementCategory struct {
	ID   uint   `gorm:"primaryKey;column:id" json:"id"`
	Name string `gorm:"column:name;size:100;uniqueIndex" json:"name"`
}

type ImprovementSubCategory struct {
	ID         uint   `gorm:"primaryKey;column:id" json:"id"`
	CategoryID uint   `gorm:"column:category_id;index" json:"category"`
	Name       string `gorm:"column:name;size:255" json:"name"`
}

// ReviewParameter is a named evaluation criterion challenges can weight.
type ReviewParameter struct {
	ParameterID   uint    `gorm:"primaryKey;column:parameter_id" json:"parameter_id"`
	ParameterName string  `gorm:"column:parameter_name;size:100" json:"parameter_name"`
	Description   *string `gorm:"column:description" json:"description,omitempty"`
	IsActive      bool    `gorm:"column:is_active" json:"is_active"`
}

type ChallengeReviewParameter struct {
	ChallengeID string `gorm:"primaryKey;column:challenge_id;type:char(36)" json:"challenge"`
	ParameterID uint   `gorm:"primaryKey;column:parameter_id" json:"parameter"`
	Weightage   int    `gorm:"column:weightage" json:"weightage"`
}

func (ImprovementCategory) TableName() string { return "iris_improvement_categories" }

func (ImprovementSubCategory) TableName() string { return "iris_improvement_sub_categories" }

func (ReviewParameter) TableName() string { return "iris_review_parameters" }

func (ChallengeReviewParameter) TableName() string { return "iris_challenge_review_params" }
