package models

import (
	"time"
)

// Role names stored in iris_roles.role_name.
const (
	RoleIBUHead        = "IBU Head"
	RoleChallengeOwner = "Challenge Owner"
	RoleMentor         = "Mentor"
)

const (
	UserTypeInternal = "INTERNAL"
	UserTypeExternal = "EXTERNAL"
)

type User struct {
	UserID       string    `gorm:"primaryKey;column:user_id;type:char(36)" json:"user_id"`
	Email        string    `gorm:"column:email;size:255;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;size:255" json:"-"`
	FullName     string    `gorm:"column:full_name;size:100" json:"full_name"`
	UserType     string    `gorm:"column:user_type;size:20" json:"user_type"`
	EmployeeID   *string   `gorm:"column:employee_id;size:50" json:"employee_id,omitempty"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updated_at"`
}

type Role struct {
	RoleID      uint    `gorm:"primaryKey;column:role_id" json:"role_id"`
	RoleName    string  `gorm:"column:role_name;size:50;uniqueIndex" json:"role_name"`
	Description *string `gorm:"column:description" json:"description,omitempty"`
}

// UserRole links a user to a named role.
type UserRole struct {
	UserID     string    `gorm:"primaryKey;column:user_id;type:char(36)" json:"user_id"`
	RoleID     uint      `gorm:"primaryKey;column:role_id" json:"role_id"`
	AssignedAt time.Time `gorm:"column:assigned_at" json:"assigned_at"`
}

// EmployeeDetail holds the reporting line of an employee. A user is a
// reporting manager when at least one detail row points at them.
type EmployeeDetail struct {
	UserID             string  `gorm:"primaryKey;column:user_id;type:char(36)" json:"user_id"`
	ReportingManagerID *string `gorm:"column:reporting_manager_id;type:char(36);index" json:"reporting_manager_id,omitempty"`
	IBUName            *string `gorm:"column:ibu_name;size:100" json:"ibu_name,omitempty"`
	ServiceLine        *string `gorm:"column:service_line;size:100" json:"service_line,omitempty"`
}

type UserLoginLog struct {
	ID        uint      `gorm:"primaryKey;column:id" json:"id"`
	UserID    string    `gorm:"column:user_id;type:char(36);index" json:"user_id"`
	LoginAt   time.Time `gorm:"column:login_at" json:"login_at"`
	IPAddress *string   `gorm:"column:ip_address;size:45" json:"ip_address,omitempty"`
	UserAgent *string   `gorm:"column:user_agent" json:"user_agent,omitempty"`
}

// TableName overrides
func (User) TableName() string {
	return "iris_users"
}

func (Role) TableName() string {
	return "iris_roles"
}

func (UserRole) TableName() string {
	return "iris_user_roles"
}

func (EmployeeDetail) TableName() string {
	return "iris_employee_details"
}

func (UserLoginLog) TableName() string {
	return "iris_user_login_logs"
}
