package models

import "time"

type Notification struct {
	NotificationID string    `gorm:"primaryKey;column:notification_id;type:char(36)" json:"notification_id"`
	RecipientID    string    `gorm:"column:recipient_id;type:char(36);index:idx_notification_recipient" json:"recipient"`
	SenderID       *string   `gorm:"column:sender_id;type:char(36)" json:"sender,omitempty"`
	Message        string    `gorm:"column:message;type:text" json:"message"`
	Link           *string   `gorm:"column:link;size:255" json:"link,omitempty"`
	IsRead         bool      `gorm:"column:is_read;index:idx_notification_recipient" json:"is_read"`
	CreatedAt      time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Notification) TableName() string { return "iris_notifications" }
