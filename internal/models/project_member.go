package models

import "time"

type ProjectMember struct {
	ProjectID string    `gorm:"type:varchar(36);primarykey" json:"project_id"`
	UserID    string    `gorm:"type:varchar(36);primarykey" json:"user_id"`
	JoinedAt  time.Time `gorm:"autoCreateTime" json:"joined_at"`

	// Relations
	Project Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	User    User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
