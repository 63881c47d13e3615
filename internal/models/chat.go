package models

import (
	"time"

	"gorm.io/gorm"
)

type ChatRole string

const (
	RoleAdmin  ChatRole = "admin"
	RoleMember ChatRole = "member"
)

// Chat is a conversation container: direct (two members) or group.
type Chat struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name      string `gorm:"size:100" json:"name"`
	Image     string `json:"image"`
	IsGroup   bool   `gorm:"default:false" json:"is_group"`
	CreatorID uint   `gorm:"not null" json:"creator_id"`

	Creator User         `gorm:"foreignKey:CreatorID" json:"creator"`
	Members []ChatMember `gorm:"foreignKey:ChatID" json:"members"`
}

type ChatMember struct {
	ChatID   uint      `gorm:"primaryKey" json:"chat_id"`
	UserID   uint      `gorm:"primaryKey" json:"user_id"`
	Role     ChatRole  `gorm:"type:varchar(20);default:'member'" json:"role"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`

	User User `gorm:"foreignKey:UserID" json:"user"`
	Chat Chat `gorm:"foreignKey:ChatID" json:"-"`
}

type ChatResponse struct {
	ID        uint           `json:"id"`
	Name      string         `json:"name"`
	Image     string         `json:"image"`
	IsGroup   bool           `json:"is_group"`
	CreatorID uint           `json:"creator_id"`
	Members   []UserResponse `json:"members"`
	CreatedAt time.Time      `json:"created_at"`
}

func (c *Chat) ToResponse() ChatResponse {
	members := make([]UserResponse, 0, len(c.Members))
	for i := range c.Members {
		members = append(members, c.Members[i].User.ToResponse())
	}
	return ChatResponse{
		ID:        c.ID,
		Name:      c.Name,
		Image:     c.Image,
		IsGroup:   c.IsGroup,
		CreatorID: c.CreatorID,
		Members:   members,
		CreatedAt: c.CreatedAt,
	}
}
