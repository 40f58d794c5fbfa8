package model

import (
	"time"
)

// 帖子/评论状态
const (
	ContentStatusReviewing int8 = 0
	ContentStatusPublished int8 = 1
	ContentStatusRejected  int8 = 2
	ContentStatusManual    int8 = 3
)

type Post struct {
	ID             uint64    `gorm:"primaryKey" json:"id"`
	UserID         uint64    `gorm:"not null;index:idx_user_id" json:"user_id"`
	Title          string    `gorm:"type:varchar(255)" json:"title"`
	Content        string    `gorm:"not null" json:"content"`
	LikesCount     int       `gorm:"not null;default:0" json:"likes_count"`
	DislikesCount  int       `gorm:"not null;default:0" json:"dislikes_count"`
	CommentsCount  int       `gorm:"not null;default:0" json:"comments_count"`
	CollectsCount  int       `gorm:"not null;default:0" json:"collects_count"`
	RepostsCount   int       `gorm:"not null;default:0" json:"reposts_count"`
	HeatScore      float64   `gorm:"not null;default:0;index:idx_heat_score" json:"heat_score"`
	Status         int8      `gorm:"not null;default:0" json:"status"` // 0:审核中, 1:已发布, 2:拒绝, 3:待人工
	IsDeleted      bool      `gorm:"type:tinyint(1);not null;default:0" json:"is_deleted"`
	ContentVersion int       `gorm:"not null;default:1" json:"content_version"`
	CreatedAt      time.Time `gorm:"index:idx_created_at" json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Post) TableName() string {
	return "posts"
}
