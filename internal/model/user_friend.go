package model

import "time"

const (
	FriendStatusPending  = "pending"
	FriendStatusAccepted = "accepted"
)

// UserFriend 好友关系，双向各存一行
type UserFriend struct {
	UserID    uint64    `gorm:"primaryKey" json:"userId"`
	FriendID  uint64    `gorm:"primaryKey;index:idx_friend_id" json:"friendId"`
	Status    string    `gorm:"type:varchar(16);not null;default:'pending'" json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

func (UserFriend) TableName() string {
	return "user_friends"
}
