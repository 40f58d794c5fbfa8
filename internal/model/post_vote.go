package model

import (
	"time"
)

const (
	VoteUp   int8 = 1
	VoteDown int8 = -1
)

// PostVote 帖子赞踩，一人一帖一票
type PostVote struct {
	UserID    uint64    `gorm:"primaryKey" json:"userId"`
	PostID    uint64    `gorm:"primaryKey;index:idx_post_id" json:"postId"`
	VoteType  int8      `gorm:"not null" json:"voteType"`
	CreatedAt time.Time `gorm:"index:idx_created_at" json:"createdAt"`
}

func (PostVote) TableName() string {
	return "post_votes"
}
