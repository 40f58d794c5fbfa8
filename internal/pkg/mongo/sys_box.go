package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// 审核结果通知类型
const (
	SysBoxTypeReviewApproved int8 = 6
	SysBoxTypeReviewRejected int8 = 7
)

// SysBoxModel 系统通知模型
type SysBoxModel struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ReceiverID uint64             `bson:"receiver_id" json:"receiverId"` // 消息接收者ID
	SenderID   uint64             `bson:"sender_id" json:"senderId"`     // 系统通知为0
	Type       int8               `bson:"type" json:"type"`              // 6-审核通过, 7-审核驳回
	TargetID   uint64             `bson:"target_id" json:"targetId"`     // 帖子或评论ID
	Content    string             `bson:"content" json:"content"`
	Payload    map[string]any     `bson:"payload" json:"payload"`
	IsRead     bool               `bson:"is_read" json:"isRead"`
	CreatedAt  time.Time          `bson:"created_at" json:"createdAt"`
}
