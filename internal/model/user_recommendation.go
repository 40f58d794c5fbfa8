package model

import "time"

const (
	ReasonCommonMedia     = "common_media"
	ReasonCommonCharacter = "common_character"
	ReasonCommonInterest  = "common_interest"
	ReasonSimilarTaste    = "similar_taste"
)

// UserRecommendation 给 UserID 推荐的用户
type UserRecommendation struct {
	ID                uint64    `gorm:"primaryKey" json:"id"`
	UserID            uint64    `gorm:"not null;uniqueIndex:idx_user_recommended,priority:1;index:idx_user_rank,priority:1" json:"user_id"`
	RecommendedUserID uint64    `gorm:"not null;uniqueIndex:idx_user_recommended,priority:2" json:"recommended_user_id"`
	SimilarityScore   float64   `gorm:"not null;default:0" json:"similarity_score"`
	Reason            string    `gorm:"type:varchar(255)" json:"reason"`
	ReasonType        string    `gorm:"type:varchar(32);not null" json:"reason_type"`
	ReasonDetail      DetailMap `gorm:"type:json" json:"reason_detail"`
	Rank              int       `gorm:"not null;default:0;index:idx_user_rank,priority:2" json:"rank"`
	IsFollowed        bool      `gorm:"type:tinyint(1);not null;default:0" json:"is_followed"`
	IsDismissed       bool      `gorm:"type:tinyint(1);not null;default:0" json:"is_dismissed"`
	GeneratedAt       time.Time `gorm:"not null" json:"generated_at"`
}

func (UserRecommendation) TableName() string {
	return "user_recommendations"
}
