package model

import "time"

// 以下表由内容服务维护，这里只读，用于构建用户画像和推荐理由

type Tag struct {
	ID   uint64 `gorm:"primaryKey"`
	Name string `gorm:"type:varchar(50);not null"`
}

func (Tag) TableName() string { return "tags" }

// UserTag 用户自选兴趣标签，相似度的静态部分
type UserTag struct {
	UserID uint64 `gorm:"primaryKey"`
	TagID  uint64 `gorm:"primaryKey"`
}

func (UserTag) TableName() string { return "user_tags" }

// Media 番剧/作品条目
type Media struct {
	ID    uint64 `gorm:"primaryKey"`
	Title string `gorm:"type:varchar(255);not null"`
}

func (Media) TableName() string { return "media" }

type Character struct {
	ID   uint64 `gorm:"primaryKey"`
	Name string `gorm:"type:varchar(255);not null"`
}

func (Character) TableName() string { return "characters" }

// 行为表，CreatedAt 用于活跃用户和热度窗口

type MediaFavorite struct {
	UserID    uint64 `gorm:"primaryKey"`
	MediaID   uint64 `gorm:"primaryKey"`
	CreatedAt time.Time
}

func (MediaFavorite) TableName() string { return "media_favorites" }

type CharacterFavorite struct {
	UserID      uint64 `gorm:"primaryKey"`
	CharacterID uint64 `gorm:"primaryKey"`
	CreatedAt   time.Time
}

func (CharacterFavorite) TableName() string { return "character_favorites" }

// HighlightLike 名场面点赞
type HighlightLike struct {
	UserID      uint64 `gorm:"primaryKey"`
	HighlightID uint64 `gorm:"primaryKey"`
	CreatedAt   time.Time
}

func (HighlightLike) TableName() string { return "highlight_likes" }

// Collection 帖子收藏
type Collection struct {
	UserID    uint64 `gorm:"primaryKey"`
	PostID    uint64 `gorm:"primaryKey"`
	CreatedAt time.Time
}

func (Collection) TableName() string { return "collections" }
