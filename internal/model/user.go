package model

// User 只读，封禁或注销的用户不参与相似度与推荐
type User struct {
	ID       uint64 `gorm:"primaryKey"`
	IsBan    bool   `gorm:"type:tinyint(1)"`
	IsDelete bool   `gorm:"type:tinyint(1)"`
}

func (User) TableName() string { return "users" }
