package entity

import "time"

// Competitor 参赛选手登记表，排行榜默认用户集来自这里
type Competitor struct {
	Id        int64     `gorm:"column:id;primary_key;" json:"id"`
	Address   string    `gorm:"column:address;unique" json:"address"`
	Nickname  string    `gorm:"column:nickname" json:"nickname"`
	Status    int       `gorm:"column:status" json:"status"` // 1 参赛 0 退赛
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Competitor) TableName() string {
	return "competitors"
}
