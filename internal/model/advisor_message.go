package model

// AdvisorMessage AI 顾问对话历史
// swagger:model AdvisorMessage
type AdvisorMessage struct {
	BaseModel
	UserID  uint   `gorm:"index;type:bigint unsigned" json:"userId"`
	Role    string `gorm:"size:20;not null" json:"role"` // user / assistant
	Content string `gorm:"type:text;not null" json:"content"`
}

func (AdvisorMessage) TableName() string {
	return "advisor_messages"
}
