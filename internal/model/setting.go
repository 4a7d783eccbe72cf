package model

// Setting 全局配置项，按固定 Key 取单行，读取方负责缺省值
// swagger:model Setting
type Setting struct {
	BaseModel
	Key   string `gorm:"size:100;uniqueIndex;not null" json:"key"`
	Value string `gorm:"type:text" json:"value"`
}

func (Setting) TableName() string {
	return "settings"
}

// 平台当前使用的配置键
const (
	SettingAdvisorPrompt = "advisor_system_prompt"
)
