package model

import "encoding/json"

type ProgressStatus string

const (
	ProgressInProgress ProgressStatus = "in_progress"
	ProgressCompleted  ProgressStatus = "completed"
)

// AssessmentProgress 每个 (用户, 评估) 仅一条，保存时 upsert。
// 状态单调：completed 之后不允许回退。
// swagger:model AssessmentProgress
type AssessmentProgress struct {
	BaseModel
	UserID        uint            `gorm:"uniqueIndex:idx_progress_user_assessment;type:bigint unsigned" json:"userId"`
	AssessmentID  uint            `gorm:"uniqueIndex:idx_progress_user_assessment;type:bigint unsigned" json:"assessmentId"`
	Answers       json.RawMessage `gorm:"type:json" json:"answers"`
	CompletionPct int             `gorm:"default:0" json:"completionPct"`
	Status        ProgressStatus  `gorm:"size:20;default:'in_progress'" json:"status"`
}

func (AssessmentProgress) TableName() string {
	return "assessment_progress"
}
