package model

import "encoding/json"

type ReportStatus string

const (
	ReportPending   ReportStatus = "pending"
	ReportCompleted ReportStatus = "completed"
	ReportFailed    ReportStatus = "failed"
)

// Report AI 生成的叙述性报告，Content 为不透明 JSON，
// Summary/MaturityLevel 冗余出来做列表展示。
// swagger:model Report
type Report struct {
	UUIDBase
	SubmissionID  uint            `gorm:"index;type:bigint unsigned" json:"submissionId"`
	UserID        uint            `gorm:"index;type:bigint unsigned" json:"userId"`
	Title         string          `gorm:"size:255" json:"title"`
	Summary       string          `gorm:"type:text" json:"summary"`
	MaturityLevel MaturityLevel   `gorm:"size:20" json:"maturityLevel"`
	Content       json.RawMessage `gorm:"type:json" json:"content"`
	Status        ReportStatus    `gorm:"size:20;default:'pending';index" json:"status"`
	Error         string          `gorm:"type:text" json:"-"`
}

func (Report) TableName() string {
	return "reports"
}
