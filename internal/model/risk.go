package model

import "encoding/json"

type RiskSource string

const (
	RiskSourceManual     RiskSource = "manual"
	RiskSourceAssessment RiskSource = "assessment"
)

// Risk 风险登记册条目。评估派生的风险带 (SubmissionID, QuestionID)
// 唯一索引，重复派发不会产生重复记录。
// swagger:model Risk
type Risk struct {
	BaseModel
	Title           string          `gorm:"size:255;not null" json:"title"`
	Description     string          `gorm:"type:text" json:"description"`
	Level           RiskLevel       `gorm:"size:20;default:'Low'" json:"level"`
	Source          RiskSource      `gorm:"size:20;default:'manual';index" json:"source"`
	Status          ArtifactStatus  `gorm:"size:20;default:'draft';index" json:"status"`
	OwnerID         uint            `gorm:"index;type:bigint unsigned" json:"ownerId"`
	SubmissionID    *uint           `gorm:"uniqueIndex:idx_risk_submission_question;type:bigint unsigned" json:"submissionId,omitempty"`
	QuestionID      *uint           `gorm:"uniqueIndex:idx_risk_submission_question;type:bigint unsigned" json:"questionId,omitempty"`
	AssignedUserIDs json.RawMessage `gorm:"type:json" json:"assignedUserIds"`
	Mitigation      string          `gorm:"type:text" json:"mitigation"`
}

func (Risk) TableName() string {
	return "risks"
}
