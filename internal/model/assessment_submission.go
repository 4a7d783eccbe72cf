package model

import (
	"encoding/json"
	"time"
)

type MaturityLevel string

const (
	MaturityCritical  MaturityLevel = "Critical"
	MaturityLow       MaturityLevel = "Low"
	MaturityMedium    MaturityLevel = "Medium"
	MaturityHigh      MaturityLevel = "High"
	MaturityExcellent MaturityLevel = "Excellent"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// AnswerResult 单题判分结果，随提交快照持久化
type AnswerResult struct {
	QuestionID    uint     `json:"questionId"`
	QuestionType  string   `json:"questionType"`
	Domain        string   `json:"domain"`
	Selected      []string `json:"selected,omitempty"`
	Text          string   `json:"text,omitempty"`
	Answered      bool     `json:"answered"`
	Correct       bool     `json:"correct"`
	Score         int      `json:"score"`
	MaxScore      int      `json:"maxScore"`
	FlaggedAsRisk bool     `json:"flaggedAsRisk"`
}

// DomainScore 按领域汇总
type DomainScore struct {
	Domain     string `json:"domain"`
	Score      int    `json:"score"`
	MaxScore   int    `json:"maxScore"`
	Percentage int    `json:"percentage"`
}

// IdentifiedRisk 被标记答案派生出的风险条目
type IdentifiedRisk struct {
	QuestionID   uint      `json:"questionId"`
	QuestionText string    `json:"questionText"`
	Domain       string    `json:"domain"`
	Level        RiskLevel `json:"level"`
}

// TimelineEntry 提交过程的时间线记录
type TimelineEntry struct {
	Event string    `json:"event"`
	At    time.Time `json:"at"`
}

// AssessmentSubmission 提交时生成的不可变快照
// swagger:model AssessmentSubmission
type AssessmentSubmission struct {
	BaseModel
	UserID          uint            `gorm:"index;type:bigint unsigned" json:"userId"`
	User            *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	AssessmentID    uint            `gorm:"index;type:bigint unsigned" json:"assessmentId"`
	Answers         json.RawMessage `gorm:"type:json" json:"answers"`         // []AnswerResult
	DomainScores    json.RawMessage `gorm:"type:json" json:"domainScores"`    // []DomainScore
	RisksIdentified json.RawMessage `gorm:"type:json" json:"risksIdentified"` // []IdentifiedRisk
	Timeline        json.RawMessage `gorm:"type:json" json:"timeline"`        // []TimelineEntry
	TotalScore      int             `json:"totalScore"`
	MaxScore        int             `json:"maxScore"`
	Percentage      int             `json:"percentage"`
	MaturityLevel   MaturityLevel   `gorm:"size:20" json:"maturityLevel"`
}

func (AssessmentSubmission) TableName() string {
	return "assessment_submissions"
}
