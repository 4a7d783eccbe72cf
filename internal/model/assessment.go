package model

import (
	"encoding/json"
	"time"
)

// swagger:model Assessment
type Assessment struct {
	BaseModel
	Title           string          `gorm:"size:255;not null" json:"title"`
	Description     string          `gorm:"type:text" json:"description"`
	Status          ArtifactStatus  `gorm:"size:20;default:'draft';index" json:"status"`
	CreatedBy       uint            `gorm:"index;type:bigint unsigned" json:"createdBy"`
	AssignedUserIDs json.RawMessage `gorm:"type:json" json:"assignedUserIds"`
	PublishedAt     *time.Time      `json:"publishedAt,omitempty"`
}

func (Assessment) TableName() string {
	return "assessments"
}

type QuestionType string

const (
	QuestionYesNo          QuestionType = "yes_no"
	QuestionSingleChoice   QuestionType = "single_choice"
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionText           QuestionType = "text"
)

// QuestionOption 选项，choice 类题型通过 IsCorrect 标记正确项
type QuestionOption struct {
	Label     string `json:"label"`
	IsCorrect bool   `json:"isCorrect"`
}

// swagger:model AssessmentQuestion
type AssessmentQuestion struct {
	BaseModel
	AssessmentID  uint            `gorm:"index;type:bigint unsigned" json:"assessmentId"`
	QuestionType  QuestionType    `gorm:"size:50;not null" json:"questionType"`
	Text          string          `gorm:"type:text;not null" json:"text"`
	Options       json.RawMessage `gorm:"type:json" json:"options"` // JSON: []QuestionOption
	CorrectAnswer string          `gorm:"type:text" json:"correctAnswer"`
	Domain        string          `gorm:"size:100;index" json:"domain"`
	Weight        int             `gorm:"default:1" json:"weight"` // 1-5
	Required      bool            `gorm:"default:false" json:"required"`
	Order         int             `gorm:"default:0" json:"order"`
}

func (AssessmentQuestion) TableName() string {
	return "assessment_questions"
}

// DecodedOptions 解析 JSON 选项列，坏数据返回空列表
func (q *AssessmentQuestion) DecodedOptions() []QuestionOption {
	if len(q.Options) == 0 {
		return nil
	}
	var opts []QuestionOption
	if err := json.Unmarshal(q.Options, &opts); err != nil {
		return nil
	}
	return opts
}
