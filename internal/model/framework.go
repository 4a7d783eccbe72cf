package model

import "encoding/json"

type ControlStatus string

const (
	ControlImplemented          ControlStatus = "implemented"
	ControlPartiallyImplemented ControlStatus = "partially_implemented"
	ControlNotImplemented       ControlStatus = "not_implemented"
)

// Framework 合规框架，Compliance 为控制项推导出的 0-100 达标率，
// 控制项每次增删改后整体重算。
// swagger:model Framework
type Framework struct {
	BaseModel
	Name            string          `gorm:"size:255;not null" json:"name"`
	Description     string          `gorm:"type:text" json:"description"`
	Status          ArtifactStatus  `gorm:"size:20;default:'draft';index" json:"status"`
	OwnerID         uint            `gorm:"index;type:bigint unsigned" json:"ownerId"`
	AssignedUserIDs json.RawMessage `gorm:"type:json" json:"assignedUserIds"`
	Compliance      int             `gorm:"default:0" json:"compliance"`
	Controls        []Control       `gorm:"foreignKey:FrameworkID" json:"controls,omitempty"`
}

func (Framework) TableName() string {
	return "frameworks"
}

// swagger:model Control
type Control struct {
	BaseModel
	FrameworkID uint          `gorm:"index;type:bigint unsigned" json:"frameworkId"`
	Code        string        `gorm:"size:50" json:"code"`
	Title       string        `gorm:"size:255;not null" json:"title"`
	Description string        `gorm:"type:text" json:"description"`
	Status      ControlStatus `gorm:"size:30;default:'not_implemented'" json:"status"`
}

func (Control) TableName() string {
	return "controls"
}
