package model

import "encoding/json"

// DPIA 数据保护影响评估记录
// swagger:model DPIA
type DPIA struct {
	BaseModel
	Title              string          `gorm:"size:255;not null" json:"title"`
	ProcessingActivity string          `gorm:"size:255" json:"processingActivity"`
	Description        string          `gorm:"type:text" json:"description"`
	RiskLevel          RiskLevel       `gorm:"size:20;default:'Low'" json:"riskLevel"`
	Status             ArtifactStatus  `gorm:"size:20;default:'draft';index" json:"status"`
	OwnerID            uint            `gorm:"index;type:bigint unsigned" json:"ownerId"`
	AssignedUserIDs    json.RawMessage `gorm:"type:json" json:"assignedUserIds"`
	Mitigations        string          `gorm:"type:text" json:"mitigations"`
}

func (DPIA) TableName() string {
	return "dpias"
}
