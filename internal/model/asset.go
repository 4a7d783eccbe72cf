package model

import "encoding/json"

// swagger:model Asset
type Asset struct {
	BaseModel
	Name            string          `gorm:"size:255;not null" json:"name"`
	Type            string          `gorm:"size:100" json:"type"` // server, database, application, ...
	Description     string          `gorm:"type:text" json:"description"`
	Criticality     string          `gorm:"size:20;default:'medium'" json:"criticality"`
	Status          ArtifactStatus  `gorm:"size:20;default:'draft';index" json:"status"`
	OwnerID         uint            `gorm:"index;type:bigint unsigned" json:"ownerId"`
	AssignedUserIDs json.RawMessage `gorm:"type:json" json:"assignedUserIds"`
	Location        string          `gorm:"size:255" json:"location"`
}

func (Asset) TableName() string {
	return "assets"
}
