package repository

import (
	"cyberguard_backend/internal/model"

	"gorm.io/gorm"
)

type AdvisorRepository struct {
	DB *gorm.DB
}

func NewAdvisorRepository(db *gorm.DB) *AdvisorRepository {
	return &AdvisorRepository{DB: db}
}

func (r *AdvisorRepository) SaveMessage(m *model.AdvisorMessage) error {
	return r.DB.Create(m).Error
}

// History 按时间正序返回最近 limit 条
func (r *AdvisorRepository) History(userID uint, limit int) ([]model.AdvisorMessage, error) {
	var ms []model.AdvisorMessage
	err := r.DB.Where("user_id = ?", userID).
		Order("created_at desc").Limit(limit).Find(&ms).Error
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(ms)-1; i < j; i, j = i+1, j-1 {
		ms[i], ms[j] = ms[j], ms[i]
	}
	return ms, nil
}

func (r *AdvisorRepository) ClearHistory(userID uint) error {
	return r.DB.Where("user_id = ?", userID).Delete(&model.AdvisorMessage{}).Error
}
