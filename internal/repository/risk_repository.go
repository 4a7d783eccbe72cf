package repository

import (
	"cyberguard_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RiskRepository struct {
	DB *gorm.DB
}

func NewRiskRepository(db *gorm.DB) *RiskRepository {
	return &RiskRepository{DB: db}
}

func (r *RiskRepository) Create(risk *model.Risk) error {
	return r.DB.Create(risk).Error
}

// CreateFromSubmission 幂等写入：同一 (submission, question) 已存在则不重复创建
func (r *RiskRepository) CreateFromSubmission(risk *model.Risk) error {
	return r.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(risk).Error
}

func (r *RiskRepository) FindByID(id uint) (*model.Risk, error) {
	var risk model.Risk
	err := r.DB.First(&risk, id).Error
	if err != nil {
		return nil, err
	}
	return &risk, nil
}

func (r *RiskRepository) ListVisible(userID uint, isAdmin bool, page, limit int) ([]model.Risk, int64, error) {
	var risks []model.Risk

	query := r.DB.Model(&model.Risk{})
	if !isAdmin {
		query = query.Where("owner_id = ? OR status = ? OR status = ?",
			userID, model.ArtifactPublished, model.ArtifactAssigned)
	}
	if err := query.Order("created_at desc").Find(&risks).Error; err != nil {
		return nil, 0, err
	}

	if !isAdmin {
		filtered := risks[:0]
		for _, risk := range risks {
			if risk.Status == model.ArtifactAssigned && risk.OwnerID != userID &&
				!model.ContainsUser(risk.AssignedUserIDs, userID) {
				continue
			}
			filtered = append(filtered, risk)
		}
		risks = filtered
	}

	total := int64(len(risks))
	start := (page - 1) * limit
	if start > len(risks) {
		start = len(risks)
	}
	end := start + limit
	if end > len(risks) {
		end = len(risks)
	}
	return risks[start:end], total, nil
}

func (r *RiskRepository) CountBySubmission(submissionID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Risk{}).Where("submission_id = ?", submissionID).Count(&count).Error
	return count, err
}

func (r *RiskRepository) Update(risk *model.Risk) error {
	return r.DB.Save(risk).Error
}

func (r *RiskRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Risk{}, id).Error
}
