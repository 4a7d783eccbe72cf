package repository

import (
	"cyberguard_backend/internal/model"

	"gorm.io/gorm"
)

type FrameworkRepository struct {
	DB *gorm.DB
}

func NewFrameworkRepository(db *gorm.DB) *FrameworkRepository {
	return &FrameworkRepository{DB: db}
}

func (r *FrameworkRepository) Create(f *model.Framework) error {
	return r.DB.Create(f).Error
}

func (r *FrameworkRepository) FindByID(id uint) (*model.Framework, error) {
	var f model.Framework
	err := r.DB.Preload("Controls").First(&f, id).Error
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *FrameworkRepository) ListVisible(userID uint, isAdmin bool, page, limit int) ([]model.Framework, int64, error) {
	var fs []model.Framework

	query := r.DB.Model(&model.Framework{})
	if !isAdmin {
		query = query.Where("owner_id = ? OR status = ? OR status = ?",
			userID, model.ArtifactPublished, model.ArtifactAssigned)
	}
	if err := query.Order("created_at desc").Find(&fs).Error; err != nil {
		return nil, 0, err
	}

	if !isAdmin {
		filtered := fs[:0]
		for _, f := range fs {
			if f.Status == model.ArtifactAssigned && f.OwnerID != userID &&
				!model.ContainsUser(f.AssignedUserIDs, userID) {
				continue
			}
			filtered = append(filtered, f)
		}
		fs = filtered
	}

	total := int64(len(fs))
	start := (page - 1) * limit
	if start > len(fs) {
		start = len(fs)
	}
	end := start + limit
	if end > len(fs) {
		end = len(fs)
	}
	return fs[start:end], total, nil
}

func (r *FrameworkRepository) Update(f *model.Framework) error {
	return r.DB.Save(f).Error
}

func (r *FrameworkRepository) UpdateCompliance(id uint, compliance int) error {
	return r.DB.Model(&model.Framework{}).Where("id = ?", id).Update("compliance", compliance).Error
}

func (r *FrameworkRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Framework{}, id).Error
}

// Control related methods

func (r *FrameworkRepository) CreateControl(c *model.Control) error {
	return r.DB.Create(c).Error
}

func (r *FrameworkRepository) FindControlByID(id uint) (*model.Control, error) {
	var c model.Control
	err := r.DB.First(&c, id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *FrameworkRepository) ListControls(frameworkID uint) ([]model.Control, error) {
	var cs []model.Control
	err := r.DB.Where("framework_id = ?", frameworkID).Order("code asc, created_at asc").Find(&cs).Error
	return cs, err
}

func (r *FrameworkRepository) UpdateControl(c *model.Control) error {
	return r.DB.Save(c).Error
}

func (r *FrameworkRepository) DeleteControl(id uint) error {
	return r.DB.Delete(&model.Control{}, id).Error
}
