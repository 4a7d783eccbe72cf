package repository

import (
	"cyberguard_backend/internal/model"

	"gorm.io/gorm"
)

type DPIARepository struct {
	DB *gorm.DB
}

func NewDPIARepository(db *gorm.DB) *DPIARepository {
	return &DPIARepository{DB: db}
}

func (r *DPIARepository) Create(d *model.DPIA) error {
	return r.DB.Create(d).Error
}

func (r *DPIARepository) FindByID(id uint) (*model.DPIA, error) {
	var d model.DPIA
	err := r.DB.First(&d, id).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DPIARepository) ListVisible(userID uint, isAdmin bool, page, limit int) ([]model.DPIA, int64, error) {
	var ds []model.DPIA

	query := r.DB.Model(&model.DPIA{})
	if !isAdmin {
		query = query.Where("owner_id = ? OR status = ? OR status = ?",
			userID, model.ArtifactPublished, model.ArtifactAssigned)
	}
	if err := query.Order("created_at desc").Find(&ds).Error; err != nil {
		return nil, 0, err
	}

	if !isAdmin {
		filtered := ds[:0]
		for _, d := range ds {
			if d.Status == model.ArtifactAssigned && d.OwnerID != userID &&
				!model.ContainsUser(d.AssignedUserIDs, userID) {
				continue
			}
			filtered = append(filtered, d)
		}
		ds = filtered
	}

	total := int64(len(ds))
	start := (page - 1) * limit
	if start > len(ds) {
		start = len(ds)
	}
	end := start + limit
	if end > len(ds) {
		end = len(ds)
	}
	return ds[start:end], total, nil
}

func (r *DPIARepository) Update(d *model.DPIA) error {
	return r.DB.Save(d).Error
}

func (r *DPIARepository) Delete(id uint) error {
	return r.DB.Delete(&model.DPIA{}, id).Error
}
