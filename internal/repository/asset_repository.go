package repository

import (
	"cyberguard_backend/internal/model"

	"gorm.io/gorm"
)

type AssetRepository struct {
	DB *gorm.DB
}

func NewAssetRepository(db *gorm.DB) *AssetRepository {
	return &AssetRepository{DB: db}
}

func (r *AssetRepository) Create(a *model.Asset) error {
	return r.DB.Create(a).Error
}

func (r *AssetRepository) FindByID(id uint) (*model.Asset, error) {
	var a model.Asset
	err := r.DB.First(&a, id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AssetRepository) ListVisible(userID uint, isAdmin bool, page, limit int) ([]model.Asset, int64, error) {
	var assets []model.Asset

	query := r.DB.Model(&model.Asset{})
	if !isAdmin {
		query = query.Where("owner_id = ? OR status = ? OR status = ?",
			userID, model.ArtifactPublished, model.ArtifactAssigned)
	}
	if err := query.Order("created_at desc").Find(&assets).Error; err != nil {
		return nil, 0, err
	}

	if !isAdmin {
		filtered := assets[:0]
		for _, a := range assets {
			if a.Status == model.ArtifactAssigned && a.OwnerID != userID &&
				!model.ContainsUser(a.AssignedUserIDs, userID) {
				continue
			}
			filtered = append(filtered, a)
		}
		assets = filtered
	}

	total := int64(len(assets))
	start := (page - 1) * limit
	if start > len(assets) {
		start = len(assets)
	}
	end := start + limit
	if end > len(assets) {
		end = len(assets)
	}
	return assets[start:end], total, nil
}

func (r *AssetRepository) Update(a *model.Asset) error {
	return r.DB.Save(a).Error
}

func (r *AssetRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Asset{}, id).Error
}
