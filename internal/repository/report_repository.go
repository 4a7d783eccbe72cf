package repository

import (
	"cyberguard_backend/internal/model"

	"gorm.io/gorm"
)

type ReportRepository struct {
	DB *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{DB: db}
}

func (r *ReportRepository) Create(report *model.Report) error {
	return r.DB.Create(report).Error
}

func (r *ReportRepository) FindByID(id string) (*model.Report, error) {
	var report model.Report
	err := r.DB.Where("id = ?", id).First(&report).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *ReportRepository) FindBySubmission(submissionID uint) (*model.Report, error) {
	var report model.Report
	err := r.DB.Where("submission_id = ?", submissionID).
		Order("created_at desc").First(&report).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *ReportRepository) List(userID uint, isAdmin bool, page, limit int) ([]model.Report, int64, error) {
	var reports []model.Report
	var total int64

	query := r.DB.Model(&model.Report{})
	if !isAdmin {
		query = query.Where("user_id = ?", userID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	// 列表只带摘要字段，正文 JSON 在详情接口取
	err := query.Omit("content").Order("created_at desc").Offset(offset).Limit(limit).Find(&reports).Error
	return reports, total, err
}

func (r *ReportRepository) Update(report *model.Report) error {
	return r.DB.Save(report).Error
}
