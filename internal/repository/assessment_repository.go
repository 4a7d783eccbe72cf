package repository

import (
	"cyberguard_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AssessmentRepository struct {
	DB *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) *AssessmentRepository {
	return &AssessmentRepository{DB: db}
}

func (r *AssessmentRepository) Create(a *model.Assessment) error {
	return r.DB.Create(a).Error
}

func (r *AssessmentRepository) FindByID(id uint) (*model.Assessment, error) {
	var a model.Assessment
	err := r.DB.First(&a, id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListVisible 所有者与已发布的在 SQL 里过滤；assigned 状态的名单存 JSON，
// 取回后在内存里判断指派关系。
func (r *AssessmentRepository) ListVisible(userID uint, isAdmin bool, page, limit int) ([]model.Assessment, int64, error) {
	var as []model.Assessment

	query := r.DB.Model(&model.Assessment{})
	if !isAdmin {
		query = query.Where("created_by = ? OR status = ? OR status = ?",
			userID, model.ArtifactPublished, model.ArtifactAssigned)
	}
	if err := query.Order("created_at desc").Find(&as).Error; err != nil {
		return nil, 0, err
	}

	if !isAdmin {
		filtered := as[:0]
		for _, a := range as {
			if a.Status == model.ArtifactAssigned && a.CreatedBy != userID &&
				!model.ContainsUser(a.AssignedUserIDs, userID) {
				continue
			}
			filtered = append(filtered, a)
		}
		as = filtered
	}

	total := int64(len(as))
	start := (page - 1) * limit
	if start > len(as) {
		start = len(as)
	}
	end := start + limit
	if end > len(as) {
		end = len(as)
	}
	return as[start:end], total, nil
}

func (r *AssessmentRepository) Update(a *model.Assessment) error {
	return r.DB.Save(a).Error
}

func (r *AssessmentRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Assessment{}, id).Error
}

// Question related methods

func (r *AssessmentRepository) CreateQuestion(q *model.AssessmentQuestion) error {
	return r.DB.Create(q).Error
}

func (r *AssessmentRepository) FindQuestionByID(id uint) (*model.AssessmentQuestion, error) {
	var q model.AssessmentQuestion
	err := r.DB.First(&q, id).Error
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *AssessmentRepository) ListQuestions(assessmentID uint) ([]model.AssessmentQuestion, error) {
	var qs []model.AssessmentQuestion
	err := r.DB.Where("assessment_id = ?", assessmentID).
		Order("`order` asc, created_at asc").Find(&qs).Error
	return qs, err
}

func (r *AssessmentRepository) UpdateQuestion(q *model.AssessmentQuestion) error {
	return r.DB.Save(q).Error
}

func (r *AssessmentRepository) DeleteQuestion(id uint) error {
	return r.DB.Delete(&model.AssessmentQuestion{}, id).Error
}

// Progress related methods

func (r *AssessmentRepository) FindProgress(userID, assessmentID uint) (*model.AssessmentProgress, error) {
	var p model.AssessmentProgress
	err := r.DB.Where("user_id = ? AND assessment_id = ?", userID, assessmentID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpsertProgress 每次保存覆盖答案与完成度，(user, assessment) 冲突时更新
func (r *AssessmentRepository) UpsertProgress(p *model.AssessmentProgress) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "assessment_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"answers", "completion_pct", "status", "updated_at"}),
	}).Create(p).Error
}

// Submission related methods

func (r *AssessmentRepository) CreateSubmission(s *model.AssessmentSubmission) error {
	return r.DB.Create(s).Error
}

func (r *AssessmentRepository) FindSubmissionByID(id uint) (*model.AssessmentSubmission, error) {
	var s model.AssessmentSubmission
	err := r.DB.Preload("User").First(&s, id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *AssessmentRepository) ListSubmissions(assessmentID uint, page, limit int) ([]model.AssessmentSubmission, int64, error) {
	var ss []model.AssessmentSubmission
	var total int64

	query := r.DB.Model(&model.AssessmentSubmission{}).Where("assessment_id = ?", assessmentID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Preload("User").Order("created_at desc").Offset(offset).Limit(limit).Find(&ss).Error
	return ss, total, err
}

func (r *AssessmentRepository) ListSubmissionsByUser(userID uint) ([]model.AssessmentSubmission, error) {
	var ss []model.AssessmentSubmission
	err := r.DB.Where("user_id = ?", userID).Order("created_at desc").Find(&ss).Error
	return ss, err
}
