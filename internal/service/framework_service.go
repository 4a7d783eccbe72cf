package service

import (
	"cyberguard_backend/internal/model"
	"cyberguard_backend/internal/repository"
	"cyberguard_backend/internal/util"
	"math"
)

type FrameworkService struct {
	Repo *repository.FrameworkRepository
}

func NewFrameworkService(repo *repository.FrameworkRepository) *FrameworkService {
	return &FrameworkService{Repo: repo}
}

type FrameworkRequest struct {
	Name            string `json:"name" binding:"required"`
	Description     string `json:"description"`
	Status          string `json:"status"`
	AssignedUserIDs []uint `json:"assignedUserIds"`
}

func (s *FrameworkService) Create(ownerID uint, req FrameworkRequest) (*model.Framework, error) {
	f := &model.Framework{
		Name:            req.Name,
		Description:     req.Description,
		Status:          model.ArtifactDraft,
		OwnerID:         ownerID,
		AssignedUserIDs: model.MarshalUserIDs(req.AssignedUserIDs),
	}
	if req.Status != "" {
		f.Status = model.ArtifactStatus(req.Status)
	}
	if err := s.Repo.Create(f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *FrameworkService) List(userID uint, isAdmin bool, page, limit int) ([]model.Framework, int64, error) {
	return s.Repo.ListVisible(userID, isAdmin, page, limit)
}

func (s *FrameworkService) Get(id, userID uint, isAdmin bool) (*model.Framework, error) {
	f, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && f.OwnerID != userID &&
		f.Status != model.ArtifactPublished &&
		!(f.Status == model.ArtifactAssigned && model.ContainsUser(f.AssignedUserIDs, userID)) {
		return nil, util.ErrNotVisible
	}
	return f, nil
}

type FrameworkUpdateRequest struct {
	Name            *string `json:"name"`
	Description     *string `json:"description"`
	Status          *string `json:"status"`
	AssignedUserIDs []uint  `json:"assignedUserIds"`
}

func (s *FrameworkService) Update(id uint, req FrameworkUpdateRequest) (*model.Framework, error) {
	f, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		f.Name = *req.Name
	}
	if req.Description != nil {
		f.Description = *req.Description
	}
	if req.Status != nil {
		f.Status = model.ArtifactStatus(*req.Status)
	}
	if req.AssignedUserIDs != nil {
		f.AssignedUserIDs = model.MarshalUserIDs(req.AssignedUserIDs)
	}
	// Save 会连带 Controls 关联，清掉避免覆盖
	f.Controls = nil
	if err := s.Repo.Update(f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *FrameworkService) Delete(id uint) error {
	return s.Repo.Delete(id)
}

// Controls

type ControlRequest struct {
	Code        string `json:"code"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

func (s *FrameworkService) AddControl(frameworkID uint, req ControlRequest) (*model.Control, error) {
	if _, err := s.Repo.FindByID(frameworkID); err != nil {
		return nil, err
	}

	c := &model.Control{
		FrameworkID: frameworkID,
		Code:        req.Code,
		Title:       req.Title,
		Description: req.Description,
		Status:      model.ControlNotImplemented,
	}
	if req.Status != "" {
		c.Status = model.ControlStatus(req.Status)
	}
	if err := s.Repo.CreateControl(c); err != nil {
		return nil, err
	}
	if err := s.RecomputeCompliance(frameworkID); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *FrameworkService) ListControls(frameworkID uint) ([]model.Control, error) {
	return s.Repo.ListControls(frameworkID)
}

func (s *FrameworkService) UpdateControl(id uint, req ControlRequest) (*model.Control, error) {
	c, err := s.Repo.FindControlByID(id)
	if err != nil {
		return nil, err
	}
	if req.Code != "" {
		c.Code = req.Code
	}
	if req.Title != "" {
		c.Title = req.Title
	}
	if req.Description != "" {
		c.Description = req.Description
	}
	if req.Status != "" {
		c.Status = model.ControlStatus(req.Status)
	}
	if err := s.Repo.UpdateControl(c); err != nil {
		return nil, err
	}
	if err := s.RecomputeCompliance(c.FrameworkID); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *FrameworkService) DeleteControl(id uint) error {
	c, err := s.Repo.FindControlByID(id)
	if err != nil {
		return err
	}
	if err := s.Repo.DeleteControl(id); err != nil {
		return err
	}
	return s.RecomputeCompliance(c.FrameworkID)
}

// RecomputeCompliance 控制项每次变更后整体重算：
// compliance = round((已实现 + 0.5×部分实现) / 总数 × 100)，无控制项时为 0。
func (s *FrameworkService) RecomputeCompliance(frameworkID uint) error {
	controls, err := s.Repo.ListControls(frameworkID)
	if err != nil {
		return err
	}
	return s.Repo.UpdateCompliance(frameworkID, ComplianceScore(controls))
}

// ComplianceScore 纯函数，便于单测
func ComplianceScore(controls []model.Control) int {
	if len(controls) == 0 {
		return 0
	}
	var weighted float64
	for _, c := range controls {
		switch c.Status {
		case model.ControlImplemented:
			weighted += 1
		case model.ControlPartiallyImplemented:
			weighted += 0.5
		}
	}
	return int(math.Round(weighted / float64(len(controls)) * 100))
}
