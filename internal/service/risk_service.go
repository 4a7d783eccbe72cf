package service

import (
	"cyberguard_backend/internal/model"
	"cyberguard_backend/internal/repository"
	"cyberguard_backend/internal/util"
)

type RiskService struct {
	Repo *repository.RiskRepository
}

func NewRiskService(repo *repository.RiskRepository) *RiskService {
	return &RiskService{Repo: repo}
}

type RiskRequest struct {
	Title           string `json:"title" binding:"required"`
	Description     string `json:"description"`
	Level           string `json:"level"`
	Status          string `json:"status"`
	Mitigation      string `json:"mitigation"`
	AssignedUserIDs []uint `json:"assignedUserIds"`
}

func (s *RiskService) Create(ownerID uint, req RiskRequest) (*model.Risk, error) {
	risk := &model.Risk{
		Title:           req.Title,
		Description:     req.Description,
		Level:           model.RiskLow,
		Source:          model.RiskSourceManual,
		Status:          model.ArtifactDraft,
		OwnerID:         ownerID,
		Mitigation:      req.Mitigation,
		AssignedUserIDs: model.MarshalUserIDs(req.AssignedUserIDs),
	}
	if req.Level != "" {
		risk.Level = model.RiskLevel(req.Level)
	}
	if req.Status != "" {
		risk.Status = model.ArtifactStatus(req.Status)
	}
	if err := s.Repo.Create(risk); err != nil {
		return nil, err
	}
	return risk, nil
}

func (s *RiskService) List(userID uint, isAdmin bool, page, limit int) ([]model.Risk, int64, error) {
	return s.Repo.ListVisible(userID, isAdmin, page, limit)
}

func (s *RiskService) Get(id, userID uint, isAdmin bool) (*model.Risk, error) {
	risk, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && risk.OwnerID != userID &&
		risk.Status != model.ArtifactPublished &&
		!(risk.Status == model.ArtifactAssigned && model.ContainsUser(risk.AssignedUserIDs, userID)) {
		return nil, util.ErrNotVisible
	}
	return risk, nil
}

type RiskUpdateRequest struct {
	Title           *string `json:"title"`
	Description     *string `json:"description"`
	Level           *string `json:"level"`
	Status          *string `json:"status"`
	Mitigation      *string `json:"mitigation"`
	AssignedUserIDs []uint  `json:"assignedUserIds"`
}

func (s *RiskService) Update(id uint, req RiskUpdateRequest) (*model.Risk, error) {
	risk, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		risk.Title = *req.Title
	}
	if req.Description != nil {
		risk.Description = *req.Description
	}
	if req.Level != nil {
		risk.Level = model.RiskLevel(*req.Level)
	}
	if req.Status != nil {
		risk.Status = model.ArtifactStatus(*req.Status)
	}
	if req.Mitigation != nil {
		risk.Mitigation = *req.Mitigation
	}
	if req.AssignedUserIDs != nil {
		risk.AssignedUserIDs = model.MarshalUserIDs(req.AssignedUserIDs)
	}
	if err := s.Repo.Update(risk); err != nil {
		return nil, err
	}
	return risk, nil
}

func (s *RiskService) Delete(id uint) error {
	return s.Repo.Delete(id)
}
