package service

import (
	"cyberguard_backend/internal/model"
	"cyberguard_backend/internal/repository"
	"cyberguard_backend/internal/util"
)

type DPIAService struct {
	Repo *repository.DPIARepository
}

func NewDPIAService(repo *repository.DPIARepository) *DPIAService {
	return &DPIAService{Repo: repo}
}

type DPIARequest struct {
	Title              string `json:"title" binding:"required"`
	ProcessingActivity string `json:"processingActivity"`
	Description        string `json:"description"`
	RiskLevel          string `json:"riskLevel"`
	Status             string `json:"status"`
	Mitigations        string `json:"mitigations"`
	AssignedUserIDs    []uint `json:"assignedUserIds"`
}

func (s *DPIAService) Create(ownerID uint, req DPIARequest) (*model.DPIA, error) {
	d := &model.DPIA{
		Title:              req.Title,
		ProcessingActivity: req.ProcessingActivity,
		Description:        req.Description,
		RiskLevel:          model.RiskLow,
		Status:             model.ArtifactDraft,
		OwnerID:            ownerID,
		Mitigations:        req.Mitigations,
		AssignedUserIDs:    model.MarshalUserIDs(req.AssignedUserIDs),
	}
	if req.RiskLevel != "" {
		d.RiskLevel = model.RiskLevel(req.RiskLevel)
	}
	if req.Status != "" {
		d.Status = model.ArtifactStatus(req.Status)
	}
	if err := s.Repo.Create(d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *DPIAService) List(userID uint, isAdmin bool, page, limit int) ([]model.DPIA, int64, error) {
	return s.Repo.ListVisible(userID, isAdmin, page, limit)
}

func (s *DPIAService) Get(id, userID uint, isAdmin bool) (*model.DPIA, error) {
	d, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && d.OwnerID != userID &&
		d.Status != model.ArtifactPublished &&
		!(d.Status == model.ArtifactAssigned && model.ContainsUser(d.AssignedUserIDs, userID)) {
		return nil, util.ErrNotVisible
	}
	return d, nil
}

type DPIAUpdateRequest struct {
	Title              *string `json:"title"`
	ProcessingActivity *string `json:"processingActivity"`
	Description        *string `json:"description"`
	RiskLevel          *string `json:"riskLevel"`
	Status             *string `json:"status"`
	Mitigations        *string `json:"mitigations"`
	AssignedUserIDs    []uint  `json:"assignedUserIds"`
}

func (s *DPIAService) Update(id uint, req DPIAUpdateRequest) (*model.DPIA, error) {
	d, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		d.Title = *req.Title
	}
	if req.ProcessingActivity != nil {
		d.ProcessingActivity = *req.ProcessingActivity
	}
	if req.Description != nil {
		d.Description = *req.Description
	}
	if req.RiskLevel != nil {
		d.RiskLevel = model.RiskLevel(*req.RiskLevel)
	}
	if req.Status != nil {
		d.Status = model.ArtifactStatus(*req.Status)
	}
	if req.Mitigations != nil {
		d.Mitigations = *req.Mitigations
	}
	if req.AssignedUserIDs != nil {
		d.AssignedUserIDs = model.MarshalUserIDs(req.AssignedUserIDs)
	}
	if err := s.Repo.Update(d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *DPIAService) Delete(id uint) error {
	return s.Repo.Delete(id)
}
