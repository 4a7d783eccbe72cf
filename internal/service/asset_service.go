package service

import (
	"cyberguard_backend/internal/model"
	"cyberguard_backend/internal/repository"
	"cyberguard_backend/internal/util"
)

type AssetService struct {
	Repo *repository.AssetRepository
}

func NewAssetService(repo *repository.AssetRepository) *AssetService {
	return &AssetService{Repo: repo}
}

type AssetRequest struct {
	Name            string `json:"name" binding:"required"`
	Type            string `json:"type"`
	Description     string `json:"description"`
	Criticality     string `json:"criticality"`
	Status          string `json:"status"`
	Location        string `json:"location"`
	AssignedUserIDs []uint `json:"assignedUserIds"`
}

func (s *AssetService) Create(ownerID uint, req AssetRequest) (*model.Asset, error) {
	a := &model.Asset{
		Name:            req.Name,
		Type:            req.Type,
		Description:     req.Description,
		Criticality:     req.Criticality,
		Status:          model.ArtifactDraft,
		OwnerID:         ownerID,
		Location:        req.Location,
		AssignedUserIDs: model.MarshalUserIDs(req.AssignedUserIDs),
	}
	if req.Status != "" {
		a.Status = model.ArtifactStatus(req.Status)
	}
	if a.Criticality == "" {
		a.Criticality = "medium"
	}
	if err := s.Repo.Create(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AssetService) List(userID uint, isAdmin bool, page, limit int) ([]model.Asset, int64, error) {
	return s.Repo.ListVisible(userID, isAdmin, page, limit)
}

func (s *AssetService) Get(id, userID uint, isAdmin bool) (*model.Asset, error) {
	a, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && a.OwnerID != userID &&
		a.Status != model.ArtifactPublished &&
		!(a.Status == model.ArtifactAssigned && model.ContainsUser(a.AssignedUserIDs, userID)) {
		return nil, util.ErrNotVisible
	}
	return a, nil
}

type AssetUpdateRequest struct {
	Name            *string `json:"name"`
	Type            *string `json:"type"`
	Description     *string `json:"description"`
	Criticality     *string `json:"criticality"`
	Status          *string `json:"status"`
	Location        *string `json:"location"`
	AssignedUserIDs []uint  `json:"assignedUserIds"`
}

func (s *AssetService) Update(id uint, req AssetUpdateRequest) (*model.Asset, error) {
	a, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		a.Name = *req.Name
	}
	if req.Type != nil {
		a.Type = *req.Type
	}
	if req.Description != nil {
		a.Description = *req.Description
	}
	if req.Criticality != nil {
		a.Criticality = *req.Criticality
	}
	if req.Status != nil {
		a.Status = model.ArtifactStatus(*req.Status)
	}
	if req.Location != nil {
		a.Location = *req.Location
	}
	if req.AssignedUserIDs != nil {
		a.AssignedUserIDs = model.MarshalUserIDs(req.AssignedUserIDs)
	}
	if err := s.Repo.Update(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AssetService) Delete(id uint) error {
	return s.Repo.Delete(id)
}
