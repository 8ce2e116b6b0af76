package services

import (
	"fmt"

	"athani_mart/internal/models"
	"athani_mart/internal/repository"
)

type AgentService interface {
	RegisterAgent(agent *models.Agent) error
	GetAgentByID(id uint) (*models.Agent, error)
	GetAllAgents() ([]models.Agent, error)
	SetAvailability(id uint, online bool) (*models.Agent, error)
	VerifyAgent(id uint) (*models.Agent, error)
	ViewerFor(agent *models.Agent) models.Viewer
}

type agentService struct {
	agentRepo repository.AgentRepository
}

func NewAgentService(agentRepo repository.AgentRepository) AgentService {
	return &agentService{agentRepo: agentRepo}
}

func (s *agentService) RegisterAgent(agent *models.Agent) error {
	return s.agentRepo.Create(agent)
}

func (s *agentService) GetAgentByID(id uint) (*models.Agent, error) {
	return s.agentRepo.GetByID(id)
}

func (s *agentService) GetAllAgents() ([]models.Agent, error) {
	return s.agentRepo.GetAll()
}

// SetAvailability is the delivery-agent online/offline toggle.
func (s *agentService) SetAvailability(id uint, online bool) (*models.Agent, error) {
	agent, err := s.agentRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	agent.IsOnline = online
	if err := s.agentRepo.Update(agent); err != nil {
		return nil, err
	}
	return agent, nil
}

func (s *agentService) VerifyAgent(id uint) (*models.Agent, error) {
	agent, err := s.agentRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	agent.IsVerified = true
	if err := s.agentRepo.Update(agent); err != nil {
		return nil, err
	}
	return agent, nil
}

// ViewerFor builds the order-query identity carrying the eligibility flags
// the sync controller's admission gate checks.
func (s *agentService) ViewerFor(agent *models.Agent) models.Viewer {
	return models.Viewer{
		ID:         fmt.Sprintf("%d", agent.ID),
		Role:       models.RoleAgent,
		IsOnline:   agent.IsOnline,
		IsVerified: agent.IsVerified,
	}
}
