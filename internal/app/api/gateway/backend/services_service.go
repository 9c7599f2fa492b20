package backend

import (
	"context"
	"slices"
	"sync"

	"github.com/h44z/sms-portal/internal/domain"
)

// ServicesService keeps the gateway configuration document and the state of the gateway processes.
type ServicesService struct {
	mu     sync.RWMutex
	config domain.ServiceConfig
	status []domain.ServiceStatus
}

func NewServicesService(config domain.ServiceConfig, status []domain.ServiceStatus) *ServicesService {
	if len(config) == 0 {
		config = domain.ServiceConfig(`{}`)
	}
	return &ServicesService{
		config: config,
		status: status,
	}
}

func (s *ServicesService) Config(_ context.Context) domain.ServiceConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.config)
}

// UpdateConfig replaces the configuration document. It must be a JSON object.
func (s *ServicesService) UpdateConfig(_ context.Context, config domain.ServiceConfig) error {
	parsed, err := domain.ParseServiceConfig(string(config))
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = parsed

	return nil
}

func (s *ServicesService) Status(_ context.Context) []domain.ServiceStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.status == nil {
		return []domain.ServiceStatus{}
	}
	return slices.Clone(s.status)
}
