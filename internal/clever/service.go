package clever

// file: internal/clever/service.go

import (
	"context"

	"github.com/dkoosis/clevermcp/internal/logging"
	"github.com/dkoosis/clevermcp/internal/services"
)

// Service exposes the Clever Cloud capabilities. It holds no mutable state.
type Service struct {
	client *Client
	logger logging.Logger
}

var _ services.Service = (*Service)(nil)

// NewService creates the service around client.
func NewService(client *Client, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	return &Service{
		client: client,
		logger: logger.WithField("service", ServiceName),
	}
}

// GetName returns the service name.
func (s *Service) GetName() string {
	return ServiceName
}

// Initialize has nothing to prepare: the remote endpoints need no credentials.
func (s *Service) Initialize(_ context.Context) error {
	s.logger.Debug("Clever Cloud service ready.")
	return nil
}

// Shutdown has nothing to release.
func (s *Service) Shutdown() error {
	return nil
}
