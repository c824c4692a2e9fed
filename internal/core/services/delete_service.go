package services

import (
	"context"
	"fmt"

	"github.com/kamal-hamza/cloak-cli/internal/core/ports"
	"github.com/kamal-hamza/cloak-cli/internal/logging"
)

// DeleteService permanently removes hidden files
type DeleteService struct {
	gateway ports.Gateway
	log     logging.Logger
}

func NewDeleteService(gateway ports.Gateway, log logging.Logger) *DeleteService {
	if log == nil {
		log = logging.Nop()
	}
	return &DeleteService{gateway: gateway, log: log}
}

// Execute removes the record. Removing an id that is already gone succeeds.
func (s *DeleteService) Execute(ctx context.Context, id int64) error {
	if err := s.gateway.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete hidden file %d: %w", id, err)
	}
	s.log.Info(ctx, "file deleted", "id", id)
	return nil
}
