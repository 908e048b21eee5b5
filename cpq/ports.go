package cpq

import (
	"context"

	"github.com/quotelane/cpq_backend/models"
)

// ComputeService is the authoritative validation/pricing collaborator the
// coordinator reconciles against. The production implementation is Service,
// which runs the exact same Evaluate/Price code the coordinator runs locally;
// the interface exists so session tests can substitute a fake remote.
type ComputeService interface {
	ValidateConfiguration(ctx context.Context, templateId string, selections models.Selection) (*ValidationResult, error)
	CalculatePrice(ctx context.Context, templateId string, selections models.Selection, quantity int) (*PriceCalculation, error)
}

// ConfigurationStore persists configuration snapshots.
type ConfigurationStore interface {
	SaveConfiguration(ctx context.Context, input *models.NewConfiguration) (*models.Configuration, error)
	UpdateConfiguration(ctx context.Context, id string, input *models.UpdateConfiguration) (*models.Configuration, error)
}
