package cpq

import (
	"context"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/quotelane/cpq_backend/config"
	"github.com/quotelane/cpq_backend/models"
	"github.com/quotelane/cpq_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// driftEpsilon is the rounding tolerance for client/server price agreement.
var driftEpsilon = decimal.NewFromFloat(0.01)

// Service is the authoritative compute and persistence surface. HTTP
// handlers call it directly; the coordinator calls it through the
// ComputeService/ConfigurationStore ports. Both paths run the same Evaluate
// and Price functions, which is what keeps local and authoritative results
// from drifting.
type Service struct {
	Logger *logrus.Logger
}

func NewService(logger *logrus.Logger) *Service {
	return &Service{Logger: logger}
}

func (s *Service) ValidateConfiguration(ctx context.Context, templateId string, selections models.Selection) (*ValidationResult, error) {
	catalog, err := models.LoadCatalog(ctx, templateId)
	if err != nil {
		return nil, err
	}
	return Evaluate(catalog.OptionGroups, selections, catalog.Rules)
}

func (s *Service) CalculatePrice(ctx context.Context, templateId string, selections models.Selection, quantity int) (*PriceCalculation, error) {
	catalog, err := models.LoadCatalog(ctx, templateId)
	if err != nil {
		return nil, err
	}
	return Price(catalog.Template.BasePrice, selections, catalog.OptionGroups, quantity, catalog.Rules)
}

// SaveConfiguration prices the selections authoritatively and persists a new
// configuration row. With CPQ_STRICT_SAVE_VALIDATION, invalid selections are
// rejected instead of saved as an in-progress draft.
func (s *Service) SaveConfiguration(ctx context.Context, input *models.NewConfiguration) (*models.Configuration, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, &PersistenceError{Op: "save", Err: err}
	}
	catalog, err := models.LoadCatalog(ctx, input.TemplateId)
	if err != nil {
		return nil, err
	}
	selections := input.SelectedOptions
	if selections == nil {
		selections = models.Selection{}
	}
	if config.StrictSaveValidation() {
		validation, verr := Evaluate(catalog.OptionGroups, selections, catalog.Rules)
		if verr != nil {
			return nil, verr
		}
		if !validation.IsValid {
			return nil, &PersistenceError{Op: "save", Err: fmt.Errorf("configuration is not valid: %s", validation.Errors[0].Message)}
		}
	}
	pricing, err := Price(catalog.Template.BasePrice, selections, catalog.OptionGroups, input.Quantity, catalog.Rules)
	if err != nil {
		return nil, err
	}
	record, err := models.CreateConfiguration(ctx, input, pricing.Total)
	if err != nil {
		return nil, &PersistenceError{Op: "save", Err: err}
	}
	return record, nil
}

// UpdateConfiguration reprices and updates an existing configuration. A
// best-effort redis lock serializes concurrent edit sessions on the same
// row; when the lock is unavailable, last write wins.
func (s *Service) UpdateConfiguration(ctx context.Context, id string, input *models.UpdateConfiguration) (*models.Configuration, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, &PersistenceError{Op: "update", Err: err}
	}
	if locker := config.GetRedisLock(); locker != nil {
		lock, lerr := locker.Obtain(ctx, "cpqConfigLock:"+id, 5*time.Second, nil)
		if lerr == nil {
			defer lock.Release(ctx)
		} else if lerr != redislock.ErrNotObtained {
			config.LogError(s.Logger, "service.go", "UpdateConfiguration", "redislock", id, lerr)
		}
	}

	existing, err := models.GetConfiguration(ctx, id)
	if err != nil {
		return nil, err
	}
	catalog, err := models.LoadCatalog(ctx, existing.TemplateId)
	if err != nil {
		return nil, err
	}

	selections := input.SelectedOptions
	if selections == nil {
		selections = existing.SelectedOptions
	}
	quantity := input.Quantity
	if quantity < 1 {
		quantity = existing.Quantity
	}
	if config.StrictSaveValidation() {
		validation, verr := Evaluate(catalog.OptionGroups, selections, catalog.Rules)
		if verr != nil {
			return nil, verr
		}
		if !validation.IsValid {
			return nil, &PersistenceError{Op: "update", Err: fmt.Errorf("configuration is not valid: %s", validation.Errors[0].Message)}
		}
	}
	pricing, err := Price(catalog.Template.BasePrice, selections, catalog.OptionGroups, quantity, catalog.Rules)
	if err != nil {
		return nil, err
	}

	record, err := models.SaveConfigurationChanges(ctx, id, input, pricing.Total)
	if err != nil {
		return nil, &PersistenceError{Op: "update", Err: err}
	}
	return record, nil
}

// GetConfiguration loads a saved configuration and reprices it against the
// current catalog. A stored total that has gone stale (catalog price changed
// since the last save) is healed in place and the drift logged.
func (s *Service) GetConfiguration(ctx context.Context, id string) (*models.Configuration, *PriceCalculation, error) {
	record, err := models.GetConfiguration(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	pricing, err := s.CalculatePrice(ctx, record.TemplateId, record.SelectedOptions, record.Quantity)
	if err != nil {
		return record, nil, nil
	}
	if pricing.Total.Sub(record.TotalPrice).Abs().GreaterThan(driftEpsilon) {
		config.LogError(s.Logger, "service.go", "GetConfiguration", "stale stored price healed",
			map[string]string{"configurationId": id, "stored": record.TotalPrice.String(), "recomputed": pricing.Total.String()},
			fmt.Errorf("stored price drift"))
		if db := config.GetDB(); db != nil {
			_ = db.WithContext(ctx).Model(&models.Configuration{}).Where("id = ?", id).
				Update("total_price", pricing.Total).Error
		}
		record.TotalPrice = pricing.Total
	}
	return record, pricing, nil
}

// CompleteConfiguration validates and transitions a configuration to
// completed. An invalid configuration is returned with its validation result
// and is not transitioned.
func (s *Service) CompleteConfiguration(ctx context.Context, id string) (*models.Configuration, *ValidationResult, error) {
	record, err := models.GetConfiguration(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	validation, err := s.ValidateConfiguration(ctx, record.TemplateId, record.SelectedOptions)
	if err != nil {
		return nil, nil, err
	}
	if !validation.IsValid {
		return record, validation, fmt.Errorf("configuration is not valid: %s", validation.Errors[0].Message)
	}
	record, err = models.MarkConfigurationCompleted(ctx, id)
	if err != nil {
		return nil, validation, &PersistenceError{Op: "complete", Err: err}
	}
	return record, validation, nil
}
