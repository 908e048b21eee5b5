package cpq

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/mitchellh/copystructure"
	"github.com/quotelane/cpq_backend/config"
	"github.com/quotelane/cpq_backend/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	defaultDebounce   = 500 * time.Millisecond
	remoteCallTimeout = 10 * time.Second

	// Auto-select rules can chain (one auto-selection satisfying another
	// rule's condition), so evaluation re-runs after merging until a fixed
	// point. The cap breaks rule sets that auto-select each other's trigger
	// in a cycle.
	defaultMaxAutoSelectPasses = 5
)

// Coordinator owns the live selection state of one configuration session:
// selections, quantity, and the derived validation/pricing pair. Every
// mutation recomputes locally (synchronous, instant) and schedules a
// debounced authoritative recomputation against the remote compute service;
// when the authoritative result disagrees materially, it silently replaces
// the local one.
//
// One coordinator per session; the catalog it holds is read-only and safely
// shared across sessions.
type Coordinator struct {
	Debounce            time.Duration
	MaxAutoSelectPasses int

	catalog *models.Catalog
	remote  ComputeService
	store   ConfigurationStore
	logger  *logrus.Logger

	mu              sync.Mutex
	selections      models.Selection
	quantity        int
	validation      *ValidationResult
	pricing         *PriceCalculation
	configurationId string

	// Monotonic sequence of selection events. A remote response is applied
	// only if its sequence still matches, so a late-arriving response from a
	// superseded request can never overwrite newer state.
	seq        uint64
	timer      *time.Timer
	pendingSeq uint64
	pendingSel models.Selection
	pendingQty int
	hasPending bool
}

func NewCoordinator(catalog *models.Catalog, remote ComputeService, store ConfigurationStore, logger *logrus.Logger) *Coordinator {
	return &Coordinator{
		Debounce:            defaultDebounce,
		MaxAutoSelectPasses: defaultMaxAutoSelectPasses,
		catalog:             catalog,
		remote:              remote,
		store:               store,
		logger:              logger,
		selections:          models.Selection{},
		quantity:            1,
	}
}

// SelectOption sets (or clears, for an empty value) the selection of one
// group, recomputes locally, and schedules the authoritative check.
func (c *Coordinator) SelectOption(groupId string, value models.SelectionValue) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if value.IsEmpty() {
		delete(c.selections, groupId)
	} else {
		c.selections[groupId] = value
	}
	if err := c.localRecompute(); err != nil {
		return err
	}
	c.scheduleRemoteCheck()
	return nil
}

func (c *Coordinator) SetQuantity(quantity int) error {
	if quantity < 1 {
		quantity = 1
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.quantity = quantity
	if err := c.localRecompute(); err != nil {
		return err
	}
	c.scheduleRemoteCheck()
	return nil
}

// ApplyPreset replaces the whole selection with a preset's selection map.
func (c *Coordinator) ApplyPreset(presetId string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	preset, err := c.catalog.FindPreset(presetId)
	if err != nil {
		return err
	}
	c.selections = preset.SelectedOptions.Clone()
	if err := c.localRecompute(); err != nil {
		return err
	}
	c.scheduleRemoteCheck()
	return nil
}

// Save persists the current selections and quantity. The first save creates
// a configuration; later saves update it by id. On failure local state is
// untouched, so the caller can retry without re-entering choices.
func (c *Coordinator) Save(ctx context.Context, notes string) (*models.Configuration, error) {
	c.mu.Lock()
	selections := c.selections.Clone()
	quantity := c.quantity
	configurationId := c.configurationId
	templateId := c.catalog.Template.ID
	c.mu.Unlock()

	var record *models.Configuration
	var err error
	if configurationId == "" {
		record, err = c.store.SaveConfiguration(ctx, &models.NewConfiguration{
			TemplateId:         templateId,
			SelectedOptions:    selections,
			Quantity:           quantity,
			Notes:              notes,
			GenerateShareToken: true,
		})
	} else {
		record, err = c.store.UpdateConfiguration(ctx, configurationId, &models.UpdateConfiguration{
			SelectedOptions: selections,
			Quantity:        quantity,
			Notes:           &notes,
		})
	}
	if err != nil {
		var pe *PersistenceError
		if errors.As(err, &pe) {
			return nil, err
		}
		return nil, &PersistenceError{Op: "save", Err: err}
	}

	c.mu.Lock()
	c.configurationId = record.ID
	c.mu.Unlock()
	return record, nil
}

// Reset clears the session: empty selection, quantity 1, and no bound
// configuration id, so the next Save creates a new row.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selections = models.Selection{}
	c.quantity = 1
	c.configurationId = ""
	c.validation = nil
	c.pricing = nil
	c.seq++
	if c.timer != nil {
		c.timer.Stop()
	}
	c.hasPending = false
}

func (c *Coordinator) Selections() models.Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selections.Clone()
}

func (c *Coordinator) Quantity() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.quantity
}

func (c *Coordinator) ConfigurationId() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.configurationId
}

func (c *Coordinator) Validation() *ValidationResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return deepCopyValidation(c.validation)
}

func (c *Coordinator) Pricing() *PriceCalculation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return deepCopyPricing(c.pricing)
}

// localRecompute runs the evaluator and pricer synchronously against the
// local catalog copy, merging auto-selections and re-running until a fixed
// point (bounded by MaxAutoSelectPasses). Caller holds c.mu.
func (c *Coordinator) localRecompute() error {
	for pass := 0; ; pass++ {
		result, err := Evaluate(c.catalog.OptionGroups, c.selections, c.catalog.Rules)
		if err != nil {
			return err
		}
		c.validation = result
		if pass >= c.MaxAutoSelectPasses {
			break
		}
		if !c.mergeAutoSelections(result.AutoSelections) {
			break
		}
	}

	pricing, err := Price(c.catalog.Template.BasePrice, c.selections, c.catalog.OptionGroups, c.quantity, c.catalog.Rules)
	if err != nil {
		return err
	}
	c.pricing = pricing
	return nil
}

// mergeAutoSelections applies rule-forced selections into the live map.
// Returns true if anything changed. Keys are walked sorted so repeated runs
// over the same result apply in the same order.
func (c *Coordinator) mergeAutoSelections(autoSelections map[string]string) bool {
	if len(autoSelections) == 0 {
		return false
	}
	groupIds := make([]string, 0, len(autoSelections))
	for groupId := range autoSelections {
		groupIds = append(groupIds, groupId)
	}
	sort.Strings(groupIds)

	changed := false
	for _, groupId := range groupIds {
		optionId := autoSelections[groupId]
		current, ok := c.selections[groupId]
		if ok && current.Contains(optionId) {
			continue
		}
		if c.groupIsMulti(groupId) {
			if ok {
				c.selections[groupId] = models.MultiSelection(append(current.OptionIds(), optionId)...)
			} else {
				c.selections[groupId] = models.MultiSelection(optionId)
			}
		} else {
			c.selections[groupId] = models.SingleSelection(optionId)
		}
		changed = true
	}
	return changed
}

func (c *Coordinator) groupIsMulti(groupId string) bool {
	for _, g := range c.catalog.OptionGroups {
		if g.ID == groupId {
			return g.SelectionType == models.SelectionTypeMultiple
		}
	}
	return false
}

// scheduleRemoteCheck (re)starts the debounce window for the authoritative
// recomputation. Each new selection event cancels the in-flight window, so
// rapid changes collapse into one remote call for the latest state. Caller
// holds c.mu.
func (c *Coordinator) scheduleRemoteCheck() {
	c.seq++
	seq := c.seq
	selections := c.selections.Clone()
	quantity := c.quantity

	c.pendingSeq = seq
	c.pendingSel = selections
	c.pendingQty = quantity
	c.hasPending = true

	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.Debounce, func() {
		c.runRemoteCheck(seq, selections, quantity)
	})
}

// runRemoteCheck issues the authoritative recomputation and reconciles. The
// response applies only while its sequence is still current; superseded
// responses are discarded on arrival.
func (c *Coordinator) runRemoteCheck(seq uint64, selections models.Selection, quantity int) {
	if len(selections) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), remoteCallTimeout)
	defer cancel()

	templateId := c.catalog.Template.ID
	remoteValidation, verr := c.remote.ValidateConfiguration(ctx, templateId, selections)
	remotePricing, perr := c.remote.CalculatePrice(ctx, templateId, selections, quantity)

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq {
		return
	}
	c.hasPending = false

	if verr != nil {
		config.LogError(c.logger, "coordinator.go", "runRemoteCheck", "remote validation", templateId, verr)
	} else if remoteValidation != nil && !sameErrors(c.validation, remoteValidation) {
		// Authoritative result wins silently; persistent drift here means
		// the local and remote algorithms have diverged.
		config.LogError(c.logger, "coordinator.go", "runRemoteCheck", "validation drift",
			map[string]interface{}{"templateId": templateId, "seq": seq},
			errDrift)
		c.validation = remoteValidation
	}

	if perr != nil {
		config.LogError(c.logger, "coordinator.go", "runRemoteCheck", "remote pricing", templateId, perr)
	} else if remotePricing != nil && c.pricing != nil &&
		remotePricing.Total.Sub(c.pricing.Total).Abs().GreaterThan(driftEpsilon) {
		config.LogError(c.logger, "coordinator.go", "runRemoteCheck", "price drift",
			map[string]string{"templateId": templateId, "local": c.pricing.Total.String(), "remote": remotePricing.Total.String()},
			errDrift)
		c.pricing = remotePricing
	} else if perr == nil && remotePricing != nil && c.pricing == nil {
		c.pricing = remotePricing
	}
}

// flushPending fires the debounced remote check immediately. Test hook.
func (c *Coordinator) flushPending() {
	c.mu.Lock()
	if !c.hasPending {
		c.mu.Unlock()
		return
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	seq, selections, quantity := c.pendingSeq, c.pendingSel, c.pendingQty
	c.mu.Unlock()
	c.runRemoteCheck(seq, selections, quantity)
}

var errDrift = errors.New("local/remote computation drift")

func init() {
	// decimal.Decimal carries unexported fields but is immutable, so a
	// shallow copy is a correct deep copy.
	copystructure.Copiers[reflect.TypeOf(decimal.Decimal{})] = func(v interface{}) (interface{}, error) {
		return v.(decimal.Decimal), nil
	}
}

func sameErrors(local *ValidationResult, remote *ValidationResult) bool {
	if local == nil {
		return false
	}
	a, err1 := json.Marshal(local.Errors)
	b, err2 := json.Marshal(remote.Errors)
	if err1 != nil || err2 != nil {
		return false
	}
	return bytes.Equal(a, b)
}

func deepCopyValidation(v *ValidationResult) *ValidationResult {
	if v == nil {
		return nil
	}
	if cp, err := copystructure.Copy(v); err == nil {
		return cp.(*ValidationResult)
	}
	return v
}

func deepCopyPricing(p *PriceCalculation) *PriceCalculation {
	if p == nil {
		return nil
	}
	if cp, err := copystructure.Copy(p); err == nil {
		return cp.(*PriceCalculation)
	}
	return p
}
