package main

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/quotelane/cpq_backend/config"
	"github.com/quotelane/cpq_backend/cpq"
	"github.com/quotelane/cpq_backend/models"
	"github.com/quotelane/cpq_backend/utils"
	"github.com/shopspring/decimal"
)

const maxListLimit = 100

// listLimit resolves the ?limit= query param, falling back to the default
// page size and capping runaway values.
func listLimit(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return config.SearchLimit
	}
	if n > maxListLimit {
		return maxListLimit
	}
	return n
}

func init() {
	// API consumers expect decimals as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Persisted models keep snake_case columns; the API contract is the
// camelCase JSON the existing consumers already parse. Handlers map
// between the two explicitly.

func templateJSON(t *models.ProductTemplate) gin.H {
	return gin.H{
		"id":          t.ID,
		"name":        t.Name,
		"description": t.Description,
		"basePrice":   t.BasePrice,
		"displayMode": t.DisplayMode,
		"imageUrl":    t.ImageUrl,
		"isActive":    t.IsActive != nil && *t.IsActive,
	}
}

func optionJSON(o *models.Option) gin.H {
	return gin.H{
		"id":                  o.ID,
		"groupId":             o.GroupId,
		"name":                o.Name,
		"description":         o.Description,
		"priceModifierType":   o.PriceModifierType,
		"priceModifierAmount": o.PriceModifierAmount,
		"isDefault":           o.IsDefault != nil && *o.IsDefault,
		"isAvailable":         o.IsAvailable == nil || *o.IsAvailable,
		"availabilityNote":    o.AvailabilityNote,
		"imageUrl":            o.ImageUrl,
		"displayOrder":        o.DisplayOrder,
	}
}

func optionGroupJSON(g *models.OptionGroup) gin.H {
	options := make([]gin.H, 0, len(g.Options))
	for _, o := range g.Options {
		options = append(options, optionJSON(o))
	}
	return gin.H{
		"id":            g.ID,
		"templateId":    g.TemplateId,
		"name":          g.Name,
		"description":   g.Description,
		"selectionType": g.SelectionType,
		"isRequired":    g.Required(),
		"minSelections": g.MinSelections,
		"maxSelections": g.MaxSelections,
		"displayOrder":  g.DisplayOrder,
		"sourceType":    g.SourceType,
		"categoryId":    g.CategoryId,
		"options":       options,
	}
}

func ruleJSON(r *models.ConfigurationRule) gin.H {
	return gin.H{
		"id":             r.ID,
		"templateId":     r.TemplateId,
		"ruleType":       r.RuleType,
		"name":           r.Name,
		"description":    r.Description,
		"errorMessage":   r.ErrorMessage,
		"priority":       r.Priority,
		"isActive":       r.Active(),
		"ifOptionId":     r.IfOptionId,
		"ifGroupId":      r.IfGroupId,
		"ifProductId":    r.IfProductId,
		"thenOptionId":   r.ThenOptionId,
		"thenGroupId":    r.ThenGroupId,
		"allowedOptions": r.AllowedOptions,
		"quantityMin":    r.QuantityMin,
		"discountType":   r.DiscountType,
		"discountValue":  r.DiscountValue,
	}
}

func presetJSON(p *models.TemplatePreset) gin.H {
	return gin.H{
		"id":               p.ID,
		"templateId":       p.TemplateId,
		"name":             p.Name,
		"description":      p.Description,
		"badgeText":        p.BadgeText,
		"imageUrl":         p.ImageUrl,
		"selectedOptions":  p.SelectedOptions,
		"cachedTotalPrice": p.CachedTotalPrice,
		"displayOrder":     p.DisplayOrder,
	}
}

func configurationJSON(cfg *models.Configuration) gin.H {
	return gin.H{
		"id":              cfg.ID,
		"templateId":      cfg.TemplateId,
		"name":            cfg.Name,
		"selectedOptions": cfg.SelectedOptions,
		"quantity":        cfg.Quantity,
		"totalPrice":      cfg.TotalPrice,
		"notes":           cfg.Notes,
		"status":          cfg.Status,
		"templateName":    cfg.TemplateName,
		"isTemplate":      cfg.IsTemplate != nil && *cfg.IsTemplate,
		"shareToken":      cfg.ShareToken,
		"createdAt":       cfg.CreatedAt,
		"updatedAt":       cfg.UpdatedAt,
	}
}

func respondError(c *gin.Context, err error) {
	var dataErr *cpq.ConfigurationDataError
	switch {
	case errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": err.Error()})
	case errors.As(err, &dataErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
	}
}

func getTemplateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		catalog, err := models.LoadCatalog(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		groups := make([]gin.H, 0, len(catalog.OptionGroups))
		for _, g := range catalog.OptionGroups {
			groups = append(groups, optionGroupJSON(g))
		}
		rules := make([]gin.H, 0, len(catalog.Rules))
		for _, r := range catalog.Rules {
			rules = append(rules, ruleJSON(r))
		}
		presets := make([]gin.H, 0, len(catalog.Presets))
		for _, p := range catalog.Presets {
			presets = append(presets, presetJSON(p))
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
			"template":     templateJSON(catalog.Template),
			"optionGroups": groups,
			"rules":        rules,
			"presets":      presets,
		}})
	}
}

func getPresetsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		presets, err := models.GetPresets(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		out := make([]gin.H, 0, len(presets))
		for _, p := range presets {
			out = append(out, presetJSON(p))
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": out})
	}
}

type validateRequest struct {
	TemplateId      string           `json:"templateId" binding:"required"`
	SelectedOptions models.Selection `json:"selectedOptions"`
}

func validateConfigurationHandler(service *cpq.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req validateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request"})
			return
		}
		result, err := service.ValidateConfiguration(c.Request.Context(), req.TemplateId, req.SelectedOptions)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
	}
}

type priceRequest struct {
	TemplateId      string           `json:"templateId" binding:"required"`
	SelectedOptions models.Selection `json:"selectedOptions"`
	Quantity        int              `json:"quantity" binding:"omitempty,min=1"`
}

func calculatePriceHandler(service *cpq.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req priceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request"})
			return
		}
		result, err := service.CalculatePrice(c.Request.Context(), req.TemplateId, req.SelectedOptions, req.Quantity)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
	}
}

type saveConfigurationRequest struct {
	TemplateId         string           `json:"templateId" binding:"required"`
	Name               string           `json:"name"`
	SelectedOptions    models.Selection `json:"selectedOptions"`
	Quantity           int              `json:"quantity" binding:"omitempty,min=1"`
	Notes              string           `json:"notes"`
	GenerateShareToken bool             `json:"generateShareToken"`
}

func saveConfigurationHandler(service *cpq.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req saveConfigurationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request"})
			return
		}
		record, err := service.SaveConfiguration(c.Request.Context(), &models.NewConfiguration{
			TemplateId:         req.TemplateId,
			Name:               req.Name,
			SelectedOptions:    req.SelectedOptions,
			Quantity:           req.Quantity,
			Notes:              req.Notes,
			GenerateShareToken: req.GenerateShareToken,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "data": configurationJSON(record)})
	}
}

type updateConfigurationRequest struct {
	Name            *string          `json:"name"`
	SelectedOptions models.Selection `json:"selectedOptions"`
	Quantity        int              `json:"quantity" binding:"omitempty,min=1"`
	Notes           *string          `json:"notes"`
}

func updateConfigurationHandler(service *cpq.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateConfigurationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request"})
			return
		}
		record, err := service.UpdateConfiguration(c.Request.Context(), c.Param("id"), &models.UpdateConfiguration{
			Name:            req.Name,
			SelectedOptions: req.SelectedOptions,
			Quantity:        req.Quantity,
			Notes:           req.Notes,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": configurationJSON(record)})
	}
}

func getConfigurationHandler(service *cpq.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		record, pricing, err := service.GetConfiguration(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
			"configuration": configurationJSON(record),
			"pricing":       pricing,
		}})
	}
}

func listConfigurationsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		records, err := models.ListConfigurations(c.Request.Context(), c.Query("templateId"), models.ConfigurationStatus(c.Query("status")), listLimit(c.Query("limit")))
		if err != nil {
			respondError(c, err)
			return
		}
		out := make([]gin.H, 0, len(records))
		for _, cfg := range records {
			out = append(out, configurationJSON(cfg))
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": out})
	}
}

func completeConfigurationHandler(service *cpq.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		record, validation, err := service.CompleteConfiguration(c.Request.Context(), c.Param("id"))
		if err != nil {
			if validation != nil && !validation.IsValid {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error(), "validation": validation})
				return
			}
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": configurationJSON(record)})
	}
}

type saveAsTemplateRequest struct {
	TemplateName string `json:"templateName" binding:"required"`
}

func saveAsTemplateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req saveAsTemplateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "templateName is required"})
			return
		}
		record, err := models.SaveConfigurationAsTemplate(c.Request.Context(), c.Param("id"), req.TemplateName)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": configurationJSON(record)})
	}
}

func getConfigurationTemplatesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		records, err := models.GetConfigurationTemplates(c.Request.Context(), c.Query("templateId"), listLimit(c.Query("limit")))
		if err != nil {
			respondError(c, err)
			return
		}
		out := make([]gin.H, 0, len(records))
		for _, cfg := range records {
			out = append(out, configurationJSON(cfg))
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": out})
	}
}

func getSharedConfigurationHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		record, err := models.GetConfigurationByShareToken(c.Request.Context(), c.Param("token"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": configurationJSON(record)})
	}
}
