package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Cheker-dimassi/banking-system-microservices/internal/core/domain"
	portssvc "github.com/Cheker-dimassi/banking-system-microservices/internal/core/ports/services"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/dto"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/middleware"
	"github.com/gin-gonic/gin"
)

// automationRuleHandler handles HTTP requests related to automation rules.
type automationRuleHandler struct {
	ruleService portssvc.RuleSvcFacade
}

func newAutomationRuleHandler(rs portssvc.RuleSvcFacade) *automationRuleHandler {
	return &automationRuleHandler{ruleService: rs}
}

// RegisterAutomationRuleRoutes registers the /automation-rules routes.
func RegisterAutomationRuleRoutes(rg *gin.RouterGroup, ruleService portssvc.RuleSvcFacade) {
	h := newAutomationRuleHandler(ruleService)

	rules := rg.Group("/automation-rules")
	{
		rules.POST("", h.createRule)
		rules.GET("/account/:accountId", h.listRulesByAccount)
		rules.GET("/:ruleId", h.getRule)
		rules.PUT("/:ruleId", h.updateRule)
		rules.DELETE("/:ruleId", h.deleteRule)
		rules.PATCH("/:ruleId/toggle", h.toggleRule)
		rules.GET("/:ruleId/stats", h.getRuleStats)
		rules.GET("/:ruleId/history", h.getRuleHistory)
	}
}

// createRule godoc
// @Summary Create an automation rule
// @Tags automation rules
// @Accept  json
// @Produce  json
// @Param   rule body dto.AutomationRuleRequest true "Rule definition"
// @Success 201 {object} dto.RuleResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid rule definition"
// @Failure 500 {object} dto.ErrorResponse "Failed to create automation rule"
// @Router /automation-rules [post]
func (h *automationRuleHandler) createRule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.AutomationRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, "CreateRule", err)
		return
	}

	logger = logger.With(slog.String("account_id", req.AccountID))
	logger.Info("Received request to create automation rule", slog.String("type", string(req.Type)))

	rule, err := h.ruleService.CreateRule(c.Request.Context(), req)
	if err != nil {
		respondError(c, logger, err, "Failed to create automation rule", nil)
		return
	}
	c.JSON(http.StatusCreated, dto.RuleResponse{Success: true, Rule: rule})
}

// getRule godoc
// @Summary Get an automation rule
// @Tags automation rules
// @Produce  json
// @Param   ruleId path string true "Rule ID"
// @Success 200 {object} dto.RuleResponse
// @Failure 404 {object} dto.ErrorResponse "Rule not found"
// @Router /automation-rules/{ruleId} [get]
func (h *automationRuleHandler) getRule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	ruleID := c.Param("ruleId")

	rule, err := h.ruleService.GetRule(c.Request.Context(), ruleID)
	if err != nil {
		respondError(c, logger.With(slog.String("rule_id", ruleID)), err, "Failed to retrieve automation rule", nil)
		return
	}
	c.JSON(http.StatusOK, dto.RuleResponse{Success: true, Rule: rule})
}

// listRulesByAccount godoc
// @Summary List an account's automation rules
// @Tags automation rules
// @Produce  json
// @Param   accountId path string true "Account ID"
// @Success 200 {object} dto.ListRulesResponse
// @Failure 500 {object} dto.ErrorResponse "Failed to list automation rules"
// @Router /automation-rules/account/{accountId} [get]
func (h *automationRuleHandler) listRulesByAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountId")

	rules, err := h.ruleService.ListRulesByAccount(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, logger.With(slog.String("account_id", accountID)), err, "Failed to list automation rules", nil)
		return
	}
	if rules == nil {
		rules = []domain.AutomationRule{}
	}
	c.JSON(http.StatusOK, dto.ListRulesResponse{Success: true, Count: len(rules), Rules: rules})
}

// updateRule godoc
// @Summary Replace an automation rule
// @Description Statistics and owner are kept
// @Tags automation rules
// @Accept  json
// @Produce  json
// @Param   ruleId path string true "Rule ID"
// @Param   rule body dto.AutomationRuleRequest true "Rule definition"
// @Success 200 {object} dto.RuleResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid rule definition"
// @Failure 404 {object} dto.ErrorResponse "Rule not found"
// @Router /automation-rules/{ruleId} [put]
func (h *automationRuleHandler) updateRule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	ruleID := c.Param("ruleId")
	logger = logger.With(slog.String("rule_id", ruleID))

	var req dto.AutomationRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, "UpdateRule", err)
		return
	}

	rule, err := h.ruleService.UpdateRule(c.Request.Context(), ruleID, req)
	if err != nil {
		respondError(c, logger, err, "Failed to update automation rule", nil)
		return
	}
	logger.Info("Automation rule updated")
	c.JSON(http.StatusOK, dto.RuleResponse{Success: true, Rule: rule})
}

// toggleRule godoc
// @Summary Activate or deactivate an automation rule
// @Tags automation rules
// @Produce  json
// @Param   ruleId path string true "Rule ID"
// @Success 200 {object} dto.RuleResponse
// @Failure 404 {object} dto.ErrorResponse "Rule not found"
// @Router /automation-rules/{ruleId}/toggle [patch]
func (h *automationRuleHandler) toggleRule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	ruleID := c.Param("ruleId")

	rule, err := h.ruleService.ToggleRule(c.Request.Context(), ruleID)
	if err != nil {
		respondError(c, logger.With(slog.String("rule_id", ruleID)), err, "Failed to toggle automation rule", nil)
		return
	}
	c.JSON(http.StatusOK, dto.RuleResponse{Success: true, Rule: rule})
}

// deleteRule godoc
// @Summary Delete an automation rule
// @Tags automation rules
// @Param   ruleId path string true "Rule ID"
// @Success 204 "No Content"
// @Failure 404 {object} dto.ErrorResponse "Rule not found"
// @Router /automation-rules/{ruleId} [delete]
func (h *automationRuleHandler) deleteRule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	ruleID := c.Param("ruleId")
	logger = logger.With(slog.String("rule_id", ruleID))

	if err := h.ruleService.DeleteRule(c.Request.Context(), ruleID); err != nil {
		respondError(c, logger, err, "Failed to delete automation rule", nil)
		return
	}
	logger.Info("Automation rule deleted")
	c.Status(http.StatusNoContent)
}

// getRuleStats godoc
// @Summary Automation rule statistics
// @Description Lifetime counters plus today's and this month's executions
// @Tags automation rules
// @Produce  json
// @Param   ruleId path string true "Rule ID"
// @Success 200 {object} dto.RuleStatsResponse
// @Failure 404 {object} dto.ErrorResponse "Rule not found"
// @Router /automation-rules/{ruleId}/stats [get]
func (h *automationRuleHandler) getRuleStats(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	ruleID := c.Param("ruleId")

	stats, err := h.ruleService.GetRuleStats(c.Request.Context(), ruleID)
	if err != nil {
		respondError(c, logger.With(slog.String("rule_id", ruleID)), err, "Failed to retrieve automation rule stats", nil)
		return
	}
	c.JSON(http.StatusOK, dto.RuleStatsResponse{Success: true, Stats: stats})
}

// getRuleHistory godoc
// @Summary Automation rule history
// @Description Transfers performed by the rule, newest first
// @Tags automation rules
// @Produce  json
// @Param   ruleId path string true "Rule ID"
// @Success 200 {object} dto.RuleHistoryResponse
// @Failure 404 {object} dto.ErrorResponse "Rule not found"
// @Router /automation-rules/{ruleId}/history [get]
func (h *automationRuleHandler) getRuleHistory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	ruleID := c.Param("ruleId")

	txns, err := h.ruleService.GetRuleHistory(c.Request.Context(), ruleID)
	if err != nil {
		respondError(c, logger.With(slog.String("rule_id", ruleID)), err, "Failed to retrieve automation rule history", nil)
		return
	}
	if txns == nil {
		txns = []domain.Transaction{}
	}
	c.JSON(http.StatusOK, dto.RuleHistoryResponse{Success: true, Count: len(txns), Transactions: txns})
}
