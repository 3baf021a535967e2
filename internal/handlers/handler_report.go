package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/Cheker-dimassi/banking-system-microservices/internal/core/ports/services"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/dto"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/middleware"
	"github.com/gin-gonic/gin"
)

// reportHandler serves the read-only transaction analytics.
type reportHandler struct {
	reportService portssvc.ReportSvcFacade
}

func newReportHandler(rs portssvc.ReportSvcFacade) *reportHandler {
	return &reportHandler{reportService: rs}
}

// RegisterReportRoutes registers the /transactions/reports routes.
func RegisterReportRoutes(rg *gin.RouterGroup, reportService portssvc.ReportSvcFacade) {
	h := newReportHandler(reportService)

	reports := rg.Group("/transactions/reports")
	{
		reports.GET("/summary", h.getSummary)
		reports.GET("/account/:accountId", h.getAccountStatistics)
		reports.GET("/monthly", h.getMonthly)
		reports.GET("/trends", h.getTrends)
	}
}

// getSummary godoc
// @Summary Transaction summary
// @Description Counts and totals of settled transactions by class
// @Tags reports
// @Produce  json
// @Param   startDate query string false "YYYY-MM-DD or RFC 3339"
// @Param   endDate query string false "YYYY-MM-DD (whole day) or RFC 3339"
// @Success 200 {object} dto.SummaryResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid dates"
// @Failure 500 {object} dto.ErrorResponse "Failed to build summary"
// @Router /transactions/reports/summary [get]
func (h *reportHandler) getSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ReportPeriodParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, logger, "Summary", err)
		return
	}

	summary, err := h.reportService.Summary(c.Request.Context(), params.StartDate, params.EndDate)
	if err != nil {
		respondError(c, logger, err, "Failed to build summary", nil)
		return
	}
	c.JSON(http.StatusOK, dto.SummaryResponse{Success: true, Summary: *summary})
}

// getAccountStatistics godoc
// @Summary Account statistics
// @Description Incoming and outgoing flow of one account
// @Tags reports
// @Produce  json
// @Param   accountId path string true "Account ID"
// @Param   startDate query string false "YYYY-MM-DD or RFC 3339"
// @Param   endDate query string false "YYYY-MM-DD (whole day) or RFC 3339"
// @Success 200 {object} dto.AccountStatisticsResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid dates"
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to build account statistics"
// @Router /transactions/reports/account/{accountId} [get]
func (h *reportHandler) getAccountStatistics(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountId")
	logger = logger.With(slog.String("account_id", accountID))

	var params dto.ReportPeriodParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, logger, "AccountStatistics", err)
		return
	}

	stats, err := h.reportService.AccountStatistics(c.Request.Context(), accountID, params.StartDate, params.EndDate)
	if err != nil {
		respondError(c, logger, err, "Failed to build account statistics", nil)
		return
	}
	c.JSON(http.StatusOK, dto.AccountStatisticsResponse{Success: true, Statistics: *stats})
}

// getMonthly godoc
// @Summary Monthly statistics
// @Description Totals by class and a daily breakdown for one calendar month
// @Tags reports
// @Produce  json
// @Param   year query int false "Year, current when omitted"
// @Param   month query int false "Month 1-12, current when omitted"
// @Success 200 {object} dto.MonthlyStatisticsResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid month"
// @Failure 500 {object} dto.ErrorResponse "Failed to build monthly statistics"
// @Router /transactions/reports/monthly [get]
func (h *reportHandler) getMonthly(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.MonthlyReportParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, logger, "MonthlyStatistics", err)
		return
	}

	stats, err := h.reportService.Monthly(c.Request.Context(), params.Year, params.Month)
	if err != nil {
		respondError(c, logger, err, "Failed to build monthly statistics", nil)
		return
	}
	c.JSON(http.StatusOK, dto.MonthlyStatisticsResponse{Success: true, MonthlyStatistics: *stats})
}

// getTrends godoc
// @Summary Transaction trends
// @Description Daily activity over the last period days, oldest first
// @Tags reports
// @Produce  json
// @Param   period query int false "Days to cover" default(30)
// @Param   type query string false "Restrict to one transaction type"
// @Success 200 {object} dto.TrendResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid period or type"
// @Failure 500 {object} dto.ErrorResponse "Failed to build trends"
// @Router /transactions/reports/trends [get]
func (h *reportHandler) getTrends(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.TrendReportParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, logger, "Trends", err)
		return
	}

	report, err := h.reportService.Trends(c.Request.Context(), params.Period, params.Type)
	if err != nil {
		respondError(c, logger, err, "Failed to build trends", nil)
		return
	}
	c.JSON(http.StatusOK, dto.TrendResponse{Success: true, TrendReport: *report})
}
