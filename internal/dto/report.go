package dto

import "github.com/Cheker-dimassi/banking-system-microservices/internal/core/domain"

// ReportPeriodParams bounds a report. Dates are YYYY-MM-DD or RFC 3339.
type ReportPeriodParams struct {
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
}

// MonthlyReportParams selects a calendar month, the current one when omitted.
type MonthlyReportParams struct {
	Year  int `form:"year" binding:"omitempty,min=1,max=9999"`
	Month int `form:"month" binding:"omitempty,min=1,max=12"`
}

// TrendReportParams selects the trend window in days and an optional type.
type TrendReportParams struct {
	Period int                    `form:"period,default=30" binding:"min=1,max=366"`
	Type   domain.TransactionType `form:"type" binding:"omitempty,txtype"`
}

// SummaryResponse carries the overall transaction summary.
type SummaryResponse struct {
	Success bool                      `json:"success"`
	Summary domain.TransactionSummary `json:"summary"`
}

// AccountStatisticsResponse carries one account's statistics.
type AccountStatisticsResponse struct {
	Success    bool                     `json:"success"`
	Statistics domain.AccountStatistics `json:"statistics"`
}

// MonthlyStatisticsResponse carries one month's statistics.
type MonthlyStatisticsResponse struct {
	Success           bool                     `json:"success"`
	MonthlyStatistics domain.MonthlyStatistics `json:"monthlyStatistics"`
}

// TrendResponse carries the daily trend report.
type TrendResponse struct {
	Success bool `json:"success"`
	domain.TrendReport
}
