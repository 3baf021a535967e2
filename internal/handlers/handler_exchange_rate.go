package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/Cheker-dimassi/banking-system-microservices/internal/core/ports/services"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/dto"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/middleware"
	"github.com/gin-gonic/gin"
)

// exchangeRateHandler handles HTTP requests related to exchange rates.
type exchangeRateHandler struct {
	exchangeRateService portssvc.ExchangeRateSvcFacade
}

// newExchangeRateHandler creates a new exchangeRateHandler.
func newExchangeRateHandler(ers portssvc.ExchangeRateSvcFacade) *exchangeRateHandler {
	return &exchangeRateHandler{
		exchangeRateService: ers,
	}
}

// getRates godoc
// @Summary Get exchange rates
// @Description Spot rates rebased on the requested currency. Unknown bases fall back to the configured base with a warning.
// @Tags currency
// @Produce  json
// @Param   base query string false "Base currency code"
// @Success 200 {object} dto.ExchangeRatesResponse
// @Failure 500 {object} dto.ErrorResponse "Failed to retrieve exchange rates"
// @Router /transactions/currency-rates [get]
func (h *exchangeRateHandler) getRates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	base := c.Query("base")

	rates, err := h.exchangeRateService.GetRates(c.Request.Context(), base)
	if err != nil {
		respondError(c, logger.With(slog.String("base", base)), err, "Failed to retrieve exchange rates", nil)
		return
	}
	c.JSON(http.StatusOK, dto.ExchangeRatesResponse{Success: true, ExchangeRates: rates})
}

// convert godoc
// @Summary Convert an amount
// @Description Converts at the spot rate and deducts the conversion fee
// @Tags currency
// @Accept  json
// @Produce  json
// @Param   request body dto.ConvertCurrencyRequest true "Conversion details"
// @Success 200 {object} dto.ConversionResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input or unsupported currency"
// @Failure 500 {object} dto.ErrorResponse "Failed to convert amount"
// @Router /transactions/currency/convert [post]
func (h *exchangeRateHandler) convert(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ConvertCurrencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, "ConvertCurrency", err)
		return
	}

	logger = logger.With(slog.String("from", req.FromCurrency), slog.String("to", req.ToCurrency))
	conversion, err := h.exchangeRateService.Convert(c.Request.Context(), req.Amount, req.FromCurrency, req.ToCurrency)
	if err != nil {
		respondError(c, logger, err, "Failed to convert amount", nil)
		return
	}
	c.JSON(http.StatusOK, dto.ConversionResponse{Success: true, Conversion: conversion})
}
