package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/Cheker-dimassi/banking-system-microservices/internal/core/domain"
	portssvc "github.com/Cheker-dimassi/banking-system-microservices/internal/core/ports/services"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/dto"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/middleware"
	"github.com/gin-gonic/gin"
)

// transactionHandler handles HTTP requests that move money or query the ledger.
type transactionHandler struct {
	transactionService portssvc.TransactionSvcFacade
}

func newTransactionHandler(ts portssvc.TransactionSvcFacade) *transactionHandler {
	return &transactionHandler{transactionService: ts}
}

// RegisterTransactionRoutes registers the /transactions routes.
func RegisterTransactionRoutes(rg *gin.RouterGroup, transactionService portssvc.TransactionSvcFacade, exchangeRateService portssvc.ExchangeRateSvcFacade) {
	h := newTransactionHandler(transactionService)
	rates := newExchangeRateHandler(exchangeRateService)

	txns := rg.Group("/transactions")
	{
		txns.POST("", h.createTransaction)
		txns.POST("/deposit", h.processTyped(domain.Deposit))
		txns.POST("/withdrawal", h.processTyped(domain.Withdrawal))
		txns.POST("/internal-transfer", h.processTyped(domain.InternalTransfer))
		txns.POST("/interbank-transfer", h.processTyped(domain.InterbankTransfer))
		txns.POST("/fraud-check", h.fraudCheck)
		txns.POST("/fees/calculate", h.calculateFees)
		txns.GET("/commissions/:period", h.getCommissions)
		txns.GET("/limits/:accountId", h.getLimits)
		txns.PUT("/limits/:accountId", h.updateLimits)
		txns.GET("/account/:accountId", h.listByAccount)
		txns.GET("/suspicious/:accountId", h.listSuspicious)
		txns.GET("/currency-rates", rates.getRates)
		txns.POST("/currency/convert", rates.convert)
		txns.GET("/fee-waiver/:accountId", h.getFeeWaiver)
		txns.POST("/fee-waiver/:accountId", h.waiveFees)
		txns.DELETE("/fee-waiver/:accountId", h.removeFeeWaivers)
		txns.GET("/:id", h.getTransaction)
		txns.PUT("/:id", h.updateTransaction)
		txns.POST("/:id/reverse", h.reverseTransaction)
	}
}

// createTransaction godoc
// @Summary Process a transaction
// @Description Runs a deposit, withdrawal, internal or interbank transfer through validation, fraud scoring and the saga, then the account's automation rules
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   transaction body dto.CreateTransactionRequest true "Transaction details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} dto.ErrorResponse "Validation, balance or limit error"
// @Failure 403 {object} dto.ErrorResponse "Account blocked"
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Failure 503 {object} dto.ErrorResponse "Category service unavailable"
// @Failure 500 {object} dto.ErrorResponse "Failed to process transaction"
// @Router /transactions [post]
func (h *transactionHandler) createTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, "CreateTransaction", err)
		return
	}
	h.process(c, logger, req.MoneyMovementRequest.ToDomain(req.Type))
}

// processTyped godoc
// @Summary Process a typed transaction
// @Description Same as POST /transactions with the type taken from the path: deposit, withdrawal, internal-transfer or interbank-transfer
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   transaction body dto.MoneyMovementRequest true "Transaction details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} dto.ErrorResponse "Validation, balance or limit error"
// @Failure 403 {object} dto.ErrorResponse "Account blocked"
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to process transaction"
// @Router /transactions/deposit [post]
func (h *transactionHandler) processTyped(txType domain.TransactionType) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		var req dto.MoneyMovementRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, logger, string(txType), err)
			return
		}
		h.process(c, logger, req.ToDomain(txType))
	}
}

func (h *transactionHandler) process(c *gin.Context, logger *slog.Logger, txn domain.Transaction) {
	logger = logger.With(slog.String("type", string(txn.Type)))
	logger.Info("Received request to process transaction",
		slog.String("from_account", txn.FromAccount),
		slog.String("to_account", txn.ToAccount),
		slog.String("amount", txn.Amount.String()))

	result, err := h.transactionService.Process(c.Request.Context(), txn)
	if err != nil {
		var written *domain.Transaction
		if result != nil {
			written = result.Transaction
		}
		respondError(c, logger, err, "Failed to process transaction", written)
		return
	}

	logger.Info("Transaction processed successfully", slog.String("transaction_id", result.Transaction.TransactionID))
	c.JSON(http.StatusCreated, dto.TransactionResponse{
		Success:     true,
		Transaction: result.Transaction,
		Steps:       result.Steps,
		Automation:  result.Automation,
	})
}

// reverseTransaction godoc
// @Summary Reverse a transaction
// @Description Mirrors a completed transaction and marks the original reversed
// @Tags transactions
// @Produce  json
// @Param   id path string true "Transaction ID"
// @Success 201 {object} dto.ReversalResponse
// @Failure 404 {object} dto.ErrorResponse "Transaction not found"
// @Failure 409 {object} dto.ErrorResponse "Transaction not completed or already reversed"
// @Failure 500 {object} dto.ErrorResponse "Failed to reverse transaction"
// @Router /transactions/{id}/reverse [post]
func (h *transactionHandler) reverseTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("id")
	logger = logger.With(slog.String("transaction_id", transactionID))
	logger.Info("Received request to reverse transaction")

	result, err := h.transactionService.Reverse(c.Request.Context(), transactionID)
	if err != nil {
		var written *domain.Transaction
		if result != nil {
			written = result.ReversalTransaction
		}
		respondError(c, logger, err, "Failed to reverse transaction", written)
		return
	}

	logger.Info("Transaction reversed successfully", slog.String("reversal_id", result.ReversalTransaction.TransactionID))
	c.JSON(http.StatusCreated, dto.ReversalResponse{
		Success:             true,
		OriginalTransaction: result.OriginalTransaction,
		ReversalTransaction: result.ReversalTransaction,
		Automation:          result.Automation,
	})
}

// getTransaction godoc
// @Summary Get a transaction
// @Tags transactions
// @Produce  json
// @Param   id path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 404 {object} dto.ErrorResponse "Transaction not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to retrieve transaction"
// @Router /transactions/{id} [get]
func (h *transactionHandler) getTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("id")

	txn, err := h.transactionService.GetTransaction(c.Request.Context(), transactionID)
	if err != nil {
		respondError(c, logger.With(slog.String("transaction_id", transactionID)), err, "Failed to retrieve transaction", nil)
		return
	}
	c.JSON(http.StatusOK, dto.TransactionResponse{Success: true, Transaction: txn})
}

// listByAccount godoc
// @Summary List an account's transactions
// @Description Newest first, paginated with an opaque token
// @Tags transactions
// @Produce  json
// @Param   accountId path string true "Account ID"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid query parameters"
// @Failure 500 {object} dto.ErrorResponse "Failed to list transactions"
// @Router /transactions/account/{accountId} [get]
func (h *transactionHandler) listByAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountId")
	logger = logger.With(slog.String("account_id", accountID))

	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, logger, "ListTransactions", err)
		return
	}

	txns, next, err := h.transactionService.ListByAccount(c.Request.Context(), accountID, params.Limit, params.NextToken)
	if err != nil {
		respondError(c, logger, err, "Failed to list transactions", nil)
		return
	}
	if txns == nil {
		txns = []domain.Transaction{}
	}
	c.JSON(http.StatusOK, dto.ListTransactionsResponse{
		Success:      true,
		Count:        len(txns),
		Transactions: txns,
		NextToken:    next,
	})
}

// listSuspicious godoc
// @Summary List suspicious transactions
// @Description Transactions of an account flagged by fraud scoring
// @Tags transactions
// @Produce  json
// @Param   accountId path string true "Account ID"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 500 {object} dto.ErrorResponse "Failed to list suspicious transactions"
// @Router /transactions/suspicious/{accountId} [get]
func (h *transactionHandler) listSuspicious(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountId")

	txns, err := h.transactionService.ListSuspicious(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, logger.With(slog.String("account_id", accountID)), err, "Failed to list suspicious transactions", nil)
		return
	}
	if txns == nil {
		txns = []domain.Transaction{}
	}
	c.JSON(http.StatusOK, dto.ListTransactionsResponse{Success: true, Count: len(txns), Transactions: txns})
}

// fraudCheck godoc
// @Summary Score a transaction for fraud
// @Description Computes the fraud assessment without executing anything
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   transaction body dto.CreateTransactionRequest true "Transaction details"
// @Success 200 {object} dto.FraudCheckResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 500 {object} dto.ErrorResponse "Failed to assess transaction"
// @Router /transactions/fraud-check [post]
func (h *transactionHandler) fraudCheck(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, "FraudCheck", err)
		return
	}

	assessment, err := h.transactionService.AssessFraud(c.Request.Context(), req.MoneyMovementRequest.ToDomain(req.Type))
	if err != nil {
		respondError(c, logger, err, "Failed to assess transaction", nil)
		return
	}
	c.JSON(http.StatusOK, dto.FraudCheckResponse{Success: true, Assessment: *assessment})
}

// calculateFees godoc
// @Summary Calculate fees
// @Description Returns the fee, commission and total a transaction would incur
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   request body dto.FeeCalculationRequest true "Type and amount"
// @Success 200 {object} dto.FeeCalculationResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Router /transactions/fees/calculate [post]
func (h *transactionHandler) calculateFees(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.FeeCalculationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, "CalculateFees", err)
		return
	}
	c.JSON(http.StatusOK, dto.FeeCalculationResponse{
		Success:     true,
		Calculation: h.transactionService.CalculateFees(req.Type, req.Amount),
	})
}

// getCommissions godoc
// @Summary Commission report
// @Description Total commission of completed transactions for all, daily, monthly or a YYYY-MM month
// @Tags transactions
// @Produce  json
// @Param   period path string true "all, daily, monthly or YYYY-MM"
// @Success 200 {object} dto.CommissionResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid period"
// @Failure 500 {object} dto.ErrorResponse "Failed to compute commissions"
// @Router /transactions/commissions/{period} [get]
func (h *transactionHandler) getCommissions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	period := c.Param("period")

	report, err := h.transactionService.GetCommissions(c.Request.Context(), period)
	if err != nil {
		respondError(c, logger.With(slog.String("period", period)), err, "Failed to compute commissions", nil)
		return
	}
	c.JSON(http.StatusOK, dto.CommissionResponse{Success: true, CommissionReport: *report})
}

// getLimits godoc
// @Summary Get account limits
// @Description Used, limit and remaining amounts per limit class for today
// @Tags limits
// @Produce  json
// @Param   accountId path string true "Account ID"
// @Success 200 {object} dto.LimitsResponse
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to retrieve limits"
// @Router /transactions/limits/{accountId} [get]
func (h *transactionHandler) getLimits(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountId")

	limits, err := h.transactionService.GetLimits(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, logger.With(slog.String("account_id", accountID)), err, "Failed to retrieve limits", nil)
		return
	}
	c.JSON(http.StatusOK, dto.LimitsResponse{Success: true, Limits: limits})
}

// updateLimits godoc
// @Summary Set custom account limits
// @Description Overrides can only raise the configured limits
// @Tags limits
// @Accept  json
// @Produce  json
// @Param   accountId path string true "Account ID"
// @Param   limits body dto.UpdateLimitsRequest true "Custom limits"
// @Success 200 {object} dto.LimitsResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to update limits"
// @Router /transactions/limits/{accountId} [put]
func (h *transactionHandler) updateLimits(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountId")
	logger = logger.With(slog.String("account_id", accountID))

	var req dto.UpdateLimitsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, "UpdateLimits", err)
		return
	}

	limits, err := h.transactionService.UpdateLimits(c.Request.Context(), accountID, req.ToDomain())
	if err != nil {
		respondError(c, logger, err, "Failed to update limits", nil)
		return
	}
	logger.Info("Account limits updated")
	c.JSON(http.StatusOK, dto.LimitsResponse{Success: true, Limits: limits})
}

// updateTransaction godoc
// @Summary Update a transaction's description
// @Description Only the description can change; amounts, parties and status are immutable
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   id path string true "Transaction ID"
// @Param   request body dto.UpdateTransactionRequest true "New description"
// @Success 200 {object} dto.TransactionResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 404 {object} dto.ErrorResponse "Transaction not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to update transaction"
// @Router /transactions/{id} [put]
func (h *transactionHandler) updateTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("id")
	logger = logger.With(slog.String("transaction_id", transactionID))

	var req dto.UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, "UpdateTransaction", err)
		return
	}

	txn, err := h.transactionService.UpdateDescription(c.Request.Context(), transactionID, *req.Description)
	if err != nil {
		respondError(c, logger, err, "Failed to update transaction", nil)
		return
	}
	c.JSON(http.StatusOK, dto.TransactionResponse{Success: true, Transaction: txn})
}

// getFeeWaiver godoc
// @Summary Get an account's fee waivers
// @Tags fees
// @Produce  json
// @Param   accountId path string true "Account ID"
// @Success 200 {object} dto.FeeWaiverResponse
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to retrieve fee waivers"
// @Router /transactions/fee-waiver/{accountId} [get]
func (h *transactionHandler) getFeeWaiver(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountId")

	waiver, err := h.transactionService.GetFeeWaiver(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, logger.With(slog.String("account_id", accountID)), err, "Failed to retrieve fee waivers", nil)
		return
	}
	c.JSON(http.StatusOK, dto.FeeWaiverResponse{Success: true, FeeWaiver: *waiver})
}

// waiveFees godoc
// @Summary Waive fees for an account
// @Description Adds fee waivers. Without a body the internal transfer and withdrawal fees are waived
// @Tags fees
// @Accept  json
// @Produce  json
// @Param   accountId path string true "Account ID"
// @Param   request body dto.FeeWaiverRequest false "Fee types to waive"
// @Success 200 {object} dto.FeeWaiverResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid fee type"
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to waive fees"
// @Router /transactions/fee-waiver/{accountId} [post]
func (h *transactionHandler) waiveFees(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountId")
	logger = logger.With(slog.String("account_id", accountID))

	var req dto.FeeWaiverRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondBindError(c, logger, "WaiveFees", err)
		return
	}

	waiver, err := h.transactionService.WaiveFees(c.Request.Context(), accountID, req.Types)
	if err != nil {
		respondError(c, logger, err, "Failed to waive fees", nil)
		return
	}
	logger.Info("Fees waived", slog.Any("waived_fees", waiver.WaivedFees))
	c.JSON(http.StatusOK, dto.FeeWaiverResponse{Success: true, FeeWaiver: *waiver})
}

// removeFeeWaivers godoc
// @Summary Remove an account's fee waivers
// @Tags fees
// @Produce  json
// @Param   accountId path string true "Account ID"
// @Success 200 {object} dto.FeeWaiverResponse
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to remove fee waivers"
// @Router /transactions/fee-waiver/{accountId} [delete]
func (h *transactionHandler) removeFeeWaivers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountId")

	waiver, err := h.transactionService.RemoveFeeWaivers(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, logger.With(slog.String("account_id", accountID)), err, "Failed to remove fee waivers", nil)
		return
	}
	c.JSON(http.StatusOK, dto.FeeWaiverResponse{Success: true, FeeWaiver: *waiver})
}
