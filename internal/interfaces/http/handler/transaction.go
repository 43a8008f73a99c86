package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	appledger "github.com/hamkkebu/transaction-service/internal/application/ledger"
)

const dateLayout = "2006-01-02"

// TransactionHandler handles transaction HTTP requests
type TransactionHandler struct {
	BaseHandler
	transactions *appledger.TransactionService
	summaries    *appledger.SummaryService
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(
	transactions *appledger.TransactionService,
	summaries *appledger.SummaryService,
) *TransactionHandler {
	return &TransactionHandler{
		transactions: transactions,
		summaries:    summaries,
	}
}

// ledgerQuery binds the ledger selector shared by list and summary endpoints
type ledgerQuery struct {
	LedgerID int64 `form:"ledgerId" binding:"required,min=1"`
}

// listQuery binds the paginated list query
type listQuery struct {
	LedgerID int64  `form:"ledgerId" binding:"required,min=1"`
	Category string `form:"category"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"pageSize" binding:"omitempty,min=1,max=100"`
}

// periodQuery binds an inclusive date range query
type periodQuery struct {
	LedgerID  int64  `form:"ledgerId" binding:"required,min=1"`
	StartDate string `form:"startDate" binding:"required"`
	EndDate   string `form:"endDate" binding:"required"`
}

// Create godoc
// @ID           createTransaction
// @Summary      Create a transaction
// @Description  Record a new income or expense on a ledger the user owns
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        request body ledger.CreateTransactionRequest true "Transaction data"
// @Success      201 {object} APIResponse[ledger.TransactionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transactions [post]
func (h *TransactionHandler) Create(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req appledger.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.transactions.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// List godoc
// @ID           listTransactions
// @Summary      List transactions
// @Description  Get a paginated list of a ledger's transactions, newest first
// @Tags         transactions
// @Produce      json
// @Param        ledgerId query int true "Ledger ID"
// @Param        category query string false "Category filter"
// @Param        page query int false "Page number" default(1)
// @Param        pageSize query int false "Items per page" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]ledger.TransactionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	page, err := h.transactions.List(c.Request.Context(), userID, q.LedgerID, appledger.TransactionListFilter{
		Category: q.Category,
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// ListAll godoc
// @ID           listAllTransactions
// @Summary      List all transactions
// @Description  Get every transaction of a ledger without pagination, newest first
// @Tags         transactions
// @Produce      json
// @Param        ledgerId query int true "Ledger ID"
// @Success      200 {object} APIResponse[[]ledger.TransactionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transactions/all [get]
func (h *TransactionHandler) ListAll(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var q ledgerQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	txs, err := h.transactions.ListAll(c.Request.Context(), userID, q.LedgerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, txs)
}

// Get godoc
// @ID           getTransaction
// @Summary      Get a transaction
// @Description  Get a single transaction owned by the authenticated user
// @Tags         transactions
// @Produce      json
// @Param        id path int true "Transaction ID"
// @Success      200 {object} APIResponse[ledger.TransactionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transactions/{id} [get]
func (h *TransactionHandler) Get(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transaction ID")
		return
	}

	resp, err := h.transactions.Get(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Update godoc
// @ID           updateTransaction
// @Summary      Update a transaction
// @Description  Replace all mutable fields of a transaction
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        id path int true "Transaction ID"
// @Param        request body ledger.UpdateTransactionRequest true "Transaction data"
// @Success      200 {object} APIResponse[ledger.TransactionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transactions/{id} [put]
func (h *TransactionHandler) Update(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transaction ID")
		return
	}

	var req appledger.UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.transactions.Update(c.Request.Context(), userID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Delete godoc
// @ID           deleteTransaction
// @Summary      Delete a transaction
// @Description  Soft-delete a transaction; the row stays for audit
// @Tags         transactions
// @Produce      json
// @Param        id path int true "Transaction ID"
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transactions/{id} [delete]
func (h *TransactionHandler) Delete(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transaction ID")
		return
	}

	if err := h.transactions.Delete(c.Request.Context(), userID, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Summary godoc
// @ID           getTransactionSummary
// @Summary      Get ledger totals
// @Description  Get a ledger's lifetime income, expense and balance
// @Tags         transactions
// @Produce      json
// @Param        ledgerId query int true "Ledger ID"
// @Success      200 {object} APIResponse[ledger.SummaryResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transactions/summary [get]
func (h *TransactionHandler) Summary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var q ledgerQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	resp, err := h.summaries.Summary(c.Request.Context(), userID, q.LedgerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// DailySummary godoc
// @ID           getDailyTransactionSummary
// @Summary      Get daily totals
// @Description  Get totals for a single calendar day
// @Tags         transactions
// @Produce      json
// @Param        ledgerId query int true "Ledger ID"
// @Param        date query string true "Date (YYYY-MM-DD)"
// @Success      200 {object} APIResponse[ledger.SummaryResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transactions/daily [get]
func (h *TransactionHandler) DailySummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var q struct {
		LedgerID int64  `form:"ledgerId" binding:"required,min=1"`
		Date     string `form:"date" binding:"required"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	day, err := time.Parse(dateLayout, q.Date)
	if err != nil {
		h.BadRequest(c, "Invalid date, expected YYYY-MM-DD")
		return
	}

	resp, err := h.summaries.DailySummary(c.Request.Context(), userID, q.LedgerID, day)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// MonthlySummary godoc
// @ID           getMonthlyTransactionSummary
// @Summary      Get monthly totals
// @Description  Get a month's totals with a per-day breakdown, newest day first
// @Tags         transactions
// @Produce      json
// @Param        ledgerId query int true "Ledger ID"
// @Param        year query int true "Year"
// @Param        month query int true "Month (1-12)"
// @Success      200 {object} APIResponse[ledger.BreakdownResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transactions/monthly [get]
func (h *TransactionHandler) MonthlySummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var q struct {
		LedgerID int64 `form:"ledgerId" binding:"required,min=1"`
		Year     int   `form:"year" binding:"required,min=1970,max=9999"`
		Month    int   `form:"month" binding:"required,min=1,max=12"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	resp, err := h.summaries.MonthlySummary(c.Request.Context(), userID, q.LedgerID, q.Year, time.Month(q.Month))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// YearlySummary godoc
// @ID           getYearlyTransactionSummary
// @Summary      Get yearly totals
// @Description  Get a year's totals with a per-month breakdown in calendar order
// @Tags         transactions
// @Produce      json
// @Param        ledgerId query int true "Ledger ID"
// @Param        year query int true "Year"
// @Success      200 {object} APIResponse[ledger.BreakdownResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transactions/yearly [get]
func (h *TransactionHandler) YearlySummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var q struct {
		LedgerID int64 `form:"ledgerId" binding:"required,min=1"`
		Year     int   `form:"year" binding:"required,min=1970,max=9999"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	resp, err := h.summaries.YearlySummary(c.Request.Context(), userID, q.LedgerID, q.Year)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// PeriodSummary godoc
// @ID           getPeriodTransactionSummary
// @Summary      Get period totals
// @Description  Get totals for an arbitrary inclusive date range
// @Tags         transactions
// @Produce      json
// @Param        ledgerId query int true "Ledger ID"
// @Param        startDate query string true "Start date (YYYY-MM-DD)"
// @Param        endDate query string true "End date (YYYY-MM-DD)"
// @Success      200 {object} APIResponse[ledger.SummaryResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transactions/period [get]
func (h *TransactionHandler) PeriodSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	from, to, ledgerID, ok := h.bindPeriod(c)
	if !ok {
		return
	}

	resp, err := h.summaries.PeriodSummary(c.Request.Context(), userID, ledgerID, from, to)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListByPeriod godoc
// @ID           listTransactionsByPeriod
// @Summary      List transactions by period
// @Description  Get a ledger's transactions dated within an inclusive range, newest first
// @Tags         transactions
// @Produce      json
// @Param        ledgerId query int true "Ledger ID"
// @Param        startDate query string true "Start date (YYYY-MM-DD)"
// @Param        endDate query string true "End date (YYYY-MM-DD)"
// @Success      200 {object} APIResponse[[]ledger.TransactionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transactions/period/list [get]
func (h *TransactionHandler) ListByPeriod(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	from, to, ledgerID, ok := h.bindPeriod(c)
	if !ok {
		return
	}

	txs, err := h.transactions.ListByPeriod(c.Request.Context(), userID, ledgerID, from, to)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, txs)
}

// bindPeriod parses the shared period query. On failure it writes the
// error response and returns ok=false.
func (h *TransactionHandler) bindPeriod(c *gin.Context) (from, to time.Time, ledgerID int64, ok bool) {
	var q periodQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	from, err := time.Parse(dateLayout, q.StartDate)
	if err != nil {
		h.BadRequest(c, "Invalid startDate, expected YYYY-MM-DD")
		return
	}
	to, err = time.Parse(dateLayout, q.EndDate)
	if err != nil {
		h.BadRequest(c, "Invalid endDate, expected YYYY-MM-DD")
		return
	}
	if to.Before(from) {
		h.BadRequest(c, "endDate must not be before startDate")
		return
	}

	return from, to, q.LedgerID, true
}

// RegisterRoutes registers all transaction routes
func (h *TransactionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	transactions := rg.Group("/transactions")
	{
		transactions.POST("", h.Create)
		transactions.GET("", h.List)
		transactions.GET("/all", h.ListAll)
		transactions.GET("/summary", h.Summary)
		transactions.GET("/daily", h.DailySummary)
		transactions.GET("/monthly", h.MonthlySummary)
		transactions.GET("/yearly", h.YearlySummary)
		transactions.GET("/period", h.PeriodSummary)
		transactions.GET("/period/list", h.ListByPeriod)
		transactions.GET("/:id", h.Get)
		transactions.PUT("/:id", h.Update)
		transactions.DELETE("/:id", h.Delete)
	}
}

func parseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}
