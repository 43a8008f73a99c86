package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appledger "github.com/hamkkebu/transaction-service/internal/application/ledger"
	"github.com/hamkkebu/transaction-service/internal/domain/ledger"
	"github.com/hamkkebu/transaction-service/internal/domain/shared"
	"github.com/hamkkebu/transaction-service/internal/interfaces/http/middleware"
)

// memLedgerRepo is an in-memory SyncedLedgerRepository
type memLedgerRepo struct {
	ledgers map[int64]*ledger.SyncedLedger
}

func newMemLedgerRepo() *memLedgerRepo {
	return &memLedgerRepo{ledgers: make(map[int64]*ledger.SyncedLedger)}
}

func (r *memLedgerRepo) Save(_ context.Context, l *ledger.SyncedLedger) error {
	r.ledgers[l.ID] = l
	return nil
}

func (r *memLedgerRepo) FindByID(_ context.Context, id int64) (*ledger.SyncedLedger, error) {
	return r.ledgers[id], nil
}

// memTxRepo is an in-memory TransactionRepository computing queries and
// aggregates from its stored rows
type memTxRepo struct {
	txs    map[int64]*ledger.Transaction
	nextID int64
}

func newMemTxRepo() *memTxRepo {
	return &memTxRepo{txs: make(map[int64]*ledger.Transaction)}
}

func (r *memTxRepo) Save(_ context.Context, tx *ledger.Transaction) error {
	r.nextID++
	tx.ID = r.nextID
	r.txs[tx.ID] = tx
	return nil
}

func (r *memTxRepo) Update(_ context.Context, tx *ledger.Transaction) error {
	r.txs[tx.ID] = tx
	return nil
}

func (r *memTxRepo) FindByID(_ context.Context, id int64) (*ledger.Transaction, error) {
	tx, ok := r.txs[id]
	if !ok || tx.IsDeleted {
		return nil, shared.ErrNotFound
	}
	return tx, nil
}

func (r *memTxRepo) live(ledgerID int64) []ledger.Transaction {
	var result []ledger.Transaction
	for _, tx := range r.txs {
		if tx.LedgerID == ledgerID && !tx.IsDeleted {
			result = append(result, *tx)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].TransactionDate.Equal(result[j].TransactionDate) {
			return result[i].TransactionDate.After(result[j].TransactionDate)
		}
		return result[i].ID > result[j].ID
	})
	return result
}

func (r *memTxRepo) FindByLedger(_ context.Context, ledgerID int64, filter shared.Filter) (shared.Paginated[ledger.Transaction], error) {
	all := r.live(ledgerID)
	if category, ok := filter.Filters["category"]; ok {
		var filtered []ledger.Transaction
		for _, tx := range all {
			if tx.Category == category {
				filtered = append(filtered, tx)
			}
		}
		all = filtered
	}
	total := int64(len(all))
	start := (filter.Page - 1) * filter.PageSize
	if start > len(all) {
		start = len(all)
	}
	end := start + filter.PageSize
	if end > len(all) {
		end = len(all)
	}
	return shared.NewPaginated(all[start:end], total, filter.Page, filter.PageSize), nil
}

func (r *memTxRepo) FindAllByLedger(_ context.Context, ledgerID int64) ([]ledger.Transaction, error) {
	return r.live(ledgerID), nil
}

func (r *memTxRepo) FindByLedgerAndPeriod(_ context.Context, ledgerID int64, from, to time.Time) ([]ledger.Transaction, error) {
	var result []ledger.Transaction
	for _, tx := range r.live(ledgerID) {
		if !tx.TransactionDate.Before(from) && !tx.TransactionDate.After(to) {
			result = append(result, tx)
		}
	}
	return result, nil
}

func (r *memTxRepo) ExistsByLedgerAndUser(_ context.Context, ledgerID, userID int64) (bool, error) {
	for _, tx := range r.txs {
		if tx.LedgerID == ledgerID && tx.UserID == userID && !tx.IsDeleted {
			return true, nil
		}
	}
	return false, nil
}

func (r *memTxRepo) ExistsByLedger(_ context.Context, ledgerID int64) (bool, error) {
	return len(r.live(ledgerID)) > 0, nil
}

func memSum(txs []ledger.Transaction) *ledger.Totals {
	totals := &ledger.Totals{}
	for _, tx := range txs {
		if tx.Type == ledger.TransactionTypeIncome {
			totals.Income = totals.Income.Add(tx.Amount)
		} else {
			totals.Expense = totals.Expense.Add(tx.Amount)
		}
		totals.Count++
	}
	return totals
}

func (r *memTxRepo) Totals(_ context.Context, ledgerID int64) (*ledger.Totals, error) {
	return memSum(r.live(ledgerID)), nil
}

func (r *memTxRepo) TotalsBetween(ctx context.Context, ledgerID int64, from, to time.Time) (*ledger.Totals, error) {
	txs, _ := r.FindByLedgerAndPeriod(ctx, ledgerID, from, to)
	return memSum(txs), nil
}

func (r *memTxRepo) DailyTotals(ctx context.Context, ledgerID int64, from, to time.Time) ([]ledger.DayTotals, error) {
	txs, _ := r.FindByLedgerAndPeriod(ctx, ledgerID, from, to)
	byDay := make(map[time.Time][]ledger.Transaction)
	for _, tx := range txs {
		d := tx.TransactionDate
		day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
		byDay[day] = append(byDay[day], tx)
	}
	days := make([]time.Time, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	result := make([]ledger.DayTotals, 0, len(days))
	for _, day := range days {
		result = append(result, ledger.DayTotals{Day: day, Totals: *memSum(byDay[day])})
	}
	return result, nil
}

func (r *memTxRepo) MonthlyTotals(ctx context.Context, ledgerID int64, year int) ([]ledger.MonthTotals, error) {
	var result []ledger.MonthTotals
	for month := time.January; month <= time.December; month++ {
		first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
		last := first.AddDate(0, 1, -1)
		txs, _ := r.FindByLedgerAndPeriod(ctx, ledgerID, first, last)
		if len(txs) == 0 {
			continue
		}
		result = append(result, ledger.MonthTotals{Year: year, Month: month, Totals: *memSum(txs)})
	}
	return result, nil
}

// transactionTestEnv wires a handler with in-memory repositories behind a
// test router that authenticates requests via the X-Test-User header
type transactionTestEnv struct {
	router  *gin.Engine
	txRepo  *memTxRepo
	ledgers *memLedgerRepo
}

func newTransactionTestEnv(t *testing.T) *transactionTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	txRepo := newMemTxRepo()
	ledgers := newMemLedgerRepo()
	access := appledger.NewAccessResolver(ledgers, txRepo, zap.NewNop())
	txService := appledger.NewTransactionService(txRepo, access, zap.NewNop())
	summaryService := appledger.NewSummaryService(txRepo, access, zap.NewNop())
	h := NewTransactionHandler(txService, summaryService)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if id := c.GetHeader("X-Test-User"); id != "" {
			userID, err := parseID(id)
			require.NoError(t, err)
			c.Set(middleware.JWTUserIDKey, userID)
		}
		c.Next()
	})
	api := r.Group("/api/v1")
	h.RegisterRoutes(api)

	return &transactionTestEnv{router: r, txRepo: txRepo, ledgers: ledgers}
}

func (e *transactionTestEnv) ownLedger(ledgerID, ownerID int64) {
	e.ledgers.ledgers[ledgerID] = ledger.NewSyncedLedger(ledgerID, ownerID, "household", "", "KRW", false)
}

func (e *transactionTestEnv) seed(t *testing.T, ledgerID, userID int64, txType ledger.TransactionType, amount string, txDate time.Time) *ledger.Transaction {
	t.Helper()
	tx, err := ledger.NewTransaction(ledgerID, userID, txType, decimal.RequireFromString(amount), "seed", "food", txDate, "")
	require.NoError(t, err)
	require.NoError(t, e.txRepo.Save(context.Background(), tx))
	return tx
}

func (e *transactionTestEnv) do(method, path, user string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func createBody() map[string]any {
	return map[string]any{
		"ledger_id":        1,
		"type":             "EXPENSE",
		"amount":           "12000",
		"description":      "lunch",
		"category":         "food",
		"transaction_date": "2025-03-10T00:00:00Z",
	}
}

func TestTransactionHandler_Create(t *testing.T) {
	env := newTransactionTestEnv(t)
	env.ownLedger(1, 7)

	w := env.do(http.MethodPost, "/api/v1/transactions", "7", createBody())

	assert.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]any)
	assert.Equal(t, "EXPENSE", data["type"])
	assert.Equal(t, "12000", data["amount"])
}

func TestTransactionHandler_Create_Unauthenticated(t *testing.T) {
	env := newTransactionTestEnv(t)
	env.ownLedger(1, 7)

	w := env.do(http.MethodPost, "/api/v1/transactions", "", createBody())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTransactionHandler_Create_InvalidBody(t *testing.T) {
	env := newTransactionTestEnv(t)
	env.ownLedger(1, 7)

	body := createBody()
	body["type"] = "TRANSFER"
	w := env.do(http.MethodPost, "/api/v1/transactions", "7", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTransactionHandler_Create_ForeignLedger(t *testing.T) {
	env := newTransactionTestEnv(t)
	env.ownLedger(1, 9)

	w := env.do(http.MethodPost, "/api/v1/transactions", "7", createBody())
	assert.Equal(t, http.StatusForbidden, w.Code)
	body := decodeBody(t, w)
	errInfo := body["error"].(map[string]any)
	assert.Equal(t, "ERR_FORBIDDEN", errInfo["code"])
}

func TestTransactionHandler_Get(t *testing.T) {
	env := newTransactionTestEnv(t)
	env.ownLedger(1, 7)
	tx := env.seed(t, 1, 7, ledger.TransactionTypeIncome, "50000", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))

	w := env.do(http.MethodGet, "/api/v1/transactions/1", "7", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, float64(tx.ID), data["id"])

	// Another user's read must look like the row does not exist.
	w = env.do(http.MethodGet, "/api/v1/transactions/1", "9", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTransactionHandler_Get_InvalidID(t *testing.T) {
	env := newTransactionTestEnv(t)

	w := env.do(http.MethodGet, "/api/v1/transactions/abc", "7", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTransactionHandler_Update(t *testing.T) {
	env := newTransactionTestEnv(t)
	env.ownLedger(1, 7)
	env.seed(t, 1, 7, ledger.TransactionTypeExpense, "12000", time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))

	w := env.do(http.MethodPut, "/api/v1/transactions/1", "7", map[string]any{
		"type":             "INCOME",
		"amount":           "30000",
		"description":      "refund",
		"transaction_date": "2025-03-11T00:00:00Z",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, "INCOME", data["type"])
	assert.Equal(t, "30000", data["amount"])
}

func TestTransactionHandler_Delete(t *testing.T) {
	env := newTransactionTestEnv(t)
	env.ownLedger(1, 7)
	env.seed(t, 1, 7, ledger.TransactionTypeExpense, "12000", time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))

	w := env.do(http.MethodDelete, "/api/v1/transactions/1", "7", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(http.MethodGet, "/api/v1/transactions/1", "7", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTransactionHandler_List(t *testing.T) {
	env := newTransactionTestEnv(t)
	env.ownLedger(1, 7)
	env.seed(t, 1, 7, ledger.TransactionTypeExpense, "1000", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	env.seed(t, 1, 7, ledger.TransactionTypeExpense, "2000", time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC))

	w := env.do(http.MethodGet, "/api/v1/transactions?ledgerId=1", "7", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	meta := body["meta"].(map[string]any)
	assert.Equal(t, float64(2), meta["total"])
	items := body["data"].([]any)
	require.Len(t, items, 2)
	first := items[0].(map[string]any)
	assert.Equal(t, "2000", first["amount"])
}

func TestTransactionHandler_List_MissingLedgerID(t *testing.T) {
	env := newTransactionTestEnv(t)

	w := env.do(http.MethodGet, "/api/v1/transactions", "7", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTransactionHandler_ListAll(t *testing.T) {
	env := newTransactionTestEnv(t)
	env.ownLedger(1, 7)
	for day := 1; day <= 3; day++ {
		env.seed(t, 1, 7, ledger.TransactionTypeExpense, "1000", time.Date(2025, 3, day, 0, 0, 0, 0, time.UTC))
	}

	w := env.do(http.MethodGet, "/api/v1/transactions/all?ledgerId=1", "7", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	items := decodeBody(t, w)["data"].([]any)
	assert.Len(t, items, 3)
}

func TestTransactionHandler_Summary(t *testing.T) {
	env := newTransactionTestEnv(t)
	env.ownLedger(1, 7)
	env.seed(t, 1, 7, ledger.TransactionTypeIncome, "50000", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	env.seed(t, 1, 7, ledger.TransactionTypeExpense, "20000", time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC))

	w := env.do(http.MethodGet, "/api/v1/transactions/summary?ledgerId=1", "7", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, "50000", data["income"])
	assert.Equal(t, "20000", data["expense"])
	assert.Equal(t, "30000", data["balance"])
}

func TestTransactionHandler_DailySummary_BadDate(t *testing.T) {
	env := newTransactionTestEnv(t)
	env.ownLedger(1, 7)

	w := env.do(http.MethodGet, "/api/v1/transactions/daily?ledgerId=1&date=03-10-2025", "7", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTransactionHandler_MonthlySummary(t *testing.T) {
	env := newTransactionTestEnv(t)
	env.ownLedger(1, 7)
	env.seed(t, 1, 7, ledger.TransactionTypeExpense, "3000", time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC))
	env.seed(t, 1, 7, ledger.TransactionTypeIncome, "50000", time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC))

	w := env.do(http.MethodGet, "/api/v1/transactions/monthly?ledgerId=1&year=2025&month=3", "7", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]any)
	details := data["details"].([]any)
	require.Len(t, details, 2)
	first := details[0].(map[string]any)
	assert.Equal(t, "2025-03-20", first["period"])
}

func TestTransactionHandler_YearlySummary(t *testing.T) {
	env := newTransactionTestEnv(t)
	env.ownLedger(1, 7)
	env.seed(t, 1, 7, ledger.TransactionTypeIncome, "10000", time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC))
	env.seed(t, 1, 7, ledger.TransactionTypeExpense, "4000", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))

	w := env.do(http.MethodGet, "/api/v1/transactions/yearly?ledgerId=1&year=2025", "7", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]any)
	details := data["details"].([]any)
	require.Len(t, details, 2)
	assert.Equal(t, "2025-01", details[0].(map[string]any)["period"])
	assert.Equal(t, "2025-06", details[1].(map[string]any)["period"])
}

func TestTransactionHandler_PeriodSummary(t *testing.T) {
	env := newTransactionTestEnv(t)
	env.ownLedger(1, 7)
	env.seed(t, 1, 7, ledger.TransactionTypeExpense, "1000", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	env.seed(t, 1, 7, ledger.TransactionTypeExpense, "2000", time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC))

	w := env.do(http.MethodGet, "/api/v1/transactions/period?ledgerId=1&startDate=2025-03-01&endDate=2025-03-15", "7", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, "1000", data["expense"])
}

func TestTransactionHandler_Period_InvertedRange(t *testing.T) {
	env := newTransactionTestEnv(t)
	env.ownLedger(1, 7)

	w := env.do(http.MethodGet, "/api/v1/transactions/period?ledgerId=1&startDate=2025-03-15&endDate=2025-03-01", "7", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTransactionHandler_ListByPeriod(t *testing.T) {
	env := newTransactionTestEnv(t)
	env.ownLedger(1, 7)
	env.seed(t, 1, 7, ledger.TransactionTypeExpense, "1000", time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC))
	env.seed(t, 1, 7, ledger.TransactionTypeExpense, "2000", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	env.seed(t, 1, 7, ledger.TransactionTypeExpense, "3000", time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC))

	w := env.do(http.MethodGet, "/api/v1/transactions/period/list?ledgerId=1&startDate=2025-03-01&endDate=2025-03-31", "7", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	items := decodeBody(t, w)["data"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, "3000", items[0].(map[string]any)["amount"])
}
