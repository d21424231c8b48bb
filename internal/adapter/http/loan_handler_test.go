package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/labstack/echo/v4"

	domain "loan-servicing-api/internal/domain/loan"
	"loan-servicing-api/internal/testutil/storemock"
	loanuc "loan-servicing-api/internal/usecase/loan"
	paymentuc "loan-servicing-api/internal/usecase/payment"
)

// -------- helpers --------

func newEchoWithValidator() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func mustJSON(v any) *bytes.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func date(s string) civil.Date {
	d, err := civil.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func fixedToday(s string) func() civil.Date {
	return func() civil.Date { return date(s) }
}

func seed() *domain.Dataset {
	return &domain.Dataset{
		Loans: []domain.Loan{
			{ID: 1, Name: "Tom's Loan", InterestRate: 5.0, Principal: 10000, DueDate: date("2025-03-01"), Status: domain.StatusApproved},
			{ID: 2, Name: "Chris Wailaka", InterestRate: 3.5, Principal: 500000, DueDate: date("2025-06-01"), Status: domain.StatusDraft},
		},
		Payments: []domain.LoanPayment{
			{ID: 1, LoanID: 1, PaymentDate: date("2024-03-04"), Amount: 100, Status: domain.StatusOnTime},
		},
	}
}

func newHandler(store domain.Store, today func() civil.Date) *LoanHandler {
	return NewLoanHandler(loanuc.NewUsecase(store), paymentuc.NewUsecase(store, today))
}

// -------- tests --------

func TestListLoans_Combined(t *testing.T) {
	e := newEchoWithValidator()
	store, _ := storemock.Fixed(seed())
	h := newHandler(store, nil)

	req := httptest.NewRequest(stdhttp.MethodGet, "/loans?combined=true", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ListLoans(c); err != nil {
		t.Fatalf("ListLoans error: %v", err)
	}
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var rows []struct {
		ID          int     `json:"id"`
		Status      string  `json:"status"`
		PaymentDate *string `json:"payment_date"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].Status != domain.StatusOnTime || rows[0].PaymentDate == nil || *rows[0].PaymentDate != "2024-03-04" {
		t.Fatalf("loan 1 row: %+v", rows[0])
	}
	if rows[1].Status != domain.StatusUnpaid || rows[1].PaymentDate != nil {
		t.Fatalf("loan 2 row: %+v", rows[1])
	}
}

func TestListLoans_DetailedWithNameFilter(t *testing.T) {
	e := newEchoWithValidator()
	store, _ := storemock.Fixed(seed())
	h := newHandler(store, nil)

	req := httptest.NewRequest(stdhttp.MethodGet, "/loans?name=chris", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ListLoans(c); err != nil {
		t.Fatalf("ListLoans error: %v", err)
	}
	var rows []struct {
		ID       int                  `json:"id"`
		Status   string               `json:"status"`
		Payments []domain.LoanPayment `json:"payments"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != 2 {
		t.Fatalf("rows: %+v", rows)
	}
	// Detailed mode keeps the stored status and nests payments.
	if rows[0].Status != domain.StatusDraft || rows[0].Payments == nil {
		t.Fatalf("row: %+v", rows[0])
	}
}

func TestListLoans_BadFilterValue(t *testing.T) {
	e := newEchoWithValidator()
	store, _ := storemock.Fixed(seed())
	h := newHandler(store, nil)

	req := httptest.NewRequest(stdhttp.MethodGet, "/loans?id=abc", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ListLoans(c); err != nil {
		t.Fatalf("ListLoans error: %v", err)
	}
	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestListLoans_StoreFailureIsGenericError(t *testing.T) {
	e := newEchoWithValidator()
	store := &storemock.Store{
		LoadFn: func(ctx context.Context) (*domain.Dataset, error) {
			return nil, errors.New("disk exploded")
		},
	}
	h := newHandler(store, nil)

	req := httptest.NewRequest(stdhttp.MethodGet, "/loans", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ListLoans(c); err != nil {
		t.Fatalf("ListLoans error: %v", err)
	}
	if rec.Code != stdhttp.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var er ErrorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &er)
	if er.Error != "Failed to retrieve loans" {
		t.Fatalf("error = %q", er.Error)
	}
	if strings.Contains(rec.Body.String(), "disk exploded") {
		t.Fatalf("internal detail leaked: %s", rec.Body.String())
	}
}

func TestListPayments_AnnotatesLoan(t *testing.T) {
	e := newEchoWithValidator()
	store, _ := storemock.Fixed(seed())
	h := newHandler(store, nil)

	req := httptest.NewRequest(stdhttp.MethodGet, "/loan_payments", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ListPayments(c); err != nil {
		t.Fatalf("ListPayments error: %v", err)
	}
	var rows []struct {
		ID   int          `json:"id"`
		Loan *domain.Loan `json:"loan"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if len(rows) != 1 || rows[0].Loan == nil || rows[0].Loan.Name != "Tom's Loan" {
		t.Fatalf("rows: %+v", rows)
	}
}

func TestMakePayment_Success(t *testing.T) {
	e := newEchoWithValidator()
	store, saved := storemock.Fixed(seed())
	h := newHandler(store, fixedToday("2025-03-01"))

	req := httptest.NewRequest(stdhttp.MethodPost, "/make_payment", mustJSON(map[string]any{"loan_id": 1, "amount": 500}))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.MakePayment(c); err != nil {
		t.Fatalf("MakePayment error: %v", err)
	}
	if rec.Code != stdhttp.StatusCreated {
		t.Fatalf("status = %d, want 201, body=%s", rec.Code, rec.Body.String())
	}
	var got domain.LoanPayment
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if got.ID != 2 || got.LoanID != 1 || got.Amount != 500 {
		t.Fatalf("payment: %+v", got)
	}
	if got.Status != domain.StatusOnTime || got.PaymentDate != date("2025-03-01") {
		t.Fatalf("payment: %+v", got)
	}
	if *saved == nil {
		t.Fatalf("dataset not persisted")
	}
}

func TestMakePayment_BindError(t *testing.T) {
	e := newEchoWithValidator()
	store, _ := storemock.Fixed(seed())
	h := newHandler(store, nil)

	req := httptest.NewRequest(stdhttp.MethodPost, "/make_payment", strings.NewReader(`{"loan_id":`)) // broken JSON
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.MakePayment(c); err != nil {
		t.Fatalf("MakePayment error: %v", err)
	}
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestMakePayment_MissingOrZeroAmount(t *testing.T) {
	for _, body := range []map[string]any{
		{"loan_id": 1},
		{"loan_id": 1, "amount": 0},
		{"loan_id": 1, "amount": -5},
	} {
		e := newEchoWithValidator()
		store, saved := storemock.Fixed(seed())
		h := newHandler(store, fixedToday("2025-03-01"))

		req := httptest.NewRequest(stdhttp.MethodPost, "/make_payment", mustJSON(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		if err := h.MakePayment(c); err != nil {
			t.Fatalf("MakePayment error: %v", err)
		}
		if rec.Code != stdhttp.StatusUnprocessableEntity {
			t.Fatalf("body %v: status = %d, want 422", body, rec.Code)
		}
		var er ErrorResponse
		_ = json.Unmarshal(rec.Body.Bytes(), &er)
		if er.Error != "validation failed" {
			t.Fatalf("error = %q", er.Error)
		}
		if *saved != nil {
			t.Fatalf("body %v: dataset persisted on validation failure", body)
		}
	}
}

func TestMakePayment_LoanNotFound(t *testing.T) {
	e := newEchoWithValidator()
	store, _ := storemock.Fixed(seed())
	h := newHandler(store, fixedToday("2025-03-01"))

	req := httptest.NewRequest(stdhttp.MethodPost, "/make_payment", mustJSON(map[string]any{"loan_id": 999, "amount": 10}))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.MakePayment(c); err != nil {
		t.Fatalf("MakePayment error: %v", err)
	}
	if rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestUpdateLoan_Success(t *testing.T) {
	e := newEchoWithValidator()
	store, saved := storemock.Fixed(seed())
	h := newHandler(store, nil)

	req := httptest.NewRequest(stdhttp.MethodPut, "/loans/2", mustJSON(map[string]any{"name": "Chris W.", "due_date": "2025-12-01"}))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("loan_id")
	c.SetParamValues("2")

	if err := h.UpdateLoan(c); err != nil {
		t.Fatalf("UpdateLoan error: %v", err)
	}
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", rec.Code, rec.Body.String())
	}
	var got domain.Loan
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if got.Name != "Chris W." || got.DueDate != date("2025-12-01") {
		t.Fatalf("loan: %+v", got)
	}
	if *saved == nil {
		t.Fatalf("dataset not persisted")
	}
}

func TestUpdateLoan_ApprovedLoanRejected(t *testing.T) {
	e := newEchoWithValidator()
	store, saved := storemock.Fixed(seed())
	h := newHandler(store, nil)

	req := httptest.NewRequest(stdhttp.MethodPut, "/loans/1", mustJSON(map[string]any{"name": "nope"}))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("loan_id")
	c.SetParamValues("1")

	if err := h.UpdateLoan(c); err != nil {
		t.Fatalf("UpdateLoan error: %v", err)
	}
	if rec.Code != stdhttp.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if *saved != nil {
		t.Fatalf("dataset persisted on invalid-state failure")
	}
}

func TestUpdateLoan_BadDueDate(t *testing.T) {
	e := newEchoWithValidator()
	store, _ := storemock.Fixed(seed())
	h := newHandler(store, nil)

	req := httptest.NewRequest(stdhttp.MethodPut, "/loans/2", mustJSON(map[string]any{"due_date": "01-12-2025"}))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("loan_id")
	c.SetParamValues("2")

	if err := h.UpdateLoan(c); err != nil {
		t.Fatalf("UpdateLoan error: %v", err)
	}
	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var er ErrorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &er)
	if !containsFieldMsg(er.Details, "DueDate", "YYYY-MM-DD") {
		t.Fatalf("missing date detail: %+v", er.Details)
	}
}

func TestDeleteLoan_Success(t *testing.T) {
	e := newEchoWithValidator()
	store, saved := storemock.Fixed(seed())
	h := newHandler(store, nil)

	req := httptest.NewRequest(stdhttp.MethodDelete, "/loans/2", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("loan_id")
	c.SetParamValues("2")

	if err := h.DeleteLoan(c); err != nil {
		t.Fatalf("DeleteLoan error: %v", err)
	}
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got domain.Loan
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if got.ID != 2 {
		t.Fatalf("removed loan: %+v", got)
	}
	if *saved == nil || len((*saved).Loans) != 1 {
		t.Fatalf("delete not persisted")
	}
}

func TestDeleteLoan_NotFoundAndBadParam(t *testing.T) {
	e := newEchoWithValidator()
	store, _ := storemock.Fixed(seed())
	h := newHandler(store, nil)

	req := httptest.NewRequest(stdhttp.MethodDelete, "/loans/404", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("loan_id")
	c.SetParamValues("404")
	if err := h.DeleteLoan(c); err != nil {
		t.Fatalf("DeleteLoan error: %v", err)
	}
	if rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(stdhttp.MethodDelete, "/loans/xyz", nil), rec)
	c.SetParamNames("loan_id")
	c.SetParamValues("xyz")
	if err := h.DeleteLoan(c); err != nil {
		t.Fatalf("DeleteLoan error: %v", err)
	}
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
