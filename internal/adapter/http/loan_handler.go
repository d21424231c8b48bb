package http

import (
	"net/http"
	"strconv"

	"cloud.google.com/go/civil"
	"github.com/labstack/echo/v4"

	domain "loan-servicing-api/internal/domain/loan"
	loanuc "loan-servicing-api/internal/usecase/loan"
	paymentuc "loan-servicing-api/internal/usecase/payment"
)

// LoanHandler serves the REST surface. Semantics mirror the GraphQL surface
// exactly; only the transport differs.
type LoanHandler struct {
	queries   *loanuc.Usecase
	mutations *paymentuc.Usecase
}

func NewLoanHandler(q *loanuc.Usecase, m *paymentuc.Usecase) *LoanHandler {
	return &LoanHandler{queries: q, mutations: m}
}

// ListLoans handles GET /loans?combined=&id=&name=&due_date=.
func (h *LoanHandler) ListLoans(c echo.Context) error {
	combined := false
	if raw := c.QueryParam("combined"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
				Error:   "validation failed",
				Details: []FieldError{{Field: "combined", Message: "must be a boolean"}},
			})
		}
		combined = v
	}

	f, ferr := loanFilterFromQuery(c)
	if ferr != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: []FieldError{*ferr}})
	}

	if combined {
		rows, err := h.queries.ListCombined(c.Request().Context(), f)
		if err != nil {
			return writeDomainError(c, err, "Failed to retrieve loans")
		}
		return c.JSON(http.StatusOK, rows)
	}
	rows, err := h.queries.ListDetailed(c.Request().Context(), f)
	if err != nil {
		return writeDomainError(c, err, "Failed to retrieve loans")
	}
	return c.JSON(http.StatusOK, rows)
}

// ListPayments handles GET /loan_payments?id=&status=&loan_id=.
func (h *LoanHandler) ListPayments(c echo.Context) error {
	f, ferr := paymentFilterFromQuery(c)
	if ferr != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: []FieldError{*ferr}})
	}
	rows, err := h.queries.ListPayments(c.Request().Context(), f)
	if err != nil {
		return writeDomainError(c, err, "Failed to retrieve loan payments")
	}
	return c.JSON(http.StatusOK, rows)
}

type makePaymentReq struct {
	LoanID int     `json:"loan_id" validate:"required,gt=0"`
	Amount float64 `json:"amount" validate:"required,gt=0,dec2"`
}

// MakePayment handles POST /make_payment. Amount is required and positive on
// this surface; the GraphQL mutation is the amount-less variant.
func (h *LoanHandler) MakePayment(c echo.Context) error {
	var req makePaymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	p, err := h.mutations.AddPayment(c.Request().Context(), req.LoanID, req.Amount)
	if err != nil {
		return writeDomainError(c, err, "Failed to add loan payment")
	}
	return c.JSON(http.StatusCreated, p)
}

type updateLoanReq struct {
	Name    *string `json:"name" validate:"omitempty,min=1"`
	DueDate *string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateLoan handles PUT /loans/:loan_id with a partial body.
func (h *LoanHandler) UpdateLoan(c echo.Context) error {
	loanID, err := strconv.Atoi(c.Param("loan_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid loan_id path param"})
	}
	var req updateLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}

	in := paymentuc.UpdateLoanInput{Name: req.Name}
	if req.DueDate != nil {
		due, perr := civil.ParseDate(*req.DueDate)
		if perr != nil {
			return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
				Error:   "validation failed",
				Details: []FieldError{{Field: "due_date", Message: "must be a YYYY-MM-DD date"}},
			})
		}
		in.DueDate = &due
	}

	l, err := h.mutations.UpdateLoan(c.Request().Context(), loanID, in)
	if err != nil {
		return writeDomainError(c, err, "Failed to update loan")
	}
	return c.JSON(http.StatusOK, l)
}

// DeleteLoan handles DELETE /loans/:loan_id and returns the removed loan.
func (h *LoanHandler) DeleteLoan(c echo.Context) error {
	loanID, err := strconv.Atoi(c.Param("loan_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid loan_id path param"})
	}
	l, err := h.mutations.DeleteLoan(c.Request().Context(), loanID)
	if err != nil {
		return writeDomainError(c, err, "Failed to delete loan")
	}
	return c.JSON(http.StatusOK, l)
}

// ---- query-param filters ----

func loanFilterFromQuery(c echo.Context) (*domain.LoanFilter, *FieldError) {
	var f domain.LoanFilter
	any := false
	if raw := c.QueryParam("id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return nil, &FieldError{Field: "id", Message: "must be an integer"}
		}
		f.ID = &id
		any = true
	}
	if raw := c.QueryParam("name"); raw != "" {
		name := raw
		f.Name = &name
		any = true
	}
	if raw := c.QueryParam("due_date"); raw != "" {
		due, err := civil.ParseDate(raw)
		if err != nil {
			return nil, &FieldError{Field: "due_date", Message: "must be a YYYY-MM-DD date"}
		}
		f.DueDate = &due
		any = true
	}
	if !any {
		return nil, nil
	}
	return &f, nil
}

func paymentFilterFromQuery(c echo.Context) (*domain.PaymentFilter, *FieldError) {
	var f domain.PaymentFilter
	any := false
	if raw := c.QueryParam("id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return nil, &FieldError{Field: "id", Message: "must be an integer"}
		}
		f.ID = &id
		any = true
	}
	if raw := c.QueryParam("status"); raw != "" {
		status := raw
		f.Status = &status
		any = true
	}
	if raw := c.QueryParam("loan_id"); raw != "" {
		loanID, err := strconv.Atoi(raw)
		if err != nil {
			return nil, &FieldError{Field: "loan_id", Message: "must be an integer"}
		}
		f.LoanID = &loanID
		any = true
	}
	if !any {
		return nil, nil
	}
	return &f, nil
}
