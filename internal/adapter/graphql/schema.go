package graphql

import (
	"errors"
	"log"

	"cloud.google.com/go/civil"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"

	domain "loan-servicing-api/internal/domain/loan"
	loanuc "loan-servicing-api/internal/usecase/loan"
	paymentuc "loan-servicing-api/internal/usecase/payment"
)

// Generic, client-facing messages. Internal detail is logged, never returned.
var (
	errRetrieveLoans    = errors.New("Failed to retrieve loans")
	errRetrievePayments = errors.New("Failed to retrieve loan payments")
	errAddPayment       = errors.New("Failed to add loan payment")
	errUpdateLoan       = errors.New("Failed to update loan")
	errDeleteLoan       = errors.New("Failed to delete loan")
)

// loanView is the resolver source for the Loan type. PaymentDate is set only
// by combined mode, Payments only by detailed mode; the unused field resolves
// to null.
type loanView struct {
	ID           int
	Name         string
	InterestRate float64
	Principal    int64
	DueDate      civil.Date
	Status       string
	PaymentDate  *civil.Date
	Payments     []paymentView
}

type paymentView struct {
	ID          int
	LoanID      int
	PaymentDate civil.Date
	Amount      float64
	Status      string
	Loan        *loanView
}

func viewFromLoan(l domain.Loan) loanView {
	return loanView{
		ID:           l.ID,
		Name:         l.Name,
		InterestRate: l.InterestRate,
		Principal:    l.Principal,
		DueDate:      l.DueDate,
		Status:       l.Status,
	}
}

func viewFromPayment(p domain.LoanPayment) paymentView {
	return paymentView{
		ID:          p.ID,
		LoanID:      p.LoanID,
		PaymentDate: p.PaymentDate,
		Amount:      p.Amount,
		Status:      p.Status,
	}
}

// dateScalar carries calendar dates as YYYY-MM-DD strings on the wire.
var dateScalar = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "Date",
	Description: "Calendar date in YYYY-MM-DD format",
	Serialize: func(value interface{}) interface{} {
		switch v := value.(type) {
		case civil.Date:
			return v.String()
		case *civil.Date:
			if v == nil {
				return nil
			}
			return v.String()
		case string:
			return v
		}
		return nil
	},
	ParseValue: func(value interface{}) interface{} {
		s, ok := value.(string)
		if !ok {
			return nil
		}
		d, err := civil.ParseDate(s)
		if err != nil {
			return nil
		}
		return d
	},
	ParseLiteral: func(valueAST ast.Value) interface{} {
		sv, ok := valueAST.(*ast.StringValue)
		if !ok {
			return nil
		}
		d, err := civil.ParseDate(sv.Value)
		if err != nil {
			return nil
		}
		return d
	},
})

func loanSource(p graphql.ResolveParams) (loanView, bool) {
	v, ok := p.Source.(loanView)
	return v, ok
}

func paymentSource(p graphql.ResolveParams) (paymentView, bool) {
	v, ok := p.Source.(paymentView)
	return v, ok
}

// buildSchema wires the two usecases into the executable schema. The shape
// mirrors the REST surface field for field.
func buildSchema(q *loanuc.Usecase, m *paymentuc.Usecase) (graphql.Schema, error) {
	loanType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Loan",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					v, _ := loanSource(p)
					return v.ID, nil
				},
			},
			"name": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					v, _ := loanSource(p)
					return v.Name, nil
				},
			},
			"interest_rate": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Float),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					v, _ := loanSource(p)
					return v.InterestRate, nil
				},
			},
			"principal": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					v, _ := loanSource(p)
					return int(v.Principal), nil
				},
			},
			"due_date": &graphql.Field{
				Type: graphql.NewNonNull(dateScalar),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					v, _ := loanSource(p)
					return v.DueDate, nil
				},
			},
			"payment_date": &graphql.Field{
				Type: dateScalar,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					v, _ := loanSource(p)
					if v.PaymentDate == nil {
						return nil, nil
					}
					return *v.PaymentDate, nil
				},
			},
			"status": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					v, _ := loanSource(p)
					return v.Status, nil
				},
			},
		},
	})

	paymentType := graphql.NewObject(graphql.ObjectConfig{
		Name: "LoanPayment",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					v, _ := paymentSource(p)
					return v.ID, nil
				},
			},
			"loan_id": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					v, _ := paymentSource(p)
					return v.LoanID, nil
				},
			},
			"payment_date": &graphql.Field{
				Type: graphql.NewNonNull(dateScalar),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					v, _ := paymentSource(p)
					return v.PaymentDate, nil
				},
			},
			"amount": &graphql.Field{
				Type: graphql.Float,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					v, _ := paymentSource(p)
					return v.Amount, nil
				},
			},
			"status": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					v, _ := paymentSource(p)
					return v.Status, nil
				},
			},
		},
	})

	// Circular references: Loan.payments and LoanPayment.loan.
	loanType.AddFieldConfig("payments", &graphql.Field{
		Type: graphql.NewList(graphql.NewNonNull(paymentType)),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			v, _ := loanSource(p)
			if v.Payments == nil {
				return nil, nil
			}
			return v.Payments, nil
		},
	})
	paymentType.AddFieldConfig("loan", &graphql.Field{
		Type: loanType,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			v, _ := paymentSource(p)
			if v.Loan == nil {
				return nil, nil
			}
			return *v.Loan, nil
		},
	})

	loanFilterInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "LoanFilter",
		Fields: graphql.InputObjectConfigFieldMap{
			"id":       &graphql.InputObjectFieldConfig{Type: graphql.Int},
			"name":     &graphql.InputObjectFieldConfig{Type: graphql.String},
			"due_date": &graphql.InputObjectFieldConfig{Type: dateScalar},
		},
	})
	paymentFilterInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "PaymentFilter",
		Fields: graphql.InputObjectConfigFieldMap{
			"id":      &graphql.InputObjectFieldConfig{Type: graphql.Int},
			"status":  &graphql.InputObjectFieldConfig{Type: graphql.String},
			"loan_id": &graphql.InputObjectFieldConfig{Type: graphql.Int},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"loans": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(loanType))),
				Args: graphql.FieldConfigArgument{
					"isCombined": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Boolean)},
					"filters":    &graphql.ArgumentConfig{Type: loanFilterInput},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					combined, _ := p.Args["isCombined"].(bool)
					f, err := loanFilterFromArg(p.Args["filters"])
					if err != nil {
						log.Printf("loans resolver: %v", err)
						return nil, errRetrieveLoans
					}

					if combined {
						rows, err := q.ListCombined(p.Context, f)
						if err != nil {
							log.Printf("loans resolver: %v", err)
							return nil, errRetrieveLoans
						}
						out := make([]loanView, 0, len(rows))
						for _, r := range rows {
							v := viewFromLoan(r.Loan)
							v.PaymentDate = r.PaymentDate
							out = append(out, v)
						}
						return out, nil
					}

					rows, err := q.ListDetailed(p.Context, f)
					if err != nil {
						log.Printf("loans resolver: %v", err)
						return nil, errRetrieveLoans
					}
					out := make([]loanView, 0, len(rows))
					for _, r := range rows {
						v := viewFromLoan(r.Loan)
						v.Payments = make([]paymentView, 0, len(r.Payments))
						for _, pmt := range r.Payments {
							v.Payments = append(v.Payments, viewFromPayment(pmt))
						}
						out = append(out, v)
					}
					return out, nil
				},
			},
			"loanPayments": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(paymentType))),
				Args: graphql.FieldConfigArgument{
					"filters": &graphql.ArgumentConfig{Type: paymentFilterInput},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					f, err := paymentFilterFromArg(p.Args["filters"])
					if err != nil {
						log.Printf("loanPayments resolver: %v", err)
						return nil, errRetrievePayments
					}
					rows, err := q.ListPayments(p.Context, f)
					if err != nil {
						log.Printf("loanPayments resolver: %v", err)
						return nil, errRetrievePayments
					}
					out := make([]paymentView, 0, len(rows))
					for _, r := range rows {
						v := viewFromPayment(r.LoanPayment)
						if r.Loan != nil {
							lv := viewFromLoan(*r.Loan)
							v.Loan = &lv
						}
						out = append(out, v)
					}
					return out, nil
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"addLoanPayment": &graphql.Field{
				Type: graphql.NewNonNull(paymentType),
				Args: graphql.FieldConfigArgument{
					"loan_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					loanID, _ := p.Args["loan_id"].(int)
					pmt, err := m.AddPaymentNoAmount(p.Context, loanID)
					if err != nil {
						log.Printf("addLoanPayment resolver: %v", err)
						return nil, errAddPayment
					}
					return viewFromPayment(*pmt), nil
				},
			},
			"updateLoan": &graphql.Field{
				Type: graphql.NewNonNull(loanType),
				Args: graphql.FieldConfigArgument{
					"loan_id":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"name":     &graphql.ArgumentConfig{Type: graphql.String},
					"due_date": &graphql.ArgumentConfig{Type: dateScalar},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					loanID, _ := p.Args["loan_id"].(int)
					var in paymentuc.UpdateLoanInput
					if v, ok := p.Args["name"].(string); ok {
						in.Name = &v
					}
					if v, ok := p.Args["due_date"].(civil.Date); ok {
						in.DueDate = &v
					}
					l, err := m.UpdateLoan(p.Context, loanID, in)
					if err != nil {
						log.Printf("updateLoan resolver: %v", err)
						return nil, errUpdateLoan
					}
					return viewFromLoan(*l), nil
				},
			},
			"deleteLoan": &graphql.Field{
				Type: graphql.NewNonNull(loanType),
				Args: graphql.FieldConfigArgument{
					"loan_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					loanID, _ := p.Args["loan_id"].(int)
					l, err := m.DeleteLoan(p.Context, loanID)
					if err != nil {
						log.Printf("deleteLoan resolver: %v", err)
						return nil, errDeleteLoan
					}
					return viewFromLoan(*l), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: queryType, Mutation: mutationType})
}

func loanFilterFromArg(arg interface{}) (*domain.LoanFilter, error) {
	m, ok := arg.(map[string]interface{})
	if !ok || len(m) == 0 {
		return nil, nil
	}
	var f domain.LoanFilter
	if v, present := m["id"]; present && v != nil {
		id, ok := v.(int)
		if !ok {
			return nil, errors.New("filters.id must be an integer")
		}
		f.ID = &id
	}
	if v, present := m["name"]; present && v != nil {
		name, ok := v.(string)
		if !ok {
			return nil, errors.New("filters.name must be a string")
		}
		f.Name = &name
	}
	if v, present := m["due_date"]; present && v != nil {
		switch d := v.(type) {
		case civil.Date:
			f.DueDate = &d
		case string:
			parsed, err := civil.ParseDate(d)
			if err != nil {
				return nil, err
			}
			f.DueDate = &parsed
		default:
			return nil, errors.New("filters.due_date must be a YYYY-MM-DD date")
		}
	}
	return &f, nil
}

func paymentFilterFromArg(arg interface{}) (*domain.PaymentFilter, error) {
	m, ok := arg.(map[string]interface{})
	if !ok || len(m) == 0 {
		return nil, nil
	}
	var f domain.PaymentFilter
	if v, present := m["id"]; present && v != nil {
		id, ok := v.(int)
		if !ok {
			return nil, errors.New("filters.id must be an integer")
		}
		f.ID = &id
	}
	if v, present := m["status"]; present && v != nil {
		status, ok := v.(string)
		if !ok {
			return nil, errors.New("filters.status must be a string")
		}
		f.Status = &status
	}
	if v, present := m["loan_id"]; present && v != nil {
		loanID, ok := v.(int)
		if !ok {
			return nil, errors.New("filters.loan_id must be an integer")
		}
		f.LoanID = &loanID
	}
	return &f, nil
}
