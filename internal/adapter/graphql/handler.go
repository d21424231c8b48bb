package graphql

import (
	"net/http"

	"github.com/graphql-go/graphql"
	"github.com/labstack/echo/v4"

	loanuc "loan-servicing-api/internal/usecase/loan"
	paymentuc "loan-servicing-api/internal/usecase/payment"
)

// Handler serves the graph surface over echo: POST executes queries and
// mutations, GET serves an explorer page.
type Handler struct {
	schema graphql.Schema
}

func NewHandler(q *loanuc.Usecase, m *paymentuc.Usecase) (*Handler, error) {
	schema, err := buildSchema(q, m)
	if err != nil {
		return nil, err
	}
	return &Handler{schema: schema}, nil
}

type queryRequest struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// Query handles POST /graphql. Execution errors stay inside the result
// payload; the transport only distinguishes success (200) from failure (400),
// which is what graph clients expect.
func (h *Handler) Query(c echo.Context) error {
	var req queryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid body"})
	}

	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        c.Request().Context(),
	})

	status := http.StatusOK
	if result.HasErrors() {
		status = http.StatusBadRequest
	}
	return c.JSON(status, result)
}

// Explorer handles GET /graphql with a minimal GraphiQL page.
func (h *Handler) Explorer(c echo.Context) error {
	return c.HTML(http.StatusOK, explorerHTML)
}

const explorerHTML = `<!DOCTYPE html>
<html>
<head>
  <title>Loan API GraphiQL</title>
  <style>html, body, #graphiql { height: 100%; margin: 0; }</style>
  <link rel="stylesheet" href="https://unpkg.com/graphiql/graphiql.min.css" />
</head>
<body>
  <div id="graphiql">Loading…</div>
  <script crossorigin src="https://unpkg.com/react/umd/react.production.min.js"></script>
  <script crossorigin src="https://unpkg.com/react-dom/umd/react-dom.production.min.js"></script>
  <script crossorigin src="https://unpkg.com/graphiql/graphiql.min.js"></script>
  <script>
    ReactDOM.render(
      React.createElement(GraphiQL, {
        fetcher: GraphiQL.createFetcher({ url: '/graphql' }),
      }),
      document.getElementById('graphiql'),
    );
  </script>
</body>
</html>`
