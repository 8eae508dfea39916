package server

import (
	"net/http"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/labstack/echo/v4"
	"github.com/riekert/todo/internal/database"
	"github.com/riekert/todo/internal/todoerror"
	"github.com/sirupsen/logrus"
)

type (
	// graphQL serves the GraphQL endpoint.
	graphQL struct {
		schema *graphql.Schema
		log    logrus.FieldLogger
	}

	graphQLParams struct {
		Query         string         `json:"query"`
		OperationName string         `json:"operationName"`
		Variables     map[string]any `json:"variables"`
	}
)

func newGraphQL(db database.Client, pageSize int, log logrus.FieldLogger) *graphQL {
	return &graphQL{
		schema: graphql.MustParseSchema(Schema, &resolver{db: db, pageSize: pageSize}),
		log:    log.WithField("component", "graphql"),
	}
}

// Query executes a GraphQL document on behalf of the current user.
// Resolver errors are rendered in the response's errors with a 200 status.
func (h *graphQL) Query(c echo.Context) error {
	var params graphQLParams
	if err := c.Bind(&params); err != nil || params.Query == "" {
		return c.JSON(http.StatusBadRequest, todoerror.NewWithTagCode(
			http.StatusBadRequest,
			todoerror.TagInvalidParameters,
			"No GraphQL query provided.",
		))
	}

	ctx := withViewer(c.Request().Context(), currentUser(c))
	response := h.schema.Exec(ctx, params.Query, params.OperationName, params.Variables)
	for _, err := range response.Errors {
		h.log.WithField("user", currentUser(c).Username).Debugf("%s: %s", params.OperationName, err.Message)
	}

	return c.JSON(http.StatusOK, response)
}
