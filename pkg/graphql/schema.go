// Package graphql wraps graphql-go with schema construction and an HTTP
// handler for POSTed queries.
package graphql

import (
	"encoding/json"
	"net/http"

	"github.com/graphql-go/graphql"
)

// NewSchema creates a new GraphQL schema from a provided RootQuery.
func NewSchema(query *graphql.Object) (graphql.Schema, error) {
	return graphql.NewSchema(graphql.SchemaConfig{
		Query: query,
	})
}

// request is the standard GraphQL-over-HTTP POST body.
type request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// Handler executes queries against schema. Execution errors are returned
// in the GraphQL result body with status 200, per convention; only a
// malformed request is an HTTP error.
func Handler(schema graphql.Schema) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid graphql request"}`, http.StatusBadRequest)
			return
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			OperationName:  req.OperationName,
			VariableValues: req.Variables,
			Context:        r.Context(),
		})

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result) //nolint:errcheck
	}
}
