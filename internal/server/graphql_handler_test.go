package server_test

import (
	"net/http"
	"testing"

	"github.com/appleboy/gofight/v2"
	"github.com/labstack/echo/v4"
	"github.com/riekert/todo/internal/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fastjson"
)

const (
	createTodo = `mutation CreateTodo($input: CreateTodoInput!) {
	createTodo(input: $input) { id name description owner createdAt updatedAt }
}`
	updateTodo = `mutation UpdateTodo($input: UpdateTodoInput!) {
	updateTodo(input: $input) { id name description }
}`
	deleteTodo = `mutation DeleteTodo($input: DeleteTodoInput!) {
	deleteTodo(input: $input) { id }
}`
	getTodo = `query GetTodo($id: ID!) {
	getTodo(id: $id) { id description }
}`
	listTodos = `query ListTodos($filter: ModelTodoFilterInput, $limit: Int, $nextToken: String) {
	listTodos(filter: $filter, limit: $limit, nextToken: $nextToken) { items { id name description } nextToken }
}`
)

func graphql(t *testing.T, engine *echo.Echo, header gofight.H, query string, variables gofight.D) *fastjson.Value {
	var v *fastjson.Value

	gofight.New().POST("/graphql").SetHeader(header).SetJSON(gofight.D{
		"query":     query,
		"variables": variables,
	}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		require.Equal(t, http.StatusOK, r.Code, r.Body.String())

		var err error
		v, err = fastjson.Parse(r.Body.String())
		require.NoError(t, err)
	})

	return v
}

func login(ctrl server.Controller, username string) gofight.H {
	user, session := createUserWithSession(ctrl, username)
	return bearer(ctrl, user, session)
}

func TestRequestGraphQL_Unauthenticated(t *testing.T) {
	engine, _, r, cleanup := setup()
	defer cleanup()

	r.POST("/graphql").SetJSON(gofight.D{"query": listTodos}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusUnauthorized, r.Code)
		assert.JSONEq(t, `{"error":{"tag":"invalid-auth","message":"Invalid login credentials."}}`, r.Body.String())
	})
}

func TestRequestGraphQL_NoQuery(t *testing.T) {
	engine, ctrl, _, cleanup := setup()
	defer cleanup()
	header := login(ctrl, "george")

	gofight.New().POST("/graphql").SetHeader(header).SetJSON(gofight.D{"variables": gofight.D{}}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusBadRequest, r.Code)
		assert.JSONEq(t, `{"error":{"tag":"invalid-parameters","message":"No GraphQL query provided."}}`, r.Body.String())
	})
}

func TestRequestGraphQL_CRUD(t *testing.T) {
	engine, ctrl, _, cleanup := setup()
	defer cleanup()
	header := login(ctrl, "george")

	v := graphql(t, engine, header, createTodo, gofight.D{
		"input": gofight.D{"description": "Buy milk", "owner": "george"},
	})
	assert.Nil(t, v.Get("errors"))
	todo := v.Get("data", "createTodo")
	require.NotNil(t, todo)
	id := string(todo.GetStringBytes("id"))
	assert.NotEmpty(t, id)
	assert.Equal(t, "Todo #1", string(todo.GetStringBytes("name")))
	assert.Equal(t, "Buy milk", string(todo.GetStringBytes("description")))
	assert.Equal(t, "george", string(todo.GetStringBytes("owner")))
	assert.NotEmpty(t, todo.GetStringBytes("createdAt"))
	assert.NotEmpty(t, todo.GetStringBytes("updatedAt"))

	v = graphql(t, engine, header, createTodo, gofight.D{
		"input": gofight.D{"name": "Groceries", "description": "Buy bread"},
	})
	assert.Equal(t, "Groceries", string(v.GetStringBytes("data", "createTodo", "name")))

	v = graphql(t, engine, header, updateTodo, gofight.D{
		"input": gofight.D{"id": id, "description": "Buy oat milk"},
	})
	assert.Nil(t, v.Get("errors"))
	assert.Equal(t, "Buy oat milk", string(v.GetStringBytes("data", "updateTodo", "description")))
	assert.Equal(t, "Todo #1", string(v.GetStringBytes("data", "updateTodo", "name")))

	v = graphql(t, engine, header, getTodo, gofight.D{"id": id})
	assert.Equal(t, "Buy oat milk", string(v.GetStringBytes("data", "getTodo", "description")))

	v = graphql(t, engine, header, deleteTodo, gofight.D{
		"input": gofight.D{"id": id},
	})
	assert.Nil(t, v.Get("errors"))
	assert.Equal(t, id, string(v.GetStringBytes("data", "deleteTodo", "id")))

	v = graphql(t, engine, header, getTodo, gofight.D{"id": id})
	assert.Nil(t, v.Get("errors"))
	assert.Equal(t, fastjson.TypeNull, v.Get("data", "getTodo").Type())

	v = graphql(t, engine, header, deleteTodo, gofight.D{
		"input": gofight.D{"id": id},
	})
	errs := v.GetArray("errors")
	if assert.Len(t, errs, 1) {
		assert.Equal(t, "The conditional request failed", string(errs[0].GetStringBytes("message")))
		assert.Equal(t, "ConditionalCheckFailedException", string(errs[0].GetStringBytes("extensions", "errorType")))
	}
	assert.Equal(t, fastjson.TypeNull, v.Get("data", "deleteTodo").Type())
}

func TestRequestGraphQL_OwnerScope(t *testing.T) {
	engine, ctrl, _, cleanup := setup()
	defer cleanup()
	george := login(ctrl, "george")
	robert := login(ctrl, "robert")

	v := graphql(t, engine, george, createTodo, gofight.D{
		"input": gofight.D{"description": "George's"},
	})
	id := string(v.GetStringBytes("data", "createTodo", "id"))

	v = graphql(t, engine, robert, updateTodo, gofight.D{
		"input": gofight.D{"id": id, "description": "Hijacked"},
	})
	errs := v.GetArray("errors")
	if assert.Len(t, errs, 1) {
		assert.Equal(t, "Not Authorized to access updateTodo on type Todo", string(errs[0].GetStringBytes("message")))
		assert.Equal(t, "Unauthorized", string(errs[0].GetStringBytes("extensions", "errorType")))
	}

	v = graphql(t, engine, robert, createTodo, gofight.D{
		"input": gofight.D{"description": "Forged", "owner": "george"},
	})
	assert.Len(t, v.GetArray("errors"), 1)

	v = graphql(t, engine, robert, listTodos, gofight.D{
		"filter": gofight.D{"owner": gofight.D{"eq": "george"}},
	})
	assert.Nil(t, v.Get("errors"))
	assert.Len(t, v.GetArray("data", "listTodos", "items"), 0)

	v = graphql(t, engine, george, listTodos, nil)
	items := v.GetArray("data", "listTodos", "items")
	if assert.Len(t, items, 1) {
		assert.Equal(t, "George's", string(items[0].GetStringBytes("description")))
	}
}

func TestRequestGraphQL_Pagination(t *testing.T) {
	engine, ctrl, _, cleanup := setup()
	defer cleanup()
	header := login(ctrl, "george")

	for _, description := range []string{"one", "two", "three"} {
		graphql(t, engine, header, createTodo, gofight.D{
			"input": gofight.D{"description": description},
		})
	}

	// The server page size applies.
	v := graphql(t, engine, header, listTodos, nil)
	items := v.GetArray("data", "listTodos", "items")
	if assert.Len(t, items, 2) {
		assert.Equal(t, "one", string(items[0].GetStringBytes("description")))
		assert.Equal(t, "two", string(items[1].GetStringBytes("description")))
	}
	token := string(v.GetStringBytes("data", "listTodos", "nextToken"))
	require.NotEmpty(t, token)

	v = graphql(t, engine, header, listTodos, gofight.D{"nextToken": token})
	items = v.GetArray("data", "listTodos", "items")
	if assert.Len(t, items, 1) {
		assert.Equal(t, "three", string(items[0].GetStringBytes("description")))
		assert.Equal(t, "Todo #3", string(items[0].GetStringBytes("name")))
	}
	assert.Equal(t, fastjson.TypeNull, v.Get("data", "listTodos", "nextToken").Type())

	v = graphql(t, engine, header, listTodos, gofight.D{"limit": 10})
	assert.Len(t, v.GetArray("data", "listTodos", "items"), 3)

	v = graphql(t, engine, header, listTodos, gofight.D{
		"filter": gofight.D{"description": gofight.D{"beginsWith": "t"}},
		"limit":  10,
	})
	assert.Len(t, v.GetArray("data", "listTodos", "items"), 2)

	v = graphql(t, engine, header, listTodos, gofight.D{"nextToken": "!!"})
	errs := v.GetArray("errors")
	if assert.Len(t, errs, 1) {
		assert.Equal(t, "Invalid nextToken", string(errs[0].GetStringBytes("message")))
	}
}
