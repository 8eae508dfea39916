package libtodo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"sync"

	"github.com/pkg/errors"
	"github.com/valyala/fastjson"
)

type (
	// A Client defines all interactions that can be performed on a todo service.
	Client interface {
		// SignUp registers a new user and connects the Client with its first session.
		SignUp(ctx context.Context, username, password string) error
		// Login connects the Client to the todo service.
		Login(ctx context.Context, username, password string) error
		// Logout terminates the session of the Client.
		Logout(ctx context.Context) error
		// Me returns the username of the authenticated user.
		Me(ctx context.Context) (string, error)
		// BearerToken returns the access token used for requests sent to the todo service.
		BearerToken() string
		// SetBearerToken sets the access token used for requests sent to the todo service.
		SetBearerToken(token string)
		// Session returns the authentication session.
		Session() Session
		// SetSession sets the authentication session.
		// It also uses its access token as the bearer token.
		SetSession(session Session)
		// RefreshSession gets a new pair of tokens by refreshing the session.
		// The access token may be expired.
		RefreshSession(ctx context.Context, access, refresh string) (*Session, error)
		// ListTodos returns all the todos matching the filter, following nextToken until exhausted.
		ListTodos(ctx context.Context, filter *TodoFilter) ([]Todo, error)
		// ListTodosPage returns one page of todos.
		ListTodosPage(ctx context.Context, params ListTodosParams) (*TodoConnection, error)
		// GetTodo returns the todo for the given id or nil.
		GetTodo(ctx context.Context, id string) (*Todo, error)
		// CreateTodo creates a todo.
		CreateTodo(ctx context.Context, input CreateTodoInput) (*Todo, error)
		// UpdateTodo updates the description of a todo.
		UpdateTodo(ctx context.Context, input UpdateTodoInput) (*Todo, error)
		// DeleteTodo deletes a todo and returns it.
		DeleteTodo(ctx context.Context, id string) (*Todo, error)
	}

	p      map[string]any
	client struct {
		http     *http.Client
		endpoint string
		mu       sync.RWMutex
		bearer   string
		session  Session
	}
)

// NewDefaultClient returns a new Client with default HTTP client.
func NewDefaultClient(endpoint string) (Client, error) {
	return NewClient(http.DefaultClient, endpoint)
}

// NewClient returns a new Client.
func NewClient(c *http.Client, endpoint string) (Client, error) {
	_, err := url.Parse(endpoint)
	return &client{endpoint: endpoint, http: c}, errors.Wrap(err, "could not parse endpoint")
}

func (c *client) SignUp(ctx context.Context, username, password string) error {
	return c.authenticate(ctx, "/auth/sign_up", username, password)
}

func (c *client) Login(ctx context.Context, username, password string) error {
	return c.authenticate(ctx, "/auth/sign_in", username, password)
}

func (c *client) authenticate(ctx context.Context, endpoint, username, password string) error {
	var auth struct {
		Session Session `json:"session"`
	}

	err := c.do(ctx, http.MethodPost, endpoint, p{"username": username, "password": password}, false, &auth)
	if err != nil {
		return err
	}

	if !auth.Session.Defined() {
		return errors.New("no session returned by the server")
	}
	c.SetSession(auth.Session)
	return nil
}

func (c *client) Logout(ctx context.Context) error {
	if !c.Session().Defined() {
		return ErrNoSession
	}

	if err := c.do(ctx, http.MethodPost, "/auth/sign_out", nil, true, nil); err != nil {
		return err
	}

	c.SetSession(Session{})
	return nil
}

func (c *client) Me(ctx context.Context) (string, error) {
	var me struct {
		Username string `json:"username"`
	}

	err := c.do(ctx, http.MethodGet, "/auth/me", nil, true, &me)
	return me.Username, err
}

func (c *client) BearerToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.bearer
}

func (c *client) SetBearerToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.bearer = token
}

func (c *client) Session() Session {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.session
}

func (c *client) SetSession(session Session) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.session = session
	c.bearer = c.session.AccessToken
}

func (c *client) RefreshSession(ctx context.Context, access, refresh string) (*Session, error) {
	var session = struct {
		Session Session `json:"session"`
	}{}

	u, err := c.url("/session/refresh")
	if err != nil {
		return nil, err
	}

	req, err := c.request(ctx, http.MethodPost, u, p{"refresh_token": refresh})
	if err != nil {
		return nil, err
	}
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", access))

	return &session.Session, c.perform(req, &session)
}

///// GraphQL
////
//

func (c *client) ListTodos(ctx context.Context, filter *TodoFilter) ([]Todo, error) {
	todos := make([]Todo, 0)
	params := ListTodosParams{Filter: filter}

	for {
		page, err := c.ListTodosPage(ctx, params)
		if err != nil {
			return nil, err
		}

		for _, todo := range page.Items {
			if todo != nil {
				todos = append(todos, *todo)
			}
		}

		if page.NextToken == nil || *page.NextToken == "" {
			return todos, nil
		}
		params.NextToken = *page.NextToken
	}
}

func (c *client) ListTodosPage(ctx context.Context, params ListTodosParams) (*TodoConnection, error) {
	variables := p{}
	if params.Filter != nil {
		variables["filter"] = params.Filter
	}
	if params.Limit > 0 {
		variables["limit"] = params.Limit
	}
	if params.NextToken != "" {
		variables["nextToken"] = params.NextToken
	}

	var data struct {
		ListTodos *TodoConnection `json:"listTodos"`
	}
	if err := c.graphql(ctx, "ListTodos", listTodosQuery, variables, &data); err != nil {
		return nil, err
	}

	if data.ListTodos == nil {
		return &TodoConnection{}, nil
	}
	return data.ListTodos, nil
}

func (c *client) GetTodo(ctx context.Context, id string) (*Todo, error) {
	var data struct {
		GetTodo *Todo `json:"getTodo"`
	}

	err := c.graphql(ctx, "GetTodo", getTodoQuery, p{"id": id}, &data)
	return data.GetTodo, err
}

func (c *client) CreateTodo(ctx context.Context, input CreateTodoInput) (*Todo, error) {
	var data struct {
		CreateTodo *Todo `json:"createTodo"`
	}

	if err := c.graphql(ctx, "CreateTodo", createTodoMutation, p{"input": input}, &data); err != nil {
		return nil, err
	}
	return data.CreateTodo, nullable(data.CreateTodo, "createTodo")
}

func (c *client) UpdateTodo(ctx context.Context, input UpdateTodoInput) (*Todo, error) {
	var data struct {
		UpdateTodo *Todo `json:"updateTodo"`
	}

	if err := c.graphql(ctx, "UpdateTodo", updateTodoMutation, p{"input": input}, &data); err != nil {
		return nil, err
	}
	return data.UpdateTodo, nullable(data.UpdateTodo, "updateTodo")
}

func (c *client) DeleteTodo(ctx context.Context, id string) (*Todo, error) {
	var data struct {
		DeleteTodo *Todo `json:"deleteTodo"`
	}

	if err := c.graphql(ctx, "DeleteTodo", deleteTodoMutation, p{"input": p{"id": id}}, &data); err != nil {
		return nil, err
	}
	return data.DeleteTodo, nullable(data.DeleteTodo, "deleteTodo")
}

func (c *client) graphql(ctx context.Context, operation, query string, variables p, data any) error {
	u, err := c.url("/graphql")
	if err != nil {
		return err
	}

	//
	// Build request
	req, err := c.request(ctx, http.MethodPost, u, p{
		"query":         query,
		"operationName": operation,
		"variables":     variables,
	})
	if err != nil {
		return err
	}
	if err = c.authorize(req); err != nil {
		return err
	}

	//
	// Perform request
	var raw json.RawMessage
	if err = c.perform(req, &raw); err != nil {
		return err
	}

	//
	// Process response
	v, err := fastjson.ParseBytes(raw)
	if err != nil {
		return errors.Wrap(err, "could not parse GraphQL response")
	}

	if errs := v.GetArray("errors"); len(errs) > 0 {
		return parseGraphQLErrors(errs)
	}

	payload := v.Get("data")
	if payload == nil {
		return errors.Errorf("%s: GraphQL response without data", operation)
	}
	return errors.Wrap(json.Unmarshal(payload.MarshalTo(nil), data), "could not parse GraphQL data")
}

func nullable(todo *Todo, field string) error {
	if todo == nil {
		return errors.Errorf("%s: no todo returned", field)
	}
	return nil
}

///// HTTP
////
//

func (c *client) do(ctx context.Context, method, endpoint string, body any, authenticated bool, out any) error {
	u, err := c.url(endpoint)
	if err != nil {
		return err
	}

	req, err := c.request(ctx, method, u, body)
	if err != nil {
		return err
	}

	if authenticated {
		if err = c.authorize(req); err != nil {
			return err
		}
	}

	return c.perform(req, out)
}

func (c *client) url(endpoint string) (string, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", errors.Wrap(err, "could not parse endpoint")
	}
	u.Path = path.Join(u.Path, endpoint)
	return u.String(), nil
}

func (c *client) request(ctx context.Context, method, u string, body any) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "could not serialize request body")
		}
		r = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, r)
	if err != nil {
		return nil, errors.Wrap(err, "could not build request")
	}
	req.Close = true
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	return req, nil
}

func (c *client) authorize(req *http.Request) error {
	bearer := c.BearerToken()
	if bearer == "" {
		return ErrNoSession
	}

	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", bearer))
	return nil
}

func (c *client) perform(req *http.Request, out any) error {
	res, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "could not perform request")
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		return parseAPIError(res.Body, res.StatusCode)
	}

	if out == nil || res.StatusCode == http.StatusNoContent {
		return nil
	}

	//
	// Process response
	dec := json.NewDecoder(res.Body)
	return errors.Wrap(dec.Decode(out), "could not parse response")
}
