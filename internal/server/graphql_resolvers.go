package server

import (
	"context"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/riekert/todo/internal/database"
	"github.com/riekert/todo/internal/model"
	"github.com/riekert/todo/internal/server/service"
)

type (
	viewerKey struct{}

	resolver struct {
		db       database.Client
		pageSize int
	}

	stringInput struct {
		Eq         *string
		Ne         *string
		Contains   *string
		BeginsWith *string
	}

	todoFilterInput struct {
		Owner       *stringInput
		Description *stringInput
	}

	createTodoInput struct {
		Name        *string
		Description *string
		Owner       *string
	}

	updateTodoInput struct {
		ID          graphql.ID
		Description *string
	}

	deleteTodoInput struct {
		ID graphql.ID
	}
)

func withViewer(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, viewerKey{}, user)
}

func (r *resolver) todos(ctx context.Context) *service.TodoService {
	user, _ := ctx.Value(viewerKey{}).(*model.User)
	return service.NewTodo(r.db, user, r.pageSize)
}

///// Queries
////
//

func (r *resolver) GetTodo(ctx context.Context, args struct{ ID graphql.ID }) (*todoResolver, error) {
	todo, err := r.todos(ctx).Get(string(args.ID))
	if err != nil || todo == nil {
		return nil, err
	}
	return &todoResolver{todo}, nil
}

func (r *resolver) ListTodos(ctx context.Context, args struct {
	Filter    *todoFilterInput
	Limit     *int32
	NextToken *string
}) (*connectionResolver, error) {
	params := service.ListParams{
		Limit:     args.Limit,
		NextToken: args.NextToken,
	}
	if f := args.Filter; f != nil {
		params.Filter = &service.TodoFilter{
			Owner:       f.Owner.filter(),
			Description: f.Description.filter(),
		}
	}

	page, err := r.todos(ctx).List(params)
	if err != nil {
		return nil, err
	}
	return &connectionResolver{page}, nil
}

///// Mutations
////
//

func (r *resolver) CreateTodo(ctx context.Context, args struct{ Input createTodoInput }) (*todoResolver, error) {
	todo, err := r.todos(ctx).Create(service.CreateTodoParams{
		Name:        args.Input.Name,
		Description: args.Input.Description,
		Owner:       args.Input.Owner,
	})
	if err != nil {
		return nil, err
	}
	return &todoResolver{todo}, nil
}

func (r *resolver) UpdateTodo(ctx context.Context, args struct{ Input updateTodoInput }) (*todoResolver, error) {
	todo, err := r.todos(ctx).Update(service.UpdateTodoParams{
		ID:          string(args.Input.ID),
		Description: args.Input.Description,
	})
	if err != nil {
		return nil, err
	}
	return &todoResolver{todo}, nil
}

func (r *resolver) DeleteTodo(ctx context.Context, args struct{ Input deleteTodoInput }) (*todoResolver, error) {
	todo, err := r.todos(ctx).Delete(string(args.Input.ID))
	if err != nil {
		return nil, err
	}
	return &todoResolver{todo}, nil
}

func (i *stringInput) filter() *service.StringFilter {
	if i == nil {
		return nil
	}
	return &service.StringFilter{
		Eq:         i.Eq,
		Ne:         i.Ne,
		Contains:   i.Contains,
		BeginsWith: i.BeginsWith,
	}
}

///// Types
////
//

type todoResolver struct {
	m *model.Todo
}

func (r *todoResolver) ID() graphql.ID {
	return graphql.ID(r.m.ID)
}

func (r *todoResolver) Name() *string {
	return r.m.Name
}

func (r *todoResolver) Description() *string {
	return &r.m.Description
}

func (r *todoResolver) Owner() *string {
	return &r.m.Owner
}

func (r *todoResolver) CreatedAt() graphql.Time {
	return graphql.Time{Time: *r.m.CreatedAt}
}

func (r *todoResolver) UpdatedAt() graphql.Time {
	return graphql.Time{Time: *r.m.UpdatedAt}
}

type connectionResolver struct {
	page *service.TodoPage
}

func (r *connectionResolver) Items() []*todoResolver {
	items := make([]*todoResolver, len(r.page.Items))
	for i, todo := range r.page.Items {
		items[i] = &todoResolver{todo}
	}
	return items
}

func (r *connectionResolver) NextToken() *string {
	return r.page.NextToken
}
