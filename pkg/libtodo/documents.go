package libtodo

// GraphQL documents sent to the service.
const (
	todoFields = `
fragment TodoFields on Todo {
	id
	name
	description
	owner
	createdAt
	updatedAt
}`

	listTodosQuery = `
query ListTodos($filter: ModelTodoFilterInput, $limit: Int, $nextToken: String) {
	listTodos(filter: $filter, limit: $limit, nextToken: $nextToken) {
		items {
			...TodoFields
		}
		nextToken
	}
}` + todoFields

	getTodoQuery = `
query GetTodo($id: ID!) {
	getTodo(id: $id) {
		...TodoFields
	}
}` + todoFields

	createTodoMutation = `
mutation CreateTodo($input: CreateTodoInput!) {
	createTodo(input: $input) {
		...TodoFields
	}
}` + todoFields

	updateTodoMutation = `
mutation UpdateTodo($input: UpdateTodoInput!) {
	updateTodo(input: $input) {
		...TodoFields
	}
}` + todoFields

	deleteTodoMutation = `
mutation DeleteTodo($input: DeleteTodoInput!) {
	deleteTodo(input: $input) {
		...TodoFields
	}
}` + todoFields
)
