package server

// Schema is the GraphQL schema of the todo service.
const Schema = `
schema {
	query: Query
	mutation: Mutation
}

scalar Time

type Todo {
	id: ID!
	name: String
	description: String
	owner: String
	createdAt: Time!
	updatedAt: Time!
}

type ModelTodoConnection {
	items: [Todo]!
	nextToken: String
}

input ModelStringInput {
	eq: String
	ne: String
	contains: String
	beginsWith: String
}

input ModelTodoFilterInput {
	owner: ModelStringInput
	description: ModelStringInput
}

input CreateTodoInput {
	name: String
	description: String
	owner: String
}

input UpdateTodoInput {
	id: ID!
	description: String
}

input DeleteTodoInput {
	id: ID!
}

type Query {
	getTodo(id: ID!): Todo
	listTodos(filter: ModelTodoFilterInput, limit: Int, nextToken: String): ModelTodoConnection
}

type Mutation {
	createTodo(input: CreateTodoInput!): Todo
	updateTodo(input: UpdateTodoInput!): Todo
	deleteTodo(input: DeleteTodoInput!): Todo
}
`
