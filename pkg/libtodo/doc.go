//
// libtodo is a client that interacts with the todo service: authentication endpoints and owner-scoped GraphQL CRUD on todos.
//

// Create client
//
//	client, err := libtodo.NewDefaultClient("https://todo.nas.lan")
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Authenticate
//
//	err = client.Login(ctx, "george", "12345678")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// The session can be persisted and restored later with SetSession.
//	session := client.Session()
//
// Get all todos
//
//	todos, err := client.ListTodos(ctx, &libtodo.TodoFilter{
//		Owner: &libtodo.StringFilter{Eq: libtodo.String("george")},
//	}) // nextToken is followed until the whole list is fetched.
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Create, update and delete a todo
//
//	todo, err := client.CreateTodo(ctx, libtodo.CreateTodoInput{
//		Description: libtodo.String("Buy milk"),
//		Owner:       libtodo.String("george"),
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	todo, err = client.UpdateTodo(ctx, libtodo.UpdateTodoInput{
//		ID:          todo.ID,
//		Description: libtodo.String("Buy oat milk"),
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	_, err = client.DeleteTodo(ctx, todo.ID)
//	if err != nil {
//		log.Fatal(err)
//	}
package libtodo
