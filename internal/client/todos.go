package client

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/riekert/todo/internal/todo"
)

// List prints the todos of the user.
func List(ctx context.Context) error {
	sync, err := synchronizer()
	if err != nil {
		return err
	}

	if !sync.FetchAll(ctx) {
		return errors.New("could not fetch todos")
	}

	return Print(os.Stdout, sync.Items())
}

// Add creates a todo.
func Add(ctx context.Context, description string) error {
	sync, err := synchronizer()
	if err != nil {
		return err
	}

	if !sync.Create(ctx, description) {
		return errors.New("todo not created")
	}

	items := sync.Items()
	fmt.Println(items[len(items)-1].ID)
	return nil
}

// Edit replaces the description of a todo.
func Edit(ctx context.Context, id, description string) error {
	sync, err := synchronizer()
	if err != nil {
		return err
	}

	if !sync.Update(ctx, id, description) {
		return errors.Errorf("todo %s not updated", id)
	}
	return nil
}

// Remove deletes a todo.
func Remove(ctx context.Context, id string) error {
	sync, err := synchronizer()
	if err != nil {
		return err
	}

	if !sync.Delete(ctx, id) {
		return errors.Errorf("todo %s not deleted", id)
	}
	return nil
}

// Print writes the given todos as a table.
func Print(w io.Writer, items []todo.Item) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tDESCRIPTION")
	for _, item := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", item.ID, item.DisplayName(), item.Description)
	}
	return tw.Flush()
}

func synchronizer() (*todo.Synchronizer, error) {
	w, err := open()
	if err != nil {
		return nil, err
	}
	return w.Synchronizer(newLogger())
}
