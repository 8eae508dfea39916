package main

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/asdine/storm/v3"
	"github.com/pkg/errors"
	"github.com/riekert/todo/internal/database"
	"github.com/riekert/todo/internal/model"
	"github.com/riekert/todo/pkg/stormsql"
	"github.com/riekert/todo/pkg/structs"
	"github.com/spf13/cobra"
)

// go run tools/console/main.go todo.db " SELECT Description FROM todos WHERE Owner = 'george' AND UpdatedAt > '2024-02-16 20:52:55' ORDER BY Sequence;  "

var codec string

func main() {
	c := &cobra.Command{
		Use:   "console DATABASE QUERY",
		Short: "SQL console for todo database",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			//
			//
			sc, err := stormsql.ParseSelect(args[1])
			if err != nil {
				return err
			}

			if record(sc.Tablename) == nil {
				return errors.Errorf("unknown tablename: %s", sc.Tablename)
			}
			if err = sc.Validate(record(sc.Tablename)); err != nil {
				return err
			}

			//
			//
			c, err := database.Codec(codec)
			if err != nil {
				return err
			}

			fmt.Println("Opening", args[0])
			db, err := storm.Open(args[0], storm.Codec(c))
			if err != nil {
				return errors.Wrap(err, "could not open database")
			}
			defer db.Close()

			//
			// Prepare request
			//

			query := db.Select(sc.Matcher)
			if sc.Skip > 0 {
				query.Skip(sc.Skip)
			}
			if sc.Limit > 0 {
				query.Limit(sc.Limit)
			}
			if len(sc.OrderBy) > 0 {
				query.OrderBy(sc.OrderBy...)
				if sc.OrderByReversed {
					query.Reverse()
				}
			}

			// Execute

			if sc.Count {
				return count(sc, query)
			}

			return list(sc, query)
		},
	}
	c.Flags().StringVar(&codec, "codec", database.CodecMsgpack, "Storage format of the database (msgpack or cbor)")

	if err := c.Execute(); err != nil {
		log.Fatalf("%+v", err)
	}
}

func record(tablename string) any {
	switch tablename {
	case "users":
		return &model.User{}
	case "sessions":
		return &model.Session{}
	case "todos":
		return &model.Todo{}
	}
	return nil
}

func count(sc *stormsql.SelectClause, query storm.Query) error {
	records := record(sc.Tablename)
	if records == nil {
		return errors.Errorf("unknown tablename: %s", sc.Tablename)
	}

	n, err := query.Count(records)

	if err != nil {
		return errors.Wrap(err, "could not perform query")
	}

	fmt.Println("Count:", n)

	return nil
}

func list(sc *stormsql.SelectClause, query storm.Query) error {
	var records any
	switch sc.Tablename {
	case "users":
		records = &[]*model.User{}
	case "sessions":
		records = &[]*model.Session{}
	case "todos":
		records = &[]*model.Todo{}
	default:
		return errors.Errorf("unknown tablename: %s", sc.Tablename)
	}

	err := query.Find(records)
	if err == storm.ErrNotFound {
		fmt.Println("[]")
		return nil
	}

	if err != nil {
		return errors.Wrap(err, "could not perform query")
	}

	if users, ok := records.(*[]*model.User); ok {
		// Password hashes are never dumped.
		for _, user := range *users {
			if err = structs.SetField(user, "Password", ""); err != nil {
				return err
			}
		}
	}

	if len(sc.SelectedFields) > 0 {
		rows, err := sc.Project(records)
		if err != nil {
			return err
		}
		return jsondump(rows)
	}

	return jsondump(records)
}

func jsondump(v any) error {
	d, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "could not serialize records")
	}
	fmt.Println(string(d))
	return nil
}
