package main

import (
	"fmt"
	"log"

	"github.com/asdine/storm/v3"
	"github.com/asdine/storm/v3/q"
	"github.com/muesli/coral"
	"github.com/pkg/errors"
	"github.com/riekert/todo/internal/database"
	"github.com/riekert/todo/internal/model"
)

var codec string

func main() {
	c := &coral.Command{
		Use:   "rmuser DATABASE USERNAME",
		Short: "Remove a user, their todos and their sessions from the database",
		Args:  coral.ExactArgs(2),
		RunE: func(_ *coral.Command, args []string) error {
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

			// Fetch user
			var user model.User
			err = db.One("Username", args[1], &user)
			if err != nil {
				if err == storm.ErrNotFound {
					fmt.Println("No account for this username")
					return nil
				}
				return errors.Wrap(err, "find user by username")
			}

			fmt.Println("User found:", user.ID)

			// Deleting user's todos
			err = db.Select(q.Eq("Owner", user.Username)).Delete(&model.Todo{})
			if err != nil && err != storm.ErrNotFound {
				return errors.Wrap(err, "delete todos")
			}
			fmt.Println("Todos removed")

			// Deleting user's sessions
			err = db.Select(q.Eq("UserID", user.ID)).Delete(&model.Session{})
			if err != nil && err != storm.ErrNotFound {
				return errors.Wrap(err, "delete sessions")
			}
			fmt.Println("Sessions removed")

			// Delete user
			err = db.DeleteStruct(&user)
			if err != nil && err != storm.ErrNotFound {
				return errors.Wrap(err, "delete user")
			}
			fmt.Println("User removed")

			return nil
		},
	}
	c.Flags().StringVar(&codec, "codec", database.CodecMsgpack, "Storage format of the database (msgpack or cbor)")

	if err := c.Execute(); err != nil {
		log.Fatalf("%+v", err)
	}
}
