package client

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

// Backup fetchs all the todos of the user and store them in the current directory.
func Backup(ctx context.Context) error {
	w, err := open()
	if err != nil {
		return err
	}

	filename, err := w.Backup(ctx, ".")
	if err != nil {
		return err
	}

	fmt.Println("Todos saved in", filename)
	return nil
}

// Backup writes all the todos of the user in a timestamped file of the given directory.
func (w *Workspace) Backup(ctx context.Context, dir string) (string, error) {
	sync, err := w.Synchronizer(newLogger())
	if err != nil {
		return "", err
	}

	if !sync.FetchAll(ctx) {
		return "", errors.New("could not fetch todos")
	}

	filename := filepath.Join(dir, fmt.Sprintf("todos_%s.json", time.Now().Format("20060102150405")))
	return filename, errors.Wrap(backup(sync.Items(), filename), "todos")
}

func backup(v any, filename string) error {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "could not serialize value to backup")
	}

	f, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "could not create backup file")
	}
	defer f.Close()

	_, err = f.Write(payload)
	if err != nil {
		return errors.Wrap(err, "could not write backuped values")
	}

	return errors.Wrap(f.Sync(), "could not backup")
}
