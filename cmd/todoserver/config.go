package main

import (
	"hash"
	"io"
	"strings"
	"time"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/hkdf"
)

const (
	dbname    = "todo.db"
	envPrefix = "TODOSERVER_"
)

var defaults = map[string]any{
	"address":                   "localhost:5000",
	"database_codec":            "msgpack",
	"page_size":                 100,
	"session.access_token_ttl":  "1h",
	"session.refresh_token_ttl": "720h",
}

// load reads the configuration file, when given, overlaid with the environment.
// Nested keys use a double underscore (e.g. TODOSERVER_SESSION__ACCESS_TOKEN_TTL).
func load(filename string) (*koanf.Koanf, error) {
	konf := koanf.New(".")
	if err := konf.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, errors.Wrap(err, "could not load defaults")
	}

	if filename != "" {
		if err := konf.Load(file.Provider(filename), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "could not load %s", filename)
		}
	}

	err := konf.Load(env.Provider(envPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)
		return strings.ReplaceAll(strings.ToLower(s), "__", ".")
	}), nil)
	return konf, errors.Wrap(err, "could not load environment")
}

func validate(konf *koanf.Koanf) error {
	if konf.String("secret_key") == "" {
		return errors.New("secret_key not found")
	}

	for _, key := range []string{"session.access_token_ttl", "session.refresh_token_ttl"} {
		if konf.Duration(key) <= time.Duration(0) {
			return errors.Errorf("invalid duration for %s", key)
		}
	}

	if konf.Int("page_size") <= 0 {
		return errors.New("page_size must be positive")
	}
	return nil
}

func kdf(l int, k []byte) []byte {
	nhash := func() hash.Hash {
		h, err := blake2b.New256(nil)
		if err != nil {
			panic(err)
		}
		return h
	}

	payload := make([]byte, l)

	kdf := hkdf.New(nhash, k, nil, nil)
	_, err := io.ReadFull(kdf, payload)
	if err != nil {
		panic(err)
	}

	return payload
}
