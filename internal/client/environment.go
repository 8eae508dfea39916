package client

import (
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

// An Environment holds the settings of the client read from environment variables.
type Environment struct {
	// Credentials is the path of the sealed credentials file.
	Credentials string `env:"TODOC_CREDENTIALS" envDefault:".todoc"`
	// Passphrase unseals the credentials file without prompting.
	Passphrase string `env:"TODOC_PASSPHRASE"`
	// Log is the log file of the text-based application.
	Log string `env:"TODOC_LOG" envDefault:"todoc.log"`
	// Reconcile is the reconciliation policy after mutations (local or refetch).
	Reconcile string `env:"TODOC_RECONCILE" envDefault:"local"`
}

var (
	bootstrap      sync.Once
	environment    Environment
	environmentErr error
)

// LoadEnvironment parses the environment variables once for the lifetime of the process.
func LoadEnvironment() (Environment, error) {
	bootstrap.Do(func() {
		environment, environmentErr = ParseEnvironment(nil)
	})
	return environment, environmentErr
}

// ParseEnvironment parses the given variables, or the process environment when nil.
func ParseEnvironment(variables map[string]string) (Environment, error) {
	var e Environment
	err := env.ParseWithOptions(&e, env.Options{Environment: variables})
	return e, errors.Wrap(err, "could not parse environment")
}
