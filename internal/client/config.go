package client

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/chzyer/readline"
	sargon2 "github.com/mdouchement/simple-argon2"
	"github.com/pkg/errors"
	"github.com/riekert/todo/pkg/libtodo"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const saltKeyLength = 16

// A Config holds client's configuration.
type Config struct {
	Endpoint string          `json:"endpoint"`
	Username string          `json:"username"`
	Session  libtodo.Session `json:"session"`
}

// A Store reads and writes the sealed credentials file.
// The passphrase is asked once and kept in memory.
type Store struct {
	filename   string
	passphrase []byte
}

// NewStore returns a new Store for the given environment.
func NewStore(e Environment) *Store {
	s := &Store{filename: e.Credentials}
	if e.Passphrase != "" {
		s.passphrase = []byte(e.Passphrase)
	}
	return s
}

// Remove removes the credentials file.
func (s *Store) Remove() error {
	return os.Remove(s.filename)
}

// Load reads and unseals the credentials file.
func (s *Store) Load() (Config, error) {
	ciphertext, err := os.ReadFile(s.filename)
	if err != nil {
		return Config{}, errors.Wrap(err, "could not read credentials file")
	}

	passphrase, err := s.secret("Loading credentials from " + s.filename)
	if err != nil {
		return Config{}, err
	}

	return unseal(ciphertext, passphrase)
}

// Save seals and writes the credentials file.
func (s *Store) Save(cfg Config) error {
	passphrase, err := s.secret("Storing credentials in " + s.filename)
	if err != nil {
		return err
	}

	ciphertext, err := seal(cfg, passphrase)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(s.filename, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return errors.Wrapf(err, "could not create %s", s.filename)
	}
	defer f.Close()

	_, err = f.Write(ciphertext)
	if err != nil {
		return errors.Wrap(err, "could not store credentials")
	}

	return errors.Wrap(f.Sync(), "could not store credentials")
}

func (s *Store) secret(message string) ([]byte, error) {
	if s.passphrase != nil {
		return s.passphrase, nil
	}

	fmt.Println(message)
	passphrase, err := readline.Password("passphrase: ")
	if err != nil {
		return nil, errors.Wrap(err, "could not read passphrase from stdin")
	}

	s.passphrase = passphrase
	return passphrase, nil
}

func key(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 3, 64<<10, 2, chacha20poly1305.KeySize)
}

func seal(cfg Config, passphrase []byte) ([]byte, error) {
	payload, err := json.Marshal(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "could not serialize config")
	}

	//
	// Key derivation of passphrase

	salt, err := sargon2.GenerateRandomBytes(saltKeyLength)
	if err != nil {
		return nil, errors.Wrap(err, "could not generate salt for credentials")
	}

	//
	// Seal config

	aead, err := chacha20poly1305.NewX(key(passphrase, salt))
	if err != nil {
		return nil, errors.Wrap(err, "could not create AEAD")
	}
	nonce, err := sargon2.GenerateRandomBytes(uint32(aead.NonceSize()))
	if err != nil {
		return nil, errors.Wrap(err, "could not generate nonce for credentials")
	}

	ciphertext := aead.Seal(nil, nonce, payload, nil)
	ciphertext = append(nonce, ciphertext...)
	return append(salt, ciphertext...), nil
}

func unseal(ciphertext, passphrase []byte) (Config, error) {
	var cfg Config

	if len(ciphertext) < saltKeyLength+chacha20poly1305.NonceSizeX {
		return cfg, errors.New("credentials file is too short")
	}

	//
	// Key derivation of passphrase

	salt := ciphertext[:saltKeyLength]
	ciphertext = ciphertext[saltKeyLength:]

	//
	// Unseal config

	aead, err := chacha20poly1305.NewX(key(passphrase, salt))
	if err != nil {
		return cfg, errors.Wrap(err, "could not create AEAD")
	}

	nonce := ciphertext[:aead.NonceSize()]
	ciphertext = ciphertext[aead.NonceSize():]

	payload, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return cfg, errors.Wrap(err, "could not decrypt credentials file")
	}

	err = json.Unmarshal(payload, &cfg)
	return cfg, errors.Wrap(err, "could not parse config")
}
