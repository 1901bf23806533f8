package credentials

import (
	"errors"

	"github.com/zalando/go-keyring"
)

// Keyring stores the token in the operating system keychain.
type Keyring struct {
	service string
	account string
}

// NewKeyring returns a Store backed by the OS keychain, keyed by the fixed
// service and account names.
func NewKeyring(service, account string) *Keyring {
	return &Keyring{service: service, account: account}
}

// Save stores the token in the keychain.
func (k *Keyring) Save(token string) error {
	if token == "" {
		return &Error{Op: "save", Err: errors.New("empty token")}
	}
	if err := keyring.Set(k.service, k.account, token); err != nil {
		return &Error{Op: "save", Err: err}
	}
	return nil
}

// Load reads the token from the keychain.
func (k *Keyring) Load() (string, error) {
	token, err := keyring.Get(k.service, k.account)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", &Error{Op: "load", Err: err}
	}
	return token, nil
}

// Delete removes the token from the keychain.
func (k *Keyring) Delete() error {
	err := keyring.Delete(k.service, k.account)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return &Error{Op: "delete", Err: err}
	}
	return nil
}
