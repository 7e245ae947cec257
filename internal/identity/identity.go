package identity

import (
	"errors"
	"fmt"
	"strings"
)

// Guest is the identity key used when no authenticated identity is present.
const Guest Key = "guest"

// NamespaceFavorites scopes the per-identity favorites records.
const NamespaceFavorites = "favorites"

// keyPrefix namespaces every record this service writes to a shared store.
const keyPrefix = "mealquest"

const separator = ":"

// Longest parts a storage record can hold; they match the favorite_sets
// column sizes.
const (
	MaxNamespaceLen = 50
	MaxIdentityLen  = 128
)

// ErrInvalidKey is returned when a storage key fails boundary validation.
var ErrInvalidKey = errors.New("invalid storage key")

// Key identifies whose favorites are being read or written.
type Key string

// Derive computes the identity key for the given user ID, falling back to
// Guest when the ID is empty.
func Derive(userID string) Key {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Guest
	}
	return Key(userID)
}

// IsGuest reports whether k is the guest sentinel.
func (k Key) IsGuest() bool {
	return k == Guest
}

func (k Key) String() string {
	return string(k)
}

// StorageKey is a validated (namespace, identity) pair.
type StorageKey struct {
	Namespace string
	Identity  Key
}

// NewStorageKey validates both parts before they are combined. Parts must
// fit their columns and may not contain the separator, so two different
// pairs can never render to the same record name.
func NewStorageKey(namespace string, key Key) (StorageKey, error) {
	if err := validatePart("namespace", namespace, MaxNamespaceLen); err != nil {
		return StorageKey{}, err
	}
	if err := validatePart("identity", string(key), MaxIdentityLen); err != nil {
		return StorageKey{}, err
	}
	return StorageKey{Namespace: namespace, Identity: key}, nil
}

// FavoritesKey is shorthand for NewStorageKey(NamespaceFavorites, key).
func FavoritesKey(key Key) (StorageKey, error) {
	return NewStorageKey(NamespaceFavorites, key)
}

// String renders the key as a flat record name, e.g.
// "mealquest:favorites:guest".
func (s StorageKey) String() string {
	return keyPrefix + separator + s.Namespace + separator + string(s.Identity)
}

func validatePart(field, value string, maxLen int) error {
	switch {
	case value == "":
		return fmt.Errorf("%w: %s is empty", ErrInvalidKey, field)
	case len(value) > maxLen:
		return fmt.Errorf("%w: %s is longer than %d bytes", ErrInvalidKey, field, maxLen)
	case strings.TrimSpace(value) != value:
		return fmt.Errorf("%w: %s has surrounding whitespace", ErrInvalidKey, field)
	case strings.Contains(value, separator):
		return fmt.Errorf("%w: %s contains %q", ErrInvalidKey, field, separator)
	}
	return nil
}
