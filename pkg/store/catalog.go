package store

import (
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/actionsemantics/sage/pkg/common/errors"
	"github.com/actionsemantics/sage/pkg/registry"
)

// The catalog rows make verb/role registrations durable across instances.
// TripleStore satisfies registry.CatalogStore.

// UpsertVerb persists a verb definition keyed by gerund.
func (s *TripleStore) UpsertVerb(def *registry.VerbDefinition) error {
	data, err := json.Marshal(def)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(verbKey(def.Gerund), data)
	})
}

// LookupVerb loads a verb definition by gerund.
func (s *TripleStore) LookupVerb(gerund string) (*registry.VerbDefinition, error) {
	var def registry.VerbDefinition
	err := s.getJSON(verbKey(gerund), &def)
	if err == badger.ErrKeyNotFound {
		return nil, fmt.Errorf("%w: verb %q", errors.ErrNotFound, gerund)
	}
	if err != nil {
		return nil, err
	}
	return &def, nil
}

// UpsertRole persists a role definition keyed by name.
func (s *TripleStore) UpsertRole(def *registry.RoleDefinition) error {
	data, err := json.Marshal(def)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(roleKey(def.Name), data)
	})
}

// LookupRole loads a role definition by name.
func (s *TripleStore) LookupRole(name string) (*registry.RoleDefinition, error) {
	var def registry.RoleDefinition
	err := s.getJSON(roleKey(name), &def)
	if err == badger.ErrKeyNotFound {
		return nil, fmt.Errorf("%w: role %q", errors.ErrNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	return &def, nil
}

func (s *TripleStore) getJSON(key []byte, dst any) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dst)
		})
	})
}
