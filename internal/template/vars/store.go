// Package vars holds the variable store shared by resolution, hook scripts
// and expansion during one generation run.
package vars

import (
	"fmt"

	"github.com/tacogips/projgen/internal/debug"
	"github.com/tacogips/projgen/internal/template/model"
)

var log = debug.Logger("vars")

// Variables is a read-only view of resolved template variables.
type Variables interface {
	// Get retrieves a variable value by name.
	Get(name string) (model.Value, bool)

	// GetString retrieves a string variable.
	// Returns error if variable not found or kind mismatch.
	GetString(name string) (string, error)

	// GetBool retrieves a boolean variable.
	// Returns error if variable not found or kind mismatch.
	GetBool(name string) (bool, error)

	// Bindings returns all variables as plain bools and strings.
	Bindings() map[string]interface{}
}

// Store is an insertion-ordered mapping from variable name to value.
//
// A value, once present, is never replaced by Insert. Set replaces it only
// with a value of the same kind. The store is not safe for concurrent use;
// a run is single-threaded.
type Store struct {
	names []string
	data  map[string]model.Value
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{data: make(map[string]model.Value)}
}

// Insert adds name with value unless name already has a value.
// It reports whether the value was stored.
func (s *Store) Insert(name string, value model.Value) bool {
	if _, ok := s.data[name]; ok {
		log.Debug().Str("name", name).Msg("insert skipped, already set")
		return false
	}
	s.names = append(s.names, name)
	s.data[name] = value
	return true
}

// Set stores value under name. An existing value may only be replaced by a
// value of the same kind.
func (s *Store) Set(name string, value model.Value) error {
	old, ok := s.data[name]
	if !ok {
		s.Insert(name, value)
		return nil
	}
	if old.Kind() != value.Kind() {
		return &KindMismatchError{Name: name, Have: old.Kind(), Got: value.Kind()}
	}
	s.data[name] = value
	log.Debug().Str("name", name).Str("value", value.String()).Msg("variable replaced")
	return nil
}

// Get retrieves a variable value by name.
func (s *Store) Get(name string) (model.Value, bool) {
	v, ok := s.data[name]
	return v, ok
}

// Has reports whether name has a value.
func (s *Store) Has(name string) bool {
	_, ok := s.data[name]
	return ok
}

// GetString retrieves a string variable.
func (s *Store) GetString(name string) (string, error) {
	v, ok := s.data[name]
	if !ok {
		return "", fmt.Errorf("variable not found: %s", name)
	}
	if v.Kind() != model.KindString {
		return "", fmt.Errorf("variable %s is not a string (got %s)", name, v.Kind())
	}
	return v.Str(), nil
}

// GetBool retrieves a boolean variable.
func (s *Store) GetBool(name string) (bool, error) {
	v, ok := s.data[name]
	if !ok {
		return false, fmt.Errorf("variable not found: %s", name)
	}
	if v.Kind() != model.KindBool {
		return false, fmt.Errorf("variable %s is not a boolean (got %s)", name, v.Kind())
	}
	return v.Bool(), nil
}

// Names returns variable names in insertion order.
func (s *Store) Names() []string {
	return append([]string(nil), s.names...)
}

// Len returns the number of variables.
func (s *Store) Len() int {
	return len(s.names)
}

// Bindings returns all variables as plain bools and strings.
func (s *Store) Bindings() map[string]interface{} {
	result := make(map[string]interface{}, len(s.data))
	for k, v := range s.data {
		result[k] = v.Interface()
	}
	return result
}

// KindMismatchError is returned by Set when the new value's kind differs
// from the stored one.
type KindMismatchError struct {
	Name string
	Have model.Kind
	Got  model.Kind
}

// Error implements the error interface.
func (e *KindMismatchError) Error() string {
	return fmt.Sprintf("variable %s holds a %s, cannot set a %s", e.Name, e.Have, e.Got)
}
