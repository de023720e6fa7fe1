// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package evm

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/exp/maps"
)

// Interpreter implementations register themselves here from their package
// init code. Actors and hosts pick an implementation by name, so importing
// an implementation package is all it takes to make it available.

// InterpreterFactory creates an Interpreter from an implementation specific
// configuration. A nil configuration selects the defaults.
type InterpreterFactory func(config any) (Interpreter, error)

// NewInterpreter creates an instance of the interpreter registered under the
// given name (case-insensitive) using the optional configuration.
func NewInterpreter(name string, config ...any) (Interpreter, error) {
	if len(config) > 1 {
		return nil, fmt.Errorf("invalid configuration: too many arguments")
	}
	factory := GetInterpreterFactory(name)
	if factory == nil {
		return nil, fmt.Errorf("interpreter not found: %s", name)
	}
	var c any
	if len(config) > 0 {
		c = config[0]
	}
	return factory(c)
}

// GetInterpreterFactory returns the factory registered under the given name
// or nil if there is none.
func GetInterpreterFactory(name string) InterpreterFactory {
	registryLock.Lock()
	defer registryLock.Unlock()
	return registry[strings.ToLower(name)]
}

// GetAllRegisteredInterpreters returns a snapshot of the registry.
func GetAllRegisteredInterpreters() map[string]InterpreterFactory {
	registryLock.Lock()
	defer registryLock.Unlock()
	return maps.Clone(registry)
}

// RegisterInterpreterFactory binds a factory to a name. Names are not
// case-sensitive. Registering nil or reusing a name is an error.
func RegisterInterpreterFactory(name string, factory InterpreterFactory) error {
	key := strings.ToLower(name)
	if factory == nil {
		return fmt.Errorf("invalid initialization: cannot register nil-factory using `%s`", key)
	}
	registryLock.Lock()
	defer registryLock.Unlock()
	if _, found := registry[key]; found {
		return fmt.Errorf("invalid initialization: multiple factories registered for `%s`", key)
	}
	registry[key] = factory
	return nil
}

var (
	registry     = map[string]InterpreterFactory{}
	registryLock sync.Mutex
)
