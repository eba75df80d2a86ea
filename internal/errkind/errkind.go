// Package errkind classifies failures by the scope they terminate.
//
// A classified error keeps its message and cause chain; callers test the class
// with errors.Is against one of the sentinels below.
package errkind

import (
	"github.com/cockroachdb/errors"
)

var (
	// ErrConfiguration marks a bad or missing peer path, an unsupported peer
	// extension, or a missing credential. Fatal before any Session exists.
	ErrConfiguration = errors.New("configuration error")
	// ErrConnection marks a peer spawn, handshake or enumeration failure.
	// Fatal to the Session.
	ErrConnection = errors.New("connection error")
	// ErrCompletion marks a failed completion request. Fatal to the current query.
	ErrCompletion = errors.New("completion error")
	// ErrInvocation marks a failed tool call, either reported by the peer or
	// caused by a broken channel. Recovered into transcript text.
	ErrInvocation = errors.New("invocation error")
	// ErrNotFound marks a direct invocation naming an unknown capability.
	ErrNotFound = errors.New("not found")
)

// Configuration marks err as a configuration error.
func Configuration(err error) error { return mark(err, ErrConfiguration) }

// Connection marks err as a connection error.
func Connection(err error) error { return mark(err, ErrConnection) }

// Completion marks err as a completion error.
func Completion(err error) error { return mark(err, ErrCompletion) }

// Invocation marks err as an invocation error.
func Invocation(err error) error { return mark(err, ErrInvocation) }

// NotFound returns a NotFound error for the named capability.
func NotFound(name string) error {
	return errors.Mark(errors.Errorf("tool %s does not exist", name), ErrNotFound)
}

func mark(err, kind error) error {
	if err == nil {
		return nil
	}
	return errors.Mark(err, kind)
}

// Kind returns the sentinel err is marked with, or nil if it is unclassified.
func Kind(err error) error {
	for _, k := range []error{ErrConfiguration, ErrConnection, ErrCompletion, ErrInvocation, ErrNotFound} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
