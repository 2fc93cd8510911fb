package view

import (
	"fmt"
	"log/slog"
)

type settings struct {
	dispatch func(func())
	logger   *slog.Logger
	ids      IDGenerator
	key      any
}

// Option configures a View.
type Option func(*settings)

// WithDispatch routes notification delivery through dispatch. The view calls
// dispatch once per notification, after the mutation has completed, with a
// function that delivers the notification to every observer subscribed at
// that time.
//
// Use this to hand events to a UI thread or an event loop.
func WithDispatch(dispatch func(func())) Option {
	return func(s *settings) {
		s.dispatch = dispatch
	}
}

// WithLogger sets the logger for recompute and mutation events.
//
// Default: slog.Default()
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithIDGenerator sets the generator of the view ID.
//
// Default: UUIDv7Generator
func WithIDGenerator(ids IDGenerator) Option {
	return func(s *settings) {
		s.ids = ids
	}
}

// WithKey sets the value-equality key used by Remove, de-duplication and
// Duplicates. Records with equal keys are value-equal.
//
// Default: the registry fingerprint of every field.
func WithKey[T any](key func(T) string) Option {
	return func(s *settings) {
		s.key = key
	}
}

func keyFunc[T any](s settings, fallback func(T) string) func(T) string {
	if s.key == nil {
		return fallback
	}
	key, ok := s.key.(func(T) string)
	if !ok {
		panic(fmt.Sprintf("view: WithKey given %T for a view of %T", s.key, *new(T)))
	}
	return key
}
