// Package predicate compiles filter predicates and groups into tests over
// records.
//
// Compilation resolves every property through an accessor.Registry, checks
// that each operator applies to the field's kind, and coerces literals, so
// all errors surface before a test ever runs. The resulting Test is
// deterministic and has no side effects.
//
// A nil Test means "no constraint": the None operator, empty groups and
// groups made only of None predicates all compile to nil.
package predicate
