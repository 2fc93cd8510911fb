// Package queryir defines the serializable filter and sort specifications
// consumed by the predicate compiler, the comparator and the materialized view.
//
// ARCHITECTURE:
//
// queryir is the contract between whoever builds a query and whatever
// evaluates it:
//
//	[JSON wire format] ─┐
//	[$filter text]     ─┼→ [queryir.Group / SortSpec] → [predicate / ordering] → [view]
//	[Go literals]      ─┘
//
// Nothing in this package knows about record types. Property names are
// resolved later against an accessor registry.
//
// FILTER TREE:
//
// A Group holds direct predicates and nested groups joined by one logical
// operator (And, Or). Group.Tree converts it into the sealed Node variant:
//
//	Leaf{Predicate}             - one (property, operator, literal) triple
//	Branch{Logic, Children}     - leaves first, then nested branches
//
// Node is a sealed interface using the marker method pattern, so compilers
// can switch over it exhaustively.
//
// EMPTY GROUPS:
//
// A group with no predicates and no subgroups means "no constraint". A group
// whose operator is None but which has children is rejected: there is no
// implicit default combinator.
//
// IDENTITY:
//
// Fingerprint hashes the canonical JSON of a normalized group. Two groups
// with equal fingerprints filter any record identically, which lets the view
// skip recomputation when the same filter is applied twice.
//
// ERRORS:
//
// All compile-time failures are *Error values carrying one ErrorCode:
// UNKNOWN_PROPERTY, UNSUPPORTED_OPERATOR_FOR_TYPE, NOT_SORTABLE,
// NOT_IMPLEMENTED or INVALID_ARGUMENT.
package queryir
