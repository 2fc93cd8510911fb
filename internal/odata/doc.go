// Package odata translates OData-style query options into filter groups,
// sort specs and pagination for a view.
//
// Supported options, consumed in the order given:
//
//	$filter   Name eq 'ann' and (Age gt 20 or startswith(Name,'c'))
//	$orderby  Age desc,Name asc
//	$skip     10
//	$top      5
//
// Unknown options are ignored. Option names match with or without the
// leading '$' and regardless of case.
package odata
