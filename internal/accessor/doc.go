// Package accessor resolves property names on a record type to typed getters.
//
// A Registry is built once per record type by registering each field with a
// statically typed getter. Filters and sorts then look fields up by name and
// read Values without reflection:
//
//	people := accessor.NewRegistry[Person]().
//		Text("Name", func(p Person) string { return p.Name }).
//		Int("Age", func(p Person) int64 { return int64(p.Age) })
//
// Nested records are attached with Embed, which makes dotted names such as
// "Address.City" resolvable by path traversal.
package accessor
