// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"time"

	"github.com/roach88/sieve/internal/accessor"
)

// Address is the nested record of Person.
type Address struct {
	City string
	Zip  string
}

// Person is the record type most tests filter and sort.
type Person struct {
	Name     string
	Age      int
	Nickname *string
	Score    *float64
	Active   bool
	Joined   time.Time
	Address  *Address
	Tags     []string
}

var addresses = accessor.NewRegistry[Address]().
	Text("City", func(a Address) string { return a.City }).
	Text("Zip", func(a Address) string { return a.Zip })

var people = accessor.Embed(
	accessor.NewRegistry[Person]().
		Text("Name", func(p Person) string { return p.Name }).
		Int("Age", func(p Person) int64 { return int64(p.Age) }).
		NullableText("Nickname", func(p Person) (string, bool) {
			if p.Nickname == nil {
				return "", false
			}
			return *p.Nickname, true
		}).
		NullableFloat("Score", func(p Person) (float64, bool) {
			if p.Score == nil {
				return 0, false
			}
			return *p.Score, true
		}).
		Bool("Active", func(p Person) bool { return p.Active }).
		Time("Joined", func(p Person) time.Time { return p.Joined }).
		Opaque("Tags", func(p Person) any {
			if p.Tags == nil {
				return nil
			}
			return p.Tags
		}),
	"Address",
	func(p Person) (Address, bool) {
		if p.Address == nil {
			return Address{}, false
		}
		return *p.Address, true
	},
	addresses,
)

// People returns the accessor registry for Person.
func People() *accessor.Registry[Person] {
	return people
}

// Scenario returns the three-person store used across view and filter tests:
// Bob (30), ann (25), Carl (25), in that order.
func Scenario() []Person {
	return []Person{
		{Name: "Bob", Age: 30},
		{Name: "ann", Age: 25},
		{Name: "Carl", Age: 25},
	}
}

// Names projects a slice of people to their names, preserving order.
func Names(ps []Person) []string {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.Name
	}
	return names
}

// Ptr returns a pointer to v.
func Ptr[V any](v V) *V {
	return &v
}
