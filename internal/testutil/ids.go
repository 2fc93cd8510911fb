package testutil

// DefaultViewID is the ID a FixedIDGenerator uses when given none.
const DefaultViewID = "test-view"

// FixedIDGenerator returns the same view ID every time.
//
// Views built with it stamp identical IDs on every notification, so the
// same scenario produces byte-identical traces.
type FixedIDGenerator struct {
	id string
}

// NewFixedIDGenerator creates a generator for id.
// If id is empty, Generate returns DefaultViewID.
func NewFixedIDGenerator(id string) *FixedIDGenerator {
	if id == "" {
		id = DefaultViewID
	}
	return &FixedIDGenerator{id: id}
}

// Generate returns the fixed ID.
func (g *FixedIDGenerator) Generate() string {
	return g.id
}
