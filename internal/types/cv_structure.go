//nolint:revive // types is a standard Go package name pattern
package types

// Section is one named region of a CV, located by line span.
type Section struct {
	Name      string `json:"name"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"` // exclusive
}

// CVStructure is the ordered list of sections detected in a CV.
// Detection guarantees at least one section: when no recognizable headers
// exist, a single "Body" section spans the whole text.
type CVStructure struct {
	Sections []Section `json:"sections"`
}

// SectionNames returns the section names in document order.
func (s *CVStructure) SectionNames() []string {
	names := make([]string, 0, len(s.Sections))
	for _, sec := range s.Sections {
		names = append(names, sec.Name)
	}
	return names
}

// Has reports whether a section with the given name was detected.
func (s *CVStructure) Has(name string) bool {
	for _, sec := range s.Sections {
		if sec.Name == name {
			return true
		}
	}
	return false
}
