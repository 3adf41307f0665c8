package schema

import "github.com/specialistvlad/deckgo/internal/value"

// Directive keywords are handled by the parser itself and never reach the deck.
const (
	Include = "INCLUDE"
	Paths   = "PATHS"
	EndInc  = "ENDINC"
	End     = "END"
)

// IsDirective reports whether name is a parser directive.
func IsDirective(name string) bool {
	switch name {
	case Include, Paths, EndInc, End:
		return true
	}
	return false
}

// Directive returns the schema used to read a directive's records.
func Directive(name string) (*Keyword, bool) {
	switch name {
	case Include:
		return &Keyword{
			Name:              Include,
			Records:           []Record{{Items: []Item{{Name: "IncludeFile", Type: value.String}}}},
			Size:              FixedSize(1),
			RequireTerminator: true,
		}, true
	case Paths:
		return &Keyword{
			Name: Paths,
			Records: []Record{{Items: []Item{
				{Name: "PathName", Type: value.String},
				{Name: "PathValue", Type: value.String},
			}}},
			Size: SlashTerminated(),
		}, true
	case EndInc, End:
		return &Keyword{Name: name, Size: FixedSize(0)}, true
	}
	return nil, false
}

// SectionHeader returns a record-less schema for a section header keyword. It
// is used when a registry does not describe the header itself.
func SectionHeader(name string) (*Keyword, bool) {
	if !IsSectionHeader(name) {
		return nil, false
	}
	return &Keyword{Name: name, Size: FixedSize(0)}, true
}
