package schema

import "slices"

// Section header keywords, in the order a complete deck lists them.
const (
	SectionRunspec  = "RUNSPEC"
	SectionGrid     = "GRID"
	SectionEdit     = "EDIT"
	SectionProps    = "PROPS"
	SectionRegions  = "REGIONS"
	SectionSolution = "SOLUTION"
	SectionSummary  = "SUMMARY"
	SectionSchedule = "SCHEDULE"
)

// Sections is the ordered list of section header keywords.
var Sections = []string{
	SectionRunspec,
	SectionGrid,
	SectionEdit,
	SectionProps,
	SectionRegions,
	SectionSolution,
	SectionSummary,
	SectionSchedule,
}

// IsSectionHeader reports whether name opens a section.
func IsSectionHeader(name string) bool {
	return slices.Contains(Sections, name)
}
