// Package registry holds the keyword schemas a parse runs against.
//
// The Registry is populated at startup from manifest files through a Loader
// (see the hcldef and jsondef packages) or by direct Register calls, then
// validated once so that broken schemas surface before any deck is read.
// After loading it is only read and may be shared by concurrent parses.
package registry
