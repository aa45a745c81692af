// Package specdialog provides vocabulary predicates for discovery
// session entities: extracted actors and concepts, Given/When/Then
// scenarios, and non-functional constraints.
//
// Import this package to auto-register predicates:
//
//	import _ "github.com/c360studio/specdialog/vocabulary/specdialog"
package specdialog
