// Package stdlib holds the prelude of named formulas loaded into every
// runtime unless it is disabled.
package stdlib

import _ "embed"

// Prelude is the definitions source of the standard formulas.
//
//go:embed prelude.nock
var Prelude string
