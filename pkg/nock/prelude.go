// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package nock

import "nickandperla.net/nock/internal/stdlib"

// DefaultPrelude contains the standard formulas that are automatically
// loaded unless WithNoStdlib is given.
var DefaultPrelude = stdlib.Prelude

// preludeKey is the store metadata key holding a saved prelude override.
const preludeKey = "prelude"
