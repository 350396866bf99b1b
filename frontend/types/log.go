package types

import "github.com/cottand/typealg/internal/log"

var logger = log.DefaultLogger.With("section", "types")
