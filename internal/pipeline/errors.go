package pipeline

import (
	"errors"

	"github.com/retailbase/salesload/internal/db"
	"github.com/retailbase/salesload/internal/extract"
	"github.com/retailbase/salesload/internal/transform"
)

// Exit codes distinguish the failing stage for callers scripting
// around the tool.
const (
	ExitOK        = 0
	ExitUsage     = 1
	ExitExtract   = 2
	ExitSchema    = 3
	ExitTransform = 4
	ExitLoad      = 5
)

// Classify maps a pipeline error to the failing stage name and its
// exit code. Errors outside the taxonomy (configuration, usage) fall
// through to the generic code.
func Classify(err error) (stage string, code int) {
	var extractErr *extract.ExtractionError
	var schemaErr *transform.SchemaError
	var transformErr *transform.TransformError
	var loadErr *db.LoadError

	switch {
	case errors.As(err, &extractErr):
		return "extract", ExitExtract
	case errors.As(err, &schemaErr):
		return "schema", ExitSchema
	case errors.As(err, &transformErr):
		return "transform", ExitTransform
	case errors.As(err, &loadErr):
		return "load", ExitLoad
	default:
		return "run", ExitUsage
	}
}
