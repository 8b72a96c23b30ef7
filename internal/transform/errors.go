package transform

import "fmt"

// SchemaError reports a mismatch between an expected column set and
// what was actually found, either in the source header or in the
// destination table.
type SchemaError struct {
	Subject string // the column or table at fault
	Detail  string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema mismatch: %s: %s", e.Subject, e.Detail)
}

// TransformError reports a sanitization failure beyond the tolerated
// exclusion policy, such as a batch where every row was excluded.
type TransformError struct {
	Detail string
}

func (e *TransformError) Error() string {
	return "transform: " + e.Detail
}
