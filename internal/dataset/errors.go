package dataset

import (
	"errors"
	"fmt"
)

// ErrUnknownDataset is returned for a dataset name the loader does not serve.
var ErrUnknownDataset = errors.New("unknown dataset")

// ErrUnknownProvider is returned when a provider id is not in the catalogue.
var ErrUnknownProvider = errors.New("unknown provider")

// LoadError reports a failed load of one dataset. It never affects other
// datasets loaded alongside it.
type LoadError struct {
	// Dataset is the logical dataset that failed.
	Dataset Kind

	// Sheet is the sheet name the dataset is read from.
	Sheet string

	// Op is the operation that failed (e.g., "Orders", "Providers").
	Op string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("dataset: %s failed for %s (sheet %q): %v", e.Op, e.Dataset, e.Sheet, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *LoadError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// wrapLoadError wraps err as a LoadError unless it already is one.
func wrapLoadError(kind Kind, sheet, op string, err error) error {
	if err == nil {
		return nil
	}

	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return err
	}

	return &LoadError{Dataset: kind, Sheet: sheet, Op: op, Err: err}
}
