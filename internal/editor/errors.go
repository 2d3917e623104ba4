package editor

import "fmt"

// PersistenceError reports a feature table refusing a new feature
type PersistenceError struct {
	Layer       string
	Description string
	Err         error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("could not add feature to %s: %s", e.Layer, e.Description)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// QueryMismatchError reports an identify query for a new feature that did
// not come back with exactly one record
type QueryMismatchError struct {
	Layer     string
	FeatureID int64
	Count     int
}

func (e *QueryMismatchError) Error() string {
	return fmt.Sprintf("query for feature %d in %s expected 1 result, got %d", e.FeatureID, e.Layer, e.Count)
}
