package utils

// NewNullString turns a string into a pointer, mapping the empty string to
// nil so optional columns are stored as NULL.
func NewNullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
