package service

// ValidationErrors carries per-field validation messages. It satisfies the
// error interface so services can return it through the usual error path;
// handlers unwrap it into the field map of the response envelope. No
// database access happens once validation has failed.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	return "validation failed"
}

// add records a message for a field, keeping the first message when a field
// fails more than one rule.
func (v ValidationErrors) add(field, message string) {
	if _, ok := v[field]; !ok {
		v[field] = message
	}
}

// orNil returns the map as an error, or nil when no rule failed.
func (v ValidationErrors) orNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}
