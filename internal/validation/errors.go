package validation

import "sort"

// Errors maps a field name (or GeneralKey) to its ordered messages.
type Errors map[string][]string

// General builds an Errors value holding a single general message.
func General(msg string) Errors {
	return Errors{GeneralKey: {msg}}
}

// Has reports whether field has at least one message.
func (e Errors) Has(field string) bool {
	return len(e[field]) > 0
}

// Empty reports whether no field has a message.
func (e Errors) Empty() bool {
	for _, msgs := range e {
		if len(msgs) > 0 {
			return false
		}
	}
	return true
}

// Fields returns the names of fields with messages, sorted.
func (e Errors) Fields() []string {
	fields := make([]string, 0, len(e))
	for f, msgs := range e {
		if len(msgs) > 0 {
			fields = append(fields, f)
		}
	}
	sort.Strings(fields)
	return fields
}

// Clone returns a deep copy.
func (e Errors) Clone() Errors {
	if e == nil {
		return Errors{}
	}
	out := make(Errors, len(e))
	for f, msgs := range e {
		cp := make([]string, len(msgs))
		copy(cp, msgs)
		out[f] = cp
	}
	return out
}

// Collect builds an Errors value from named validations. Every field is
// present in the result, valid ones with an empty list.
func Collect(fields map[string]*Validation) (Errors, bool) {
	errs := make(Errors, len(fields))
	valid := true
	for name, v := range fields {
		errs[name] = v.Errors()
		if !v.IsValid() {
			valid = false
		}
	}
	return errs, valid
}
