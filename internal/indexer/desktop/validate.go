package desktop

// Validate checks the semantic rules of an entry and returns the first violation.
// Only Name, Type, Exec and URL are inspected.
func Validate(e *Entry) error {
	if e.Name == "" {
		return &MissingFieldError{Field: "Name"}
	}

	switch e.Type {
	case TypeApplication, TypeLink, TypeDirectory:
	default:
		return &InvalidValueError{Field: "Type", Value: e.Type}
	}

	if e.Type == TypeApplication && e.Exec == nil {
		return &MissingFieldError{Field: "Exec"}
	}

	if e.Type == TypeLink && e.URL == nil {
		return &MissingFieldError{Field: "URL"}
	}

	return nil
}

// Validate checks the file's entry, see Validate
func (f *File) Validate() error {
	return Validate(&f.Entry)
}
