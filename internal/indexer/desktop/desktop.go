package desktop

import (
	"errors"
	"fmt"
	"strings"
)

// Entry types accepted by Validate
const (
	TypeApplication = "Application"
	TypeLink        = "Link"
	TypeDirectory   = "Directory"
)

// SectionName is the only section interpreted by the codec
const SectionName = "Desktop Entry"

// ErrUnknownKey is returned when editing a key outside the fixed field set
var ErrUnknownKey = errors.New("unknown key")

// Entry represents the [Desktop Entry] section of a .desktop file.
// Optional fields are nil when the key is absent.
type Entry struct {
	Type            string  `yaml:"Type"`
	Version         *string `yaml:"Version,omitempty"`
	Name            string  `yaml:"Name"`
	GenericName     *string `yaml:"GenericName,omitempty"`
	Comment         *string `yaml:"Comment,omitempty"`
	Icon            *string `yaml:"Icon,omitempty"`
	Exec            *string `yaml:"Exec,omitempty"`
	Path            *string `yaml:"Path,omitempty"` // working directory
	Terminal        *bool   `yaml:"Terminal,omitempty"`
	Categories      *string `yaml:"Categories,omitempty"`
	Keywords        *string `yaml:"Keywords,omitempty"`
	StartupWMClass  *string `yaml:"StartupWMClass,omitempty"`
	URL             *string `yaml:"URL,omitempty"`
	MimeType        *string `yaml:"MimeType,omitempty"`
	Hidden          *bool   `yaml:"Hidden,omitempty"`
	OnlyShowIn      *string `yaml:"OnlyShowIn,omitempty"`
	NotShowIn       *string `yaml:"NotShowIn,omitempty"`
	DBusActivatable *bool   `yaml:"DBusActivatable,omitempty"`
	TryExec         *string `yaml:"TryExec,omitempty"`
	Actions         *string `yaml:"Actions,omitempty"`
}

// File is a parsed .desktop file. IconData is carried along but never read or written by the codec.
type File struct {
	Entry    Entry  `yaml:"Desktop Entry"`
	IconData []byte `yaml:"-"`
}

// New creates an Application entry with the defaults used for freshly created launchers
func New(name, exec string) *File {
	return &File{
		Entry: Entry{
			Type:            TypeApplication,
			Version:         String("1.0"),
			Name:            name,
			Exec:            String(exec),
			Terminal:        Bool(false),
			Hidden:          Bool(false),
			DBusActivatable: Bool(false),
		},
	}
}

// String returns a pointer to v
func String(v string) *string { return &v }

// Bool returns a pointer to v
func Bool(v bool) *bool { return &v }

// field binds an optional desktop key to its Entry storage.
// Exactly one of str and flag is set.
type field struct {
	key  string
	str  func(e *Entry) **string
	flag func(e *Entry) **bool
}

// fields lists the optional keys in serialization order
var fields = []field{
	{key: "Version", str: func(e *Entry) **string { return &e.Version }},
	{key: "GenericName", str: func(e *Entry) **string { return &e.GenericName }},
	{key: "Comment", str: func(e *Entry) **string { return &e.Comment }},
	{key: "Icon", str: func(e *Entry) **string { return &e.Icon }},
	{key: "Exec", str: func(e *Entry) **string { return &e.Exec }},
	{key: "Path", str: func(e *Entry) **string { return &e.Path }},
	{key: "Terminal", flag: func(e *Entry) **bool { return &e.Terminal }},
	{key: "Categories", str: func(e *Entry) **string { return &e.Categories }},
	{key: "Keywords", str: func(e *Entry) **string { return &e.Keywords }},
	{key: "StartupWMClass", str: func(e *Entry) **string { return &e.StartupWMClass }},
	{key: "URL", str: func(e *Entry) **string { return &e.URL }},
	{key: "MimeType", str: func(e *Entry) **string { return &e.MimeType }},
	{key: "Hidden", flag: func(e *Entry) **bool { return &e.Hidden }},
	{key: "OnlyShowIn", str: func(e *Entry) **string { return &e.OnlyShowIn }},
	{key: "NotShowIn", str: func(e *Entry) **string { return &e.NotShowIn }},
	{key: "DBusActivatable", flag: func(e *Entry) **bool { return &e.DBusActivatable }},
	{key: "TryExec", str: func(e *Entry) **string { return &e.TryExec }},
	{key: "Actions", str: func(e *Entry) **string { return &e.Actions }},
}

// listKeys are the fields holding semicolon-separated lists
var listKeys = map[string]bool{
	"Categories": true,
	"Keywords":   true,
	"MimeType":   true,
	"OnlyShowIn": true,
	"NotShowIn":  true,
}

func lookupField(key string) (field, bool) {
	for _, f := range fields {
		if f.key == key {
			return f, true
		}
	}
	return field{}, false
}

// Keys returns every key the codec understands, in serialization order
func Keys() []string {
	keys := make([]string, 0, len(fields)+2)
	keys = append(keys, "Type", "Name")
	for _, f := range fields {
		keys = append(keys, f.key)
	}
	return keys
}

// parseBool maps only the exact literal "true" to true
func parseBool(value string) bool {
	return value == "true"
}

func formatBool(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

// Get returns the serialized value of key and whether it is present
func (e *Entry) Get(key string) (string, bool) {
	switch key {
	case "Type":
		return e.Type, true
	case "Name":
		return e.Name, true
	}

	f, ok := lookupField(key)
	if !ok {
		return "", false
	}
	if f.flag != nil {
		v := *f.flag(e)
		if v == nil {
			return "", false
		}
		return formatBool(*v), true
	}
	v := *f.str(e)
	if v == nil {
		return "", false
	}
	return *v, true
}

// Set assigns key from its textual value. Boolean keys follow the parser's rule.
func (e *Entry) Set(key, value string) error {
	switch key {
	case "Type":
		e.Type = value
		return nil
	case "Name":
		e.Name = value
		return nil
	}

	f, ok := lookupField(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if f.flag != nil {
		*f.flag(e) = Bool(parseBool(value))
	} else {
		*f.str(e) = String(value)
	}
	return nil
}

// Unset removes an optional key. Type and Name are always present and cannot be unset.
func (e *Entry) Unset(key string) error {
	if key == "Type" || key == "Name" {
		return &InvalidValueError{Field: key, Value: ""}
	}

	f, ok := lookupField(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if f.flag != nil {
		*f.flag(e) = nil
	} else {
		*f.str(e) = nil
	}
	return nil
}

// List returns the semicolon-separated list stored under key.
// It is nil for absent keys and for keys that are not list fields.
func (e *Entry) List(key string) []string {
	if !listKeys[key] {
		return nil
	}
	raw, ok := e.Get(key)
	if !ok {
		return nil
	}
	return SplitList(raw)
}

// CategoryList returns the entry's categories
func (e *Entry) CategoryList() []string {
	return e.List("Categories")
}

// SplitList splits a semicolon-separated value, trimming segments and dropping empty ones
func SplitList(raw string) []string {
	parts := strings.Split(raw, ";")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}
