package desktop

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// ParseFile parses a single .desktop file
func ParseFile(path string) (*File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Path: path, Err: err}
	}
	defer file.Close()

	f, err := Parse(file)
	if ioErr, ok := err.(*IOError); ok {
		ioErr.Path = path
	}
	return f, err
}

// ParseString parses .desktop content held in memory
func ParseString(content string) (*File, error) {
	return Parse(strings.NewReader(content))
}

// Parse reads .desktop content from r.
//
// Only the [Desktop Entry] section is interpreted. Keys outside the fixed
// field set, comments and other sections are dropped. A repeated key keeps
// its last value. Parsing fails only when no Name key is present.
func Parse(r io.Reader) (*File, error) {
	values := make(map[string]string)
	reader := bufio.NewReader(r)
	var section string

	for {
		raw, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, &IOError{Err: err}
		}
		section = parseLine(values, section, raw)
		if err == io.EOF {
			break
		}
	}

	return fromValues(values)
}

// parseLine records a key of the [Desktop Entry] section and returns the
// section the next line belongs to
func parseLine(values map[string]string, section, raw string) string {
	line := strings.TrimSpace(raw)

	// Skip empty lines and comments
	if line == "" || strings.HasPrefix(line, "#") {
		return section
	}

	if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
		return line[1 : len(line)-1]
	}

	if section != SectionName {
		return section
	}

	if key, value, ok := strings.Cut(line, "="); ok {
		values[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return section
}

func fromValues(values map[string]string) (*File, error) {
	name, ok := values["Name"]
	if !ok {
		return nil, &MissingFieldError{Field: "Name"}
	}

	entry := Entry{
		Type: TypeApplication,
		Name: name,
	}
	if t, ok := values["Type"]; ok {
		entry.Type = t
	}

	for _, f := range fields {
		v, ok := values[f.key]
		if !ok {
			continue
		}
		if f.flag != nil {
			*f.flag(&entry) = Bool(parseBool(v))
		} else {
			*f.str(&entry) = String(v)
		}
	}

	return &File{Entry: entry}, nil
}
