package desktop

import (
	"io"
	"os"
	"strings"
)

// String renders the file in .desktop format. Type and Name are always
// written, optional keys only when set. Values are not escaped.
func (f *File) String() string {
	var b strings.Builder
	b.WriteString("[" + SectionName + "]\n")
	writeLine(&b, "Type", f.Entry.Type)
	writeLine(&b, "Name", f.Entry.Name)

	for _, fd := range fields {
		if fd.flag != nil {
			if v := *fd.flag(&f.Entry); v != nil {
				writeLine(&b, fd.key, formatBool(*v))
			}
			continue
		}
		if v := *fd.str(&f.Entry); v != nil {
			writeLine(&b, fd.key, *v)
		}
	}

	return b.String()
}

func writeLine(b *strings.Builder, key, value string) {
	b.WriteString(key)
	b.WriteByte('=')
	b.WriteString(value)
	b.WriteByte('\n')
}

// WriteTo writes the rendered file to w
func (f *File) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, f.String())
	return int64(n), err
}

// Save writes the rendered file to path, replacing any existing content
func (f *File) Save(path string) error {
	if err := os.WriteFile(path, []byte(f.String()), 0644); err != nil {
		return &IOError{Path: path, Err: err}
	}
	return nil
}
