package desktop_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/0xADE/ade-dentry/internal/indexer/desktop"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("String", func() {
	Context("when serializing a new application", func() {
		var text string

		BeforeEach(func() {
			text = desktop.New("My App", "myapp --flag").String()
		})

		It("should emit the header, Type and Name first", func() {
			lines := strings.Split(text, "\n")
			Expect(lines[0]).To(Equal("[Desktop Entry]"))
			Expect(lines[1]).To(Equal("Type=Application"))
			Expect(lines[2]).To(Equal("Name=My App"))
		})

		It("should emit the defaults in fixed order", func() {
			Expect(text).To(Equal(`[Desktop Entry]
Type=Application
Name=My App
Version=1.0
Exec=myapp --flag
Terminal=false
Hidden=false
DBusActivatable=false
`))
		})
	})

	Context("when Name is empty", func() {
		It("should still emit the Name line", func() {
			f := &desktop.File{Entry: desktop.Entry{Type: desktop.TypeDirectory}}
			Expect(f.String()).To(Equal("[Desktop Entry]\nType=Directory\nName=\n"))
		})
	})

	Context("when every field is set", func() {
		It("should follow the documented key order", func() {
			f := fullFile()
			var keys []string
			for _, line := range strings.Split(strings.TrimSpace(f.String()), "\n")[1:] {
				key, _, _ := strings.Cut(line, "=")
				keys = append(keys, key)
			}
			Expect(keys).To(Equal(desktop.Keys()))
		})
	})

	It("should write the same text through WriteTo", func() {
		f := fullFile()
		var buf bytes.Buffer
		n, err := f.WriteTo(&buf)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(BeEquivalentTo(len(f.String())))
		Expect(buf.String()).To(Equal(f.String()))
	})
})

var _ = Describe("Round trip", func() {
	DescribeTable("parse after serialize yields an equal entry",
		func(f *desktop.File) {
			parsed, err := desktop.ParseString(f.String())
			Expect(err).NotTo(HaveOccurred())
			Expect(parsed.Entry).To(Equal(f.Entry))
		},
		Entry("new application", desktop.New("Editor", "editor %F")),
		Entry("every field set", fullFile()),
		Entry("link without optionals", &desktop.File{Entry: desktop.Entry{
			Type: desktop.TypeLink,
			Name: "Docs",
			URL:  desktop.String("https://example.org/docs"),
		}}),
		Entry("explicit true booleans", &desktop.File{Entry: desktop.Entry{
			Type:            desktop.TypeApplication,
			Name:            "Console",
			Exec:            desktop.String("xterm"),
			Terminal:        desktop.Bool(true),
			Hidden:          desktop.Bool(true),
			DBusActivatable: desktop.Bool(true),
		}}),
	)
})

var _ = Describe("Save", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "ade-dentry-save-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	It("should write a file that parses back", func() {
		path := filepath.Join(tmpDir, "saved.desktop")
		f := desktop.New("Saved", "saved")
		Expect(f.Save(path)).To(Succeed())

		parsed, err := desktop.ParseFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(parsed.Entry).To(Equal(f.Entry))
	})

	It("should return an IOError when the directory is missing", func() {
		err := desktop.New("x", "x").Save(filepath.Join(tmpDir, "nope", "x.desktop"))
		var ioErr *desktop.IOError
		Expect(err).To(BeAssignableToTypeOf(ioErr))
	})
})

func fullFile() *desktop.File {
	return &desktop.File{Entry: desktop.Entry{
		Type:            desktop.TypeApplication,
		Version:         desktop.String("1.0"),
		Name:            "Full",
		GenericName:     desktop.String("Generic"),
		Comment:         desktop.String("A comment"),
		Icon:            desktop.String("full-icon"),
		Exec:            desktop.String("full %U"),
		Path:            desktop.String("/opt/full"),
		Terminal:        desktop.Bool(false),
		Categories:      desktop.String("Utility;Development;"),
		Keywords:        desktop.String("full;test;"),
		StartupWMClass:  desktop.String("Full"),
		URL:             desktop.String("https://example.org"),
		MimeType:        desktop.String("text/plain;"),
		Hidden:          desktop.Bool(false),
		OnlyShowIn:      desktop.String("GNOME;"),
		NotShowIn:       desktop.String("KDE;"),
		DBusActivatable: desktop.Bool(true),
		TryExec:         desktop.String("full"),
		Actions:         desktop.String("new;"),
	}}
}
