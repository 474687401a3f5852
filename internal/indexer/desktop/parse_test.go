package desktop_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/0xADE/ade-dentry/internal/indexer/desktop"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Parse", func() {
	var (
		input    string
		file     *desktop.File
		parseErr error
	)

	JustBeforeEach(func() {
		file, parseErr = desktop.ParseString(input)
	})

	Context("when parsing a complete application entry", func() {
		BeforeEach(func() {
			input = `# leading comment
[Desktop Entry]
Type=Application
Version=1.5
Name=Text Editor
GenericName=Editor
Comment=Edit text files
Icon=accessories-text-editor
Exec=gedit %U
Path=/tmp
Terminal=false
Categories=GNOME;GTK;Utility;TextEditor;
Keywords=text;editor;
StartupWMClass=Gedit
MimeType=text/plain;
Hidden=false
OnlyShowIn=GNOME;
NotShowIn=KDE;
DBusActivatable=true
TryExec=gedit
Actions=new-window;
`
		})

		It("should succeed", func() {
			Expect(parseErr).NotTo(HaveOccurred())
		})

		It("should parse required fields", func() {
			Expect(file.Entry.Type).To(Equal("Application"))
			Expect(file.Entry.Name).To(Equal("Text Editor"))
		})

		It("should parse optional strings", func() {
			Expect(file.Entry.Version).To(HaveValue(Equal("1.5")))
			Expect(file.Entry.GenericName).To(HaveValue(Equal("Editor")))
			Expect(file.Entry.Exec).To(HaveValue(Equal("gedit %U")))
			Expect(file.Entry.Path).To(HaveValue(Equal("/tmp")))
			Expect(file.Entry.StartupWMClass).To(HaveValue(Equal("Gedit")))
			Expect(file.Entry.TryExec).To(HaveValue(Equal("gedit")))
			Expect(file.Entry.Actions).To(HaveValue(Equal("new-window;")))
		})

		It("should keep list fields raw", func() {
			Expect(file.Entry.Categories).To(HaveValue(Equal("GNOME;GTK;Utility;TextEditor;")))
			Expect(file.Entry.CategoryList()).To(Equal([]string{"GNOME", "GTK", "Utility", "TextEditor"}))
		})

		It("should parse booleans", func() {
			Expect(file.Entry.Terminal).To(HaveValue(BeFalse()))
			Expect(file.Entry.Hidden).To(HaveValue(BeFalse()))
			Expect(file.Entry.DBusActivatable).To(HaveValue(BeTrue()))
		})

		It("should not carry icon data", func() {
			Expect(file.IconData).To(BeNil())
		})
	})

	Context("when the Name key is missing", func() {
		BeforeEach(func() {
			input = "[Desktop Entry]\nType=Application\nExec=true\n"
		})

		It("should fail with a missing Name field", func() {
			var missing *desktop.MissingFieldError
			Expect(errors.As(parseErr, &missing)).To(BeTrue())
			Expect(missing.Field).To(Equal("Name"))
			Expect(file).To(BeNil())
		})
	})

	Context("when Name appears only in another section", func() {
		BeforeEach(func() {
			input = "Name=Orphan\n[Desktop Action new]\nName=Action\n[Desktop Entry]\nExec=foo\n"
		})

		It("should fail with a missing Name field", func() {
			Expect(parseErr).To(MatchError(&desktop.MissingFieldError{Field: "Name"}))
		})
	})

	Context("when the same key appears twice", func() {
		BeforeEach(func() {
			input = "[Desktop Entry]\nName=First\nName=Second\n"
		})

		It("should keep the last value", func() {
			Expect(parseErr).NotTo(HaveOccurred())
			Expect(file.Entry.Name).To(Equal("Second"))
		})
	})

	Context("when other sections follow the desktop entry", func() {
		BeforeEach(func() {
			input = `[Desktop Entry]
Name=Browser
Exec=browser

[Desktop Action private]
Name=Private Window
Exec=browser --private
`
		})

		It("should ignore keys outside [Desktop Entry]", func() {
			Expect(file.Entry.Name).To(Equal("Browser"))
			Expect(file.Entry.Exec).To(HaveValue(Equal("browser")))
		})
	})

	Context("when Type is absent", func() {
		BeforeEach(func() {
			input = "[Desktop Entry]\nName=Untyped\n"
		})

		It("should default to Application", func() {
			Expect(file.Entry.Type).To(Equal(desktop.TypeApplication))
		})
	})

	Context("when keys and values carry surrounding whitespace", func() {
		BeforeEach(func() {
			input = "  [Desktop Entry]  \n  Name  =  Spaced Out  \nExec = a=b\nNoEquals\n"
		})

		It("should trim both sides and split on the first =", func() {
			Expect(file.Entry.Name).To(Equal("Spaced Out"))
			Expect(file.Entry.Exec).To(HaveValue(Equal("a=b")))
		})
	})

	Context("when the content uses CRLF line endings", func() {
		BeforeEach(func() {
			input = "[Desktop Entry]\r\nName=Windows\r\nTerminal=true\r\n"
		})

		It("should parse the values without carriage returns", func() {
			Expect(file.Entry.Name).To(Equal("Windows"))
			Expect(file.Entry.Terminal).To(HaveValue(BeTrue()))
		})
	})

	Context("when a value is longer than a megabyte", func() {
		var mimeTypes string

		BeforeEach(func() {
			mimeTypes = strings.Repeat("a;", 1<<20)
			input = "[Desktop Entry]\nName=Big\nMimeType=" + mimeTypes + "\nCategories=Utility;"
		})

		It("should parse the whole entry", func() {
			Expect(parseErr).NotTo(HaveOccurred())
			Expect(file.Entry.Name).To(Equal("Big"))
			Expect(file.Entry.MimeType).To(HaveValue(HaveLen(len(mimeTypes))))
			Expect(file.Entry.CategoryList()).To(Equal([]string{"Utility"}))
		})
	})

	DescribeTable("boolean permissiveness",
		func(line string, expected *bool) {
			f, err := desktop.ParseString("[Desktop Entry]\nName=x\n" + line)
			Expect(err).NotTo(HaveOccurred())
			if expected == nil {
				Expect(f.Entry.Terminal).To(BeNil())
			} else {
				Expect(f.Entry.Terminal).To(HaveValue(Equal(*expected)))
			}
		},
		Entry("literal true", "Terminal=true\n", desktop.Bool(true)),
		Entry("literal false", "Terminal=false\n", desktop.Bool(false)),
		Entry("yes", "Terminal=yes\n", desktop.Bool(false)),
		Entry("1", "Terminal=1\n", desktop.Bool(false)),
		Entry("capitalised True", "Terminal=True\n", desktop.Bool(false)),
		Entry("empty value", "Terminal=\n", desktop.Bool(false)),
		Entry("absent key", "", nil),
	)

	Context("when unknown keys and comments are present", func() {
		BeforeEach(func() {
			input = "[Desktop Entry]\n# comment\nName=App\nX-Vendor-Key=1\nName[de]=Anwendung\n"
		})

		It("should drop them on round trip", func() {
			Expect(file.String()).To(Equal("[Desktop Entry]\nType=Application\nName=App\n"))
		})
	})
})

var _ = Describe("ParseFile", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "ade-dentry-desktop-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	It("should parse a file from disk", func() {
		path := filepath.Join(tmpDir, "app.desktop")
		Expect(os.WriteFile(path, []byte("[Desktop Entry]\nName=Disk App\nExec=app\n"), 0644)).To(Succeed())

		f, err := desktop.ParseFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(f.Entry.Name).To(Equal("Disk App"))
	})

	It("should wrap a missing file in an IOError", func() {
		path := filepath.Join(tmpDir, "missing.desktop")

		_, err := desktop.ParseFile(path)
		var ioErr *desktop.IOError
		Expect(errors.As(err, &ioErr)).To(BeTrue())
		Expect(ioErr.Path).To(Equal(path))
		Expect(errors.Is(err, os.ErrNotExist)).To(BeTrue())
	})
})
