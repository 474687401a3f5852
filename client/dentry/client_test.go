package dentry

import (
	"bufio"
	"bytes"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// fakeDaemon answers each command word with a canned response and records
// the lines it received
type fakeDaemon struct {
	mu        sync.Mutex
	header    string
	lines     []string
	responses map[string]string
}

func (d *fakeDaemon) serve(conn net.Conn) {
	defer conn.Close()
	reader := bufio.NewReader(conn)

	header := make([]byte, len(protoVer))
	if _, err := io.ReadFull(reader, header); err != nil {
		return
	}
	d.mu.Lock()
	d.header = string(header)
	d.mu.Unlock()

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimRight(line, "\n")

		d.mu.Lock()
		d.lines = append(d.lines, line)
		resp, ok := d.responses[line]
		d.mu.Unlock()

		if ok {
			if _, err := io.WriteString(conn, resp); err != nil {
				return
			}
		}
	}
}

func (d *fakeDaemon) received() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	result := make([]string, len(d.lines))
	copy(result, d.lines)
	return result
}

var _ = Describe("Client", func() {
	var (
		daemon     *fakeDaemon
		client     *Client
		clientConn net.Conn
	)

	BeforeEach(func() {
		daemon = &fakeDaemon{responses: map[string]string{
			"reindex": "TXT01cmd: reindex\nstatus: 0\nindexed: 12\ncats-len: 4\n\n",
			"cats":    "TXT01cmd: cats\nstatus: 0\ncats-len: 2\nbody:\n3 Office\n1 Utility Apps\n\n",
			"list":    "TXT01cmd: list\nstatus: 0\nlist-len: 1\nbody:\nOffice\tcalc.desktop\t/usr/share/applications/calc.desktop\n\n",
			"new":     "TXT01cmd: new\nstatus: 0\npath: \nbody:\n[Desktop Entry]\nType=Application\nName=My App\nExec=myapp\n\n",
			"set":     "TXT01error-cmd: set\nerror: unknown key\ndesc: unknown key: X-Foo\n\n",
			"save":    "TXT01cmd: save\nstatus: 0\npath: /home/u/.local/share/applications/my-app.desktop\nindexed: 13\n\n",
		}}

		var serverConn net.Conn
		clientConn, serverConn = net.Pipe()
		go daemon.serve(serverConn)

		var err error
		client, err = NewClientConn(clientConn)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		client.Close()
	})

	It("should send the protocol header first", func() {
		_, err := client.Reindex()
		Expect(err).NotTo(HaveOccurred())
		daemon.mu.Lock()
		defer daemon.mu.Unlock()
		Expect(daemon.header).To(Equal("TXT01"))
	})

	It("should parse the reindex count", func() {
		n, err := client.Reindex()
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(12))
	})

	It("should parse categories with spaces in their names", func() {
		cats, err := client.Categories()
		Expect(err).NotTo(HaveOccurred())
		Expect(cats).To(Equal([]Category{
			{Name: "Office", Count: 3},
			{Name: "Utility Apps", Count: 1},
		}))
	})

	It("should parse list rows", func() {
		items, err := client.List("")
		Expect(err).NotTo(HaveOccurred())
		Expect(items).To(ConsistOf(Item{
			Category: "Office",
			Name:     "calc.desktop",
			Path:     "/usr/share/applications/calc.desktop",
		}))
	})

	It("should send arguments as strings before the command word", func() {
		text, err := client.New("My App", "myapp")
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("[Desktop Entry]\nType=Application\nName=My App\nExec=myapp\n"))
		Expect(daemon.received()).To(Equal([]string{`"My App`, `"myapp`, "new"}))
	})

	It("should turn error responses into a ServerError", func() {
		err := client.Set("X-Foo", "1")
		Expect(err).To(HaveOccurred())

		var serverErr *ServerError
		Expect(err).To(BeAssignableToTypeOf(serverErr))
		serverErr = err.(*ServerError)
		Expect(serverErr.Cmd).To(Equal("set"))
		Expect(serverErr.Kind).To(Equal("unknown key"))
	})

	It("should keep reading responses after an error", func() {
		Expect(client.Set("X-Foo", "1")).To(HaveOccurred())
		path, err := client.Save("")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal("/home/u/.local/share/applications/my-app.desktop"))
	})

	It("should refuse arguments with line breaks", func() {
		err := client.Set("Comment", "two\nlines")
		Expect(err).To(MatchError(ContainSubstring("line break")))
	})

	It("should send raw commands with type detection", func() {
		resp, err := client.Do("reindex", []string{"t", "42", "name"})
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Err()).NotTo(HaveOccurred())
		Expect(daemon.received()).To(Equal([]string{"t", "42", `"name`, "reindex"}))

		var buf bytes.Buffer
		WriteResponse(&buf, resp)
		Expect(buf.String()).To(Equal("cmd: reindex\nstatus: 0\nindexed: 12\ncats-len: 4\n"))
	})
})

var _ = Describe("FormatArgument", func() {
	DescribeTable("type detection",
		func(in, expected string) {
			Expect(FormatArgument(in)).To(Equal(expected))
		},
		Entry("quoted string", `"hello`, `"hello`),
		Entry("true literal", "t", "t"),
		Entry("false literal", "f", "f"),
		Entry("integer", "42", "42"),
		Entry("bare word", "Office", `"Office`),
		Entry("surrounding space", "  Office ", `"Office`),
	)
})

var _ = Describe("Dial", func() {
	It("should send the header to the daemon", func() {
		tmpDir, err := os.MkdirTemp("", "ade-dentry-client-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(os.RemoveAll, tmpDir)

		socketPath := filepath.Join(tmpDir, "dentryd")
		listener, err := net.Listen("unix", socketPath)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(listener.Close)

		headers := make(chan string, 1)
		go func() {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			defer conn.Close()
			header := make([]byte, len(protoVer))
			if _, err := io.ReadFull(conn, header); err == nil {
				headers <- string(header)
			}
		}()

		c, err := Dial(socketPath)
		Expect(err).NotTo(HaveOccurred())
		defer c.Close()
		Eventually(headers).Should(Receive(Equal(protoVer)))
	})

	It("should name the socket when nothing listens", func() {
		_, err := Dial("/nonexistent/ade-dentry/dentryd")
		Expect(err).To(MatchError(ContainSubstring("/nonexistent/ade-dentry/dentryd")))
	})
})
