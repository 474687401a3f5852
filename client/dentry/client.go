package dentry

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/0xADE/ade-dentry/internal/config"
)

const protoVer = "TXT01" // dentry protocol, text format, v01

// Category is a category name with its entry count
type Category struct {
	Name  string
	Count int
}

// Item is one row of a list response
type Item struct {
	Category string // empty when a single category was listed
	Name     string
	Path     string
}

// Response is a parsed daemon response
type Response struct {
	Attrs map[string]string
	Body  []string
}

// ServerError is an error response sent by the daemon
type ServerError struct {
	Cmd  string
	Kind string
	Desc string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error: %s: %s: %s", e.Cmd, e.Kind, e.Desc)
}

// Err returns the error carried by the response, if any
func (r *Response) Err() error {
	kind, ok := r.Attrs["error"]
	if !ok {
		return nil
	}
	return &ServerError{Cmd: r.Attrs["error-cmd"], Kind: kind, Desc: r.Attrs["desc"]}
}

// Client handles a connection to the ade-dentryd server.
// Editing commands act on the record held by this connection.
type Client struct {
	conn   net.Conn
	reader *bufio.Reader
	mu     sync.Mutex
}

// NewClient connects to the socket named by the configuration
func NewClient() (*Client, error) {
	socketPath := config.Get().UnixSocket()
	if socketPath == "" {
		return nil, fmt.Errorf("no socket path configured, set %s", config.SocketEnv)
	}
	return Dial(socketPath)
}

// Dial connects to the daemon listening on socketPath
func Dial(socketPath string) (*Client, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to socket %s: %w", socketPath, err)
	}

	c, err := NewClientConn(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

// NewClientConn wraps an established connection and sends the header
func NewClientConn(conn net.Conn) (*Client, error) {
	if _, err := conn.Write([]byte(protoVer)); err != nil {
		return nil, fmt.Errorf("failed to send header: %w", err)
	}
	return &Client{
		conn:   conn,
		reader: bufio.NewReader(conn),
	}, nil
}

// Close closes the connection
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// FormatArgument formats an argument according to its type
func FormatArgument(arg string) string {
	arg = strings.TrimSpace(arg)

	// If starts with ", it's a string (keep prefix)
	if strings.HasPrefix(arg, `"`) {
		return arg
	}

	// Check for boolean literals
	if arg == "t" || arg == "f" {
		return arg
	}

	// Check if it's numeric (all digits)
	if _, err := strconv.ParseInt(arg, 10, 64); err == nil {
		return arg
	}

	// Default: treat as string (add prefix)
	return `"` + arg
}

// SendCommand sends a command with type-detected arguments
func (c *Client) SendCommand(cmdName string, args []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	formatted := make([]string, len(args))
	for i, arg := range args {
		formatted[i] = FormatArgument(arg)
	}
	return c.send(cmdName, formatted)
}

// ReadResponse reads the next response from the connection
func (c *Client) ReadResponse() (*Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readResponse()
}

// Do sends a command with type-detected arguments and reads its response
func (c *Client) Do(cmdName string, args []string) (*Response, error) {
	if err := c.SendCommand(cmdName, args); err != nil {
		return nil, err
	}
	return c.ReadResponse()
}

// Reindex asks the daemon to rebuild its index and returns the file count
func (c *Client) Reindex() (int, error) {
	resp, err := c.call("reindex")
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(resp.Attrs["indexed"])
}

// Categories returns the categories of the published index in order
func (c *Client) Categories() ([]Category, error) {
	resp, err := c.call("cats")
	if err != nil {
		return nil, err
	}

	cats := make([]Category, 0, len(resp.Body))
	for _, line := range resp.Body {
		count, name, ok := strings.Cut(line, " ")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(count)
		if err != nil {
			continue
		}
		cats = append(cats, Category{Name: name, Count: n})
	}
	return cats, nil
}

// List returns the entries of category, or of every category when it is empty
func (c *Client) List(category string) ([]Item, error) {
	var args []string
	if category != "" {
		args = append(args, category)
	}
	resp, err := c.call("list", args...)
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(resp.Body))
	for _, line := range resp.Body {
		parts := strings.Split(line, "\t")
		switch len(parts) {
		case 2:
			items = append(items, Item{Category: category, Name: parts[0], Path: parts[1]})
		case 3:
			items = append(items, Item{Category: parts[0], Name: parts[1], Path: parts[2]})
		}
	}
	return items, nil
}

// Open loads the file at path as the connection's record and returns its text
func (c *Client) Open(path string) (string, error) {
	resp, err := c.call("open", path)
	if err != nil {
		return "", err
	}
	return recordText(resp), nil
}

// New starts a fresh record and returns its text
func (c *Client) New(name, exec string) (string, error) {
	resp, err := c.call("new", name, exec)
	if err != nil {
		return "", err
	}
	return recordText(resp), nil
}

// Set assigns a key of the record
func (c *Client) Set(key, value string) error {
	_, err := c.call("set", key, value)
	return err
}

// Unset clears an optional key of the record
func (c *Client) Unset(key string) error {
	_, err := c.call("unset", key)
	return err
}

// Show returns the serialized record
func (c *Client) Show() (string, error) {
	resp, err := c.call("show")
	if err != nil {
		return "", err
	}
	return recordText(resp), nil
}

// Validate checks the record on the daemon
func (c *Client) Validate() error {
	_, err := c.call("validate")
	return err
}

// Save writes the record and returns the path it was written to.
// An empty path saves to the opened path or creates a new user file.
func (c *Client) Save(path string) (string, error) {
	var args []string
	if path != "" {
		args = append(args, path)
	}
	resp, err := c.call("save", args...)
	if err != nil {
		return "", err
	}
	return resp.Attrs["path"], nil
}

// Delete removes a file, or the opened record's file when path is empty
func (c *Client) Delete(path string) error {
	var args []string
	if path != "" {
		args = append(args, path)
	}
	_, err := c.call("delete", args...)
	return err
}

// call sends string arguments and a command and returns the successful response
func (c *Client) call(cmdName string, args ...string) (*Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	values := make([]string, len(args))
	for i, arg := range args {
		if strings.ContainsAny(arg, "\r\n") {
			return nil, fmt.Errorf("argument %d of %s contains a line break", i+1, cmdName)
		}
		values[i] = `"` + arg
	}
	if err := c.send(cmdName, values); err != nil {
		return nil, err
	}

	resp, err := c.readResponse()
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) send(cmdName string, values []string) error {
	var b strings.Builder
	for _, v := range values {
		b.WriteString(v)
		b.WriteByte('\n')
	}
	b.WriteString(cmdName)
	b.WriteByte('\n')

	if _, err := io.WriteString(c.conn, b.String()); err != nil {
		return fmt.Errorf("failed to send command: %w", err)
	}
	return nil
}

// readResponse reads the header, the attribute block and the optional body
// up to the terminating empty line
func (c *Client) readResponse() (*Response, error) {
	header := make([]byte, len(protoVer))
	if _, err := io.ReadFull(c.reader, header); err != nil {
		return nil, fmt.Errorf("failed to read response header: %w", err)
	}
	if string(header) != protoVer {
		return nil, fmt.Errorf("unexpected response header: %q", header)
	}

	resp := &Response{Attrs: make(map[string]string)}
	seenBodyHeader := false

	for {
		line, err := c.reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, fmt.Errorf("read error: %w", err)
		}
		line = strings.TrimRight(line, "\r\n")

		// End of response marker
		if line == "" {
			return resp, nil
		}

		if !seenBodyHeader && line == "body:" {
			seenBodyHeader = true
			continue
		}

		if seenBodyHeader {
			resp.Body = append(resp.Body, line)
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if ok {
			resp.Attrs[strings.TrimSpace(key)] = strings.TrimSpace(value)
		}
	}
}

// WriteResponse prints a response the way the daemon sent it, without the header
func WriteResponse(w io.Writer, resp *Response) {
	for _, key := range attrOrder(resp) {
		fmt.Fprintf(w, "%s: %s\n", key, resp.Attrs[key])
	}
	if len(resp.Body) > 0 {
		fmt.Fprintln(w, "body:")
		for _, line := range resp.Body {
			fmt.Fprintln(w, line)
		}
	}
}

// attrOrder lists well-known attributes first, the rest sorted by name
func attrOrder(resp *Response) []string {
	known := []string{"cmd", "error-cmd", "status", "error", "desc", "path", "key", "indexed", "cats-len", "list-len"}
	keys := make([]string, 0, len(resp.Attrs))
	seen := make(map[string]bool, len(resp.Attrs))
	for _, key := range known {
		if _, ok := resp.Attrs[key]; ok {
			keys = append(keys, key)
			seen[key] = true
		}
	}
	var rest []string
	for key := range resp.Attrs {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

func recordText(resp *Response) string {
	if len(resp.Body) == 0 {
		return ""
	}
	return strings.Join(resp.Body, "\n") + "\n"
}
