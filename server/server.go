package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/0xADE/ade-dentry/internal/indexer"
	"github.com/0xADE/ade-dentry/internal/indexer/desktop"
	"github.com/0xADE/ade-dentry/internal/store"
	"github.com/0xADE/ade-dentry/parser"
)

// Server handles Unix socket connections and command execution
type Server struct {
	listener net.Listener
	indexer  *indexer.Indexer
	store    *store.Store
	running  bool
	mu       sync.RWMutex
}

// session is the editing state of one connection.
// The record is owned by the connection and never shared.
type session struct {
	file *desktop.File
	path string // empty until the record has been opened or saved
}

// NewServer creates a server listening on socketPath
func NewServer(socketPath string, idx *indexer.Indexer, st *store.Store) (*Server, error) {
	// Create directory if needed
	socketDir := filepath.Dir(socketPath)
	if err := os.MkdirAll(socketDir, 0755); err != nil {
		return nil, err
	}

	// Remove existing socket if it exists
	os.Remove(socketPath)

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, err
	}

	return &Server{
		listener: listener,
		indexer:  idx,
		store:    st,
	}, nil
}

// Start accepts connections until the server is stopped
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	s.running = true
	s.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		conn, err := s.listener.Accept()
		if err != nil {
			s.mu.RLock()
			running := s.running
			s.mu.RUnlock()
			if !running {
				return nil
			}
			continue
		}

		go s.handleConnection(ctx, conn)
	}
}

// Stop stops the server
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	return s.listener.Close()
}

func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	log.Debug("new connection accepted")

	p, err := parser.NewParser(conn)
	if err != nil {
		log.Error("failed to create parser", "err", err)
		writeError(conn, "parser", "invalid header", err.Error())
		return
	}

	sess := &session{}
	for {
		cmd, err := p.ParseCommand()
		if err == io.EOF {
			log.Debug("connection closed by client")
			break
		}
		if err != nil {
			log.Error("parse error", "err", err)
			writeError(conn, "parser", "parse error", err.Error())
			continue
		}

		log.Debug("executing command", "cmd", cmd.Name, "args", len(cmd.Args))
		s.executeCommand(ctx, conn, sess, cmd)
	}
}

func (s *Server) executeCommand(ctx context.Context, w io.Writer, sess *session, cmd *parser.Command) {
	switch cmd.Name {
	case parser.CmdReindex:
		s.handleReindex(ctx, w)
	case parser.CmdCats:
		s.handleCats(w)
	case parser.CmdList:
		s.handleList(w, cmd)
	case parser.CmdOpen:
		s.handleOpen(w, sess, cmd)
	case parser.CmdNew:
		s.handleNew(w, sess, cmd)
	case parser.CmdSet:
		s.handleSet(w, sess, cmd)
	case parser.CmdUnset:
		s.handleUnset(w, sess, cmd)
	case parser.CmdShow:
		s.handleShow(w, sess)
	case parser.CmdValidate:
		s.handleValidate(w, sess)
	case parser.CmdSave:
		s.handleSave(ctx, w, sess, cmd)
	case parser.CmdDelete:
		s.handleDelete(ctx, w, sess, cmd)
	default:
		writeError(w, cmd.Name, "unknown command", "Command not recognized")
	}
}

func (s *Server) handleReindex(ctx context.Context, w io.Writer) {
	n := s.indexer.Reindex(ctx)
	idx := s.indexer.Index()
	writeResponse(w, fmt.Sprintf("cmd: reindex\nstatus: 0\nindexed: %d\ncats-len: %d\n", n, idx.Len()), nil)
}

func (s *Server) handleCats(w io.Writer) {
	idx := s.indexer.Index()

	body := make([]string, 0, idx.Len())
	for _, cat := range idx.Categories() {
		body = append(body, fmt.Sprintf("%d %s", idx.Count(cat), cat))
	}

	writeResponse(w, fmt.Sprintf("cmd: cats\nstatus: 0\ncats-len: %d\n", len(body)), body)
}

func (s *Server) handleList(w io.Writer, cmd *parser.Command) {
	idx := s.indexer.Index()
	args := cmd.Strings()

	var body []string
	if len(args) > 0 {
		for _, item := range idx.Entries(args[0]) {
			body = append(body, item.Name+"\t"+item.Path)
		}
	} else {
		for _, group := range idx.Groups() {
			for _, item := range group.Items {
				body = append(body, group.Category+"\t"+item.Name+"\t"+item.Path)
			}
		}
	}

	log.Debug("list", "rows", len(body))
	writeResponse(w, fmt.Sprintf("cmd: list\nstatus: 0\nlist-len: %d\n", len(body)), body)
}

func (s *Server) handleOpen(w io.Writer, sess *session, cmd *parser.Command) {
	args := cmd.Strings()
	if len(args) == 0 {
		writeError(w, cmd.Name, "missing parameter", "open requires a path")
		return
	}

	file, err := s.store.Open(args[0])
	if err != nil {
		writeFailure(w, cmd.Name, err)
		return
	}

	sess.file = file
	sess.path = args[0]
	writeRecord(w, cmd.Name, sess)
}

func (s *Server) handleNew(w io.Writer, sess *session, cmd *parser.Command) {
	args := cmd.Strings()
	name := "New Application"
	exec := ""
	if len(args) > 0 {
		name = args[0]
	}
	if len(args) > 1 {
		exec = args[1]
	}

	sess.file = desktop.New(name, exec)
	sess.path = ""
	writeRecord(w, cmd.Name, sess)
}

func (s *Server) handleSet(w io.Writer, sess *session, cmd *parser.Command) {
	if sess.file == nil {
		writeError(w, cmd.Name, "no record", "open or create a record first")
		return
	}
	if len(cmd.Args) < 2 || cmd.Args[0].Type != parser.TypeString {
		writeError(w, cmd.Name, "missing parameter", "set requires a key and a value")
		return
	}

	key := cmd.Args[0].Str
	var value string
	switch arg := cmd.Args[1]; arg.Type {
	case parser.TypeBool:
		value = fmt.Sprintf("%t", arg.Bool)
	case parser.TypeInt:
		value = fmt.Sprintf("%d", arg.Int)
	default:
		value = arg.Str
	}

	if err := sess.file.Entry.Set(key, value); err != nil {
		writeFailure(w, cmd.Name, err)
		return
	}
	writeResponse(w, fmt.Sprintf("cmd: set\nstatus: 0\nkey: %s\n", key), nil)
}

func (s *Server) handleUnset(w io.Writer, sess *session, cmd *parser.Command) {
	if sess.file == nil {
		writeError(w, cmd.Name, "no record", "open or create a record first")
		return
	}
	args := cmd.Strings()
	if len(args) == 0 {
		writeError(w, cmd.Name, "missing parameter", "unset requires a key")
		return
	}

	if err := sess.file.Entry.Unset(args[0]); err != nil {
		writeFailure(w, cmd.Name, err)
		return
	}
	writeResponse(w, fmt.Sprintf("cmd: unset\nstatus: 0\nkey: %s\n", args[0]), nil)
}

func (s *Server) handleShow(w io.Writer, sess *session) {
	if sess.file == nil {
		writeError(w, parser.CmdShow, "no record", "open or create a record first")
		return
	}
	writeRecord(w, parser.CmdShow, sess)
}

func (s *Server) handleValidate(w io.Writer, sess *session) {
	if sess.file == nil {
		writeError(w, parser.CmdValidate, "no record", "open or create a record first")
		return
	}
	if err := sess.file.Validate(); err != nil {
		writeFailure(w, parser.CmdValidate, err)
		return
	}
	writeResponse(w, "cmd: validate\nstatus: 0\n", nil)
}

func (s *Server) handleSave(ctx context.Context, w io.Writer, sess *session, cmd *parser.Command) {
	if sess.file == nil {
		writeError(w, cmd.Name, "no record", "open or create a record first")
		return
	}
	if err := sess.file.Validate(); err != nil {
		writeFailure(w, cmd.Name, err)
		return
	}

	args := cmd.Strings()
	var err error
	switch {
	case len(args) > 0:
		err = s.store.Save(args[0], sess.file)
		if err == nil {
			sess.path = args[0]
		}
	case sess.path != "":
		err = s.store.Save(sess.path, sess.file)
	default:
		var path string
		path, err = s.store.Create(sess.file)
		if err == nil {
			sess.path = path
		}
	}
	if err != nil {
		log.Error("save failed", "err", err)
		writeFailure(w, cmd.Name, err)
		return
	}

	n := s.indexer.Reindex(ctx)
	writeResponse(w, fmt.Sprintf("cmd: save\nstatus: 0\npath: %s\nindexed: %d\n", sess.path, n), nil)
}

func (s *Server) handleDelete(ctx context.Context, w io.Writer, sess *session, cmd *parser.Command) {
	path := sess.path
	if args := cmd.Strings(); len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		writeError(w, cmd.Name, "missing parameter", "delete requires a path")
		return
	}

	if err := s.store.Delete(path); err != nil {
		log.Error("delete failed", "path", path, "err", err)
		writeFailure(w, cmd.Name, err)
		return
	}
	if path == sess.path {
		sess.file = nil
		sess.path = ""
	}

	n := s.indexer.Reindex(ctx)
	writeResponse(w, fmt.Sprintf("cmd: delete\nstatus: 0\npath: %s\nindexed: %d\n", path, n), nil)
}

func writeRecord(w io.Writer, cmd string, sess *session) {
	text := strings.TrimRight(sess.file.String(), "\n")
	attrs := fmt.Sprintf("cmd: %s\nstatus: 0\npath: %s\n", cmd, sess.path)
	writeResponse(w, attrs, strings.Split(text, "\n"))
}

// writeFailure maps codec and store errors onto error responses
func writeFailure(w io.Writer, cmd string, err error) {
	writeError(w, cmd, errorKind(err), err.Error())
}

func errorKind(err error) string {
	var (
		ioErr      *desktop.IOError
		missingErr *desktop.MissingFieldError
		invalidErr *desktop.InvalidValueError
		parseErr   *desktop.ParseError
	)
	switch {
	case errors.As(err, &missingErr):
		return "missing field"
	case errors.As(err, &invalidErr):
		return "invalid value"
	case errors.As(err, &parseErr):
		return "parse error"
	case errors.As(err, &ioErr):
		return "io error"
	case errors.Is(err, desktop.ErrUnknownKey):
		return "unknown key"
	default:
		return "failed"
	}
}

// writeResponse writes a response: header, attribute lines, an optional
// body introduced by "body:", and a terminating empty line.
// Body lines must not be empty.
func writeResponse(w io.Writer, attrs string, body []string) {
	var b strings.Builder
	b.WriteString(parser.ProtoVersion)
	b.WriteString(attrs)
	if len(body) > 0 {
		b.WriteString("body:\n")
		for _, line := range body {
			if line == "" {
				continue
			}
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	b.WriteByte('\n')

	n, err := io.WriteString(w, b.String())
	if err != nil {
		log.Error("failed to write response", "err", err)
		return
	}
	log.Debug("response written", "bytes", n)
}

func writeError(w io.Writer, cmd, errType, desc string) {
	log.Debug("writing error response", "cmd", cmd, "type", errType, "desc", desc)
	desc = strings.ReplaceAll(desc, "\n", " ")
	errorMsg := fmt.Sprintf("error-cmd: %s\nerror: %s\ndesc: %s\n", cmd, errType, desc)
	writeResponse(w, errorMsg, nil)
}
