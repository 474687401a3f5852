package parser

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ProtoVersion is the header sent by both sides: text format, version 01
const ProtoVersion = "TXT01"

// ValueType represents the type of a value on the stack
type ValueType int

const (
	TypeString ValueType = iota
	TypeInt
	TypeBool
)

// Value represents a value on the stack
type Value struct {
	Type ValueType
	Str  string
	Int  int64
	Bool bool
}

// Command represents a parsed command
type Command struct {
	Name string
	Args []Value
}

// Commands understood by the daemon
const (
	CmdReindex  = "reindex"
	CmdCats     = "cats"
	CmdList     = "list"
	CmdOpen     = "open"
	CmdNew      = "new"
	CmdSet      = "set"
	CmdUnset    = "unset"
	CmdShow     = "show"
	CmdValidate = "validate"
	CmdSave     = "save"
	CmdDelete   = "delete"
)

var commands = []string{
	CmdReindex,
	CmdCats,
	CmdList,
	CmdOpen,
	CmdNew,
	CmdSet,
	CmdUnset,
	CmdShow,
	CmdValidate,
	CmdSave,
	CmdDelete,
}

// Parser parses Forth-style commands: values are pushed one per line,
// then a command word consumes them
type Parser struct {
	reader  *bufio.Reader
	header  string
	version string
}

// NewParser creates a new parser and consumes the protocol header
func NewParser(reader io.Reader) (*Parser, error) {
	p := &Parser{
		reader: bufio.NewReader(reader),
	}

	// Read header
	headerBytes := make([]byte, len(ProtoVersion))
	if n, err := io.ReadFull(p.reader, headerBytes); err != nil || n != len(ProtoVersion) {
		return nil, fmt.Errorf("invalid header")
	}

	p.header = string(headerBytes[:3])
	p.version = string(headerBytes[3:5])

	if p.header != "TXT" {
		return nil, fmt.Errorf("unsupported format: %s", p.header)
	}

	return p, nil
}

// Version returns the protocol version announced by the peer
func (p *Parser) Version() string {
	return p.version
}

// ParseCommand parses the next command from input
func (p *Parser) ParseCommand() (*Command, error) {
	stack := make([]Value, 0)

	for {
		line, err := p.reader.ReadString('\n')
		if err == io.EOF && line == "" {
			return nil, io.EOF
		}
		if err != nil && err != io.EOF {
			return nil, err
		}

		line = strings.TrimRight(line, "\r\n")
		trimmed := strings.TrimSpace(line)

		// Skip empty lines and comments
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			if err == io.EOF {
				return nil, io.EOF
			}
			continue
		}

		if cmd := parseCommand(trimmed); cmd != "" {
			return &Command{
				Name: cmd,
				Args: stack,
			}, nil
		}

		value, parseErr := parseValue(line)
		if parseErr != nil {
			return nil, fmt.Errorf("parse error: %v", parseErr)
		}
		stack = append(stack, value)

		if err == io.EOF {
			// Values without a command word are discarded
			return nil, io.EOF
		}
	}
}

func parseCommand(line string) string {
	for _, cmd := range commands {
		if line == cmd {
			return cmd
		}
	}
	return ""
}

func parseValue(line string) (Value, error) {
	// String value (prefixed with "); everything after the quote is kept verbatim
	if after, ok := strings.CutPrefix(strings.TrimLeft(line, " \t"), `"`); ok {
		return Value{Type: TypeString, Str: after}, nil
	}

	line = strings.TrimSpace(line)

	// Boolean literals (t/f)
	switch line {
	case "t":
		return Value{Type: TypeBool, Bool: true}, nil
	case "f":
		return Value{Type: TypeBool, Bool: false}, nil
	}

	// Try parsing as integer (must be all digits)
	if intVal, err := strconv.ParseInt(line, 10, 64); err == nil {
		return Value{Type: TypeInt, Int: intVal}, nil
	}

	return Value{}, fmt.Errorf("cannot parse value: %s", line)
}

// Strings returns the string arguments of a command in order
func (c *Command) Strings() []string {
	var result []string
	for _, arg := range c.Args {
		if arg.Type == TypeString {
			result = append(result, arg.Str)
		}
	}
	return result
}

// ReadAllCommands reads all commands from the parser
func (p *Parser) ReadAllCommands() ([]*Command, error) {
	var commands []*Command

	for {
		cmd, err := p.ParseCommand()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		commands = append(commands, cmd)
	}

	return commands, nil
}
