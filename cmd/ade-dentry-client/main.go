package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/0xADE/ade-dentry/client/dentry"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <command> [args...]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  reindex                  - Rebuild the category index\n")
		fmt.Fprintf(os.Stderr, "  cats                     - List categories with counts\n")
		fmt.Fprintf(os.Stderr, "  list [category]          - List entries\n")
		fmt.Fprintf(os.Stderr, "  delete <path>            - Delete a descriptor file\n")
		fmt.Fprintf(os.Stderr, "  interactive              - Interactive mode (open, new, set, unset, show, validate, save)\n")
		os.Exit(1)
	}

	// Create client
	client, err := dentry.NewClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create client: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	cmd := os.Args[1]

	if cmd == "interactive" {
		runInteractive(client)
		return
	}

	switch cmd {
	case "reindex", "cats":
		send(client, cmd, nil)
	case "list":
		var args []string
		for _, arg := range os.Args[2:] {
			args = append(args, `"`+arg)
		}
		send(client, cmd, args)
	case "delete":
		if len(os.Args) < 3 {
			fmt.Fprintf(os.Stderr, "Usage: %s delete <path>\n", os.Args[0])
			os.Exit(1)
		}
		send(client, cmd, []string{`"` + os.Args[2]})
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		os.Exit(1)
	}
}

func send(client *dentry.Client, cmd string, args []string) {
	resp, err := client.Do(cmd, args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to send command: %v\n", err)
		os.Exit(1)
	}
	dentry.WriteResponse(os.Stdout, resp)
	if resp.Err() != nil {
		os.Exit(1)
	}
}

// runInteractive reads one command per line: the command word followed by
// its arguments. Arguments are split on "|" so values may contain spaces,
// e.g. "set Comment|Edit text files".
func runInteractive(client *dentry.Client) {
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Println("Interactive mode. Type commands or 'exit' to quit.")
	fmt.Print("> ")

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "exit" || line == "quit" {
			break
		}

		if line == "" {
			fmt.Print("> ")
			continue
		}

		cmd, rest, _ := strings.Cut(line, " ")
		var args []string
		if rest = strings.TrimSpace(rest); rest != "" {
			for _, arg := range strings.Split(rest, "|") {
				args = append(args, `"`+strings.TrimSpace(arg))
			}
		}

		resp, err := client.Do(cmd, args)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to send command: %v\n", err)
			fmt.Print("> ")
			continue
		}
		dentry.WriteResponse(os.Stdout, resp)

		fmt.Print("> ")
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
	}
}
