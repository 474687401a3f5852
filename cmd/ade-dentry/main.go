package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/0xADE/ade-dentry/internal/config"
)

func main() {
	if err := config.Init(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("config: "+err.Error()))
		os.Exit(1)
	}
	cfg := config.Get()

	log.SetLevel(cfg.LogLevel())
	log.SetPrefix("ade-dentry")

	root := newRootCommand(newApp(cfg))
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		os.Exit(1)
	}
}
