package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/wicstas/llc"
)

var runErrStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

// runScripts compiles the named files (or the manifest's files) into one
// program and runs it.
func runScripts(configPath string, args []string) error {
	files := args
	var m *manifest
	if configPath != "" {
		loaded, err := loadManifest(configPath)
		if err != nil {
			return err
		}
		m = loaded
		files = append(append([]string(nil), m.Files...), args...)
	}
	if len(files) == 0 {
		return fmt.Errorf("no scripts: pass files or --config")
	}

	program := llc.NewProgram()
	bindBuiltins(program)
	if m != nil {
		for name, v := range m.Values {
			if err := program.Bind(name, float32(v)); err != nil {
				return err
			}
		}
		for name, s := range m.Strings {
			if err := program.Bind(name, s); err != nil {
				return err
			}
		}
	}

	var sources []string
	for _, path := range files {
		b, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		sources = append(sources, string(b))
	}
	source := strings.Join(sources, "\n")

	name := files[0]
	if len(files) > 1 {
		name = fmt.Sprintf("%s (+%d more)", files[0], len(files)-1)
	}
	if err := program.CompileNamed(name, source); err != nil {
		fmt.Fprintln(os.Stderr, runErrStyle.Render(program.RenderError(err)))
		return fmt.Errorf("compile failed")
	}
	if err := program.Run(); err != nil {
		fmt.Fprintln(os.Stderr, runErrStyle.Render(program.RenderError(err)))
		return fmt.Errorf("run failed")
	}
	return nil
}
