package main

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"crest/internal/ir"
)

var dumpCmd = &cobra.Command{
	Use:   "dump <snapshot>...",
	Short: "Print the textual IR of one or more snapshots",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDump,
}

var (
	keywordColor = color.New(color.FgYellow, color.Bold)
	labelColor   = color.New(color.FgCyan)
)

func runDump(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	colorize := colorEnabled(cmd, cfg)

	// Decode and render in parallel, print in argument order.
	texts := make([]string, len(args))
	var g errgroup.Group
	for i, path := range args {
		g.Go(func() error {
			text, derr := dumpFile(path)
			if derr != nil {
				return fmt.Errorf("%s: %w", path, derr)
			}
			texts[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()
	for i, text := range texts {
		if i > 0 {
			fmt.Fprintln(out)
		}
		if colorize {
			text = colorizeIR(text)
		}
		fmt.Fprint(out, text)
	}
	return nil
}

func dumpFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	p, err := ir.DecodeSnapshot(f)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := ir.Dump(&buf, p); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func colorizeIR(text string) string {
	var sb strings.Builder
	for line := range strings.Lines(text) {
		trimmed := strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(trimmed, "fun ") ||
			strings.HasPrefix(trimmed, "decl ") ||
			strings.HasPrefix(trimmed, "global "):
			sb.WriteString(keywordColor.Sprint(trimmed))
		case strings.HasSuffix(trimmed, ":"):
			sb.WriteString(labelColor.Sprint(trimmed))
		default:
			sb.WriteString(trimmed)
		}
		if strings.HasSuffix(line, "\n") {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
