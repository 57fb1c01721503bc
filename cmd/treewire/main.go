// Command treewire is a development inspection tool: it pipes markup or
// serialized trees through a transformer so the wire shapes can be
// examined on the command line. No components are registered, so the
// transformer runs in legacy mode and everything flows through the
// structural fallbacks.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pthm/treewire"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]

	switch cmd {
	case "transform":
		if err := runTransform(); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	case "render":
		if err := runRender(); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("treewire version %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`treewire - UI tree serialization inspector

Usage:
  treewire <command>

Commands:
  transform   Read HTML from stdin, print the serialized JSON tree
  render      Read a serialized JSON tree from stdin, print HTML
  version     Print version
  help        Show this help

Examples:
  echo '<div class="card"><p>hi</p></div>' | treewire transform
  treewire transform < page.html | treewire render`)
}

func newTransformer() *treewire.Transformer {
	return treewire.NewTransformer(
		treewire.WithStrictMode(false),
		treewire.WithDebugRendering(true),
	)
}

func runTransform() error {
	input, err := io.ReadAll(os.Stdin)
	if err != nil {
		return err
	}

	tw := newTransformer()
	nodes, err := tw.TransformHTML(string(input))
	if err != nil {
		return err
	}
	out, err := tw.Serialize(nodes)
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

func runRender() error {
	input, err := io.ReadAll(os.Stdin)
	if err != nil {
		return err
	}

	tw := newTransformer()
	node, err := tw.Deserialize(string(input))
	if err != nil {
		return err
	}
	return tw.Render(context.Background(), os.Stdout, node)
}
