package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/kegliz/leqo-compile/leqo/catalogue"
	"github.com/kegliz/leqo-compile/leqo/graphbuilder"
	"github.com/kegliz/leqo-compile/leqo/pipeline"
)

func main() {
	inPath := flag.String("in", "", "path to a compile request JSON file (default: stdin)")
	maxUnroll := flag.Int("max-unroll", 1024, "ceiling on a single repeat node's iteration count")
	timeout := flag.Duration("timeout", 30*time.Second, "compile timeout")
	flag.Parse()

	data, err := readRequest(*inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "leqo-compile: %v\n", err)
		os.Exit(1)
	}

	req, err := graphbuilder.Decode(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "leqo-compile: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	snippets := pipeline.SnippetSource{Inline: req.Snippets, Enricher: catalogue.NewStubEnricher()}
	result, err := pipeline.Compile(ctx, req.Graph, snippets, pipeline.Options{
		Optimize:  req.Optimize,
		MaxUnroll: *maxUnroll,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "leqo-compile: %v\n", err)
		os.Exit(1)
	}

	for node, warnings := range result.Warnings {
		for _, w := range warnings {
			fmt.Fprintf(os.Stderr, "leqo-compile: warning: node %q: %s\n", node, w)
		}
	}

	fmt.Print(result.Program)
}

func readRequest(path string) ([]byte, error) {
	if path == "" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
