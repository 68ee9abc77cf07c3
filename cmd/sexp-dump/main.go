// sexp-dump cross-checks an emitted board file: it parses the file with an
// independent s-expression parser and with the built-in reader, then prints
// an element histogram. If the two disagree the emitter is producing output
// that only its own reader can stomach.
package main

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"github.com/chewxy/sexp"

	"github.com/coilworks/fpcwind/pkg/kicad"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: sexp-dump <board_file>")
		os.Exit(1)
	}

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Printf("Error reading file: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("File size: %d bytes\n", len(data))

	// Independent parse first.
	sexps, err := sexp.ParseString(string(data))
	if err != nil {
		fmt.Printf("Independent parser rejected the file: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Independent parse: %d top-level s-expression(s)\n", len(sexps))
	if len(sexps) > 0 && !sexps[0].IsLeaf() {
		fmt.Printf("Leaf count: %d\n", sexps[0].LeafCount())
	}

	// Built-in reader, with an element breakdown.
	doc, err := kicad.Parse(bytes.NewReader(data))
	if err != nil {
		fmt.Printf("Built-in reader rejected the file: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Document: %s\n", doc.Name())
	if doc.IsLeaf() || len(doc.List) == 0 {
		return
	}

	counts := map[string]int{}
	for _, child := range doc.List[1:] {
		if child.IsLeaf() {
			continue
		}
		counts[child.Name()]++
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("Elements:")
	for _, name := range names {
		fmt.Printf("  %-12s %d\n", name, counts[name])
	}
}
