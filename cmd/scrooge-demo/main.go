// Command scrooge-demo is a small runnable demonstration of the scrooge
// engine, grounded on the teacher's example/sexp.go and
// example/rpn/rpn.go programs: read input from stdin line by line,
// run it through a named rule, print the result. Here the "toy grammar"
// is a YAML-described rule table over []float64 instead of a text
// grammar, since scrooge matches sequences, not characters.
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/hucsmn/scrooge"
	"github.com/hucsmn/scrooge/grammar"
)

const defaultDoc = `
rules:
  peak:   {kind: extremum}
  rising: {kind: ascending}
  run:    {kind: seq, of: [peak, rising]}
  trend:  {kind: repeat, min: 1, max: 0, of: run}
`

func main() {
	sessionID := uuid.New()
	log.SetPrefix(fmt.Sprintf("scrooge-demo[%s] ", sessionID.String()[:8]))

	docPath := ""
	ruleName := "trend"
	if len(os.Args) > 1 {
		docPath = os.Args[1]
	}
	if len(os.Args) > 2 {
		ruleName = os.Args[2]
	}

	raw := []byte(defaultDoc)
	if docPath != "" {
		b, err := os.ReadFile(docPath)
		if err != nil {
			log.Fatalf("reading rule document: %v", err)
		}
		raw = b
	}

	rules, err := grammar.LoadDocument(raw)
	if err != nil {
		log.Fatalf("loading rule document: %v", err)
	}
	if _, ok := rules.Lookup(ruleName); !ok {
		log.Fatalf("no such rule %q; known rules: %v", ruleName, rules.Names())
	}

	fmt.Printf("scrooge-demo: matching rule %q against whitespace-separated floats, one line at a time.\n", ruleName)
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		data, err := parseFloats(line)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			continue
		}

		outcome, err := rules.Run(ruleName, scrooge.SliceSequence[float64](data), scrooge.Config{})
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			continue
		}
		if outcome == nil {
			fmt.Println("no match")
			continue
		}
		fmt.Printf("match[%s]: [%d,%d] length=%d captures=%v\n",
			outcome.MatchID.String()[:8], outcome.Left, outcome.Right, outcome.Length, outcome.Captures.Names())
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("reading input: %v", err)
	}
}

func parseFloats(line string) ([]float64, error) {
	fields := strings.Fields(line)
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("field %d (%q): %w", i, f, err)
		}
		out[i] = v
	}
	return out, nil
}
