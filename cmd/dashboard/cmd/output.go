package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"semaphore/dashboard/internal/result"
)

// unwrap turns a service result into the usual value/error pair.
func unwrap[T any](r result.Result[T]) (T, error) {
	value, err := r.Get()
	if err != nil {
		return value, err
	}
	return value, nil
}

// render prints v as json or yaml, or as a table of headers and rows.
func render(w io.Writer, v any, headers []string, rows [][]string) error {
	switch strings.ToLower(outputFmt) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "yml":
		return writeYAML(w, v)
	case "", "table":
		return writeTable(w, headers, rows)
	}
	return fmt.Errorf("unsupported output format %q", outputFmt)
}

func writeTable(w io.Writer, headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// writeYAML goes through JSON so the json tags name the keys and keep
// their order.
func writeYAML(w io.Writer, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return err
	}
	blockStyle(&node)
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return err
	}
	return enc.Close()
}

func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, child := range n.Content {
		blockStyle(child)
	}
}
