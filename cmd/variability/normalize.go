package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/stemsi/exstem-variability/internal/serde"
)

func normalizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "normalize [FILE|-]",
		Short: "Convert a JSON document between wire and application format",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runNormalize,
	}
	f := cmd.Flags()
	f.StringP("direction", "d", "application", "Target format (application, wire)")
	f.Int("root-depth", 0, "Depth of the top-level value for wire output (-1 for an array of documents)")
	return cmd
}

func runNormalize(cmd *cobra.Command, args []string) error {
	v := viperForCmd(cmd)
	setupLogging(cmd, v)

	path := "-"
	if len(args) == 1 {
		path = args[0]
	}

	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	return normalize(r, cmd.OutOrStdout(), v.GetString("direction"), v.GetInt("root-depth"))
}

func normalize(r io.Reader, w io.Writer, direction string, rootDepth int) error {
	var doc any
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return fmt.Errorf("parse input: %w", err)
	}

	var out any
	switch direction {
	case "application":
		out = serde.ToApplication(doc)
	case "wire":
		out = serde.ToWire(doc, rootDepth)
	default:
		return fmt.Errorf("unknown direction %q", direction)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
