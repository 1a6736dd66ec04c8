package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/museumstyle/internal/wikitext"
)

// errNoInfobox is returned when the markup has no matching infobox fields.
var errNoInfobox = errors.New("no infobox fields found")

// descriptors maps the extract kinds to their infobox descriptors.
var descriptors = map[string]wikitext.Descriptor{
	"museum":   wikitext.MuseumDescriptor,
	"painting": wikitext.PaintingDescriptor,
}

// NewExtractCmd creates the extract command.
func NewExtractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract <museum|painting> <file>",
		Short: "Print the infobox fields of a wikitext file as JSON",
		Long: `Extract parses a file of Wikipedia markup and prints the fields of its
first infobox that museumstyle reads, as JSON. It is useful to check why a
page is or is not picked up by the build. Use "-" to read from stdin.

Examples:
  museumstyle extract museum louvre.wiki
  museumstyle extract painting mona_lisa.wiki`,
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"museum", "painting"},
		RunE:      runExtractCmd,
	}
}

// runExtractCmd executes the extract command.
func runExtractCmd(cmd *cobra.Command, args []string) error {
	descriptor, ok := descriptors[args[0]]
	if !ok {
		return fmt.Errorf("unknown record kind %q (expected museum or painting)", args[0])
	}

	var src []byte
	var err error
	if args[1] == "-" {
		src, err = io.ReadAll(cmd.InOrStdin())
	} else {
		src, err = os.ReadFile(args[1])
	}
	if err != nil {
		return fmt.Errorf("failed to read markup: %w", err)
	}

	fields := wikitext.Extract(string(src), descriptor)
	if len(fields) == 0 {
		return fmt.Errorf("%s: %w", args[1], errNoInfobox)
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(fields)
}
