package main

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"text/template"

	"github.com/spf13/cobra"

	"github.com/nao1215/museumstyle/internal/config"
)

// configFileName is the default configuration file name.
const configFileName = config.DefaultConfigFile

//go:embed templates/museumstyle.yaml
var templateFS embed.FS

// configTemplate renders the commented configuration file.
var configTemplate = template.Must(template.New("museumstyle.yaml").
	Funcs(template.FuncMap{"quote": strconv.Quote}).
	ParseFS(templateFS, "templates/museumstyle.yaml"))

// templateValues are the settings written into a new configuration file.
type templateValues struct {
	Driver      string
	Script      string
	Interpreter string
	MuseumLimit int
	Width       int
	RateLimit   float64
}

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a museumstyle configuration file",
		Long: `Init writes a commented .museumstyle configuration file listing every
setting with its default value. The store driver and the style transfer
script can be filled in right away; the connection string is left to
$MUSEUMSTYLE_DSN or a later edit, so no password ends up in the file by
accident.

Examples:
  # Write .museumstyle for a PostgreSQL store
  museumstyle init

  # Local SQLite dump and a checked-out style transfer script
  museumstyle init --driver sqlite --neural-style-py ~/neural-style/neural_style.py

  # Replace an existing file
  museumstyle init -o ~/.museumstyle -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", configFileName, "Path of the configuration file to write")
	cmd.Flags().BoolP("force", "f", false, "Replace an existing configuration file")
	cmd.Flags().String("driver", config.DefaultDriver, "Store driver: postgres, mysql or sqlite")
	cmd.Flags().String("neural-style-py", "", "Style transfer script to configure")
	cmd.Flags().String("python", config.DefaultInterpreter, "Interpreter for the style transfer script")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	outputPath, err := flags.GetString("output")
	if err != nil {
		return err
	}
	force, err := flags.GetBool("force")
	if err != nil {
		return err
	}

	values := templateValues{
		MuseumLimit: config.DefaultMuseumLimit,
		Width:       config.DefaultTargetWidth,
		RateLimit:   config.DefaultRateLimit,
	}
	if values.Driver, err = flags.GetString("driver"); err != nil {
		return err
	}
	if values.Script, err = flags.GetString("neural-style-py"); err != nil {
		return err
	}
	if values.Interpreter, err = flags.GetString("python"); err != nil {
		return err
	}
	if !slices.Contains(config.Drivers, values.Driver) {
		return fmt.Errorf("%w: %q", config.ErrInvalidDriver, values.Driver)
	}

	switch info, err := os.Stat(outputPath); {
	case err == nil && info.IsDir():
		return fmt.Errorf("%s is a directory, pass the path of the file with -o", outputPath)
	case err == nil && !force:
		return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
	}

	content, err := renderConfig(values)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	// the file may later hold a DSN with a password
	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(out, "\nBefore the first build:")
	fmt.Fprintf(out, "  - set store.dsn or $MUSEUMSTYLE_DSN for the %s store\n", values.Driver)
	if values.Script == "" {
		fmt.Fprintln(out, "  - set stylizer.script to the style transfer script")
	}
	fmt.Fprintf(out, "Then run: museumstyle build --config %s\n", outputPath)
	return nil
}

// renderConfig fills in the template and checks that the result loads as a
// configuration file.
func renderConfig(values templateValues) ([]byte, error) {
	var buf bytes.Buffer
	if err := configTemplate.Execute(&buf, values); err != nil {
		return nil, fmt.Errorf("failed to render config template: %w", err)
	}

	file, err := config.ParseConfig(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("rendered configuration is not valid YAML: %w", err)
	}
	if err := file.Apply(config.NewConfig()); err != nil {
		return nil, fmt.Errorf("rendered configuration is invalid: %w", err)
	}
	return buf.Bytes(), nil
}
