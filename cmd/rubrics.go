package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cliplens/match-cli/internal/schema"
)

var rubricsCmd = &cobra.Command{
	Use:   "rubrics",
	Short: "Inspect the scoring rubric catalog",
}

var rubricsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all rubrics and their attribute weights",
	RunE: func(cmd *cobra.Command, _ []string) error {
		registry, err := loadRegistry()
		if err != nil {
			return err
		}
		formatRubrics(os.Stdout, registry.Rubrics())
		return nil
	},
}

var rubricsValidateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Validate a rubric catalog file",
	Long:  "Validates the embedded catalog, or an external YAML file when a path is given.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var registry *schema.Registry
		var err error
		if len(args) == 1 {
			registry, err = schema.LoadFile(args[0])
		} else {
			registry, err = loadRegistry()
		}
		if err != nil {
			return err
		}

		fmt.Printf("OK: %d rubrics loaded\n", len(registry.Rubrics()))
		return nil
	},
}

func formatRubrics(out io.Writer, rubrics []*schema.Rubric) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CATEGORY\tSUBCATEGORY\tATTRIBUTES\tCRITICAL")

	for _, r := range rubrics {
		var critical []string
		for _, a := range r.Attributes {
			if a.Critical {
				critical = append(critical, a.Name)
			}
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
			r.Category, r.Subcategory, len(r.Attributes), strings.Join(critical, ", "))
	}
	_ = w.Flush()
}

func init() {
	rubricsCmd.AddCommand(rubricsListCmd)
	rubricsCmd.AddCommand(rubricsValidateCmd)
	rootCmd.AddCommand(rubricsCmd)
}
