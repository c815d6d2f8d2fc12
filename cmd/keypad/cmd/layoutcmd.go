package cmd

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceKeypad/pkg/keypad"
	"github.com/OpenTraceLab/OpenTraceKeypad/pkg/layout"
	"github.com/spf13/cobra"
)

var layoutCmd = &cobra.Command{
	Use:   "layout <file.kpd>",
	Short: "Parse and validate a keypad layout file",
	Long: `Parse a .kpd layout file, run semantic validation (matrix shape, line
assignments, timings) and print a summary of every keypad it defines.

Examples:
  keypad layout testdata/panel.kpd
  keypad layout -v testdata/panel.kpd`,
	Args: cobra.ExactArgs(1),
	RunE: runLayout,
}

func init() {
	rootCmd.AddCommand(layoutCmd)
}

func runLayout(cmd *cobra.Command, args []string) error {
	parser, err := layout.NewParser()
	if err != nil {
		return err
	}
	file, err := parser.ParseFile(args[0])
	if err != nil {
		return err
	}
	layouts, err := layout.Layouts(file)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d keypad(s)\n", args[0], len(layouts))
	for _, l := range layouts {
		fmt.Printf("\nKeypad %q\n", l.Name)
		fmt.Printf("  Matrix:   %d rows x %d columns\n", len(l.RowLines), len(l.ColLines))
		fmt.Printf("  Rows:     %v\n", l.RowLines)
		fmt.Printf("  Cols:     %v\n", l.ColLines)

		debounce := l.Debounce
		if debounce == 0 {
			debounce = keypad.DefaultDebounce
		}
		hold := l.Hold
		if hold == 0 {
			hold = keypad.DefaultHold
		}
		settle := l.Settle
		if settle == 0 {
			settle = keypad.DefaultSettle
		}
		fmt.Printf("  Debounce: %d ms\n", debounce)
		fmt.Printf("  Hold:     %d ms\n", hold)
		fmt.Printf("  Settle:   %v\n", settle)

		if verbose {
			fmt.Println("  Keymap:")
			for _, row := range l.Keymap {
				fmt.Printf("    %q\n", string(row))
			}
		}
	}

	return nil
}
