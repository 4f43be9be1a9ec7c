package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/frontmatter-rules/engine/internal/action"
	"github.com/frontmatter-rules/engine/internal/condition"
	"github.com/frontmatter-rules/engine/internal/ui"
)

var checkCmd = &cobra.Command{
	Use:   "check <condition-expr>",
	Short: "Parse-check a condition expression and print its AST shape",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cond, err := condition.Parse(args[0], cfg.PathLimits())
		if err != nil {
			return handleError(ErrConditionParse, err)
		}

		shape := describeCondition(cond, 0)
		if isJSONOutput() {
			outputSuccess(map[string]string{"shape": shape})
			return nil
		}
		fmt.Println(ui.Success("parsed"))
		fmt.Println(shape)
		return nil
	},
}

var checkActionCmd = &cobra.Command{
	Use:   "check-action <action-expr>",
	Short: "Parse-check an action expression and print its AST shape",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		act, err := action.Parse(args[0], cfg.PathLimits())
		if err != nil {
			return handleError(ErrActionParse, err)
		}

		shape := describeAction(act)
		if isJSONOutput() {
			outputSuccess(map[string]string{"shape": shape})
			return nil
		}
		fmt.Println(ui.Success("parsed"))
		fmt.Println(shape)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(checkActionCmd)
}
