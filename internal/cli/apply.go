package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/frontmatter-rules/engine/internal/atomicfile"
	"github.com/frontmatter-rules/engine/internal/audit"
	"github.com/frontmatter-rules/engine/internal/frontmatter"
	"github.com/frontmatter-rules/engine/internal/rule"
	"github.com/frontmatter-rules/engine/internal/ui"
)

var (
	applyCondition string
	applyAction    string
	applyWrite     bool
	applyVault     string
	applyAuditLog  string
)

var applyCmd = &cobra.Command{
	Use:   "apply <file.md>",
	Short: "Run one rule against one note and print the classified result",
	Args:  cobra.ExactArgs(1),
	RunE:  runApply,
}

func init() {
	applyCmd.Flags().StringVar(&applyCondition, "condition", "", "Condition expression (omit to always run the action)")
	applyCmd.Flags().StringVar(&applyAction, "action", "", "Action expression (required)")
	applyCmd.Flags().BoolVar(&applyWrite, "write", false, "Write the result back to the file atomically")
	applyCmd.Flags().StringVar(&applyVault, "vault-name", "", "Vault name exposed to the rule as {{vault}}")
	applyCmd.Flags().StringVar(&applyAuditLog, "audit-log", "", "Path to an append-only JSON-lines audit log")
	_ = applyCmd.MarkFlagRequired("action")
	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	path := args[0]

	raw, err := os.ReadFile(path)
	if err != nil {
		return handleError(ErrFileReadError, err)
	}

	fm, body, err := frontmatter.Split(string(raw))
	if err != nil {
		return handleError(ErrFileReadError, fmt.Errorf("parsing front-matter: %w", err))
	}

	fc := rule.FileContext{
		Basename:  strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Path:      path,
		Folder:    filepath.Dir(path),
		VaultName: applyVault,
	}

	r := rule.Rule{Condition: applyCondition, Action: applyAction}
	limits := rule.Limits{Path: cfg.PathLimits(), Condition: cfg.ConditionLimits()}

	result := rule.Run(r, fm, fc, time.Now(), limits)

	if applyAuditLog != "" {
		logger := audit.New(applyAuditLog, true)
		_ = logger.LogApply("", path, string(result.Status), result.Changes, messageFor(result))
	}

	if applyWrite && (result.Status == rule.StatusSuccess || result.Status == rule.StatusWarning) {
		joined, err := frontmatter.Join(result.NewValue, body)
		if err != nil {
			return handleError(ErrFileWriteError, err)
		}
		if err := atomicfile.WriteFile(path, []byte(joined), 0); err != nil {
			return handleError(ErrFileWriteError, err)
		}
	}

	if isJSONOutput() {
		outputSuccess(applyResultPayload(result, applyWrite))
		return nil
	}

	printApplyResult(path, result, applyWrite)
	return nil
}

type applyPayload struct {
	Status   string   `json:"status"`
	Modified bool     `json:"modified"`
	Changes  []string `json:"changes,omitempty"`
	Message  string   `json:"message,omitempty"`
	Written  bool     `json:"written"`
}

func applyResultPayload(result rule.FileResult, written bool) applyPayload {
	return applyPayload{
		Status:   string(result.Status),
		Modified: result.Modified,
		Changes:  result.Changes,
		Message:  messageFor(result),
		Written:  written && (result.Status == rule.StatusSuccess || result.Status == rule.StatusWarning),
	}
}

func messageFor(result rule.FileResult) string {
	if result.Err != nil {
		return result.Err.Error()
	}
	return ""
}

func printApplyResult(path string, result rule.FileResult, wrote bool) {
	switch result.Status {
	case rule.StatusSuccess:
		fmt.Println(ui.Successf("%s: %s", ui.FilePath(path), strings.Join(result.Changes, "; ")))
	case rule.StatusWarning:
		fmt.Println(ui.Warningf("%s: %s", ui.FilePath(path), messageFor(result)))
	case rule.StatusSkipped:
		fmt.Println(ui.Info(fmt.Sprintf("%s: skipped (condition false or nothing to change)", ui.FilePath(path))))
	case rule.StatusError:
		fmt.Println(ui.Errorf("%s: %s", ui.FilePath(path), messageFor(result)))
	}
	if wrote && (result.Status == rule.StatusSuccess || result.Status == rule.StatusWarning) {
		fmt.Println(ui.Hint("written to " + path))
	}
}
