// Package cli implements the fmrules command-line interface.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
)

// jsonOutput is the global --json flag.
var jsonOutput bool

// Response is the standard JSON envelope for all CLI output.
type Response struct {
	OK    bool        `json:"ok"`
	Data  interface{} `json:"data,omitempty"`
	Error *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo contains structured error information.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func outputJSON(resp Response) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(resp)
}

func outputSuccess(data interface{}) {
	outputJSON(Response{OK: true, Data: data})
}

func outputError(code, message string) {
	outputJSON(Response{OK: false, Error: &ErrorInfo{Code: code, Message: message}})
}

func isJSONOutput() bool {
	return jsonOutput
}

// handleError prints a JSON error response and swallows it from cobra when
// --json is set (so cobra doesn't also print it to stderr); otherwise it
// returns a plain error for cobra to report.
func handleError(code string, err error) error {
	if jsonOutput {
		outputError(code, err.Error())
		return nil
	}
	return fmt.Errorf("%s", err.Error())
}
