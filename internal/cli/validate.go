package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"media-choice-service/internal/content"
	"media-choice-service/internal/infra/memory"
)

// NewValidateCmd lints question files without starting the server.
// A .json file holds a single question; anything else is read as a question file.
func NewValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>...",
		Short: "Check authored question files against the question schema",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, path := range args {
				n, err := validateFile(path)
				if err != nil {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d question(s) ok\n", path, n)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d file(s) invalid", failed, len(args))
			}
			return nil
		},
	}
}

func validateFile(path string) (int, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		raw, err := os.ReadFile(path)
		if err != nil {
			return 0, err
		}
		if err := content.ValidateJSON(raw); err != nil {
			return 0, err
		}
		return 1, nil
	}
	questions, err := memory.LoadQuestionFile(path)
	if err != nil {
		return 0, err
	}
	return len(questions), nil
}
