package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docask/internal/connectors/google/drive"
	"github.com/custodia-labs/docask/internal/core/domain"
)

// EnvUser names the default user for "docask ask".
const EnvUser = "DOCASK_USER"

var (
	askUser    string
	askSources bool
	askJSON    bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from your documents",
	Long: `Answers a question from the documents the user may see.

The user's own Drive folder is searched first, then the shared team folder
and the local document directory. The user defaults to $DOCASK_USER.

Examples:
  docask ask --user Jeff "What was in the Q2 report?"
  docask ask -u maria --sources what is dealertrack`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askUser, "user", "u", "", "registered user asking (default $DOCASK_USER)")
	askCmd.Flags().BoolVarP(&askSources, "sources", "s", false, "list the documents the answer used")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := requireServices(cmd); err != nil {
		return err
	}

	user := askUser
	if user == "" {
		user = os.Getenv(EnvUser)
	}
	query := strings.Join(args, " ")

	answer, err := answerService.Ask(cmd.Context(), query, user)
	if err != nil {
		var unknown *domain.UnknownUserError
		switch {
		case errors.Is(err, domain.ErrMissingUser):
			return fmt.Errorf("%w: pass --user or set %s", err, EnvUser)
		case errors.As(err, &unknown):
			return fmt.Errorf("unknown user %q; known users: %s", unknown.User, strings.Join(unknown.Valid, ", "))
		}
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return outputAskJSON(cmd, answer)
	}
	outputAskText(cmd, answer)
	return nil
}

type askSourceJSON struct {
	Filename string `json:"filename"`
	Source   string `json:"source"`
	Link     string `json:"link"`
}

type askJSONOutput struct {
	RequestID string          `json:"request_id"`
	Query     string          `json:"query"`
	Terms     string          `json:"terms"`
	User      string          `json:"user"`
	Answer    string          `json:"answer"`
	Mode      string          `json:"mode"`
	AIEnabled bool            `json:"ai_enabled"`
	Sources   []askSourceJSON `json:"sources"`
}

func outputAskJSON(cmd *cobra.Command, answer *domain.Answer) error {
	out := askJSONOutput{
		RequestID: answer.RequestID,
		Query:     answer.Query,
		Terms:     answer.Terms,
		User:      answer.User,
		Answer:    answer.Text,
		Mode:      string(answer.Mode),
		AIEnabled: answer.AIEnabled,
		Sources:   make([]askSourceJSON, len(answer.Documents)),
	}
	for i, doc := range answer.Documents {
		out.Sources[i] = askSourceJSON{Filename: doc.Filename, Source: doc.SourceLabel, Link: drive.DocumentLink(doc)}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

// outputAskText writes to stdout rather than cobra's default stderr so
// answers can be piped.
func outputAskText(cmd *cobra.Command, answer *domain.Answer) {
	out := cmd.OutOrStdout()
	if isTerminal(out) {
		fmt.Fprintf(out, "%s asked: %s\n", answer.User, answer.Query)
		fmt.Fprintf(out, "(%s, %d documents)\n\n", modeDescription(answer.Mode), len(answer.Documents))
	}

	fmt.Fprintln(out, answer.Text)

	if !askSources || len(answer.Documents) == 0 {
		return
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Sources:")
	for i, doc := range answer.Documents {
		fmt.Fprintf(out, "  [%d] %s", i+1, doc.Filename)
		if doc.SourceLabel != "" {
			fmt.Fprintf(out, " (%s)", doc.SourceLabel)
		}
		fmt.Fprintln(out)
		if link := drive.DocumentLink(doc); link != "" {
			fmt.Fprintf(out, "      %s\n", link)
		}
	}
}

func modeDescription(m domain.SynthesisMode) string {
	switch m {
	case domain.SynthesisLLM:
		return "written by the language model"
	case domain.SynthesisExtractive:
		return "quoted from documents"
	case domain.SynthesisKnowledge:
		return "from the knowledge table"
	default:
		return "nothing found"
	}
}
