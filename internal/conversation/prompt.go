package conversation

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/m3rciful/insurancebot/internal/domain"
)

//go:embed instructions.txt
var defaultInstructions string

// LoadInstructions renders the scenario instructions with the configured price.
// An empty path selects the built-in instructions.
func LoadInstructions(path string, priceUSD int) (string, error) {
	src := defaultInstructions
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read instructions: %w", err)
		}
		src = string(data)
	}
	tmpl, err := template.New("instructions").Option("missingkey=error").Parse(src)
	if err != nil {
		return "", fmt.Errorf("parse instructions: %w", err)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, struct{ PriceUSD int }{priceUSD}); err != nil {
		return "", fmt.Errorf("render instructions: %w", err)
	}
	return strings.TrimSpace(b.String()), nil
}

// BuildPrompt lays out one generation request: the trimmed history, the new user message
// marked as the one to answer, the scenario instructions and the current step.
func BuildPrompt(history, userText, instructions string, step domain.Step) string {
	var b strings.Builder
	b.WriteString("Chat History:\n")
	b.WriteString(history)
	b.WriteString("User:")
	b.WriteString(userText)
	b.WriteString(" **THIS IS THE LAST MESSAGE FROM USER YOU HAVE TO ANSWER**\n")
	b.WriteString("HISTORY ENDS\n")
	b.WriteString(instructions)
	fmt.Fprintf(&b, "\nCURRENT STEP = %d", int(step))
	return b.String()
}
