package llm

import "fmt"

const systemPrompt = "You are a professional translator. Translate the user's text faithfully. " +
	"Preserve paragraph breaks and punctuation. Reply with the translation only, without commentary."

// SystemPrompt returns the instruction shared by all providers.
func SystemPrompt() string {
	return systemPrompt
}

// UserPrompt renders the per-request instruction for input.
func UserPrompt(input TranslateInput) string {
	name := input.LanguageName
	if name == "" {
		name = input.Language
	}
	return fmt.Sprintf("Translate the following text into %s (%s):\n\n%s", name, input.Language, input.Text)
}
