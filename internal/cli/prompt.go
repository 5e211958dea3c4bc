package cli

import (
	"github.com/AlecAivazis/survey/v2"

	"github.com/tacogips/projgen/internal/template/resolver"
)

// surveyPrompter asks questions on the terminal.
type surveyPrompter struct{}

var _ resolver.Prompter = surveyPrompter{}

// Confirm asks a yes/no question.
func (surveyPrompter) Confirm(message string, def bool) (bool, error) {
	var result bool
	prompt := &survey.Confirm{
		Message: message,
		Default: def,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}

// Select asks the user to pick one of choices. def is preselected when it
// is one of them.
func (surveyPrompter) Select(message string, choices []string, def string) (string, error) {
	var result string
	prompt := &survey.Select{
		Message: message,
		Options: choices,
	}
	if containsString(choices, def) {
		prompt.Default = def
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

// Input asks for free text.
func (surveyPrompter) Input(message, def string) (string, error) {
	var result string
	prompt := &survey.Input{
		Message: message,
		Default: def,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// newPrompter returns a terminal prompter, or nil when prompting is off.
// A nil prompter makes the workflow run silently.
func newPrompter(silent bool) resolver.Prompter {
	if silent || !stdinIsTerminal() {
		return nil
	}
	return surveyPrompter{}
}
