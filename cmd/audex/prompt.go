package main

import (
	"github.com/AlecAivazis/survey/v2"
)

// prompter asks the user to choose among options. Tests swap in a fake.
type prompter interface {
	Select(message string, options []string, defaultValue string) (string, error)
}

type surveyPrompter struct{}

func (surveyPrompter) Select(message string, options []string, defaultValue string) (string, error) {
	result := defaultValue
	prompt := &survey.Select{
		Message: message,
		Options: options,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

var defaultPrompter prompter = surveyPrompter{}
