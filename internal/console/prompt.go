// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package console

import (
	"errors"
	"io"
	"strings"

	"github.com/peterh/liner"
)

// ErrAborted is returned when the user aborts a prompt with Ctrl+C.
var ErrAborted = errors.New("aborted")

// LinePrompter reads one line of input after showing a prompt.
type LinePrompter interface {
	Prompt(prompt string) (string, error)
}

// Confirm asks a yes/no question on the terminal. Empty input means no.
func Confirm(question string) (bool, error) {
	line := liner.NewLiner()
	defer func() {
		_ = line.Close()
	}()

	line.SetCtrlCAborts(true)

	return ConfirmWith(line, question)
}

// ConfirmWith asks question using p, repeating it until the answer is understood.
func ConfirmWith(p LinePrompter, question string) (bool, error) {
	for {
		input, err := p.Prompt(question + " [y/N] ")

		switch {
		case errors.Is(err, liner.ErrPromptAborted):
			return false, ErrAborted
		case errors.Is(err, io.EOF):
			return false, nil
		case err != nil:
			return false, err
		}

		if yes, ok := parseAnswer(input); ok {
			return yes, nil
		}
	}
}

func parseAnswer(s string) (yes, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes":
		return true, true
	case "", "n", "no":
		return false, true
	default:
		return false, false
	}
}
