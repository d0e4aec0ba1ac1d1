package ui

import (
	"github.com/stool-cli/stool/internal/apperr"
	"github.com/stool-cli/stool/internal/secret"
)

// Scripted answers prompts from fixed lists, in order. A negative entry in
// Selects cancels that menu. Prompts and menus shown are recorded.
type Scripted struct {
	Selects []int
	Inputs  []string
	Secrets []string

	Prompts []string
	Menus   [][]string
}

func (s *Scripted) Select(prompt string, items []string) (int, error) {
	s.Prompts = append(s.Prompts, prompt)
	s.Menus = append(s.Menus, append([]string(nil), items...))
	if len(s.Selects) == 0 {
		return -1, apperr.Newf(apperr.InvalidInput, "no scripted answer for %q", prompt)
	}
	i := s.Selects[0]
	s.Selects = s.Selects[1:]
	if i < 0 {
		return -1, ErrCancelled
	}
	if i >= len(items) {
		return -1, apperr.Newf(apperr.InvalidInput, "scripted choice %d out of range for %q", i, prompt)
	}
	return i, nil
}

func (s *Scripted) Input(prompt string) (string, error) {
	s.Prompts = append(s.Prompts, prompt)
	if len(s.Inputs) == 0 {
		return "", apperr.Newf(apperr.InvalidInput, "no scripted answer for %q", prompt)
	}
	v := s.Inputs[0]
	s.Inputs = s.Inputs[1:]
	return v, nil
}

func (s *Scripted) Secret(prompt string) (*secret.Secret, error) {
	s.Prompts = append(s.Prompts, prompt)
	if len(s.Secrets) == 0 {
		return nil, apperr.Newf(apperr.InvalidInput, "no scripted answer for %q", prompt)
	}
	v := s.Secrets[0]
	s.Secrets = s.Secrets[1:]
	return secret.FromString(v), nil
}
