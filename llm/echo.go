package llm

import "errors"

// Echo provides a mock implementation of the LLM interface. No model is
// called: the "response" is the last user message itself. The portal uses it
// when no chat backend is configured, so a guardian chat returns the
// rendered prompt verbatim.
type Echo struct{}

// NewEcho creates a new Echo instance.
func NewEcho() Echo {
	return Echo{}
}

// Chat returns the last user message unchanged.
func (Echo) Chat(messages []string) (string, error) {
	if len(messages) == 0 {
		return "", errors.New("no messages given")
	}
	return messages[len(messages)-1], nil
}
