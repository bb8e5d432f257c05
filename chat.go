package atlasportal

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	"github.com/bridgeworld/atlas-portal/internal"
)

// FrensReply is the structured answer of an AI Frens chat turn.
type FrensReply struct {
	Reply           string   `json:"reply"`
	SuggestedQuests []string `json:"suggested_quests"`
}

// GuardianChat renders the guardian prompt for the given path and sends it
// through the LLM. With the Echo client the returned "response" is the
// rendered prompt itself, which is the portal's original mock behavior. An
// unknown path sends the fixed not-found string, never an error.
func GuardianChat(llm LLM, path int, message string) (string, error) {
	prompt := BuildGuardianPrompt(path, message)

	response, err := llm.Chat([]string{prompt})
	if err != nil {
		return "", fmt.Errorf("failed to call LLM: %w", err)
	}

	return response, nil
}

// AskFrens renders the structured AI Frens prompt, calls the LLM, and parses
// the JSON answer. The path is optional; pass 0 to chat without a guardian
// persona. LLM output is repaired before parsing since models frequently
// return sloppy JSON.
func AskFrens(llm LLM, path int, message string, logger *slog.Logger) (FrensReply, error) {
	logger = logger.With(
		slog.String("package", "atlasportal"),
		slog.String("function", "AskFrens"),
	)

	data := FrensPromptData{
		Message:   message,
		Constants: Constants(),
	}
	if guardian, ok := GuardianByPath(path); ok {
		data.HasGuardian = true
		data.Guardian = guardian
	}

	prompt, err := promptTemplate("frens", frensPrompt, data)
	if err != nil {
		return FrensReply{}, fmt.Errorf("failed to generate frens prompt: %w", err)
	}

	if count, err := internal.CountTokens(prompt); err == nil {
		logger.Debug("Calling LLM", "promptTokens", count)
	}

	response, err := llm.Chat([]string{prompt})
	if err != nil {
		return FrensReply{}, fmt.Errorf("failed to call LLM: %w", err)
	}

	repaired, err := jsonrepair.RepairJSON(removeMarkdownBackticks(response))
	if err != nil {
		return FrensReply{}, fmt.Errorf("failed to repair LLM response: %w", err)
	}

	var reply FrensReply
	if err := json.Unmarshal([]byte(repaired), &reply); err != nil {
		return FrensReply{}, fmt.Errorf("failed to parse LLM response: %w", err)
	}

	return reply, nil
}

func removeMarkdownBackticks(input string) string {
	lines := strings.Split(input, "\n")

	// Filter out lines that start with triple backticks
	var filteredLines []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "```") {
			filteredLines = append(filteredLines, line)
		}
	}

	return strings.Join(filteredLines, "\n")
}
