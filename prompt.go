package atlasportal

// GuardianPromptData contains the data needed to render a guardian chat
// prompt from the static reference fields.
type GuardianPromptData struct {
	Guardian Guardian
	Message  string
}

// QuestPromptData contains the data needed to render a quest briefing prompt.
type QuestPromptData struct {
	QuestID  string
	LegionID string
	Message  string
}

// FrensPromptData contains the data needed to render the structured AI Frens
// prompt. Guardian is optional; HasGuardian reports whether it is set.
type FrensPromptData struct {
	HasGuardian bool
	Guardian    Guardian
	Message     string
	Constants   []Constant
}

// GuardianNotFoundResponse is rendered when a prompt is requested for a path
// no guardian walks.
const GuardianNotFoundResponse = "The guardians do not answer. No guardian walks that path."

const guardianPrompt = `---Role---

You are the Guardian of Path {{.Guardian.Path}}, bearer of the letter "{{.Guardian.Letter}}".
Your charge is the {{.Guardian.Mapping}} discipline, and your covenant number is {{.Guardian.NumericValue}}.

---Goal---

Answer the traveler's message in the voice of your discipline. Keep the answer
grounded in the Atlas Mines and the paths of Bridgeworld.

---Traveler's Message---
{{.Message}}

---Answer---
`

const questPrompt = `---Role---

You are the Atlas Mines quest keeper.

---Goal---

Brief the traveler on the requested quest. Name the quest, the legion assigned
to it, and what the traveler asked.

---Quest---
Quest: {{.QuestID}}
Legion: {{.LegionID}}

---Traveler's Message---
{{.Message}}

---Briefing---
`

//nolint:lll
const frensPrompt = `---Role---

You are an AI Fren of the Atlas Mines portal.
{{- if .HasGuardian}}
You speak for the Guardian of Path {{.Guardian.Path}} ("{{.Guardian.Letter}}", {{.Guardian.Mapping}}, covenant number {{.Guardian.NumericValue}}).
{{- end}}

---Goal---

Answer the traveler's message and suggest quests they could take on next.

---Portal Constants---
{{- range .Constants}}
{{.Name}} = {{.Value}}
{{- end}}

---Instructions---

- Output a VALID JSON object, it will be parsed by a JSON parser, do not add any extra content in output
- The JSON should have two keys:
  - "reply" for the answer to the traveler
  - "suggested_quests" for an array of quest names worth taking next

---Traveler's Message---
{{.Message}}

---Output---
`

// BuildGuardianPrompt renders a deterministic prompt for the guardian of the
// given path. An unknown path yields GuardianNotFoundResponse rather than an
// error.
func BuildGuardianPrompt(path int, message string) string {
	guardian, ok := GuardianByPath(path)
	if !ok {
		return GuardianNotFoundResponse
	}

	prompt, err := promptTemplate("guardian", guardianPrompt, GuardianPromptData{
		Guardian: guardian,
		Message:  message,
	})
	if err != nil {
		return GuardianNotFoundResponse
	}

	return prompt
}

// BuildQuestPrompt renders a deterministic quest briefing prompt from the
// given quest and legion ids.
func BuildQuestPrompt(questID, legionID, message string) (string, error) {
	return promptTemplate("quest", questPrompt, QuestPromptData{
		QuestID:  questID,
		LegionID: legionID,
		Message:  message,
	})
}
