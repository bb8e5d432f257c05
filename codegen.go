package atlasportal

type integrationCodeData struct {
	Constants []Constant
	Contracts []string
	Quests    []string
}

const integrationCodeTemplate = `// Atlas Mines portal integration constants.
// This blob is rendered for human review, nothing parses it.
{{range .Constants}}
export const {{.Name}} = {{.Value}};
{{- end}}

// Found contracts:
{{- range .Contracts}}
//   {{.}}
{{- else}}
//   (none)
{{- end}}

// Found quests:
{{- range .Quests}}
//   {{.}}
{{- else}}
//   (none)
{{- end}}
`

// IntegrationCode renders the static integration code blob for an assembly.
// It embeds the five reference constants and the names of the found contract
// and quest pieces. The output is intended for human consumption only.
func IntegrationCode(assembly Assembly) (string, error) {
	data := integrationCodeData{
		Constants: assembly.Assembled.Integration.Constants,
	}
	for _, piece := range assembly.Assembled.Integration.Contracts {
		data.Contracts = append(data.Contracts, piece.Name)
	}
	for _, piece := range assembly.Assembled.Integration.Quests {
		data.Quests = append(data.Quests, piece.Name)
	}

	return promptTemplate("integration-code", integrationCodeTemplate, data)
}
