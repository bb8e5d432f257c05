package llm

// Parameters contains the optional configuration parameters for LLM
// services.
//
// Not all parameters are supported by all LLM providers. The parameters are
// documented in the corresponding LLM provider's documentation.
type Parameters struct {
	Temperature *float32 `yaml:"temperature"`
	TopP        *float32 `yaml:"topP"`
	TopK        *int     `yaml:"topK"`
	MinP        *float32 `yaml:"minP"`
	Seed        *int     `yaml:"seed"`
	MaxTokens   *int     `yaml:"maxTokens"`
	Stop        []string `yaml:"stop"`
}
