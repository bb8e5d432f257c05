package search

// Parameters contains the optional configuration parameters for search
// services.
//
// Not all parameters are supported by all search providers. The parameters
// are documented in the corresponding provider's API documentation.
type Parameters struct {
	Country     *string `yaml:"country"`
	SearchLang  *string `yaml:"searchLang"`
	SafeSearch  *string `yaml:"safeSearch"`
	Freshness   *string `yaml:"freshness"`
	SearchDepth *string `yaml:"searchDepth"`

	// Endpoint overrides the provider's default API endpoint, which is
	// mainly useful for tests.
	Endpoint *string `yaml:"endpoint"`
}
