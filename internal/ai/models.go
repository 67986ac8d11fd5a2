package ai

// Motivation is the structured reply every provider returns.
type Motivation struct {
	Quote  string `json:"quote" jsonschema:"description=One or two encouraging sentences"`
	Author string `json:"author" jsonschema:"description=Who said it (studyr for new quotes)"`
}
