package ai

// IsReasoningModelForTest exposes isReasoningModel to external tests.
func IsReasoningModelForTest(p *OpenAIProvider) bool {
	return p.isReasoningModel()
}
