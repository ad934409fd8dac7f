package reflexion

const (
	PlanPrompt = `You are an expert writer. Create a detailed outline for an essay on the given topic.
Include main sections and key points to cover.`

	ResearchPrompt = `Generate 3 search queries to gather information for writing an essay.
Make queries specific and factual.`

	WriterPrompt = `Write a well-structured essay based on the outline and sources provided.
Be clear, accurate, and thorough.

Context:
%s`

	ReviewPrompt = `Critique this essay. Identify gaps, weak arguments, missing evidence,
and areas needing improvement. Be specific about what needs to change.`

	ResearchCritiquePrompt = `Generate 3 search queries to find information that addresses
the critiques mentioned. Focus on filling the gaps identified.`

	jsonInstruction = `

Respond with a single JSON object and nothing else. It must match this JSON Schema:
%s`
)
