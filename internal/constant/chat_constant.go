package constant

const (
	ChatMessageRoleUser   = "user"
	ChatMessageRoleModel  = "model"
	ChatMessageRoleSystem = "system"

	OllamaRoleAssistant = "assistant"
	OllamaRoleUser      = "user"
	OllamaRoleSystem    = "system"

	// Stream event roles emitted on the NDJSON answer stream.
	StreamRolePlan    = "plan"
	StreamRoleBot     = "bot"
	StreamRoleWeblink = "weblink"
)

// Route codes produced by the router agent and consumed by the dispatcher.
const (
	RouteShallow = 0
	RouteWeb     = 1
	RouteDocs    = 2
	RouteImages  = 3
)

const (
	// Auto-prompts substituted when the user sends an attachment with no text.
	AutoPromptImage    = "Describe the attached image."
	AutoPromptDocument = "Summarize the attached document."

	// Rejection message for requests with no text and no attachments.
	EmptyInputMessage = "Your input is empty. Please type a clear question or request, or attach a file."

	// Generic message streamed back when the pipeline fails internally.
	InternalErrorMessage = "Something went wrong while answering your request. Please try again."
)

const (
	// System instruction for grounded answer generation over retrieved context.
	GroundedAnswerSystemPrompt = "If provided information does not support with user question, simply answer that you can not answer to this query with provided context"

	// Web variant asks for a deeper answer with sources.
	GroundedWebAnswerSystemPrompt = "If provided information does not support with user question, simply answer that you can not answer to this query with provided context. Please provide deep answer with sources from provided contex."

	// System instruction for the search query expansion agent.
	QueryExpansionSystemPrompt = "Please generate list of query input that will be use with web search for search relevent information for user query"

	// Instruction sent to the vision model together with an image.
	ImageCaptionPrompt = "Please provide full describe and information for this image"
)

const (
	WebSearchCollectionName = "web-parsing"

	// Sentences per document chunk when splitting extracted PDF text.
	DocSentencesPerChunk = 30
)
