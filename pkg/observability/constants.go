package observability

// Span and attribute names follow OpenTelemetry's dotted convention.
// Keep these stable: the debug exporter and every call site key off the
// literal values, not just the Go identifiers.
const (
	AttrServiceName    = "service.name"
	AttrServiceVersion = "service.version"
	AttrEventID        = "agentrun.event_id"

	AttrAgentModel      = "agent.model"
	AttrAgentTokens     = "agent.tokens.total"
	AttrToolName        = "tool.name"
	AttrToolCallID      = "tool.call_id"
	AttrLLMModel        = "llm.model"
	AttrLLMProvider     = "llm.provider"
	AttrLLMStreaming    = "llm.streaming"
	AttrLLMTokensInput  = "llm.tokens.input"
	AttrLLMTokensOutput = "llm.tokens.output"
	AttrLLMFinishReason = "llm.finish_reason"
	AttrErrorType       = "error.type"

	AttrHTTPMethod       = "http.method"
	AttrHTTPHost         = "http.host"
	AttrHTTPStatusCode   = "http.status_code"
	AttrHTTPResponseSize = "http.response_size"

	SpanAgentTurn     = "agent.turn"
	SpanLLMRequest    = "agent.llm_request"
	SpanToolExecution = "agent.tool_execution"
	SpanProviderHTTP  = "agent.provider_http"

	DefaultServiceName  = "agentrun"
	DefaultSamplingRate = 1.0
	DefaultOTLPEndpoint = "localhost:4317"
	DefaultMetricsPath  = "/metrics"
)
