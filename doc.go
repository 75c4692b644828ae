// Package agentrun is an embeddable runtime for autonomous LLM agents
// that execute tool calls against a local host on behalf of a remote
// model provider.
//
// It ships the machinery a safe agent needs: a tool-execution loop
// with multi-provider authentication, a TOCTOU-safe filesystem
// sandbox, an OS-level process sandbox (Linux Landlock / macOS
// Seatbelt), an AST-aware bash command analyzer, an MCP client with
// deferred-tool discovery, and a progressive-disclosure context
// assembler that keeps only metadata in the model prompt and loads
// full content on demand.
//
// # Quick start
//
// Build a security context, wire it into a tool registry, and drive
// an agent loop against it:
//
//	secCtx, err := security.New(ctx, workdir)
//	registry := tool.NewRegistry()
//	registry.Register(tool.NewReadFileTool(secCtx))
//	registry.Register(tool.NewBashTool(secCtx, tool.NewShellRegistry()))
//
//	client := messageclient.New(auth.APIKey(apiKey))
//	estimator, err := tokens.NewEstimator()
//	loop := agentloop.NewLoop(agentloop.DefaultConfig(modelID), client, registry, estimator)
//
//	spec, _ := llms.DefaultRegistry().Resolve(ctx, "sonnet")
//	session := agentloop.NewSession(tokens.NewTracker(spec, false, tokens.NewPricing(3, 15)))
//	result, err := loop.Execute(ctx, session, "fix the failing test")
//
// # Package layout
//
// Security primitives live under pkg/security (safepath, safefs,
// bashguard, envguard, rlimit, sandbox, netguard). Provider
// connectivity lives under pkg/auth, pkg/llms, pkg/messageclient, and
// pkg/resilience. Progressive disclosure and tool search live under
// pkg/disclosure, pkg/toolsearch, and pkg/contextassembler. The
// orchestrating loop is pkg/agentloop; pkg/tool and pkg/mcp supply its
// dispatch targets.
//
// # Non-goals
//
// This module does not implement an LLM, does not manage long-lived
// cluster state, does not sandbox native code beyond the cited kernel
// mechanisms, and does not guarantee confidentiality of model inputs
// from the model provider.
package agentrun
