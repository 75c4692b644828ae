// Copyright 2026 The Agentrun Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package bashguard analyzes a bash command string before it is ever
// executed: a dangerous-pattern regex table flags whole-command
// shapes (fork bombs, reverse shells, disk wipes), while an AST walk
// over mvdan.cc/sh/v3's parser surfaces structural concerns a regex
// alone would miss — command substitution, process substitution,
// eval/source usage, privilege escalation commands — plus the list of
// referenced paths and invoked command names. A Policy then
// decides whether the resulting Analysis is allowed to run.
package bashguard

import (
	"regexp"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// Concern is a structural or textual property of a command that a
// policy may or may not allow.
type Concern int

const (
	CommandSubstitution Concern = iota
	ProcessSubstitution
	EvalUsage
	RemoteExecution
	PrivilegeEscalation
	VariableExpansion
	BacktickSubstitution
	DangerousCommand
)

func (c Concern) String() string {
	switch c {
	case CommandSubstitution:
		return "command_substitution"
	case ProcessSubstitution:
		return "process_substitution"
	case EvalUsage:
		return "eval_usage"
	case RemoteExecution:
		return "remote_execution"
	case PrivilegeEscalation:
		return "privilege_escalation"
	case VariableExpansion:
		return "variable_expansion"
	case BacktickSubstitution:
		return "backtick_substitution"
	case DangerousCommand:
		return "dangerous_command"
	default:
		return "unknown"
	}
}

// PathContext describes how a referenced path appeared in the command.
type PathContext int

const (
	PathArgument PathContext = iota
	PathInputRedirect
	PathOutputRedirect
	PathHereDoc
)

// ReferencedPath is a filesystem path the analyzer found in the command.
type ReferencedPath struct {
	Path    string
	Context PathContext
}

// FoundConcern pairs a structural Concern with the dangerous-pattern
// label when Concern is DangerousCommand.
type FoundConcern struct {
	Concern Concern
	Label   string
}

// Analysis is everything the analyzer extracted from one command.
type Analysis struct {
	Paths    []ReferencedPath
	Commands []string
	EnvVars  map[string]struct{}
	Concerns []FoundConcern
}

func newAnalysis() *Analysis {
	return &Analysis{EnvVars: make(map[string]struct{})}
}

// HasConcern reports whether the analysis recorded at least one
// occurrence of the given structural concern.
func (a *Analysis) HasConcern(c Concern) bool {
	for _, fc := range a.Concerns {
		if fc.Concern == c {
			return true
		}
	}
	return false
}

// Policy decides which concerns and which commands are permitted.
type Policy struct {
	AllowCommandSubstitution bool
	AllowProcessSubstitution bool
	AllowEval                bool
	AllowRemoteExec          bool
	AllowPrivilegeEscalation bool
	AllowVariableExpansion   bool
	BlockedCommands          map[string]struct{}
}

// Strict refuses every structural concern and blocks the default
// network-fetch command set.
func Strict() Policy {
	return Policy{BlockedCommands: defaultBlockedCommands()}
}

// Permissive allows every structural concern and blocks nothing.
func Permissive() Policy {
	return Policy{
		AllowCommandSubstitution: true,
		AllowProcessSubstitution: true,
		AllowEval:                true,
		AllowRemoteExec:          true,
		AllowPrivilegeEscalation: true,
		AllowVariableExpansion:   true,
	}
}

// Default blocks remote execution and privilege escalation but allows
// the shell-scripting conveniences (substitution, variable expansion)
// an agent legitimately needs.
func Default() Policy {
	return Policy{
		AllowCommandSubstitution: true,
		AllowProcessSubstitution: true,
		AllowVariableExpansion:   true,
		BlockedCommands:          defaultBlockedCommands(),
	}
}

// WithBlockedCommands returns a copy of p with its blocked command set
// replaced.
func (p Policy) WithBlockedCommands(commands ...string) Policy {
	p.BlockedCommands = make(map[string]struct{}, len(commands))
	for _, c := range commands {
		p.BlockedCommands[c] = struct{}{}
	}
	return p
}

// IsCommandBlocked reports whether command's base program name is in
// the blocked set.
func (p Policy) IsCommandBlocked(command string) bool {
	base := command
	if i := strings.IndexAny(command, " \t"); i >= 0 {
		base = command[:i]
	}
	_, blocked := p.BlockedCommands[base]
	return blocked
}

// Allows reports whether p permits the given concern.
func (p Policy) Allows(c FoundConcern) bool {
	switch c.Concern {
	case CommandSubstitution, BacktickSubstitution:
		return p.AllowCommandSubstitution
	case ProcessSubstitution:
		return p.AllowProcessSubstitution
	case EvalUsage:
		return p.AllowEval
	case RemoteExecution:
		return p.AllowRemoteExec
	case PrivilegeEscalation:
		return p.AllowPrivilegeEscalation
	case VariableExpansion:
		return p.AllowVariableExpansion
	case DangerousCommand:
		return false
	default:
		return false
	}
}

// Analyzer applies a Policy to commands via Validate, and exposes
// Analyze for callers that want the raw extraction without a verdict.
type Analyzer struct {
	policy Policy
}

// New builds an Analyzer that enforces policy.
func New(policy Policy) *Analyzer { return &Analyzer{policy: policy} }

var whitespaceRe = regexp.MustCompile(`[ \t]+`)

// Analyze extracts paths, invoked command names, and security concerns
// from command, without judging whether they are permitted.
func (a *Analyzer) Analyze(command string) *Analysis {
	analysis := newAnalysis()
	a.checkDangerousPatterns(command, analysis)

	parser := syntax.NewParser(syntax.Variant(syntax.LangBash))
	file, err := parser.Parse(strings.NewReader(command), "")
	if err != nil {
		a.fallbackAnalysis(command, analysis)
		return analysis
	}

	a.walkTree(file, command, analysis)
	a.extractRedirectPaths(command, analysis)
	a.checkRemoteExecution(command, analysis)
	if strings.Contains(command, "`") {
		analysis.Concerns = append(analysis.Concerns, FoundConcern{Concern: BacktickSubstitution})
	}
	return analysis
}

// Validate runs Analyze and rejects the command if it trips a blocked
// command or a concern the policy disallows, returning the analysis
// either way so callers can log what was seen.
func (a *Analyzer) Validate(command string) (*Analysis, error) {
	analysis := a.Analyze(command)

	for _, cmd := range analysis.Commands {
		if a.policy.IsCommandBlocked(cmd) {
			return analysis, &blockedCommandError{Command: cmd}
		}
	}
	for _, c := range analysis.Concerns {
		if !a.policy.Allows(c) {
			return analysis, &concernError{Concern: c}
		}
	}
	return analysis, nil
}

func (a *Analyzer) checkDangerousPatterns(command string, analysis *Analysis) {
	normalized := whitespaceRe.ReplaceAllString(strings.TrimSpace(command), " ")
	for _, p := range dangerousPatterns {
		if p.re.MatchString(normalized) {
			analysis.Concerns = append(analysis.Concerns, FoundConcern{Concern: DangerousCommand, Label: p.label})
		}
	}
}

func (a *Analyzer) walkTree(file *syntax.File, source string, analysis *Analysis) {
	syntax.Walk(file, func(node syntax.Node) bool {
		switch n := node.(type) {
		case *syntax.CallExpr:
			if len(n.Args) > 0 {
				if name := wordString(n.Args[0]); name != "" {
					analysis.Commands = append(analysis.Commands, name)
					switch name {
					case "eval", "source", ".":
						analysis.Concerns = append(analysis.Concerns, FoundConcern{Concern: EvalUsage})
					case "sudo", "doas", "pkexec", "su":
						analysis.Concerns = append(analysis.Concerns, FoundConcern{Concern: PrivilegeEscalation})
					}
				}
			}
			for _, arg := range n.Args[1:] {
				if text := wordString(arg); strings.HasPrefix(text, "/") && !strings.HasPrefix(text, "/dev/") {
					analysis.Paths = append(analysis.Paths, ReferencedPath{Path: text, Context: PathArgument})
				}
			}

		case *syntax.CmdSubst:
			analysis.Concerns = append(analysis.Concerns, FoundConcern{Concern: CommandSubstitution})

		case *syntax.ProcSubst:
			analysis.Concerns = append(analysis.Concerns, FoundConcern{Concern: ProcessSubstitution})

		case *syntax.ParamExp:
			if n.Param != nil {
				analysis.EnvVars[n.Param.Value] = struct{}{}
			}
			analysis.Concerns = append(analysis.Concerns, FoundConcern{Concern: VariableExpansion})

		case *syntax.Redirect:
			if n.Word != nil {
				text := wordString(n.Word)
				if strings.HasPrefix(text, "/") && !strings.HasPrefix(text, "/dev/") {
					ctx := PathOutputRedirect
					switch n.Op {
					case syntax.RdrIn, syntax.DplIn:
						ctx = PathInputRedirect
					case syntax.Hdoc, syntax.DashHdoc:
						ctx = PathHereDoc
					}
					analysis.Paths = append(analysis.Paths, ReferencedPath{Path: text, Context: ctx})
				}
			}
		}
		return true
	})
}

func wordString(w *syntax.Word) string {
	if w == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range w.Parts {
		if lit, ok := part.(*syntax.Lit); ok {
			b.WriteString(lit.Value)
		}
	}
	return b.String()
}

var redirectPathRe = regexp.MustCompile(`[<>]&?\s*(/[^\s;&|]+)`)

// extractRedirectPaths adds the absolute redirect targets a regex
// finds in the raw command text. It runs only after a successful
// parse, next to the AST walk, so a redirect the walk already recorded
// appears in Paths a second time.
func (a *Analyzer) extractRedirectPaths(source string, analysis *Analysis) {
	for _, m := range redirectPathRe.FindAllStringSubmatchIndex(source, -1) {
		path := source[m[2]:m[3]]
		if strings.HasPrefix(path, "/dev/") {
			continue
		}
		ctx := PathOutputRedirect
		if m[0] > 0 && source[m[0]] == '<' {
			ctx = PathInputRedirect
		}
		analysis.Paths = append(analysis.Paths, ReferencedPath{Path: path, Context: ctx})
	}
}

var remoteExecRe = regexp.MustCompile(`(curl|wget)\s+[^|]*\|\s*(ba)?sh|env\s+bash|exec\s+bash`)

func (a *Analyzer) checkRemoteExecution(source string, analysis *Analysis) {
	if remoteExecRe.MatchString(source) {
		analysis.Concerns = append(analysis.Concerns, FoundConcern{Concern: RemoteExecution})
	}
}

var fallbackPathRe = regexp.MustCompile(`(?:^|[\s'"=])(/[^\s'";&|><$` + "`" + `\\]+)`)

// fallbackAnalysis extracts what it can with plain regexes when the
// shell grammar fails to parse (e.g. the command is itself malformed
// or written in a dialect the parser rejects).
func (a *Analyzer) fallbackAnalysis(command string, analysis *Analysis) {
	for _, m := range fallbackPathRe.FindAllStringSubmatch(command, -1) {
		if len(m) > 1 {
			analysis.Paths = append(analysis.Paths, ReferencedPath{Path: m[1], Context: PathArgument})
		}
	}
	for _, field := range strings.Fields(command) {
		if !strings.HasPrefix(field, "-") && !strings.HasPrefix(field, "/") {
			analysis.Commands = append(analysis.Commands, field)
			break
		}
	}
}

type blockedCommandError struct{ Command string }

func (e *blockedCommandError) Error() string { return "blocked command: " + e.Command }

type concernError struct{ Concern FoundConcern }

func (e *concernError) Error() string {
	if e.Concern.Concern == DangerousCommand {
		return "security concern: dangerous command (" + e.Concern.Label + ")"
	}
	return "security concern: " + e.Concern.Concern.String()
}
