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

package auth

import (
	"context"
	"os"

	"github.com/kaidrach/agentrun/pkg/errs"
)

const defaultAPIKeyEnvVar = "ANTHROPIC_API_KEY"

// EnvironmentProvider reads an API key from an environment variable.
type EnvironmentProvider struct {
	baseProvider
	envVar string
}

// NewEnvironmentProvider reads from ANTHROPIC_API_KEY.
func NewEnvironmentProvider() *EnvironmentProvider {
	return &EnvironmentProvider{envVar: defaultAPIKeyEnvVar}
}

// EnvironmentProviderFromVar reads from a custom environment variable.
func EnvironmentProviderFromVar(envVar string) *EnvironmentProvider {
	return &EnvironmentProvider{envVar: envVar}
}

func (p *EnvironmentProvider) Name() string { return "environment" }

func (p *EnvironmentProvider) Resolve(context.Context) (Credential, error) {
	key, ok := os.LookupEnv(p.envVar)
	if !ok || key == "" {
		return Credential{}, &errs.AuthError{Provider: p.Name(), Message: p.envVar + " not set"}
	}
	return APIKeyCredential(key), nil
}
