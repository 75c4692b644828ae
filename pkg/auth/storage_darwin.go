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

//go:build darwin

package auth

import (
	"encoding/json"
	"os/exec"
	"strings"
)

const keychainServiceName = "Claude Code-credentials"

// loadKeychainCredentials reads the OAuth token the Claude Code CLI
// stores in the macOS login Keychain, falling back silently (ok=false)
// to the file-based provider when the entry is absent.
func loadKeychainCredentials() (OAuthCredential, bool) {
	out, err := exec.Command("security", "find-generic-password", "-s", keychainServiceName, "-w").Output()
	if err != nil {
		return OAuthCredential{}, false
	}

	secret := strings.TrimSpace(string(out))
	if secret == "" {
		return OAuthCredential{}, false
	}

	var parsed cliCredentialsFile
	if err := json.Unmarshal([]byte(secret), &parsed); err != nil {
		return OAuthCredential{}, false
	}

	return parsed.oauth()
}
