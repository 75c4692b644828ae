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

package sandbox

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/kaidrach/agentrun/pkg/errs"
)

// seatbeltRuntime confines commands via macOS's sandbox-exec and a
// generated Seatbelt profile. Unlike Landlock, Seatbelt cannot
// restrict an already-running process, so confinement happens by
// rewriting the command to run under `sandbox-exec -f <profile>`.
type seatbeltRuntime struct {
	profile string
}

func newPlatformRuntime(cfg Config) Runtime {
	return &seatbeltRuntime{profile: generateProfile(cfg)}
}

const seatbeltExecPath = "/usr/bin/sandbox-exec"

func (r *seatbeltRuntime) IsAvailable() bool {
	_, err := os.Stat(seatbeltExecPath)
	return err == nil
}

func (r *seatbeltRuntime) Apply() error {
	return &errs.SandboxError{Kind: errs.SandboxInvalidConfig, Message: "seatbelt requires command wrapping and cannot apply to an already-running process"}
}

func (r *seatbeltRuntime) WrapCommand(command string) (string, error) {
	path, err := writeProfileToTemp(r.profile)
	if err != nil {
		return "", &errs.SandboxError{Kind: errs.SandboxIO, Message: "writing seatbelt profile", Err: err}
	}
	return fmt.Sprintf("%s -f %s %s", seatbeltExecPath, shellQuote(path), command), nil
}

func (r *seatbeltRuntime) EnvironmentVars() map[string]string { return map[string]string{} }

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func writeProfileToTemp(profile string) (string, error) {
	path := fmt.Sprintf("%s/agentrun-seatbelt-%s.sb", os.TempDir(), uuid.New().String())
	if err := os.WriteFile(path, []byte(profile), 0o600); err != nil {
		return "", err
	}
	return path, nil
}

func escapeSeatbeltString(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == 0 || r == '\n' || r == '\r' {
			continue
		}
		if r == '\\' || r == '"' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func generateProfile(cfg Config) string {
	workingDir := escapeSeatbeltString(cfg.WorkingDir)
	home := escapeSeatbeltString(os.Getenv("HOME"))
	if home == "" {
		home = "/"
	}

	var allowedSubpaths strings.Builder
	for _, p := range cfg.AllowedPaths {
		fmt.Fprintf(&allowedSubpaths, "(allow file-read* (subpath %q))\n", escapeSeatbeltString(p))
	}

	networkRules := "(allow network-outbound)"
	if cfg.Network.HasProxy() {
		httpPort := 0
		if cfg.Network.HTTPProxyPort != nil {
			httpPort = *cfg.Network.HTTPProxyPort
		}
		socksPort := 0
		if cfg.Network.SOCKSProxyPort != nil {
			socksPort = *cfg.Network.SOCKSProxyPort
		}
		networkRules = fmt.Sprintf(`(allow network-outbound (remote tcp "localhost:%d"))
(allow network-outbound (remote tcp "127.0.0.1:%d"))
(allow network-outbound (remote tcp "localhost:%d"))
(allow network-outbound (remote tcp "127.0.0.1:%d"))
(allow network-outbound (remote unix-socket))`, httpPort, httpPort, socksPort, socksPort)
	}

	var socketRules strings.Builder
	if len(cfg.Network.AllowUnixSockets) > 0 {
		socketRules.WriteString("(allow network* (local unix-socket))")
	}
	if cfg.Network.AllowLocalBinding {
		socketRules.WriteString("\n(allow network-bind (local ip \"localhost:*\"))")
	}

	return fmt.Sprintf(`(version 1)
(deny default)

;; System paths
(allow file-read* (subpath "/usr"))
(allow file-read* (subpath "/bin"))
(allow file-read* (subpath "/sbin"))
(allow file-read* (subpath "/Library"))
(allow file-read* (subpath "/System"))
(allow file-read* (subpath "/private/etc"))
(allow file-read* (subpath "/private/var/db"))
(allow file-read* (subpath "/var"))
(allow file-read* (subpath "/etc"))
(allow file-read* (subpath "/dev"))
(allow file-read* (subpath "/tmp"))
(allow file-read* (subpath "/private/tmp"))

;; Home directory essentials
(allow file-read* (subpath "%[2]s/.cargo"))
(allow file-read* (subpath "%[2]s/.npm"))
(allow file-read* (subpath "%[2]s/.nvm"))
(allow file-read* (subpath "%[2]s/.local"))

;; Working directory
(allow file-read* file-write* file-ioctl (subpath "%[1]s"))

;; Scratch space
(allow file-read* file-write* file-ioctl (subpath "/tmp"))
(allow file-read* file-write* file-ioctl (subpath "/private/tmp"))
(allow file-read* file-write* file-ioctl (subpath "/var/folders"))
(allow file-read* file-write* file-ioctl (subpath "/private/var/folders"))

;; Additional allowed paths
%[3]s

;; Process execution
(allow process-exec (subpath "/bin"))
(allow process-exec (subpath "/usr/bin"))
(allow process-exec (subpath "/usr/local/bin"))
(allow process-exec (subpath "%[1]s"))
(allow process-fork)

;; Basic syscalls
(allow sysctl-read)
(allow mach-lookup)
(allow ipc-posix-shm-read-data)
(allow ipc-posix-shm-write-data)
(allow signal)

;; Network
%[4]s
%[5]s

;; DNS
(allow network-outbound (remote udp "*:53"))
(allow network-outbound (remote tcp "*:53"))
`, workingDir, home, allowedSubpaths.String(), networkRules, socketRules.String())
}

// IsSupported reports whether sandbox-exec is present on this system.
func IsSupported() bool {
	_, err := os.Stat(seatbeltExecPath)
	return err == nil
}
