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

package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/mitchellh/mapstructure"

	"github.com/kaidrach/agentrun/pkg/errs"
)

// EnvPrefix is the environment-variable prefix the loader's env layer
// reads. A key like security.sandboxEnabled becomes
// AGENTRUN_SECURITY__SANDBOXENABLED.
const EnvPrefix = "AGENTRUN_"

// Loader assembles a RuntimeConfig from, in increasing priority:
// built-in defaults, an optional YAML file, a .env file (loaded into
// the process environment, not the config tree directly), and
// AGENTRUN_-prefixed environment variables.
type Loader struct {
	k        *koanf.Koanf
	filePath string
}

// NewLoader builds a loader that reads yamlPath if it exists; an
// empty or missing path means defaults-plus-env only.
func NewLoader(yamlPath string) *Loader {
	return &Loader{k: koanf.New("."), filePath: yamlPath}
}

// Load runs the provider chain and unmarshals the result. dotEnvPath,
// if non-empty, is loaded into the process environment (via godotenv)
// before the env layer is read; a missing .env file is not an error.
func (l *Loader) Load(dotEnvPath string) (RuntimeConfig, error) {
	defaults := Defaults()

	defaultsMap, err := structToMap(defaults)
	if err != nil {
		return RuntimeConfig{}, &errs.ConfigError{Message: "encode defaults: " + err.Error()}
	}
	if err := l.k.Load(confmap.Provider(defaultsMap, "."), nil); err != nil {
		return RuntimeConfig{}, &errs.ConfigError{Message: "load defaults: " + err.Error()}
	}

	if l.filePath != "" {
		if _, statErr := os.Stat(l.filePath); statErr == nil {
			if err := l.k.Load(file.Provider(l.filePath), yaml.Parser()); err != nil {
				return RuntimeConfig{}, &errs.ConfigError{Message: "load " + l.filePath + ": " + err.Error()}
			}
		} else if !os.IsNotExist(statErr) {
			return RuntimeConfig{}, &errs.IOError{Err: statErr}
		}
	}

	if dotEnvPath != "" {
		if err := godotenv.Load(dotEnvPath); err != nil && !os.IsNotExist(err) {
			return RuntimeConfig{}, &errs.IOError{Err: err}
		}
	}

	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		trimmed := strings.TrimPrefix(s, EnvPrefix)
		return strings.ToLower(strings.ReplaceAll(trimmed, "__", "."))
	})
	if err := l.k.Load(envProvider, nil); err != nil {
		return RuntimeConfig{}, &errs.ConfigError{Message: "load env: " + err.Error()}
	}

	var out RuntimeConfig
	if err := l.k.UnmarshalWithConf("", &out, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return RuntimeConfig{}, &errs.ConfigError{Message: "unmarshal: " + err.Error()}
	}
	return out, nil
}

// structToMap round-trips defaults through mapstructure so confmap
// (which wants a plain map[string]any) can seed the lowest layer with
// the same struct the other layers unmarshal into.
func structToMap(v any) (map[string]any, error) {
	var out map[string]any
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &out,
		TagName: "koanf",
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(v); err != nil {
		return nil, err
	}
	return out, nil
}
