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

package tool

import (
	"context"
	"os"

	"github.com/kaidrach/agentrun/pkg/security"
)

// openFile resolves relativePath against sc and opens it with flags,
// returning an *os.File so the rest of a handler can use ordinary
// io/os APIs once the TOCTOU-safe resolution has happened.
func openFile(ctx context.Context, sc *security.Context, relativePath string, flags int, mode os.FileMode) (*os.File, string, error) {
	sp, err := sc.Resolve(ctx, relativePath)
	if err != nil {
		return nil, "", err
	}
	fd, err := sp.Open(flags, uint32(mode))
	if err != nil {
		return nil, "", err
	}
	return os.NewFile(uintptr(fd), sp.String()), sp.String(), nil
}
