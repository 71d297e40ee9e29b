// Copyright (c) 2026 The Dumdum Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	for name, want := range map[string]Level{
		"debug": DebugLevel,
		"INFO":  InfoLevel,
		"warn":  WarnLevel,
		"error": ErrorLevel,
	} {
		lvl, err := ParseLevel(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, lvl, name)
	}
	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestLoggerAsLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dumdum.log")
	logger, flush, err := CreateLoggerAsLocalFile(path, WarnLevel)
	require.NoError(t, err)

	logger.Infof("not written at warn level")
	logger.Warnf("listener %s closed", "tcp4://127.0.0.1:9000")
	require.NoError(t, flush())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "[dumdum] ")
	assert.Contains(t, string(b), "listener tcp4://127.0.0.1:9000 closed")
	assert.NotContains(t, string(b), "not written")

	_, _, err = CreateLoggerAsLocalFile("", InfoLevel)
	assert.Error(t, err)
}

func TestDefaultLogger(t *testing.T) {
	assert.NotNil(t, GetDefaultLogger())
	assert.NotNil(t, GetDefaultFlusher())
	assert.NotEmpty(t, LogLevel())
	Debugf("default logger at %s", LogLevel())
}
