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

package math

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCeilToPowerOfTwo(t *testing.T) {
	tests := []struct {
		n, want int
	}{
		{0, 2},
		{2, 2},
		{3, 4},
		{1000, 1024},
		{1 << 22, 1 << 22},
		{1<<22 + 1, 1 << 23},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CeilToPowerOfTwo(tt.n), "n=%d", tt.n)
	}
	if bitSize == 64 {
		assert.Equal(t, 1<<33, CeilToPowerOfTwo(1<<32+1))
	}
	assert.Panics(t, func() { CeilToPowerOfTwo(maxintHeadBit + 1) })
}
