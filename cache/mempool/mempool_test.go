/*
 * Copyright 2024 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package mempool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMallocFree(t *testing.T) {
	for i := 1; i < 1<<20; i += 1000 { // malloc 1B - 1MB, step 1000
		b := Malloc(i)
		require.Len(t, b, i)
		Free(b)
	}
}

func TestMallocZero(t *testing.T) {
	b := Malloc(0)
	require.Len(t, b, 0)
	Free(b) // must be a no-op, not a crash
}

func TestCalloc(t *testing.T) {
	b := Calloc(8, 8)
	require.Len(t, b, 64)
	for _, c := range b {
		require.Equal(t, byte(0), c)
	}
	Free(b)

	require.Len(t, Calloc(0, 8), 0)
	require.Len(t, Calloc(8, 0), 0)
}

func TestCap(t *testing.T) {
	sz8k := 8 << 10
	b := Malloc(sz8k)
	require.GreaterOrEqual(t, Cap(b), sz8k)
	Free(b)

	require.Equal(t, 0, Cap(nil))
}

func TestRealloc(t *testing.T) {
	b := Malloc(4)
	copy(b, []byte("abcd"))

	b = Realloc(b, 8)
	require.Len(t, b, 8)
	require.Equal(t, []byte("abcd"), b[:4])

	b = Realloc(b, 0)
	require.Nil(t, b)

	b = Realloc(nil, 4)
	require.Len(t, b, 4)
	Free(b)
}

func TestAppend(t *testing.T) {
	str := "TestAppend"
	b := Malloc(0)
	for i := 0; i < 200; i++ {
		b = Append(b, []byte(str)...)
	}
	require.Len(t, b, len(str)*200)
	Free(b)

	str = "TestAppendStr"
	b = Malloc(0)
	for i := 0; i < 200; i++ {
		b = AppendStr(b, str)
	}
	require.Len(t, b, len(str)*200)
	Free(b)
}

func TestAppendEmptyIsNoop(t *testing.T) {
	b := Malloc(4)
	copy(b, []byte("abcd"))
	out := Append(b)
	require.Equal(t, b, out)
	Free(b)
}

func TestFreeNilAndEmptyAreNoops(t *testing.T) {
	Free(nil)
	Free([]byte{})
}

// Benchmark_AppendStr runs sequentially: the shared allocator is a single
// arena with no internal locking, so unlike sync.Pool it isn't safe to drive
// from multiple goroutines at once.
func Benchmark_AppendStr(b *testing.B) {
	str := "Benchmark_AppendStr"
	b.ReportAllocs()
	b.SetBytes(int64(len(str)))

	buf := Malloc(1)
	for i := 0; i < b.N; i++ {
		if i&0xff == 0 {
			Free(buf)
			buf = Malloc(1)
		}
		buf = AppendStr(buf, str)
	}
	Free(buf)
}
