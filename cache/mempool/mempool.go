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

// Package mempool is a []byte front door over unsafex/malloc: it wraps the
// allocator's raw unsafe.Pointer-returning API into plain Go byte slices, so
// callers never touch unsafe themselves.
package mempool

import (
	"sync"
	"unsafe"

	"github.com/segheap/segheap/unsafex/malloc"
)

type sliceHeader struct {
	Data unsafe.Pointer
	Len  int
	Cap  int
}

var (
	allocOnce sync.Once
	alloc     *malloc.Allocator
)

// allocator lazily constructs the package-wide allocator on first use, so
// importing mempool never touches sbrk/mmap by itself.
func allocator() *malloc.Allocator {
	allocOnce.Do(func() {
		a, err := malloc.New()
		if err != nil {
			panic(err)
		}
		alloc = a
	})
	return alloc
}

// Malloc returns a []byte of length size backed by the shared allocator.
// Tips for usage:
//   - the returned bytes are not zeroed; use Calloc if you need that.
//   - call Free when buf is no longer used. Do not reuse buf after
//     calling Free.
//   - use buf = buf[:Cap(buf)] to reclaim any padding.
func Malloc(size int) []byte {
	if size <= 0 {
		return []byte{}
	}
	p := allocator().Allocate(uintptr(size))
	return sliceFrom(p, size)
}

// Calloc is Malloc's zeroed counterpart: count*size bytes, all zero.
func Calloc(count, size int) []byte {
	if count <= 0 || size <= 0 {
		return []byte{}
	}
	p := allocator().ZeroAllocate(uintptr(count), uintptr(size))
	if p == nil {
		return nil
	}
	return sliceFrom(p, count*size)
}

// Realloc resizes buf to n bytes, preserving its content up to
// min(len(buf), n). A nil or empty buf behaves as Malloc; n <= 0 frees buf
// and returns nil.
func Realloc(buf []byte, n int) []byte {
	if n <= 0 {
		Free(buf)
		return nil
	}
	if len(buf) == 0 {
		return Malloc(n)
	}
	p := allocator().Reallocate(dataOf(buf), uintptr(n))
	if p == nil {
		return nil
	}
	return sliceFrom(p, n)
}

// Cap returns the allocator's backing capacity for buf, which may exceed
// len(buf) thanks to 8-byte padding or a too-small split remainder folded
// into the block. See comment on Malloc.
func Cap(buf []byte) int {
	if len(buf) == 0 {
		return 0
	}
	return int(malloc.PayloadCapacity(dataOf(buf)))
}

// Free releases buf. It is a no-op for a nil or empty buf. DO NOT reuse buf
// after calling Free, and DO NOT call Free on a []byte this package didn't
// hand out.
func Free(buf []byte) {
	if len(buf) == 0 {
		return
	}
	allocator().Free(dataOf(buf))
}

// Append appends b to a, growing a's backing allocation only when its
// existing capacity can't already hold the result. Call as
// a = mempool.Append(a, b...).
func Append(a []byte, b ...byte) []byte {
	return appendBytes(a, b)
}

// AppendStr is Append for a string argument.
func AppendStr(a []byte, b string) []byte {
	return appendBytes(a, []byte(b))
}

func appendBytes(a, b []byte) []byte {
	if len(b) == 0 {
		return a
	}
	if Cap(a)-len(a) >= len(b) {
		return append(a, b...)
	}
	grown := Realloc(a, len(a)+len(b))
	return append(grown[:len(a)], b...)
}

func sliceFrom(p unsafe.Pointer, length int) []byte {
	var b []byte
	h := (*sliceHeader)(unsafe.Pointer(&b))
	h.Data = p
	h.Len = length
	h.Cap = int(malloc.PayloadCapacity(p))
	return b
}

func dataOf(buf []byte) unsafe.Pointer {
	return (*sliceHeader)(unsafe.Pointer(&buf)).Data
}
