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

package malloc

import (
	"errors"
	"testing"
	"unsafe"
)

// fakeOS simulates sbrk/mmap/munmap over a Go-managed byte slice so tests
// can drive every arena/mmap code path without real syscalls. It keeps
// every region it hands out alive by holding a reference, since the
// allocator only ever sees their addresses as uintptr/unsafe.Pointer.
type fakeOS struct {
	mem   []byte
	base  uintptr
	brk   uintptr
	mmaps [][]byte
}

func newFakeOS(capacity int) *fakeOS {
	mem := make([]byte, capacity)
	base := uintptr(unsafe.Pointer(&mem[0]))
	return &fakeOS{mem: mem, base: base, brk: base}
}

func (f *fakeOS) sbrk(delta int) (uintptr, error) {
	cur := f.brk
	next := cur + uintptr(delta)
	if int64(delta) < 0 && next > cur {
		return 0, errors.New("fake sbrk: underflow")
	}
	if next < f.base || next > f.base+uintptr(len(f.mem)) {
		return 0, errors.New("fake sbrk: out of memory")
	}
	f.brk = next
	return cur, nil
}

func (f *fakeOS) mmap(n uintptr) (uintptr, error) {
	b := make([]byte, n)
	f.mmaps = append(f.mmaps, b)
	return uintptr(unsafe.Pointer(&b[0])), nil
}

func (f *fakeOS) munmap(addr, n uintptr) error {
	for i, b := range f.mmaps {
		if uintptr(unsafe.Pointer(&b[0])) == addr {
			f.mmaps = append(f.mmaps[:i], f.mmaps[i+1:]...)
			return nil
		}
	}
	return errors.New("fake munmap: not found")
}

func newTestAllocator(t *testing.T, arenaCapacity int, opts ...Option) (*Allocator, *fakeOS) {
	t.Helper()
	fos := newFakeOS(arenaCapacity)
	base := append([]Option{WithSbrk(fos.sbrk), WithMmap(fos.mmap), WithMunmap(fos.munmap)}, opts...)
	a, err := New(base...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a, fos
}
