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
	"fmt"
	"unsafe"
)

// DefaultArenaUnitSize is the size of the initial sbrk prealloc. Later arena
// growth extends the break by exactly the bytes a request needs, not by this
// unit.
const DefaultArenaUnitSize = 128 * 1024

// Allocator is a single, non-reentrant heap: small requests are carved from
// one contiguous arena grown via sbrk; large requests get their own
// anonymous mmap. It is not safe for concurrent use by multiple goroutines
// without external synchronization.
//
// The zero value is not usable; construct with New.
type Allocator struct {
	used blockList
	free blockList

	arenaStart  uintptr
	arenaBreak  uintptr
	arenaInited bool

	arenaUnit     uintptr
	mmapThreshold uintptr
	pageSize      uintptr

	sbrk   func(delta int) (uintptr, error)
	mmap   func(n uintptr) (uintptr, error)
	munmap func(addr, n uintptr) error
}

// New builds an Allocator. With no options it prealloc's a 128KiB arena on
// first use, routes requests >= 128KiB straight to mmap, and routes
// ZeroAllocate requests spanning a full OS page straight to mmap as well.
func New(opts ...Option) (*Allocator, error) {
	a := &Allocator{
		arenaUnit:     DefaultArenaUnitSize,
		mmapThreshold: DefaultArenaUnitSize,
		pageSize:      uintptr(defaultPageSize()),
		sbrk:          realSbrk,
		mmap:          realMmap,
		munmap:        realMunmap,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.arenaUnit == 0 || a.arenaUnit%8 != 0 {
		return nil, fmt.Errorf("malloc: arena unit size must be a nonzero multiple of 8, got %d", a.arenaUnit)
	}
	if a.mmapThreshold == 0 {
		return nil, fmt.Errorf("malloc: mmap threshold must be nonzero, got %d", a.mmapThreshold)
	}
	if a.pageSize == 0 {
		return nil, fmt.Errorf("malloc: page size must be nonzero, got %d", a.pageSize)
	}
	return a, nil
}

// Allocate returns a payload pointer writable for >= n bytes, or nil iff
// n == 0. Requests whose full footprint (header included) would meet or
// exceed the mmap threshold are satisfied by a dedicated mapping instead of
// the arena.
func (a *Allocator) Allocate(n uintptr) unsafe.Pointer {
	if n == 0 {
		return nil
	}
	return a.allocate(n, a.mmapThreshold)
}

// allocate is Allocate generalized over the routing threshold, so
// ZeroAllocate can apply the page-size threshold instead of mmapThreshold.
func (a *Allocator) allocate(n, threshold uintptr) unsafe.Pointer {
	if headerSize+n < threshold {
		if err := a.ensureArena(); err != nil {
			a.fatal(err)
		}
		need := padded(n)
		if f := a.bestFit(need); f != nil {
			return a.carve(f, need).payload()
		}
		b, err := a.grow(need)
		if err != nil {
			a.fatal(err)
		}
		return b.payload()
	}
	return a.mapLarge(n)
}

// mapLarge satisfies a request via a dedicated anonymous mapping. The header
// records the unpadded request size n (not n+pad(n)); see header.go.
func (a *Allocator) mapLarge(n uintptr) unsafe.Pointer {
	total := headerSize + n + pad(n)
	addr, err := a.mmap(total)
	if err != nil {
		a.fatal(err)
	}
	b := headerAt(addr)
	b.size = n
	b.status = statusMapped
	b.prev, b.next = nil, nil
	return b.payload()
}

// Free releases p. p == nil is a no-op. Freeing an arena-resident block
// reinserts it into free and eagerly coalesces with address-adjacent
// neighbours; freeing a mapped block munmaps it.
func (a *Allocator) Free(p unsafe.Pointer) {
	if p == nil {
		return
	}
	b := headerFromPayload(p)
	switch b.status {
	case statusAlloc:
		a.used.remove(b)
		b.status = statusFree
		a.free.insert(b)
		a.coalesce()
	case statusMapped:
		total := headerSize + b.size + pad(b.size)
		if err := a.munmap(addrOf(b), total); err != nil {
			a.fatal(err)
		}
	case statusFree:
		// Double-free on an already-FREE header is not detected by
		// default; see debugcheck_on.go for the opt-in guard.
		debugCheckDoubleFree(b)
	}
}

// ZeroAllocate allocates count*size bytes, zeroed, routed through the
// allocator's page-size threshold instead of its mmap threshold (so any
// request spanning a full OS page goes straight to a mapping). count == 0 ||
// size == 0, or a count*size product that would overflow uintptr, returns
// nil.
func (a *Allocator) ZeroAllocate(count, size uintptr) unsafe.Pointer {
	if count == 0 || size == 0 {
		return nil
	}
	if count > ^uintptr(0)/size {
		return nil // would overflow; saturate to failure rather than wrap
	}
	total := count * size

	p := a.allocate(total, a.pageSize)
	if p == nil {
		return nil
	}
	zero := unsafe.Slice((*byte)(p), int(total))
	for i := range zero {
		zero[i] = 0
	}
	return p
}

// Reallocate resizes the block at p to s bytes: nil p behaves as Allocate,
// s == 0 behaves as Free, a FREE header is rejected defensively, an
// exact-size request is a no-op, mapped blocks migrate via copy, and
// arena-resident blocks shrink, grow in place, or migrate.
func (a *Allocator) Reallocate(p unsafe.Pointer, s uintptr) unsafe.Pointer {
	if p == nil {
		return a.Allocate(s)
	}
	if s == 0 {
		a.Free(p)
		return nil
	}

	b := headerFromPayload(p)
	if b.status == statusFree {
		return nil
	}

	want := padded(s)
	if b.size == want {
		return p
	}

	if b.status == statusMapped {
		return a.migrate(p, b, s)
	}
	if want < b.size {
		return a.shrinkInPlace(b, want)
	}
	if a.growInPlace(b, want) {
		return p
	}
	return a.migrate(p, b, s)
}

// migrate allocates s bytes fresh, copies the overlapping prefix from the
// old block, frees the old block, and returns the new payload pointer.
func (a *Allocator) migrate(p unsafe.Pointer, b *blockHeader, s uintptr) unsafe.Pointer {
	np := a.Allocate(s)
	if np == nil {
		return nil
	}
	n := s
	if b.size < n {
		n = b.size
	}
	copy(unsafe.Slice((*byte)(np), int(n)), unsafe.Slice((*byte)(p), int(n)))
	a.Free(p)
	return np
}

// Available returns the total free-list payload bytes currently held by the
// arena (introspection only; not reachable from the singleton front door).
func (a *Allocator) Available() uintptr {
	var total uintptr
	for b := a.free.head; b != nil; b = b.next {
		total += b.size
	}
	return total
}

func (a *Allocator) isArenaTail(b *blockHeader) bool {
	return a.arenaInited && addrOf(b)+headerSize+b.size == a.arenaBreak
}

func (a *Allocator) fatal(err error) {
	panic(fmt.Sprintf("malloc: unrecoverable OS failure: %v", err))
}
