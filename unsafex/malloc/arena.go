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

import "unsafe"

// reset discards the allocator's in-memory bookkeeping (the two lists and
// the "arena initialized" flag) without touching the underlying OS break or
// mappings. It exists for tests that reuse one fake OS across subtests and
// is intentionally unexported.
func (a *Allocator) reset() {
	a.used = blockList{}
	a.free = blockList{}
	a.arenaInited = false
}

// ensureArena performs the one-shot prealloc on first touch: a single sbrk
// call for arenaUnit bytes, published as one free block spanning the whole
// region.
func (a *Allocator) ensureArena() error {
	if a.arenaInited {
		return nil
	}
	base, err := a.sbrk(int(a.arenaUnit))
	if err != nil {
		return err
	}
	a.arenaStart = base
	a.arenaBreak = base + a.arenaUnit
	a.arenaInited = true

	first := headerAt(base)
	first.size = a.arenaUnit - headerSize
	first.status = statusFree
	first.prev, first.next = nil, nil
	a.free.insert(first)
	return nil
}

// grow is reached once bestFit has already failed for need bytes. It tries,
// in order, to extend the arena's own tail block in place, then falls back
// to appending a brand new used block at the break.
//
// The tail-block case folds together the two "reuse the arena's last free
// block" branches into a single, invariant-backed check: a free block can
// only be grown by pushing the program break if nothing else occupies the
// bytes between it and the break, i.e. it IS the arena's physical tail
// (addr(b) + H + b.size == arenaBreak). If the arena's tail block is
// ALLOC instead, there is no free block whose growth wouldn't clobber that
// used memory, so the only option is appending fresh used space.
func (a *Allocator) grow(need uintptr) (*blockHeader, error) {
	if tail := a.free.tail(); tail != nil && a.isArenaTail(tail) {
		if tail.size < need {
			delta := int(need - tail.size)
			if _, err := a.sbrk(delta); err != nil {
				return nil, err
			}
			a.arenaBreak += uintptr(delta)
		}
		a.free.remove(tail)
		tail.size = need
		tail.status = statusAlloc
		a.used.insert(tail)
		return tail, nil
	}

	base, err := a.sbrk(int(headerSize + need))
	if err != nil {
		return nil, err
	}
	a.arenaBreak += headerSize + need

	fresh := headerAt(base)
	fresh.size = need
	fresh.status = statusAlloc
	fresh.prev, fresh.next = nil, nil
	a.used.insert(fresh)
	return fresh, nil
}

// shrinkInPlace implements the realloc-shrink branch: if the freed tail is
// big enough to be worth splitting off, it either becomes a new free block,
// or -- if b happens to be the arena's physical tail -- is handed straight
// back to the OS via sbrk, the one case where arena pages are ever returned
// to the OS.
func (a *Allocator) shrinkInPlace(b *blockHeader, want uintptr) unsafe.Pointer {
	remaining := int64(b.size-want) - int64(headerSize)
	if remaining < 1 {
		return b.payload()
	}

	freed := b.size - want
	if a.isArenaTail(b) {
		if _, err := a.sbrk(-int(freed)); err == nil {
			a.arenaBreak -= freed
			b.size = want
			return b.payload()
		}
		// Fall through: if the OS call somehow fails, keep the bytes as
		// an ordinary free block instead of losing them.
	}

	b.size = want
	rem := headerAt(addrOf(b) + headerSize + want)
	rem.size = freed - headerSize
	rem.status = statusFree
	a.free.insert(rem)
	a.coalesce()
	return b.payload()
}

// growInPlace attempts to satisfy a realloc growth to want bytes (the
// padded target size) without moving the block, using the neighbour locator
// to find what (if anything) sits immediately after b. Returns false if b
// must be migrated instead.
func (a *Allocator) growInPlace(b *blockHeader, want uintptr) bool {
	n := a.neighbour(b)
	footprintEnd := addrOf(b) + headerSize + want

	if n == nil || addrOf(n) <= addrOf(b) {
		// b is the arena's tail: extend the break.
		delta := int(want - b.size)
		if _, err := a.sbrk(delta); err != nil {
			return false
		}
		a.arenaBreak += uintptr(delta)
		b.size = want
		return true
	}

	if footprintEnd <= addrOf(n) {
		// Slack already present in the current hole.
		b.size = want
		return true
	}

	if n.status != statusFree {
		return false
	}
	nEnd := addrOf(n) + headerSize + n.size
	if nEnd < footprintEnd {
		return false
	}

	leftover := int64(nEnd - footprintEnd)
	a.free.remove(n)
	b.size = want
	if leftover > int64(headerSize)+1 {
		rem := headerAt(footprintEnd)
		rem.size = uintptr(leftover) - headerSize
		rem.status = statusFree
		a.free.insert(rem)
	} else {
		b.size += uintptr(leftover)
	}
	return true
}
