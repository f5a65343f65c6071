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

// Option configures an Allocator at construction time.
type Option func(*Allocator)

// WithArenaUnitSize overrides the default 128KiB first-touch prealloc size.
// n must be a nonzero multiple of 8.
func WithArenaUnitSize(n uintptr) Option {
	return func(a *Allocator) { a.arenaUnit = n }
}

// WithMmapThreshold overrides the footprint (header included) at or above
// which Allocate/Reallocate route to a dedicated mapping instead of the
// arena. Defaults to DefaultArenaUnitSize.
func WithMmapThreshold(n uintptr) Option {
	return func(a *Allocator) { a.mmapThreshold = n }
}

// WithPageSize overrides the threshold ZeroAllocate uses in place of the
// mmap threshold. Defaults to the OS page size: any zeroed allocation
// spanning a full page goes straight to a mapping rather than the arena.
func WithPageSize(n uintptr) Option {
	return func(a *Allocator) { a.pageSize = n }
}

// WithSbrk injects a replacement for the program-break primitive, for tests
// that must not make real syscalls. f follows sbrk(2): delta bytes are
// added to the break (delta may be negative to shrink), and the break's
// value *before* the change is returned.
func WithSbrk(f func(delta int) (uintptr, error)) Option {
	return func(a *Allocator) { a.sbrk = f }
}

// WithMmap injects a replacement for the anonymous-mapping primitive.
func WithMmap(f func(n uintptr) (uintptr, error)) Option {
	return func(a *Allocator) { a.mmap = f }
}

// WithMunmap injects a replacement for unmapping a region previously
// returned by the injected mmap.
func WithMunmap(f func(addr, n uintptr) error) Option {
	return func(a *Allocator) { a.munmap = f }
}
