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

	"golang.org/x/sys/unix"
)

// errOutOfMemory is returned by realSbrk when the kernel refuses to move the
// program break.
var errOutOfMemory = errors.New("malloc: out of memory")

// realSbrk extends (delta > 0) or shrinks (delta < 0) the program break by
// delta bytes and returns the break's value *before* the change, mirroring
// the classic sbrk(2) contract where the old break is the base address of
// the newly granted region.
//
// brk(2) has no dedicated failure signal on Linux: an unsuccessful call
// silently leaves the break unchanged instead of setting errno, so failure
// is detected by comparing the post-call break against what was requested.
func realSbrk(delta int) (uintptr, error) {
	cur, _, _ := unix.Syscall(unix.SYS_BRK, 0, 0, 0)
	if delta == 0 {
		return cur, nil
	}

	want := cur + uintptr(delta)
	got, _, errno := unix.Syscall(unix.SYS_BRK, want, 0, 0)
	if errno != 0 || got != want {
		return 0, errOutOfMemory
	}
	return cur, nil
}
