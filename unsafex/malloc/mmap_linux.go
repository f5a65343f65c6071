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
	"unsafe"

	"golang.org/x/sys/unix"
)

// realMmap creates an anonymous, private, read-write mapping of n bytes and
// returns its base address.
func realMmap(n uintptr) (uintptr, error) {
	data, err := unix.Mmap(-1, 0, int(n), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return 0, err
	}
	return uintptr(unsafe.Pointer(&data[0])), nil
}

// realMunmap releases a mapping previously returned by realMmap. addr/n must
// match the values used to create it.
func realMunmap(addr, n uintptr) error {
	return unix.Munmap(unsafe.Slice((*byte)(unsafe.Pointer(addr)), int(n)))
}
