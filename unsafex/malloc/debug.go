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

	"github.com/segheap/segheap/internal/hack"
)

// PayloadCapacity returns the block size backing a previously returned
// payload pointer: the padded arena capacity for an arena-resident block, or
// the exact unpadded request size for a mapped one.
func PayloadCapacity(p unsafe.Pointer) uintptr {
	return headerFromPayload(p).size
}

// DebugString renders both lists for test/debug inspection. It builds the
// report into a []byte and hands it back as a string without copying,
// reusing the same zero-copy conversion internal/hack already provides for
// the rest of this module.
func (a *Allocator) DebugString() string {
	var buf []byte
	buf = appendList(buf, "used", a.used.head)
	buf = appendList(buf, "free", a.free.head)
	return hack.ByteSliceToString(buf)
}

func appendList(buf []byte, name string, head *blockHeader) []byte {
	buf = append(buf, name...)
	buf = append(buf, ":\n"...)
	for b := head; b != nil; b = b.next {
		buf = append(buf, fmt.Sprintf("  addr=%#x size=%d\n", addrOf(b), b.size)...)
	}
	return buf
}
