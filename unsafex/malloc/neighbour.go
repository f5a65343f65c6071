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

// neighbour returns the lowest-addressed block strictly greater than addr(b)
// across both lists, or nil when b is the arena's final block. Both lists
// are address-ordered, so each only needs to be walked to its first
// candidate past b.
func (a *Allocator) neighbour(b *blockHeader) *blockHeader {
	addrB := addrOf(b)

	var used, free *blockHeader
	for n := a.used.head; n != nil; n = n.next {
		if addrOf(n) > addrB {
			used = n
			break
		}
	}
	for n := a.free.head; n != nil; n = n.next {
		if addrOf(n) > addrB {
			free = n
			break
		}
	}

	switch {
	case used == nil:
		return free
	case free == nil:
		return used
	case addrOf(free) < addrOf(used):
		return free
	default:
		return used
	}
}
