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

// blockList is an intrusive, address-ordered doubly linked list of blocks.
// The allocator keeps exactly two of these: used and free.
type blockList struct {
	head *blockHeader
}

func addrOf(b *blockHeader) uintptr {
	return uintptr(unsafe.Pointer(b))
}

// insert splices b into the list in ascending address order.
func (l *blockList) insert(b *blockHeader) {
	b.prev, b.next = nil, nil

	if l.head == nil {
		l.head = b
		return
	}
	if addrOf(b) < addrOf(l.head) {
		b.next = l.head
		l.head.prev = b
		l.head = b
		return
	}

	cursor := l.head
	for cursor.next != nil && addrOf(cursor.next) < addrOf(b) {
		cursor = cursor.next
	}
	b.prev = cursor
	b.next = cursor.next
	if cursor.next != nil {
		cursor.next.prev = b
	}
	cursor.next = b
}

// remove unlinks b, repairing the head pointer if b was the head.
func (l *blockList) remove(b *blockHeader) {
	if b.prev != nil {
		b.prev.next = b.next
	} else {
		l.head = b.next
	}
	if b.next != nil {
		b.next.prev = b.prev
	}
	b.prev, b.next = nil, nil
}

// tail walks to and returns the address-maximal block, or nil if empty.
func (l *blockList) tail() *blockHeader {
	b := l.head
	if b == nil {
		return nil
	}
	for b.next != nil {
		b = b.next
	}
	return b
}
