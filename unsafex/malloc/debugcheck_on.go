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

//go:build mallocdebug

package malloc

// debugCheckDoubleFree panics on a Free of an already-FREE header. Built
// only with -tags mallocdebug, since the check costs a branch on every free
// and the default build trusts the caller per the public contract.
func debugCheckDoubleFree(b *blockHeader) {
	if b.status == statusFree {
		panic("malloc: double free")
	}
}
