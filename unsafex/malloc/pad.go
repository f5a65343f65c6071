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

// pad returns the number of bytes needed to round n up to a multiple of 8.
// It is applied both to payload byte counts and to prospective header
// addresses when a carve needs the next header to land 8-byte aligned.
func pad(n uintptr) uintptr {
	return (8 - n%8) % 8
}

// padded returns n rounded up to the next multiple of 8.
func padded(n uintptr) uintptr {
	return n + pad(n)
}
