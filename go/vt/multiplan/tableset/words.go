/*
Copyright 2026 The Vitess Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package tableset

import (
	"math/bits"
	"unsafe"
)

// words is the immutable backing store of a TableSet: bit n of the set lives
// in byte n/8. The last byte is never zero, so equal sets have equal
// representations and can be compared with ==.
type words string

const wordWidth = 8

func wordCount(highest int) int {
	return highest/wordWidth + 1
}

// freeze turns a freshly built byte slice into words without copying. The
// caller must not touch the slice afterwards.
func freeze(buf []byte) words {
	for len(buf) > 0 && buf[len(buf)-1] == 0 {
		buf = buf[:len(buf)-1]
	}
	if len(buf) == 0 {
		return ""
	}
	return *(*words)(unsafe.Pointer(&buf))
}

func build(ids ...int) words {
	if len(ids) == 0 {
		return ""
	}
	highest := ids[0]
	for _, id := range ids[1:] {
		highest = max(highest, id)
	}
	buf := make([]byte, wordCount(highest))
	for _, id := range ids {
		buf[id/wordWidth] |= 1 << (id % wordWidth)
	}
	return freeze(buf)
}

func (w words) has(id int) bool {
	i := id / wordWidth
	return i < len(w) && w[i]&(1<<(id%wordWidth)) != 0
}

func (w words) set(id int) words {
	if w.has(id) {
		return w
	}
	buf := make([]byte, max(len(w), wordCount(id)))
	copy(buf, w)
	buf[id/wordWidth] |= 1 << (id % wordWidth)
	return freeze(buf)
}

func (w words) or(other words) words {
	switch {
	case len(w) == 0:
		return other
	case len(other) == 0:
		return w
	}
	short, long := w, other
	if len(short) > len(long) {
		short, long = long, short
	}
	buf := make([]byte, len(long))
	copy(buf, long)
	for i := 0; i < len(short); i++ {
		buf[i] |= short[i]
	}
	return freeze(buf)
}

func (w words) andNot(other words) words {
	if len(other) == 0 || len(w) == 0 {
		return w
	}
	buf := make([]byte, len(w))
	for i := 0; i < len(w); i++ {
		if i < len(other) {
			buf[i] = w[i] &^ other[i]
		} else {
			buf[i] = w[i]
		}
	}
	return freeze(buf)
}

func (w words) overlaps(other words) bool {
	for i := 0; i < min(len(w), len(other)); i++ {
		if w[i]&other[i] != 0 {
			return true
		}
	}
	return false
}

func (w words) subsetOf(other words) bool {
	if len(w) > len(other) {
		return false
	}
	for i := 0; i < len(w); i++ {
		if w[i]&other[i] != w[i] {
			return false
		}
	}
	return true
}

func (w words) popcount() (n int) {
	for i := 0; i < len(w); i++ {
		n += bits.OnesCount8(w[i])
	}
	return n
}

// only returns the single member of the set, or -1.
func (w words) only() int {
	member := -1
	for i := 0; i < len(w); i++ {
		b := w[i]
		if b == 0 {
			continue
		}
		if member >= 0 || bits.OnesCount8(b) != 1 {
			return -1
		}
		member = i*wordWidth + bits.TrailingZeros8(b)
	}
	return member
}

func (w words) forEach(yield func(int)) {
	for i := 0; i < len(w); i++ {
		b := w[i]
		for b != 0 {
			yield(i*wordWidth + bits.TrailingZeros8(b))
			b &= b - 1
		}
	}
}
