// Copyright © 2019 mg
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package debug

import (
	"github.com/mgavr/avrcore/internal/avrcpu"
	"github.com/mgavr/avrcore/internal/avrerr"
	"github.com/mgavr/avrcore/internal/mem"
)

// Record is a self-contained point-in-time capture: {T, CPU,
// data-space, EEPROM, framebuffer} (spec §4.8). CPU is copied by
// value; its Mem/Flash/Clock pointers keep referencing the live
// machine's objects, only the register/flag/PC/SP fields are restored
// on Restore.
type Record struct {
	T           uint64
	CPU         avrcpu.CPU
	Data        []byte
	EEPROM      *mem.EEPROM
	Framebuffer []byte
}

// Ring is a bounded FIFO of snapshot records. Pushing past Capacity
// evicts the oldest record rather than failing (spec §7
// SnapshotFull: "evict oldest, continue").
type Ring struct {
	Capacity int
	records  []Record
}

func NewRing(capacity int) *Ring {
	return &Ring{Capacity: capacity}
}

// Push appends a new record, evicting the oldest if at capacity.
func (r *Ring) Push(rec Record) {
	if len(r.records) >= r.Capacity {
		r.records = r.records[1:]
	}
	r.records = append(r.records, rec)
}

// Len reports how many records are currently held.
func (r *Ring) Len() int { return len(r.records) }

// AtAge returns the record `age` pushes back from the most recent
// (age=0 is the newest), supporting rewind-by-duration.
func (r *Ring) AtAge(age int) (Record, error) {
	idx := len(r.records) - 1 - age
	if idx < 0 || idx >= len(r.records) {
		return Record{}, avrerr.SnapshotOutOfRange(age, len(r.records))
	}
	return r.records[idx], nil
}

// Clear empties the ring.
func (r *Ring) Clear() { r.records = nil }
