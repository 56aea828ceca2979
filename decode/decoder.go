// Package decode maps 64-bit Maxwell instruction words to opcodes.
//
// Each instruction form is declared as a pattern of '0', '1' and '-'
// characters covering bits 63..0. Lookup is two level: the top prefixBits
// bits of the word select a bucket, and the bucket's candidates are scanned
// most specific first.
package decode

import (
	"math/bits"
	"sort"

	"github.com/gogpu/maxwell/shader"
)

type maskValue struct {
	mask  uint64
	value uint64
	op    Op
}

// prefixBits is the widest prefix guaranteed to be fully constrained by
// every pattern in the table. Computed at init.
var prefixBits uint

var buckets [][]maskValue

func init() {
	table := make([]maskValue, 0, len(encodings))
	prefixBits = 64
	for _, e := range encodings {
		if len(e.pattern) != 64 {
			panic("decode: pattern length for " + e.op.String())
		}
		var mv maskValue
		mv.op = e.op
		lead := uint(0)
		counting := true
		for _, c := range e.pattern {
			mv.mask <<= 1
			mv.value <<= 1
			switch c {
			case '0':
				mv.mask |= 1
			case '1':
				mv.mask |= 1
				mv.value |= 1
			case '-':
				counting = false
			default:
				panic("decode: bad pattern character for " + e.op.String())
			}
			if counting {
				lead++
			}
		}
		if lead < prefixBits {
			prefixBits = lead
		}
		table = append(table, mv)
	}

	// Most specific first, so overlapping patterns resolve to the one
	// with more constrained bits.
	sort.SliceStable(table, func(i, j int) bool {
		return bits.OnesCount64(table[i].mask) > bits.OnesCount64(table[j].mask)
	})

	buckets = make([][]maskValue, 1<<prefixBits)
	shift := 64 - prefixBits
	for _, mv := range table {
		idx := mv.value >> shift
		buckets[idx] = append(buckets[idx], mv)
	}
}

// Decode returns the instruction form matching word. Unknown words are a
// hard error: silent mistranslation is worse than aborting the compile.
func Decode(word uint64) (Op, error) {
	for _, mv := range buckets[word>>(64-prefixBits)] {
		if word&mv.mask == mv.value {
			return mv.op, nil
		}
	}
	return InvalidOp, shader.NotImplemented("instruction %016x", word)
}

// IsDecodable reports whether word matches any known instruction form.
func IsDecodable(word uint64) bool {
	_, err := Decode(word)
	return err == nil
}
