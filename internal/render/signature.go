package render

import (
	"hash/fnv"
	"strconv"
)

// Signature fingerprints the inputs that produce one rendered row. It is a
// pure function of the declared inputs, so identical inputs always produce
// identical signatures and a row is rematerialized only when its signature
// changes.
type Signature uint64

// Hash combines parts into a signature with FNV-1a. A zero byte separates
// parts so ("ab","c") and ("a","bc") hash differently.
func Hash(parts ...string) Signature {
	h := fnv.New64a()
	for _, part := range parts {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return Signature(h.Sum64())
}

// HashBool folds a flag into an existing signature.
func (s Signature) HashBool(name string, v bool) Signature {
	if v {
		return s.With(name, "1")
	}
	return s.With(name, "0")
}

// HashInt folds an integer into an existing signature.
func (s Signature) HashInt(name string, v int) Signature {
	return s.With(name, strconv.Itoa(v))
}

// With folds another named part into an existing signature.
func (s Signature) With(name, value string) Signature {
	h := fnv.New64a()
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(s >> (8 * i))
	}
	h.Write(buf[:])
	h.Write([]byte(name))
	h.Write([]byte{0})
	h.Write([]byte(value))
	h.Write([]byte{0})
	return Signature(h.Sum64())
}
