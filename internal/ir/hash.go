package ir

import (
	"encoding/binary"
	"math"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Expression kind tags for hashing. Order is append-only.
const (
	tagLiteral byte = iota + 1
	tagCoordRef
	tagBundleRef
	tagUnary
	tagBinary
	tagCall
	tagSpindleCall
	tagExtract
	tagRemap
	tagCacheRead
	tagNil
	tagParamRef
)

// Hash returns a structural hash of the expression. Structurally equal
// expressions hash equal; the partitioner and cache resolution use this to
// match identical call sites cheaply before confirming with Equal.
func Hash(e Expr) uint64 {
	d := xxhash.New()
	hashExpr(d, e)
	return d.Sum64()
}

func hashExpr(d *xxhash.Digest, e Expr) {
	if e == nil {
		writeTag(d, tagNil)
		return
	}
	switch x := e.(type) {
	case Literal:
		writeTag(d, tagLiteral)
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(x.Value))
		d.Write(buf[:])
	case CoordRef:
		writeTag(d, tagCoordRef)
		writeString(d, x.Name)
	case ParamRef:
		writeTag(d, tagParamRef)
		writeString(d, x.Name)
	case BundleRef:
		writeTag(d, tagBundleRef)
		writeString(d, x.Bundle)
		writeString(d, x.Strand)
		hashExpr(d, x.Index)
	case Unary:
		writeTag(d, tagUnary)
		writeString(d, x.Op)
		hashExpr(d, x.X)
	case Binary:
		writeTag(d, tagBinary)
		writeString(d, x.Op)
		hashExpr(d, x.L)
		hashExpr(d, x.R)
	case Call:
		writeTag(d, tagCall)
		writeString(d, x.Builtin)
		writeString(d, strconv.Itoa(len(x.Args)))
		for _, a := range x.Args {
			hashExpr(d, a)
		}
	case SpindleCall:
		writeTag(d, tagSpindleCall)
		writeString(d, x.Spindle)
		writeString(d, strconv.Itoa(len(x.Args)))
		for _, a := range x.Args {
			hashExpr(d, a)
		}
	case Extract:
		writeTag(d, tagExtract)
		writeString(d, strconv.Itoa(x.Index))
		hashExpr(d, x.Call)
	case Remap:
		writeTag(d, tagRemap)
		hashExpr(d, x.Base)
		writeString(d, strconv.Itoa(len(x.Subs)))
		for _, s := range x.Subs {
			writeString(d, s.Dim)
			hashExpr(d, s.Repl)
		}
	case CacheRead:
		writeTag(d, tagCacheRead)
		writeString(d, x.Cache)
		hashExpr(d, x.Tap)
	}
}

func writeTag(d *xxhash.Digest, t byte) {
	d.Write([]byte{t})
}

func writeString(d *xxhash.Digest, s string) {
	d.WriteString(s)
	d.Write([]byte{0})
}

// Equal reports structural equality of two expressions.
func Equal(a, b Expr) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case Literal:
		y, ok := b.(Literal)
		return ok && x.Value == y.Value
	case CoordRef:
		y, ok := b.(CoordRef)
		return ok && x.Name == y.Name
	case ParamRef:
		y, ok := b.(ParamRef)
		return ok && x.Name == y.Name
	case BundleRef:
		y, ok := b.(BundleRef)
		return ok && x.Bundle == y.Bundle && x.Strand == y.Strand && Equal(x.Index, y.Index)
	case Unary:
		y, ok := b.(Unary)
		return ok && x.Op == y.Op && Equal(x.X, y.X)
	case Binary:
		y, ok := b.(Binary)
		return ok && x.Op == y.Op && Equal(x.L, y.L) && Equal(x.R, y.R)
	case Call:
		y, ok := b.(Call)
		return ok && x.Builtin == y.Builtin && equalSlices(x.Args, y.Args)
	case SpindleCall:
		y, ok := b.(SpindleCall)
		return ok && x.Spindle == y.Spindle && equalSlices(x.Args, y.Args)
	case Extract:
		y, ok := b.(Extract)
		return ok && x.Index == y.Index && Equal(x.Call, y.Call)
	case Remap:
		y, ok := b.(Remap)
		if !ok || !Equal(x.Base, y.Base) || len(x.Subs) != len(y.Subs) {
			return false
		}
		for i := range x.Subs {
			if x.Subs[i].Dim != y.Subs[i].Dim || !Equal(x.Subs[i].Repl, y.Subs[i].Repl) {
				return false
			}
		}
		return true
	case CacheRead:
		y, ok := b.(CacheRead)
		return ok && x.Cache == y.Cache && Equal(x.Tap, y.Tap)
	}
	return false
}

func equalSlices(a, b []Expr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
