package sema

import (
	"fortio.org/safecast"

	"chisel/internal/ast"
	"chisel/internal/diag"
)

type evalFlags uint8

const (
	evalPositive evalFlags = 1 << iota
	evalNonNegative
	evalPowerOfTwo
)

// evalBits is the default fixed width attribute integer arguments must fit.
const evalBits = 32

// evalInteger folds an attribute argument expression to an integer and
// enforces the requested constraints: fit within width bits, positivity or
// non-negativity, power-of-two-ness. Each failure mode has its own
// diagnostic. Value-dependent expressions return false silently; the
// dispatch driver defers whole attributes before handlers ever see one.
func (c *Checker) evalInteger(e *ast.Expr, name string, argNo int, width uint, flags evalFlags) (uint64, bool) {
	if e == nil {
		return 0, false
	}
	if e.IsValueDependent() {
		return 0, false
	}
	val, neg, ok := foldInt(e)
	if !ok {
		c.report(diag.ValNotConstant, e.Span,
			"argument %d of '%s' is not an integer constant", argNo, name)
		return 0, false
	}
	if neg && val != 0 {
		if flags&evalPositive != 0 {
			c.report(diag.ValNotPositive, e.Span,
				"argument %d of '%s' must be strictly positive; got -%d", argNo, name, val)
			return 0, false
		}
		if flags&evalNonNegative != 0 {
			c.report(diag.ValNotNonNegative, e.Span,
				"argument %d of '%s' must be non-negative; got -%d", argNo, name, val)
			return 0, false
		}
		if flags&evalPowerOfTwo != 0 {
			c.report(diag.ValNotPowerOfTwo, e.Span,
				"argument %d of '%s' must be a positive power of two; got -%d", argNo, name, val)
			return 0, false
		}
	}
	if flags&evalPositive != 0 && val == 0 {
		c.report(diag.ValNotPositive, e.Span,
			"argument %d of '%s' must be strictly positive; got 0", argNo, name)
		return 0, false
	}
	if flags&evalPowerOfTwo != 0 && (val == 0 || val&(val-1) != 0) {
		c.report(diag.ValNotPowerOfTwo, e.Span,
			"argument %d of '%s' must be a positive power of two (1, 2, 4, 8, ...); got %d", argNo, name, val)
		return 0, false
	}
	if width > 0 && width < 64 && val > (uint64(1)<<width)-1 {
		c.report(diag.ValTooWide, e.Span,
			"argument %d of '%s' does not fit in %d bits", argNo, name, width)
		return 0, false
	}
	return val, true
}

// evalInt32 is the common case: a fixed 32-bit argument, narrowed safely.
func (c *Checker) evalInt32(e *ast.Expr, name string, argNo int, flags evalFlags) (uint32, bool) {
	v, ok := c.evalInteger(e, name, argNo, evalBits, flags)
	if !ok {
		return 0, false
	}
	n, err := safecast.Conv[uint32](v)
	if err != nil {
		c.report(diag.ValTooWide, e.Span,
			"argument %d of '%s' does not fit in %d bits", argNo, name, evalBits)
		return 0, false
	}
	return n, true
}

// evalIntegerInRange folds and enforces lo <= value <= hi.
func (c *Checker) evalIntegerInRange(e *ast.Expr, name string, argNo int, lo, hi int64) (int64, bool) {
	if e == nil || e.IsValueDependent() {
		return 0, false
	}
	mag, neg, ok := foldInt(e)
	if !ok {
		c.report(diag.ValNotConstant, e.Span,
			"argument %d of '%s' is not an integer constant", argNo, name)
		return 0, false
	}
	val, ok := signedValue(mag, neg)
	if !ok || val < lo || val > hi {
		c.report(diag.ValOutOfRange, e.Span,
			"argument %d of '%s' is out of range [%d, %d]", argNo, name, lo, hi)
		return 0, false
	}
	return val, true
}

func signedValue(mag uint64, neg bool) (int64, bool) {
	if neg {
		if mag > 1<<63 {
			return 0, false
		}
		return -int64(mag), true
	}
	if mag > 1<<63-1 {
		return 0, false
	}
	return int64(mag), true
}

// foldInt evaluates the small constant-expression grammar to a magnitude
// and sign. Overflow at any step makes the expression non-constant rather
// than silently wrapping.
func foldInt(e *ast.Expr) (mag uint64, neg bool, ok bool) {
	if e == nil {
		return 0, false, false
	}
	switch e.Kind {
	case ast.ExprIntLit:
		return e.Val, e.Neg, true
	case ast.ExprParen, ast.ExprCast:
		return foldInt(e.X)
	case ast.ExprUnary:
		m, n, ok := foldInt(e.X)
		if !ok {
			return 0, false, false
		}
		switch e.UOp {
		case ast.UnaryPlus:
			return m, n, true
		case ast.UnaryMinus:
			return m, !n && m != 0, true
		}
		return 0, false, false
	case ast.ExprBinary:
		lm, ln, ok := foldInt(e.X)
		if !ok {
			return 0, false, false
		}
		rm, rn, ok := foldInt(e.Y)
		if !ok {
			return 0, false, false
		}
		lv, ok := signedValue(lm, ln)
		if !ok {
			return 0, false, false
		}
		rv, ok := signedValue(rm, rn)
		if !ok {
			return 0, false, false
		}
		res, ok := foldBinary(e.BOp, lv, rv)
		if !ok {
			return 0, false, false
		}
		if res < 0 {
			return uint64(-res), true, true
		}
		return uint64(res), false, true
	}
	return 0, false, false
}

func foldBinary(op ast.BinaryOp, l, r int64) (int64, bool) {
	switch op {
	case ast.BinaryAdd:
		res := l + r
		// Same-sign operands flipping sign means overflow.
		if (l >= 0) == (r >= 0) && (res >= 0) != (l >= 0) {
			return 0, false
		}
		return res, true
	case ast.BinarySub:
		res := l - r
		if (l >= 0) != (r >= 0) && (res >= 0) != (l >= 0) {
			return 0, false
		}
		return res, true
	case ast.BinaryMul:
		if l == 0 || r == 0 {
			return 0, true
		}
		res := l * r
		if res/r != l {
			return 0, false
		}
		return res, true
	case ast.BinaryDiv:
		if r == 0 {
			return 0, false
		}
		return l / r, true
	case ast.BinaryMod:
		if r == 0 {
			return 0, false
		}
		return l % r, true
	case ast.BinaryShl:
		if r < 0 || r >= 64 || l < 0 {
			return 0, false
		}
		res := l << uint(r)
		if res>>uint(r) != l {
			return 0, false
		}
		return res, true
	case ast.BinaryShr:
		if r < 0 || r >= 64 {
			return 0, false
		}
		return l >> uint(r), true
	}
	return 0, false
}
