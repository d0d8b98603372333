package compute

import (
	"errors"
	"fmt"
	"math"

	"github.com/njchilds90/gosymbol"
)

var (
	// ErrUnknownSymbol indicates an expression references a symbol outside
	// the declared variable list.
	ErrUnknownSymbol = errors.New("compute: symbol not in variable list")

	// ErrUnsupportedExpr indicates an expression node the compiler cannot
	// translate.
	ErrUnsupportedExpr = errors.New("compute: unsupported expression node")
)

type evalFunc func(vals []float64) float64

// Program holds expressions compiled against a fixed variable ordering.
// It is immutable after Compile and safe to call repeatedly.
type Program struct {
	fns  []evalFunc
	vars []string
}

// Compile translates each expression into a numeric closure. The variable
// list fixes the slot order that every later Eval call must follow.
func Compile(exprs []gosymbol.Expr, vars []string) (*Program, error) {
	index := make(map[string]int, len(vars))
	for i, v := range vars {
		if _, ok := index[v]; ok {
			return nil, fmt.Errorf("compute: duplicate variable %q", v)
		}
		index[v] = i
	}

	fns := make([]evalFunc, len(exprs))
	for i, e := range exprs {
		fn, err := compileExpr(e, index)
		if err != nil {
			return nil, fmt.Errorf("expression %d: %w", i, err)
		}
		fns[i] = fn
	}

	return &Program{fns: fns, vars: append([]string(nil), vars...)}, nil
}

// CompileMatrix compiles all entries of a symbolic matrix in row-major order.
func CompileMatrix(m *gosymbol.Matrix, vars []string) (*Program, error) {
	exprs := make([]gosymbol.Expr, 0, m.Rows()*m.Cols())
	for i := 0; i < m.Rows(); i++ {
		for j := 0; j < m.Cols(); j++ {
			exprs = append(exprs, m.Get(i, j))
		}
	}
	return Compile(exprs, vars)
}

// Len returns the number of compiled expressions.
func (p *Program) Len() int { return len(p.fns) }

// Vars returns the variable ordering the program was compiled against.
func (p *Program) Vars() []string { return append([]string(nil), p.vars...) }

// Eval evaluates expression i. The vals slice must follow the compile-time
// variable ordering; this is the hot path and performs no checking.
func (p *Program) Eval(i int, vals []float64) float64 { return p.fns[i](vals) }

// EvalAll evaluates every expression into dst, allocating if dst is too
// short, and returns the slice used.
func (p *Program) EvalAll(dst, vals []float64) []float64 {
	if len(dst) < len(p.fns) {
		dst = make([]float64, len(p.fns))
	}
	for i, fn := range p.fns {
		dst[i] = fn(vals)
	}
	return dst[:len(p.fns)]
}

func compileExpr(e gosymbol.Expr, index map[string]int) (evalFunc, error) {
	switch n := e.(type) {
	case *gosymbol.Num:
		c := n.Float64()
		return func([]float64) float64 { return c }, nil

	case *gosymbol.Sym:
		slot, ok := index[n.Name()]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSymbol, n.Name())
		}
		return func(vals []float64) float64 { return vals[slot] }, nil

	case *gosymbol.Add:
		fns, err := compileAll(n.Terms(), index)
		if err != nil {
			return nil, err
		}
		return func(vals []float64) float64 {
			sum := 0.0
			for _, fn := range fns {
				sum += fn(vals)
			}
			return sum
		}, nil

	case *gosymbol.Mul:
		fns, err := compileAll(n.Factors(), index)
		if err != nil {
			return nil, err
		}
		return func(vals []float64) float64 {
			prod := 1.0
			for _, fn := range fns {
				prod *= fn(vals)
			}
			return prod
		}, nil

	case *gosymbol.Pow:
		return compilePow(n, index)

	case *gosymbol.Func:
		return compileFunc(n, index)

	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedExpr, e)
	}
}

func compileAll(exprs []gosymbol.Expr, index map[string]int) ([]evalFunc, error) {
	fns := make([]evalFunc, len(exprs))
	for i, e := range exprs {
		fn, err := compileExpr(e, index)
		if err != nil {
			return nil, err
		}
		fns[i] = fn
	}
	return fns, nil
}

func compilePow(p *gosymbol.Pow, index map[string]int) (evalFunc, error) {
	base, err := compileExpr(p.Base(), index)
	if err != nil {
		return nil, err
	}

	// Small integer exponents dominate in discretized dynamics (squares and
	// the 1/h division), so unroll them instead of calling math.Pow.
	if num, ok := p.ExpExpr().(*gosymbol.Num); ok && num.IsInteger() {
		if r := num.Rat(); r.Num().IsInt64() {
			k := r.Num().Int64()
			if k >= -4 && k <= 4 {
				return intPow(base, k), nil
			}
		}
	}

	exp, err := compileExpr(p.ExpExpr(), index)
	if err != nil {
		return nil, err
	}
	return func(vals []float64) float64 {
		return math.Pow(base(vals), exp(vals))
	}, nil
}

func intPow(base evalFunc, k int64) evalFunc {
	switch {
	case k == 0:
		return func([]float64) float64 { return 1 }
	case k == 1:
		return base
	case k == -1:
		return func(vals []float64) float64 { return 1 / base(vals) }
	case k > 0:
		return func(vals []float64) float64 {
			b := base(vals)
			out := b
			for i := int64(1); i < k; i++ {
				out *= b
			}
			return out
		}
	default:
		return func(vals []float64) float64 {
			b := base(vals)
			out := b
			for i := int64(1); i < -k; i++ {
				out *= b
			}
			return 1 / out
		}
	}
}

func compileFunc(f *gosymbol.Func, index map[string]int) (evalFunc, error) {
	arg, err := compileExpr(f.Arg(), index)
	if err != nil {
		return nil, err
	}

	var fn func(float64) float64
	switch f.FuncName() {
	case "sin":
		fn = math.Sin
	case "cos":
		fn = math.Cos
	case "tan":
		fn = math.Tan
	case "exp":
		fn = math.Exp
	case "ln":
		fn = math.Log
	case "abs":
		fn = math.Abs
	case "asin":
		fn = math.Asin
	case "acos":
		fn = math.Acos
	case "atan":
		fn = math.Atan
	case "sinh":
		fn = math.Sinh
	case "cosh":
		fn = math.Cosh
	case "tanh":
		fn = math.Tanh
	case "floor":
		fn = math.Floor
	case "ceil":
		fn = math.Ceil
	case "sign":
		fn = func(x float64) float64 {
			if x > 0 {
				return 1
			}
			if x < 0 {
				return -1
			}
			return 0
		}
	default:
		return nil, fmt.Errorf("%w: function %q", ErrUnsupportedExpr, f.FuncName())
	}

	return func(vals []float64) float64 { return fn(arg(vals)) }, nil
}
