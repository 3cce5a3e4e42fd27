package suggest

import (
	"context"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// ridge keeps the dense systems positive definite; small enough that the
// fit matches the minimum-norm least-squares solution.
const ridge = 1e-8

// denseLimit is the largest side of a dense system Train will factorize.
// Bigger problems use conjugate gradients on sparse products.
const denseLimit = 1000

const (
	cgMaxIter   = 400
	cgTolerance = 1e-10
)

// row is a compressed TF-IDF document vector, indices ascending.
type row struct {
	idx []int
	val []float64
}

func compress(s sparse) row {
	r := row{idx: make([]int, 0, len(s)), val: make([]float64, 0, len(s))}
	for i := range s {
		r.idx = append(r.idx, i)
	}
	sort.Ints(r.idx)
	for _, i := range r.idx {
		r.val = append(r.val, s[i])
	}
	return r
}

func (r row) dot(o row) float64 {
	var sum float64
	for i, j := 0, 0; i < len(r.idx) && j < len(o.idx); {
		switch {
		case r.idx[i] == o.idx[j]:
			sum += r.val[i] * o.val[j]
			i++
			j++
		case r.idx[i] < o.idx[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

func (r row) dotDense(d []float64) float64 {
	var sum float64
	for k, i := range r.idx {
		sum += r.val[k] * d[i]
	}
	return sum
}

// design is the centred feature matrix Xc = X - 1mᵀ. X stays sparse; the
// centring is applied inside the products.
type design struct {
	rows     []row
	mean     []float64
	rowMean  []float64
	meanNorm float64
}

func newDesign(rows []sparse, dim int) *design {
	x := &design{
		rows:    make([]row, len(rows)),
		mean:    make([]float64, dim),
		rowMean: make([]float64, len(rows)),
	}
	for i, s := range rows {
		x.rows[i] = compress(s)
		for k, j := range x.rows[i].idx {
			x.mean[j] += x.rows[i].val[k]
		}
	}
	n := float64(len(rows))
	for j := range x.mean {
		x.mean[j] /= n
		x.meanNorm += x.mean[j] * x.mean[j]
	}
	for i, r := range x.rows {
		x.rowMean[i] = r.dotDense(x.mean)
	}
	return x
}

func (x *design) n() int   { return len(x.rows) }
func (x *design) dim() int { return len(x.mean) }

// mul sets dst = Xc·w.
func (x *design) mul(dst, w []float64) {
	var mw float64
	for j, m := range x.mean {
		mw += m * w[j]
	}
	for i, r := range x.rows {
		dst[i] = r.dotDense(w) - mw
	}
}

// mulT sets dst = Xcᵀ·v.
func (x *design) mulT(dst, v []float64) {
	for j := range dst {
		dst[j] = 0
	}
	var sum float64
	for i, r := range x.rows {
		sum += v[i]
		for k, j := range r.idx {
			dst[j] += v[i] * r.val[k]
		}
	}
	for j, m := range x.mean {
		dst[j] -= sum * m
	}
}

// solve returns the weights w minimising |Xc·w - yc|. Small corpora solve
// the n×n dual system, corpora with a small vocabulary the d×d primal one,
// everything else runs CGLS.
func (x *design) solve(ctx context.Context, yc *mat.VecDense) (*mat.VecDense, error) {
	switch {
	case x.n() <= denseLimit:
		return x.solveDual(ctx, yc)
	case x.dim() <= denseLimit:
		return x.solvePrimal(ctx, yc)
	default:
		return x.solveCGLS(ctx, yc)
	}
}

// solveDual computes w = Xcᵀ(XcXcᵀ + λI)⁻¹yc.
func (x *design) solveDual(ctx context.Context, yc *mat.VecDense) (*mat.VecDense, error) {
	n := x.n()
	gram := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for j := i; j < n; j++ {
			k := x.rows[i].dot(x.rows[j]) - x.rowMean[i] - x.rowMean[j] + x.meanNorm
			if i == j {
				k += ridge
			}
			gram.SetSym(i, j, k)
		}
	}

	alpha, err := solveSym(gram, yc)
	if err != nil {
		return nil, err
	}
	w := mat.NewVecDense(x.dim(), nil)
	x.mulT(w.RawVector().Data, alpha.RawVector().Data)
	return w, nil
}

// solvePrimal computes w = (XcᵀXc + λI)⁻¹Xcᵀyc, with XcᵀXc = XᵀX - n·mmᵀ.
func (x *design) solvePrimal(ctx context.Context, yc *mat.VecDense) (*mat.VecDense, error) {
	d := x.dim()
	a := mat.NewSymDense(d, nil)
	raw := a.RawSymmetric()
	for i, r := range x.rows {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		for p, ip := range r.idx {
			base := ip * raw.Stride
			for q := p; q < len(r.idx); q++ {
				raw.Data[base+r.idx[q]] += r.val[p] * r.val[q]
			}
		}
	}
	n := float64(x.n())
	for i := 0; i < d; i++ {
		base := i * raw.Stride
		for j := i; j < d; j++ {
			raw.Data[base+j] -= n * x.mean[i] * x.mean[j]
		}
		raw.Data[base+i] += ridge
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b := mat.NewVecDense(d, nil)
	x.mulT(b.RawVector().Data, yc.RawVector().Data)
	return solveSym(a, b)
}

// solveCGLS runs conjugate gradients on the normal equations starting from
// zero, which converges to the minimum-norm solution. Each step costs two
// sparse products.
func (x *design) solveCGLS(ctx context.Context, yc *mat.VecDense) (*mat.VecDense, error) {
	n, d := x.n(), x.dim()
	w := mat.NewVecDense(d, nil)
	r := mat.VecDenseCopyOf(yc)
	s := mat.NewVecDense(d, nil)
	x.mulT(s.RawVector().Data, r.RawVector().Data)
	p := mat.VecDenseCopyOf(s)
	q := mat.NewVecDense(n, nil)

	gamma := mat.Dot(s, s)
	stop := cgTolerance * cgTolerance * gamma
	for k := 0; k < cgMaxIter && gamma > stop; k++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		x.mul(q.RawVector().Data, p.RawVector().Data)
		delta := mat.Dot(q, q)
		if delta == 0 {
			break
		}
		step := gamma / delta
		w.AddScaledVec(w, step, p)
		r.AddScaledVec(r, -step, q)

		x.mulT(s.RawVector().Data, r.RawVector().Data)
		next := mat.Dot(s, s)
		p.AddScaledVec(s, next/gamma, p)
		gamma = next
	}
	return w, nil
}

func solveSym(a *mat.SymDense, b *mat.VecDense) (*mat.VecDense, error) {
	var x mat.VecDense

	var chol mat.Cholesky
	if chol.Factorize(a) {
		if err := chol.SolveVecTo(&x, b); err == nil {
			return &x, nil
		}
	}

	if err := x.SolveVec(a, b); err != nil {
		return nil, fmt.Errorf("suggest: solve normal equations: %w", err)
	}
	return &x, nil
}
