package ckkswrapper

import (
	"fmt"

	"github.com/tuneinsight/lattigo/v6/core/rlwe"
	"github.com/tuneinsight/lattigo/v6/schemes/ckks"
)

// ServerKit evaluates on ciphertexts without holding any secret key.
type ServerKit struct {
	Params    ckks.Parameters
	Encoder   *ckks.Encoder
	Evaluator *ckks.Evaluator
}

func NewServerKit(params ckks.Parameters, evk rlwe.EvaluationKeySet) *ServerKit {
	return &ServerKit{
		Params:    params,
		Encoder:   ckks.NewEncoder(params),
		Evaluator: ckks.NewEvaluator(params, evk),
	}
}

// TreeSumRotations lists the rotation steps InnerProduct needs for vectors of
// length n: the powers of two below n.
func TreeSumRotations(n int) []int {
	rots := []int{}
	for step := 1; step < n; step *= 2 {
		rots = append(rots, step)
	}
	return rots
}

// InnerProduct returns a ciphertext whose slot 0 holds <x, w> + bias, where
// x is packed in the first len(w) slots of ct and every other slot is zero.
func (k *ServerKit) InnerProduct(ct *rlwe.Ciphertext, w []float64, bias float64) (*rlwe.Ciphertext, error) {
	if len(w) == 0 || len(w) > k.Params.MaxSlots() {
		return nil, fmt.Errorf("weight vector of length %d does not fit %d slots", len(w), k.Params.MaxSlots())
	}
	if ct.Level() < 1 {
		return nil, fmt.Errorf("ciphertext at level %d cannot be rescaled", ct.Level())
	}

	// 1) multiply by the plaintext weights
	pt := ckks.NewPlaintext(k.Params, ct.Level())
	if err := k.Encoder.Encode(w, pt); err != nil {
		return nil, fmt.Errorf("encode weights: %w", err)
	}
	tmp, err := k.Evaluator.MulNew(ct, pt)
	if err != nil {
		return nil, err
	}

	// 2) rescale → drop one modulus, restore default scale
	out := rlwe.NewCiphertext(k.Params, tmp.Degree(), tmp.Level()-1)
	if err := k.Evaluator.Rescale(tmp, out); err != nil {
		return nil, err
	}
	tmp = out

	// 3) tree-sum rotations into slot 0
	for _, step := range TreeSumRotations(len(w)) {
		rot, err := k.Evaluator.RotateNew(tmp, step)
		if err != nil {
			return nil, err
		}
		if tmp, err = k.Evaluator.AddNew(tmp, rot); err != nil {
			return nil, err
		}
	}

	// 4) bias
	return k.Evaluator.AddNew(tmp, bias)
}
