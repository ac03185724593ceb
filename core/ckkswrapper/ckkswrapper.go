// Package ckkswrapper bundles the CKKS parameters, keys and codecs that the
// encrypted discriminator head needs.
package ckkswrapper

import (
	"fmt"

	"github.com/tuneinsight/lattigo/v6/core/rlwe"
	"github.com/tuneinsight/lattigo/v6/schemes/ckks"
)

// DefaultLogN gives 4096 slots, enough for hiddenSize*arrayLength/8 = 1024
// features at the default sizes.
const DefaultLogN = 13

// NewParameters returns CKKS parameters with room for one plaintext
// multiplication and rescale.
func NewParameters(logN int) (ckks.Parameters, error) {
	if logN < 10 || logN > 16 {
		return ckks.Parameters{}, fmt.Errorf("logN %d out of range [10, 16]", logN)
	}
	params, err := ckks.NewParametersFromLiteral(ckks.ParametersLiteral{
		LogN:            logN,
		LogQ:            []int{55, 40, 40},
		LogP:            []int{55},
		LogDefaultScale: 40,
	})
	if err != nil {
		return ckks.Parameters{}, fmt.Errorf("failed to create CKKS parameters: %w", err)
	}
	return params, nil
}

// HeContext is the key-owning side: it encrypts features and decrypts
// scores. Only evaluation keys ever leave it.
type HeContext struct {
	Params    ckks.Parameters
	Encoder   *ckks.Encoder
	Encryptor *rlwe.Encryptor
	Decryptor *rlwe.Decryptor

	kgen *rlwe.KeyGenerator
	sk   *rlwe.SecretKey
	rlk  *rlwe.RelinearizationKey
}

// NewHeContext returns a context at DefaultLogN and panics on failure.
func NewHeContext() *HeContext {
	h, err := NewHeContextWithLogN(DefaultLogN)
	if err != nil {
		panic(err)
	}
	return h
}

// NewHeContextWithLogN generates a fresh key pair for ring degree 2^logN.
func NewHeContextWithLogN(logN int) (*HeContext, error) {
	params, err := NewParameters(logN)
	if err != nil {
		return nil, err
	}
	kgen := rlwe.NewKeyGenerator(params)
	sk := kgen.GenSecretKeyNew()
	pk := kgen.GenPublicKeyNew(sk)
	return &HeContext{
		Params:    params,
		Encoder:   ckks.NewEncoder(params),
		Encryptor: rlwe.NewEncryptor(params, pk),
		Decryptor: rlwe.NewDecryptor(params, sk),
		kgen:      kgen,
		sk:        sk,
		rlk:       kgen.GenRelinearizationKeyNew(sk),
	}, nil
}

// GenEvaluationKeys returns the relinearization key and one Galois key per
// rotation step.
func (h *HeContext) GenEvaluationKeys(rots []int) *rlwe.MemEvaluationKeySet {
	galEls := make([]uint64, 0, len(rots))
	seen := make(map[uint64]bool, len(rots))
	for _, rot := range rots {
		el := h.Params.GaloisElement(rot)
		if !seen[el] {
			seen[el] = true
			galEls = append(galEls, el)
		}
	}
	galKeys := h.kgen.GenGaloisKeysNew(galEls, h.sk)
	return rlwe.NewMemEvaluationKeySet(h.rlk, galKeys...)
}

// GenServerKit returns an evaluator holding keys for the given rotations.
func (h *HeContext) GenServerKit(rots []int) *ServerKit {
	return NewServerKit(h.Params, h.GenEvaluationKeys(rots))
}

// EncryptVector packs values into the first slots of a fresh ciphertext.
func (h *HeContext) EncryptVector(values []float64) (*rlwe.Ciphertext, error) {
	if len(values) > h.Params.MaxSlots() {
		return nil, fmt.Errorf("vector of %d values exceeds %d slots", len(values), h.Params.MaxSlots())
	}
	pt := ckks.NewPlaintext(h.Params, h.Params.MaxLevel())
	if err := h.Encoder.Encode(values, pt); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return h.Encryptor.EncryptNew(pt)
}

// DecryptVector returns the real parts of the first n slots of ct.
func (h *HeContext) DecryptVector(ct *rlwe.Ciphertext, n int) ([]float64, error) {
	pt := h.Decryptor.DecryptNew(ct)
	decoded := make([]complex128, h.Params.MaxSlots())
	if err := h.Encoder.Decode(pt, decoded); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if n > len(decoded) {
		n = len(decoded)
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = real(decoded[i])
	}
	return out, nil
}
