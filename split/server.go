package split

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"trajgan/core/ckkswrapper"
	"trajgan/gan"
	"trajgan/utils"

	"github.com/tuneinsight/lattigo/v6/core/rlwe"
)

// Server holds the discriminator's dense head and scores encrypted features.
type Server struct {
	weights []float64
	bias    float64
}

// NewServer takes the head of an initialised discriminator. The head must
// have a single output unit.
func NewServer(disc *gan.Discriminator) (*Server, error) {
	head, params := disc.Head()
	if head.NOut != 1 {
		return nil, fmt.Errorf("discriminator head has %d outputs, want 1", head.NOut)
	}
	return &Server{
		weights: append([]float64(nil), params.W.Data...),
		bias:    params.B.Data[0],
	}, nil
}

// Serve accepts connections until ctx is cancelled, handling each on its own
// goroutine. It returns nil after cancellation.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer conn.Close()
			if err := s.ServeConn(ctx, conn); err != nil {
				utils.Logf("split: %s: %v\n", conn.RemoteAddr(), err)
			}
		}()
	}
}

// ServeConn runs one scoring session: keys first, then any number of
// feature ciphertexts, each answered with an encrypted score, until the
// client sends done.
func (s *Server) ServeConn(ctx context.Context, rw io.ReadWriter) error {
	if c, ok := rw.(io.Closer); ok {
		stop := context.AfterFunc(ctx, func() { c.Close() })
		defer stop()
	}
	proto := NewProtocol(rw, rw)

	kit, err := s.openSession(proto)
	if err != nil {
		proto.SendError(err)
		return err
	}

	for {
		in, err := proto.ReceiveForward(MsgForwardInput)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		out, err := s.score(kit, in.Ciphertext)
		if err != nil {
			proto.SendError(err)
			return err
		}
		b, err := out.MarshalBinary()
		if err != nil {
			return fmt.Errorf("marshal score: %w", err)
		}
		if err := proto.SendForward(MsgForwardOutput, in.BatchID, b, out.Level(), out.Scale.Float64()); err != nil {
			return err
		}
	}
}

func (s *Server) openSession(proto *Protocol) (*ckkswrapper.ServerKit, error) {
	keys, err := proto.ReceiveKeys()
	if err != nil {
		return nil, fmt.Errorf("receive keys: %w", err)
	}
	if keys.Features != len(s.weights) {
		return nil, fmt.Errorf("client sends %d features, head expects %d", keys.Features, len(s.weights))
	}
	params, err := ckkswrapper.NewParameters(keys.LogN)
	if err != nil {
		return nil, err
	}
	evk := new(rlwe.MemEvaluationKeySet)
	if err := evk.UnmarshalBinary(keys.EvaluationKeys); err != nil {
		return nil, fmt.Errorf("unmarshal evaluation keys: %w", err)
	}
	return ckkswrapper.NewServerKit(params, evk), nil
}

func (s *Server) score(kit *ckkswrapper.ServerKit, ctBytes []byte) (*rlwe.Ciphertext, error) {
	ct := new(rlwe.Ciphertext)
	if err := ct.UnmarshalBinary(ctBytes); err != nil {
		return nil, fmt.Errorf("unmarshal features: %w", err)
	}
	return kit.InnerProduct(ct, s.weights, s.bias)
}
