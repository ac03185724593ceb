package split

import (
	"context"
	"fmt"
	"io"
	"time"

	"trajgan/core/ckkswrapper"
	"trajgan/gan"
	"trajgan/nn/layers"
	"trajgan/tensor"
	"trajgan/utils"

	"github.com/tuneinsight/lattigo/v6/core/rlwe"
)

// Client runs the discriminator body locally and has the server evaluate the
// dense head on encrypted features. The secret key never leaves the client.
type Client struct {
	he       *ckkswrapper.HeContext
	disc     *gan.Discriminator
	act      layers.Activation
	features int
	rw       io.ReadWriter
	proto    *Protocol
	nextID   int

	// Stats accumulates encryption, server round-trip and decryption time.
	Stats utils.TimingStats
}

// NewClient opens a session over rw by sending evaluation keys for the
// discriminator's feature width.
func NewClient(he *ckkswrapper.HeContext, disc *gan.Discriminator, rw io.ReadWriter) (*Client, error) {
	head, _ := disc.Head()
	if head.NIn > he.Params.MaxSlots() {
		return nil, fmt.Errorf("%d features exceed %d slots", head.NIn, he.Params.MaxSlots())
	}
	c := &Client{
		he:       he,
		disc:     disc,
		act:      head.Activation,
		features: head.NIn,
		rw:       rw,
		proto:    NewProtocol(rw, rw),
	}
	evk, err := he.GenEvaluationKeys(ckkswrapper.TreeSumRotations(head.NIn)).MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshal evaluation keys: %w", err)
	}
	if err := c.proto.SendKeys(he.Params.LogN(), head.NIn, evk); err != nil {
		return nil, fmt.Errorf("send keys: %w", err)
	}
	return c, nil
}

// Score returns the discriminator score of traj, computed with the head
// evaluated remotely under encryption.
func (c *Client) Score(ctx context.Context, traj *tensor.Tensor) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if cl, ok := c.rw.(io.Closer); ok {
		stop := context.AfterFunc(ctx, func() { cl.Close() })
		defer stop()
	}

	features, err := c.disc.Features(traj)
	if err != nil {
		return 0, err
	}
	if len(features) != c.features {
		return 0, fmt.Errorf("got %d features, session opened for %d", len(features), c.features)
	}

	start := time.Now()
	ct, err := c.he.EncryptVector(features)
	if err != nil {
		return 0, fmt.Errorf("encrypt features: %w", err)
	}
	b, err := ct.MarshalBinary()
	if err != nil {
		return 0, fmt.Errorf("marshal features: %w", err)
	}
	c.Stats.EncryptionTime += time.Since(start)

	start = time.Now()
	id := c.nextID
	c.nextID++
	if err := c.proto.SendForward(MsgForwardInput, id, b, ct.Level(), ct.Scale.Float64()); err != nil {
		return 0, c.wrapCtx(ctx, fmt.Errorf("send features: %w", err))
	}
	resp, err := c.proto.ReceiveForward(MsgForwardOutput)
	if err != nil {
		return 0, c.wrapCtx(ctx, fmt.Errorf("receive score: %w", err))
	}
	if resp.BatchID != id {
		return 0, fmt.Errorf("score for batch %d, want %d", resp.BatchID, id)
	}
	c.Stats.ServerLinearTime += time.Since(start)

	start = time.Now()
	out := new(rlwe.Ciphertext)
	if err := out.UnmarshalBinary(resp.Ciphertext); err != nil {
		return 0, fmt.Errorf("unmarshal score: %w", err)
	}
	vals, err := c.he.DecryptVector(out, 1)
	if err != nil {
		return 0, err
	}
	c.Stats.DecryptionTime += time.Since(start)

	return c.act.Apply(vals[0]), nil
}

// Close ends the session.
func (c *Client) Close() error {
	return c.proto.SendDone()
}

func (c *Client) wrapCtx(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %v", ctx.Err(), err)
	}
	return err
}
