package rpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/marcosbot/marcos/internal/phraser"
)

// #region client-struct
// Client talks to a remote Phraser service.
type Client struct {
	conn *grpc.ClientConn
	cc   grpc.ClientConnInterface
}
// #endregion client-struct

// #region constructor
// Dial connects to the Phraser gRPC server at addr.
func Dial(addr string) (*Client, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{conn: conn, cc: conn}, nil
}

// NewClientWithConn creates a Client over an existing connection.
// The caller keeps ownership of cc.
func NewClientWithConn(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}
// #endregion constructor

// #region close
// Close shuts down the gRPC connection when the client owns it.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
// #endregion close

// #region calls
func (c *Client) invoke(ctx context.Context, method string, fields map[string]any, out any) error {
	in, err := structpb.NewStruct(fields)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", method, err)
	}
	return c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out)
}

// StorePhrase feeds text into a remote chain.
func (c *Client) StorePhrase(ctx context.Context, chainID int64, text string) error {
	err := c.invoke(ctx, "StorePhrase", map[string]any{"chain_id": chainID, "text": text}, new(emptypb.Empty))
	if err != nil {
		return fmt.Errorf("store phrase rpc: %w", err)
	}
	return nil
}

// GeneratePhrase asks for a random phrase.
func (c *Client) GeneratePhrase(ctx context.Context, chainID int64) (string, error) {
	out := new(wrapperspb.StringValue)
	if err := c.invoke(ctx, "GeneratePhrase", map[string]any{"chain_id": chainID}, out); err != nil {
		return "", fmt.Errorf("generate phrase rpc: %w", err)
	}
	return out.GetValue(), nil
}

// ExtendPhrase asks for phrase grown on the requested sides.
func (c *Client) ExtendPhrase(ctx context.Context, chainID int64, phrase string, before, after bool) (string, error) {
	out := new(wrapperspb.StringValue)
	err := c.invoke(ctx, "ExtendPhrase", map[string]any{
		"chain_id": chainID,
		"phrase":   phrase,
		"before":   before,
		"after":    after,
	}, out)
	if err != nil {
		return "", fmt.Errorf("extend phrase rpc: %w", err)
	}
	return out.GetValue(), nil
}

// GenerateHaiku asks for a haiku. A FailedPrecondition answer comes back
// as phraser.ErrImpossibleHaiku.
func (c *Client) GenerateHaiku(ctx context.Context, chainID int64, seed string) ([]string, error) {
	out := new(structpb.ListValue)
	err := c.invoke(ctx, "GenerateHaiku", map[string]any{"chain_id": chainID, "seed": seed}, out)
	if status.Code(err) == codes.FailedPrecondition {
		return nil, fmt.Errorf("generate haiku rpc: %w", phraser.ErrImpossibleHaiku)
	}
	if err != nil {
		return nil, fmt.Errorf("generate haiku rpc: %w", err)
	}
	lines := make([]string, len(out.GetValues()))
	for i, v := range out.GetValues() {
		lines[i] = v.GetStringValue()
	}
	return lines, nil
}

// TransitionsFrom lists the words that followed word in a remote chain.
func (c *Client) TransitionsFrom(ctx context.Context, chainID int64, word string) ([]phraser.Transition, error) {
	return c.transitions(ctx, "TransitionsFrom", chainID, word)
}

// TransitionsTo lists the words that preceded word in a remote chain.
func (c *Client) TransitionsTo(ctx context.Context, chainID int64, word string) ([]phraser.Transition, error) {
	return c.transitions(ctx, "TransitionsTo", chainID, word)
}

func (c *Client) transitions(ctx context.Context, method string, chainID int64, word string) ([]phraser.Transition, error) {
	out := new(structpb.ListValue)
	if err := c.invoke(ctx, method, map[string]any{"chain_id": chainID, "word": word}, out); err != nil {
		return nil, fmt.Errorf("%s rpc: %w", method, err)
	}
	ts := make([]phraser.Transition, len(out.GetValues()))
	for i, v := range out.GetValues() {
		f := v.GetStructValue().GetFields()
		ts[i] = phraser.Transition{
			Word:        f["word"].GetStringValue(),
			Probability: f["probability"].GetNumberValue(),
		}
	}
	return ts, nil
}
// #endregion calls
