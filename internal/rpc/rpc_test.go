package rpc

import (
	"context"
	"errors"
	"math/rand/v2"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/marcosbot/marcos/internal/markov"
	"github.com/marcosbot/marcos/internal/phraser"
)

const poem = "la casa blanca el gato come pan su luna roja"

// #region helpers
func startServer(t *testing.T, engine Engine) *Client {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	Register(srv, engine)
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewClientWithConn(conn)
}

func newEngine() *phraser.Phraser {
	return phraser.New(markov.NewMemoryStore(), nil, phraser.WithRand(rand.New(rand.NewPCG(1, 1))))
}

type brokenEngine struct{ Engine }

func (brokenEngine) GeneratePhrase(context.Context, int64) (string, error) {
	return "", errors.New("disk on fire")
}

// #endregion helpers

func TestStoreAndGenerate(t *testing.T) {
	ctx := context.Background()
	c := startServer(t, newEngine())

	require.NoError(t, c.StorePhrase(ctx, 42, "el gato come pan"))

	got, err := c.GeneratePhrase(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "el gato come pan", got)

	empty, err := c.GeneratePhrase(ctx, 43)
	require.NoError(t, err)
	assert.Equal(t, "", empty)

	ext, err := c.ExtendPhrase(ctx, 42, "gato", true, false)
	require.NoError(t, err)
	assert.Equal(t, "el gato", ext)
}

func TestGenerateHaiku(t *testing.T) {
	ctx := context.Background()
	c := startServer(t, newEngine())

	_, err := c.GenerateHaiku(ctx, -1001, "")
	assert.ErrorIs(t, err, phraser.ErrImpossibleHaiku)

	require.NoError(t, c.StorePhrase(ctx, -1001, poem))
	lines, err := c.GenerateHaiku(ctx, -1001, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"la casa blanca", "el gato come pan", "su luna roja"}, lines)
}

func TestTransitions(t *testing.T) {
	ctx := context.Background()
	c := startServer(t, newEngine())
	require.NoError(t, c.StorePhrase(ctx, 1, "a b a"))

	from, err := c.TransitionsFrom(ctx, 1, "a")
	require.NoError(t, err)
	assert.Equal(t, []phraser.Transition{{Word: "b", Probability: 0.5}, {Word: "<end>", Probability: 0.5}}, from)

	to, err := c.TransitionsTo(ctx, 1, "b")
	require.NoError(t, err)
	assert.Equal(t, []phraser.Transition{{Word: "a", Probability: 1}}, to)
}

func TestInvalidArguments(t *testing.T) {
	ctx := context.Background()
	c := startServer(t, newEngine())

	err := c.cc.Invoke(ctx, "/"+ServiceName+"/GeneratePhrase", &structpb.Struct{}, new(structpb.Value))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	in, err := structpb.NewStruct(map[string]any{"chain_id": 1.5})
	require.NoError(t, err)
	err = c.cc.Invoke(ctx, "/"+ServiceName+"/GeneratePhrase", in, new(structpb.Value))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	in, err = structpb.NewStruct(map[string]any{"chain_id": 1})
	require.NoError(t, err)
	err = c.cc.Invoke(ctx, "/"+ServiceName+"/StorePhrase", in, new(structpb.Value))
	assert.Equal(t, codes.InvalidArgument, status.Code(err), "text is required")
}

func TestEngineErrorsBecomeInternal(t *testing.T) {
	c := startServer(t, brokenEngine{})
	_, err := c.GeneratePhrase(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, codes.Internal, status.Code(errors.Unwrap(err)))
}

func TestDial(t *testing.T) {
	c, err := Dial("localhost:0")
	require.NoError(t, err)
	assert.NoError(t, c.Close())

	assert.NoError(t, NewClientWithConn(nil).Close(), "borrowed connections are not closed")
}
