package grpcapi_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/xtding233/montyhall/internal/config"
	"github.com/xtding233/montyhall/internal/grpcapi"
	"github.com/xtding233/montyhall/internal/host"
	"github.com/xtding233/montyhall/internal/monty"
)

func dial(t *testing.T, h *host.Host) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpcapi.NewServer(h, nil)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func newHost() *host.Host {
	s := config.DefaultSettings()
	s.Seed = 3
	return host.New(s, nil)
}

func testCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestSimulateOverGRPC(t *testing.T) {
	h := newHost()
	client := grpcapi.NewClient(dial(t, h))
	ctx := testCtx(t)

	rec, err := client.Simulate(ctx, 1000, monty.StrategySwitch)
	require.NoError(t, err)
	assert.Equal(t, 1000, rec.Trials)
	assert.Equal(t, monty.StrategySwitch, rec.Strategy)
	assert.InDelta(t, 66.7, rec.WinPercentage, 6)
	assert.Equal(t, monty.WinPercentage(rec.Wins, rec.Trials), rec.WinPercentage)

	hist, err := client.History(ctx)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, rec.ID, hist[0].ID)
	assert.True(t, rec.At.Equal(hist[0].At))
}

func TestSimulateDefaultsOverGRPC(t *testing.T) {
	conn := dial(t, newHost())
	out := new(structpb.Struct)
	err := conn.Invoke(testCtx(t), "/"+grpcapi.ServiceName+"/Simulate", &structpb.Struct{}, out)
	require.NoError(t, err)
	assert.Equal(t, float64(100), out.GetFields()["trials"].GetNumberValue())
	assert.Equal(t, "switch", out.GetFields()["strategy"].GetStringValue())
}

func TestSimulateErrorsOverGRPC(t *testing.T) {
	client := grpcapi.NewClient(dial(t, newHost()))
	ctx := testCtx(t)

	for _, n := range []int{0, -5, 1001} {
		_, err := client.Simulate(ctx, n, monty.StrategyKeep)
		assert.Equal(t, codes.InvalidArgument, status.Code(err), "trials=%d", n)
	}
	_, err := client.Simulate(ctx, 10, monty.Strategy("stay"))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	hist, err := client.History(ctx)
	require.NoError(t, err)
	assert.Empty(t, hist)
}

func TestSimulateRejectsFractionalTrials(t *testing.T) {
	conn := dial(t, newHost())
	req, err := structpb.NewStruct(map[string]any{"trials": 2.5})
	require.NoError(t, err)
	err = conn.Invoke(testCtx(t), "/"+grpcapi.ServiceName+"/Simulate", req, new(structpb.Struct))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestHealthOverGRPC(t *testing.T) {
	conn := dial(t, newHost())
	resp, err := healthpb.NewHealthClient(conn).Check(testCtx(t), &healthpb.HealthCheckRequest{Service: grpcapi.ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}
