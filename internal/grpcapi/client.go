package grpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/xtding233/montyhall/internal/host"
	"github.com/xtding233/montyhall/internal/monty"
)

// Client is a typed wrapper over the Struct-based wire API.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client { return &Client{cc: cc} }

// Simulate requests one run. An empty strategy uses the server default.
func (c *Client) Simulate(ctx context.Context, trials int, strategy monty.Strategy) (host.Record, error) {
	fields := map[string]any{"trials": trials}
	if strategy != "" {
		fields["strategy"] = string(strategy)
	}
	req, err := structpb.NewStruct(fields)
	if err != nil {
		return host.Record{}, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodSimulate, req, out); err != nil {
		return host.Record{}, err
	}
	return recordFromStruct(out)
}

// History returns the server's remembered runs, newest first.
func (c *Client) History(ctx context.Context) ([]host.Record, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodHistory, &structpb.Struct{}, out); err != nil {
		return nil, err
	}
	items := out.GetFields()["results"].GetListValue().GetValues()
	recs := make([]host.Record, 0, len(items))
	for _, v := range items {
		rec, err := recordFromStruct(v.GetStructValue())
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}
