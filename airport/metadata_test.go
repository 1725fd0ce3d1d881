package airport

import (
	"context"
	"io"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/vmihailenco/msgpack/v5"
	"google.golang.org/grpc"
)

type fakeActionStream struct {
	grpc.ClientStream
	results []*flight.Result
}

func (s *fakeActionStream) Recv() (*flight.Result, error) {
	if len(s.results) == 0 {
		return nil, io.EOF
	}
	r := s.results[0]
	s.results = s.results[1:]
	return r, nil
}

// fakeFlightService records the last action and replays canned results.
type fakeFlightService struct {
	flight.FlightServiceClient

	lastAction *flight.Action
	results    []*flight.Result
}

func (f *fakeFlightService) DoAction(ctx context.Context, in *flight.Action, opts ...grpc.CallOption) (flight.FlightService_DoActionClient, error) {
	f.lastAction = in
	return &fakeActionStream{results: f.results}, nil
}

func TestGetCatalogVersion(t *testing.T) {
	tests := []struct {
		name    string
		version uint64
		fixed   bool
	}{
		{"changing catalog", 7, false},
		{"fixed catalog", 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := msgpack.Marshal(map[string]any{
				"catalog_version": tt.version,
				"is_fixed":        tt.fixed,
			})
			if err != nil {
				t.Fatal(err)
			}
			svc := &fakeFlightService{results: []*flight.Result{{Body: body}}}
			c := testClient(t)
			c.flight = svc

			got, err := c.GetCatalogVersion(context.Background(), "remote")
			if err != nil {
				t.Fatalf("GetCatalogVersion failed: %v", err)
			}
			if got.Version != tt.version || got.IsFixed != tt.fixed {
				t.Errorf("version = %+v, want {%d %v}", got, tt.version, tt.fixed)
			}

			if svc.lastAction.Type != "catalog_version" {
				t.Errorf("action type = %q, want catalog_version", svc.lastAction.Type)
			}
			var params struct {
				CatalogName string `msgpack:"catalog_name"`
			}
			if err := msgpack.Unmarshal(svc.lastAction.Body, &params); err != nil {
				t.Fatalf("decode action body: %v", err)
			}
			if params.CatalogName != "remote" {
				t.Errorf("catalog_name = %q, want %q", params.CatalogName, "remote")
			}
		})
	}
}

func TestGetCatalogVersionGarbageResult(t *testing.T) {
	svc := &fakeFlightService{results: []*flight.Result{{Body: []byte{0xc1}}}}
	c := testClient(t)
	c.flight = svc
	if _, err := c.GetCatalogVersion(context.Background(), "remote"); err == nil {
		t.Fatal("undecodable catalog_version result reported no error")
	}
}
