package api

import (
	"context"
	"errors"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/gsfdstack/gsfd-analysis/internal/config"
)

type fakeAnalysis struct{}

func (fakeAnalysis) ListRecords(_ context.Context, req *structpb.Struct) (*structpb.ListValue, error) {
	filter, err := FromProtoListRecordsRequest(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	return structpb.NewList([]any{map[string]any{"group": filter.Group}})
}

func (fakeAnalysis) Aggregate(_ context.Context, req *structpb.Struct) (*structpb.ListValue, error) {
	if _, err := FromProtoAggregateRequest(req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	return &structpb.ListValue{}, nil
}

func TestServerRoundTrip(t *testing.T) {
	srv, err := NewServer(config.ServerConfig{Address: "127.0.0.1:0", GracefulTimeout: time.Second}, fakeAnalysis{})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- srv.Start() }()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), srv.GracefulTimeout())
		defer cancel()
		srv.Shutdown(ctx)
		<-done
	}()

	conn, err := grpc.NewClient(srv.Address(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	health, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: AnalysisServiceName})
	if err != nil {
		t.Fatalf("health check: %v", err)
	}
	if health.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("unexpected health status %v", health.GetStatus())
	}

	client := NewAnalysisClient(conn)
	req, _ := structpb.NewStruct(map[string]any{"group": "sub"})
	list, err := client.ListRecords(ctx, req)
	if err != nil {
		t.Fatalf("list records: %v", err)
	}
	if got := list.GetValues()[0].GetStructValue().GetFields()["group"].GetStringValue(); got != "sub" {
		t.Fatalf("unexpected echoed group %q", got)
	}

	_, err = client.Aggregate(ctx, &structpb.Struct{})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}

func TestServerReportsNotServingDuringReload(t *testing.T) {
	srv, err := NewServer(config.ServerConfig{Address: "127.0.0.1:0", GracefulTimeout: time.Second}, fakeAnalysis{})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- srv.Start() }()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), srv.GracefulTimeout())
		defer cancel()
		srv.Shutdown(ctx)
		<-done
	}()

	conn, err := grpc.NewClient(srv.Address(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	health := healthpb.NewHealthClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	check := func() healthpb.HealthCheckResponse_ServingStatus {
		t.Helper()
		resp, err := health.Check(ctx, &healthpb.HealthCheckRequest{Service: AnalysisServiceName})
		if err != nil {
			t.Fatalf("health check: %v", err)
		}
		return resp.GetStatus()
	}

	var during healthpb.HealthCheckResponse_ServingStatus
	err = srv.Reload(ctx, func(context.Context) error {
		during = check()
		return nil
	})
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if during != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Fatalf("expected NOT_SERVING during reload, got %v", during)
	}
	if got := check(); got != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("expected SERVING after reload, got %v", got)
	}

	boom := errors.New("corpus unreadable")
	if err := srv.Reload(ctx, func(context.Context) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("expected reload error to propagate, got %v", err)
	}
	if got := check(); got != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("expected SERVING after failed reload, got %v", got)
	}
}
