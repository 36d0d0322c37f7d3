package llm

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestRouter_DispatchesByPurpose(t *testing.T) {
	def := NewMockProvider(MockResponse{Content: json.RawMessage(`{"from":"default"}`)})
	simplifier := NewMockProvider(MockResponse{Content: json.RawMessage(`{"from":"simplifier"}`)})

	r := NewRouter(def, map[string]Provider{PurposeSimplify: simplifier})

	resp, err := r.Generate(WithPurpose(context.Background(), PurposeSimplify), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != `{"from":"simplifier"}` {
		t.Fatalf("expected simplifier response, got %s", resp.Content)
	}

	resp, err = r.Generate(WithPurpose(context.Background(), PurposeEvaluate), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != `{"from":"default"}` {
		t.Fatalf("expected default response, got %s", resp.Content)
	}

	if def.CallCount() != 1 || simplifier.CallCount() != 1 {
		t.Fatalf("unexpected call counts: default=%d simplifier=%d", def.CallCount(), simplifier.CallCount())
	}
	if r.ModelID() != "mock" {
		t.Fatalf("expected default model id, got %q", r.ModelID())
	}
}

func TestNewProvider_MockWithRoutes(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{
		Provider: "mock",
		Routes:   map[string]string{PurposeFormat: "mock"},
		Timeout:  time.Second,
	}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := p.(*Router); !ok {
		t.Fatalf("expected *Router, got %T", p)
	}
}

func TestNewProvider_RejectsInvalidConfig(t *testing.T) {
	if _, err := NewProvider(context.Background(), Config{Provider: "gemini"}, nil, nil); err == nil {
		t.Fatal("expected error for gemini without key")
	}
}

type blockingProvider struct{}

func (blockingProvider) Generate(ctx context.Context, _ Request) (*Response, error) {
	<-ctx.Done()
	return nil, &ErrProviderUnavailable{Err: ctx.Err()}
}

func (blockingProvider) ModelID() string { return "blocking" }

func TestWithTimeout_CancelsSlowRequests(t *testing.T) {
	p := WithTimeout(blockingProvider{}, 20*time.Millisecond)

	start := time.Now()
	_, err := p.Generate(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if time.Since(start) > time.Second {
		t.Fatalf("timeout not applied, took %s", time.Since(start))
	}
}

func TestWithTimeout_ZeroIsPassthrough(t *testing.T) {
	inner := NewMockProvider()
	if WithTimeout(inner, 0) != Provider(inner) {
		t.Fatal("expected the inner provider back")
	}
}
