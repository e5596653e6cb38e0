package domain

import "testing"

func TestDefaultRAGProperties_Valid(t *testing.T) {
	p := DefaultRAGProperties()
	if err := p.RRF.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if p.RRF.K != 60 || p.RRF.KeywordWeight != 1.3 || p.RRF.TitleWeight != 1.5 ||
		p.RRF.ContentWeight != 0.8 || p.RRF.PathWeight != 3.0 {
		t.Errorf("unexpected defaults: %+v", p.RRF)
	}
}

func TestRRFProperties_Validate(t *testing.T) {
	p := DefaultRAGProperties().RRF
	p.K = 0
	if err := p.Validate(); err == nil {
		t.Error("expected error for k=0")
	}

	p = DefaultRAGProperties().RRF
	p.PathBoostFactor = -1
	if err := p.Validate(); err == nil {
		t.Error("expected error for negative boost")
	}
}

func TestRequestUsage(t *testing.T) {
	ctx, u := NewContextWithUsage(t.Context())
	UsageFromContext(ctx).AddChat(12)
	UsageFromContext(ctx).AddEmbedding(0)
	UsageFromContext(ctx).AddEmbedding(5)

	snap := u.Snapshot()
	if snap.ChatTokens != 12 || snap.ChatCalls != 1 || snap.EmbeddingTokens != 5 || snap.EmbeddingCalls != 2 {
		t.Errorf("unexpected snapshot: %+v", snap)
	}

	var nilUsage *RequestUsage
	nilUsage.AddChat(1)
	if nilUsage.Snapshot() != (UsageSnapshot{}) {
		t.Error("nil usage should be a no-op")
	}
}
