package chi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/belljun3395/okchat/internal/domain/query"
	"github.com/belljun3395/okchat/internal/usecase/assemble"
	healthuc "github.com/belljun3395/okchat/internal/usecase/health"
	"github.com/belljun3395/okchat/internal/usecase/pipeline"
)

type mockChatter struct {
	runFn    func(ctx context.Context, in pipeline.UserInput) (pipeline.CompleteContext, error)
	answerFn func(ctx context.Context, in pipeline.UserInput) (pipeline.Answer, error)
	lastIn   pipeline.UserInput
}

func (m *mockChatter) Run(ctx context.Context, in pipeline.UserInput) (pipeline.CompleteContext, error) {
	m.lastIn = in
	if m.runFn != nil {
		return m.runFn(ctx, in)
	}
	return sampleContext(in.Query), nil
}

func (m *mockChatter) Answer(ctx context.Context, in pipeline.UserInput) (pipeline.Answer, error) {
	m.lastIn = in
	if m.answerFn != nil {
		return m.answerFn(ctx, in)
	}
	return pipeline.Answer{CompleteContext: sampleContext(in.Query), Text: "Use the deploy guide."}, nil
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(_ context.Context) healthuc.Report { return m.report }

func sampleContext(q string) pipeline.CompleteContext {
	return pipeline.CompleteContext{
		RequestID:  "req-1",
		PromptText: "prompt for " + q,
		Question:   q,
		QueryType:  query.HowTo,
		Confidence: 0.9,
		Sources: []assemble.Source{
			{Title: "Deploy guide", URL: "https://wiki/spaces/ENG/pages/1", Path: "Eng > Guides", Score: 0.12},
		},
	}
}

func newTestRouter(chat Chatter, health HealthChecker) http.Handler {
	s := NewServer(chat, health, zap.NewNop())
	r := chi.NewRouter()
	s.Routes(r)
	return r
}

func doRequest(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}
