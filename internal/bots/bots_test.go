package bots

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/genie-relay/internal/config"
	"github.com/ziadkadry99/genie-relay/internal/llm"
	"github.com/ziadkadry99/genie-relay/internal/messaging"
	"github.com/ziadkadry99/genie-relay/internal/metrics"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

// stubProvider implements llm.Provider for testing.
type stubProvider struct {
	mu    sync.Mutex
	calls []llm.CompletionRequest
	resp  *llm.CompletionResponse
	err   error
	delay time.Duration
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	s.mu.Lock()
	s.calls = append(s.calls, req)
	s.mu.Unlock()
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	if s.resp != nil {
		return s.resp, nil
	}
	return &llm.CompletionResponse{Content: "mock response", Model: "mock-model"}, nil
}

func (s *stubProvider) lastPrompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.calls) == 0 {
		return ""
	}
	msgs := s.calls[len(s.calls)-1].Messages
	return msgs[len(msgs)-1].Content
}

func (s *stubProvider) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// sentMessage is one call recorded by recordingSender.
type sentMessage struct {
	To   string
	Text string
}

// recordingSender implements Sender for testing.
type recordingSender struct {
	mu    sync.Mutex
	sent  []sentMessage
	err   error
	panic bool
}

func (s *recordingSender) Send(_ context.Context, to, text string) (*messaging.Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentMessage{To: to, Text: text})
	if s.panic {
		panic("sender exploded")
	}
	if s.err != nil {
		return nil, s.err
	}
	return &messaging.Delivery{ReferenceID: "ref-1", StatusCode: http.StatusOK}, nil
}

func (s *recordingSender) calls() []sentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sentMessage(nil), s.sent...)
}

func relayConfig(policy config.IneligiblePolicy) config.RelayConfig {
	cfg := config.DefaultConfig().Relay
	cfg.IneligiblePolicy = policy
	return cfg
}

type harness struct {
	provider *stubProvider
	sender   *recordingSender
	metrics  *metrics.Relay
	gateway  *Gateway
	handler  *WebhookHandler
	router   chi.Router
}

func newHarness(policy config.IneligiblePolicy) *harness {
	h := &harness{
		provider: &stubProvider{},
		sender:   &recordingSender{},
		metrics:  metrics.NewRelay(metrics.NewCollector()),
	}
	completer := NewCompletionClient(CompletionConfig{
		Provider:     h.provider,
		Model:        "gpt-4o-mini",
		Timeout:      time.Second,
		FallbackText: config.DefaultFallbackText,
		Logger:       testLogger(),
		Metrics:      h.metrics,
	})
	processor := NewProcessor(NewCommandFilter(relayConfig(policy)), completer)
	h.gateway = NewGateway(GatewayConfig{
		Handler: processor,
		Sender:  h.sender,
		Logger:  testLogger(),
		Metrics: h.metrics,
	})
	h.handler = NewWebhookHandler(h.gateway, testLogger(), h.metrics)
	h.router = chi.NewRouter()
	RegisterRoutes(h.router, h.handler)
	return h
}

func (h *harness) post(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func assertAcknowledged(t *testing.T, w *httptest.ResponseRecorder) {
	t.Helper()
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp["status"] != "success" {
		t.Errorf("expected status 'success', got %q", resp["status"])
	}
}

func event(sender, text string) string {
	b, _ := json.Marshal(map[string]any{
		"data": map[string]any{
			"senderPhoneNumber": sender,
			"content":           map[string]any{"text": text},
		},
	})
	return string(b)
}

// --- EventParser tests ---

func TestParseEvent(t *testing.T) {
	msg, err := ParseEvent([]byte(event("919812345678", "  Cyber Genie, hi  \n")))
	if err != nil {
		t.Fatal(err)
	}
	if msg.SenderID != "919812345678" {
		t.Errorf("expected sender 919812345678, got %q", msg.SenderID)
	}
	if msg.Text != "Cyber Genie, hi" {
		t.Errorf("expected trimmed text, got %q", msg.Text)
	}
	if msg.Platform != PlatformWhatsApp {
		t.Errorf("expected platform whatsapp, got %s", msg.Platform)
	}
}

func TestParseEventMalformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", "not json"},
		{"array", `[]`},
		{"no data", `{"event": "message"}`},
		{"null data", `{"data": null}`},
		{"missing sender", `{"data": {"content": {"text": "hello"}}}`},
		{"empty sender", `{"data": {"senderPhoneNumber": "  ", "content": {"text": "hello"}}}`},
		{"numeric sender", `{"data": {"senderPhoneNumber": 9198, "content": {"text": "hello"}}}`},
		{"missing content", `{"data": {"senderPhoneNumber": "1"}}`},
		{"missing text", `{"data": {"senderPhoneNumber": "1", "content": {}}}`},
		{"text not a string", `{"data": {"senderPhoneNumber": "1", "content": {"text": {"body": "hi"}}}}`},
		{"content not an object", `{"data": {"senderPhoneNumber": "1", "content": "hi"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEvent([]byte(tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if !IsMalformedEvent(err) {
				t.Errorf("expected malformed event error, got %T: %v", err, err)
			}
		})
	}
}

// --- CommandFilter tests ---

func TestCommandFilterExtractsPrompt(t *testing.T) {
	f := NewCommandFilter(relayConfig(config.PolicyIgnore))
	tests := []struct {
		text string
		want string
	}{
		{"Cyber Genie, what is 2+2?", "what is 2+2?"},
		{"cyber genie,   hello", "hello"},
		{"CYBER GENIE,Tell Me A Joke", "Tell Me A Joke"},
		{"cYbEr GeNiE, keep  internal   spacing ", "keep  internal   spacing"},
	}
	for _, tt := range tests {
		d := f.Evaluate(tt.text)
		if d.Action != ActionComplete {
			t.Errorf("Evaluate(%q): expected ActionComplete, got %v", tt.text, d.Action)
			continue
		}
		if d.Prompt != tt.want {
			t.Errorf("Evaluate(%q) prompt = %q, want %q", tt.text, d.Prompt, tt.want)
		}
	}
}

func TestCommandFilterIneligibleIgnore(t *testing.T) {
	f := NewCommandFilter(relayConfig(config.PolicyIgnore))
	for _, text := range []string{"hello", "genie, hi", "cyber genie hi", "", "Cyber Genie,", "cyber genie,   "} {
		if d := f.Evaluate(text); d.Action != ActionIgnore {
			t.Errorf("Evaluate(%q): expected ActionIgnore, got %v", text, d.Action)
		}
	}
}

func TestCommandFilterIneligibleInstruct(t *testing.T) {
	f := NewCommandFilter(relayConfig(config.PolicyInstruct))
	for i := 0; i < 3; i++ {
		d := f.Evaluate("what is 2+2?")
		if d.Action != ActionInstruct {
			t.Fatalf("expected ActionInstruct, got %v", d.Action)
		}
		if d.Reply != config.DefaultInstructionText {
			t.Errorf("expected instruction text, got %q", d.Reply)
		}
	}
}

func TestCommandFilterCustomTrigger(t *testing.T) {
	cfg := relayConfig(config.PolicyIgnore)
	cfg.TriggerPhrase = "Génie:"
	f := NewCommandFilter(cfg)
	d := f.Evaluate("GÉNIE: bonjour")
	if d.Action != ActionComplete || d.Prompt != "bonjour" {
		t.Errorf("expected unicode case-insensitive match, got %+v", d)
	}
}

// --- CompletionClient tests ---

func TestCompletionClientSendsPromptAsSoleUserMessage(t *testing.T) {
	provider := &stubProvider{resp: &llm.CompletionResponse{Content: "  4  "}}
	c := NewCompletionClient(CompletionConfig{
		Provider:     provider,
		Model:        "gpt-4o-mini",
		MaxTokens:    100,
		Timeout:      time.Second,
		FallbackText: "fallback",
		Logger:       testLogger(),
	})

	got := c.Complete(context.Background(), "what is 2+2?")
	if got != "4" {
		t.Errorf("expected '4', got %q", got)
	}
	if provider.callCount() != 1 {
		t.Fatalf("expected 1 call, got %d", provider.callCount())
	}
	req := provider.calls[0]
	if len(req.Messages) != 1 || req.Messages[0].Role != llm.RoleUser || req.Messages[0].Content != "what is 2+2?" {
		t.Errorf("unexpected messages %+v", req.Messages)
	}
	if req.Model != "gpt-4o-mini" || req.MaxTokens != 100 {
		t.Errorf("expected fixed model parameters, got model=%q max_tokens=%d", req.Model, req.MaxTokens)
	}
}

func TestCompletionClientFallback(t *testing.T) {
	tests := []struct {
		name     string
		provider *stubProvider
	}{
		{"provider error", &stubProvider{err: errors.New("connection refused")}},
		{"empty content", &stubProvider{resp: &llm.CompletionResponse{Content: "   "}}},
		{"timeout", &stubProvider{delay: time.Second}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := metrics.NewRelay(metrics.NewCollector())
			c := NewCompletionClient(CompletionConfig{
				Provider:     tt.provider,
				Timeout:      50 * time.Millisecond,
				FallbackText: config.DefaultFallbackText,
				Logger:       testLogger(),
				Metrics:      m,
			})
			got := c.Complete(context.Background(), "hello")
			if got != config.DefaultFallbackText {
				t.Errorf("expected fallback text, got %q", got)
			}
			if m.CompletionFailures.Value() != 1 {
				t.Errorf("expected 1 completion failure, got %d", m.CompletionFailures.Value())
			}
		})
	}
}

func TestCompletionFailedError(t *testing.T) {
	err := completionFailed(errors.New("boom"), "openai")
	if !IsCompletionFailure(err) {
		t.Errorf("expected completion failure, got %T", err)
	}
	if IsMalformedEvent(err) {
		t.Error("completion failure must not be reported as malformed event")
	}
}

// --- Processor tests ---

func TestProcessorIgnoreReturnsNil(t *testing.T) {
	provider := &stubProvider{}
	p := NewProcessor(NewCommandFilter(relayConfig(config.PolicyIgnore)),
		NewCompletionClient(CompletionConfig{Provider: provider, FallbackText: "f", Logger: testLogger()}))

	resp, err := p.HandleMessage(context.Background(), IncomingMessage{SenderID: "1", Text: "hello"})
	if err != nil {
		t.Fatal(err)
	}
	if resp != nil {
		t.Errorf("expected no reply, got %+v", resp)
	}
	if provider.callCount() != 0 {
		t.Errorf("completion should not be called for ineligible messages")
	}
}

func TestProcessorReplyAddressedToSender(t *testing.T) {
	provider := &stubProvider{resp: &llm.CompletionResponse{Content: "Paris"}}
	p := NewProcessor(NewCommandFilter(relayConfig(config.PolicyIgnore)),
		NewCompletionClient(CompletionConfig{Provider: provider, FallbackText: "f", Logger: testLogger()}))

	resp, err := p.HandleMessage(context.Background(), IncomingMessage{SenderID: "91", Text: "Cyber Genie, capital of France?"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.RecipientID != "91" || resp.Text != "Paris" || resp.Kind != ReplyCompletion {
		t.Errorf("unexpected reply %+v", resp)
	}
	if provider.lastPrompt() != "capital of France?" {
		t.Errorf("unexpected prompt %q", provider.lastPrompt())
	}
}

// --- Webhook (end-to-end) tests ---

func TestWebhookRepliesWithCompletion(t *testing.T) {
	h := newHarness(config.PolicyIgnore)
	h.provider.resp = &llm.CompletionResponse{Content: "4"}

	w := h.post(t, event("919812345678", "Cyber Genie, what is 2+2?"))
	assertAcknowledged(t, w)

	if h.provider.lastPrompt() != "what is 2+2?" {
		t.Errorf("expected prompt 'what is 2+2?', got %q", h.provider.lastPrompt())
	}
	sent := h.sender.calls()
	if len(sent) != 1 {
		t.Fatalf("expected exactly 1 dispatch, got %d", len(sent))
	}
	if sent[0].To != "919812345678" || sent[0].Text != "4" {
		t.Errorf("unexpected dispatch %+v", sent[0])
	}
	if h.metrics.Outcome(string(OutcomeReplied)).Value() != 1 {
		t.Errorf("expected replied outcome to be counted")
	}
	if h.metrics.WebhooksReceived.Value() != 1 {
		t.Errorf("expected 1 webhook counted, got %d", h.metrics.WebhooksReceived.Value())
	}
}

func TestWebhookMissingFieldsNoDispatch(t *testing.T) {
	bodies := []string{
		`{"data": {"content": {"text": "Cyber Genie, hi"}}}`,
		`{"data": {"senderPhoneNumber": "919812345678"}}`,
		`{}`,
		`garbage`,
		``,
	}
	for _, body := range bodies {
		h := newHarness(config.PolicyInstruct)
		w := h.post(t, body)
		assertAcknowledged(t, w)
		if n := len(h.sender.calls()); n != 0 {
			t.Errorf("body %q: expected no dispatch, got %d", body, n)
		}
		if h.provider.callCount() != 0 {
			t.Errorf("body %q: expected no completion call", body)
		}
		if h.metrics.Outcome(string(OutcomeMalformed)).Value() != 1 {
			t.Errorf("body %q: expected malformed outcome", body)
		}
	}
}

func TestWebhookIneligibleIgnorePolicy(t *testing.T) {
	h := newHarness(config.PolicyIgnore)
	for i := 0; i < 3; i++ {
		assertAcknowledged(t, h.post(t, event("1", "what is 2+2?")))
	}
	if n := len(h.sender.calls()); n != 0 {
		t.Errorf("expected no dispatch under ignore policy, got %d", n)
	}
	if h.provider.callCount() != 0 {
		t.Errorf("expected no completion calls")
	}
}

func TestWebhookIneligibleInstructPolicy(t *testing.T) {
	h := newHarness(config.PolicyInstruct)
	for i := 0; i < 3; i++ {
		assertAcknowledged(t, h.post(t, event("1", "what is 2+2?")))
	}
	sent := h.sender.calls()
	if len(sent) != 3 {
		t.Fatalf("expected one instruction per message, got %d", len(sent))
	}
	for _, s := range sent {
		if s.Text != config.DefaultInstructionText {
			t.Errorf("expected instruction text, got %q", s.Text)
		}
	}
	if h.provider.callCount() != 0 {
		t.Errorf("expected no completion calls")
	}
	if h.metrics.Outcome(string(OutcomeInstructed)).Value() != 3 {
		t.Errorf("expected 3 instructed outcomes")
	}
}

func TestWebhookCompletionFailureSendsFallback(t *testing.T) {
	h := newHarness(config.PolicyIgnore)
	h.provider.err = errors.New("503 service unavailable")

	w := h.post(t, event("1", "cyber genie, hello"))
	assertAcknowledged(t, w)

	sent := h.sender.calls()
	if len(sent) != 1 {
		t.Fatalf("expected 1 dispatch, got %d", len(sent))
	}
	if sent[0].Text != config.DefaultFallbackText {
		t.Errorf("expected fallback text, got %q", sent[0].Text)
	}
}

func TestWebhookDispatchErrorStillAcknowledged(t *testing.T) {
	h := newHarness(config.PolicyIgnore)
	h.sender.err = errors.New("dial tcp: connection refused")

	w := h.post(t, event("1", "cyber genie, hello"))
	assertAcknowledged(t, w)

	if len(h.sender.calls()) != 1 {
		t.Errorf("expected exactly one dispatch attempt (no retries)")
	}
	if h.metrics.DispatchFailures.Value() != 1 {
		t.Errorf("expected dispatch failure to be counted")
	}
	if h.metrics.Outcome(string(OutcomeDispatchFailed)).Value() != 1 {
		t.Errorf("expected dispatch_failed outcome")
	}
}

func TestWebhookPanicStillAcknowledged(t *testing.T) {
	h := newHarness(config.PolicyIgnore)
	h.sender.panic = true

	w := h.post(t, event("1", "cyber genie, hello"))
	assertAcknowledged(t, w)

	if h.metrics.Outcome(string(OutcomeFailed)).Value() != 1 {
		t.Errorf("expected failed outcome after panic")
	}
}

func TestWebhookAgainstMessagingAPI(t *testing.T) {
	var mu sync.Mutex
	var payloads []map[string]string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p map[string]string
		json.NewDecoder(r.Body).Decode(&p)
		mu.Lock()
		payloads = append(payloads, p)
		mu.Unlock()
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer api.Close()

	dispatcher := messaging.NewDispatcher(messaging.Config{
		APIURL:        api.URL,
		AccessToken:   "token",
		PhoneNumberID: "phone-1",
		Timeout:       time.Second,
		Logger:        testLogger(),
	})
	provider := &stubProvider{resp: &llm.CompletionResponse{Content: "hi back"}}
	gw := NewGateway(GatewayConfig{
		Handler: NewProcessor(NewCommandFilter(relayConfig(config.PolicyIgnore)),
			NewCompletionClient(CompletionConfig{Provider: provider, FallbackText: "f", Logger: testLogger()})),
		Sender: dispatcher,
		Logger: testLogger(),
	})
	handler := NewWebhookHandler(gw, testLogger(), nil)

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(event("4477", "Cyber Genie, hi")))
	w := httptest.NewRecorder()
	handler.HandleWebhook(w, req)
	assertAcknowledged(t, w)

	mu.Lock()
	defer mu.Unlock()
	if len(payloads) != 1 {
		t.Fatalf("expected 1 send call, got %d", len(payloads))
	}
	want := map[string]string{"to": "4477", "phoneNoId": "phone-1", "type": "text", "text": "hi back"}
	for k, v := range want {
		if payloads[0][k] != v {
			t.Errorf("payload[%s] = %q, want %q", k, payloads[0][k], v)
		}
	}
}

// --- Gateway tests ---

// failingHandler implements MessageHandler and always errors.
type failingHandler struct{}

func (failingHandler) HandleMessage(context.Context, IncomingMessage) (*OutgoingMessage, error) {
	return nil, errors.New("handler failure")
}

func TestGatewayHandlerErrorIsContained(t *testing.T) {
	sender := &recordingSender{}
	gw := NewGateway(GatewayConfig{Handler: failingHandler{}, Sender: sender, Logger: testLogger()})

	outcome := gw.Relay(context.Background(), []byte(event("1", "cyber genie, hi")))
	if outcome != OutcomeFailed {
		t.Errorf("expected failed outcome, got %s", outcome)
	}
	if len(sender.calls()) != 0 {
		t.Errorf("expected no dispatch")
	}
}

func TestGatewayOutcomes(t *testing.T) {
	tests := []struct {
		name   string
		policy config.IneligiblePolicy
		body   string
		want   Outcome
	}{
		{"malformed", config.PolicyIgnore, `{}`, OutcomeMalformed},
		{"ignored", config.PolicyIgnore, event("1", "hi"), OutcomeIgnored},
		{"instructed", config.PolicyInstruct, event("1", "hi"), OutcomeInstructed},
		{"replied", config.PolicyIgnore, event("1", "cyber genie, hi"), OutcomeReplied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(tt.policy)
			if got := h.gateway.Relay(context.Background(), []byte(tt.body)); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestWebhookReplyOutlivesCallerDisconnect(t *testing.T) {
	var apiCalls atomic.Int32
	var gotText atomic.Value
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p map[string]string
		json.NewDecoder(r.Body).Decode(&p)
		gotText.Store(p["text"])
		apiCalls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer api.Close()

	m := metrics.NewRelay(metrics.NewCollector())
	provider := &stubProvider{
		resp:  &llm.CompletionResponse{Content: "slow answer"},
		delay: 300 * time.Millisecond,
	}
	gw := NewGateway(GatewayConfig{
		Handler: NewProcessor(NewCommandFilter(relayConfig(config.PolicyIgnore)),
			NewCompletionClient(CompletionConfig{
				Provider:     provider,
				Timeout:      5 * time.Second,
				FallbackText: config.DefaultFallbackText,
				Logger:       testLogger(),
				Metrics:      m,
			})),
		Sender: messaging.NewDispatcher(messaging.Config{
			APIURL:        api.URL,
			AccessToken:   "token",
			PhoneNumberID: "phone-1",
			Timeout:       5 * time.Second,
			Logger:        testLogger(),
		}),
		Logger:  testLogger(),
		Metrics: m,
	})
	router := chi.NewRouter()
	RegisterRoutes(router, NewWebhookHandler(gw, testLogger(), m))
	srv := httptest.NewServer(router)
	defer srv.Close()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	resp, err := client.Post(srv.URL+"/webhook", "application/json", strings.NewReader(event("1", "cyber genie, hello")))
	if err == nil {
		resp.Body.Close()
		t.Fatal("expected the caller to give up before the completion finished")
	}

	deadline := time.Now().Add(3 * time.Second)
	for apiCalls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	// Allow any stray second send to show up.
	time.Sleep(50 * time.Millisecond)

	if n := apiCalls.Load(); n != 1 {
		t.Fatalf("expected exactly 1 messaging API call after disconnect, got %d", n)
	}
	if text, _ := gotText.Load().(string); text != "slow answer" {
		t.Errorf("expected the completion text to be dispatched, got %q", text)
	}
	if m.CompletionFailures.Value() != 0 {
		t.Errorf("caller disconnect must not count as a completion failure")
	}
}

// failingReader fails every read.
type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestWebhookUnreadableBodyRecordsOutcome(t *testing.T) {
	h := newHarness(config.PolicyIgnore)

	req := httptest.NewRequest(http.MethodPost, "/webhook", failingReader{})
	w := httptest.NewRecorder()
	h.handler.HandleWebhook(w, req)
	assertAcknowledged(t, w)

	if h.metrics.WebhooksReceived.Value() != 1 {
		t.Errorf("expected 1 webhook counted, got %d", h.metrics.WebhooksReceived.Value())
	}
	if h.metrics.Outcome(string(OutcomeMalformed)).Value() != 1 {
		t.Errorf("expected unreadable body to be recorded as malformed")
	}
	if len(h.sender.calls()) != 0 {
		t.Errorf("expected no dispatch")
	}
}
