package main

import (
	"fmt"
	"math/rand"
	"net/http"
	"sync/atomic"
	"time"
)

// vendorMock imitates the four vendor APIs behind the default providers.
type vendorMock struct {
	latency  time.Duration
	failRate int
	hits     atomic.Int64
	failures atomic.Int64
}

var vendorReplies = map[string][]byte{
	"/openai/chat/completions": []byte(`{"id":"bench-1","choices":[{"message":{"role":"assistant","content":"Hello from openai"}}]}`),
	"/gemini/models/":          []byte(`{"candidates":[{"content":{"parts":[{"text":"Hello"},{"text":"from gemini"}]}}]}`),
	"/anthropic/messages":      []byte(`{"id":"msg_1","content":[{"type":"text","text":"Hello from claude"}],"stop_reason":"end_turn"}`),
	"/cohere/chat":             []byte(`{"id":"c1","message":{"role":"assistant","content":[{"type":"text","text":"Hello from cohere"}]}}`),
}

func (m *vendorMock) handler() http.Handler {
	mux := http.NewServeMux()
	for path, body := range vendorReplies {
		mux.HandleFunc(path, m.reply(body))
	}
	mux.HandleFunc("/", http.NotFound)
	return mux
}

func (m *vendorMock) reply(body []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.hits.Add(1)
		select {
		case <-time.After(m.latency):
		case <-r.Context().Done():
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if m.failRate > 0 && rand.Intn(100) < m.failRate {
			m.failures.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":{"message":"mock upstream failure"}}`))
			return
		}
		_, _ = w.Write(body)
	}
}

func (m *vendorMock) serve(port int) {
	_ = http.ListenAndServe(fmt.Sprintf(":%d", port), m.handler())
}
