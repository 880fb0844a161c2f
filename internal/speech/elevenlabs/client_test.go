package elevenlabs

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"clipforge/internal/speech"
	"clipforge/pkg/httputil"
)

func testServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(Config{
		APIKey:     "test-key",
		Model:      "eleven_flash_v2_5",
		Stability:  0.5,
		Similarity: 0.5,
	}, withBaseURL(server.URL), withHTTPClient(server.Client(), httputil.RetryConfig{
		MaxRetries:   1,
		InitialDelay: time.Millisecond,
		MaxDelay:     time.Millisecond,
		Multiplier:   1.0,
	}))

	return server, client
}

func alignmentFor(text string) *alignment {
	a := &alignment{}
	start := 0.0
	for _, r := range text {
		a.Characters = append(a.Characters, string(r))
		a.CharacterStartTimes = append(a.CharacterStartTimes, start)
		a.CharacterEndTimes = append(a.CharacterEndTimes, start+0.1)
		start += 0.1
	}
	return a
}

func TestSynthesize(t *testing.T) {
	audio := []byte("fake-mp3-bytes")
	text := "hello world"

	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("xi-api-key"); got != "test-key" {
			t.Errorf("xi-api-key = %q, want test-key", got)
		}
		if !strings.Contains(r.URL.Path, "/text-to-speech/voice-1/with-timestamps") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if payload["text"] != text {
			t.Errorf("text = %v", payload["text"])
		}

		_ = json.NewEncoder(w).Encode(timestampResponse{
			AudioBase64: base64.StdEncoding.EncodeToString(audio),
			Alignment:   alignmentFor(text),
		})
	})

	result, err := client.Synthesize(context.Background(), text, speech.VoiceConfig{ID: "voice-1"})
	if err != nil {
		t.Fatalf("Synthesize() error: %v", err)
	}

	if string(result.Audio) != string(audio) {
		t.Error("audio bytes do not round-trip")
	}
	if len(result.Timings) != 2 {
		t.Fatalf("got %d timings, want 2", len(result.Timings))
	}
	if result.Timings[0].Word != "hello" || result.Timings[1].Word != "world" {
		t.Errorf("timings = %+v", result.Timings)
	}
}

func TestSynthesizeServerError(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":{"status":"quota_exceeded"}}`, http.StatusTooManyRequests)
	})

	_, err := client.Synthesize(context.Background(), "text", speech.VoiceConfig{ID: "v"})
	if err == nil {
		t.Fatal("expected error on 429")
	}
	if !strings.Contains(err.Error(), "quota_exceeded") {
		t.Errorf("error should carry the provider detail: %v", err)
	}
}

func TestSynthesizeMissingAlignmentFallsBack(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(timestampResponse{
			AudioBase64: base64.StdEncoding.EncodeToString(make([]byte, 16000)),
		})
	})

	result, err := client.Synthesize(context.Background(), "one two three", speech.VoiceConfig{ID: "v"})
	if err != nil {
		t.Fatalf("Synthesize() error: %v", err)
	}
	if len(result.Timings) != 3 {
		t.Errorf("fallback timings = %d, want 3", len(result.Timings))
	}
}
