package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/schreiber-platform/schreiber-api/internal/dto"
)

func TestGrammarServiceForwardsFormAndReturnsBody(t *testing.T) {
	var gotText, gotLanguage string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotText = r.PostFormValue("text")
		gotLanguage = r.PostFormValue("language")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"matches": [{"message": "Possible typo"}]}`))
	}))
	defer upstream.Close()

	svc := NewGrammarService(upstream.URL, time.Second, zerolog.Nop())

	result, err := svc.Check(context.Background(), dto.GrammarCheckRequest{
		Text:     "Das ist ein Testt.",
		Language: "de-DE",
	})
	require.NoError(t, err)
	require.Equal(t, "Das ist ein Testt.", gotText)
	require.Equal(t, "de-DE", gotLanguage)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(result, &decoded))
	require.Contains(t, decoded, "matches")
}

func TestGrammarServiceDefaultsLanguage(t *testing.T) {
	var gotLanguage string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotLanguage = r.PostFormValue("language")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer upstream.Close()

	svc := NewGrammarService(upstream.URL, time.Second, zerolog.Nop())

	_, err := svc.Check(context.Background(), dto.GrammarCheckRequest{Text: "Hello"})
	require.NoError(t, err)
	require.Equal(t, defaultGrammarLanguage, gotLanguage)
}

func TestGrammarServiceUpstreamFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer upstream.Close()

	svc := NewGrammarService(upstream.URL, time.Second, zerolog.Nop())

	_, err := svc.Check(context.Background(), dto.GrammarCheckRequest{Text: "Hello"})
	require.ErrorIs(t, err, ErrGrammarUpstream)

	// An unreachable upstream surfaces the same sentinel.
	down := NewGrammarService("http://127.0.0.1:1", time.Second, zerolog.Nop())
	_, err = down.Check(context.Background(), dto.GrammarCheckRequest{Text: "Hello"})
	require.ErrorIs(t, err, ErrGrammarUpstream)
}
