package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatewayGenerateRequestShape(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &gotBody))
		w.Write([]byte(`{"response":"好的，以下是推薦。"}`))
	}))
	defer srv.Close()

	g := NewGatewayModel(srv.URL, "secret-token", "gpt-oss:120b")
	msg, err := g.Generate(context.Background(), []*schema.Message{
		schema.SystemMessage("你是美食推薦助手"),
		schema.UserMessage("想吃牛肉湯"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, "gpt-oss:120b", gotBody["model"])
	assert.Equal(t, "你是美食推薦助手\n\n想吃牛肉湯", gotBody["prompt"])
	assert.Equal(t, false, gotBody["stream"])
	assert.Equal(t, "好的，以下是推薦。", msg.Content)
	assert.Equal(t, schema.Assistant, msg.Role)
}

func TestGatewayGenerateTextFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"text":"替代欄位的回覆"}`))
	}))
	defer srv.Close()

	g := NewGatewayModel(srv.URL, "", "gpt-oss:120b")
	msg, err := g.Generate(context.Background(), []*schema.Message{schema.UserMessage("hi")})
	require.NoError(t, err)
	assert.Equal(t, "替代欄位的回覆", msg.Content)
}

func TestGatewayGenerateNoAuthHeaderWithoutKey(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"response":"ok"}`))
	}))
	defer srv.Close()

	g := NewGatewayModel(srv.URL, "", "gpt-oss:120b")
	_, err := g.Generate(context.Background(), []*schema.Message{schema.UserMessage("hi")})
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestGatewayGenerateNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream busy"))
	}))
	defer srv.Close()

	g := NewGatewayModel(srv.URL, "k", "gpt-oss:120b")
	_, err := g.Generate(context.Background(), []*schema.Message{schema.UserMessage("hi")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestGatewayStreamDeliversSingleFrame(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"response":"一次到位"}`))
	}))
	defer srv.Close()

	g := NewGatewayModel(srv.URL, "", "gpt-oss:120b")
	reader, err := g.Stream(context.Background(), []*schema.Message{schema.UserMessage("hi")})
	require.NoError(t, err)
	defer reader.Close()

	frame, err := reader.Recv()
	require.NoError(t, err)
	assert.Equal(t, "一次到位", frame.Content)

	_, err = reader.Recv()
	assert.Equal(t, io.EOF, err)
}
