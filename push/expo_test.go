package push

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpoGateway_SendOneRequestForAllTokens(t *testing.T) {
	var calls int32
	var got ExpoPushMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"status":"ok","id":"a"},{"status":"ok","id":"b"}]}`))
	}))
	defer srv.Close()

	badge := 3
	g := NewExpoGateway(srv.URL, "")
	res, err := g.Send(context.Background(), Message{
		Tokens: []string{"ExponentPushToken[a]", "ExponentPushToken[b]"},
		Title:  "Pickup accepted",
		Body:   "A driver accepted your pickup",
		Data:   map[string]interface{}{"pickupId": "p1"},
		Badge:  &badge,
	})

	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, 2, res.Sent)
	assert.Equal(t, 0, res.Failed)
	assert.Equal(t, []string{"ExponentPushToken[a]", "ExponentPushToken[b]"}, got.To)
	assert.Equal(t, "default", got.Sound)
	assert.Equal(t, 3, *got.Badge)
	assert.Equal(t, "p1", got.Data["pickupId"])
}

func TestExpoGateway_TicketErrorsAreReported(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"status":"ok","id":"a"},{"status":"error","message":"not registered","details":{"error":"DeviceNotRegistered"}}]}`))
	}))
	defer srv.Close()

	res, err := NewExpoGateway(srv.URL, "").Send(context.Background(), Message{
		Tokens: []string{"t1", "t2"},
		Body:   "hi",
	})

	require.NoError(t, err)
	assert.Equal(t, 1, res.Sent)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "t2", res.Errors[0].Token)
	assert.Equal(t, "DeviceNotRegistered", res.Errors[0].Reason)
}

func TestExpoGateway_Non2xxIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	res, err := NewExpoGateway(srv.URL, "").Send(context.Background(), Message{Tokens: []string{"t1"}, Body: "hi"})

	assert.Error(t, err)
	assert.Equal(t, 1, res.Failed)
}

func TestExpoGateway_AccessTokenIsSent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"status":"ok"}]}`))
	}))
	defer srv.Close()

	_, err := NewExpoGateway(srv.URL, "secret").Send(context.Background(), Message{Tokens: []string{"t1"}, Body: "hi"})
	assert.NoError(t, err)
}

func TestExpoGateway_NoTokensNoRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("gateway should not be called")
	}))
	defer srv.Close()

	res, err := NewExpoGateway(srv.URL, "").Send(context.Background(), Message{})
	assert.NoError(t, err)
	assert.Equal(t, Result{}, res)
}

func TestExpoGateway_BatchesAboveLimit(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		var msg ExpoPushMessage
		json.NewDecoder(r.Body).Decode(&msg)
		resp := ExpoPushResponse{}
		for range msg.To {
			resp.Data = append(resp.Data, ExpoPushTicket{Status: "ok"})
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	var tokens []string
	for i := 0; i < 150; i++ {
		tokens = append(tokens, fmt.Sprintf("t%d", i))
	}

	res, err := NewExpoGateway(srv.URL, "").Send(context.Background(), Message{Tokens: tokens, Body: "hi"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, 150, res.Sent)
}
