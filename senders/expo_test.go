package senders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fiffu/vitalwatch/config"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestExpo(t *testing.T, handler http.HandlerFunc) *expoSender {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.Expo.PushURL = srv.URL
	cfg.Expo.AccessToken = "expo-access"
	return &expoSender{base{zap.NewNop(), cfg, http.DefaultTransport}}
}

// TestExpoSender_Send checks the request shape and that the ticket id is returned.
func TestExpoSender_Send(t *testing.T) {
	t.Parallel()

	var (
		gotMethod   string
		gotAuth     string
		gotMessages []expoMessage
	)
	sender := newTestExpo(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotMessages)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"status":"ok","id":"ticket-1"}]}`))
	})

	id, err := sender.Send(context.Background(), "ExponentPushToken[abc]", "Atenção!", "BPM elevado detectado para Ana: 121")
	require.NoError(t, err)
	require.Equal(t, "ticket-1", id)

	require.Equal(t, http.MethodPost, gotMethod)
	require.Equal(t, "Bearer expo-access", gotAuth)
	require.Equal(t, []expoMessage{{
		To:    "ExponentPushToken[abc]",
		Sound: "default",
		Title: "Atenção!",
		Body:  "BPM elevado detectado para Ana: 121",
	}}, gotMessages)
}

// TestExpoSender_Failures covers error tickets, request errors and HTTP failures.
func TestExpoSender_Failures(t *testing.T) {
	t.Parallel()

	cases := map[string]http.HandlerFunc{
		"error ticket": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data":[{"status":"error","message":"not registered","details":{"error":"DeviceNotRegistered"}}]}`))
		},
		"request errors": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"errors":[{"code":"VALIDATION_ERROR","message":"bad token"}]}`))
		},
		"no tickets": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data":[]}`))
		},
		"server error": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
	}
	for name, handler := range cases {
		sender := newTestExpo(t, handler)
		_, err := sender.Send(context.Background(), "ExponentPushToken[abc]", "t", "b")
		require.Error(t, err, name)
	}
}

// TestAlertFormat checks the fixed alert template.
func TestAlertFormat(t *testing.T) {
	t.Parallel()

	af := &AlertFormat{SubjectName: "Maria", BPM: 135}
	require.Equal(t, "Atenção!", af.Title())
	require.Equal(t, "BPM elevado detectado para Maria: 135", af.Body())
}

// TestRegistry_Supports checks the platform hints the registry can reach.
func TestRegistry_Supports(t *testing.T) {
	t.Parallel()

	reg := NewSenderRegistry(nil, zap.NewNop(), &config.Config{}, http.DefaultTransport)
	require.True(t, reg.Supports(PlatformAndroid))
	require.True(t, reg.Supports(PlatformIOS))
	require.True(t, reg.Supports(PlatformEmail))
	require.False(t, reg.Supports("windows"))
	require.Same(t, reg[PlatformAndroid], reg[PlatformIOS])
}
