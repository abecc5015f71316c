package sms

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shandysiswandi/yogapass/internal/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testServiceID = "ncp:sms:kr:123:yoga"

func newTestNCP(t *testing.T, url string, timeout time.Duration) *NCP {
	t.Helper()

	c, err := NewNCP(NCPConfig{
		BaseURL:   url + "/",
		ServiceID: testServiceID,
		AccessKey: "AKIDEXAMPLE",
		SecretKey: "SECRETEXAMPLE",
		Sender:    "0212345678",
		Timeout:   timeout,
		Clock:     clock.NewManual(time.UnixMilli(1700000000000)),
	})
	require.NoError(t, err)
	return c
}

func TestNewNCP_RequiresCredentials(t *testing.T) {
	_, err := NewNCP(NCPConfig{ServiceID: "svc", Sender: "0212345678"})
	require.ErrorIs(t, err, ErrConfig)
	assert.Contains(t, err.Error(), "access_key, secret_key")

	c, err := NewNCP(NCPConfig{ServiceID: "svc", AccessKey: "a", SecretKey: "s", Sender: "1"})
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, c.baseURL)
	assert.Equal(t, defaultTimeout, c.client.Timeout)
}

func TestNCP_Send_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/sms/v2/services/"+testServiceID+"/messages", r.URL.Path)
		assert.Equal(t, "application/json; charset=utf-8", r.Header.Get("Content-Type"))
		assert.Equal(t, "1700000000000", r.Header.Get("x-ncp-apigw-timestamp"))
		assert.Equal(t, "AKIDEXAMPLE", r.Header.Get("x-ncp-iam-access-key"))
		assert.Equal(t, "4jv2DavwdU9dKNrLkrfV//6OFehhnMp94VPm4f8r7rc=", r.Header.Get("x-ncp-apigw-signature-v2"))

		var body ncpRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, ncpRequest{
			Type:        "SMS",
			ContentType: "COMM",
			CountryCode: "82",
			From:        "0212345678",
			Content:     "[YogaPass] 123456",
			Messages:    []ncpMessage{{To: "01012345678"}},
		}, body)

		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"requestId":"req-1","requestTime":"2024-01-01T00:00:00.000","statusCode":"202","statusName":"success"}`))
	}))
	defer srv.Close()

	rcpt, err := newTestNCP(t, srv.URL, time.Second).Send(context.Background(), "01012345678", "[YogaPass] 123456")
	require.NoError(t, err)
	assert.Equal(t, Receipt{Success: true, ProviderStatus: "success", Message: "202", RequestID: "req-1"}, rcpt)
}

func TestNCP_Send_Failures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantReason Reason
		wantStatus string
	}{
		{
			name:       "2xx with failed status",
			status:     http.StatusAccepted,
			body:       `{"requestId":"r","statusCode":"202","statusName":"fail"}`,
			wantReason: ReasonRejected,
			wantStatus: "202 fail",
		},
		{
			name:       "auth failure envelope",
			status:     http.StatusUnauthorized,
			body:       `{"error":{"errorCode":"200","message":"Authentication Failed","details":"Invalid authentication information."}}`,
			wantReason: ReasonRejected,
			wantStatus: "200 Authentication Failed",
		},
		{
			name:       "non json error",
			status:     http.StatusBadGateway,
			body:       `<html>bad gateway</html>`,
			wantReason: ReasonRejected,
			wantStatus: "502 Bad Gateway",
		},
		{
			name:       "2xx with garbage",
			status:     http.StatusOK,
			body:       `not json`,
			wantReason: ReasonMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newTestNCP(t, srv.URL, time.Second).Send(context.Background(), "01012345678", "hi")
			require.ErrorIs(t, err, ErrDeliveryFailed)

			var derr *DeliveryError
			require.ErrorAs(t, err, &derr)
			assert.Equal(t, tt.wantReason, derr.Reason)
			assert.False(t, derr.Retryable())
			if tt.wantStatus != "" {
				assert.Equal(t, tt.wantStatus, derr.Status)
			}
		})
	}
}

func TestNCP_Send_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := newTestNCP(t, srv.URL, 50*time.Millisecond).Send(context.Background(), "01012345678", "hi")

	var derr *DeliveryError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, ReasonTimeout, derr.Reason)
	assert.True(t, derr.Retryable())
}

func TestNCP_Send_Network(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestNCP(t, url, time.Second).Send(context.Background(), "01012345678", "hi")

	var derr *DeliveryError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, ReasonNetwork, derr.Reason)
	assert.True(t, derr.Retryable())
}

func TestNCP_Send_OneCallPerInvocation(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestNCP(t, srv.URL, time.Second).Send(context.Background(), "01012345678", "hi")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDeliveryError(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := &DeliveryError{Reason: ReasonRejected, Status: "403 Forbidden", Err: cause}

	assert.ErrorIs(t, err, ErrDeliveryFailed)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "sms: delivery failed (rejected): 403 Forbidden: dial tcp: refused", err.Error())
}
