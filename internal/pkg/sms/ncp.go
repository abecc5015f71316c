package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shandysiswandi/yogapass/internal/pkg/clock"
	"github.com/shandysiswandi/yogapass/internal/pkg/instrument"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

const (
	// DefaultBaseURL is the public SENS API gateway.
	DefaultBaseURL = "https://sens.apigw.ntruss.com"

	defaultTimeout  = 5 * time.Second
	maxResponseBody = 64 * 1024
	countryCode     = "82"
	statusSuccess   = "success"
)

// Sender delivers one text message to one recipient.
type Sender interface {
	Send(ctx context.Context, to, content string) (Receipt, error)
}

// Receipt is the gateway's answer to a send. It is only returned on success.
type Receipt struct {
	Success        bool
	ProviderStatus string
	Message        string
	RequestID      string
}

// NCPConfig configures the SENS client.
type NCPConfig struct {
	BaseURL   string
	ServiceID string
	AccessKey string
	SecretKey string
	// Sender is the pre-registered calling number shown to the recipient.
	Sender string
	// Timeout bounds the whole HTTP exchange. Defaults to 5s.
	Timeout time.Duration

	// HTTPClient replaces the default client. Its Timeout is left untouched.
	HTTPClient *http.Client
	Clock      clock.Clocker
	Instrument instrument.Instrumentation
}

// NCP sends SMS through NAVER Cloud SENS v2.
type NCP struct {
	baseURL   string
	path      string
	accessKey string
	secretKey string
	sender    string

	client *http.Client
	clock  clock.Clocker
	ins    instrument.Instrumentation
	sent   metric.Int64Counter
}

type ncpMessage struct {
	To string `json:"to"`
}

type ncpRequest struct {
	Type        string       `json:"type"`
	ContentType string       `json:"contentType"`
	CountryCode string       `json:"countryCode"`
	From        string       `json:"from"`
	Content     string       `json:"content"`
	Messages    []ncpMessage `json:"messages"`
}

type ncpResponse struct {
	RequestID   string `json:"requestId"`
	RequestTime string `json:"requestTime"`
	StatusCode  string `json:"statusCode"`
	StatusName  string `json:"statusName"`
	Error       *struct {
		ErrorCode string `json:"errorCode"`
		Message   string `json:"message"`
		Details   string `json:"details"`
	} `json:"error"`
}

// NewNCP validates credentials and builds the client.
func NewNCP(cfg NCPConfig) (*NCP, error) {
	var missing []string
	for _, f := range [][2]string{
		{"service_id", cfg.ServiceID},
		{"access_key", cfg.AccessKey},
		{"secret_key", cfg.SecretKey},
		{"sender", cfg.Sender},
	} {
		if strings.TrimSpace(f[1]) == "" {
			missing = append(missing, f[0])
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrConfig, strings.Join(missing, ", "))
	}

	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}

	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}

	ins := cfg.Instrument
	if ins == nil {
		ins = instrument.NewNoop()
	}

	sent, err := ins.Meter("sms.ncp").Int64Counter("sms_send_total", metric.WithDescription("SMS send attempts by result"))
	if err != nil {
		slog.Error("failed to create sms send counter", "error", err)
	}

	return &NCP{
		baseURL:   base,
		path:      "/sms/v2/services/" + cfg.ServiceID + "/messages",
		accessKey: cfg.AccessKey,
		secretKey: cfg.SecretKey,
		sender:    cfg.Sender,
		client:    client,
		clock:     clk,
		ins:       ins,
		sent:      sent,
	}, nil
}

// Send posts one message. It makes exactly one HTTP call and never retries.
// Every failure is a *DeliveryError.
func (n *NCP) Send(ctx context.Context, to, content string) (Receipt, error) {
	ctx, span := n.ins.Tracer("sms.ncp").Start(ctx, "sms.Send")
	defer span.End()

	rcpt, err := n.send(ctx, to, content)

	result := statusSuccess
	if err != nil {
		var derr *DeliveryError
		if errors.As(err, &derr) {
			result = string(derr.Reason)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if n.sent != nil {
		n.sent.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
	}

	return rcpt, err
}

func (n *NCP) send(ctx context.Context, to, content string) (Receipt, error) {
	raw, err := json.Marshal(ncpRequest{
		Type:        "SMS",
		ContentType: "COMM",
		CountryCode: countryCode,
		From:        n.sender,
		Content:     content,
		Messages:    []ncpMessage{{To: to}},
	})
	if err != nil {
		return Receipt{}, &DeliveryError{Reason: ReasonMalformed, Err: err}
	}

	ts := strconv.FormatInt(n.clock.Now().UnixMilli(), 10)
	sig, err := Sign(http.MethodPost, n.path, ts, n.accessKey, n.secretKey)
	if err != nil {
		return Receipt{}, &DeliveryError{Reason: ReasonRejected, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.baseURL+n.path, bytes.NewReader(raw))
	if err != nil {
		return Receipt{}, &DeliveryError{Reason: ReasonNetwork, Err: err}
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("x-ncp-apigw-timestamp", ts)
	req.Header.Set("x-ncp-iam-access-key", n.accessKey)
	req.Header.Set("x-ncp-apigw-signature-v2", sig)

	resp, err := n.client.Do(req)
	if err != nil {
		return Receipt{}, &DeliveryError{Reason: transportReason(err), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return Receipt{}, &DeliveryError{Reason: transportReason(err), Err: err}
	}

	var out ncpResponse
	decodeErr := json.Unmarshal(body, &out)
	ok := resp.StatusCode >= 200 && resp.StatusCode < 300

	switch {
	case ok && decodeErr != nil:
		return Receipt{}, &DeliveryError{Reason: ReasonMalformed, Status: resp.Status, Err: decodeErr}
	case !ok:
		return Receipt{}, &DeliveryError{Reason: ReasonRejected, Status: rejectionStatus(resp, out, decodeErr)}
	case out.StatusName != statusSuccess:
		return Receipt{}, &DeliveryError{Reason: ReasonRejected, Status: strings.TrimSpace(out.StatusCode + " " + out.StatusName)}
	}

	return Receipt{
		Success:        true,
		ProviderStatus: out.StatusName,
		Message:        out.StatusCode,
		RequestID:      out.RequestID,
	}, nil
}

func rejectionStatus(resp *http.Response, out ncpResponse, decodeErr error) string {
	if decodeErr == nil && out.Error != nil && out.Error.Message != "" {
		return out.Error.ErrorCode + " " + out.Error.Message
	}
	if decodeErr == nil && out.StatusName != "" {
		return out.StatusCode + " " + out.StatusName
	}
	return resp.Status
}

func transportReason(err error) Reason {
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return ReasonTimeout
	}
	return ReasonNetwork
}
