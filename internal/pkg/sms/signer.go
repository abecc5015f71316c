package sms

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/shandysiswandi/yogapass/internal/pkg/hash"
)

// ErrConfig reports missing or unusable gateway credentials.
var ErrConfig = errors.New("sms: invalid gateway configuration")

// Sign returns the x-ncp-apigw-signature-v2 value: the base64 HMAC-SHA256 of
// "METHOD PATH\nTIMESTAMP\nACCESS_KEY" keyed by secretKey. path must include
// the query string when there is one.
func Sign(method, path, timestamp, accessKey, secretKey string) (string, error) {
	if accessKey == "" || secretKey == "" {
		return "", fmt.Errorf("%w: access key and secret key are required", ErrConfig)
	}

	msg := method + " " + path + "\n" + timestamp + "\n" + accessKey
	sum := hash.NewHMACSHA256(secretKey).Sum([]byte(msg))

	return base64.StdEncoding.EncodeToString(sum), nil
}
