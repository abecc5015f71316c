// Package sms delivers text messages through the NAVER Cloud Platform SENS
// gateway. Requests are signed with the API Gateway v2 HMAC signature.
package sms
