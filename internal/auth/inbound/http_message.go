package inbound

import (
	"github.com/shandysiswandi/yogapass/internal/pkg/i18n"
	"golang.org/x/text/language"
)

const (
	msgCodeSent          = "otp.code_sent"
	msgCodeSentAgain     = "otp.code_sent_again"
	msgConfirmed         = "otp.confirmed"
	msgRefreshed         = "session.refreshed"
	msgProfile           = "session.profile"
	msgInvalidPhone      = "error.invalid_phone"
	msgThrottled         = "error.throttled"
	msgDeliveryFailed    = "error.delivery_failed"
	msgNoActiveCode      = "error.no_active_code"
	msgCodeExpired       = "error.code_expired"
	msgCodeMismatch      = "error.code_mismatch"
	msgTooManyAttempts   = "error.too_many_attempts"
	msgUnregisteredPhone = "error.unregistered_phone"
)

// NewTranslator returns the Korean and English message catalog of the auth
// routes. Korean is served when Accept-Language matches neither.
func NewTranslator() (*i18n.Translator, error) {
	return i18n.New(language.Korean, map[language.Tag]i18n.Messages{
		language.Korean: {
			msgCodeSent:          "인증번호를 발송했습니다.",
			msgCodeSentAgain:     "인증번호를 이미 발송했습니다.",
			msgConfirmed:         "휴대폰 인증이 완료되었습니다.",
			msgRefreshed:         "세션이 갱신되었습니다.",
			msgProfile:           "회원 정보를 불러왔습니다.",
			msgInvalidPhone:      "올바른 휴대폰 번호를 입력해주세요.",
			msgThrottled:         "%d초 후에 다시 요청해주세요.",
			msgDeliveryFailed:    "인증번호 발송에 실패했습니다. 잠시 후 다시 시도해주세요.",
			msgNoActiveCode:      "유효한 인증번호가 없습니다. 인증번호를 다시 요청해주세요.",
			msgCodeExpired:       "인증번호가 만료되었습니다. 인증번호를 다시 요청해주세요.",
			msgCodeMismatch:      "인증번호가 일치하지 않습니다. (%d/%d)",
			msgTooManyAttempts:   "입력 가능 횟수를 초과했습니다. 인증번호를 다시 요청해주세요.",
			msgUnregisteredPhone: "등록된 회원 정보가 없습니다. 스튜디오에 문의해주세요.",
		},
		language.English: {
			msgCodeSent:          "A verification code has been sent.",
			msgCodeSentAgain:     "A verification code was already sent.",
			msgConfirmed:         "Your phone number has been verified.",
			msgRefreshed:         "Your session has been refreshed.",
			msgProfile:           "Profile loaded.",
			msgInvalidPhone:      "Please enter a valid mobile phone number.",
			msgThrottled:         "Please wait %d seconds before requesting a new code.",
			msgDeliveryFailed:    "We could not send the code. Please try again shortly.",
			msgNoActiveCode:      "There is no active code. Please request a new one.",
			msgCodeExpired:       "The code has expired. Please request a new one.",
			msgCodeMismatch:      "The code is incorrect (%d of %d attempts used).",
			msgTooManyAttempts:   "Too many incorrect attempts. Please request a new code.",
			msgUnregisteredPhone: "No membership is registered for this number. Please contact your studio.",
		},
	})
}
