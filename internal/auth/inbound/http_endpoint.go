package inbound

import (
	"errors"
	"strconv"

	"github.com/shandysiswandi/yogapass/internal/auth/entity"
	"github.com/shandysiswandi/yogapass/internal/auth/usecase"
	"github.com/shandysiswandi/yogapass/internal/pkg/goerror"
	"github.com/shandysiswandi/yogapass/internal/pkg/i18n"
	"github.com/shandysiswandi/yogapass/internal/pkg/router"
	"golang.org/x/text/language"
)

// HTTPEndpoint exposes the phone sign-in and session handlers.
type HTTPEndpoint struct {
	uc uc
	tr *i18n.Translator
}

func (h *HTTPEndpoint) lang(r *router.Request) language.Tag {
	return h.tr.Match(r.GetHeader("Accept-Language"))
}

// RequestCode sends a one-time code to a phone number.
// @Summary Request sign-in code
// @Tags Auth
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Replays an earlier success without a new SMS"
// @Param request body RequestCodeRequest true "Phone payload"
// @Success 200 {object} router.successResponse{data=RequestCodeResponse}
// @Failure 422 {object} router.errorResponse "Invalid phone number"
// @Failure 429 {object} router.errorResponse "Requested too soon"
// @Failure 503 {object} router.errorResponse "SMS delivery failed"
// @Router /api/v1/auth/otp/request [post]
func (h *HTTPEndpoint) RequestCode(r *router.Request) (any, error) {
	tag := h.lang(r)

	var req RequestCodeRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	out, err := h.uc.Issue(r.Context(), usecase.IssueInput{
		Phone:          req.Phone,
		IdempotencyKey: r.GetHeader("Idempotency-Key"),
	})
	if err != nil {
		return nil, h.mapError(tag, err)
	}

	msg := msgCodeSent
	if out.Replayed {
		msg = msgCodeSentAgain
	}

	return RequestCodeResponse{
		Success:            true,
		ResendAfterSeconds: int(out.ResendAfter.Seconds()),
		ExpiresInSeconds:   int(out.ExpiresIn.Seconds()),
		msg:                h.tr.Sprintf(tag, msg),
	}, nil
}

// ConfirmCode checks the code and opens a session.
// @Summary Confirm sign-in code
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body ConfirmCodeRequest true "Phone and code"
// @Success 200 {object} router.successResponse{data=SessionResponse}
// @Failure 403 {object} router.errorResponse "Phone has no membership"
// @Failure 404 {object} router.errorResponse "No active code"
// @Failure 410 {object} router.errorResponse "Code expired"
// @Failure 422 {object} router.errorResponse "Code mismatch"
// @Failure 429 {object} router.errorResponse "Attempts exhausted"
// @Router /api/v1/auth/otp/confirm [post]
func (h *HTTPEndpoint) ConfirmCode(r *router.Request) (any, error) {
	tag := h.lang(r)

	var req ConfirmCodeRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	sess, err := h.uc.ConfirmCode(r.Context(), usecase.ConfirmInput{
		Phone: req.Phone,
		Code:  req.Code,
		Meta: entity.ClientMeta{
			IP:        r.ClientIP(),
			UserAgent: r.UserAgent(),
		},
	})
	if err != nil {
		return nil, h.mapError(tag, err)
	}

	resp := sessionResponse(sess, h.tr.Sprintf(tag, msgConfirmed))
	resp.ProfileLinked = &sess.ProfileLinked
	return resp, nil
}

// Refresh rotates a refresh token.
// @Summary Refresh session
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "Refresh token"
// @Success 200 {object} router.successResponse{data=SessionResponse}
// @Failure 401 {object} router.errorResponse "Invalid or expired refresh token"
// @Router /api/v1/auth/refresh [post]
func (h *HTTPEndpoint) Refresh(r *router.Request) (any, error) {
	var req RefreshRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	sess, err := h.uc.RefreshSession(r.Context(), usecase.RefreshInput{RefreshToken: req.RefreshToken})
	if err != nil {
		return nil, err
	}

	return sessionResponse(sess, h.tr.Sprintf(h.lang(r), msgRefreshed)), nil
}

// Logout revokes the given refresh token of the caller.
// @Summary Logout
// @Tags Auth
// @Security BearerAuth
// @Param request body LogoutRequest true "Refresh token"
// @Success 204 "No Content"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Router /api/v1/auth/logout [post]
func (h *HTTPEndpoint) Logout(r *router.Request) (any, error) {
	var req LogoutRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	return nil, h.uc.Logout(r.Context(), usecase.LogoutInput{RefreshToken: req.RefreshToken})
}

// Profile returns the member profile of the caller.
// @Summary Current member
// @Tags Auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} router.successResponse{data=ProfileResponse}
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Router /api/v1/auth/me [get]
func (h *HTTPEndpoint) Profile(r *router.Request) (any, error) {
	out, err := h.uc.Profile(r.Context())
	if err != nil {
		return nil, err
	}

	return ProfileResponse{
		ID:          out.Profile.ID,
		Phone:       out.Profile.Phone.String(),
		DisplayName: out.Profile.DisplayName,
		IdentityID:  out.IdentityID,
		Linked:      out.Linked,
		LinkedAt:    out.Profile.LinkedAt,
		msg:         h.tr.Sprintf(h.lang(r), msgProfile),
	}, nil
}

func sessionResponse(sess *entity.Session, msg string) SessionResponse {
	return SessionResponse{
		IdentityID:            sess.IdentityID,
		ProfileID:             sess.ProfileID,
		AccessToken:           sess.AccessToken,
		AccessTokenExpiresAt:  sess.AccessExpiresAt,
		RefreshToken:          sess.RefreshToken,
		RefreshTokenExpiresAt: sess.RefreshExpires,
		msg:                   msg,
	}
}

// mapError turns OTP failure kinds into localized client errors. Anything
// that is not an *entity.Error passes through unchanged.
func (h *HTTPEndpoint) mapError(tag language.Tag, err error) error {
	var domErr *entity.Error
	if !errors.As(err, &domErr) {
		return err
	}

	switch {
	case errors.Is(err, entity.ErrInvalidPhone):
		return goerror.NewBusinessWithFields(h.tr.Sprintf(tag, msgInvalidPhone), goerror.CodeInvalidInput,
			"phone", h.tr.Sprintf(tag, msgInvalidPhone))

	case errors.Is(err, entity.ErrThrottled):
		secs := domErr.RetryAfterSeconds()
		return goerror.NewBusinessWithFields(h.tr.Sprintf(tag, msgThrottled, secs), goerror.CodeTooManyRequest,
			"retry_after_seconds", strconv.Itoa(secs))

	case errors.Is(err, entity.ErrDeliveryFailed):
		return goerror.NewUnavailable(err, h.tr.Sprintf(tag, msgDeliveryFailed))

	case errors.Is(err, entity.ErrNotFound):
		return goerror.NewBusiness(h.tr.Sprintf(tag, msgNoActiveCode), goerror.CodeNotFound)

	case errors.Is(err, entity.ErrExpired):
		return goerror.NewBusiness(h.tr.Sprintf(tag, msgCodeExpired), goerror.CodeGone)

	case errors.Is(err, entity.ErrCodeMismatch):
		return goerror.NewBusinessWithFields(
			h.tr.Sprintf(tag, msgCodeMismatch, domErr.Attempts, domErr.MaxAttempts), goerror.CodeInvalidInput,
			"attempts_used", strconv.Itoa(domErr.Attempts),
			"attempts_max", strconv.Itoa(domErr.MaxAttempts),
		)

	case errors.Is(err, entity.ErrTooManyAttempts):
		return goerror.NewBusiness(h.tr.Sprintf(tag, msgTooManyAttempts), goerror.CodeTooManyRequest)

	case errors.Is(err, entity.ErrUnregisteredPhone):
		return goerror.NewBusiness(h.tr.Sprintf(tag, msgUnregisteredPhone), goerror.CodeForbidden)

	default:
		return goerror.NewServer(err)
	}
}
