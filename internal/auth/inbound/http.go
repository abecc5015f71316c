package inbound

import (
	"context"

	"github.com/shandysiswandi/yogapass/internal/auth/entity"
	"github.com/shandysiswandi/yogapass/internal/auth/usecase"
	"github.com/shandysiswandi/yogapass/internal/pkg/i18n"
	"github.com/shandysiswandi/yogapass/internal/pkg/router"
)

type uc interface {
	Issue(ctx context.Context, in usecase.IssueInput) (*usecase.IssueOutput, error)
	ConfirmCode(ctx context.Context, in usecase.ConfirmInput) (*entity.Session, error)
	RefreshSession(ctx context.Context, in usecase.RefreshInput) (*entity.Session, error)
	Logout(ctx context.Context, in usecase.LogoutInput) error
	Profile(ctx context.Context) (*usecase.ProfileOutput, error)
}

// RegisterHTTPEndpoint mounts the auth routes. otpLimit, when set, guards the
// code request route per client IP.
func RegisterHTTPEndpoint(r *router.Router, uc uc, tr *i18n.Translator, otpLimit router.Middleware) {
	end := &HTTPEndpoint{uc: uc, tr: tr}

	var requestMws []router.Middleware
	if otpLimit != nil {
		requestMws = append(requestMws, otpLimit)
	}

	// OTP sign-in
	r.POST("/api/v1/auth/otp/request", end.RequestCode, requestMws...)
	r.POST("/api/v1/auth/otp/confirm", end.ConfirmCode)

	// Session
	r.POST("/api/v1/auth/refresh", end.Refresh)
	r.POST("/api/v1/auth/logout", end.Logout) // need authenticated
	r.GET("/api/v1/auth/me", end.Profile)     // need authenticated
}
