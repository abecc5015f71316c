package main

import (
	"context"

	"github.com/shandysiswandi/yogapass/internal/app"
)

// @title       YogaPass Auth API
// @version     1.0
// @description Phone number sign-in for YogaPass members: SMS one-time codes, sessions and the member profile.
// @server      http://localhost:8080
// @securityDefinitions.apikey BearerAuth
// @in   header
// @name Authorization
func main() {
	a := app.New()
	<-a.Start()

	ctx, cancel := context.WithTimeout(context.Background(), a.ShutdownTimeout())
	defer cancel()

	a.Stop(ctx)
}
