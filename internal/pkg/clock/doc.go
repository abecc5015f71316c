// Package clock provides a tiny time abstraction.
//
// Expiry windows and cooldowns in the auth module are judged against a Clocker
// rather than time.Now, which lets tests drive them with a Manual clock.
package clock
