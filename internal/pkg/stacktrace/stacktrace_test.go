package stacktrace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInternalPaths(t *testing.T) {
	stack := []byte(`goroutine 7 [running]:
runtime/debug.Stack()
	/usr/local/go/src/runtime/debug/stack.go:26 +0x5e
github.com/shandysiswandi/yogapass/internal/pkg/router.middlewareRecoverer.func1.1()
	/src/yogapass/internal/pkg/router/middleware_recover.go:31 +0x1b4
panic({0x1029c40?, 0x13d8f70?})
	/usr/local/go/src/runtime/panic.go:785 +0x132
github.com/shandysiswandi/yogapass/internal/auth/inbound.(*Endpoint).RequestCode(...)
	/src/yogapass/internal/auth/inbound/http_endpoint.go:40
`)

	assert.Equal(t, []string{
		"internal/pkg/router/middleware_recover.go:31",
		"internal/auth/inbound/http_endpoint.go:40",
	}, InternalPaths(stack))

	assert.Empty(t, InternalPaths([]byte("no frames here")))
}
