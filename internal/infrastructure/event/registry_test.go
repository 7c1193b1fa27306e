package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerRegistry_RegisterAndGet(t *testing.T) {
	r := NewHandlerRegistry()
	created := newTestHandler()
	all := newTestHandler()

	r.Register(created, "ItemRequestCreated", "ItemRequestCreated")
	r.Register(all)

	handlers := r.GetHandlers("ItemRequestCreated")
	assert.Len(t, handlers, 2, "duplicate registration is ignored")
	assert.Same(t, created, handlers[0])
	assert.Same(t, all, handlers[1], "wildcard handlers come last")

	assert.Len(t, r.GetHandlers("ContractCreated"), 1)
	assert.Equal(t, 2, r.Len())
}

func TestHandlerRegistry_Unregister(t *testing.T) {
	r := NewHandlerRegistry()
	h1 := newTestHandler()
	h2 := newTestHandler()

	r.Register(h1, "ItemRequestCreated", "ItemRequestClaimed")
	r.Register(h2, "ItemRequestCreated")
	r.Unregister(h1)

	assert.Equal(t, 1, r.Len())
	assert.Empty(t, r.GetHandlers("ItemRequestClaimed"))
	handlers := r.GetHandlers("ItemRequestCreated")
	assert.Len(t, handlers, 1)
	assert.Same(t, h2, handlers[0])
}
