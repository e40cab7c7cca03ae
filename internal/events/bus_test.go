package events

import (
	"context"
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestBus_DeliversByType(t *testing.T) {
	bus := NewBus()

	var verified []string
	var followed int
	Subscribe(bus, func(_ context.Context, e AccountVerified) {
		verified = append(verified, e.User.Email)
	})
	Subscribe(bus, func(_ context.Context, e UserFollowed) {
		followed++
	})

	bus.Publish(context.Background(), AccountVerified{User: models.User{Email: "ada@example.com"}})
	bus.Publish(context.Background(), PasswordChanged{})

	assert.Equal(t, []string{"ada@example.com"}, verified)
	assert.Zero(t, followed)
}

func TestBus_RegistrationOrder(t *testing.T) {
	bus := NewBus()

	var order []int
	Subscribe(bus, func(context.Context, PostLiked) { order = append(order, 1) })
	Subscribe(bus, func(context.Context, PostLiked) { order = append(order, 2) })

	bus.Publish(context.Background(), PostLiked{})
	assert.Equal(t, []int{1, 2}, order)
}

func TestBus_PanickingHandlerIsContained(t *testing.T) {
	bus := NewBus()

	reached := false
	Subscribe(bus, func(context.Context, CommentCreated) { panic("boom") })
	Subscribe(bus, func(context.Context, CommentCreated) { reached = true })

	assert.NotPanics(t, func() {
		bus.Publish(context.Background(), CommentCreated{})
	})
	assert.True(t, reached)
}

func TestBus_NilIsNoop(t *testing.T) {
	var bus *Bus
	assert.NotPanics(t, func() {
		bus.Publish(context.Background(), AccountRegistered{})
	})
}
