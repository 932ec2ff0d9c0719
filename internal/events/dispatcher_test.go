package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesEveryHandlerDespiteErrors(t *testing.T) {
	d := NewInMemoryDispatcher(nil)
	var seen []string
	d.Subscribe(EventSOSTriggered, func(context.Context, Event) error {
		seen = append(seen, "first")
		return errors.New("sink down")
	})
	d.Subscribe(EventSOSTriggered, func(_ context.Context, e Event) error {
		seen = append(seen, "second:"+e.SubjectID)
		return nil
	})
	d.Subscribe(EventSOSResolved, func(context.Context, Event) error {
		seen = append(seen, "resolved")
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventSOSTriggered, SubjectID: "sos-1"}))
	assert.Equal(t, []string{"first", "second:sos-1"}, seen)
}
