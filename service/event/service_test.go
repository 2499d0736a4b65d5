package event

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/runcell/model/execution"
)

func TestPublisherOf_TypedRoundTrip(t *testing.T) {
	service := New()
	publisher, err := PublisherOf[execution.Outcome](service)
	require.NoError(t, err)

	outcome := execution.Outcome{RunID: "run-9", State: execution.StateSucceeded}
	err = publisher.Publish(context.Background(), NewEvent(&Context{RunID: "run-9", EventType: "completed"}, outcome))
	require.NoError(t, err)

	received, err := publisher.Consume(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "run-9", received.Context.RunID)
	assert.EqualValues(t, execution.StateSucceeded, received.Data.State)
}

func TestSetListenerOf_DeliversEvents(t *testing.T) {
	service := New()
	received := make(chan *Event[execution.Outcome], 1)
	err := SetListenerOf(service, func(event *Event[execution.Outcome]) {
		received <- event
	})
	require.NoError(t, err)

	publisher, err := PublisherOf[execution.Outcome](service)
	require.NoError(t, err)
	outcome := execution.Outcome{RunID: "run-10", State: execution.StateFailed}
	require.NoError(t, publisher.Publish(context.Background(), NewEvent(&Context{RunID: "run-10", EventType: "completed"}, outcome)))

	select {
	case event := <-received:
		assert.Equal(t, "run-10", event.Context.RunID)
	case <-time.After(time.Second):
		t.Fatal("listener did not deliver event")
	}
}
