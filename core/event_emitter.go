package orchestration

import events "github.com/koscakluka/ema-realtime/core/events"

type eventEmitter func(events.Event)

func noopEventEmitter(events.Event) {}

func newCallbackEventEmitter(callbacks engineCallbacks) eventEmitter {
	if callbacks.onResponse == nil && callbacks.onResponseEnd == nil && callbacks.onStatus == nil &&
		callbacks.onBusyChanged == nil && callbacks.onHostSignal == nil && len(callbacks.handlers) == 0 {
		return noopEventEmitter
	}

	return func(event events.Event) {
		switch typedEvent := event.(type) {
		case events.AssistantResponseSegment:
			if callbacks.onResponse != nil {
				callbacks.onResponse(typedEvent.Segment)
			}
		case events.AssistantResponseFinal:
			if callbacks.onResponseEnd != nil {
				callbacks.onResponseEnd()
			}
		case events.StatusUpdated:
			if callbacks.onStatus != nil {
				callbacks.onStatus(typedEvent.Status)
			}
		case events.BusyChanged:
			if callbacks.onBusyChanged != nil {
				callbacks.onBusyChanged(typedEvent.Busy)
			}
		case events.HostSignal:
			if callbacks.onHostSignal != nil {
				callbacks.onHostSignal(typedEvent.Signal)
			}
		}

		for _, handler := range callbacks.handlers {
			handler(event)
		}
	}
}
