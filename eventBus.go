// eventBus
package replica

import (
	"fmt"
	"regexp"
	"sync"
	"time"
)

// Topics on the system bus.
const (
	CanisterLifecycle = "canisterLifecycle"
	RoutingProblem    = "routingProblem"
)

// BusEvent is what subscribers receive.
type BusEvent struct {
	Timestamp time.Time
	Topic     string
	Data      interface{}
}

// internal book-keeping
type subscriber struct {
	ch     chan<- BusEvent
	regexp *regexp.Regexp
	filter func(interface{}) bool
}

// EventBus - not much to it really! Subscribers register a channel
// with an optional topic pattern and an optional payload filter.
// Publishing never blocks: an event for a subscriber whose channel
// is full is dropped.
type EventBus struct {
	sync.Mutex
	filter      func(interface{}) bool
	subscribers []subscriber
}

func NewEventBus(filter func(interface{}) bool) *EventBus {
	return &EventBus{filter: filter, subscribers: make([]subscriber, 0)}
}

// subscribe a channel to the bus
func (bus *EventBus) Subscribe(ch chan<- BusEvent, pattern string, filter func(interface{}) bool) error {
	bus.Lock()
	defer bus.Unlock()
	for _, subs := range bus.subscribers {
		if ch == subs.ch {
			return nil
		}
	}
	var rx *regexp.Regexp
	if pattern != "" {
		var err error
		rx, err = regexp.Compile(pattern)
		if err != nil {
			return err
		}
	}
	bus.subscribers = append(bus.subscribers, subscriber{ch, rx, filter})
	return nil
}

// unsubscribe the channel from the bus
func (bus *EventBus) Unsubscribe(ch chan<- BusEvent) {
	bus.Lock()
	defer bus.Unlock()
	for idx, subs := range bus.subscribers {
		if ch == subs.ch {
			bus.subscribers = append(bus.subscribers[:idx], bus.subscribers[idx+1:]...)
			return
		}
	}
}

// publish to all subscribers
func (bus *EventBus) Publish(topic string, data interface{}) error {
	if bus.filter != nil && !bus.filter(data) {
		return fmt.Errorf("wrong message type for bus")
	}
	event := BusEvent{Timestamp: time.Now(), Topic: topic, Data: data}
	bus.Lock()
	defer bus.Unlock()
	for _, subs := range bus.subscribers {
		if (subs.regexp == nil || subs.regexp.MatchString(topic)) &&
			(subs.filter == nil || subs.filter(data)) {
			select {
			case subs.ch <- event:
			default:
			}
		}
	}
	return nil
}
