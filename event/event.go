// Copyright 2026 Pontoon Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package event

import (
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// EventQueueSize is the buffer size of each subscriber channel
	EventQueueSize = 20
)

type EventType string

type EventSubscriberId int

type EventHandlerFunc func(Event)

type Event struct {
	Timestamp time.Time
	Data      any
	Type      EventType
}

func NewEvent(eventType EventType, eventData any) Event {
	return Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      eventData,
	}
}

// EventBus is a simple in-process pub/sub bus used to decouple the
// ledger from consumers of its state changes
type EventBus struct {
	subscribers map[EventType]map[EventSubscriberId]chan Event
	metrics     *eventMetrics
	lastSubId   EventSubscriberId
	mu          sync.RWMutex
	logger      *slog.Logger
}

func NewEventBus(
	promRegistry prometheus.Registerer,
	logger *slog.Logger,
) *EventBus {
	e := &EventBus{
		subscribers: make(map[EventType]map[EventSubscriberId]chan Event),
		logger:      logger,
	}
	if promRegistry != nil {
		e.metrics = newEventMetrics(promRegistry)
	}
	return e
}

// Subscribe allows a consumer to receive events of a particular type via a channel
func (e *EventBus) Subscribe(
	eventType EventType,
) (EventSubscriberId, <-chan Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	subId := e.lastSubId + 1
	e.lastSubId = subId
	if _, ok := e.subscribers[eventType]; !ok {
		e.subscribers[eventType] = make(map[EventSubscriberId]chan Event)
	}
	subCh := make(chan Event, EventQueueSize)
	e.subscribers[eventType][subId] = subCh
	if e.metrics != nil {
		e.metrics.subscribers.WithLabelValues(string(eventType)).Inc()
	}
	return subId, subCh
}

// SubscribeFunc allows a consumer to receive events of a particular type via a callback function
func (e *EventBus) SubscribeFunc(
	eventType EventType,
	handlerFunc EventHandlerFunc,
) EventSubscriberId {
	subId, evtCh := e.Subscribe(eventType)
	go func() {
		for {
			evt, ok := <-evtCh
			if !ok {
				return
			}
			handlerFunc(evt)
		}
	}()
	return subId
}

// Unsubscribe stops delivery of events for a particular type for an existing subscriber
func (e *EventBus) Unsubscribe(eventType EventType, subId EventSubscriberId) {
	e.mu.Lock()
	defer e.mu.Unlock()
	evtTypeSubs, ok := e.subscribers[eventType]
	if !ok {
		return
	}
	subCh, ok := evtTypeSubs[subId]
	if !ok {
		return
	}
	delete(evtTypeSubs, subId)
	if len(evtTypeSubs) == 0 {
		delete(e.subscribers, eventType)
	}
	close(subCh)
	if e.metrics != nil {
		e.metrics.subscribers.WithLabelValues(string(eventType)).Dec()
	}
}

// Publish sends an event of a particular type to all subscribers. A
// subscriber whose channel buffer is full has the event dropped rather
// than blocking the publisher
func (e *EventBus) Publish(eventType EventType, evt Event) {
	e.mu.RLock()
	subs := make([]chan Event, 0, len(e.subscribers[eventType]))
	for _, subCh := range e.subscribers[eventType] {
		subs = append(subs, subCh)
	}
	e.mu.RUnlock()
	for _, subCh := range subs {
		select {
		case subCh <- evt:
		default:
			if e.metrics != nil {
				e.metrics.dropped.WithLabelValues(string(eventType)).Inc()
			}
			logger := e.logger
			if logger == nil {
				logger = slog.Default()
			}
			logger.Warn(
				"subscriber queue full, dropping event",
				"type", eventType,
				"component", "eventbus",
			)
		}
	}
	if e.metrics != nil {
		e.metrics.eventsTotal.WithLabelValues(string(eventType)).Inc()
	}
}

// Stop closes all subscriber channels and clears the subscribers map so
// that SubscribeFunc goroutines exit cleanly during shutdown. The bus
// remains usable for new subscriptions afterwards
func (e *EventBus) Stop() {
	e.mu.Lock()
	subsCopy := e.subscribers
	e.subscribers = make(map[EventType]map[EventSubscriberId]chan Event)
	e.mu.Unlock()
	for _, evtTypeSubs := range subsCopy {
		for _, subCh := range evtTypeSubs {
			close(subCh)
		}
	}
	if e.metrics != nil {
		e.metrics.subscribers.Reset()
	}
}
