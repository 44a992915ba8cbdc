package socketapi

import (
	"bytes"
	"sync"

	"roost.dev/pkg/encoders/envelopes"
	"roost.dev/pkg/encoders/event"
	"roost.dev/pkg/encoders/filter"
	"roost.dev/pkg/encoders/hex"
	"roost.dev/pkg/interfaces/publisher"
	"roost.dev/pkg/interfaces/server"
	"roost.dev/pkg/protocol/ws"
	"roost.dev/pkg/utils/log"
)

const Type = "socketapi"

// Map holds the live subscriptions per websocket session.
type Map map[*ws.Listener]map[string]filter.S

// W is the subscription control message for the websocket publisher. With
// Cancel set it removes the named subscription, or the whole listener when
// Id is empty; otherwise it registers Filters under Id.
type W struct {
	*ws.Listener
	Cancel  bool
	Id      string
	Filters filter.S
}

func (w *W) Type() (typeName string) { return Type }

// S fans accepted events out to websocket subscribers.
type S struct {
	mx     sync.RWMutex
	subs   Map
	server server.I
}

var _ publisher.I = &S{}

func New(s server.I) (p *S) { return &S{subs: make(Map), server: s} }

func (p *S) Type() (typeName string) { return Type }

// Receive applies a subscription control message.
func (p *S) Receive(msg publisher.Message) {
	m, ok := msg.(*W)
	if !ok {
		return
	}
	p.mx.Lock()
	defer p.mx.Unlock()
	if m.Cancel {
		if m.Id == "" {
			delete(p.subs, m.Listener)
			log.T.F("removed listener %s", m.Listener.RealRemote())
			return
		}
		if subs, ok := p.subs[m.Listener]; ok {
			delete(subs, m.Id)
			if len(subs) == 0 {
				delete(p.subs, m.Listener)
			}
		}
		log.T.F(
			"removed subscription %s for %s", m.Id, m.Listener.RealRemote(),
		)
		return
	}
	subs, ok := p.subs[m.Listener]
	if !ok {
		subs = make(map[string]filter.S)
		p.subs[m.Listener] = subs
	}
	subs[m.Id] = m.Filters
	log.T.F("added subscription %s for %s", m.Id, m.Listener.RealRemote())
}

// Deliver sends the event to every matching subscription. A listener whose
// queue is full is dropped rather than letting it stall the rest.
func (p *S) Deliver(ev *event.E) {
	log.T.F("delivering event %s to subscribers", ev.IDHex())
	p.mx.RLock()
	defer p.mx.RUnlock()
	for l, subs := range p.subs {
		for id, fs := range subs {
			if !fs.Match(ev) {
				continue
			}
			if p.server.AuthRequired() && ev.Kind.IsPrivileged() &&
				!privilegedFor(l.AuthedPubkey(), ev) {
				continue
			}
			if !l.Enqueue(envelopes.Event(id, ev)) {
				_ = l.CloseSlow()
				break
			}
		}
	}
}

// privilegedFor reports whether pk is the author or a tagged counterparty
// of a privileged event.
func privilegedFor(pk []byte, ev *event.E) bool {
	if len(pk) == 0 {
		return false
	}
	if bytes.Equal(pk, ev.Pubkey) {
		return true
	}
	return ev.Tags.ContainsValue("p", hex.Enc(pk))
}
