// Package bus is a small in-process pub/sub message bus with retained
// messages and MQTT-style topic wildcards. Topics are token sequences;
// tokens are strings or small integers. The wildcard token "+" matches any
// single level, "#" matches the current level and everything below it.
package bus

import (
	"sync"
)

// -----------------------------------------------------------------------------
// Topics
// -----------------------------------------------------------------------------

// Topic is a sequence of tokens. Tokens must be comparable (string or int).
type Topic []any

// T builds a topic from its tokens.
func T(parts ...any) Topic { return Topic(parts) }

func (t Topic) Len() int     { return len(t) }
func (t Topic) At(i int) any { return t[i] }

// -----------------------------------------------------------------------------
// Message
// -----------------------------------------------------------------------------

type Message struct {
	Topic    Topic
	Payload  any
	Retained bool
}

// -----------------------------------------------------------------------------
// Subscription
// -----------------------------------------------------------------------------

type Subscription struct {
	topic Topic
	ch    chan *Message
	conn  *Connection // owning connection
}

func (s *Subscription) Topic() Topic             { return s.topic }
func (s *Subscription) Channel() <-chan *Message { return s.ch }
func (s *Subscription) Unsubscribe()             { s.conn.Unsubscribe(s) }

// -----------------------------------------------------------------------------
// Trie node
// -----------------------------------------------------------------------------

type node struct {
	children map[any]*node
	subs     []*Subscription
	retained *Message
}

// -----------------------------------------------------------------------------
// Bus
// -----------------------------------------------------------------------------

type Bus struct {
	mu   sync.RWMutex
	root *node
	qLen int
}

// NewBus creates a new bus with the given subscription queue length.
func NewBus(queueLen int) *Bus {
	if queueLen <= 0 {
		queueLen = 8 // safe default
	}
	return &Bus{
		root: &node{},
		qLen: queueLen,
	}
}

// NewMessage builds a message; provided for symmetry with Connection.
func (b *Bus) NewMessage(topic Topic, payload any, retained bool) *Message {
	return &Message{Topic: topic, Payload: payload, Retained: retained}
}

// addSubscription inserts a subscription into the trie. Wildcard tokens are
// stored like any other token; matching happens at publish time.
func (b *Bus) addSubscription(topic Topic, sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.root
	for _, tok := range topic {
		if n.children == nil {
			n.children = make(map[any]*node)
		}
		child, ok := n.children[tok]
		if !ok {
			child = &node{}
			n.children[tok] = child
		}
		n = child
	}
	n.subs = append(n.subs, sub)

	// Deliver retained messages the pattern already matches.
	var ret []*Message
	collectRetained(b.root, topic, 0, &ret)
	for _, m := range ret {
		push(sub.ch, m)
	}
}

// collectRetained gathers retained messages under pattern pat[i:] from n.
func collectRetained(n *node, pat Topic, i int, out *[]*Message) {
	if n == nil {
		return
	}
	if i == len(pat) {
		if n.retained != nil {
			*out = append(*out, n.retained)
		}
		return
	}
	switch pat[i] {
	case "#":
		subtreeRetained(n, out)
	case "+":
		for _, child := range n.children {
			collectRetained(child, pat, i+1, out)
		}
	default:
		collectRetained(n.children[pat[i]], pat, i+1, out)
	}
}

func subtreeRetained(n *node, out *[]*Message) {
	if n.retained != nil {
		*out = append(*out, n.retained)
	}
	for _, child := range n.children {
		subtreeRetained(child, out)
	}
}

// Publish delivers a message to every subscription whose pattern matches the
// message topic, then stores or clears the retained copy. Message topics must
// be concrete (no wildcards).
func (b *Bus) Publish(msg *Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.deliver(b.root, msg.Topic, 0, msg)

	if !msg.Retained {
		return
	}
	n := b.root
	for _, tok := range msg.Topic {
		if n.children == nil {
			n.children = make(map[any]*node)
		}
		child, ok := n.children[tok]
		if !ok {
			child = &node{}
			n.children[tok] = child
		}
		n = child
	}
	if msg.Payload == nil {
		n.retained = nil
	} else {
		n.retained = msg
	}
}

func (b *Bus) deliver(n *node, topic Topic, i int, msg *Message) {
	if n == nil {
		return
	}
	// "#" subscriptions match at every level, including this one.
	if hash, ok := n.children["#"]; ok {
		for _, sub := range hash.subs {
			push(sub.ch, msg)
		}
	}
	if i == len(topic) {
		for _, sub := range n.subs {
			push(sub.ch, msg)
		}
		return
	}
	if n.children == nil {
		return
	}
	b.deliver(n.children[topic[i]], topic, i+1, msg)
	b.deliver(n.children["+"], topic, i+1, msg)
}

// push is a non-blocking send that drops the oldest message when full.
func push(ch chan *Message, msg *Message) {
	select {
	case ch <- msg:
	default:
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- msg:
		default:
		}
	}
}

// unsubscribe removes a subscription from the trie.
func (b *Bus) unsubscribe(topic Topic, sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.root
	var stack []*node
	for _, t := range topic {
		if n.children == nil {
			return
		}
		child, ok := n.children[t]
		if !ok {
			return
		}
		stack = append(stack, n)
		n = child
	}

	for i, s := range n.subs {
		if s == sub {
			n.subs = append(n.subs[:i], n.subs[i+1:]...)
			break
		}
	}

	// Prune empty nodes.
	for i := len(topic) - 1; i >= 0; i-- {
		parent := stack[i]
		key := topic[i]
		child := parent.children[key]
		if len(child.subs) == 0 && len(child.children) == 0 && child.retained == nil {
			delete(parent.children, key)
		} else {
			break
		}
	}
}

// -----------------------------------------------------------------------------
// Connection
// -----------------------------------------------------------------------------

type Connection struct {
	bus  *Bus
	subs []*Subscription
	mu   sync.Mutex
	id   string // placeholder for future identity/auth
}

// NewConnection creates a new connection bound to this bus.
func (b *Bus) NewConnection(id string) *Connection {
	return &Connection{
		bus: b,
		id:  id,
	}
}

// NewMessage builds a message ready for Publish.
func (c *Connection) NewMessage(topic Topic, payload any, retained bool) *Message {
	return &Message{Topic: topic, Payload: payload, Retained: retained}
}

// Publish sends a message via the bus.
func (c *Connection) Publish(msg *Message) {
	c.bus.Publish(msg)
}

// Subscribe registers a subscription owned by this connection.
func (c *Connection) Subscribe(topic Topic) *Subscription {
	sub := &Subscription{
		topic: topic,
		ch:    make(chan *Message, c.bus.qLen),
		conn:  c,
	}
	c.bus.addSubscription(topic, sub)
	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()
	return sub
}

// Unsubscribe removes a subscription owned by this connection.
func (c *Connection) Unsubscribe(sub *Subscription) {
	c.bus.unsubscribe(sub.topic, sub)
	c.mu.Lock()
	for i, s := range c.subs {
		if s == sub {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			break
		}
	}
	c.mu.Unlock()
	close(sub.ch)
}

// Disconnect closes all subscriptions and clears them.
func (c *Connection) Disconnect() {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()

	for _, sub := range subs {
		c.bus.unsubscribe(sub.topic, sub)
		close(sub.ch)
	}
}
