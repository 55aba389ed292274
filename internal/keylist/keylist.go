// Package keylist provides an ordered sequence of unique keys with O(1)
// keyed insertion and removal. It backs both levels of an IR layout:
// blocks within a function and instructions within a block.
package keylist

import "errors"

var (
	// ErrDuplicate indicates the key is already present in the list.
	ErrDuplicate = errors.New("keylist: duplicate key")
	// ErrMissing indicates the referenced key is not in the list.
	ErrMissing = errors.New("keylist: key not in list")
)

type node[K comparable] struct {
	key        K
	prev, next *node[K]
}

// List is a doubly-linked ordering over unique keys, addressable by key.
type List[K comparable] struct {
	head, tail *node[K]
	index      map[K]*node[K]
}

// New creates an empty list.
func New[K comparable]() *List[K] {
	return &List[K]{index: make(map[K]*node[K])}
}

// Len reports the number of keys in the list.
func (l *List[K]) Len() int { return len(l.index) }

// Contains reports whether key is in the list.
func (l *List[K]) Contains(key K) bool {
	_, ok := l.index[key]
	return ok
}

// Front returns the first key in order.
func (l *List[K]) Front() (K, bool) {
	if l.head == nil {
		var zero K
		return zero, false
	}
	return l.head.key, true
}

// Back returns the last key in order.
func (l *List[K]) Back() (K, bool) {
	if l.tail == nil {
		var zero K
		return zero, false
	}
	return l.tail.key, true
}

// Next returns the key following key in order.
func (l *List[K]) Next(key K) (K, bool) {
	n, ok := l.index[key]
	if !ok || n.next == nil {
		var zero K
		return zero, false
	}
	return n.next.key, true
}

// Prev returns the key preceding key in order.
func (l *List[K]) Prev(key K) (K, bool) {
	n, ok := l.index[key]
	if !ok || n.prev == nil {
		var zero K
		return zero, false
	}
	return n.prev.key, true
}

// PushBack appends key at the end.
func (l *List[K]) PushBack(key K) error {
	n, err := l.newNode(key)
	if err != nil {
		return err
	}
	n.prev = l.tail
	if l.tail != nil {
		l.tail.next = n
	} else {
		l.head = n
	}
	l.tail = n
	return nil
}

// PushFront prepends key at the beginning.
func (l *List[K]) PushFront(key K) error {
	n, err := l.newNode(key)
	if err != nil {
		return err
	}
	n.next = l.head
	if l.head != nil {
		l.head.prev = n
	} else {
		l.tail = n
	}
	l.head = n
	return nil
}

// InsertBefore places key immediately before ref.
func (l *List[K]) InsertBefore(key, ref K) error {
	at, ok := l.index[ref]
	if !ok {
		return ErrMissing
	}
	n, err := l.newNode(key)
	if err != nil {
		return err
	}
	n.prev = at.prev
	n.next = at
	if at.prev != nil {
		at.prev.next = n
	} else {
		l.head = n
	}
	at.prev = n
	return nil
}

// InsertAfter places key immediately after ref.
func (l *List[K]) InsertAfter(key, ref K) error {
	at, ok := l.index[ref]
	if !ok {
		return ErrMissing
	}
	n, err := l.newNode(key)
	if err != nil {
		return err
	}
	n.next = at.next
	n.prev = at
	if at.next != nil {
		at.next.prev = n
	} else {
		l.tail = n
	}
	at.next = n
	return nil
}

// Remove detaches key from the list.
func (l *List[K]) Remove(key K) error {
	n, ok := l.index[key]
	if !ok {
		return ErrMissing
	}
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	delete(l.index, key)
	return nil
}

// Keys returns all keys front to back.
func (l *List[K]) Keys() []K {
	out := make([]K, 0, len(l.index))
	for n := l.head; n != nil; n = n.next {
		out = append(out, n.key)
	}
	return out
}

// Do calls fn for each key front to back; returning false stops early.
func (l *List[K]) Do(fn func(K) bool) {
	for n := l.head; n != nil; n = n.next {
		if !fn(n.key) {
			return
		}
	}
}

func (l *List[K]) newNode(key K) (*node[K], error) {
	if _, ok := l.index[key]; ok {
		return nil, ErrDuplicate
	}
	n := &node[K]{key: key}
	l.index[key] = n
	return n, nil
}
