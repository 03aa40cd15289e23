package store

import (
	"fmt"
	"sync/atomic"
)

// SeedCounter is the counter value at process start. It sits above every
// numeric id used by the seed data, so the first allocated id is 1001.
const SeedCounter = 1000

// ticketYear is the fixed year segment of ticket ids.
const ticketYear = 2025

// IDAllocator hands out ids from one process-wide counter. Every namespace
// draws from the same sequence so no two ids ever share a number.
type IDAllocator struct {
	counter atomic.Int64
}

// NewIDAllocator returns an allocator that continues after last.
func NewIDAllocator(last int64) *IDAllocator {
	a := &IDAllocator{}
	a.counter.Store(last)
	return a
}

func (a *IDAllocator) next() int64 {
	return a.counter.Add(1)
}

func (a *IDAllocator) TicketID() string {
	return fmt.Sprintf("IT-%d-%04d", ticketYear, a.next())
}

func (a *IDAllocator) MessageID() string {
	return fmt.Sprintf("msg-%d", a.next())
}

func (a *IDAllocator) NoteID() string {
	return fmt.Sprintf("note-%d", a.next())
}

func (a *IDAllocator) ArticleID() string {
	return fmt.Sprintf("kb-%d", a.next())
}

func (a *IDAllocator) NotificationID() string {
	return fmt.Sprintf("nt-%d", a.next())
}
