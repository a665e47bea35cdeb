package mcp

import (
	"sync"

	"github.com/viant/mcp-timesheet/timesheet"
)

// Drafts keeps the working sheet of every namespace, alias and week in memory.
// Each sheet has its own lock, so slow Graph calls on one sheet do not block others.
type Drafts struct {
	mu    sync.RWMutex
	slots map[string]*draftSlot
}

type draftSlot struct {
	mu    sync.Mutex
	sheet *timesheet.Sheet
}

func NewDrafts() *Drafts {
	return &Drafts{slots: map[string]*draftSlot{}}
}

func draftKey(namespace, alias string, week timesheet.Week) string {
	return namespace + "|" + alias + "|" + week.Key()
}

// With runs fn on the sheet under key, calling open to create it on first use.
// Calls for the same key are serialized.
func (d *Drafts) With(key string, open func() (*timesheet.Sheet, error), fn func(*timesheet.Sheet) error) error {
	slot := d.slot(key)
	slot.mu.Lock()
	defer slot.mu.Unlock()
	if slot.sheet == nil {
		sheet, err := open()
		if err != nil {
			return err
		}
		slot.sheet = sheet
	}
	return fn(slot.sheet)
}

// Discard drops the in-memory sheet under key.
func (d *Drafts) Discard(key string) {
	d.mu.Lock()
	delete(d.slots, key)
	d.mu.Unlock()
}

// Len returns the number of sheets held.
func (d *Drafts) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.slots)
}

func (d *Drafts) slot(key string) *draftSlot {
	d.mu.RLock()
	slot, ok := d.slots[key]
	d.mu.RUnlock()
	if ok {
		return slot
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if slot, ok = d.slots[key]; !ok {
		slot = &draftSlot{}
		d.slots[key] = slot
	}
	return slot
}
