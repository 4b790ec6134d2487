package desktop

import (
	"context"
	"sync"
)

// Observer receives source list changes from a MediaList.
type Observer interface {
	SourceAdded(list MediaList, index int)
	SourceRemoved(list MediaList, index int)
	SourceMoved(list MediaList, oldIndex, newIndex int)
	SourceNameChanged(list MediaList, index int)
}

// MediaList is a live list of desktop sources of one type.
type MediaList interface {
	Type() MediaIDType
	Update(ctx context.Context) error
	Sources() []Source
	Source(index int) (Source, bool)
	SourceCount() int
	SetObserver(observer Observer)
}

// NativeMediaList is a MediaList backed by a Capturer.
type NativeMediaList struct {
	typ      MediaIDType
	capturer Capturer

	mu       sync.Mutex
	sources  []Source
	observer Observer
}

// NewNativeMediaList creates a list of typ sources read from capturer. A nil
// capturer yields a list that never has sources.
func NewNativeMediaList(typ MediaIDType, capturer Capturer) *NativeMediaList {
	return &NativeMediaList{typ: typ, capturer: capturer}
}

// Type implements MediaList.
func (l *NativeMediaList) Type() MediaIDType {
	return l.typ
}

// SetObserver implements MediaList.
func (l *NativeMediaList) SetObserver(observer Observer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.observer = observer
}

// Sources implements MediaList.
func (l *NativeMediaList) Sources() []Source {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Source, len(l.sources))
	copy(out, l.sources)
	return out
}

// Source implements MediaList.
func (l *NativeMediaList) Source(index int) (Source, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if index < 0 || index >= len(l.sources) {
		return Source{}, false
	}
	return l.sources[index], true
}

// SourceCount implements MediaList.
func (l *NativeMediaList) SourceCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.sources)
}

// Update re-reads the capturer and reconciles the list with it. The observer
// sees removals first, then additions, then moves, then renames, and each
// index it receives is valid for the list at that point.
func (l *NativeMediaList) Update(ctx context.Context) error {
	if l.capturer == nil {
		return nil
	}
	fresh, err := l.capturer.Sources(ctx)
	if err != nil {
		return err
	}

	// A capturer may report the same ID twice; the first entry wins.
	wanted := make(map[MediaID]struct{}, len(fresh))
	unique := make([]Source, 0, len(fresh))
	for _, s := range fresh {
		if _, dup := wanted[s.ID]; dup {
			continue
		}
		wanted[s.ID] = struct{}{}
		unique = append(unique, s)
	}
	fresh = unique

	l.mu.Lock()
	defer l.mu.Unlock()

	// Removals, back to front so earlier indices stay valid.
	for i := len(l.sources) - 1; i >= 0; i-- {
		if _, ok := wanted[l.sources[i].ID]; ok {
			continue
		}
		l.sources = append(l.sources[:i], l.sources[i+1:]...)
		l.notify(func(o Observer) { o.SourceRemoved(l, i) })
	}

	// Additions at their final position.
	for i, s := range fresh {
		if l.indexOf(s.ID) >= 0 {
			continue
		}
		pos := min(i, len(l.sources))
		l.sources = append(l.sources, Source{})
		copy(l.sources[pos+1:], l.sources[pos:])
		l.sources[pos] = s
		l.notify(func(o Observer) { o.SourceAdded(l, pos) })
	}

	// Moves and renames.
	for i, s := range fresh {
		cur := l.indexOf(s.ID)
		if cur != i {
			moved := l.sources[cur]
			l.sources = append(l.sources[:cur], l.sources[cur+1:]...)
			l.sources = append(l.sources[:i], append([]Source{moved}, l.sources[i:]...)...)
			l.notify(func(o Observer) { o.SourceMoved(l, cur, i) })
		}
		if l.sources[i].Name != s.Name {
			l.sources[i].Name = s.Name
			l.notify(func(o Observer) { o.SourceNameChanged(l, i) })
		}
	}
	return nil
}

func (l *NativeMediaList) indexOf(id MediaID) int {
	for i := range l.sources {
		if l.sources[i].ID == id {
			return i
		}
	}
	return -1
}

// notify runs fn with the lock held; observers must not call back into the list.
func (l *NativeMediaList) notify(fn func(Observer)) {
	if l.observer != nil {
		fn(l.observer)
	}
}
