package mediapackage

import (
	"fmt"
	"slices"

	"mpkg/internal/logging"
	"mpkg/internal/manifest"
)

// Observer is notified after elements are added to or removed from a
// package. Returned errors are logged and otherwise ignored.
type Observer interface {
	OnElementAdded(el manifest.Element) error
	OnElementRemoved(el manifest.Element) error
}

// ObserverFuncs adapts plain functions to Observer; nil fields are skipped.
type ObserverFuncs struct {
	Added   func(manifest.Element) error
	Removed func(manifest.Element) error
}

func (o ObserverFuncs) OnElementAdded(el manifest.Element) error {
	if o.Added == nil {
		return nil
	}
	return o.Added(el)
}

func (o ObserverFuncs) OnElementRemoved(el manifest.Element) error {
	if o.Removed == nil {
		return nil
	}
	return o.Removed(el)
}

type registration struct {
	id       uint64
	observer Observer
}

// AddObserver registers o and returns a function that deregisters it.
// Calling the returned function more than once is harmless.
func (p *Package) AddObserver(o Observer) (remove func()) {
	if o == nil {
		return func() {}
	}
	p.obsMu.Lock()
	defer p.obsMu.Unlock()
	p.nextObserver++
	id := p.nextObserver
	p.observers = append(p.observers, registration{id: id, observer: o})
	return func() {
		p.obsMu.Lock()
		defer p.obsMu.Unlock()
		p.observers = slices.DeleteFunc(p.observers, func(r registration) bool { return r.id == id })
	}
}

// ObserverCount reports the number of registered observers.
func (p *Package) ObserverCount() int {
	p.obsMu.Lock()
	defer p.obsMu.Unlock()
	return len(p.observers)
}

type notification int

const (
	elementAdded notification = iota
	elementRemoved
)

func (n notification) String() string {
	if n == elementAdded {
		return "element_added"
	}
	return "element_removed"
}

func (p *Package) notify(event notification, el manifest.Element) {
	p.obsMu.Lock()
	observers := slices.Clone(p.observers)
	p.obsMu.Unlock()

	for _, reg := range observers {
		if err := p.deliver(event, reg.observer, el); err != nil {
			logging.WarnWithContext(p.logger, "observer failed", "observer_failed",
				logging.String("notification", event.String()),
				logging.String(logging.FieldElementID, el.ID()),
				logging.String("observer", fmt.Sprintf("%T", reg.observer)),
				logging.Error(err),
				logging.String(logging.FieldImpact, "observer missed the change; the package was still updated"),
				logging.String(logging.FieldErrorHint, "check the observer implementation"),
			)
		}
	}
}

func (p *Package) deliver(event notification, o Observer, el manifest.Element) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("observer panic: %v", r)
		}
	}()
	if event == elementAdded {
		return o.OnElementAdded(el)
	}
	return o.OnElementRemoved(el)
}
