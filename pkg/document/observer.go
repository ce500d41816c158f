package document

// Observer receives document notifications. Calls are synchronous and made
// on the goroutine that caused them.
type Observer interface {
	ObjectCreated(o *Object)
	ObjectAboutToBeDeleted(o *Object)
	PropertyChanged(o *Object, property string)
	Recomputed(r *Report)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are ignored.
type ObserverFuncs struct {
	OnCreated          func(o *Object)
	OnAboutToBeDeleted func(o *Object)
	OnPropertyChanged  func(o *Object, property string)
	OnRecomputed       func(r *Report)
}

func (f ObserverFuncs) ObjectCreated(o *Object) {
	if f.OnCreated != nil {
		f.OnCreated(o)
	}
}

func (f ObserverFuncs) ObjectAboutToBeDeleted(o *Object) {
	if f.OnAboutToBeDeleted != nil {
		f.OnAboutToBeDeleted(o)
	}
}

func (f ObserverFuncs) PropertyChanged(o *Object, property string) {
	if f.OnPropertyChanged != nil {
		f.OnPropertyChanged(o, property)
	}
}

func (f ObserverFuncs) Recomputed(r *Report) {
	if f.OnRecomputed != nil {
		f.OnRecomputed(r)
	}
}

type subscription struct {
	id  int
	obs Observer
}

// Subscribe registers obs and returns a function that unregisters it.
func (d *Document) Subscribe(obs Observer) (unsubscribe func()) {
	d.nextSub++
	id := d.nextSub
	d.observers = append(d.observers, subscription{id: id, obs: obs})
	return func() {
		for i, s := range d.observers {
			if s.id == id {
				d.observers = append(d.observers[:i:i], d.observers[i+1:]...)
				return
			}
		}
	}
}

// each calls fn for a snapshot of the observers so that callbacks may
// unsubscribe.
func (d *Document) each(fn func(Observer)) {
	for _, s := range append([]subscription(nil), d.observers...) {
		fn(s.obs)
	}
}

func (d *Document) notifyCreated(o *Object) {
	d.each(func(obs Observer) { obs.ObjectCreated(o) })
}

func (d *Document) notifyAboutToBeDeleted(o *Object) {
	d.each(func(obs Observer) { obs.ObjectAboutToBeDeleted(o) })
}

func (d *Document) notifyPropertyChanged(o *Object, property string) {
	d.each(func(obs Observer) { obs.PropertyChanged(o, property) })
}

func (d *Document) notifyRecomputed(r *Report) {
	d.each(func(obs Observer) { obs.Recomputed(r) })
}
