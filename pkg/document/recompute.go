package document

import (
	"github.com/juju/errors"
)

// Recompute runs a pass over every touched object and everything downstream
// of it. Object failures are recorded in the report and on the objects; the
// returned error is only non-nil when a pass is already running.
func (d *Document) Recompute() (*Report, error) {
	return d.recompute(nil)
}

// RecomputeObject forces name to execute, together with the touched objects
// it depends on. Objects outside its upstream closure are not visited;
// dependents of name are touched for the next pass.
func (d *Document) RecomputeObject(name string) (*Report, error) {
	if d.recomputing {
		return nil, errors.Annotatef(ErrRecomputing, "recompute %q", name)
	}
	o := d.objects[name]
	if o == nil {
		return nil, errors.NotFoundf("object %q", name)
	}
	o.touched = true
	d.touched.Add(o.name)
	return d.recompute(upstream(o))
}

func (d *Document) recompute(scope map[*Object]bool) (*Report, error) {
	if d.recomputing {
		return nil, errors.Annotate(ErrRecomputing, "recompute already running")
	}
	start := d.clock.Now()
	d.recomputing = true
	d.violations = nil
	defer func() {
		d.recomputing = false
		d.executing = nil
	}()

	in := d.inLists()
	var seeds []*Object
	for _, o := range d.order {
		if d.touched.Contains(o.name) && (scope == nil || scope[o]) {
			seeds = append(seeds, o)
		}
	}
	affected := downstream(seeds, in, scope)
	var nodes []*Object
	for _, o := range d.order {
		if affected[o] {
			nodes = append(nodes, o)
		}
	}
	d.logger.Debugf("%s: %d touched, %d affected", d.name, len(seeds), len(nodes))

	report := &Report{}
	failed := make(map[*Object]bool)
	loops := cyclic(nodes, affected)
	acyclic := nodes[:0:0]
	for _, o := range nodes {
		if !loops[o] {
			acyclic = append(acyclic, o)
			continue
		}
		d.touched.Remove(o.name)
		o.fail(StatusError, ErrDependencyCycle.Error())
		failed[o] = true
		report.Errored++
		report.Failures = append(report.Failures, outcome(o))
		d.logger.Warningf("%s: %s is part of a dependency cycle", d.name, o.name)
	}
	remaining := make(map[*Object]bool, len(acyclic))
	for _, o := range acyclic {
		remaining[o] = true
	}

	for _, o := range topoOrder(acyclic, remaining) {
		d.visit(o, affected, failed, in, report)
	}

	report.Duration = d.clock.Now().Sub(start)
	d.recomputing = false
	d.logger.Debugf("%s: %s", d.name, report)
	d.notifyRecomputed(report)
	return report, nil
}

// visit runs one object of the pass. It is aborted only when an out-link
// failed earlier in this same pass; a failure left over from a previous pass
// is an input like any other and Execute decides what to do with it.
func (d *Document) visit(o *Object, affected, failed map[*Object]bool, in map[*Object][]*Object, report *Report) {
	d.touched.Remove(o.name)

	if up := failedUpstream(o, failed); up != nil {
		o.fail(StatusAborted, "upstream failed: "+up.name)
		failed[o] = true
		report.Aborted++
		report.Failures = append(report.Failures, outcome(o))
		d.logger.Debugf("%s: %s aborted, %s is %s", d.name, o.name, up.name, up.status)
		return
	}

	if !o.MustExecute() {
		if o.status == StatusTouched {
			o.status = StatusValid
		}
		o.clearTouched()
		report.Skipped++
		return
	}

	report.Order = append(report.Order, o.name)
	out, err := d.invoke(o)
	if err != nil {
		o.fail(StatusError, err.Error())
		failed[o] = true
		report.Errored++
		report.Failures = append(report.Failures, outcome(o))
		d.logger.Warningf("%s: %s failed: %v", d.name, o.name, err)
		d.touchOutside(o, affected, in)
		return
	}
	o.succeed(out)
	report.Recomputed++
	for _, x := range in[o] {
		if affected[x] {
			x.touched = true
		}
	}
	d.touchOutside(o, affected, in)
}

// touchOutside queues the dependents of o that this pass will not visit.
func (d *Document) touchOutside(o *Object, affected map[*Object]bool, in map[*Object][]*Object) {
	for _, x := range in[o] {
		if !affected[x] {
			x.touch()
		}
	}
}

// invoke evaluates the expressions of o and calls its Execute. Panics are
// faults: re-raised with debug checks on, converted to errors otherwise.
func (d *Document) invoke(o *Object) (out any, err error) {
	d.executing = o
	before := len(d.violations)
	defer func() {
		d.executing = nil
		if r := recover(); r != nil {
			if d.debug {
				panic(r)
			}
			d.logger.Errorf("%s: fault executing %s: %v", d.name, o.name, r)
			out, err = nil, errors.Errorf("fault: %v", r)
		}
		if err == nil && len(d.violations) > before {
			out, err = nil, errors.Errorf("contract violation: %s", d.violations[before])
		}
	}()
	if err := d.evalExpressions(o); err != nil {
		return nil, err
	}
	if o.impl == nil {
		return nil, nil
	}
	return o.impl.Execute(o)
}

func failedUpstream(o *Object, failed map[*Object]bool) *Object {
	for _, t := range o.OutList() {
		if failed[t] {
			return t
		}
	}
	return nil
}

func outcome(o *Object) Outcome {
	return Outcome{Object: o.name, Status: o.status, Reason: o.reason}
}
