package document

import (
	"math"
	"sort"

	"github.com/juju/errors"

	"github.com/chazu/paracad/pkg/expr"
)

// SetExpression binds a numeric property to an expression. The property is
// assigned the expression's value before every execute of o, and every
// object the expression references becomes a dependency of o.
func (o *Object) SetExpression(property, src string) error {
	p, err := o.expressionTarget(property)
	if err != nil {
		return err
	}
	e, err := expr.Compile(src)
	if err != nil {
		return errors.Annotatef(err, "expression for %s", p.path())
	}
	o.exprs[property] = e
	p.changed()
	return nil
}

// ClearExpression unbinds property. The last computed value stays.
func (o *Object) ClearExpression(property string) error {
	p, err := o.expressionTarget(property)
	if err != nil {
		return err
	}
	if _, ok := o.exprs[property]; !ok {
		return nil
	}
	delete(o.exprs, property)
	p.changed()
	return nil
}

// Expression returns the source bound to property, if any.
func (o *Object) Expression(property string) (string, bool) {
	e, ok := o.exprs[property]
	if !ok {
		return "", false
	}
	return e.Source(), true
}

// Expressions returns the bound property names, sorted.
func (o *Object) Expressions() []string {
	names := make([]string, 0, len(o.exprs))
	for n := range o.exprs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (o *Object) expressionTarget(property string) (*Property, error) {
	p := o.byName[property]
	if p == nil {
		return nil, errors.NotFoundf("property %s.%s", o.name, property)
	}
	if p.spec.Kind != KindFloat && p.spec.Kind != KindInt {
		return nil, errors.Annotatef(ErrTypeMismatch, "%s is %s, expressions need a number", p.path(), p.spec.Kind)
	}
	if err := p.checkWritable(); err != nil {
		return nil, err
	}
	if o.doc != nil {
		if err := o.doc.guardMutation("bind expression"); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// evalExpressions assigns every bound property of o in schema order.
func (d *Document) evalExpressions(o *Object) error {
	for _, p := range o.props {
		e := o.exprs[p.spec.Name]
		if e == nil {
			continue
		}
		v, err := d.evaluator.Eval(e, d.resolveRef)
		if err != nil {
			return errors.Annotatef(err, "expression of %s", p.spec.Name)
		}
		var val any = v
		if p.spec.Kind == KindInt {
			val = int64(math.Round(v))
		}
		if err := p.assign(val); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

func (d *Document) resolveRef(object, property string) (float64, error) {
	o := d.objects[object]
	if o == nil {
		return 0, errors.NotFoundf("object %q", object)
	}
	p := o.byName[property]
	if p == nil {
		return 0, errors.NotFoundf("property %s.%s", object, property)
	}
	switch p.spec.Kind {
	case KindFloat:
		return p.value.(float64), nil
	case KindInt:
		return float64(p.value.(int64)), nil
	}
	return 0, errors.Annotatef(ErrTypeMismatch, "%s is %s", p.path(), p.spec.Kind)
}
