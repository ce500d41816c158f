package document

import (
	"github.com/juju/errors"
)

// Container is a view of an object that owns an ordered, exclusive member
// list and optionally a tip marking the end of its feature history.
// Membership is not a dependency: members do not become out-links of the
// container.
type Container struct {
	obj   *Object
	group *Property
	tip   *Property
}

// AsContainer returns the container view of o.
func AsContainer(o *Object) (*Container, error) {
	mc, ok := o.impl.(MemberContainer)
	if !ok {
		return nil, errors.Annotatef(ErrNotContainer, "%s (%s)", o.name, o.typ.Name)
	}
	c := &Container{obj: o, group: o.byName[mc.GroupProperty()]}
	if c.group == nil || c.group.spec.Kind != KindLinkList {
		return nil, errors.Annotatef(ErrNotContainer, "%s: no member list %q", o.name, mc.GroupProperty())
	}
	if th, ok := o.impl.(TipHolder); ok {
		c.tip = o.byName[th.TipProperty()]
		if c.tip == nil || c.tip.spec.Kind != KindLink {
			return nil, errors.Annotatef(ErrNotContainer, "%s: no tip link %q", o.name, th.TipProperty())
		}
	}
	return c, nil
}

// ContainerOf returns the container holding o, or nil.
func ContainerOf(o *Object) *Object { return o.container }

// Object returns the container object.
func (c *Container) Object() *Object { return c.obj }

// Members returns the members in history order.
func (c *Container) Members() []*Object { return c.group.LinkedObjects() }

// Has reports whether x is a direct member.
func (c *Container) Has(x *Object) bool { return c.index(x) >= 0 }

func (c *Container) index(x *Object) int {
	for i, l := range c.group.links {
		if l.Object == x {
			return i
		}
	}
	return -1
}

// AddMember appends x to the member list.
func (c *Container) AddMember(x *Object) error {
	return c.insert(x, len(c.group.links))
}

func (c *Container) insert(x *Object, pos int) error {
	if err := c.obj.doc.guardMutation("add member"); err != nil {
		return err
	}
	if x == nil {
		return errors.Annotatef(ErrInvalidLink, "%s: nil member", c.obj.name)
	}
	if x.container == c.obj {
		return nil
	}
	if x.container != nil {
		return errors.Annotatef(ErrAlreadyGrouped, "%s is in %s", x.name, x.container.name)
	}
	members := c.Members()
	objs := make([]*Object, 0, len(members)+1)
	objs = append(objs, members[:pos]...)
	objs = append(objs, x)
	objs = append(objs, members[pos:]...)
	if err := c.group.setLinks(objs, nil); err != nil {
		return err
	}
	x.container = c.obj
	return nil
}

// RemoveMember takes x out of the member list. x itself stays in the
// document.
func (c *Container) RemoveMember(x *Object) error {
	if err := c.obj.doc.guardMutation("remove member"); err != nil {
		return err
	}
	if !c.Has(x) {
		return errors.Annotatef(ErrNotAMember, "%s in %s", nameOf(x), c.obj.name)
	}
	c.detach(x)
	return nil
}

// detach removes x, moving the tip back to the previous history feature when
// x is the tip and relinking the follower of x onto the base of x.
func (c *Container) detach(x *Object) {
	i := c.index(x)
	if i < 0 {
		return
	}
	members := c.Members()
	if i+1 < len(members) {
		if follower := baseProperty(members[i+1]); follower != nil && follower.references(x) {
			var base []*Object
			if own := baseProperty(x); own != nil {
				base = own.LinkedObjects()
			}
			if err := follower.setLinks(base, nil); err != nil {
				logger.Warningf("relinking %s past %s: %v", members[i+1].name, x.name, err)
			}
		}
	}
	if c.tip != nil && c.Tip() == x {
		var prev *Object
		for j := i - 1; j >= 0; j-- {
			if baseProperty(members[j]) != nil {
				prev = members[j]
				break
			}
		}
		c.setTip(prev)
	}
	c.group.removeTarget(x)
	c.group.changed()
	x.container = nil
}

// Tip returns the current end of history, or nil.
func (c *Container) Tip() *Object {
	if c.tip == nil || len(c.tip.links) == 0 {
		return nil
	}
	return c.tip.links[0].Object
}

// SetTip moves the end of history to x, which must be a member. A nil x
// clears the tip.
func (c *Container) SetTip(x *Object) error {
	if c.tip == nil {
		return errors.Annotatef(ErrNotContainer, "%s has no tip", c.obj.name)
	}
	if err := c.obj.doc.guardMutation("set tip"); err != nil {
		return err
	}
	if x != nil && !c.Has(x) {
		return errors.Annotatef(ErrNotAMember, "%s in %s", x.name, c.obj.name)
	}
	c.setTip(x)
	return nil
}

func (c *Container) setTip(x *Object) {
	if c.Tip() == x {
		return
	}
	var objs []*Object
	if x != nil {
		objs = []*Object{x}
	}
	if err := c.tip.setLinks(objs, nil); err != nil {
		logger.Warningf("setting tip of %s: %v", c.obj.name, err)
	}
}

// IsAfterTip reports whether x is a member placed strictly after the tip.
// Without a tip every member is after it.
func (c *Container) IsAfterTip(x *Object) bool {
	i := c.index(x)
	if i < 0 {
		return false
	}
	tip := c.Tip()
	if tip == nil {
		return true
	}
	return i > c.index(tip)
}

// InsertFeature places x right after the tip (or at the end when there is
// none), bases it on the old tip, rebases the feature that followed the old
// tip onto x and makes x the tip.
func (c *Container) InsertFeature(x *Object) error {
	if c.tip == nil {
		return errors.Annotatef(ErrNotContainer, "%s has no tip", c.obj.name)
	}
	if x != nil && x.container == c.obj {
		return errors.Annotatef(ErrAlreadyGrouped, "%s is already in %s", x.name, c.obj.name)
	}
	old := c.Tip()
	pos := len(c.group.links)
	if old != nil {
		pos = c.index(old) + 1
	}
	var follower *Object
	if pos < len(c.group.links) {
		follower = c.group.links[pos].Object
	}
	if err := c.insert(x, pos); err != nil {
		return err
	}
	if base := baseProperty(x); base != nil {
		var objs []*Object
		if old != nil {
			objs = []*Object{old}
		}
		if err := base.setLinks(objs, nil); err != nil {
			return errors.Annotatef(err, "basing %s on %s", x.name, nameOf(old))
		}
	}
	if follower != nil && old != nil {
		if fb := baseProperty(follower); fb != nil && fb.references(old) {
			if err := fb.setLinks([]*Object{x}, nil); err != nil {
				return errors.Annotatef(err, "rebasing %s onto %s", follower.name, x.name)
			}
		}
	}
	c.setTip(x)
	return nil
}

func baseProperty(o *Object) *Property {
	bl, ok := o.impl.(BaseLinker)
	if !ok {
		return nil
	}
	p := o.byName[bl.BaseProperty()]
	if p == nil || p.spec.Kind != KindLink {
		return nil
	}
	return p
}

func nameOf(o *Object) string {
	if o == nil {
		return "<nil>"
	}
	return o.name
}
