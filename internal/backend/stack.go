// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package backend

import zenarcinterfaces "go.e43.eu/zenarc/interfaces"

// objectStack holds the objects currently open, innermost last
type objectStack struct {
	objs []zenarcinterfaces.Object
}

func (s *objectStack) push(o zenarcinterfaces.Object) {
	s.objs = append(s.objs, o)
}

func (s *objectStack) pop() (zenarcinterfaces.Object, bool) {
	if len(s.objs) == 0 {
		return zenarcinterfaces.Object{}, false
	}
	o := s.objs[len(s.objs)-1]
	s.objs = s.objs[:len(s.objs)-1]
	return o, true
}

func (s *objectStack) depth() int {
	return len(s.objs)
}
