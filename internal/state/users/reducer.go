package users

import "adminconsole/internal/validation"

// Reduce returns the state that results from applying a to s. It has no side
// effects and never modifies s; unknown actions return s unchanged.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case Add:
		return add(s, a)
	case Update:
		return update(s, a)
	case Delete:
		return remove(s, a)
	case SetEditingFocus:
		s.EditingFocus = copyID(a.ID)
		return s
	case SetPage:
		s.Page = a.Page
		return s
	case ResetForm:
		s.Form = DefaultForm()
		s.Meta.Errors = validation.Errors{}
		return s
	case UpdateForm:
		s.Form = mergeForm(s.Form, a.Patch)
		return s
	case SetLoading:
		s.Meta.Loading = a.Loading
		return s
	case SetErrors:
		s.Meta.Errors = a.Errors.Clone()
		return s
	default:
		return s
	}
}

func add(s State, a Add) State {
	out := make([]User, 0, len(s.Entities)+len(a.Users))
	seen := make(map[int64]struct{}, cap(out))
	keep := func(u User) {
		if _, dup := seen[u.ID]; dup {
			return
		}
		seen[u.ID] = struct{}{}
		out = append(out, u)
	}
	for _, u := range s.Entities {
		keep(u)
	}
	for _, u := range a.Users {
		keep(FromAPI(u))
	}
	s.Entities = out
	return s
}

func update(s State, a Update) State {
	i := s.indexOf(a.ID)
	if i < 0 {
		return s
	}
	out := make([]User, len(s.Entities))
	copy(out, s.Entities)
	rec := FromAPI(a.User)
	rec.ID = a.ID
	out[i] = rec
	s.Entities = out
	return s
}

func remove(s State, a Delete) State {
	i := s.indexOf(a.ID)
	if i < 0 {
		return s
	}
	out := make([]User, 0, len(s.Entities)-1)
	out = append(out, s.Entities[:i]...)
	out = append(out, s.Entities[i+1:]...)
	s.Entities = out
	return s
}

func mergeForm(f Form, p FormPatch) Form {
	if p.Identity != nil {
		f.Identity = *p.Identity
	}
	if p.Password != nil {
		f.Password = *p.Password
	}
	if p.Role != nil {
		f.Role = *p.Role
	}
	return f
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
