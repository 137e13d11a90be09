package genieerrors

import (
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestKindFromError(t *testing.T) {
	tests := map[string]struct {
		err  error
		want Kind
	}{
		"ErrInvalidArgument":            {&ErrInvalidArgument{}, KindInvalidArgument},
		"ErrNotFound":                   {&ErrNotFound{}, KindNotFound},
		"ErrAlreadyExists":              {&ErrAlreadyExists{}, KindAlreadyExists},
		"ErrConflict":                   {&ErrConflict{}, KindConflict},
		"ErrPrecondition":               {&ErrPrecondition{}, KindPrecondition},
		"ErrConstraint":                 {&ErrConstraint{}, KindConstraint},
		"pkg.Error => ErrNotFound":      {errors.WithMessage(&ErrNotFound{}, "foo"), KindNotFound},
		"pkg.Error => ErrConflict":      {errors.Wrap(&ErrConflict{}, "foo"), KindConflict},
		"pkg.Error => ErrPrecondition":  {errors.WithStack(&ErrPrecondition{}), KindPrecondition},
		"multierror => ErrInvalidArg":   {multierror.Append(nil, &ErrInvalidArgument{Name: "name"}), KindInvalidArgument},
		"pkg.Error":                     {errors.New("foo"), KindUnknown},
		"nil":                           {nil, KindNone},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, KindFromError(tc.err))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := map[string]struct {
		err  error
		want string
	}{
		"invalid argument without message": {
			&ErrInvalidArgument{Name: "name", Value: ""},
			`value "" is invalid for field "name"`,
		},
		"invalid argument with message": {
			&ErrInvalidArgument{Name: "tags", Value: "genie.id:x", Message: "reserved"},
			`value "genie.id:x" is invalid for field "tags"; reserved`,
		},
		"not found with type": {
			&ErrNotFound{Type: "cluster", Value: "c1"},
			`resource "c1" of type "cluster" does not exist`,
		},
		"not found without type": {
			&ErrNotFound{Value: "c1", Message: "unable to continue"},
			`resource "c1" does not exist; unable to continue`,
		},
		"already exists": {
			&ErrAlreadyExists{Type: "command", Value: "cmd1"},
			`resource "cmd1" of type "command" already exists`,
		},
		"conflict": {
			&ErrConflict{Type: "cluster", Value: "c1", ExpectedVersion: 1, ActualVersion: 2},
			`resource "c1" of type "cluster" was modified concurrently; saved from version 1 but stored version is 2`,
		},
		"constraint without value": {
			&ErrConstraint{Type: "job", Message: "bad"},
			`constraint violated for job; bad`,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.err.Error())
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "not_found", KindNotFound.String())
	assert.Equal(t, "unknown", Kind(99).String())
	assert.True(t, IsNotFound(errors.WithStack(&ErrNotFound{})))
	assert.True(t, IsInvalidArgument(&ErrInvalidArgument{}))
	assert.True(t, IsConflict(&ErrConflict{}))
	assert.False(t, IsConflict(&ErrAlreadyExists{}))
}
