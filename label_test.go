package main

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestNewLabelIsPending(t *testing.T) {
	l := NewLabel("square")
	be.Equal(t, "square", l.Name())
	be.Equal(t, "<square>", l.String())
	be.True(t, !l.IsResolved())
	_, ok := l.Addr()
	be.True(t, !ok)
}

func TestLabelResolve(t *testing.T) {
	l := NewLabel("p")
	be.Err(t, l.Resolve(0), nil)
	be.True(t, l.IsResolved())
	addr, ok := l.Addr()
	be.True(t, ok)
	be.Equal(t, 0, addr)
}

func TestLabelResolvesOnce(t *testing.T) {
	l := NewLabel("p")
	be.Err(t, l.Resolve(4), nil)
	err := l.Resolve(9)
	be.Err(t, err, ErrLabelResolved)
	addr, _ := l.Addr()
	be.Equal(t, 4, addr)
}

func TestLabelSharedByManyInstructions(t *testing.T) {
	l := NewLabel("p")
	code := Concat(codeCal(0, l), codeCal(1, l))
	be.Err(t, l.Resolve(3), nil)
	for i := 0; i < code.Len(); i++ {
		addr, ok := code.At(i).Label.Addr()
		be.True(t, ok)
		be.Equal(t, 3, addr)
	}
}
