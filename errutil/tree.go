package errutil

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/xeptore/flaw/v8"
)

// ErrInfo describes one error of a wrap chain together with the errors it
// wraps. Joined errors produce one child per member.
type ErrInfo struct {
	Message    string
	TypeName   string
	SyntaxRepr string
	Children   []ErrInfo
}

func (e ErrInfo) FlawP() flaw.P {
	var children []flaw.P
	if len(e.Children) > 0 {
		children = lo.Map(e.Children, func(c ErrInfo, _ int) flaw.P { return c.FlawP() })
	}
	return flaw.P{
		"message":     e.Message,
		"type_name":   e.TypeName,
		"syntax_repr": e.SyntaxRepr,
		"children":    children,
	}
}

// Tree unwraps err recursively. It panics on a nil error.
func Tree(err error) ErrInfo {
	if nil == err {
		panic("nil error")
	}
	return ErrInfo{
		Message:    err.Error(),
		TypeName:   fmt.Sprintf("%T", err),
		SyntaxRepr: fmt.Sprintf("%+#v", err),
		Children:   unwrapped(err),
	}
}

func unwrapped(err error) []ErrInfo {
	//nolint:errorlint
	switch x := err.(type) {
	case interface{ Unwrap() error }:
		if inner := x.Unwrap(); nil != inner {
			return []ErrInfo{Tree(inner)}
		}
		return nil
	case interface{ Unwrap() []error }:
		return lo.Map(x.Unwrap(), func(inner error, _ int) ErrInfo { return Tree(inner) })
	default:
		return nil
	}
}
