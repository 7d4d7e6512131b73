package must

import (
	"errors"
	"fmt"

	"github.com/xeptore/flaw/v8"
)

// Flaw returns the *flaw.Flaw in err's chain. It panics if there is none.
func Flaw(err error) *flaw.Flaw {
	f := new(flaw.Flaw)
	if !errors.As(err, &f) {
		panic(fmt.Sprintf("expected a *flaw.Flaw in error chain, got %T: %v", err, err))
	}
	return f
}

// JoinFlaw attaches extra to err, which must carry a flaw. A nil err is
// replaced by extra.
func JoinFlaw(err, extra error) error {
	if nil == err {
		return extra
	}
	return Flaw(err).Join(extra)
}
