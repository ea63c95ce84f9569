package esdebug

import "github.com/v4xyz/duktape/internal/esstack"

// CaptureStack walks th's call stack from the topmost (innermost)
// activation down to the bottom and returns an ErrorBuilder already
// populated with one frame per activation. Native/lightfunc
// activations (Compiled == nil) contribute a frame with PC 0, since
// they have no bytecode position.
//
// Called at throw time, before the Unwinder pops any activations, so
// the trace reflects the call stack as it stood when the error was
// raised rather than after unwinding has already discarded frames.
func CaptureStack(th *esstack.Thread) ErrorBuilder {
	b := NewErrorBuilder()
	for i := th.TopActivationIndex(); i >= 0; i-- {
		act := th.Activation(i)
		name := "<native>"
		pc := 0
		if act.Compiled != nil {
			name = FuncName(act.Compiled.Name(), i)
			pc = act.PC
		}
		b.AddFrame(name, pc)
	}
	return b
}
