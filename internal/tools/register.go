package tools

import "pipewatch/internal/toolreg"

// Register installs every built-in tool. Called once at host startup,
// before the coordinator's Begin, standing in for the original's
// HE_PIPE_DEFINE static-init registration.
func Register(reg *toolreg.Registry) {
	reg.Register("smartcopy", SmartCopy)
	reg.Register("dummy", Dummy)
}
