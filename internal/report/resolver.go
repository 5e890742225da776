package report

import "syscall"

// CodeResolver turns a platform error code into a human-readable message.
// It exists as an interface so tests can substitute a deterministic table
// instead of depending on the host's error strings.
type CodeResolver interface {
	Resolve(code int) string
}

// SystemResolver resolves codes through the operating system's error table.
type SystemResolver struct{}

func (SystemResolver) Resolve(code int) string {
	return syscall.Errno(code).Error()
}

// TableResolver resolves codes from a fixed map, falling back to a generic
// message for unknown codes.
type TableResolver map[int]string

func (t TableResolver) Resolve(code int) string {
	if msg, ok := t[code]; ok {
		return msg
	}
	return SystemResolver{}.Resolve(code)
}
