package opt

import (
	"unsafe"

	"golang.org/x/sys/cpu"
)

// CacheLineSize_ is used to pad a lock's state word away from the value it
// protects. It's taken from `golang.org/x/sys/cpu` for the target arch.
const CacheLineSize_ = unsafe.Sizeof(cpu.CacheLinePad{})
