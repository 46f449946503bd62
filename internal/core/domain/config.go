package domain

import "time"

// Config is the process configuration of the export service.
type Config struct {
	// Listen is the address the HTTP adapter binds to.
	Listen string
	// TmpDir is where artifacts are written while they are being served.
	TmpDir string
	// ConverterCommand is the converter binary, looked up in PATH when not absolute.
	ConverterCommand string
	// ConverterTimeout bounds every converter run. A request may ask for less, never more.
	// Zero means no limit.
	ConverterTimeout time.Duration
	// Database holds the connection defaults requests are merged with.
	Database ConnParams
}
