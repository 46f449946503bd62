package domain

import "go.trai.ch/zerr"

var (
	// ErrUnknownFormat is returned when an export asks for a format that has no converter driver.
	ErrUnknownFormat = zerr.New("unknown export format")

	// ErrEmptyQuery is returned when an export request carries no SQL text.
	ErrEmptyQuery = zerr.New("export query is empty")

	// ErrIntrospectionFailed is returned when the result columns of the export query cannot be fetched.
	ErrIntrospectionFailed = zerr.New("failed to introspect query columns")

	// ErrSRSDetectionFailed is returned when the spatial reference lookup query fails.
	ErrSRSDetectionFailed = zerr.New("failed to detect spatial reference")

	// ErrConverterSpawn is returned when the converter process cannot be started.
	ErrConverterSpawn = zerr.New("failed to start converter")

	// ErrConverterTimeout is returned when the converter exceeds its allotted time and is killed.
	ErrConverterTimeout = zerr.New("statement timeout")

	// ErrConverterExit is returned when the converter exits with a non-zero code.
	ErrConverterExit = zerr.New("converter exited with error")

	// ErrTransferFailed is returned when the artifact cannot be streamed to a client sink.
	ErrTransferFailed = zerr.New("failed to stream artifact")

	// ErrRequestCanceled is returned when the client went away before or during its transfer.
	ErrRequestCanceled = zerr.New("export request canceled")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file is not valid YAML.
	ErrConfigParseFailed = zerr.New("failed to parse config file")
)
