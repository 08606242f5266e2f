package log

// Logger is the leveled logger passed between components. Every component
// derives its own child logger with WithCompName so log lines carry the
// component they came from.
type Logger interface {
	Debug(args ...any)
	Debugf(template string, args ...any)
	Info(args ...any)
	Infof(template string, args ...any)
	Error(args ...any)
	Errorf(template string, args ...any)
	Fatal(args ...any)
	Fatalf(template string, args ...any)
	WithCompName(compName string) (Logger, error)
}
