package httpclient

// Logger receives request diagnostics: malformed header lines, transport
// warnings and per-request results. Any internal/logger implementation fits.
type Logger interface {
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

// discard drops every entry; it is the client's logger until WithLogger is used.
type discard struct{}

func (discard) DebugObj(string, string, interface{}) {}
func (discard) WarnObj(string, string, interface{})  {}
func (discard) ErrorObj(string, string, interface{}) {}

func ensureLogger(log Logger) Logger {
	if log == nil {
		return discard{}
	}
	return log
}
