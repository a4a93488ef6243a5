package websocket

func ResetDialFunc() {
	dialFuncMu.Lock()
	defer dialFuncMu.Unlock()
	dialFunc = nil
}

func RegisteredDialFunc() DialFunc {
	return registeredDialFunc()
}
