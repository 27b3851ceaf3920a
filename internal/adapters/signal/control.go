package signal

import "github.com/dkeye/meshcall/internal/core"

// handlePing answers on the sender's own connection, outside any room.
func (ctl *SignalWSController) handlePing(c *WsSignalConn) {
	ctl.sendJSON(c, core.EvPong, nil)
}
