// Package remote serves IME dialogs to rendering hosts over WebSocket.
//
// A client connects to /dialog?preset=<name> and receives the seeded view.
// Each text message it sends is one frame:
//
//	{"keys":[{"char":"h"},{"code":42}],"paste":"..","submit":false,"cancel":false}
//
// and is answered with the view drawn for that frame:
//
//	{"state":"running","title":"..","text":"..","cursor":3}
//
// Once the dialog finishes the view carries a result and the server closes
// the connection. A client that disconnects early aborts its dialog.
//
// The router also serves /healthz, /presets and, when a metrics collector is
// installed, /metrics.
package remote
