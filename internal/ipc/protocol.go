// Package ipc carries interview-session commands over a per-user unix socket.
package ipc

// Request is one command sent to the running session owner. Commands mirror
// the interview controls: status, stop, skip, repeat.
type Request struct {
	Command string `json:"command"`
}

type Response struct {
	OK      bool   `json:"ok"`
	Phase   string `json:"phase,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}
