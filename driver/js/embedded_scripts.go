package js

import (
	_ "embed"
)

// CaptureScript embeds the recording script injected into every new
// document. It computes a unique selector for interacted elements and
// reports clicks and inputs through the snaprecClick and snaprecInput
// bindings.
//
//go:embed capture.js
var CaptureScript string
