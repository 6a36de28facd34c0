// Package capture records raw platform payloads and dry-run replies to disk
// so they can be replayed as test fixtures.
package capture

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	sessionID  = time.Now().Format("20060102-150405")
	captureSeq uint64

	mu  sync.RWMutex
	dir string
)

// Enable turns capture on, writing under dir/<session>/<namespace>/
func Enable(path string) {
	mu.Lock()
	defer mu.Unlock()
	dir = path
}

// Disable turns capture off
func Disable() {
	Enable("")
}

// Enabled reports whether capture is currently active
func Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return dir != ""
}

func writeFile(namespace, category, ext string, data []byte) {
	mu.RLock()
	base := dir
	mu.RUnlock()
	if base == "" {
		return
	}

	seq := atomic.AddUint64(&captureSeq, 1)
	sessionDir := filepath.Join(base, sessionID, namespace)
	if err := os.MkdirAll(sessionDir, 0o755); err != nil {
		log.Warn().Err(err).Str("dir", sessionDir).Msg("capture: failed to create directory")
		return
	}

	path := filepath.Join(sessionDir, fmt.Sprintf("%s-%04d.%s", category, seq, ext))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("capture: failed to write file")
		return
	}

	log.Debug().Str("path", path).Msg("capture: wrote file")
}

// WriteJSON stores payload as indented JSON. Failures are logged and ignored.
func WriteJSON(namespace, category string, payload interface{}) {
	if !Enabled() {
		return
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		log.Warn().Err(err).Str("category", category).Msg("capture: failed to marshal payload")
		return
	}

	writeFile(namespace, category, "json", data)
}

// WriteBlob stores arbitrary bytes using the provided extension
func WriteBlob(namespace, category, ext string, data []byte) {
	if !Enabled() {
		return
	}
	writeFile(namespace, category, ext, data)
}
