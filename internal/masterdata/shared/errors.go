package shared

import "github.com/eapdesk/eapdesk/internal/platform/httpx"

// Aliases of the HTTP taxonomy so master data packages can classify errors
// without importing the transport layer.
var (
	ErrNotFound   = httpx.ErrNotFound
	ErrDuplicate  = httpx.ErrDuplicate
	ErrValidation = httpx.ErrValidation
	ErrConflict   = httpx.ErrConflict
)
