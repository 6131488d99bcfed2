package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/sakif/easing-playground/internal/model"
)

// ResultCache stores dense results of successful executions, keyed by Key.
// Get returns an error wrapping apperror.ErrNotFound on a miss.
type ResultCache interface {
	Get(ctx context.Context, key string) (*model.ProcessResult, error)
	Put(ctx context.Context, key string, action model.Action, result *model.ProcessResult) error
	Prune(ctx context.Context, keep int) (int64, error)
}

// Key is the cache key of req: the hex SHA-256 of its action and script.
func Key(req model.Request) string {
	h := sha256.New()
	h.Write([]byte(req.Action))
	h.Write([]byte{0})
	h.Write([]byte(req.Script))
	return hex.EncodeToString(h.Sum(nil))
}
