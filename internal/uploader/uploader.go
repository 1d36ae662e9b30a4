package uploader

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

// defaultRetryDelay separates the single retry from the first attempt. This
// is a batch job: one bounded retry, never an unbounded loop.
const defaultRetryDelay = 2 * time.Second

// Uploader wraps an ObjectStore with bounded retry and failure
// classification.
type Uploader struct {
	store      ObjectStore
	retryDelay time.Duration
}

func New(store ObjectStore) *Uploader {
	return &Uploader{store: store, retryDelay: defaultRetryDelay}
}

// WithRetryDelay overrides the delay before the single retry.
func (u *Uploader) WithRetryDelay(d time.Duration) *Uploader {
	u.retryDelay = d
	return u
}

// UploadFile uploads a local file under key and returns its public URL.
// One retry after a short delay, then the failure propagates with a reason
// that distinguishes a bad source file from a storage outage.
func (u *Uploader) UploadFile(ctx context.Context, key, path, contentType string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%s: %w", ClassifyFailure(err), err)
	}
	return u.UploadBytes(ctx, key, data, contentType)
}

// UploadBytes uploads an in-memory payload under key.
func (u *Uploader) UploadBytes(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	url, err := u.store.Upload(ctx, key, data, contentType)
	if err == nil {
		return url, nil
	}
	zap.S().Named("uploader").Warnf("upload of %s failed, retrying once: %v", key, err)

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(u.retryDelay):
	}

	url, err = u.store.Upload(ctx, key, data, contentType)
	if err != nil {
		return "", fmt.Errorf("%s: upload %s: %w", ClassifyFailure(err), key, err)
	}
	return url, nil
}

// ClassifyFailure labels an error so operators can tell a bad source file
// from a storage outage at a glance in the failure list.
func ClassifyFailure(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"encrypt", "password", "corrupt", "malformed", "damaged", "no such file"} {
		if strings.Contains(msg, marker) {
			return "bad source file"
		}
	}
	return "storage error"
}
