package ratelimit

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"doccompare/internal/logger"
	"doccompare/internal/repository/mocks"
)

func TestRunJanitor(t *testing.T) {
	repo := new(mocks.MockRateLimitRepository)
	purged := make(chan struct{}, 4)
	repo.On("PurgeExpired", mock.Anything, mock.AnythingOfType("time.Time")).
		Return(int64(0), errors.New("db down")).Once()
	repo.On("PurgeExpired", mock.Anything, mock.AnythingOfType("time.Time")).
		Return(int64(3), nil).
		Run(func(mock.Arguments) { purged <- struct{}{} })

	var buf bytes.Buffer
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		RunJanitor(ctx, repo, 5*time.Millisecond, logger.New(&buf, time.UTC))
		close(done)
	}()

	select {
	case <-purged:
	case <-time.After(2 * time.Second):
		t.Fatal("janitor never purged")
	}
	cancel()
	<-done

	out := buf.String()
	assert.Contains(t, out, `"error":"db down"`)
	assert.Contains(t, out, `"deleted":3`)
}
