package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"portfolioapi/internal/config"
)

func TestDisabled(t *testing.T) {
	ctx := context.Background()
	s := Disabled()

	_, err := s.Put(ctx, "k", strings.NewReader("x"), PutObjectOptions{Size: 1})
	assert.ErrorIs(t, err, ErrUnavailable)

	_, _, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrUnavailable)

	assert.ErrorIs(t, s.Delete(ctx, "k"), ErrUnavailable)

	_, err = s.PresignGet(ctx, "k", time.Minute)
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = s.Check(ctx)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestNewMinIO_Validation(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		cfg  config.MinIOConfig
		msg  string
	}{
		{name: "missing endpoint", cfg: config.MinIOConfig{}, msg: "endpoint is required"},
		{name: "missing credentials", cfg: config.MinIOConfig{Endpoint: "localhost:9000"}, msg: "credentials are required"},
		{name: "missing bucket", cfg: config.MinIOConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"}, msg: "bucket is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewMinIO(ctx, tt.cfg)
			assert.ErrorContains(t, err, tt.msg)
			assert.Nil(t, s)
		})
	}
}
