package captcha

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/google/uuid"

	bizerr "admin-gateway/pkg/common/errors"
)

// Image is what the captcha endpoint hands to the browser.
type Image struct {
	Key         string `json:"key"`
	ImageBase64 string `json:"image_base64"`
}

type Service struct {
	store Store
	gen   *Generator
	now   func() time.Time
}

type Option func(*Service)

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, gen *Generator, opts ...Option) *Service {
	s := &Service{store: store, gen: gen, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue creates, persists and renders a new challenge.
func (s *Service) Issue(ctx context.Context) (*Image, error) {
	text, response, png, err := s.gen.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate captcha: %w", err)
	}

	c := &Challenge{
		Key:       uuid.NewString(),
		Challenge: text,
		Response:  response,
		CreatedAt: s.now(),
	}
	if err := s.store.Save(ctx, c); err != nil {
		return nil, err
	}

	return &Image{
		Key:         c.Key,
		ImageBase64: "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
	}, nil
}

// Verify consumes the challenge under key and checks answer against it.
// An unknown or already consumed key is reported as expired.
func (s *Service) Verify(ctx context.Context, key, answer string) error {
	c, err := s.store.Take(ctx, key)
	if errors.Is(err, ErrNotFound) {
		hlog.CtxInfof(ctx, "captcha %q not found or already used", key)
		return bizerr.ErrCaptchaExpired
	}
	if err != nil {
		return err
	}

	if c.Expired(s.now()) {
		return bizerr.ErrCaptchaExpired
	}
	if !c.Matches(answer) {
		return bizerr.ErrCaptchaIncorrect
	}
	return nil
}
