package service

import (
	"context"
	"net/url"
	"slices"
	"strings"

	"github.com/aussiebroadwan/passgate/internal/auth/domain"
	"github.com/aussiebroadwan/passgate/pkg/secctx"
)

type GrantKind = domain.GrantKind

const (
	GrantUnknown      = domain.GrantUnknown
	GrantPassword     = domain.GrantPassword
	GrantRefreshToken = domain.GrantRefreshToken
)

func ParseGrantKind(s string) GrantKind { return domain.ParseGrantKind(s) }

// GrantExtractor turns a token request form into a GrantRequest. It returns
// nil, nil when the form is not for its grant type.
type GrantExtractor interface {
	Extract(ctx context.Context, form url.Values) (*domain.GrantRequest, error)
}

// PasswordGrantExtractor handles grant_type=password.
type PasswordGrantExtractor struct{}

func (PasswordGrantExtractor) Extract(ctx context.Context, form url.Values) (*domain.GrantRequest, error) {
	if ParseGrantKind(form.Get("grant_type")) != GrantPassword {
		return nil, nil
	}
	if !form.Has("username") || !form.Has("password") {
		return nil, ErrInvalidRequest
	}

	return &domain.GrantRequest{
		Kind:   GrantPassword,
		Client: secctx.Capture(ctx).Principal(),
		Params: collectParams(form),
	}, nil
}

// RefreshGrantExtractor handles grant_type=refresh_token.
type RefreshGrantExtractor struct{}

func (RefreshGrantExtractor) Extract(ctx context.Context, form url.Values) (*domain.GrantRequest, error) {
	if ParseGrantKind(form.Get("grant_type")) != GrantRefreshToken {
		return nil, nil
	}
	refresh := strings.TrimSpace(form.Get("refresh_token"))
	if refresh == "" {
		return nil, ErrInvalidRequest
	}

	return &domain.GrantRequest{
		Kind:         GrantRefreshToken,
		Client:       secctx.Capture(ctx).Principal(),
		Params:       collectParams(form),
		RefreshToken: refresh,
	}, nil
}

// ExtractorChain tries each extractor in order.
type ExtractorChain []GrantExtractor

func DefaultExtractors() ExtractorChain {
	return ExtractorChain{PasswordGrantExtractor{}, RefreshGrantExtractor{}}
}

func (c ExtractorChain) Extract(ctx context.Context, form url.Values) (*domain.GrantRequest, error) {
	if strings.TrimSpace(form.Get("grant_type")) == "" {
		return nil, ErrInvalidRequest
	}
	for _, e := range c {
		req, err := e.Extract(ctx, form)
		if err != nil {
			return nil, err
		}
		if req != nil {
			return req, nil
		}
	}
	return nil, ErrUnsupportedGrantType
}

func collectParams(form url.Values) map[string]any {
	params := make(map[string]any, len(form))
	for k, v := range form {
		switch {
		case k == "grant_type" || k == "refresh_token":
			continue
		case len(v) == 1:
			params[k] = v[0]
		default:
			params[k] = slices.Clone(v)
		}
	}
	return params
}
