package services

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	hue_errors "hue-chat/pkg/errors"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{hue_errors.ErrInvalidInput, http.StatusBadRequest},
		{hue_errors.ErrEmptyBody, http.StatusBadRequest},
		{hue_errors.ErrSelfRequest, http.StatusBadRequest},
		{hue_errors.ErrUnauthorized, http.StatusUnauthorized},
		{hue_errors.ErrForbidden, http.StatusForbidden},
		{hue_errors.ErrWindowExpired, http.StatusForbidden},
		{hue_errors.ErrNotFound, http.StatusNotFound},
		{hue_errors.ErrAlreadyExists, http.StatusConflict},
		{hue_errors.ErrAlreadyFriends, http.StatusConflict},
		{hue_errors.ErrAlreadyDeleted, http.StatusConflict},
		{hue_errors.ErrRateLimited, http.StatusTooManyRequests},
		{hue_errors.ErrServiceUnavailable, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, HTTPStatus(tc.err), tc.err.Error())
	}

	// Wrapped errors keep their mapping.
	wrapped := fmt.Errorf("posting: %w", hue_errors.ErrEmptyBody)
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(wrapped))
}
