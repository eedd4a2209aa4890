package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/counterline/counterline/internal/shared"
)

func TestRespondErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("%w: product x", shared.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: only 2 on hand", shared.ErrInsufficientStock), http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: sku taken", shared.ErrConflict), http.StatusConflict},
		{fmt.Errorf("%w: order already received", shared.ErrInvalidTransition), http.StatusConflict},
		{shared.Validationf("quantity must be positive"), http.StatusBadRequest},
		{fmt.Errorf("%w: begin", shared.ErrStoreUnavailable), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		RespondError(rec, tc.err)
		require.Equal(t, tc.status, rec.Code, "error %v", tc.err)
		require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	}
}
