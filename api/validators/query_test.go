package validators

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/catalog-discounts/pkg/errors"
)

func TestParseQueryTime(t *testing.T) {
	cases := []struct {
		name     string
		query    string
		endOfDay bool
		want     *time.Time
		wantErr  bool
	}{
		{name: "absent", query: ""},
		{name: "date start", query: "2025-11-28", want: ptr(time.Date(2025, 11, 28, 0, 0, 0, 0, time.UTC))},
		{name: "date end", query: "2025-11-28", endOfDay: true, want: ptr(time.Date(2025, 11, 28, 23, 59, 59, 999999999, time.UTC))},
		{name: "rfc3339", query: "2025-11-28T10:00:00-06:00", endOfDay: true, want: ptr(time.Date(2025, 11, 28, 16, 0, 0, 0, time.UTC))},
		{name: "garbage", query: "yesterday", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/?d="+tc.query, nil)
			got, err := ParseQueryTime(req, "d", tc.endOfDay)
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
				return
			}
			require.NoError(t, err)
			if tc.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tc.want.Equal(*got), "want %s got %s", tc.want, got)
		})
	}
}

func TestParseQueryDecimalAndBool(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?min=12.50&neg=-1&flag=true&bad=maybe", nil)

	min, err := ParseQueryDecimal(req, "min")
	require.NoError(t, err)
	require.NotNil(t, min)
	assert.Equal(t, "12.5", min.String())

	_, err = ParseQueryDecimal(req, "neg")
	assert.Error(t, err)

	missing, err := ParseQueryDecimal(req, "max")
	require.NoError(t, err)
	assert.Nil(t, missing)

	flag, err := ParseQueryBool(req, "flag")
	require.NoError(t, err)
	require.NotNil(t, flag)
	assert.True(t, *flag)

	_, err = ParseQueryBool(req, "bad")
	assert.Error(t, err)
}

func TestParseQueryIntBounds(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=500", nil)
	_, err := ParseQueryInt(req, "limit", 25, 1, 100)
	assert.Error(t, err)

	value, err := ParseQueryInt(httptest.NewRequest(http.MethodGet, "/", nil), "limit", 25, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 25, value)
}

func TestParseQueryList(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?tag=eco,%20bulk&tag=&tag=gift", nil)
	assert.Equal(t, []string{"eco", "bulk", "gift"}, ParseQueryList(req, "tag"))
}

func ptr(t time.Time) *time.Time { return &t }

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "kraft bags", SanitizeString("  kraft \n  bags ", 0))
	assert.Equal(t, "caja", SanitizeString("cajas", 4))
	assert.Equal(t, "niño", SanitizeString("niños", 4))
	assert.Equal(t, "", SanitizeString("   ", 10))
}
