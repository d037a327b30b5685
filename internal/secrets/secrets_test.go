package secrets

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore serves canned payloads and counts queries.
type fakeStore struct {
	payload string
	err     error
	calls   int
}

func (f *fakeStore) GetSecret(ctx context.Context, secretID string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.payload, nil
}

func TestResolveCachesAcrossCalls(t *testing.T) {
	store := &fakeStore{payload: "sk-test-12345"}
	r := NewResolver(store, "api-key")

	first, err := r.Resolve(context.Background())
	require.NoError(t, err)

	second, err := r.Resolve(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "sk-test-12345", first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, store.calls, "second Resolve should not hit the store")
}

func TestResolveFailureLeavesCacheUnsetAndRetries(t *testing.T) {
	store := &fakeStore{err: errors.New("access denied")}
	r := NewResolver(store, "api-key")

	_, err := r.Resolve(context.Background())
	require.Error(t, err)

	var resErr *ResolutionError
	assert.ErrorAs(t, err, &resErr)

	// Store recovers; the resolver must query again, not serve a stale miss.
	store.err = nil
	store.payload = "sk-recovered"

	cred, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sk-recovered", cred)
	assert.Equal(t, 2, store.calls)
}

func TestReduce(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
		wantErr bool
	}{
		{
			name:    "bare string",
			payload: "sk-plain-key",
			want:    "sk-plain-key",
		},
		{
			name:    "bare string with whitespace",
			payload: "  sk-padded-key\n",
			want:    "sk-padded-key",
		},
		{
			name:    "one-key JSON object",
			payload: `{"api_key": "sk-from-json"}`,
			want:    "sk-from-json",
		},
		{
			name:    "one-key JSON object with padded value",
			payload: `{"api_key": " sk-padded "}`,
			want:    "sk-padded",
		},
		{
			name:    "JSON string",
			payload: `"sk-quoted"`,
			want:    "sk-quoted",
		},
		{
			name:    "multi-key JSON object is ambiguous",
			payload: `{"a": "x", "b": "y"}`,
			wantErr: true,
		},
		{
			name:    "empty JSON object",
			payload: `{}`,
			wantErr: true,
		},
		{
			name:    "non-string object value",
			payload: `{"api_key": 42}`,
			wantErr: true,
		},
		{
			name:    "JSON number",
			payload: `12345`,
			wantErr: true,
		},
		{
			name:    "empty payload",
			payload: "",
			wantErr: true,
		},
		{
			name:    "whitespace-only payload",
			payload: "   ",
			wantErr: true,
		},
		{
			name:    "empty value inside object",
			payload: `{"api_key": "  "}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := reduce(tt.payload)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveNeverReturnsEmptyCredential(t *testing.T) {
	store := &fakeStore{payload: "   "}
	r := NewResolver(store, "api-key")

	cred, err := r.Resolve(context.Background())
	assert.Error(t, err)
	assert.Empty(t, cred)
}
