package main

import (
	"os"
	"path/filepath"
	"testing"

	"solar-advisor/pkg/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocuments(t *testing.T) {
	entries := catalog.Default().Entries()[:2]
	vectors := [][]float32{{0.1, 0.2}, {0.3, 0.4}}

	docs, err := documents(entries, vectors)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, entries[0].Code, docs[0].ID)
	assert.Equal(t, entries[0].Name, docs[0].SystemName)
	assert.Equal(t, entries[0].Code, docs[0].ModelCode)
	assert.Contains(t, docs[0].Text, entries[0].Description)
	assert.Equal(t, []float32{0.3, 0.4}, docs[1].Embedding)

	_, err = documents(entries, vectors[:1])
	assert.Error(t, err)
}

func TestValidateFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
		wantErr bool
	}{
		{
			name:    "valid",
			content: `{"version":"1","products":[{"name":"A 150L Direct","code":"A150D","tankLiters":150,"circuit":"Direct"},{"name":"A 150L Indirect","code":"A150I","tankLiters":150,"circuit":"Indirect"}]}`,
			want:    2,
		},
		{
			name:    "code suffix disagrees with circuit",
			content: `{"products":[{"name":"A 150L Direct","code":"A150I","tankLiters":150,"circuit":"Direct"}]}`,
			wantErr: true,
		},
		{
			name:    "duplicate code",
			content: `{"products":[{"name":"A","code":"A150D","tankLiters":150,"circuit":"Direct"},{"name":"B","code":"A150D","tankLiters":150,"circuit":"Direct"}]}`,
			wantErr: true,
		},
		{
			name:    "not json",
			content: `products:`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "catalog.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			n, err := validateFile(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)
		})
	}
}
