package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-jeebie-dbg/jeebie/debug"
)

func TestParseTables(t *testing.T) {
	tests := []struct {
		name    string
		values  []string
		want    []debug.TableSpec
		wantErr bool
	}{
		{name: "none", values: nil, want: nil},
		{
			name:   "following tables",
			values: []string{"pc:pc", "operand:pc"},
			want: []debug.TableSpec{
				{Anchor: debug.AnchorPC},
				{Anchor: debug.AnchorPC, Operand: true},
			},
		},
		{
			name:   "fixed regions",
			values: []string{"hram:start", "wram:end"},
			want: []debug.TableSpec{
				{Region: "hram", Anchor: debug.AnchorStart},
				{Region: "wram", Anchor: debug.AnchorEnd},
			},
		},
		{name: "missing anchor", values: []string{"wram"}, wantErr: true},
		{name: "empty region", values: []string{":pc"}, wantErr: true},
		{name: "unknown anchor", values: []string{"wram:middle"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTables(tt.values)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
